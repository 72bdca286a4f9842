package service

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/ikkim/screening-backend/internal/spreadsheet"
	"github.com/ikkim/screening-backend/internal/storage"
	"github.com/ikkim/screening-backend/pkg/logger"
)

// ObjectUploader stores a rendered export and returns its key.
type ObjectUploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

type LedgerExport struct {
	Key     string
	Records int
}

// LedgerExportService renders the match ledger as XLSX. Windows are
// half-open: [from, until).
type LedgerExportService interface {
	WriteLedger(w io.Writer, from, until time.Time) (int, error)
	Export(ctx context.Context, from, until time.Time) (*LedgerExport, error)
}

type ledgerExportService struct {
	matchService MatchService
	uploader     ObjectUploader
	prefix       string
}

// NewLedgerExportService builds the exporter. uploader may be nil, in which
// case only WriteLedger is usable.
func NewLedgerExportService(matchService MatchService, uploader ObjectUploader, prefix string) LedgerExportService {
	return &ledgerExportService{
		matchService: matchService,
		uploader:     uploader,
		prefix:       prefix,
	}
}

func (s *ledgerExportService) WriteLedger(w io.Writer, from, until time.Time) (int, error) {
	records, err := s.matchService.MatchesBetween(from, until)
	if err != nil {
		return 0, err
	}
	if err := spreadsheet.WriteMatchLedger(w, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

func (s *ledgerExportService) Export(ctx context.Context, from, until time.Time) (*LedgerExport, error) {
	if s.uploader == nil {
		return nil, formatViolation("ledger export storage is not configured")
	}

	var buf bytes.Buffer
	n, err := s.WriteLedger(&buf, from, until)
	if err != nil {
		return nil, err
	}

	key := storage.ObjectKey(s.prefix, time.Now(), ".xlsx")
	if _, err := s.uploader.Upload(ctx, key, bytes.NewReader(buf.Bytes()), spreadsheet.ContentTypeXLSX); err != nil {
		logger.Error("Failed to upload ledger export", err, logger.Fields{
			"key": key,
		})
		return nil, err
	}

	logger.Info("Match ledger exported", logger.Fields{
		"key":     key,
		"records": n,
		"from":    from.UTC().Format(time.RFC3339),
		"until":   until.UTC().Format(time.RFC3339),
	})
	return &LedgerExport{Key: key, Records: n}, nil
}
