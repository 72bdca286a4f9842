package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/ikkim/screening-backend/internal/app/service"
	"github.com/ikkim/screening-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// SettleDelay is how far behind the clock each export window closes. Match
// rows are stamped before their transaction commits, so a window must not
// close until every transaction that could stamp into it has finished.
const SettleDelay = 5 * time.Minute

// LedgerExportScheduler uploads the match ledger on a cron schedule. Windows
// are contiguous: each run covers [previous end, now - SettleDelay), the first
// run the 24 hours before that end. A failed run leaves the window open.
type LedgerExportScheduler struct {
	cron     *cron.Cron
	schedule string
	exporter service.LedgerExportService

	mu         sync.Mutex
	exportedTo time.Time
	now        func() time.Time
}

func NewLedgerExportScheduler(schedule string, exporter service.LedgerExportService) *LedgerExportScheduler {
	return &LedgerExportScheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		schedule: schedule,
		exporter: exporter,
		now:      time.Now,
	}
}

func (s *LedgerExportScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.run); err != nil {
		logger.Error("Failed to add cron job for ledger export", err, logger.Fields{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Ledger export scheduler started", logger.Fields{
		"schedule": s.schedule,
	})
	return nil
}

func (s *LedgerExportScheduler) run() {
	s.mu.Lock()
	defer s.mu.Unlock()

	until := s.now().UTC().Add(-SettleDelay)
	from := s.exportedTo
	if from.IsZero() {
		from = until.Add(-24 * time.Hour)
	}
	if !from.Before(until) {
		return
	}

	logger.Info("Starting scheduled ledger export", logger.Fields{
		"from":  from.Format(time.RFC3339),
		"until": until.Format(time.RFC3339),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := s.exporter.Export(ctx, from, until); err != nil {
		logger.Error("Scheduled ledger export failed", err)
		return
	}
	s.exportedTo = until
}

// Stop waits for a running export to finish.
func (s *LedgerExportScheduler) Stop() {
	logger.Info("Stopping ledger export scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Ledger export scheduler stopped")
}
