package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/ikkim/screening-backend/internal/app/model"
	"github.com/ikkim/screening-backend/internal/app/service"
	"github.com/ikkim/screening-backend/internal/db"
	"github.com/ikkim/screening-backend/internal/screening"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type window struct {
	from, until time.Time
}

type recordingExporter struct {
	next    service.LedgerExportService
	calls   []window
	records []int
	fail    bool
}

func (e *recordingExporter) WriteLedger(w io.Writer, from, until time.Time) (int, error) {
	return e.next.WriteLedger(w, from, until)
}

func (e *recordingExporter) Export(ctx context.Context, from, until time.Time) (*service.LedgerExport, error) {
	e.calls = append(e.calls, window{from, until})
	if e.fail {
		return nil, errors.New("bucket unavailable")
	}
	if e.next == nil {
		return &service.LedgerExport{Key: "k"}, nil
	}
	export, err := e.next.Export(ctx, from, until)
	if err != nil {
		return nil, err
	}
	e.records = append(e.records, export.Records)
	return export, nil
}

type discardUploader struct{}

func (discardUploader) Upload(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	_, err := io.Copy(io.Discard, body)
	return key, err
}

func TestLedgerExportScheduler_RunWindows(t *testing.T) {
	exporter := &recordingExporter{}
	s := NewLedgerExportScheduler("0 6 * * *", exporter)

	first := time.Date(2024, 3, 2, 6, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return first }
	s.run()

	second := first.Add(24 * time.Hour)
	s.now = func() time.Time { return second }
	exporter.fail = true
	s.run()

	// a failed run does not advance the window
	third := second.Add(24 * time.Hour)
	s.now = func() time.Time { return third }
	exporter.fail = false
	s.run()

	require.Len(t, exporter.calls, 3)
	firstEnd := first.Add(-SettleDelay)
	assert.Equal(t, window{firstEnd.Add(-24 * time.Hour), firstEnd}, exporter.calls[0])
	assert.Equal(t, window{firstEnd, second.Add(-SettleDelay)}, exporter.calls[1])
	assert.Equal(t, window{firstEnd, third.Add(-SettleDelay)}, exporter.calls[2])
}

func TestLedgerExportScheduler_SkipsEmptyWindow(t *testing.T) {
	exporter := &recordingExporter{}
	s := NewLedgerExportScheduler("* * * * *", exporter)

	at := time.Date(2024, 3, 2, 6, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return at }
	s.run()
	s.run()

	assert.Len(t, exporter.calls, 1)
}

func TestLedgerExportScheduler_LateCommittedRowIsExported(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	person := &model.Person{Kind: model.KindNatural, Active: true}
	require.NoError(t, testDB.Create(person).Error)
	entry := &model.BlacklistEntry{ShortName: "OFAC"}
	require.NoError(t, testDB.Create(entry).Error)
	listed := &model.BlacklistedPerson{BlacklistEntryID: entry.ID, Kind: model.KindNatural, OfficialRegistrationNumber: "SDN-1"}
	require.NoError(t, testDB.Create(listed).Error)

	exporter := &recordingExporter{
		next: service.NewLedgerExportService(service.NewMatchService(testDB), discardUploader{}, "ledger"),
	}
	s := NewLedgerExportScheduler("0 6 * * *", exporter)

	first := time.Date(2024, 3, 2, 6, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return first }
	s.run()

	// stamped a second before the first run, committed after it read the ledger
	require.NoError(t, testDB.Create(&model.MatchRecord{
		PersonID:            person.ID,
		BlacklistedPersonID: listed.ID,
		IsMatch:             true,
		Score:               1,
		Kind:                screening.MatchExact,
		Origin:              model.OriginPerson,
		SearchDate:          first.Add(-time.Second),
	}).Error)

	s.now = func() time.Time { return first.Add(24 * time.Hour) }
	s.run()

	assert.Equal(t, []int{0, 1}, exporter.records)
}

func TestLedgerExportScheduler_InvalidSchedule(t *testing.T) {
	s := NewLedgerExportScheduler("not a schedule", &recordingExporter{})
	assert.Error(t, s.Start())
}
