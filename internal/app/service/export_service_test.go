package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/ikkim/screening-backend/internal/spreadsheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type memoryUploader struct {
	objects map[string][]byte
	types   map[string]string
}

func (u *memoryUploader) Upload(_ context.Context, key string, body io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	u.objects[key] = data
	u.types[key] = contentType
	return key, nil
}

func TestLedgerExportService_Export(t *testing.T) {
	f := setupRegistryTest(t)
	f.listBlacklisted(t, "SDN-1", naturalInput("Juan", "Perez", "Lopez"))
	_, records, err := f.persons.CreatePerson(CreatePersonInput{Kind: "natural", Natural: naturalInput("Juan", "Perez", "Lopez")})
	require.NoError(t, err)
	require.Len(t, records, 1)

	uploader := &memoryUploader{objects: map[string][]byte{}, types: map[string]string{}}
	exporter := NewLedgerExportService(NewMatchService(f.db), uploader, "ledger")

	now := time.Now().UTC()
	export, err := exporter.Export(context.Background(), now.Add(-time.Hour), now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, export.Records)
	assert.True(t, strings.HasPrefix(export.Key, "ledger/"))
	assert.Equal(t, spreadsheet.ContentTypeXLSX, uploader.types[export.Key])

	book, err := excelize.OpenReader(bytes.NewReader(uploader.objects[export.Key]))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows(spreadsheet.LedgerSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "JUAN PEREZ LOPEZ", rows[1][6])
	assert.Equal(t, "OFAC", rows[1][9])
}

func TestLedgerExportService_WithoutStorage(t *testing.T) {
	f := setupRegistryTest(t)
	exporter := NewLedgerExportService(NewMatchService(f.db), nil, "ledger")

	now := time.Now().UTC()
	_, err := exporter.Export(context.Background(), now.Add(-time.Hour), now)
	assert.Error(t, err)

	var buf bytes.Buffer
	n, err := exporter.WriteLedger(&buf, now.Add(-time.Hour), now)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NotZero(t, buf.Len())
}
