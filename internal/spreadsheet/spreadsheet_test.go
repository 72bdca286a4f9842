package spreadsheet

import (
	"bytes"
	"testing"
	"time"

	"github.com/ikkim/screening-backend/internal/app/model"
	"github.com/ikkim/screening-backend/internal/screening"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteMatchLedger(t *testing.T) {
	searched := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []model.MatchRecord{
		{
			ID:                  4,
			PersonID:            10,
			BlacklistedPersonID: 20,
			IsMatch:             true,
			Score:               1,
			Kind:                screening.MatchExact,
			Origin:              model.OriginPerson,
			SearchDate:          searched,
			Person: &model.Person{
				NaturalDetail: &model.NaturalDetail{NaturalIdentity: model.NaturalIdentity{FullName: "JUAN PEREZ"}},
			},
			BlacklistedPerson: &model.BlacklistedPerson{
				BlacklistEntry: &model.BlacklistEntry{ShortName: "OFAC"},
				NaturalDetail:  &model.BlacklistNaturalDetail{NaturalIdentity: model.NaturalIdentity{FullName: "JUAN PEREZ"}},
			},
		},
		{ID: 5, PersonID: 11, BlacklistedPersonID: 21, Kind: screening.MatchFuzzy, Origin: model.OriginBlacklist, SearchDate: searched},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMatchLedger(&buf, records))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(LedgerSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Match ID", rows[0][0])
	assert.Equal(t, []string{"4", "2024-03-01T12:00:00Z", "person", "exact", "1", "10", "JUAN PEREZ", "20", "JUAN PEREZ", "OFAC"}, rows[1])
	assert.Equal(t, "fuzzy", rows[2][3])
	assert.Equal(t, "", rows[2][6])
}

func importWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestReadBlacklistRows(t *testing.T) {
	buf := importWorkbook(t, [][]interface{}{
		{"Type", "Official_Registration_Number", "Given_Name", "First_Surname", "Second_Surname", "Program"},
		{"natural", "SDN-1", " Juan ", "Perez", "", "SDGT"},
		{},
		{"juridical", "SDN-2", "", "", "", ""},
	})

	rows, err := ReadBlacklistRows(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "Juan", rows[0].Get(ColumnGivenName))
	assert.Nil(t, rows[0].Optional(ColumnSecondSurname))
	assert.Equal(t, map[string]string{"program": "SDGT"}, rows[0].Attributes)

	assert.Equal(t, 4, rows[1].Line)
	assert.Equal(t, "juridical", rows[1].Get(ColumnType))
	assert.Empty(t, rows[1].Attributes)
}

func TestReadBlacklistRows_MissingColumn(t *testing.T) {
	buf := importWorkbook(t, [][]interface{}{
		{"type", "given_name"},
		{"natural", "Juan"},
	})

	_, err := ReadBlacklistRows(buf)
	assert.ErrorIs(t, err, ErrMissingColumn)
}
