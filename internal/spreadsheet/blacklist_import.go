package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Known import columns. Any other non-empty header becomes a free-form attribute.
const (
	ColumnType                       = "type"
	ColumnOfficialRegistrationNumber = "official_registration_number"
	ColumnNationalID                 = "national_id"
	ColumnTaxID                      = "tax_id"
	ColumnGivenName                  = "given_name"
	ColumnFirstSurname               = "first_surname"
	ColumnSecondSurname              = "second_surname"
	ColumnDateOfBirth                = "date_of_birth"
	ColumnLegalName                  = "legal_name"
	ColumnIncorporationDate          = "incorporation_date"
)

var knownColumns = map[string]bool{
	ColumnType:                       true,
	ColumnOfficialRegistrationNumber: true,
	ColumnNationalID:                 true,
	ColumnTaxID:                      true,
	ColumnGivenName:                  true,
	ColumnFirstSurname:               true,
	ColumnSecondSurname:              true,
	ColumnDateOfBirth:                true,
	ColumnLegalName:                  true,
	ColumnIncorporationDate:          true,
}

var ErrMissingColumn = errors.New("required column missing")

// BlacklistRow is one data row of an import sheet. Line is the 1-based sheet
// row number, for error reporting.
type BlacklistRow struct {
	Line       int
	Values     map[string]string
	Attributes map[string]string
}

// Get returns the trimmed value of a known column, or "".
func (r BlacklistRow) Get(column string) string {
	return r.Values[column]
}

// Optional returns nil for an empty cell.
func (r BlacklistRow) Optional(column string) *string {
	v := r.Values[column]
	if v == "" {
		return nil
	}
	return &v
}

// ReadBlacklistRows reads the first sheet of an import workbook. The first row
// is the header; header names are matched case-insensitively. Blank rows are
// skipped.
func ReadBlacklistRows(r io.Reader) ([]BlacklistRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	header := make([]string, len(rows[0]))
	present := make(map[string]bool, len(rows[0]))
	for i, name := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(name))
		present[header[i]] = true
	}
	for _, required := range []string{ColumnType, ColumnOfficialRegistrationNumber} {
		if !present[required] {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	var out []BlacklistRow
	for i, cells := range rows[1:] {
		row := BlacklistRow{
			Line:       i + 2,
			Values:     make(map[string]string),
			Attributes: make(map[string]string),
		}
		empty := true
		for col, cell := range cells {
			if col >= len(header) || header[col] == "" {
				continue
			}
			value := strings.TrimSpace(cell)
			if value == "" {
				continue
			}
			empty = false
			if knownColumns[header[col]] {
				row.Values[header[col]] = value
			} else {
				row.Attributes[header[col]] = value
			}
		}
		if empty {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}
