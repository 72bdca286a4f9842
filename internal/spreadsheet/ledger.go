package spreadsheet

import (
	"fmt"
	"io"
	"time"

	"github.com/ikkim/screening-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

const (
	LedgerSheet     = "Matches"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var ledgerHeader = []interface{}{
	"Match ID",
	"Search Date (UTC)",
	"Origin",
	"Kind",
	"Score",
	"Person ID",
	"Person Name",
	"Blacklisted Person ID",
	"Blacklisted Name",
	"Blacklist",
}

// WriteMatchLedger renders records as a single-sheet workbook. Records should
// carry their Person and BlacklistedPerson associations; missing ones leave the
// name columns blank.
func WriteMatchLedger(w io.Writer, records []model.MatchRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), LedgerSheet); err != nil {
		return fmt.Errorf("failed to name ledger sheet: %w", err)
	}

	if err := f.SetSheetRow(LedgerSheet, "A1", &ledgerHeader); err != nil {
		return fmt.Errorf("failed to write ledger header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(LedgerSheet, 1, 1, bold); err != nil {
		return err
	}

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := ledgerRow(record)
		if err := f.SetSheetRow(LedgerSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write ledger row %d: %w", record.ID, err)
		}
	}

	if err := f.SetColWidth(LedgerSheet, "A", "J", 22); err != nil {
		return err
	}

	return f.Write(w)
}

func ledgerRow(record model.MatchRecord) []interface{} {
	var personName, listedName, blacklist string
	if record.Person != nil && record.Person.NaturalDetail != nil {
		personName = record.Person.NaturalDetail.FullName
	}
	if bp := record.BlacklistedPerson; bp != nil {
		if bp.NaturalDetail != nil {
			listedName = bp.NaturalDetail.FullName
		}
		if bp.BlacklistEntry != nil {
			blacklist = bp.BlacklistEntry.ShortName
		}
	}

	return []interface{}{
		record.ID,
		record.SearchDate.UTC().Format(time.RFC3339),
		string(record.Origin),
		string(record.Kind),
		record.Score,
		record.PersonID,
		personName,
		record.BlacklistedPersonID,
		listedName,
		blacklist,
	}
}
