package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/ikkim/screening-backend/config"
	"github.com/ikkim/screening-backend/internal/app/model"
	"github.com/ikkim/screening-backend/internal/app/service"
	"github.com/ikkim/screening-backend/internal/db"
	apperrors "github.com/ikkim/screening-backend/internal/errors"
	"github.com/ikkim/screening-backend/internal/screening"
	"github.com/ikkim/screening-backend/internal/spreadsheet"
	"github.com/ikkim/screening-backend/pkg/logger"
)

// Imports blacklisted persons from an XLSX sheet. Every row goes through the
// blacklist service, so each natural detail is screened against the persons
// registry exactly as an API call would be.
func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: go run ./cmd/import <blacklist_short_name> <xlsx_file_path>")
	}
	shortName, filePath := os.Args[1], os.Args[2]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.Initialize(logger.Config{Level: "warn", Format: "console", EnableColor: true})

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	file, err := os.Open(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	defer file.Close()

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, err := spreadsheet.ReadBlacklistRows(file)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}
	fmt.Printf("Total rows to import: %d\n", len(rows))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	screeningService := service.NewScreeningService(screening.NewEngine(screening.Levenshtein{}), nil)
	blacklistService := service.NewBlacklistService(db.GetDB(), screeningService)

	entry, err := blacklistService.FindBlacklistEntryByShortName(shortName)
	if errors.Is(err, apperrors.ErrNotFound) {
		entry, err = blacklistService.CreateBlacklistEntry(shortName, "")
	}
	if err != nil {
		log.Fatal("Failed to resolve blacklist entry:", err)
	}

	imported, matched, failed := 0, 0, 0
	for _, row := range rows {
		_, matches, err := blacklistService.CreateBlacklistedPerson(entry.ID, rowInput(row))
		if err != nil {
			failed++
			fmt.Printf("Row %d skipped: %v\n", row.Line, err)
			continue
		}
		imported++
		matched += len(matches)
	}

	fmt.Println("Import completed.")
	fmt.Printf("Imported: %d, failed: %d, match records created: %d\n", imported, failed, matched)
}

func rowInput(row spreadsheet.BlacklistRow) service.CreateBlacklistedPersonInput {
	input := service.CreateBlacklistedPersonInput{
		Kind:                       model.PersonKind(row.Get(spreadsheet.ColumnType)),
		OfficialRegistrationNumber: row.Get(spreadsheet.ColumnOfficialRegistrationNumber),
		Attributes:                 row.Attributes,
	}

	switch input.Kind {
	case model.KindNatural:
		input.Natural = &service.NaturalDetailInput{
			NationalID:    row.Optional(spreadsheet.ColumnNationalID),
			TaxID:         row.Optional(spreadsheet.ColumnTaxID),
			GivenName:     row.Get(spreadsheet.ColumnGivenName),
			FirstSurname:  row.Get(spreadsheet.ColumnFirstSurname),
			SecondSurname: row.Optional(spreadsheet.ColumnSecondSurname),
			DateOfBirth:   row.Get(spreadsheet.ColumnDateOfBirth),
		}
	case model.KindJuridical:
		input.Juridical = &service.JuridicalDetailInput{
			TaxID:             row.Optional(spreadsheet.ColumnTaxID),
			LegalName:         row.Get(spreadsheet.ColumnLegalName),
			IncorporationDate: row.Get(spreadsheet.ColumnIncorporationDate),
		}
	}
	return input
}
