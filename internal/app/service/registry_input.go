package service

import (
	"github.com/ikkim/screening-backend/internal/app/model"
)

// NaturalDetailInput is the caller-supplied part of a natural detail. Dates use YYYY-MM-DD.
type NaturalDetailInput struct {
	NationalID    *string
	TaxID         *string
	GivenName     string
	FirstSurname  string
	SecondSurname *string
	DateOfBirth   string
}

// identity validates the input and returns canonical columns. FullName stays
// empty until the row is created.
func (in NaturalDetailInput) identity() (model.NaturalIdentity, error) {
	dob, err := model.ParseDate(in.DateOfBirth, "date_of_birth")
	if err != nil {
		return model.NaturalIdentity{}, err
	}
	id := model.NaturalIdentity{
		NationalID:    in.NationalID,
		TaxID:         in.TaxID,
		GivenName:     in.GivenName,
		FirstSurname:  in.FirstSurname,
		SecondSurname: in.SecondSurname,
		DateOfBirth:   dob,
	}
	if err := id.Canonicalize(); err != nil {
		return model.NaturalIdentity{}, err
	}
	return id, nil
}

type JuridicalDetailInput struct {
	TaxID             *string
	LegalName         string
	IncorporationDate string
}

func (in JuridicalDetailInput) identity() (model.JuridicalIdentity, error) {
	date, err := model.ParseDate(in.IncorporationDate, "incorporation_date")
	if err != nil {
		return model.JuridicalIdentity{}, err
	}
	id := model.JuridicalIdentity{
		TaxID:             in.TaxID,
		LegalName:         in.LegalName,
		IncorporationDate: date,
	}
	if err := id.Canonicalize(); err != nil {
		return model.JuridicalIdentity{}, err
	}
	return id, nil
}

// detailInputs is the validated form of an optional natural or juridical detail.
type detailInputs struct {
	natural   *model.NaturalIdentity
	juridical *model.JuridicalIdentity
}

func validateDetails(kind model.PersonKind, natural *NaturalDetailInput, juridical *JuridicalDetailInput) (detailInputs, error) {
	var out detailInputs
	if !kind.Valid() {
		return out, formatViolation("type must be natural or juridical")
	}
	if natural != nil && juridical != nil {
		return out, kindMismatch("a person carries either a natural or a juridical detail")
	}
	if natural != nil {
		if kind != model.KindNatural {
			return out, kindMismatch("natural detail on a juridical person")
		}
		id, err := natural.identity()
		if err != nil {
			return out, err
		}
		out.natural = &id
	}
	if juridical != nil {
		if kind != model.KindJuridical {
			return out, kindMismatch("juridical detail on a natural person")
		}
		id, err := juridical.identity()
		if err != nil {
			return out, err
		}
		out.juridical = &id
	}
	return out, nil
}
