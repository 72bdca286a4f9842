package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/ikkim/screening-backend/internal/errors"
	"github.com/ikkim/screening-backend/internal/screening"
	"gorm.io/datatypes"
)

// PersonKind separates individuals from legal entities.
type PersonKind string

const (
	KindNatural   PersonKind = "natural"
	KindJuridical PersonKind = "juridical"
)

func (k PersonKind) Valid() bool {
	return k == KindNatural || k == KindJuridical
}

const (
	NationalIDLength = 18
	MaxNameLength    = 100
	MaxLegalName     = 200
	DateLayout       = "2006-01-02"
)

var (
	nationalIDPattern = regexp.MustCompile(`^[A-Z0-9]{18}$`)
	taxIDPattern      = regexp.MustCompile(`^[A-ZÑ&0-9]{12,13}$`)
)

// NaturalIdentity is the column set shared by person and blacklist natural details.
type NaturalIdentity struct {
	NationalID    *string         `gorm:"type:varchar(18);index" json:"national_id,omitempty"` // CURP
	TaxID         *string         `gorm:"type:varchar(13);index" json:"tax_id,omitempty"`      // RFC
	GivenName     string          `gorm:"type:varchar(100);not null" json:"given_name"`
	FirstSurname  string          `gorm:"type:varchar(100);not null" json:"first_surname"`
	SecondSurname *string         `gorm:"type:varchar(100)" json:"second_surname,omitempty"`
	DateOfBirth   *datatypes.Date `json:"date_of_birth,omitempty"`
	FullName      string          `gorm:"type:varchar(302);not null;index" json:"full_name"` // derived once at creation
}

// Canonicalize trims and uppercases identifiers and checks every field format.
// It never touches FullName.
func (n *NaturalIdentity) Canonicalize() error {
	var err error
	if n.NationalID, err = canonicalIdentifier(n.NationalID, nationalIDPattern, "national_id"); err != nil {
		return err
	}
	if n.TaxID, err = canonicalIdentifier(n.TaxID, taxIDPattern, "tax_id"); err != nil {
		return err
	}
	if n.GivenName, err = requiredName(n.GivenName, "given_name", MaxNameLength); err != nil {
		return err
	}
	if n.FirstSurname, err = requiredName(n.FirstSurname, "first_surname", MaxNameLength); err != nil {
		return err
	}
	if n.SecondSurname != nil {
		second := strings.TrimSpace(*n.SecondSurname)
		if second == "" {
			n.SecondSurname = nil
		} else if utf8.RuneCountInString(second) > MaxNameLength {
			return fmt.Errorf("%w: second_surname exceeds %d characters", apperrors.ErrFormatViolation, MaxNameLength)
		} else {
			n.SecondSurname = &second
		}
	}
	return notInFuture(n.DateOfBirth, "date_of_birth")
}

func (n *NaturalIdentity) deriveFullName() {
	second := ""
	if n.SecondSurname != nil {
		second = *n.SecondSurname
	}
	n.FullName = screening.Normalize(n.GivenName, n.FirstSurname, second)
}

// Subject is the screening view of the identity.
func (n *NaturalIdentity) Subject() screening.Subject {
	return screening.Subject{
		FullName:   n.FullName,
		NationalID: n.NationalID,
		TaxID:      n.TaxID,
	}
}

// JuridicalIdentity is the column set shared by juridical details.
type JuridicalIdentity struct {
	TaxID             *string         `gorm:"type:varchar(13);index" json:"tax_id,omitempty"`
	LegalName         string          `gorm:"type:varchar(200);not null" json:"legal_name"`
	IncorporationDate *datatypes.Date `json:"incorporation_date,omitempty"`
}

func (j *JuridicalIdentity) Canonicalize() error {
	var err error
	if j.TaxID, err = canonicalIdentifier(j.TaxID, taxIDPattern, "tax_id"); err != nil {
		return err
	}
	if j.LegalName, err = requiredName(j.LegalName, "legal_name", MaxLegalName); err != nil {
		return err
	}
	return notInFuture(j.IncorporationDate, "incorporation_date")
}

// ParseDate reads an optional YYYY-MM-DD value. Empty input yields nil.
func ParseDate(value, field string) (*datatypes.Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", apperrors.ErrFormatViolation, field)
	}
	d := datatypes.Date(t)
	return &d, nil
}

func canonicalIdentifier(value *string, pattern *regexp.Regexp, field string) (*string, error) {
	if value == nil {
		return nil, nil
	}
	v := strings.ToUpper(strings.TrimSpace(*value))
	if v == "" {
		return nil, nil
	}
	if !pattern.MatchString(v) {
		return nil, fmt.Errorf("%w: invalid %s %q", apperrors.ErrFormatViolation, field, v)
	}
	return &v, nil
}

func requiredName(value, field string, max int) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", fmt.Errorf("%w: %s is required", apperrors.ErrFormatViolation, field)
	}
	if utf8.RuneCountInString(v) > max {
		return "", fmt.Errorf("%w: %s exceeds %d characters", apperrors.ErrFormatViolation, field, max)
	}
	return v, nil
}

func notInFuture(d *datatypes.Date, field string) error {
	if d != nil && time.Time(*d).After(time.Now()) {
		return fmt.Errorf("%w: %s is in the future", apperrors.ErrFormatViolation, field)
	}
	return nil
}

// immutable is returned by the update and delete hooks of write-once rows.
func immutable(table string) error {
	return fmt.Errorf("%w: %s rows cannot be modified", apperrors.ErrImmutableRecord, table)
}
