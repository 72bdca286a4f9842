package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	apperrors "github.com/ikkim/screening-backend/internal/errors"
)

func strPtr(s string) *string { return &s }

func TestNaturalIdentity_Canonicalize(t *testing.T) {
	n := NaturalIdentity{
		NationalID:    strPtr(" peca850101hdfrrn09 "),
		TaxID:         strPtr("peca850101ab1"),
		GivenName:     "  Juan Carlos ",
		FirstSurname:  "Perez",
		SecondSurname: strPtr("   "),
	}

	require.NoError(t, n.Canonicalize())
	assert.Equal(t, "PECA850101HDFRRN09", *n.NationalID)
	assert.Equal(t, "PECA850101AB1", *n.TaxID)
	assert.Equal(t, "Juan Carlos", n.GivenName)
	assert.Nil(t, n.SecondSurname)
	assert.Empty(t, n.FullName)
}

func TestNaturalIdentity_FormatViolations(t *testing.T) {
	future := datatypes.Date(time.Now().AddDate(1, 0, 0))
	tests := []struct {
		name string
		in   NaturalIdentity
	}{
		{"short national id", NaturalIdentity{NationalID: strPtr("ABC"), GivenName: "A", FirstSurname: "B"}},
		{"long tax id", NaturalIdentity{TaxID: strPtr("ABCDEFGHIJKLMN"), GivenName: "A", FirstSurname: "B"}},
		{"missing given name", NaturalIdentity{FirstSurname: "B"}},
		{"future birth date", NaturalIdentity{GivenName: "A", FirstSurname: "B", DateOfBirth: &future}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Canonicalize()
			assert.ErrorIs(t, err, apperrors.ErrFormatViolation)
		})
	}
}

func TestNaturalDetail_DerivesFullNameOnCreate(t *testing.T) {
	d := &NaturalDetail{NaturalIdentity: NaturalIdentity{
		GivenName:     "Ana",
		FirstSurname:  "Pérez",
		SecondSurname: strPtr("López"),
	}}

	require.NoError(t, d.BeforeCreate(nil))
	assert.Equal(t, "ANA PÉREZ LÓPEZ", d.FullName)
	assert.ErrorIs(t, d.BeforeUpdate(nil), apperrors.ErrImmutableRecord)
	assert.ErrorIs(t, d.BeforeDelete(nil), apperrors.ErrImmutableRecord)
}

func TestBlacklistedPerson_DeletionStateMustAgree(t *testing.T) {
	now := time.Now()

	assert.NoError(t, (&BlacklistedPerson{}).BeforeSave(nil))
	assert.NoError(t, (&BlacklistedPerson{DeletedAt: &now, OfficialDeletionNumber: strPtr("DOF-1")}).BeforeSave(nil))
	assert.ErrorIs(t, (&BlacklistedPerson{DeletedAt: &now}).BeforeSave(nil), apperrors.ErrInconsistentDeletionState)
	assert.ErrorIs(t, (&BlacklistedPerson{OfficialDeletionNumber: strPtr("DOF-1")}).BeforeSave(nil), apperrors.ErrInconsistentDeletionState)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("1985-01-01", "date_of_birth")
	require.NoError(t, err)
	assert.Equal(t, 1985, time.Time(*d).Year())

	d, err = ParseDate("", "date_of_birth")
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = ParseDate("01/01/1985", "date_of_birth")
	assert.ErrorIs(t, err, apperrors.ErrFormatViolation)
}
