package service

import (
	"testing"
	"time"

	"github.com/ikkim/screening-backend/internal/screening"
	apperrors "github.com/ikkim/screening-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchService_Queries(t *testing.T) {
	f := setupRegistryTest(t)
	matches := NewMatchService(f.db)

	f.listBlacklisted(t, "SDN-1", naturalInput("Juan", "Perez", "Lopez"))
	f.listBlacklisted(t, "SDN-2", naturalInput("Juan", "Perez", "Lopes"))

	person, records, err := f.persons.CreatePerson(CreatePersonInput{
		Kind:    "natural",
		Natural: naturalInput("Juan", "Perez", "Lopez"),
	})
	require.NoError(t, err)
	require.Len(t, records, 1)

	forPerson, err := matches.MatchesForPerson(person.ID)
	require.NoError(t, err)
	assert.Len(t, forPerson, 1)

	record, err := matches.GetMatch(records[0].ID)
	require.NoError(t, err)
	assert.Equal(t, screening.MatchExact, record.Kind)

	_, err = matches.GetMatch(9999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = matches.MatchesForPerson(9999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = matches.MatchesForBlacklistedPerson(9999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	list, total, err := matches.ListMatches(ListMatchesInput{Kind: "exact"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)

	_, _, err = matches.ListMatches(ListMatchesInput{Kind: "partial"})
	assert.ErrorIs(t, err, apperrors.ErrFormatViolation)

	_, _, err = matches.ListMatches(ListMatchesInput{Limit: MaxPageLimit + 1})
	assert.ErrorIs(t, err, apperrors.ErrFormatViolation)

	now := time.Now().UTC()
	window, err := matches.MatchesBetween(now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, window, 1)

	later, err := matches.MatchesBetween(now.Add(time.Hour), now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, later)

	_, err = matches.MatchesBetween(now, now)
	assert.ErrorIs(t, err, apperrors.ErrFormatViolation)
}
