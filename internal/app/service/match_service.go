package service

import (
	"time"

	"github.com/ikkim/screening-backend/internal/app/model"
	"github.com/ikkim/screening-backend/internal/app/repository"
	"github.com/ikkim/screening-backend/internal/screening"
	"gorm.io/gorm"
)

type ListMatchesInput struct {
	PersonID            *uint
	BlacklistedPersonID *uint
	Kind                string
	Since               *time.Time
	Skip                int
	Limit               int
}

// MatchService is the read side of the match ledger.
type MatchService interface {
	GetMatch(id uint) (*model.MatchRecord, error)
	MatchesForPerson(personID uint) ([]model.MatchRecord, error)
	MatchesForBlacklistedPerson(blacklistedPersonID uint) ([]model.MatchRecord, error)
	ListMatches(input ListMatchesInput) ([]model.MatchRecord, int64, error)
	MatchesBetween(from, until time.Time) ([]model.MatchRecord, error)
}

type matchService struct {
	db *gorm.DB
}

func NewMatchService(db *gorm.DB) MatchService {
	return &matchService{db: db}
}

func (s *matchService) GetMatch(id uint) (*model.MatchRecord, error) {
	record, err := repository.NewMatchRepository(s.db).FindByID(id)
	if err != nil {
		return nil, notFound(err, "match record", id)
	}
	return record, nil
}

func (s *matchService) MatchesForPerson(personID uint) ([]model.MatchRecord, error) {
	if _, err := repository.NewPersonRepository(s.db).FindByID(personID); err != nil {
		return nil, notFound(err, "person", personID)
	}
	return repository.NewMatchRepository(s.db).FindByPersonID(personID)
}

func (s *matchService) MatchesForBlacklistedPerson(blacklistedPersonID uint) ([]model.MatchRecord, error) {
	if _, err := repository.NewBlacklistRepository(s.db).FindPersonByID(blacklistedPersonID); err != nil {
		return nil, notFound(err, "blacklisted person", blacklistedPersonID)
	}
	return repository.NewMatchRepository(s.db).FindByBlacklistedPersonID(blacklistedPersonID)
}

func (s *matchService) ListMatches(input ListMatchesInput) ([]model.MatchRecord, int64, error) {
	skip, limit, err := pageBounds(input.Skip, input.Limit)
	if err != nil {
		return nil, 0, err
	}
	if input.Kind != "" && input.Kind != string(screening.MatchExact) && input.Kind != string(screening.MatchFuzzy) {
		return nil, 0, formatViolation("kind must be exact or fuzzy")
	}

	return repository.NewMatchRepository(s.db).List(repository.MatchFilter{
		PersonID:            input.PersonID,
		BlacklistedPersonID: input.BlacklistedPersonID,
		Kind:                input.Kind,
		Since:               input.Since,
		Skip:                skip,
		Limit:               limit,
	})
}

func (s *matchService) MatchesBetween(from, until time.Time) ([]model.MatchRecord, error) {
	if !from.Before(until) {
		return nil, formatViolation("export window start must be before its end")
	}
	return repository.NewMatchRepository(s.db).Between(from, until)
}
