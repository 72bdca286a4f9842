package service

import (
	"time"

	"github.com/ikkim/screening-backend/internal/app/model"
	"github.com/ikkim/screening-backend/internal/app/repository"
	"github.com/ikkim/screening-backend/internal/metrics"
	"github.com/ikkim/screening-backend/internal/screening"
	"github.com/ikkim/screening-backend/pkg/logger"
	"gorm.io/gorm"
)

// MatchNotifier receives ledger rows after their transaction has committed.
type MatchNotifier interface {
	NotifyMatches(records []model.MatchRecord)
}

// ScreeningResult is the outcome of one run, published once the caller commits.
type ScreeningResult struct {
	Origin   model.MatchOrigin
	Outcome  string // exact, fuzzy or none
	Records  []model.MatchRecord
	Duration time.Duration
}

// ScreeningService binds the matching engine to a transaction: it reads the
// opposite population and the threshold through tx and appends the ledger rows
// through tx, so a failure anywhere undoes the triggering detail too.
type ScreeningService interface {
	ScreenPersonDetail(tx *gorm.DB, detail *model.NaturalDetail) (*ScreeningResult, error)
	ScreenBlacklistDetail(tx *gorm.DB, detail *model.BlacklistNaturalDetail) (*ScreeningResult, error)
	Publish(result *ScreeningResult)
}

type screeningService struct {
	engine   *screening.Engine
	notifier MatchNotifier
}

func NewScreeningService(engine *screening.Engine, notifier MatchNotifier) ScreeningService {
	return &screeningService{engine: engine, notifier: notifier}
}

func (s *screeningService) ScreenPersonDetail(tx *gorm.DB, detail *model.NaturalDetail) (*ScreeningResult, error) {
	return s.run(tx, model.OriginPerson, detail.NaturalIdentity.Subject(), repository.NewBlacklistRepository(tx),
		func(counterpart uint) (uint, uint) { return detail.PersonID, counterpart })
}

func (s *screeningService) ScreenBlacklistDetail(tx *gorm.DB, detail *model.BlacklistNaturalDetail) (*ScreeningResult, error) {
	return s.run(tx, model.OriginBlacklist, detail.NaturalIdentity.Subject(), repository.NewPersonRepository(tx),
		func(counterpart uint) (uint, uint) { return counterpart, detail.BlacklistedPersonID })
}

// pair orders a counterpart id into (person id, blacklisted person id).
type pair func(counterpart uint) (personID, blacklistedPersonID uint)

func (s *screeningService) run(tx *gorm.DB, origin model.MatchOrigin, subject screening.Subject, population screening.Population, ids pair) (*ScreeningResult, error) {
	start := time.Now()
	log := logger.WithContext(logger.Fields{
		"origin": origin,
	})

	hits, err := s.engine.Screen(subject, population, configThreshold{repo: repository.NewConfigRepository(tx)})
	if err != nil {
		log.Error("Screening run failed", err)
		return nil, err
	}

	result := &ScreeningResult{Origin: origin, Outcome: "none"}
	searchDate := time.Now().UTC()
	for _, hit := range hits {
		personID, blacklistedPersonID := ids(hit.CounterpartID)
		result.Records = append(result.Records, model.MatchRecord{
			PersonID:            personID,
			BlacklistedPersonID: blacklistedPersonID,
			IsMatch:             true,
			Score:               hit.Verdict.Score,
			Kind:                hit.Verdict.Kind,
			Origin:              origin,
			SearchDate:          searchDate,
		})
		result.Outcome = string(hit.Verdict.Kind)
	}

	if err := repository.NewMatchRepository(tx).Append(result.Records); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	log.Info("Screening run finished", logger.Fields{
		"outcome": result.Outcome,
		"matches": len(result.Records),
	})
	return result, nil
}

// Publish records the run and broadcasts its matches. Call it only after
// commit; runs whose transaction rolled back are never counted.
func (s *screeningService) Publish(result *ScreeningResult) {
	if result == nil {
		return
	}
	metrics.ObserveScreening(string(result.Origin), result.Outcome, result.Duration)
	if len(result.Records) == 0 {
		return
	}
	metrics.AddMatches(string(result.Origin), result.Outcome, len(result.Records))
	if s.notifier != nil {
		s.notifier.NotifyMatches(result.Records)
	}
}
