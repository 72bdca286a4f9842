package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ikkim/screening-backend/internal/app/model"
	"github.com/ikkim/screening-backend/internal/app/repository"
	apperrors "github.com/ikkim/screening-backend/internal/errors"
	"github.com/ikkim/screening-backend/pkg/logger"
	"gorm.io/gorm"
)

type CreatePersonInput struct {
	Kind      model.PersonKind
	Active    *bool // defaults to true
	Natural   *NaturalDetailInput
	Juridical *JuridicalDetailInput
}

type ListPersonsInput struct {
	Kind   *model.PersonKind
	Active *bool
	Name   string
	Skip   int
	Limit  int
}

type PersonService interface {
	CreatePerson(input CreatePersonInput) (*model.Person, []model.MatchRecord, error)
	CreateNaturalDetail(personID uint, input NaturalDetailInput) (*model.NaturalDetail, []model.MatchRecord, error)
	CreateJuridicalDetail(personID uint, input JuridicalDetailInput) (*model.JuridicalDetail, error)
	SoftDeletePerson(personID uint, reason string) (*model.Person, error)
	GetPerson(personID uint) (*model.Person, error)
	ListPersons(input ListPersonsInput) ([]model.Person, int64, error)
}

type personService struct {
	db        *gorm.DB
	screening ScreeningService
}

func NewPersonService(db *gorm.DB, screening ScreeningService) PersonService {
	return &personService{db: db, screening: screening}
}

func (s *personService) CreatePerson(input CreatePersonInput) (*model.Person, []model.MatchRecord, error) {
	logger.Info("Creating person", logger.Fields{
		"type":          input.Kind,
		"has_natural":   input.Natural != nil,
		"has_juridical": input.Juridical != nil,
	})

	details, err := validateDetails(input.Kind, input.Natural, input.Juridical)
	if err != nil {
		logger.Warn("Person creation rejected", logger.Fields{"error": err.Error()})
		return nil, nil, err
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}
	person := &model.Person{Kind: input.Kind, Active: active}

	var result *ScreeningResult
	err = withTransaction(s.db, func(tx *gorm.DB) error {
		repo := repository.NewPersonRepository(tx)
		if err := repo.Create(person); err != nil {
			return err
		}
		if details.natural != nil {
			detail := &model.NaturalDetail{PersonID: person.ID, NaturalIdentity: *details.natural}
			if err := repo.CreateNaturalDetail(detail); err != nil {
				return duplicateDetail(err, "person", person.ID)
			}
			res, err := s.screening.ScreenPersonDetail(tx, detail)
			result = res
			return err
		}
		if details.juridical != nil {
			detail := &model.JuridicalDetail{PersonID: person.ID, JuridicalIdentity: *details.juridical}
			return duplicateDetail(repo.CreateJuridicalDetail(detail), "person", person.ID)
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to create person", err, logger.Fields{"type": input.Kind})
		return nil, nil, err
	}
	s.screening.Publish(result)

	created, err := s.GetPerson(person.ID)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Person created", logger.Fields{
		"person_id": created.ID,
		"matches":   len(recordsOf(result)),
	})
	return created, recordsOf(result), nil
}

func (s *personService) CreateNaturalDetail(personID uint, input NaturalDetailInput) (*model.NaturalDetail, []model.MatchRecord, error) {
	identity, err := input.identity()
	if err != nil {
		return nil, nil, err
	}

	detail := &model.NaturalDetail{PersonID: personID, NaturalIdentity: identity}
	var result *ScreeningResult
	err = withTransaction(s.db, func(tx *gorm.DB) error {
		repo := repository.NewPersonRepository(tx)
		if err := s.checkDetailParent(repo, personID, model.KindNatural); err != nil {
			return err
		}
		if err := repo.CreateNaturalDetail(detail); err != nil {
			return duplicateDetail(err, "person", personID)
		}
		res, err := s.screening.ScreenPersonDetail(tx, detail)
		result = res
		return err
	})
	if err != nil {
		logger.Warn("Natural detail not created", logger.Fields{
			"person_id": personID,
			"error":     err.Error(),
		})
		return nil, nil, err
	}
	s.screening.Publish(result)

	logger.Info("Natural detail created", logger.Fields{
		"person_id": personID,
		"matches":   len(recordsOf(result)),
	})
	return detail, recordsOf(result), nil
}

func (s *personService) CreateJuridicalDetail(personID uint, input JuridicalDetailInput) (*model.JuridicalDetail, error) {
	identity, err := input.identity()
	if err != nil {
		return nil, err
	}

	detail := &model.JuridicalDetail{PersonID: personID, JuridicalIdentity: identity}
	err = withTransaction(s.db, func(tx *gorm.DB) error {
		repo := repository.NewPersonRepository(tx)
		if err := s.checkDetailParent(repo, personID, model.KindJuridical); err != nil {
			return err
		}
		return duplicateDetail(repo.CreateJuridicalDetail(detail), "person", personID)
	})
	if err != nil {
		logger.Warn("Juridical detail not created", logger.Fields{
			"person_id": personID,
			"error":     err.Error(),
		})
		return nil, err
	}

	logger.Info("Juridical detail created", logger.Fields{"person_id": personID})
	return detail, nil
}

// checkDetailParent requires a live parent of the right kind with no detail yet.
func (s *personService) checkDetailParent(repo repository.PersonRepository, personID uint, kind model.PersonKind) error {
	person, err := repo.FindByID(personID)
	if err != nil {
		return notFound(err, "person", personID)
	}
	if person.IsDeleted() {
		return fmt.Errorf("%w: person %d is deleted", apperrors.ErrNotFound, personID)
	}
	if person.Kind != kind {
		return kindMismatch(fmt.Sprintf("person %d is %s", personID, person.Kind))
	}
	exists, err := repo.HasDetail(personID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: person %d", apperrors.ErrDuplicateDetail, personID)
	}
	return nil
}

func (s *personService) SoftDeletePerson(personID uint, reason string) (*model.Person, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: a deletion reason is required", apperrors.ErrMissingJustification)
	}

	err := withTransaction(s.db, func(tx *gorm.DB) error {
		repo := repository.NewPersonRepository(tx)
		person, err := repo.FindByID(personID)
		if err != nil {
			return notFound(err, "person", personID)
		}
		if person.IsDeleted() {
			return fmt.Errorf("%w: person %d", apperrors.ErrAlreadyDeleted, personID)
		}
		err = repo.SoftDelete(personID, reason, time.Now().UTC())
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: person %d", apperrors.ErrAlreadyDeleted, personID)
		}
		return err
	})
	if err != nil {
		logger.Warn("Person soft delete failed", logger.Fields{
			"person_id": personID,
			"error":     err.Error(),
		})
		return nil, err
	}

	logger.Info("Person soft deleted", logger.Fields{"person_id": personID})
	return s.GetPerson(personID)
}

func (s *personService) GetPerson(personID uint) (*model.Person, error) {
	person, err := repository.NewPersonRepository(s.db).FindByID(personID)
	if err != nil {
		return nil, notFound(err, "person", personID)
	}
	return person, nil
}

func (s *personService) ListPersons(input ListPersonsInput) ([]model.Person, int64, error) {
	skip, limit, err := pageBounds(input.Skip, input.Limit)
	if err != nil {
		return nil, 0, err
	}
	if input.Kind != nil && !input.Kind.Valid() {
		return nil, 0, formatViolation("type must be natural or juridical")
	}

	return repository.NewPersonRepository(s.db).List(repository.PersonFilter{
		Kind:   input.Kind,
		Active: input.Active,
		Name:   input.Name,
		Skip:   skip,
		Limit:  limit,
	})
}

func recordsOf(result *ScreeningResult) []model.MatchRecord {
	if result == nil {
		return nil
	}
	return result.Records
}
