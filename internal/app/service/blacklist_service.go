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

type CreateBlacklistedPersonInput struct {
	Kind                       model.PersonKind
	OfficialRegistrationNumber string
	Natural                    *NaturalDetailInput
	Juridical                  *JuridicalDetailInput
	Attributes                 map[string]string
}

type BlacklistService interface {
	CreateBlacklistEntry(shortName, description string) (*model.BlacklistEntry, error)
	GetBlacklistEntry(id uint) (*model.BlacklistEntry, error)
	FindBlacklistEntryByShortName(shortName string) (*model.BlacklistEntry, error)
	ListBlacklistEntries() ([]model.BlacklistEntry, error)

	CreateBlacklistedPerson(entryID uint, input CreateBlacklistedPersonInput) (*model.BlacklistedPerson, []model.MatchRecord, error)
	CreateBlacklistNaturalDetail(blacklistedPersonID uint, input NaturalDetailInput) (*model.BlacklistNaturalDetail, []model.MatchRecord, error)
	CreateBlacklistJuridicalDetail(blacklistedPersonID uint, input JuridicalDetailInput) (*model.BlacklistJuridicalDetail, error)
	SoftDeleteBlacklistedPerson(blacklistedPersonID uint, officialDeletionNumber string) (*model.BlacklistedPerson, error)
	GetBlacklistedPerson(id uint) (*model.BlacklistedPerson, error)
	ListBlacklistedPersons(entryID uint, includeDeleted bool, skip, limit int) ([]model.BlacklistedPerson, int64, error)
	SetAttribute(blacklistedPersonID uint, name, value string) (*model.AttributeValue, error)
}

type blacklistService struct {
	db        *gorm.DB
	screening ScreeningService
}

func NewBlacklistService(db *gorm.DB, screening ScreeningService) BlacklistService {
	return &blacklistService{db: db, screening: screening}
}

func (s *blacklistService) CreateBlacklistEntry(shortName, description string) (*model.BlacklistEntry, error) {
	shortName = strings.TrimSpace(shortName)
	if shortName == "" || len(shortName) > 50 {
		return nil, formatViolation("short_name is required and at most 50 characters")
	}

	entry := &model.BlacklistEntry{ShortName: shortName, Description: strings.TrimSpace(description)}
	if err := repository.NewBlacklistRepository(s.db).CreateEntry(entry); err != nil {
		return nil, err
	}

	logger.Info("Blacklist entry created", logger.Fields{
		"blacklist_entry_id": entry.ID,
		"short_name":         entry.ShortName,
	})
	return entry, nil
}

func (s *blacklistService) GetBlacklistEntry(id uint) (*model.BlacklistEntry, error) {
	entry, err := repository.NewBlacklistRepository(s.db).FindEntryByID(id)
	if err != nil {
		return nil, notFound(err, "blacklist entry", id)
	}
	return entry, nil
}

func (s *blacklistService) FindBlacklistEntryByShortName(shortName string) (*model.BlacklistEntry, error) {
	entry, err := repository.NewBlacklistRepository(s.db).FindEntryByShortName(strings.TrimSpace(shortName))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: blacklist entry %q", apperrors.ErrNotFound, shortName)
	}
	return entry, err
}

func (s *blacklistService) ListBlacklistEntries() ([]model.BlacklistEntry, error) {
	return repository.NewBlacklistRepository(s.db).ListEntries()
}

func (s *blacklistService) CreateBlacklistedPerson(entryID uint, input CreateBlacklistedPersonInput) (*model.BlacklistedPerson, []model.MatchRecord, error) {
	logger.Info("Creating blacklisted person", logger.Fields{
		"blacklist_entry_id": entryID,
		"type":               input.Kind,
	})

	registration := strings.TrimSpace(input.OfficialRegistrationNumber)
	if registration == "" {
		return nil, nil, formatViolation("official_registration_number is required")
	}
	details, err := validateDetails(input.Kind, input.Natural, input.Juridical)
	if err != nil {
		return nil, nil, err
	}
	for name := range input.Attributes {
		if strings.TrimSpace(name) == "" {
			return nil, nil, formatViolation("attribute name is required")
		}
	}

	person := &model.BlacklistedPerson{
		BlacklistEntryID:           entryID,
		Kind:                       input.Kind,
		OfficialRegistrationNumber: registration,
	}

	var result *ScreeningResult
	err = withTransaction(s.db, func(tx *gorm.DB) error {
		repo := repository.NewBlacklistRepository(tx)
		if _, err := repo.FindEntryByID(entryID); err != nil {
			return notFound(err, "blacklist entry", entryID)
		}
		if err := repo.CreatePerson(person); err != nil {
			return err
		}
		for name, value := range input.Attributes {
			attr := &model.AttributeValue{BlacklistedPersonID: person.ID, Name: strings.TrimSpace(name), Value: value}
			if err := repo.UpsertAttribute(attr); err != nil {
				return err
			}
		}
		if details.natural != nil {
			detail := &model.BlacklistNaturalDetail{BlacklistedPersonID: person.ID, NaturalIdentity: *details.natural}
			if err := repo.CreateNaturalDetail(detail); err != nil {
				return duplicateDetail(err, "blacklisted person", person.ID)
			}
			res, err := s.screening.ScreenBlacklistDetail(tx, detail)
			result = res
			return err
		}
		if details.juridical != nil {
			detail := &model.BlacklistJuridicalDetail{BlacklistedPersonID: person.ID, JuridicalIdentity: *details.juridical}
			return duplicateDetail(repo.CreateJuridicalDetail(detail), "blacklisted person", person.ID)
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to create blacklisted person", err, logger.Fields{
			"blacklist_entry_id": entryID,
		})
		return nil, nil, err
	}
	s.screening.Publish(result)

	created, err := s.GetBlacklistedPerson(person.ID)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Blacklisted person created", logger.Fields{
		"blacklisted_person_id": created.ID,
		"matches":               len(recordsOf(result)),
	})
	return created, recordsOf(result), nil
}

func (s *blacklistService) CreateBlacklistNaturalDetail(blacklistedPersonID uint, input NaturalDetailInput) (*model.BlacklistNaturalDetail, []model.MatchRecord, error) {
	identity, err := input.identity()
	if err != nil {
		return nil, nil, err
	}

	detail := &model.BlacklistNaturalDetail{BlacklistedPersonID: blacklistedPersonID, NaturalIdentity: identity}
	var result *ScreeningResult
	err = withTransaction(s.db, func(tx *gorm.DB) error {
		repo := repository.NewBlacklistRepository(tx)
		if err := s.checkDetailParent(repo, blacklistedPersonID, model.KindNatural); err != nil {
			return err
		}
		if err := repo.CreateNaturalDetail(detail); err != nil {
			return duplicateDetail(err, "blacklisted person", blacklistedPersonID)
		}
		res, err := s.screening.ScreenBlacklistDetail(tx, detail)
		result = res
		return err
	})
	if err != nil {
		logger.Warn("Blacklist natural detail not created", logger.Fields{
			"blacklisted_person_id": blacklistedPersonID,
			"error":                 err.Error(),
		})
		return nil, nil, err
	}
	s.screening.Publish(result)

	logger.Info("Blacklist natural detail created", logger.Fields{
		"blacklisted_person_id": blacklistedPersonID,
		"matches":               len(recordsOf(result)),
	})
	return detail, recordsOf(result), nil
}

func (s *blacklistService) CreateBlacklistJuridicalDetail(blacklistedPersonID uint, input JuridicalDetailInput) (*model.BlacklistJuridicalDetail, error) {
	identity, err := input.identity()
	if err != nil {
		return nil, err
	}

	detail := &model.BlacklistJuridicalDetail{BlacklistedPersonID: blacklistedPersonID, JuridicalIdentity: identity}
	err = withTransaction(s.db, func(tx *gorm.DB) error {
		repo := repository.NewBlacklistRepository(tx)
		if err := s.checkDetailParent(repo, blacklistedPersonID, model.KindJuridical); err != nil {
			return err
		}
		return duplicateDetail(repo.CreateJuridicalDetail(detail), "blacklisted person", blacklistedPersonID)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Blacklist juridical detail created", logger.Fields{
		"blacklisted_person_id": blacklistedPersonID,
	})
	return detail, nil
}

func (s *blacklistService) checkDetailParent(repo repository.BlacklistRepository, id uint, kind model.PersonKind) error {
	person, err := repo.FindPersonByID(id)
	if err != nil {
		return notFound(err, "blacklisted person", id)
	}
	if person.IsDeleted() {
		return fmt.Errorf("%w: blacklisted person %d is deleted", apperrors.ErrNotFound, id)
	}
	if person.Kind != kind {
		return kindMismatch(fmt.Sprintf("blacklisted person %d is %s", id, person.Kind))
	}
	exists, err := repo.HasDetail(id)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: blacklisted person %d", apperrors.ErrDuplicateDetail, id)
	}
	return nil
}

func (s *blacklistService) SoftDeleteBlacklistedPerson(blacklistedPersonID uint, officialDeletionNumber string) (*model.BlacklistedPerson, error) {
	officialDeletionNumber = strings.TrimSpace(officialDeletionNumber)
	if officialDeletionNumber == "" {
		return nil, fmt.Errorf("%w: official deletion number is required", apperrors.ErrMissingJustification)
	}

	err := withTransaction(s.db, func(tx *gorm.DB) error {
		repo := repository.NewBlacklistRepository(tx)
		person, err := repo.FindPersonByID(blacklistedPersonID)
		if err != nil {
			return notFound(err, "blacklisted person", blacklistedPersonID)
		}
		if person.IsDeleted() {
			return fmt.Errorf("%w: blacklisted person %d", apperrors.ErrAlreadyDeleted, blacklistedPersonID)
		}
		// a concurrent delete may land between the read and the update
		err = repo.SoftDeletePerson(person, officialDeletionNumber, time.Now().UTC())
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: blacklisted person %d", apperrors.ErrAlreadyDeleted, blacklistedPersonID)
		}
		return err
	})
	if err != nil {
		logger.Warn("Blacklisted person soft delete failed", logger.Fields{
			"blacklisted_person_id": blacklistedPersonID,
			"error":                 err.Error(),
		})
		return nil, err
	}

	logger.Info("Blacklisted person soft deleted", logger.Fields{
		"blacklisted_person_id":    blacklistedPersonID,
		"official_deletion_number": officialDeletionNumber,
	})
	return s.GetBlacklistedPerson(blacklistedPersonID)
}

func (s *blacklistService) GetBlacklistedPerson(id uint) (*model.BlacklistedPerson, error) {
	person, err := repository.NewBlacklistRepository(s.db).FindPersonByID(id)
	if err != nil {
		return nil, notFound(err, "blacklisted person", id)
	}
	return person, nil
}

func (s *blacklistService) ListBlacklistedPersons(entryID uint, includeDeleted bool, skip, limit int) ([]model.BlacklistedPerson, int64, error) {
	skip, limit, err := pageBounds(skip, limit)
	if err != nil {
		return nil, 0, err
	}
	repo := repository.NewBlacklistRepository(s.db)
	if _, err := repo.FindEntryByID(entryID); err != nil {
		return nil, 0, notFound(err, "blacklist entry", entryID)
	}
	return repo.ListPersons(entryID, includeDeleted, skip, limit)
}

func (s *blacklistService) SetAttribute(blacklistedPersonID uint, name, value string) (*model.AttributeValue, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, formatViolation("attribute name is required and at most 100 characters")
	}

	attr := &model.AttributeValue{BlacklistedPersonID: blacklistedPersonID, Name: name, Value: value}
	err := withTransaction(s.db, func(tx *gorm.DB) error {
		repo := repository.NewBlacklistRepository(tx)
		if _, err := repo.FindPersonByID(blacklistedPersonID); err != nil {
			return notFound(err, "blacklisted person", blacklistedPersonID)
		}
		return repo.UpsertAttribute(attr)
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Blacklist attribute set", logger.Fields{
		"blacklisted_person_id": blacklistedPersonID,
		"name":                  name,
	})
	return attr, nil
}
