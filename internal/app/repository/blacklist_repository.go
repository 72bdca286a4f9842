package repository

import (
	"time"

	"github.com/ikkim/screening-backend/internal/app/model"
	"github.com/ikkim/screening-backend/internal/screening"
	"github.com/ikkim/screening-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlacklistRepository stores blacklist entries and the persons listed on them.
// ExactCandidates and Candidates expose the live blacklist natural-detail
// population that new person details are screened against.
type BlacklistRepository interface {
	CreateEntry(entry *model.BlacklistEntry) error
	FindEntryByID(id uint) (*model.BlacklistEntry, error)
	FindEntryByShortName(shortName string) (*model.BlacklistEntry, error)
	ListEntries() ([]model.BlacklistEntry, error)

	CreatePerson(person *model.BlacklistedPerson) error
	FindPersonByID(id uint) (*model.BlacklistedPerson, error)
	ListPersons(entryID uint, includeDeleted bool, skip, limit int) ([]model.BlacklistedPerson, int64, error)
	SoftDeletePerson(person *model.BlacklistedPerson, officialDeletionNumber string, at time.Time) error
	HasDetail(blacklistedPersonID uint) (bool, error)
	CreateNaturalDetail(detail *model.BlacklistNaturalDetail) error
	CreateJuridicalDetail(detail *model.BlacklistJuridicalDetail) error

	UpsertAttribute(attr *model.AttributeValue) error

	ExactCandidates(subject screening.Subject) ([]screening.Candidate, error)
	Candidates() ([]screening.Candidate, error)
}

type blacklistRepository struct {
	db *gorm.DB
}

func NewBlacklistRepository(db *gorm.DB) BlacklistRepository {
	return &blacklistRepository{db: db}
}

func (r *blacklistRepository) CreateEntry(entry *model.BlacklistEntry) error {
	logger.Debug("Creating blacklist entry in database", logger.Fields{
		"short_name": entry.ShortName,
	})

	if err := r.db.Create(entry).Error; err != nil {
		logger.Error("Failed to create blacklist entry in database", err, logger.Fields{
			"short_name": entry.ShortName,
		})
		return err
	}
	return nil
}

func (r *blacklistRepository) FindEntryByID(id uint) (*model.BlacklistEntry, error) {
	var entry model.BlacklistEntry
	if err := r.db.First(&entry, id).Error; err != nil {
		logger.Error("Failed to find blacklist entry by ID", err, logger.Fields{
			"blacklist_entry_id": id,
		})
		return nil, err
	}
	return &entry, nil
}

func (r *blacklistRepository) FindEntryByShortName(shortName string) (*model.BlacklistEntry, error) {
	var entry model.BlacklistEntry
	if err := r.db.Where("short_name = ?", shortName).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *blacklistRepository) ListEntries() ([]model.BlacklistEntry, error) {
	var entries []model.BlacklistEntry
	if err := r.db.Order("short_name ASC").Find(&entries).Error; err != nil {
		logger.Error("Failed to list blacklist entries", err)
		return nil, err
	}
	return entries, nil
}

func (r *blacklistRepository) CreatePerson(person *model.BlacklistedPerson) error {
	logger.Debug("Creating blacklisted person in database", logger.Fields{
		"blacklist_entry_id": person.BlacklistEntryID,
		"type":               person.Kind,
	})

	if err := r.db.Omit(clause.Associations).Create(person).Error; err != nil {
		logger.Error("Failed to create blacklisted person in database", err, logger.Fields{
			"blacklist_entry_id": person.BlacklistEntryID,
		})
		return err
	}

	logger.Debug("Blacklisted person created in database", logger.Fields{
		"blacklisted_person_id": person.ID,
	})
	return nil
}

func (r *blacklistRepository) FindPersonByID(id uint) (*model.BlacklistedPerson, error) {
	var person model.BlacklistedPerson
	err := r.db.
		Preload("BlacklistEntry").
		Preload("NaturalDetail").
		Preload("JuridicalDetail").
		Preload("Attributes", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		First(&person, id).Error
	if err != nil {
		logger.Error("Failed to find blacklisted person by ID", err, logger.Fields{
			"blacklisted_person_id": id,
		})
		return nil, err
	}
	return &person, nil
}

func (r *blacklistRepository) ListPersons(entryID uint, includeDeleted bool, skip, limit int) ([]model.BlacklistedPerson, int64, error) {
	query := r.db.Model(&model.BlacklistedPerson{}).Where("blacklist_entry_id = ?", entryID)
	if !includeDeleted {
		query = query.Where("deleted_at IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count blacklisted persons", err)
		return nil, 0, err
	}

	var persons []model.BlacklistedPerson
	err := query.
		Preload("NaturalDetail").
		Preload("JuridicalDetail").
		Order("id ASC").
		Offset(skip).
		Limit(limit).
		Find(&persons).Error
	if err != nil {
		logger.Error("Failed to list blacklisted persons", err, logger.Fields{
			"blacklist_entry_id": entryID,
		})
		return nil, 0, err
	}
	return persons, total, nil
}

// SoftDeletePerson sets the deletion marker and number together in one UPDATE
// that matches only a live row. It returns gorm.ErrRecordNotFound when the row
// is already deleted, leaving the stored deletion number untouched. person is
// updated only on success.
func (r *blacklistRepository) SoftDeletePerson(person *model.BlacklistedPerson, officialDeletionNumber string, at time.Time) error {
	logger.Debug("Soft deleting blacklisted person in database", logger.Fields{
		"blacklisted_person_id": person.ID,
	})

	// the hook checks deletion state on this value, not on person
	target := &model.BlacklistedPerson{ID: person.ID, DeletedAt: &at, OfficialDeletionNumber: &officialDeletionNumber}
	result := r.db.Model(target).
		Where("deleted_at IS NULL").
		Updates(map[string]interface{}{
			"deleted_at":               at,
			"official_deletion_number": officialDeletionNumber,
		})
	if result.Error != nil {
		logger.Error("Failed to soft delete blacklisted person in database", result.Error, logger.Fields{
			"blacklisted_person_id": person.ID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	person.DeletedAt = &at
	person.OfficialDeletionNumber = &officialDeletionNumber
	return nil
}

func (r *blacklistRepository) HasDetail(blacklistedPersonID uint) (bool, error) {
	var naturals, juridicals int64
	if err := r.db.Model(&model.BlacklistNaturalDetail{}).Where("blacklisted_person_id = ?", blacklistedPersonID).Count(&naturals).Error; err != nil {
		return false, err
	}
	if err := r.db.Model(&model.BlacklistJuridicalDetail{}).Where("blacklisted_person_id = ?", blacklistedPersonID).Count(&juridicals).Error; err != nil {
		return false, err
	}
	return naturals+juridicals > 0, nil
}

func (r *blacklistRepository) CreateNaturalDetail(detail *model.BlacklistNaturalDetail) error {
	logger.Debug("Creating blacklist natural detail in database", logger.Fields{
		"blacklisted_person_id": detail.BlacklistedPersonID,
	})

	if err := r.db.Create(detail).Error; err != nil {
		logger.Error("Failed to create blacklist natural detail in database", err, logger.Fields{
			"blacklisted_person_id": detail.BlacklistedPersonID,
		})
		return err
	}
	return nil
}

func (r *blacklistRepository) CreateJuridicalDetail(detail *model.BlacklistJuridicalDetail) error {
	logger.Debug("Creating blacklist juridical detail in database", logger.Fields{
		"blacklisted_person_id": detail.BlacklistedPersonID,
	})

	if err := r.db.Create(detail).Error; err != nil {
		logger.Error("Failed to create blacklist juridical detail in database", err, logger.Fields{
			"blacklisted_person_id": detail.BlacklistedPersonID,
		})
		return err
	}
	return nil
}

func (r *blacklistRepository) UpsertAttribute(attr *model.AttributeValue) error {
	logger.Debug("Upserting blacklist attribute in database", logger.Fields{
		"blacklisted_person_id": attr.BlacklistedPersonID,
		"name":                  attr.Name,
	})

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "blacklisted_person_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(attr).Error
	if err != nil {
		logger.Error("Failed to upsert blacklist attribute", err, logger.Fields{
			"blacklisted_person_id": attr.BlacklistedPersonID,
			"name":                  attr.Name,
		})
		return err
	}

	// the conflict path leaves ID and CreatedAt unset
	var stored model.AttributeValue
	if err := r.db.Where("blacklisted_person_id = ? AND name = ?", attr.BlacklistedPersonID, attr.Name).First(&stored).Error; err != nil {
		return err
	}
	*attr = stored
	return nil
}

func (r *blacklistRepository) livePopulation() *gorm.DB {
	return r.db.Table("blacklist_natural_details").
		Select("blacklist_natural_details.blacklisted_person_id AS id, blacklist_natural_details.full_name AS full_name").
		Joins("JOIN blacklisted_persons ON blacklisted_persons.id = blacklist_natural_details.blacklisted_person_id").
		Where("blacklisted_persons.deleted_at IS NULL")
}

func (r *blacklistRepository) ExactCandidates(subject screening.Subject) ([]screening.Candidate, error) {
	cond := r.db.Where("blacklist_natural_details.full_name = ?", subject.FullName)
	if subject.NationalID != nil {
		cond = cond.Or("blacklist_natural_details.national_id = ?", *subject.NationalID)
	}
	if subject.TaxID != nil {
		cond = cond.Or("blacklist_natural_details.tax_id = ?", *subject.TaxID)
	}

	var candidates []screening.Candidate
	err := r.livePopulation().Where(cond).Order("blacklist_natural_details.blacklisted_person_id").Scan(&candidates).Error
	if err != nil {
		logger.Error("Failed to query exact blacklist candidates", err)
		return nil, err
	}
	return candidates, nil
}

func (r *blacklistRepository) Candidates() ([]screening.Candidate, error) {
	var candidates []screening.Candidate
	err := r.livePopulation().Order("blacklist_natural_details.blacklisted_person_id").Scan(&candidates).Error
	if err != nil {
		logger.Error("Failed to load blacklist candidates", err)
		return nil, err
	}
	return candidates, nil
}
