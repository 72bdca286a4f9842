package repository

import (
	"time"

	"github.com/ikkim/screening-backend/internal/app/model"
	"github.com/ikkim/screening-backend/pkg/logger"
	"gorm.io/gorm"
)

type MatchFilter struct {
	PersonID            *uint
	BlacklistedPersonID *uint
	Kind                string
	Since               *time.Time
	Skip                int
	Limit               int
}

// MatchRepository is the append-only match ledger. It has no update or delete.
type MatchRepository interface {
	Append(records []model.MatchRecord) error
	FindByID(id uint) (*model.MatchRecord, error)
	FindByPersonID(personID uint) ([]model.MatchRecord, error)
	FindByBlacklistedPersonID(blacklistedPersonID uint) ([]model.MatchRecord, error)
	List(filter MatchFilter) ([]model.MatchRecord, int64, error)
	Between(from, until time.Time) ([]model.MatchRecord, error)
}

type matchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) Append(records []model.MatchRecord) error {
	if len(records) == 0 {
		return nil
	}

	logger.Debug("Appending match records to ledger", logger.Fields{
		"count": len(records),
	})

	if err := r.db.Create(&records).Error; err != nil {
		logger.Error("Failed to append match records", err, logger.Fields{
			"count": len(records),
		})
		return err
	}
	return nil
}

func (r *matchRepository) FindByID(id uint) (*model.MatchRecord, error) {
	var record model.MatchRecord
	err := r.db.
		Preload("Person.NaturalDetail").
		Preload("BlacklistedPerson.NaturalDetail").
		First(&record, id).Error
	if err != nil {
		logger.Error("Failed to find match record by ID", err, logger.Fields{
			"match_id": id,
		})
		return nil, err
	}
	return &record, nil
}

func (r *matchRepository) FindByPersonID(personID uint) ([]model.MatchRecord, error) {
	var records []model.MatchRecord
	err := r.db.
		Where("person_id = ?", personID).
		Order("score DESC, id ASC").
		Find(&records).Error
	if err != nil {
		logger.Error("Failed to find match records by person", err, logger.Fields{
			"person_id": personID,
		})
		return nil, err
	}
	return records, nil
}

func (r *matchRepository) FindByBlacklistedPersonID(blacklistedPersonID uint) ([]model.MatchRecord, error) {
	var records []model.MatchRecord
	err := r.db.
		Where("blacklisted_person_id = ?", blacklistedPersonID).
		Order("score DESC, id ASC").
		Find(&records).Error
	if err != nil {
		logger.Error("Failed to find match records by blacklisted person", err, logger.Fields{
			"blacklisted_person_id": blacklistedPersonID,
		})
		return nil, err
	}
	return records, nil
}

func (r *matchRepository) List(filter MatchFilter) ([]model.MatchRecord, int64, error) {
	query := r.db.Model(&model.MatchRecord{})
	if filter.PersonID != nil {
		query = query.Where("person_id = ?", *filter.PersonID)
	}
	if filter.BlacklistedPersonID != nil {
		query = query.Where("blacklisted_person_id = ?", *filter.BlacklistedPersonID)
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.Since != nil {
		query = query.Where("search_date >= ?", *filter.Since)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count match records", err)
		return nil, 0, err
	}

	var records []model.MatchRecord
	err := query.
		Order("search_date DESC, id DESC").
		Offset(filter.Skip).
		Limit(filter.Limit).
		Find(&records).Error
	if err != nil {
		logger.Error("Failed to list match records", err)
		return nil, 0, err
	}
	return records, total, nil
}

// Since returns every record written at or after since, oldest first, with
// both parties' natural details for reporting.
// Between returns the records stamped in [from, until), oldest first.
func (r *matchRepository) Between(from, until time.Time) ([]model.MatchRecord, error) {
	var records []model.MatchRecord
	err := r.db.
		Preload("Person.NaturalDetail").
		Preload("BlacklistedPerson.NaturalDetail").
		Preload("BlacklistedPerson.BlacklistEntry").
		Where("search_date >= ? AND search_date < ?", from, until).
		Order("search_date ASC, id ASC").
		Find(&records).Error
	if err != nil {
		logger.Error("Failed to load match records in window", err, logger.Fields{
			"from":  from,
			"until": until,
		})
		return nil, err
	}
	return records, nil
}
