package repository

import (
	"strings"
	"time"

	"github.com/ikkim/screening-backend/internal/app/model"
	"github.com/ikkim/screening-backend/internal/screening"
	"github.com/ikkim/screening-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PersonFilter struct {
	Kind           *model.PersonKind
	Active         *bool
	Name           string // substring of the full name or legal name
	IncludeDeleted bool
	Skip           int
	Limit          int
}

// PersonRepository stores persons and their write-once details. Its
// ExactCandidates and Candidates methods expose the natural-detail population
// that blacklist details are screened against.
type PersonRepository interface {
	Create(person *model.Person) error
	FindByID(id uint) (*model.Person, error)
	List(filter PersonFilter) ([]model.Person, int64, error)
	SoftDelete(id uint, reason string, at time.Time) error
	HasDetail(personID uint) (bool, error)
	CreateNaturalDetail(detail *model.NaturalDetail) error
	CreateJuridicalDetail(detail *model.JuridicalDetail) error
	ExactCandidates(subject screening.Subject) ([]screening.Candidate, error)
	Candidates() ([]screening.Candidate, error)
}

type personRepository struct {
	db *gorm.DB
}

func NewPersonRepository(db *gorm.DB) PersonRepository {
	return &personRepository{db: db}
}

func (r *personRepository) Create(person *model.Person) error {
	logger.Debug("Creating person in database", logger.Fields{
		"type": person.Kind,
	})

	if err := r.db.Omit(clause.Associations).Create(person).Error; err != nil {
		logger.Error("Failed to create person in database", err, logger.Fields{
			"type": person.Kind,
		})
		return err
	}

	logger.Debug("Person created in database", logger.Fields{
		"person_id": person.ID,
	})
	return nil
}

func (r *personRepository) FindByID(id uint) (*model.Person, error) {
	logger.Debug("Finding person by ID in database", logger.Fields{
		"person_id": id,
	})

	var person model.Person
	err := r.db.
		Preload("NaturalDetail").
		Preload("JuridicalDetail").
		First(&person, id).Error
	if err != nil {
		logger.Error("Failed to find person by ID in database", err, logger.Fields{
			"person_id": id,
		})
		return nil, err
	}

	return &person, nil
}

func (r *personRepository) List(filter PersonFilter) ([]model.Person, int64, error) {
	logger.Debug("Listing persons from database", logger.Fields{
		"filter": filter,
	})

	query := r.db.Model(&model.Person{})
	if !filter.IncludeDeleted {
		query = query.Where("persons.deleted_at IS NULL")
	}
	if filter.Kind != nil {
		query = query.Where("persons.type = ?", *filter.Kind)
	}
	if filter.Active != nil {
		query = query.Where("persons.active = ?", *filter.Active)
	}
	if name := strings.TrimSpace(filter.Name); name != "" {
		pattern := "%" + strings.ToUpper(name) + "%"
		naturals := r.db.Model(&model.NaturalDetail{}).Select("person_id").Where("full_name LIKE ?", pattern)
		juridicals := r.db.Model(&model.JuridicalDetail{}).Select("person_id").Where("UPPER(legal_name) LIKE ?", pattern)
		query = query.Where("(persons.id IN (?) OR persons.id IN (?))", naturals, juridicals)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count persons", err)
		return nil, 0, err
	}

	var persons []model.Person
	err := query.
		Preload("NaturalDetail").
		Preload("JuridicalDetail").
		Order("persons.id ASC").
		Offset(filter.Skip).
		Limit(filter.Limit).
		Find(&persons).Error
	if err != nil {
		logger.Error("Failed to list persons from database", err)
		return nil, 0, err
	}

	logger.Debug("Persons listed from database", logger.Fields{
		"count": len(persons),
		"total": total,
	})
	return persons, total, nil
}

// SoftDelete marks a live person as deleted. It matches no row if the person
// is already deleted.
func (r *personRepository) SoftDelete(id uint, reason string, at time.Time) error {
	logger.Debug("Soft deleting person in database", logger.Fields{
		"person_id": id,
	})

	result := r.db.Model(&model.Person{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{
			"deleted_at":      at,
			"deletion_reason": reason,
			"active":          false,
		})
	if result.Error != nil {
		logger.Error("Failed to soft delete person in database", result.Error, logger.Fields{
			"person_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *personRepository) HasDetail(personID uint) (bool, error) {
	var naturals, juridicals int64
	if err := r.db.Model(&model.NaturalDetail{}).Where("person_id = ?", personID).Count(&naturals).Error; err != nil {
		return false, err
	}
	if err := r.db.Model(&model.JuridicalDetail{}).Where("person_id = ?", personID).Count(&juridicals).Error; err != nil {
		return false, err
	}
	return naturals+juridicals > 0, nil
}

func (r *personRepository) CreateNaturalDetail(detail *model.NaturalDetail) error {
	logger.Debug("Creating natural detail in database", logger.Fields{
		"person_id": detail.PersonID,
	})

	if err := r.db.Create(detail).Error; err != nil {
		logger.Error("Failed to create natural detail in database", err, logger.Fields{
			"person_id": detail.PersonID,
		})
		return err
	}
	return nil
}

func (r *personRepository) CreateJuridicalDetail(detail *model.JuridicalDetail) error {
	logger.Debug("Creating juridical detail in database", logger.Fields{
		"person_id": detail.PersonID,
	})

	if err := r.db.Create(detail).Error; err != nil {
		logger.Error("Failed to create juridical detail in database", err, logger.Fields{
			"person_id": detail.PersonID,
		})
		return err
	}
	return nil
}

func (r *personRepository) livePopulation() *gorm.DB {
	return r.db.Table("natural_details").
		Select("natural_details.person_id AS id, natural_details.full_name AS full_name").
		Joins("JOIN persons ON persons.id = natural_details.person_id").
		Where("persons.deleted_at IS NULL")
}

func (r *personRepository) ExactCandidates(subject screening.Subject) ([]screening.Candidate, error) {
	cond := r.db.Where("natural_details.full_name = ?", subject.FullName)
	if subject.NationalID != nil {
		cond = cond.Or("natural_details.national_id = ?", *subject.NationalID)
	}
	if subject.TaxID != nil {
		cond = cond.Or("natural_details.tax_id = ?", *subject.TaxID)
	}

	var candidates []screening.Candidate
	if err := r.livePopulation().Where(cond).Order("natural_details.person_id").Scan(&candidates).Error; err != nil {
		logger.Error("Failed to query exact person candidates", err)
		return nil, err
	}
	return candidates, nil
}

func (r *personRepository) Candidates() ([]screening.Candidate, error) {
	var candidates []screening.Candidate
	if err := r.livePopulation().Order("natural_details.person_id").Scan(&candidates).Error; err != nil {
		logger.Error("Failed to load person candidates", err)
		return nil, err
	}
	return candidates, nil
}
