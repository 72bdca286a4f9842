package repository

import (
	"github.com/ikkim/screening-backend/internal/app/model"
	"github.com/ikkim/screening-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConfigRepository interface {
	Get(name string) (*model.ConfigEntry, error)
	List() ([]model.ConfigEntry, error)
	Set(entry *model.ConfigEntry) error
}

type configRepository struct {
	db *gorm.DB
}

func NewConfigRepository(db *gorm.DB) ConfigRepository {
	return &configRepository{db: db}
}

func (r *configRepository) Get(name string) (*model.ConfigEntry, error) {
	var entry model.ConfigEntry
	if err := r.db.Where("name = ?", name).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *configRepository) List() ([]model.ConfigEntry, error) {
	var entries []model.ConfigEntry
	if err := r.db.Order("name ASC").Find(&entries).Error; err != nil {
		logger.Error("Failed to list config entries", err)
		return nil, err
	}
	return entries, nil
}

func (r *configRepository) Set(entry *model.ConfigEntry) error {
	logger.Debug("Writing config entry", logger.Fields{
		"name": entry.Name,
	})

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(entry).Error
	if err != nil {
		logger.Error("Failed to write config entry", err, logger.Fields{
			"name": entry.Name,
		})
		return err
	}
	return nil
}
