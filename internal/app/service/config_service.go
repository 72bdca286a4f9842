package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ikkim/screening-backend/internal/app/model"
	"github.com/ikkim/screening-backend/internal/app/repository"
	apperrors "github.com/ikkim/screening-backend/internal/errors"
	"github.com/ikkim/screening-backend/pkg/logger"
	"gorm.io/gorm"
)

type ConfigService interface {
	Get(name string) (*model.ConfigEntry, error)
	List() ([]model.ConfigEntry, error)
	Set(name, value string) (*model.ConfigEntry, error)
}

type configService struct {
	repo repository.ConfigRepository
}

func NewConfigService(repo repository.ConfigRepository) ConfigService {
	return &configService{repo: repo}
}

func (s *configService) Get(name string) (*model.ConfigEntry, error) {
	entry, err := s.repo.Get(name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: config %q", apperrors.ErrNotFound, name)
	}
	return entry, err
}

func (s *configService) List() ([]model.ConfigEntry, error) {
	return s.repo.List()
}

func (s *configService) Set(name, value string) (*model.ConfigEntry, error) {
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if name == "" {
		return nil, fmt.Errorf("%w: config name is required", apperrors.ErrFormatViolation)
	}
	if name == model.ConfigMaxStringDistance {
		if _, err := ParseMaxDistance(value); err != nil {
			return nil, fmt.Errorf("%w: %s must be a non-negative integer", apperrors.ErrFormatViolation, name)
		}
	}

	entry := &model.ConfigEntry{Name: name, Value: value}
	if err := s.repo.Set(entry); err != nil {
		return nil, err
	}

	logger.Info("Config entry updated", logger.Fields{
		"name":  name,
		"value": value,
	})
	return entry, nil
}

// ParseMaxDistance reads a stored threshold value.
func ParseMaxDistance(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q is not a non-negative integer", apperrors.ErrConfigInvalid, value)
	}
	return n, nil
}

// configThreshold reads the screening threshold from the config store on every call.
type configThreshold struct {
	repo repository.ConfigRepository
}

func (c configThreshold) MaxDistance() (int, error) {
	entry, err := c.repo.Get(model.ConfigMaxStringDistance)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("%w: %s", apperrors.ErrConfigMissing, model.ConfigMaxStringDistance)
	}
	if err != nil {
		return 0, err
	}
	return ParseMaxDistance(entry.Value)
}
