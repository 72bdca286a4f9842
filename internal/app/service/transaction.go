package service

import (
	"errors"
	"fmt"

	apperrors "github.com/ikkim/screening-backend/internal/errors"
	"gorm.io/gorm"
)

// withTransaction runs fn inside a transaction. Any error or panic rolls the
// whole unit back.
func withTransaction(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

func notFound(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %d", apperrors.ErrNotFound, what, id)
	}
	return err
}

func duplicateDetail(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s %d", apperrors.ErrDuplicateDetail, what, id)
	}
	return err
}

// Pagination bounds shared by list endpoints.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

func pageBounds(skip, limit int) (int, int, error) {
	if skip < 0 {
		return 0, 0, fmt.Errorf("%w: skip must not be negative", apperrors.ErrFormatViolation)
	}
	if limit == 0 {
		limit = DefaultPageLimit
	}
	if limit < 1 || limit > MaxPageLimit {
		return 0, 0, fmt.Errorf("%w: limit must be between 1 and %d", apperrors.ErrFormatViolation, MaxPageLimit)
	}
	return skip, limit, nil
}

func formatViolation(msg string) error {
	return fmt.Errorf("%w: %s", apperrors.ErrFormatViolation, msg)
}

func kindMismatch(msg string) error {
	return fmt.Errorf("%w: %s", apperrors.ErrKindMismatch, msg)
}
