package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a resolved error code plus message.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError turns storage errors into client-safe codes. It inspects driver
// messages because triggers and constraints surface only as text.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "internal server error"}
	}

	errLower := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: notFoundMessage(context)}
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(errLower, "duplicate key") ||
		strings.Contains(errLower, "unique constraint") {
		return parseDuplicateKeyError(errLower)
	}

	// raised by the immutability triggers installed in db.installGuards
	if strings.Contains(errLower, "immutable record violation") {
		return ErrorInfo{Code: ImmutableRecordViolation, Message: "record is immutable"}
	}

	if strings.Contains(errLower, "check constraint") {
		if strings.Contains(errLower, "deletion") {
			return ErrorInfo{Code: InconsistentDeletionState, Message: "deleted_at and official deletion number must be set together"}
		}
		return ErrorInfo{Code: ValidationInvalidInput, Message: "input violates a constraint"}
	}

	if strings.Contains(errLower, "foreign key constraint") {
		return ErrorInfo{Code: ResourceNotFound, Message: "referenced record not found"}
	}

	if strings.Contains(errLower, "violates not-null constraint") {
		return ErrorInfo{Code: ValidationInvalidInput, Message: "required field missing"}
	}

	return ErrorInfo{Code: InternalServerError, Message: defaultMessage(context)}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	switch {
	case strings.Contains(errLower, "natural_details"),
		strings.Contains(errLower, "juridical_details"),
		strings.Contains(errLower, "person_id"):
		return ErrorInfo{Code: DuplicateDetail, Message: "detail record already exists"}
	case strings.Contains(errLower, "username"), strings.Contains(errLower, "email"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "user already exists"}
	default:
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "record already exists"}
	}
}

func notFoundMessage(context string) string {
	if context == "" {
		return "record not found"
	}
	return context + " not found"
}

func defaultMessage(context string) string {
	if context == "" {
		return "internal server error"
	}
	return "failed to " + context
}
