package errors

import (
	"errors"
	"net/http"
)

// Domain sentinels. Services wrap them with fmt.Errorf("%w: ...") to add detail;
// callers test with errors.Is. None of them is retried automatically.
var (
	ErrFormatViolation           = errors.New("format violation")
	ErrDuplicateDetail           = errors.New("detail record already exists")
	ErrImmutableRecord           = errors.New("immutable record violation")
	ErrMissingJustification      = errors.New("missing justification")
	ErrInconsistentDeletionState = errors.New("inconsistent deletion state")
	ErrConfigMissing             = errors.New("required configuration missing")
	ErrConfigInvalid             = errors.New("configuration value invalid")
	ErrDegenerateName            = errors.New("normalized name is empty")
	ErrNotFound                  = errors.New("record not found")
	ErrAlreadyDeleted            = errors.New("record already deleted")
	ErrKindMismatch              = errors.New("detail kind does not match parent kind")
)

type domainMapping struct {
	err    error
	status int
	code   string
}

// Order matters only when an error wraps more than one sentinel.
var domainMappings = []domainMapping{
	{ErrImmutableRecord, http.StatusConflict, ImmutableRecordViolation},
	{ErrInconsistentDeletionState, http.StatusConflict, InconsistentDeletionState},
	{ErrDuplicateDetail, http.StatusConflict, DuplicateDetail},
	{ErrAlreadyDeleted, http.StatusConflict, ResourceDeleted},
	{ErrKindMismatch, http.StatusConflict, KindMismatch},
	{ErrFormatViolation, http.StatusBadRequest, FormatViolation},
	{ErrMissingJustification, http.StatusBadRequest, MissingJustification},
	{ErrNotFound, http.StatusNotFound, ResourceNotFound},
	{ErrDegenerateName, http.StatusUnprocessableEntity, DegenerateName},
	{ErrConfigMissing, http.StatusInternalServerError, ConfigMissing},
	{ErrConfigInvalid, http.StatusInternalServerError, ConfigInvalid},
}

// FromDomainError resolves the HTTP status and error body for err. Unknown
// errors fall back to ParseError, which understands database failures.
func FromDomainError(err error, context string) (int, ErrorInfo) {
	for _, m := range domainMappings {
		if errors.Is(err, m.err) {
			return m.status, ErrorInfo{Code: m.code, Message: err.Error()}
		}
	}

	info := ParseError(err, context)
	switch info.Code {
	case ResourceNotFound:
		return http.StatusNotFound, info
	case ResourceAlreadyExists, DuplicateDetail, ImmutableRecordViolation, InconsistentDeletionState:
		return http.StatusConflict, info
	case ValidationInvalidInput:
		return http.StatusBadRequest, info
	default:
		return http.StatusInternalServerError, info
	}
}
