package errors

// Error codes returned in the "error" field of every error response.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients map on the code, never on the message.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthUserInactive       = "AUTH_USER_INACTIVE"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceDeleted       = "RESOURCE_DELETED"

	// ==================== Registry (registries and ledger) ====================
	FormatViolation           = "FORMAT_VIOLATION"
	DuplicateDetail           = "DUPLICATE_DETAIL"
	ImmutableRecordViolation  = "IMMUTABLE_RECORD_VIOLATION"
	MissingJustification      = "MISSING_JUSTIFICATION"
	InconsistentDeletionState = "INCONSISTENT_DELETION_STATE"
	KindMismatch              = "KIND_MISMATCH"

	// ==================== Screening (SCREENING_) ====================
	ConfigMissing  = "SCREENING_CONFIG_MISSING"
	ConfigInvalid  = "SCREENING_CONFIG_INVALID"
	DegenerateName = "SCREENING_DEGENERATE_NAME"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
)
