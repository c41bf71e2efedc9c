package code

// HTTP status codes.
const (
	// StatusOK - 200
	StatusOK = 200
	// StatusBadRequest - 400
	StatusBadRequest = 400
	// StatusUnauthorized - 401
	StatusUnauthorized = 401
	// StatusForbidden - 403
	StatusForbidden = 403
	// StatusNotFound - 404
	StatusNotFound = 404
	// StatusConflict - 409
	StatusConflict = 409
	// StatusTooManyRequests - 429
	StatusTooManyRequests = 429
	// StatusInternalServerError - 500
	StatusInternalServerError = 500
	// StatusBadGateway - 502
	StatusBadGateway = 502
)

// Common codes (100xxx).
const (
	// ErrSuccess - 200: success.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: unknown error.
	ErrUnknown
	// ErrBind - 400: request could not be bound.
	ErrBind
	// ErrValidation - 400: request failed validation.
	ErrValidation
	// ErrTokenInvalid - 401: missing or invalid session token.
	ErrTokenInvalid
	// ErrTooManyRequests - 429: rate limited.
	ErrTooManyRequests
	// ErrForbidden - 403: resource belongs to another organisation.
	ErrForbidden
)

// Notice codes (101xxx).
const (
	// ErrNoticeNotFound - 404
	ErrNoticeNotFound int = iota + 101000
	// ErrNoticeInvalidStatus - 400
	ErrNoticeInvalidStatus
	// ErrNoticeIllegalTransition - 409
	ErrNoticeIllegalTransition
	// ErrNoticeInvalidCursor - 400
	ErrNoticeInvalidCursor
	// ErrNoticeInvalidDateRange - 400
	ErrNoticeInvalidDateRange
	// ErrNoticeInvalidFile - 400
	ErrNoticeInvalidFile
)

// Building complex codes (102xxx).
const (
	// ErrBuildingComplexNotFound - 404
	ErrBuildingComplexNotFound int = iota + 102000
	// ErrBuildingComplexInvalidType - 400
	ErrBuildingComplexInvalidType
)

// Organisation and billing codes (103xxx).
const (
	// ErrOrganisationNotFound - 404
	ErrOrganisationNotFound int = iota + 103000
	// ErrOrganisationRequired - 400: the user has not finished onboarding.
	ErrOrganisationRequired
	// ErrBillingNotFound - 404
	ErrBillingNotFound
	// ErrBillingAlreadyExist - 409
	ErrBillingAlreadyExist
)

// User and auth codes (104xxx).
const (
	// ErrUserNotFound - 404
	ErrUserNotFound int = iota + 104000
	// ErrUserPasswordIncorrect - 401
	ErrUserPasswordIncorrect
)

// Storage, search and email codes (105xxx).
const (
	// ErrStorage - 502: object storage request failed.
	ErrStorage int = iota + 105000
	// ErrUnsupportedFileType - 400
	ErrUnsupportedFileType
	// ErrSearch - 502: hosted search request failed.
	ErrSearch
	// ErrEmail - 502: email provider request failed.
	ErrEmail
)

// Database codes (106xxx).
const (
	// ErrDatabase - 500
	ErrDatabase int = iota + 106000
	// ErrRecordNotFound - 404
	ErrRecordNotFound
	// ErrMigrationFailed - 500
	ErrMigrationFailed
	// ErrConnectionFailed - 500
	ErrConnectionFailed
)
