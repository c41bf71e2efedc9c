package code

var codeMessageMap = map[int]string{
	// Common
	ErrSuccess:         "Success",
	ErrUnknown:         "Unknown error",
	ErrBind:            "Request could not be parsed",
	ErrValidation:      "Request validation failed",
	ErrTokenInvalid:    "Invalid or missing session",
	ErrTooManyRequests: "Too many requests, please try again later",
	ErrForbidden:       "You do not have access to this resource",

	// Notice
	ErrNoticeNotFound:          "Notice not found",
	ErrNoticeInvalidStatus:     "Invalid notice status",
	ErrNoticeIllegalTransition: "Notice status change is not allowed",
	ErrNoticeInvalidCursor:     "Invalid cursor",
	ErrNoticeInvalidDateRange:  "Start date must not be after end date",
	ErrNoticeInvalidFile:       "A notice must reference an uploaded PDF",

	// Building complex
	ErrBuildingComplexNotFound:    "Building complex not found",
	ErrBuildingComplexInvalidType: "Invalid building complex type",

	// Organisation and billing
	ErrOrganisationNotFound: "Organisation not found",
	ErrOrganisationRequired: "Complete onboarding before using this feature",
	ErrBillingNotFound:      "Billing details not found",
	ErrBillingAlreadyExist:  "Billing details already exist",

	// User and auth
	ErrUserNotFound:          "User not found",
	ErrUserPasswordIncorrect: "Incorrect email or password",

	// Storage, search and email
	ErrStorage:             "File storage is unavailable",
	ErrUnsupportedFileType: "Only PDF files are accepted",
	ErrSearch:              "Search is unavailable",
	ErrEmail:               "Email could not be sent",

	// Database
	ErrDatabase:         "Database error",
	ErrRecordNotFound:   "Record not found",
	ErrMigrationFailed:  "Migration failed",
	ErrConnectionFailed: "Connection failed",
}

var codeStatusMap = map[int]int{
	// Common
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrTokenInvalid:    StatusUnauthorized,
	ErrTooManyRequests: StatusTooManyRequests,
	ErrForbidden:       StatusForbidden,

	// Notice
	ErrNoticeNotFound:          StatusNotFound,
	ErrNoticeInvalidStatus:     StatusBadRequest,
	ErrNoticeIllegalTransition: StatusConflict,
	ErrNoticeInvalidCursor:     StatusBadRequest,
	ErrNoticeInvalidDateRange:  StatusBadRequest,
	ErrNoticeInvalidFile:       StatusBadRequest,

	// Building complex
	ErrBuildingComplexNotFound:    StatusNotFound,
	ErrBuildingComplexInvalidType: StatusBadRequest,

	// Organisation and billing
	ErrOrganisationNotFound: StatusNotFound,
	ErrOrganisationRequired: StatusBadRequest,
	ErrBillingNotFound:      StatusNotFound,
	ErrBillingAlreadyExist:  StatusConflict,

	// User and auth
	ErrUserNotFound:          StatusNotFound,
	ErrUserPasswordIncorrect: StatusUnauthorized,

	// Storage, search and email
	ErrStorage:             StatusBadGateway,
	ErrUnsupportedFileType: StatusBadRequest,
	ErrSearch:              StatusBadGateway,
	ErrEmail:               StatusBadGateway,

	// Database
	ErrDatabase:         StatusInternalServerError,
	ErrRecordNotFound:   StatusNotFound,
	ErrMigrationFailed:  StatusInternalServerError,
	ErrConnectionFailed: StatusInternalServerError,
}

// GetMessage returns the default message for a code.
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "Unknown error"
}

// GetStatus returns the HTTP status for a code.
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
