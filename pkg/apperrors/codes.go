package apperrors

// ErrorCode is the machine-readable code returned to clients.
type ErrorCode string

// Generic codes
const (
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeInvalidRequest   ErrorCode = "INVALID_REQUEST"

	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"
)

// Domain codes. The values are part of the public API contract of the mini-program.
const (
	// auth / user
	CodeWechatAuthFailed ErrorCode = "WECHAT_AUTH_FAILED"
	CodeUserNotFound     ErrorCode = "USER_NOT_FOUND"

	// tutors
	CodeTutorNotFound  ErrorCode = "TUTOR_NOT_FOUND"
	CodeAlreadyDeleted ErrorCode = "ALREADY_DELETED"
	CodeNotDeleted     ErrorCode = "NOT_DELETED"
	CodeTooManyIDs     ErrorCode = "TOO_MANY_IDS"
	CodeNoValidFields  ErrorCode = "NO_VALID_FIELDS"
	CodeNoData         ErrorCode = "NO_DATA"

	// favorites
	CodeNotCollected ErrorCode = "NOT_COLLECTED"

	// bookings
	CodeVIPRequired      ErrorCode = "VIP_REQUIRED"
	CodeVIPExpired       ErrorCode = "VIP_EXPIRED"
	CodeTimeConflict     ErrorCode = "TIME_CONFLICT"
	CodeDuplicateBooking ErrorCode = "DUPLICATE_BOOKING"
	CodeBookingNotFound  ErrorCode = "BOOKING_NOT_FOUND"
	CodeCannotCancel     ErrorCode = "CANNOT_CANCEL"

	// projects
	CodeInvalidType     ErrorCode = "INVALID_TYPE"
	CodeProjectNotFound ErrorCode = "PROJECT_NOT_FOUND"
	CodeAlreadyApplied  ErrorCode = "ALREADY_APPLIED"

	// matching
	CodeInvalidKeywords ErrorCode = "INVALID_KEYWORDS"
	CodeHistoryNotFound ErrorCode = "HISTORY_NOT_FOUND"
)
