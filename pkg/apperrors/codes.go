package apperrors

// ErrorCode is a machine-readable error code returned to clients.
type ErrorCode string

const (
	// System
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Business rules
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeLimitExceeded    ErrorCode = "LIMIT_EXCEEDED"
	CodeInvalidOperation ErrorCode = "INVALID_OPERATION"
	CodeTooManyRequests  ErrorCode = "TOO_MANY_REQUESTS"

	// Media and profile store
	CodeUploadFailed      ErrorCode = "UPLOAD_FAILED"
	CodeDeleteFailed      ErrorCode = "DELETE_FAILED"
	CodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"

	// Phone verification
	CodeVerificationFailed ErrorCode = "VERIFICATION_FAILED"

	// Image pipeline
	CodeInvalidCrop       ErrorCode = "INVALID_CROP"
	CodeCanvasUnavailable ErrorCode = "CANVAS_UNAVAILABLE"

	// Auth
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeInvalidToken ErrorCode = "INVALID_TOKEN"
)
