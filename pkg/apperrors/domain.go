package apperrors

import (
	"net/http"
)

/*
Factories for the profile-wizard error taxonomy.
Validation never reaches the store, media failures surface as Upload/Delete,
store failures as Persistence, and stale writes as Conflict.
*/

// =========================================================================
// Validation
// =========================================================================

// ValidationError carries a field -> message map (or any detail payload).
func ValidationError(details interface{}) *AppError {
	return New(CodeValidationFailed, "validation", "Validation failed", http.StatusBadRequest).WithDetails(details)
}

// NewValidationError is the single-field shorthand.
func NewValidationError(field, message string) *AppError {
	return New(CodeValidationFailed, "validation", message, http.StatusBadRequest).
		WithDetails(map[string]string{field: message})
}

// =========================================================================
// Lookup and concurrency
// =========================================================================

func NotFoundError(domain, message string) *AppError {
	return New(CodeNotFound, domain, message, http.StatusNotFound)
}

// ErrNotFound wraps a repository miss.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ConflictError reports that the stored version has moved past the caller's etag.
func ConflictError(message string) *AppError {
	return New(CodeConflict, "profile_store", message, http.StatusConflict)
}

func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// =========================================================================
// Media store
// =========================================================================

func UploadError(err error) *AppError {
	return Wrap(err, CodeUploadFailed, "media", "Failed to upload file", http.StatusBadGateway)
}

func DeleteError(err error) *AppError {
	return Wrap(err, CodeDeleteFailed, "media", "Failed to delete file", http.StatusBadGateway)
}

var ErrFileTooLarge = New(
	CodeLimitExceeded,
	"validation",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge,
)

var ErrInvalidFileType = New(
	CodeValidationFailed,
	"validation",
	"The provided file type is not allowed",
	http.StatusUnsupportedMediaType,
)

// =========================================================================
// Profile store
// =========================================================================

func PersistenceError(err error) *AppError {
	return Wrap(err, CodePersistenceFailed, "profile_store", "Failed to save profile", http.StatusInternalServerError)
}

// =========================================================================
// Phone verification
// =========================================================================

func VerificationError(message string, err error) *AppError {
	return Wrap(err, CodeVerificationFailed, "verification", message, http.StatusUnprocessableEntity)
}

var ErrTooManyRequests = New(
	CodeTooManyRequests,
	"verification",
	"Too many verification requests, try again later",
	http.StatusTooManyRequests,
)

// =========================================================================
// Image pipeline
// =========================================================================

func InvalidCropError(err error) *AppError {
	return Wrap(err, CodeInvalidCrop, "image", "Invalid crop selection", http.StatusUnprocessableEntity)
}

func CanvasUnavailableError(err error) *AppError {
	return Wrap(err, CodeCanvasUnavailable, "image", "Image canvas unavailable", http.StatusInternalServerError)
}

// =========================================================================
// Auth
// =========================================================================

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrProfileIncomplete = New(
	CodeForbidden,
	"auth",
	"Professional role requires a completed profile",
	http.StatusForbidden,
)
