package services

import (
	"errors"

	"grapher_backend/internal/repositories"
	"grapher_backend/pkg/apperrors"
)

// handleUserError maps user repository sentinels to AppErrors.
func handleUserError(err error) error {
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repositories.ErrUserNotFound):
		return apperrors.NotFoundError("user", "User not found").WithError(err)
	case errors.Is(err, repositories.ErrUserAlreadyExists):
		return apperrors.ErrConflict(err, "user", "An account with this email already exists")
	default:
		return apperrors.InternalError(err)
	}
}

// handleProfileError maps profile repository sentinels to AppErrors.
func handleProfileError(err error) error {
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repositories.ErrProfileNotFound):
		return apperrors.NotFoundError("profile", "Profile not found").WithError(err)
	case errors.Is(err, repositories.ErrClientProfileNotFound):
		return apperrors.NotFoundError("client_profile", "Client profile not found").WithError(err)
	case errors.Is(err, repositories.ErrVersionConflict):
		return apperrors.ConflictError("Profile was changed elsewhere; reload and try again").WithError(err)
	case errors.Is(err, repositories.ErrProfileAlreadyExists):
		return apperrors.ErrConflict(err, "profile", "Profile already exists")
	default:
		return apperrors.PersistenceError(err)
	}
}
