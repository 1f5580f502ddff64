package repositories

import (
	"context"
	"errors"

	"grapher_backend/internal/models"
	"grapher_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// ProfessionalStore binds the profile repository to a database handle and
// speaks the apperrors taxonomy, so wizard code never sees gorm or sentinels.
type ProfessionalStore struct {
	db   *gorm.DB
	repo ProfessionalProfileRepository
}

func NewProfessionalStore(db *gorm.DB, repo ProfessionalProfileRepository) *ProfessionalStore {
	return &ProfessionalStore{db: db, repo: repo}
}

func (s *ProfessionalStore) Get(ctx context.Context, uid string) (*models.ProfessionalProfile, error) {
	profile, err := s.repo.FindByUID(s.db.WithContext(ctx), uid)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return profile, nil
}

// Update applies a versioned partial write and returns the new version.
func (s *ProfessionalStore) Update(ctx context.Context, uid string, expectedVersion int64, patch models.ProfessionalPatch) (int64, error) {
	version, err := s.repo.UpdateFields(s.db.WithContext(ctx), uid, expectedVersion, patch)
	if err != nil {
		return 0, mapStoreError(err)
	}
	return version, nil
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, ErrProfileNotFound):
		return apperrors.NotFoundError("profile", "Professional profile not found").WithError(err)
	case errors.Is(err, ErrVersionConflict):
		return apperrors.ConflictError("Profile was changed elsewhere; reload and try again").WithError(err)
	default:
		return apperrors.PersistenceError(err)
	}
}
