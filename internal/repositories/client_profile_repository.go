package repositories

import (
	"errors"
	"time"

	"grapher_backend/internal/models"

	"gorm.io/gorm"
)

var ErrClientProfileNotFound = errors.New("client profile not found")

type ClientProfileRepository interface {
	FindByUID(db *gorm.DB, uid string) (*models.ClientProfile, error)
	FindOrCreate(db *gorm.DB, uid string) (*models.ClientProfile, error)
	MarkDeleted(db *gorm.DB, uid string, at time.Time) error
}

type ClientProfileRepositoryImpl struct{}

func NewClientProfileRepository() ClientProfileRepository {
	return &ClientProfileRepositoryImpl{}
}

func (r *ClientProfileRepositoryImpl) FindByUID(db *gorm.DB, uid string) (*models.ClientProfile, error) {
	var profile models.ClientProfile
	err := db.Where("uid = ? AND is_deleted = ?", uid, false).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// FindOrCreate creates the client profile lazily on first read.
func (r *ClientProfileRepositoryImpl) FindOrCreate(db *gorm.DB, uid string) (*models.ClientProfile, error) {
	profile, err := r.FindByUID(db, uid)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, ErrClientProfileNotFound) {
		return nil, err
	}

	profile = models.NewClientProfile(uid)
	if err := db.Where("uid = ?", uid).FirstOrCreate(profile).Error; err != nil {
		return nil, err
	}
	if profile.IsDeleted {
		return nil, ErrClientProfileNotFound
	}
	return profile, nil
}

func (r *ClientProfileRepositoryImpl) MarkDeleted(db *gorm.DB, uid string, at time.Time) error {
	return db.Model(&models.ClientProfile{}).Where("uid = ?", uid).Updates(map[string]any{
		"is_deleted": true,
		"deleted_at": at,
	}).Error
}
