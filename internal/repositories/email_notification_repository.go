package repositories

import (
	"errors"

	"grapher_backend/internal/models"

	"gorm.io/gorm"
)

var ErrEmailNotificationNotFound = errors.New("email notification not found")

type EmailNotificationRepository interface {
	FindByEmail(db *gorm.DB, email string) (*models.EmailNotification, error)
	Create(db *gorm.DB, n *models.EmailNotification) error
	UpdateFields(db *gorm.DB, email string, fields map[string]any) error
}

type EmailNotificationRepositoryImpl struct{}

func NewEmailNotificationRepository() EmailNotificationRepository {
	return &EmailNotificationRepositoryImpl{}
}

func (r *EmailNotificationRepositoryImpl) FindByEmail(db *gorm.DB, email string) (*models.EmailNotification, error) {
	var n models.EmailNotification
	if err := db.Where("email = ?", email).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmailNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (r *EmailNotificationRepositoryImpl) Create(db *gorm.DB, n *models.EmailNotification) error {
	return db.Create(n).Error
}

func (r *EmailNotificationRepositoryImpl) UpdateFields(db *gorm.DB, email string, fields map[string]any) error {
	result := db.Model(&models.EmailNotification{}).Where("email = ?", email).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEmailNotificationNotFound
	}
	return nil
}
