package repositories

import (
	"errors"
	"time"

	"grapher_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

type UserRepository interface {
	FindByUID(db *gorm.DB, uid string) (*models.User, error)
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
	FindByGoogleID(db *gorm.DB, googleID string) (*models.User, error)
	FindByUIDs(db *gorm.DB, uids []string) (map[string]models.User, error)
	Create(db *gorm.DB, user *models.User) error
	UpdateFields(db *gorm.DB, uid string, fields map[string]any) error
	UpdateLastLogin(db *gorm.DB, uid string, at time.Time) error
	MarkDeleted(db *gorm.DB, uid string, at time.Time) error
}

type UserRepositoryImpl struct{}

func NewUserRepository() UserRepository {
	return &UserRepositoryImpl{}
}

// FindByUID skips soft-deleted accounts.
func (r *UserRepositoryImpl) FindByUID(db *gorm.DB, uid string) (*models.User, error) {
	var user models.User
	err := db.Where("uid = ? AND is_deleted = ?", uid, false).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByGoogleID(db *gorm.DB, googleID string) (*models.User, error) {
	var user models.User
	err := db.Where("google_id = ?", googleID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByUIDs loads display info for a page of profiles in one query.
func (r *UserRepositoryImpl) FindByUIDs(db *gorm.DB, uids []string) (map[string]models.User, error) {
	result := make(map[string]models.User, len(uids))
	if len(uids) == 0 {
		return result, nil
	}
	var users []models.User
	if err := db.Where("uid IN ? AND is_deleted = ?", uids, false).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.UID] = u
	}
	return result, nil
}

func (r *UserRepositoryImpl) Create(db *gorm.DB, user *models.User) error {
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrUserAlreadyExists
	}
	return db.Create(user).Error
}

func (r *UserRepositoryImpl) UpdateFields(db *gorm.DB, uid string, fields map[string]any) error {
	result := db.Model(&models.User{}).Where("uid = ? AND is_deleted = ?", uid, false).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) UpdateLastLogin(db *gorm.DB, uid string, at time.Time) error {
	return db.Model(&models.User{}).Where("uid = ?", uid).Update("last_login", at).Error
}

// MarkDeleted clears the photo and both roles and sets the soft-delete markers.
func (r *UserRepositoryImpl) MarkDeleted(db *gorm.DB, uid string, at time.Time) error {
	result := db.Model(&models.User{}).Where("uid = ?", uid).Updates(map[string]any{
		"photo_url":          nil,
		"profile_picture_id": nil,
		"role":               models.Role{},
		"is_deleted":         true,
		"deleted_at":         at,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
