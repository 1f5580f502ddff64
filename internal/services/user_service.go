package services

import (
	"context"
	"strings"

	"grapher_backend/internal/models"
	"grapher_backend/internal/repositories"
	"grapher_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type UserService interface {
	GetMe(db *gorm.DB, uid string) (*models.User, error)
	UpdateDisplayName(db *gorm.DB, uid, displayName string) (*models.User, error)
	SetVerifiedPhone(db *gorm.DB, uid, phone, countryCode string) error
	GetClientProfile(db *gorm.DB, uid string) (*models.ClientProfile, error)
}

type UserServiceImpl struct {
	userRepo   repositories.UserRepository
	clientRepo repositories.ClientProfileRepository
}

func NewUserService(userRepo repositories.UserRepository, clientRepo repositories.ClientProfileRepository) UserService {
	return &UserServiceImpl{userRepo: userRepo, clientRepo: clientRepo}
}

func (s *UserServiceImpl) GetMe(db *gorm.DB, uid string) (*models.User, error) {
	user, err := s.userRepo.FindByUID(db, uid)
	if err != nil {
		return nil, handleUserError(err)
	}
	return user, nil
}

func (s *UserServiceImpl) UpdateDisplayName(db *gorm.DB, uid, displayName string) (*models.User, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, apperrors.NewValidationError("displayName", "Display name cannot be empty.")
	}
	if err := s.userRepo.UpdateFields(db, uid, map[string]any{"display_name": displayName}); err != nil {
		return nil, handleUserError(err)
	}
	return s.GetMe(db, uid)
}

// SetVerifiedPhone stores a phone number confirmed by the SMS provider.
func (s *UserServiceImpl) SetVerifiedPhone(db *gorm.DB, uid, phone, countryCode string) error {
	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	user, err := s.userRepo.FindByUID(tx, uid)
	if err != nil {
		return handleUserError(err)
	}

	contact := user.Contact
	contact.Phone = phone
	contact.CountryCode = strings.ToUpper(countryCode)
	contact.PhoneVerified = true

	if err := s.userRepo.UpdateFields(tx, uid, map[string]any{"contact": contact}); err != nil {
		return handleUserError(err)
	}
	return tx.Commit().Error
}

// GetClientProfile returns the caller's client profile, creating it on first access.
func (s *UserServiceImpl) GetClientProfile(db *gorm.DB, uid string) (*models.ClientProfile, error) {
	if _, err := s.userRepo.FindByUID(db, uid); err != nil {
		return nil, handleUserError(err)
	}
	profile, err := s.clientRepo.FindOrCreate(db, uid)
	if err != nil {
		return nil, handleProfileError(err)
	}
	return profile, nil
}

// ============================================
// Verification adapter
// ============================================

// PhoneContactStore lets the verification service write to the users table.
type PhoneContactStore struct {
	db    *gorm.DB
	users UserService
}

func NewPhoneContactStore(db *gorm.DB, users UserService) *PhoneContactStore {
	return &PhoneContactStore{db: db, users: users}
}

func (s *PhoneContactStore) SetVerifiedPhone(ctx context.Context, uid, phone, countryCode string) error {
	return s.users.SetVerifiedPhone(s.db.WithContext(ctx), uid, phone, countryCode)
}
