package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"grapher_backend/internal/imageprocessor"
	"grapher_backend/internal/logger"
	"grapher_backend/internal/models"
	"grapher_backend/internal/profilerules"
	"grapher_backend/internal/repositories"
	"grapher_backend/internal/storage"
	"grapher_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// AccountMedia is the slice of storage.MediaStore the account service needs.
type AccountMedia interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (*storage.UploadedObject, error)
	Delete(ctx context.Context, path string) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

type ImageCropper interface {
	CropWithPreset(src io.Reader, preset imageprocessor.Preset, sel *imageprocessor.Selection) ([]byte, error)
}

// SessionEvicter drops any open wizard session for a user.
type SessionEvicter interface {
	Evict(uid string)
}

type AccountService interface {
	DeleteAccount(ctx context.Context, db *gorm.DB, uid string) error
	ResetProfessionalProfile(ctx context.Context, db *gorm.DB, uid string) (*models.ProfessionalProfile, error)
	UploadProfilePicture(ctx context.Context, db *gorm.DB, uid string, data []byte, mimeType string, sel *imageprocessor.Selection) (*models.User, error)
}

type AccountServiceImpl struct {
	userRepo   repositories.UserRepository
	proRepo    repositories.ProfessionalProfileRepository
	clientRepo repositories.ClientProfileRepository
	media      AccountMedia
	images     ImageCropper
	sessions   SessionEvicter
	now        func() time.Time
}

func NewAccountService(
	userRepo repositories.UserRepository,
	proRepo repositories.ProfessionalProfileRepository,
	clientRepo repositories.ClientProfileRepository,
	media AccountMedia,
	images ImageCropper,
	sessions SessionEvicter,
) AccountService {
	return &AccountServiceImpl{
		userRepo:   userRepo,
		proRepo:    proRepo,
		clientRepo: clientRepo,
		media:      media,
		images:     images,
		sessions:   sessions,
		now:        time.Now,
	}
}

// ==========================
// Deletion
// ==========================

// DeleteAccount removes the user's media, then soft-deletes the user and both
// profiles in one transaction. Media failures are logged and do not stop it.
func (s *AccountServiceImpl) DeleteAccount(ctx context.Context, db *gorm.DB, uid string) error {
	db = db.WithContext(ctx)
	if _, err := s.userRepo.FindByUID(db, uid); err != nil {
		return handleUserError(err)
	}

	for _, prefix := range storage.UserPrefixes(uid) {
		n, err := s.media.DeletePrefix(ctx, prefix)
		if err != nil {
			logger.CtxWithError(ctx, "media cleanup incomplete", err, "uid", uid, "prefix", prefix)
		}
		logger.CtxDebug(ctx, "media removed", "uid", uid, "prefix", prefix, "count", n)
	}

	at := s.now()
	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.userRepo.MarkDeleted(tx, uid, at); err != nil {
		return handleUserError(err)
	}
	if err := s.proRepo.MarkDeleted(tx, uid, at); err != nil && !errors.Is(err, repositories.ErrProfileNotFound) {
		return handleProfileError(err)
	}
	if err := s.clientRepo.MarkDeleted(tx, uid, at); err != nil {
		return handleProfileError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return apperrors.PersistenceError(err)
	}

	s.evict(uid)
	logger.CtxInfo(ctx, "account deleted", "uid", uid)
	return nil
}

// ==========================
// Reset
// ==========================

// ResetProfessionalProfile overwrites the profile with fresh defaults and
// removes its cover and portfolio media once the write has committed.
func (s *AccountServiceImpl) ResetProfessionalProfile(ctx context.Context, db *gorm.DB, uid string) (*models.ProfessionalProfile, error) {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	current, err := s.proRepo.FindByUIDForUpdate(tx, uid)
	if err != nil {
		return nil, handleProfileError(err)
	}

	fresh := models.NewProfessionalProfile(uid)
	fresh.CreatedAt = current.CreatedAt
	fresh.UsageStats = current.UsageStats
	fresh.Ranking = current.Ranking
	if err := s.proRepo.Save(tx, fresh); err != nil {
		return nil, handleProfileError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.PersistenceError(err)
	}

	for _, path := range profileMediaPaths(current) {
		if err := s.media.Delete(ctx, path); err != nil {
			logger.CtxWithError(ctx, "failed to delete profile media", err, "uid", uid, "path", path)
		}
	}

	s.evict(uid)
	logger.CtxInfo(ctx, "professional profile reset", "uid", uid, "version", fresh.Version)
	return fresh, nil
}

func profileMediaPaths(p *models.ProfessionalProfile) []string {
	var paths []string
	if p.CoverImage != nil && p.CoverImage.ID != "" {
		paths = append(paths, p.CoverImage.ID)
	}
	for _, f := range p.Portfolio.Files {
		path := storage.PortfolioPath(p.UID, f.ID)
		paths = append(paths, path, storage.ThumbnailPath(path))
	}
	return paths
}

// ==========================
// Profile picture
// ==========================

// UploadProfilePicture crops to 512x512, uploads, points the user at the new
// image and then deletes the previous one.
func (s *AccountServiceImpl) UploadProfilePicture(ctx context.Context, db *gorm.DB, uid string, data []byte, mimeType string, sel *imageprocessor.Selection) (*models.User, error) {
	db = db.WithContext(ctx)
	if err := profilerules.ValidateCoverUpload(mimeType, int64(len(data))); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByUID(db, uid)
	if err != nil {
		return nil, handleUserError(err)
	}

	cropped, err := s.images.CropWithPreset(bytes.NewReader(data), imageprocessor.ProfilePicturePreset, sel)
	if err != nil {
		return nil, err
	}

	imageID := storage.NewImageID(uid)
	obj, err := s.media.Upload(ctx, storage.ProfilePicturePath(uid, imageID), cropped, "image/jpeg")
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateFields(db, uid, map[string]any{
		"photo_url":          obj.URL,
		"profile_picture_id": imageID,
	}); err != nil {
		if delErr := s.media.Delete(ctx, obj.ObjectID); delErr != nil {
			logger.CtxWithError(ctx, "failed to remove orphaned profile picture", delErr, "path", obj.ObjectID)
		}
		return nil, handleUserError(err)
	}

	if user.ProfilePictureID != nil && *user.ProfilePictureID != "" {
		old := storage.ProfilePicturePath(uid, *user.ProfilePictureID)
		if err := s.media.Delete(ctx, old); err != nil {
			logger.CtxWithError(ctx, "failed to delete previous profile picture", err, "path", old)
		}
	}

	user.PhotoURL = &obj.URL
	user.ProfilePictureID = &imageID
	return user, nil
}

func (s *AccountServiceImpl) evict(uid string) {
	if s.sessions != nil {
		s.sessions.Evict(uid)
	}
}
