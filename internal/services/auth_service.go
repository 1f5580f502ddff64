package services

import (
	"context"
	"errors"
	"time"

	"grapher_backend/internal/auth"
	"grapher_backend/internal/logger"
	"grapher_backend/internal/models"
	"grapher_backend/internal/repositories"
	"grapher_backend/internal/services/dto"
	"grapher_backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthService interface {
	SignInWithGoogle(ctx context.Context, db *gorm.DB, gu *auth.GoogleUser) (*dto.AuthResponse, error)
	SetRole(ctx context.Context, db *gorm.DB, uid, role string) (*dto.AuthResponse, error)
	IssueFor(db *gorm.DB, uid string) (*dto.AuthResponse, error)
	IssueSession(db *gorm.DB, uid string) (*dto.AuthResponse, error)
}

type AuthServiceImpl struct {
	userRepo repositories.UserRepository
	proRepo  repositories.ProfessionalProfileRepository
	tokens   *auth.TokenIssuer
	sessions *auth.TokenIssuer
	now      func() time.Time
}

// NewAuthService takes two issuers sharing one secret: tokens for API access
// and sessions for the long-lived session cookie.
func NewAuthService(
	userRepo repositories.UserRepository,
	proRepo repositories.ProfessionalProfileRepository,
	tokens *auth.TokenIssuer,
	sessions *auth.TokenIssuer,
) AuthService {
	return &AuthServiceImpl{
		userRepo: userRepo,
		proRepo:  proRepo,
		tokens:   tokens,
		sessions: sessions,
		now:      time.Now,
	}
}

// SignInWithGoogle upserts the account behind a Google identity. New accounts
// get the client role; returning ones only have lastLogin refreshed.
func (s *AuthServiceImpl) SignInWithGoogle(ctx context.Context, db *gorm.DB, gu *auth.GoogleUser) (*dto.AuthResponse, error) {
	if gu == nil || gu.ID == "" || gu.Email == "" {
		return nil, apperrors.NewBadRequestError("Google account is missing an id or email")
	}
	db = db.WithContext(ctx)

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	user, created, err := s.findOrCreateGoogleUser(tx, gu)
	if err != nil {
		return nil, err
	}
	if user.IsDeleted {
		return nil, apperrors.NewForbiddenError("This account has been deleted")
	}
	if !created {
		at := s.now()
		if err := s.userRepo.UpdateLastLogin(tx, user.UID, at); err != nil {
			return nil, handleUserError(err)
		}
		user.LastLogin = &at
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.PersistenceError(err)
	}

	logger.CtxInfo(ctx, "google sign-in", "uid", user.UID, "new_account", created)
	return s.respond(db, user)
}

func (s *AuthServiceImpl) findOrCreateGoogleUser(tx *gorm.DB, gu *auth.GoogleUser) (*models.User, bool, error) {
	user, err := s.userRepo.FindByGoogleID(tx, gu.ID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, false, handleUserError(err)
	}

	// An account created with the same email before Google was linked.
	user, err = s.userRepo.FindByEmail(tx, gu.Email)
	switch {
	case err == nil:
		if err := s.userRepo.UpdateFields(tx, user.UID, map[string]any{"google_id": gu.ID}); err != nil {
			return nil, false, handleUserError(err)
		}
		user.GoogleID = gu.ID
		return user, false, nil
	case !errors.Is(err, repositories.ErrUserNotFound):
		return nil, false, handleUserError(err)
	}

	user = models.NewUser(uuid.NewString(), gu.Email, gu.Name)
	user.GoogleID = gu.ID
	user.Contact.EmailVerified = gu.VerifiedEmail
	if gu.Picture != "" {
		picture := gu.Picture
		user.PhotoURL = &picture
	}
	if err := s.userRepo.Create(tx, user); err != nil {
		return nil, false, handleUserError(err)
	}
	return user, true, nil
}

// SetRole applies the set-custom-claims rules and returns a refreshed token.
func (s *AuthServiceImpl) SetRole(ctx context.Context, db *gorm.DB, uid, role string) (*dto.AuthResponse, error) {
	db = db.WithContext(ctx)
	user, err := s.userRepo.FindByUID(db, uid)
	if err != nil {
		return nil, handleUserError(err)
	}
	complete, err := s.profileComplete(db, uid)
	if err != nil {
		return nil, err
	}

	next, err := auth.ResolveRoleChange(role, complete)
	if err != nil {
		return nil, err
	}
	if next != user.Role {
		if err := s.userRepo.UpdateFields(db, uid, map[string]any{"role": next}); err != nil {
			return nil, handleUserError(err)
		}
		logger.CtxInfo(ctx, "role changed", "uid", uid, "role", auth.RoleFromFlags(next.Client, next.Professional))
	}
	user.Role = next
	return s.build(user, complete)
}

// IssueFor mints a token for an existing account.
func (s *AuthServiceImpl) IssueFor(db *gorm.DB, uid string) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByUID(db, uid)
	if err != nil {
		return nil, handleUserError(err)
	}
	return s.respond(db, user)
}

// IssueSession mints the token stored in the session cookie.
func (s *AuthServiceImpl) IssueSession(db *gorm.DB, uid string) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByUID(db, uid)
	if err != nil {
		return nil, handleUserError(err)
	}
	complete, err := s.profileComplete(db, uid)
	if err != nil {
		return nil, err
	}
	return s.issue(s.sessions, user, complete)
}

func (s *AuthServiceImpl) respond(db *gorm.DB, user *models.User) (*dto.AuthResponse, error) {
	complete, err := s.profileComplete(db, user.UID)
	if err != nil {
		return nil, err
	}
	return s.build(user, complete)
}

func (s *AuthServiceImpl) build(user *models.User, complete bool) (*dto.AuthResponse, error) {
	return s.issue(s.tokens, user, complete)
}

func (s *AuthServiceImpl) issue(issuer *auth.TokenIssuer, user *models.User, complete bool) (*dto.AuthResponse, error) {
	token, err := issuer.Issue(user, complete)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.AuthResponse{
		Token:           token,
		ExpiresIn:       int64(issuer.TTL().Seconds()),
		User:            user,
		ProfileComplete: complete,
	}, nil
}

// profileComplete reads the flag from the professional profile, which reset
// clears, rather than from the user row.
func (s *AuthServiceImpl) profileComplete(db *gorm.DB, uid string) (bool, error) {
	profile, err := s.proRepo.FindByUID(db, uid)
	if errors.Is(err, repositories.ErrProfileNotFound) {
		return false, nil
	}
	if err != nil {
		return false, handleProfileError(err)
	}
	return profile.IsSetupCompleted, nil
}
