package services

import (
	"context"
	"strings"

	"grapher_backend/internal/auth"
	"grapher_backend/internal/email"
	"grapher_backend/internal/logger"
	"grapher_backend/internal/models"
	"grapher_backend/internal/profilerules"
	"grapher_backend/internal/repositories"
	"grapher_backend/internal/wizard"
	"grapher_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type CompletionResult struct {
	Version int64
	Token   string
	User    *models.User
}

// CompletionService finishes the professional wizard.
type CompletionService interface {
	CompleteProfile(ctx context.Context, db *gorm.DB, uid string, expectedVersion int64) (*CompletionResult, error)
}

type CompletionServiceImpl struct {
	userRepo     repositories.UserRepository
	proRepo      repositories.ProfessionalProfileRepository
	tokens       *auth.TokenIssuer
	mailer       email.Mailer
	dashboardURL string
}

func NewCompletionService(
	userRepo repositories.UserRepository,
	proRepo repositories.ProfessionalProfileRepository,
	tokens *auth.TokenIssuer,
	mailer email.Mailer,
	frontendURL string,
) CompletionService {
	return &CompletionServiceImpl{
		userRepo:     userRepo,
		proRepo:      proRepo,
		tokens:       tokens,
		mailer:       mailer,
		dashboardURL: strings.TrimRight(frontendURL, "/") + wizard.DashboardTarget().Path,
	}
}

// CompleteProfile validates every section under a row lock, marks the profile
// complete, grants the professional role and returns a refreshed token.
// Repeating it on a completed profile only re-asserts the role.
// expectedVersion 0 skips the staleness check.
func (s *CompletionServiceImpl) CompleteProfile(ctx context.Context, db *gorm.DB, uid string, expectedVersion int64) (*CompletionResult, error) {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	profile, err := s.proRepo.FindByUIDForUpdate(tx, uid)
	if err != nil {
		return nil, handleProfileError(err)
	}
	if expectedVersion > 0 && profile.Version != expectedVersion {
		return nil, apperrors.ConflictError("Profile was changed elsewhere; reload and try again")
	}

	issues := profilerules.Issues(profile)
	if profilerules.HasIssues(issues) {
		return nil, apperrors.ValidationError(profilerules.Details(issues))
	}

	version := profile.Version
	firstCompletion := !profile.IsSetupCompleted
	if firstCompletion {
		done := true
		version, err = s.proRepo.UpdateFields(tx, uid, profile.Version, models.ProfessionalPatch{IsSetupCompleted: &done})
		if err != nil {
			return nil, handleProfileError(err)
		}
	}

	user, err := s.userRepo.FindByUID(tx, uid)
	if err != nil {
		return nil, handleUserError(err)
	}
	role := user.Role
	role.Professional = true
	if err := s.userRepo.UpdateFields(tx, uid, map[string]any{
		"role":               role,
		"is_setup_completed": true,
	}); err != nil {
		return nil, handleUserError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.PersistenceError(err)
	}
	user.Role = role
	user.IsSetupCompleted = true

	token, err := s.tokens.Issue(user, true)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	log := logger.FromContext(ctx)
	log.Info("professional profile completed", "uid", uid, "version", version, "first", firstCompletion)
	if firstCompletion {
		s.sendProfileLive(ctx, user, profile)
	}

	return &CompletionResult{Version: version, Token: token, User: user}, nil
}

func (s *CompletionServiceImpl) sendProfileLive(ctx context.Context, user *models.User, profile *models.ProfessionalProfile) {
	if s.mailer == nil || user.Email == "" {
		return
	}
	name := user.DisplayName
	if name == "" {
		name = "there"
	}
	err := s.mailer.SendTemplate(ctx, []string{user.Email}, "Your profile is live", email.TemplateProfileLive, email.TemplateData{
		"Name":         name,
		"Services":     []models.Service(profile.Services),
		"DashboardURL": s.dashboardURL,
	})
	if err != nil {
		logger.CtxWithError(ctx, "failed to send profile live email", err, "uid", user.UID)
	}
}

// ============================================
// Wizard adapter
// ============================================

// WizardCompleter binds the completion service to a database handle so the
// review step can call it.
type WizardCompleter struct {
	db  *gorm.DB
	svc CompletionService
}

func NewWizardCompleter(db *gorm.DB, svc CompletionService) *WizardCompleter {
	return &WizardCompleter{db: db, svc: svc}
}

func (c *WizardCompleter) CompleteProfile(ctx context.Context, uid string, expectedVersion int64) (*wizard.Completion, error) {
	result, err := c.svc.CompleteProfile(ctx, c.db, uid, expectedVersion)
	if err != nil {
		return nil, err
	}
	return &wizard.Completion{Version: result.Version, Token: result.Token}, nil
}
