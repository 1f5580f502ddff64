package services

import (
	"context"
	"errors"
	"strings"

	"grapher_backend/internal/email"
	"grapher_backend/internal/logger"
	"grapher_backend/internal/models"
	"grapher_backend/internal/repositories"
	"grapher_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// NewsletterService manages the product newsletter opt-in. Addresses need no
// account.
type NewsletterService interface {
	Subscribe(ctx context.Context, db *gorm.DB, address, name string) (n *models.EmailNotification, created bool, err error)
	Unsubscribe(ctx context.Context, db *gorm.DB, address string) error
}

type NewsletterServiceImpl struct {
	repo   repositories.EmailNotificationRepository
	mailer email.Mailer
}

func NewNewsletterService(repo repositories.EmailNotificationRepository, mailer email.Mailer) NewsletterService {
	return &NewsletterServiceImpl{repo: repo, mailer: mailer}
}

// Subscribe creates the preference on first sight and sends a welcome mail.
// A known address only has its newsletter flag switched back on; the stored
// name is kept.
func (s *NewsletterServiceImpl) Subscribe(ctx context.Context, db *gorm.DB, address, name string) (*models.EmailNotification, bool, error) {
	db = db.WithContext(ctx)
	address = normalizeAddress(address)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, apperrors.NewValidationError("name", "Name is required.")
	}

	existing, err := s.repo.FindByEmail(db, address)
	switch {
	case err == nil:
		n, err := s.resubscribe(db, existing)
		return n, false, err
	case !errors.Is(err, repositories.ErrEmailNotificationNotFound):
		return nil, false, apperrors.PersistenceError(err)
	}

	n := models.NewEmailNotification(address, name)
	if err := s.repo.Create(db, n); err != nil {
		// Lost a race with a concurrent subscribe for the same address.
		if existing, findErr := s.repo.FindByEmail(db, address); findErr == nil {
			n, err := s.resubscribe(db, existing)
			return n, false, err
		}
		return nil, false, apperrors.PersistenceError(err)
	}

	logger.CtxInfo(ctx, "newsletter subscription created", "email", address)
	s.sendWelcome(ctx, n)
	return n, true, nil
}

func (s *NewsletterServiceImpl) resubscribe(db *gorm.DB, n *models.EmailNotification) (*models.EmailNotification, error) {
	if n.NewsLetterProduct {
		return n, nil
	}
	if err := s.repo.UpdateFields(db, n.Email, map[string]any{"news_letter_product": true}); err != nil {
		return nil, handleNotificationError(err)
	}
	n.NewsLetterProduct = true
	return n, nil
}

func (s *NewsletterServiceImpl) Unsubscribe(ctx context.Context, db *gorm.DB, address string) error {
	address = normalizeAddress(address)
	if err := s.repo.UpdateFields(db.WithContext(ctx), address, map[string]any{"news_letter_product": false}); err != nil {
		return handleNotificationError(err)
	}
	logger.CtxInfo(ctx, "newsletter subscription cancelled", "email", address)
	return nil
}

func (s *NewsletterServiceImpl) sendWelcome(ctx context.Context, n *models.EmailNotification) {
	if s.mailer == nil {
		return
	}
	err := s.mailer.SendTemplate(ctx, []string{n.Email}, "Thanks for subscribing", email.TemplateNewsletterWelcome, email.TemplateData{
		"Name": n.Name,
	})
	if err != nil {
		logger.CtxWithError(ctx, "failed to send newsletter welcome", err, "email", n.Email)
	}
}

func normalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

func handleNotificationError(err error) error {
	if errors.Is(err, repositories.ErrEmailNotificationNotFound) {
		return apperrors.NotFoundError("email_notification", "This address is not subscribed").WithError(err)
	}
	return apperrors.PersistenceError(err)
}
