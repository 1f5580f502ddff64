package services

import (
	"context"
	"errors"
	"testing"

	"grapher_backend/internal/email"
	"grapher_backend/internal/models"
	"grapher_backend/internal/repositories"
	"grapher_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type notificationTable struct {
	rows      map[string]models.EmailNotification
	updates   int
	createErr error
	raced     *models.EmailNotification
}

func newNotificationTable() *notificationTable {
	return &notificationTable{rows: map[string]models.EmailNotification{}}
}

func (r *notificationTable) FindByEmail(_ *gorm.DB, address string) (*models.EmailNotification, error) {
	n, ok := r.rows[address]
	if !ok {
		return nil, repositories.ErrEmailNotificationNotFound
	}
	return &n, nil
}

func (r *notificationTable) Create(_ *gorm.DB, n *models.EmailNotification) error {
	if r.createErr != nil {
		if r.raced != nil {
			r.rows[r.raced.Email] = *r.raced
		}
		return r.createErr
	}
	r.rows[n.Email] = *n
	return nil
}

func (r *notificationTable) UpdateFields(_ *gorm.DB, address string, fields map[string]any) error {
	n, ok := r.rows[address]
	if !ok {
		return repositories.ErrEmailNotificationNotFound
	}
	r.updates++
	if v, ok := fields["news_letter_product"].(bool); ok {
		n.NewsLetterProduct = v
	}
	r.rows[address] = n
	return nil
}

func TestNewsletterService(t *testing.T) {
	ctx := context.Background()
	db, _ := newTxDB(t)

	t.Run("new address is created active and welcomed", func(t *testing.T) {
		table := newNotificationTable()
		mailer := email.NewLogMailer(email.NewTemplateManager())
		svc := NewNewsletterService(table, mailer)

		n, created, err := svc.Subscribe(ctx, db, "  Reader@Example.COM ", " Reader ")
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, models.EmailNotification{Email: "reader@example.com", Name: "Reader", NewsLetterProduct: true, IsActive: true}, *n)

		sent := mailer.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, []string{"reader@example.com"}, sent[0].To)
		assert.Contains(t, sent[0].HTMLBody, "Hi Reader,")
	})

	t.Run("known address only flips the newsletter flag", func(t *testing.T) {
		table := newNotificationTable()
		table.rows["reader@example.com"] = models.EmailNotification{Email: "reader@example.com", Name: "Reader", IsActive: true}
		mailer := email.NewLogMailer(email.NewTemplateManager())
		svc := NewNewsletterService(table, mailer)

		n, created, err := svc.Subscribe(ctx, db, "reader@example.com", "New Name")
		require.NoError(t, err)
		assert.False(t, created)
		assert.True(t, n.NewsLetterProduct)
		assert.Equal(t, "Reader", table.rows["reader@example.com"].Name)
		assert.Empty(t, mailer.Sent())

		_, _, err = svc.Subscribe(ctx, db, "reader@example.com", "Reader")
		require.NoError(t, err)
		assert.Equal(t, 1, table.updates)
	})

	t.Run("create race falls back to the stored row", func(t *testing.T) {
		table := newNotificationTable()
		table.createErr = errors.New("duplicate key")
		svc := NewNewsletterService(table, nil)

		_, _, err := svc.Subscribe(ctx, db, "reader@example.com", "Reader")
		assert.True(t, apperrors.HasCode(err, apperrors.CodePersistenceFailed))

		table.raced = &models.EmailNotification{Email: "reader@example.com", Name: "Other Tab"}
		n, created, err := svc.Subscribe(ctx, db, "reader@example.com", "Reader")
		require.NoError(t, err)
		assert.False(t, created)
		assert.True(t, n.NewsLetterProduct)
		assert.Equal(t, "Other Tab", n.Name)
	})

	t.Run("blank name", func(t *testing.T) {
		_, _, err := NewNewsletterService(newNotificationTable(), nil).Subscribe(ctx, db, "a@b.co", "   ")
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
	})

	t.Run("unsubscribe", func(t *testing.T) {
		table := newNotificationTable()
		svc := NewNewsletterService(table, nil)
		_, _, err := svc.Subscribe(ctx, db, "reader@example.com", "Reader")
		require.NoError(t, err)

		require.NoError(t, svc.Unsubscribe(ctx, db, "READER@example.com"))
		row := table.rows["reader@example.com"]
		assert.False(t, row.NewsLetterProduct)
		assert.True(t, row.IsActive)

		err = svc.Unsubscribe(ctx, db, "ghost@example.com")
		assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	})
}
