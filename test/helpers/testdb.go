package helpers

import (
	"testing"

	"grapher_backend/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// CreateUser inserts a client account with a client profile.
func CreateUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.NewUser(uuid.NewString(), gofakeit.Email(), gofakeit.Name())
	require.NoError(t, db.Create(user).Error, "creating test user")
	require.NoError(t, db.Create(models.NewClientProfile(user.UID)).Error, "creating client profile")
	return user
}

// CreateAndLoginUser inserts a user and issues a bearer token for it.
func CreateAndLoginUser(t *testing.T, ts *TestServer) (string, *models.User) {
	t.Helper()
	user := CreateUser(t, ts.DB)
	token, err := ts.Tokens.Issue(user, false)
	require.NoError(t, err, "issuing token")
	return token, user
}
