package integration_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"grapher_backend/internal/models"
	"grapher_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWizardFlow drives a new user through every step to completion.
func TestWizardFlow(t *testing.T) {
	ts := GetTestServer(t)
	token, user := helpers.CreateAndLoginUser(t, ts)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/wizard/session", token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Equal(t, `"v1"`, res.Header.Get("ETag"))

	t.Run("basic info", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodPatch, "/api/v1/wizard/basic-info/fields/bio", token,
			map[string]string{"value": "Portrait and event photographer"})
		require.Equal(t, http.StatusOK, res.StatusCode, body)

		res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/wizard/basic-info/fields/bio/persist", token, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)

		res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/wizard/basic-info/skills", token,
			map[string]string{"value": "Lighting"})
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		assert.Contains(t, body, "Lighting")

		res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/wizard/basic-info/submit", token, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
	})

	t.Run("stale If-Match is rejected", func(t *testing.T) {
		res, body := ts.SendWithHeaders(t, http.MethodGet, "/api/v1/wizard/portfolio", token, nil,
			map[string]string{"If-Match": `"v1"`})
		assert.Equal(t, http.StatusConflict, res.StatusCode, body)
	})

	t.Run("portfolio", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/wizard/portfolio/links", token,
			map[string]string{"platform": "Instagram", "url": "https://instagram.com/grapher"})
		require.Equal(t, http.StatusCreated, res.StatusCode, body)
		assert.Contains(t, body, "https://instagram.com/grapher")
	})

	t.Run("availability", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/wizard/availability/locations", token,
			map[string]string{"city": "Austin", "country": "USA"})
		require.Equal(t, http.StatusCreated, res.StatusCode, body)

		res, body = ts.SendRequest(t, http.MethodPut, "/api/v1/wizard/availability/remote-work", token,
			map[string]bool{"remoteWork": true})
		require.Equal(t, http.StatusOK, res.StatusCode, body)
	})

	t.Run("complete", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/wizard/complete", token, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)

		var resp struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal([]byte(body), &resp))
		assert.NotEmpty(t, resp.Token)

		var stored models.User
		require.NoError(t, ts.DB.First(&stored, "uid = ?", user.UID).Error)
		assert.True(t, stored.Role.Professional)
		assert.True(t, stored.IsSetupCompleted)
	})

	t.Run("public profile is listed", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/professionals/"+user.UID, "", nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		assert.Contains(t, body, "Portrait and event photographer")

		res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/professionals?city=Austin", "", nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		assert.Contains(t, body, user.UID)
	})
}
