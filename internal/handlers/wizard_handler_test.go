package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"grapher_backend/internal/auth"
	"grapher_backend/internal/imageprocessor"
	"grapher_backend/internal/models"
	"grapher_backend/internal/services/dto"
	"grapher_backend/internal/storage"
	"grapher_backend/internal/validator"
	"grapher_backend/internal/wizard"
	"grapher_backend/pkg/apperrors"
	"grapher_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ---- fakes ----

type profileTable struct {
	mu       sync.Mutex
	profiles map[string]*models.ProfessionalProfile
}

func newProfileTable() *profileTable {
	return &profileTable{profiles: make(map[string]*models.ProfessionalProfile)}
}

func (t *profileTable) Get(_ context.Context, uid string) (*models.ProfessionalProfile, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.profiles[uid]
	if !ok {
		return nil, apperrors.NotFoundError("professional_profile", "Professional profile not found")
	}
	return p.Clone(), nil
}

func (t *profileTable) Update(_ context.Context, uid string, expected int64, patch models.ProfessionalPatch) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.profiles[uid]
	if !ok {
		return 0, apperrors.NotFoundError("professional_profile", "Professional profile not found")
	}
	if expected > 0 && p.Version != expected {
		return 0, apperrors.ConflictError("Profile was changed elsewhere. Reload and try again.")
	}
	patch.Apply(p)
	p.Version++
	return p.Version, nil
}

func (t *profileTable) put(p *models.ProfessionalProfile) {
	t.mu.Lock()
	t.profiles[p.UID] = p.Clone()
	t.mu.Unlock()
}

func (t *profileTable) stored(uid string) *models.ProfessionalProfile {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.profiles[uid].Clone()
}

type nopMedia struct{}

func (nopMedia) Upload(_ context.Context, path string, _ []byte, _ string) (*storage.UploadedObject, error) {
	return &storage.UploadedObject{ObjectID: path, URL: "https://cdn.test/" + path}, nil
}

func (nopMedia) Delete(context.Context, string) error { return nil }

type tableCompleter struct {
	table *profileTable
	calls int
}

func (c *tableCompleter) CompleteProfile(ctx context.Context, uid string, expected int64) (*wizard.Completion, error) {
	c.calls++
	done := true
	version, err := c.table.Update(ctx, uid, expected, models.ProfessionalPatch{IsSetupCompleted: &done})
	if err != nil {
		return nil, err
	}
	return &wizard.Completion{Version: version, Token: "token-" + uid}, nil
}

type stubProfileService struct {
	table *profileTable
}

func (s *stubProfileService) GetOrCreateProfessional(_ *gorm.DB, uid string) (*models.ProfessionalProfile, error) {
	if p, err := s.table.Get(context.Background(), uid); err == nil {
		return p, nil
	}
	p := models.NewProfessionalProfile(uid)
	s.table.put(p)
	return p, nil
}

func (s *stubProfileService) GetPublicProfessional(*gorm.DB, string) (*dto.PublicProfessional, error) {
	return nil, apperrors.NotFoundError("professional_profile", "Professional profile not found")
}

func (s *stubProfileService) ListProfessionals(*gorm.DB, *dto.ProfessionalListRequest, int, int) (*dto.PaginatedResponse, error) {
	return &dto.PaginatedResponse{}, nil
}

func (s *stubProfileService) GetPublicClient(*gorm.DB, string) (*dto.PublicClient, error) {
	return nil, apperrors.NotFoundError("client_profile", "Client profile not found")
}

type stubAccountService struct {
	table *profileTable
}

func (s *stubAccountService) DeleteAccount(context.Context, *gorm.DB, string) error { return nil }

func (s *stubAccountService) ResetProfessionalProfile(_ context.Context, _ *gorm.DB, uid string) (*models.ProfessionalProfile, error) {
	current := s.table.stored(uid)
	p := models.NewProfessionalProfile(uid)
	p.Version = current.Version + 1
	s.table.put(p)
	return p, nil
}

func (s *stubAccountService) UploadProfilePicture(context.Context, *gorm.DB, string, []byte, string, *imageprocessor.Selection) (*models.User, error) {
	return nil, apperrors.NewBadRequestError("uploads are not supported here")
}

// ---- fixture ----

type wizardFixture struct {
	table     *profileTable
	completer *tableCompleter
	router    *gin.Engine
}

func newWizardFixture(t *testing.T) *wizardFixture {
	t.Helper()
	table := newProfileTable()
	completer := &tableCompleter{table: table}
	registry := wizard.NewRegistry(wizard.Deps{
		Store:     table,
		Media:     nopMedia{},
		Images:    imageprocessor.NewProcessor(85),
		Completer: completer,
	})

	h := NewWizardHandler(
		NewBaseHandler(validator.New()),
		registry,
		&stubProfileService{table: table},
		&stubAccountService{table: table},
		nil,
		auth.SessionCookie{Name: "session"},
	)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(string(contextkeys.DBContextKey), &gorm.DB{})
		c.Next()
	})
	requireAuth := func(c *gin.Context) {
		c.Set(contextkeys.UserIDKey, "u1")
		c.Next()
	}
	h.RegisterRoutes(router.Group("/api/v1"), requireAuth)
	return &wizardFixture{table: table, completer: completer, router: router}
}

func (f *wizardFixture) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// ---- tests ----

func TestWizardHandler_OpenSession(t *testing.T) {
	f := newWizardFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/wizard/session", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, `"v1"`, w.Header().Get("ETag"))

	var resp dto.WizardSessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.AccessibleUpTo)
	assert.Equal(t, int64(1), resp.Version)
	require.NotNil(t, resp.Profile)
	assert.Equal(t, "u1", resp.Profile.UID)
}

func TestWizardHandler_MutateAndPersist(t *testing.T) {
	f := newWizardFixture(t)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/v1/wizard/session", "", nil).Code)

	t.Run("mutate does not write", func(t *testing.T) {
		w := f.do(t, http.MethodPatch, "/api/v1/wizard/basic-info/fields/bio", `{"value":"Wedding photographer"}`, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, `"v1"`, w.Header().Get("ETag"))
		assert.Empty(t, f.table.stored("u1").Bio)
	})

	t.Run("persist writes and bumps the etag", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/wizard/basic-info/fields/bio/persist", "", map[string]string{"If-Match": `"v1"`})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, `"v2"`, w.Header().Get("ETag"))
		assert.Equal(t, "Wedding photographer", f.table.stored("u1").Bio)
	})

	t.Run("gate opens the next step", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/wizard/gate?current=0", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.GateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.AccessibleUpTo)
	})

	t.Run("unknown field is a validation error", func(t *testing.T) {
		w := f.do(t, http.MethodPatch, "/api/v1/wizard/basic-info/fields/nickname", `{"value":"x"}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestWizardHandler_IfMatch(t *testing.T) {
	f := newWizardFixture(t)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/v1/wizard/session", "", nil).Code)

	w := f.do(t, http.MethodGet, "/api/v1/wizard/basic-info", "", map[string]string{"If-Match": `"v7"`})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `v1`)

	w = f.do(t, http.MethodGet, "/api/v1/wizard/basic-info", "", map[string]string{"If-Match": `W/"v1"`})
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/wizard/basic-info", "", map[string]string{"If-Match": "*"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWizardHandler_Complete(t *testing.T) {
	t.Run("incomplete profile is rejected", func(t *testing.T) {
		f := newWizardFixture(t)
		require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/v1/wizard/session", "", nil).Code)

		w := f.do(t, http.MethodPost, "/api/v1/wizard/complete", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 0, f.completer.calls)
	})

	t.Run("complete profile redirects to the dashboard", func(t *testing.T) {
		f := newWizardFixture(t)
		p := models.NewProfessionalProfile("u1")
		p.Bio = "Wedding photographer"
		p.Portfolio.ExternalLinks = []models.ExternalLink{{Platform: "Instagram", URL: "https://instagram.com/me"}}
		p.Availability.RemoteWork = true
		f.table.put(p)
		require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/v1/wizard/session", "", nil).Code)

		w := f.do(t, http.MethodPost, "/api/v1/wizard/complete", "", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, `"v2"`, w.Header().Get("ETag"))

		var resp struct {
			Token    string                  `json:"token"`
			Version  int64                   `json:"version"`
			Redirect wizard.NavigationTarget `json:"redirect"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "token-u1", resp.Token)
		assert.Equal(t, wizard.DashboardTarget(), resp.Redirect)
		assert.True(t, f.table.stored("u1").IsSetupCompleted)
		assert.Equal(t, 1, f.completer.calls)
	})
}

func TestWizardHandler_Reset(t *testing.T) {
	f := newWizardFixture(t)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/v1/wizard/session", "", nil).Code)

	w := f.do(t, http.MethodPost, "/api/v1/wizard/reset", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, `"v2"`, w.Header().Get("ETag"))

	var resp dto.WizardSessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.AccessibleUpTo)
}
