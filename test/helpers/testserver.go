package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"grapher_backend/database"
	"grapher_backend/internal/app"
	"grapher_backend/internal/auth"
	"grapher_backend/internal/config"
	"grapher_backend/internal/logger"

	"gorm.io/gorm"
)

// TestServer runs the full router against a real database.
type TestServer struct {
	Server *httptest.Server
	DB     *gorm.DB
	Tokens *auth.TokenIssuer
	app    *app.App
	cancel context.CancelFunc
	dir    string
}

// NewTestServer connects to TEST_DATABASE_URL. Tests are skipped when it is
// unset.
func NewTestServer(t *testing.T) *TestServer {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	cfg, err := config.LoadEnv()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	cfg.Server.Env = "test"
	cfg.Database.DSN = dsn
	cfg.Redis.Addr = ""
	cfg.Twilio.AccountSID = ""
	cfg.Email.SMTPHost = ""
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = "integration-secret"
	}
	dir, err := os.MkdirTemp("", "grapher-uploads-*")
	if err != nil {
		t.Fatalf("failed to create upload dir: %v", err)
	}
	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = dir
	cfg.Storage.BaseURL = "/uploads"

	logger.Init(cfg.Server.Env)

	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	application, err := app.New(ctx, cfg, db)
	if err != nil {
		cancel()
		t.Fatalf("failed to build app: %v", err)
	}
	application.Janitor.Start(ctx)

	return &TestServer{
		Server: httptest.NewServer(application.Router),
		DB:     db,
		Tokens: auth.NewTokenIssuer(cfg.JWT.Secret, time.Duration(cfg.JWT.TTL)*time.Minute),
		app:    application,
		cancel: cancel,
		dir:    dir,
	}
}

func (ts *TestServer) Close() {
	ts.Server.Close()
	ts.cancel()
	ts.app.Close()
	if sqlDB, err := ts.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = os.RemoveAll(ts.dir)
}

// ClearTables empties every table the app owns.
func (ts *TestServer) ClearTables(t *testing.T) {
	err := ts.DB.Exec("TRUNCATE TABLE users, professional_profiles, client_profiles, email_notifications").Error
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

// SendRequest sends a JSON request with an optional bearer token and returns
// the response and its body.
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()
	return ts.SendWithHeaders(t, method, path, token, body, nil)
}

func (ts *TestServer) SendWithHeaders(t *testing.T, method, path, token string, body interface{}, headers map[string]string) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := ts.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return res, string(resBody)
}
