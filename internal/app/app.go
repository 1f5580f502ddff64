package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"grapher_backend/database"
	"grapher_backend/internal/auth"
	"grapher_backend/internal/cache"
	"grapher_backend/internal/config"
	"grapher_backend/internal/email"
	"grapher_backend/internal/handlers"
	"grapher_backend/internal/imageprocessor"
	"grapher_backend/internal/logger"
	"grapher_backend/internal/middleware"
	"grapher_backend/internal/repositories"
	"grapher_backend/internal/routes"
	"grapher_backend/internal/services"
	"grapher_backend/internal/storage"
	"grapher_backend/internal/validator"
	"grapher_backend/internal/verification"
	"grapher_backend/internal/wizard"
	"grapher_backend/internal/workers"
	"grapher_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// App is the wired server plus the resources it owns.
type App struct {
	Router  *gin.Engine
	Cache   cache.Store
	Janitor *workers.SessionJanitor
	Wizard  *wizard.Registry
}

func Run() {
	cfg := config.LoadConfig()
	logger.Init(cfg.Server.Env)
	logger.Info("logger initialized", "env", cfg.Server.Env)

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("failed to open database", "error", err)
	}
	logger.Info("database connected", "driver", cfg.Database.Driver)
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("migration failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := New(ctx, cfg, db)
	if err != nil {
		logger.Fatal("failed to build application", "error", err)
	}
	application.Janitor.Start(ctx)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	application.Close()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("server exited")
}

// New wires every dependency. The janitor is returned unstarted.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB) (*App, error) {
	apperrors.SetDebug(!cfg.IsProduction())
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	store, sweeper, err := openCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	backend, err := storage.NewStorage(storage.Config{
		Type:       cfg.Storage.Type,
		BasePath:   cfg.Storage.BasePath,
		BaseURL:    cfg.Storage.BaseURL,
		Bucket:     cfg.Storage.Bucket,
		Region:     cfg.Storage.Region,
		AccessKey:  cfg.Storage.AccessKey,
		SecretKey:  cfg.Storage.SecretKey,
		Endpoint:   cfg.Storage.Endpoint,
		UseSSL:     cfg.Storage.UseSSL,
		PublicRead: cfg.Storage.PublicRead,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("storage initialized", "type", cfg.Storage.Type)
	media := storage.NewMediaStore(backend)
	images := imageprocessor.NewProcessor(cfg.Upload.ImageQuality)

	tokens := auth.NewTokenIssuer(cfg.JWT.Secret, time.Duration(cfg.JWT.TTL)*time.Minute)
	sessionTTL := time.Duration(cfg.Session.TTLHours) * time.Hour
	sessionTokens := auth.NewTokenIssuer(cfg.JWT.Secret, sessionTTL)
	cookie := auth.SessionCookie{Name: cfg.Session.CookieName, TTL: sessionTTL, Secure: cfg.IsProduction()}
	google := auth.NewGoogleOAuth(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)

	mailer := email.NewMailer(email.SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUser,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
	}, email.NewTemplateManager())

	// --- repositories ---
	userRepo := repositories.NewUserRepository()
	proRepo := repositories.NewProfessionalProfileRepository()
	clientRepo := repositories.NewClientProfileRepository()
	notificationRepo := repositories.NewEmailNotificationRepository()

	// --- services ---
	userService := services.NewUserService(userRepo, clientRepo)
	profileService := services.NewProfileService(userRepo, proRepo, clientRepo)
	completionService := services.NewCompletionService(userRepo, proRepo, tokens, mailer, cfg.Server.FrontendURL)
	authService := services.NewAuthService(userRepo, proRepo, tokens, sessionTokens)
	newsletterService := services.NewNewsletterService(notificationRepo, mailer)

	registry := wizard.NewRegistry(wizard.Deps{
		Store:     repositories.NewProfessionalStore(db, proRepo),
		Media:     media,
		Images:    images,
		Completer: services.NewWizardCompleter(db, completionService),
	})
	accountService := services.NewAccountService(userRepo, proRepo, clientRepo, media, images, registry)

	verificationService := verification.NewPhoneVerificationService(
		newSMSProvider(cfg, store),
		verification.NewDefaultLimiter(store),
		services.NewPhoneContactStore(db, userService),
	)

	container := &services.ServiceContainer{
		UserService:         userService,
		AuthService:         authService,
		ProfileService:      profileService,
		CompletionService:   completionService,
		AccountService:      accountService,
		NewsletterService:   newsletterService,
		VerificationService: verificationService,
		Mailer:              mailer,
		Tokens:              tokens,
	}

	appHandlers := initializeHandlers(container, registry, google, cookie, cfg)

	router := initializeGinRouter(db, cfg)
	if cfg.Storage.Type == "local" && cfg.Storage.BaseURL != "" && cfg.Storage.BaseURL[0] == '/' {
		router.Static(cfg.Storage.BaseURL, cfg.Storage.BasePath)
	}
	routes.RegisterRoutes(router, appHandlers, middleware.AuthMiddleware(tokens, cookie.Name))

	janitor := workers.NewSessionJanitor(registry, sweeper, workers.JanitorConfig{
		SessionIdle: time.Duration(cfg.Session.WizardIdleMinutes) * time.Minute,
	})

	return &App{Router: router, Cache: store, Janitor: janitor, Wizard: registry}, nil
}

// Close waits for the janitor and releases the cache.
func (a *App) Close() {
	a.Janitor.Wait()
	if err := a.Cache.Close(); err != nil {
		logger.Warn("failed to close cache", "error", err)
	}
}

// openCache prefers Redis and falls back to the in-process store, which then
// also needs sweeping.
func openCache(ctx context.Context, cfg *config.Config) (cache.Store, workers.Sweeper, error) {
	if cfg.Redis.Addr == "" {
		logger.Info("cache initialized", "type", "memory")
		mem := cache.NewMemoryStore()
		return mem, mem, nil
	}
	rdb, err := cache.NewRedisStore(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("cache initialized", "type", "redis", "addr", cfg.Redis.Addr)
	return rdb, nil, nil
}

func newSMSProvider(cfg *config.Config, store cache.Store) verification.Provider {
	if cfg.Twilio.AccountSID == "" || cfg.Twilio.AuthToken == "" || cfg.Twilio.VerifyServiceSID == "" {
		if cfg.IsProduction() {
			logger.Warn("twilio is not configured; falling back to local verification codes")
		}
		return verification.NewLocalProvider(store)
	}
	return verification.NewTwilioProvider(verification.TwilioConfig{
		AccountSID: cfg.Twilio.AccountSID,
		AuthToken:  cfg.Twilio.AuthToken,
		ServiceSID: cfg.Twilio.VerifyServiceSID,
		BaseURL:    cfg.Twilio.BaseURL,
	}, nil)
}

func initializeHandlers(
	svc *services.ServiceContainer,
	registry *wizard.Registry,
	google *auth.GoogleOAuth,
	cookie auth.SessionCookie,
	cfg *config.Config,
) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New())

	return &handlers.AppHandlers{
		AuthHandler:         handlers.NewAuthHandler(baseHandler, svc.AuthService, svc.Tokens, google, cookie, cfg.Server.FrontendURL),
		UserHandler:         handlers.NewUserHandler(baseHandler, svc.UserService, svc.AccountService, cookie),
		VerificationHandler: handlers.NewVerificationHandler(baseHandler, svc.VerificationService),
		WizardHandler:       handlers.NewWizardHandler(baseHandler, registry, svc.ProfileService, svc.AccountService, svc.AuthService, cookie),
		ProfileHandler:      handlers.NewProfileHandler(baseHandler, svc.ProfileService),
		NewsletterHandler:   handlers.NewNewsletterHandler(baseHandler, svc.NewsletterService),
	}
}

func initializeGinRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(middleware.DBMiddleware(db))
	return router
}
