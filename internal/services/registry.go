package services

import (
	"grapher_backend/internal/auth"
	"grapher_backend/internal/email"
	"grapher_backend/internal/verification"
)

// ServiceContainer holds every service the handlers depend on.
type ServiceContainer struct {
	UserService         UserService
	AuthService         AuthService
	ProfileService      ProfileService
	CompletionService   CompletionService
	AccountService      AccountService
	NewsletterService   NewsletterService
	VerificationService *verification.PhoneVerificationService
	Mailer              email.Mailer
	Tokens              *auth.TokenIssuer
}
