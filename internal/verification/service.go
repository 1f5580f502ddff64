package verification

import (
	"context"
	"regexp"
	"strings"

	"grapher_backend/internal/logger"
	"grapher_backend/internal/validator"
	"grapher_backend/pkg/apperrors"
)

const purposePhone = "phone_verification"

var codePattern = regexp.MustCompile(`^\d{6}$`)

// ContactStore records a confirmed phone number on the account.
type ContactStore interface {
	SetVerifiedPhone(ctx context.Context, uid, phone, countryCode string) error
}

type PhoneVerificationService struct {
	provider Provider
	limiter  *Limiter
	contacts ContactStore
}

func NewPhoneVerificationService(provider Provider, limiter *Limiter, contacts ContactStore) *PhoneVerificationService {
	return &PhoneVerificationService{provider: provider, limiter: limiter, contacts: contacts}
}

// NormalizePhone validates the number and returns it with a leading plus.
func NormalizePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if !validator.PhonePattern.MatchString(phone) {
		return "", apperrors.NewValidationError("phoneNumber", "Please enter a valid phone number.")
	}
	return "+" + strings.TrimPrefix(phone, "+"), nil
}

func (s *PhoneVerificationService) SendCode(ctx context.Context, uid, phone string) (*Result, error) {
	e164, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	if s.limiter != nil {
		if err := s.limiter.CanRequest(ctx, uid, purposePhone); err != nil {
			return nil, err
		}
	}

	result, err := s.provider.StartVerification(ctx, e164)
	if err != nil {
		logger.CtxWithError(ctx, "failed to start phone verification", err)
		return nil, apperrors.VerificationError("Failed to send verification code. Please try again.", err)
	}
	return result, nil
}

// ConfirmCode checks the code and, once approved, stores the verified phone.
func (s *PhoneVerificationService) ConfirmCode(ctx context.Context, uid, phone, code, countryCode string) (*Result, error) {
	e164, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)
	if !codePattern.MatchString(code) {
		return nil, apperrors.NewValidationError("code", "Please enter the 6-digit code.")
	}

	result, err := s.provider.CheckCode(ctx, e164, code)
	if err != nil {
		logger.CtxWithError(ctx, "failed to check verification code", err)
		return nil, apperrors.VerificationError("Failed to verify code. Please try again.", err)
	}

	switch result.Status {
	case StatusApproved:
	case StatusExpired:
		return result, apperrors.VerificationError("Verification code expired. Please request a new one.", nil)
	default:
		return result, apperrors.VerificationError("Invalid verification code.", nil)
	}

	if err := s.contacts.SetVerifiedPhone(ctx, uid, e164, strings.TrimSpace(countryCode)); err != nil {
		return nil, err
	}
	logger.CtxInfo(ctx, "phone verified", "uid", uid)
	return result, nil
}
