package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"grapher_backend/internal/cache"
	"grapher_backend/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

const (
	codeNamespace   = "phone_otp"
	codeTTL         = 10 * time.Minute
	maxCodeAttempts = 5
)

// LocalProvider keeps bcrypt hashes of 6-digit codes in the cache and logs
// the plain code instead of sending an SMS. For development and tests.
type LocalProvider struct {
	store cache.Store
	// OnCode receives every generated code; tests use it to read the code back.
	OnCode func(e164, code string)
}

func NewLocalProvider(store cache.Store) *LocalProvider {
	return &LocalProvider{store: store}
}

func (p *LocalProvider) StartVerification(ctx context.Context, e164 string) (*Result, error) {
	code, err := randomCode(6)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash code: %w", err)
	}

	if err := p.store.Set(ctx, codeNamespace, e164, string(hash), codeTTL); err != nil {
		return nil, fmt.Errorf("failed to store code: %w", err)
	}
	_ = p.store.Delete(ctx, codeNamespace, attemptsKey(e164))

	logger.CtxInfo(ctx, "verification code issued (local provider)", "phone", e164, "code", code)
	if p.OnCode != nil {
		p.OnCode(e164, code)
	}
	return &Result{Status: StatusPending}, nil
}

func (p *LocalProvider) CheckCode(ctx context.Context, e164, code string) (*Result, error) {
	hash, err := p.store.Get(ctx, codeNamespace, e164)
	if errors.Is(err, cache.ErrMiss) {
		return &Result{Status: StatusExpired}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load code: %w", err)
	}

	attempts, err := p.store.IncrWithExpire(ctx, codeNamespace, attemptsKey(e164), codeTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}
	if attempts > maxCodeAttempts {
		_ = p.store.Delete(ctx, codeNamespace, e164)
		return &Result{Status: StatusExpired}, nil
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) != nil {
		return &Result{Status: StatusDenied}, nil
	}

	_ = p.store.Delete(ctx, codeNamespace, e164)
	_ = p.store.Delete(ctx, codeNamespace, attemptsKey(e164))
	return &Result{Status: StatusApproved}, nil
}

func attemptsKey(e164 string) string {
	return "attempts:" + e164
}

func randomCode(digits int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
