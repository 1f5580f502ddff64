package verification

import (
	"context"
	"fmt"
	"time"

	"grapher_backend/internal/cache"
	"grapher_backend/internal/logger"
	"grapher_backend/pkg/apperrors"
)

const rateNamespace = "otp_rate"

// Limiter enforces a per-request cooldown and a per-window cap, and blocks
// for three windows once the cap is exceeded.
type Limiter struct {
	store       cache.Store
	window      time.Duration
	maxInWindow int
	cooldown    time.Duration
}

func NewLimiter(store cache.Store, window time.Duration, max int, cooldown time.Duration) *Limiter {
	return &Limiter{store: store, window: window, maxInWindow: max, cooldown: cooldown}
}

// NewDefaultLimiter allows 5 sends per 10 minutes, 30s apart.
func NewDefaultLimiter(store cache.Store) *Limiter {
	return NewLimiter(store, 10*time.Minute, 5, 30*time.Second)
}

func (l *Limiter) CanRequest(ctx context.Context, subject, purpose string) error {
	blockKey := fmt.Sprintf("block:%s:%s", subject, purpose)
	lastKey := fmt.Sprintf("last:%s:%s", subject, purpose)
	countKey := fmt.Sprintf("count:%s:%s", subject, purpose)

	for _, key := range []string{blockKey, lastKey} {
		ttl, err := l.store.TTL(ctx, rateNamespace, key)
		if err != nil {
			logger.CtxWithError(ctx, "rate limit lookup failed", err, "key", key)
			continue
		}
		if ttl > 0 {
			return tooMany(ttl)
		}
	}

	cnt, err := l.store.IncrWithExpire(ctx, rateNamespace, countKey, l.window)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if int(cnt) > l.maxInWindow {
		block := l.window * 3
		l.mark(ctx, blockKey, block)
		return tooMany(block)
	}

	l.mark(ctx, lastKey, l.cooldown)
	return nil
}

// mark records a limiter key. A failed write only loosens the limit, so it is
// logged and the request goes on.
func (l *Limiter) mark(ctx context.Context, key string, ttl time.Duration) {
	if err := l.store.Set(ctx, rateNamespace, key, "1", ttl); err != nil {
		logger.CtxWithError(ctx, "rate limit write failed", err, "key", key, "ttl", ttl.String())
	}
}

func tooMany(retryAfter time.Duration) error {
	seconds := int(retryAfter.Round(time.Second).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return apperrors.ErrTooManyRequests.WithDetails(map[string]int{"retryAfterSeconds": seconds})
}
