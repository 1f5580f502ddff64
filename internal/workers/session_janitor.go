package workers

import (
	"context"
	"sync"
	"time"

	"grapher_backend/internal/logger"
)

// SessionEvicter drops wizard sessions idle for longer than the given duration.
type SessionEvicter interface {
	EvictIdle(idle time.Duration) int
}

// Sweeper removes expired cache entries. Only the in-process store needs it;
// Redis expires keys on its own.
type Sweeper interface {
	Sweep() int
}

type JanitorConfig struct {
	SessionInterval time.Duration
	SessionIdle     time.Duration
	SweepInterval   time.Duration
}

func DefaultJanitorConfig() JanitorConfig {
	return JanitorConfig{
		SessionInterval: 5 * time.Minute,
		SessionIdle:     30 * time.Minute,
		SweepInterval:   time.Minute,
	}
}

type SessionJanitor struct {
	sessions SessionEvicter
	sweeper  Sweeper
	cfg      JanitorConfig
	wg       sync.WaitGroup
}

// NewSessionJanitor accepts a nil sweeper; the cache loop is then skipped.
func NewSessionJanitor(sessions SessionEvicter, sweeper Sweeper, cfg JanitorConfig) *SessionJanitor {
	def := DefaultJanitorConfig()
	if cfg.SessionInterval <= 0 {
		cfg.SessionInterval = def.SessionInterval
	}
	if cfg.SessionIdle <= 0 {
		cfg.SessionIdle = def.SessionIdle
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}
	return &SessionJanitor{sessions: sessions, sweeper: sweeper, cfg: cfg}
}

// Start runs the background loops until ctx is cancelled.
func (w *SessionJanitor) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.evictIdleSessions(ctx)

	if w.sweeper != nil {
		w.wg.Add(1)
		go w.sweepCache(ctx)
	}
}

// Wait blocks until every loop started by Start has returned.
func (w *SessionJanitor) Wait() {
	w.wg.Wait()
}

func (w *SessionJanitor) evictIdleSessions(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.cfg.SessionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("session janitor stopped")
			return
		case <-ticker.C:
			if n := w.sessions.EvictIdle(w.cfg.SessionIdle); n > 0 {
				logger.WorkerLog("session_janitor", "evict_idle", nil, "evicted", n)
			}
		}
	}
}

func (w *SessionJanitor) sweepCache(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := w.sweeper.Sweep(); n > 0 {
				logger.WorkerLog("session_janitor", "sweep_cache", nil, "removed", n)
			}
		}
	}
}
