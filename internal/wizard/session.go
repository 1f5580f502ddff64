package wizard

import (
	"context"
	"sync"
	"time"

	"grapher_backend/internal/logger"
)

// Session is one user's wizard: a profile cache plus the four steps.
type Session struct {
	UID          string
	Cache        *ProfileCache
	BasicInfo    *BasicInfoStep
	Portfolio    *PortfolioStep
	Availability *AvailabilityStep
	Review       *ReviewStep

	mu       sync.Mutex
	lastSeen time.Time
}

func NewSession(uid string, deps Deps) *Session {
	cache := NewProfileCache(deps.Store)
	return &Session{
		UID:          uid,
		Cache:        cache,
		BasicInfo:    NewBasicInfoStep(cache, deps.Media, deps.Images),
		Portfolio:    NewPortfolioStep(cache, deps.Media, deps.Images),
		Availability: NewAvailabilityStep(cache),
		Review:       NewReviewStep(cache, deps.Completer),
	}
}

// Open loads the profile once and fills every step's form from it.
func (s *Session) Open(ctx context.Context) error {
	if _, err := s.Cache.Load(ctx, s.UID); err != nil {
		return err
	}

	s.BasicInfo.mu.Lock()
	s.BasicInfo.resync()
	s.BasicInfo.mu.Unlock()

	s.Portfolio.mu.Lock()
	s.Portfolio.resync()
	s.Portfolio.mu.Unlock()

	s.Availability.mu.Lock()
	s.Availability.resync()
	s.Availability.mu.Unlock()
	return nil
}

// Step returns an editable step by id. Review is not editable.
func (s *Session) Step(id StepID) (Step, bool) {
	switch id {
	case StepBasicInfo:
		return s.BasicInfo, true
	case StepPortfolio:
		return s.Portfolio, true
	case StepAvailability:
		return s.Availability, true
	}
	return nil, false
}

func (s *Session) Gate(current int) int {
	return AccessibleUpTo(s.Cache.Get(), current)
}

func (s *Session) Version() int64 {
	return s.Cache.Version()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// Registry keeps at most one open session per user.
type Registry struct {
	deps Deps
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{deps: deps, now: time.Now, sessions: make(map[string]*Session)}
}

func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// Open starts a fresh session for uid, replacing any existing one.
func (r *Registry) Open(ctx context.Context, uid string) (*Session, error) {
	session := NewSession(uid, r.deps)
	if err := session.Open(ctx); err != nil {
		return nil, err
	}
	session.touch(r.now())

	r.mu.Lock()
	r.sessions[uid] = session
	r.mu.Unlock()

	logger.CtxDebug(ctx, "wizard session opened", "uid", uid, "version", session.Version())
	return session, nil
}

func (r *Registry) Get(uid string) (*Session, bool) {
	r.mu.Lock()
	session, ok := r.sessions[uid]
	r.mu.Unlock()
	if ok {
		session.touch(r.now())
	}
	return session, ok
}

// GetOrOpen returns the live session or opens one.
func (r *Registry) GetOrOpen(ctx context.Context, uid string) (*Session, error) {
	if session, ok := r.Get(uid); ok {
		return session, nil
	}
	return r.Open(ctx, uid)
}

func (r *Registry) Evict(uid string) {
	r.mu.Lock()
	delete(r.sessions, uid)
	r.mu.Unlock()
}

// EvictIdle drops sessions not used for longer than idle and returns how many.
func (r *Registry) EvictIdle(idle time.Duration) int {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for uid, session := range r.sessions {
		if session.idleSince(now) > idle {
			delete(r.sessions, uid)
			evicted++
		}
	}
	return evicted
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
