package wizard

import (
	"context"
	"sync"

	"grapher_backend/internal/logger"
	"grapher_backend/internal/models"
	"grapher_backend/pkg/apperrors"
)

// ProfileCache holds one session's snapshot of the professional profile and
// the version it was read at. Every write goes through Persist so the
// version travels with it.
type ProfileCache struct {
	store Store

	mu       sync.Mutex
	uid      string
	snapshot *models.ProfessionalProfile
	version  int64
	// generation counts reads from the store. Steps compare it against the
	// value they last filled their form at.
	generation uint64
}

func NewProfileCache(store Store) *ProfileCache {
	return &ProfileCache{store: store}
}

func (c *ProfileCache) Load(ctx context.Context, uid string) (*models.ProfessionalProfile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fetch(ctx, uid); err != nil {
		return nil, err
	}
	return c.snapshot.Clone(), nil
}

// Refresh re-reads the store and overwrites snapshot and version.
func (c *ProfileCache) Refresh(ctx context.Context, uid string) (*models.ProfessionalProfile, error) {
	return c.Load(ctx, uid)
}

// Get returns a copy of the snapshot, or nil before the first Load.
func (c *ProfileCache) Get() *models.ProfessionalProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot.Clone()
}

// Set merges patch into the snapshot without persisting it.
func (c *ProfileCache) Set(patch models.ProfessionalPatch) *models.ProfessionalProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		return nil
	}
	patch.Apply(c.snapshot)
	return c.snapshot.Clone()
}

// Snapshot returns a copy of the snapshot together with its generation.
func (c *ProfileCache) Snapshot() (*models.ProfessionalProfile, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot.Clone(), c.generation
}

func (c *ProfileCache) Version() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

func (c *ProfileCache) UID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uid
}

// Persist writes patch with the cached version. On success the patch is
// merged locally and the new version recorded. On failure the cache is
// refreshed from the store so it never holds unsaved state.
func (c *ProfileCache) Persist(ctx context.Context, patch models.ProfessionalPatch) (*models.ProfessionalProfile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot == nil {
		return nil, apperrors.ErrInvalidOperation("wizard", "Profile is not loaded.")
	}
	if patch.IsEmpty() {
		return c.snapshot.Clone(), nil
	}

	version, err := c.store.Update(ctx, c.uid, c.version, patch)
	if err != nil {
		if refreshErr := c.fetch(ctx, c.uid); refreshErr != nil {
			logger.CtxWithError(ctx, "failed to refresh profile cache after write error", refreshErr)
		}
		return nil, err
	}

	patch.Apply(c.snapshot)
	c.snapshot.Version = version
	c.version = version
	return c.snapshot.Clone(), nil
}

func (c *ProfileCache) fetch(ctx context.Context, uid string) error {
	profile, err := c.store.Get(ctx, uid)
	if err != nil {
		return err
	}
	if profile == nil {
		return apperrors.NotFoundError("professional_profile", "Professional profile not found")
	}
	c.uid = uid
	c.snapshot = profile.Clone()
	c.version = profile.Version
	c.generation++
	return nil
}
