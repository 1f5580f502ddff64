package wizard

import (
	"context"
	"testing"
	"time"

	"grapher_backend/internal/imageprocessor"
	"grapher_backend/internal/models"
	"grapher_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionOpen(t *testing.T) {
	p := completeProfile("u1")
	p.Skills = []string{"Lighting"}
	f := newFixture(t, p)

	basic := f.session.BasicInfo.Form().(BasicInfoForm)
	assert.Equal(t, "Photographer", basic.Bio)
	assert.Equal(t, []string{"Lighting"}, basic.Skills)
	assert.Len(t, f.session.Portfolio.Form().(PortfolioForm).ExternalLinks, 1)
	assert.Len(t, f.session.Availability.Form().(AvailabilityForm).Locations, 1)

	for _, id := range []StepID{StepBasicInfo, StepPortfolio, StepAvailability} {
		step, ok := f.session.Step(id)
		require.True(t, ok)
		assert.Equal(t, id, step.ID())
	}
	_, ok := f.session.Step(StepReview)
	assert.False(t, ok)
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	store := newMemStore(models.NewProfessionalProfile("u1"), models.NewProfessionalProfile("u2"))
	registry := NewRegistry(Deps{
		Store:     store,
		Media:     newFakeMedia(),
		Images:    imageprocessor.NewProcessor(85),
		Completer: &fakeCompleter{store: store},
	}).WithClock(func() time.Time { return now })

	t.Run("open missing profile", func(t *testing.T) {
		_, err := registry.Open(ctx, "ghost")
		assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
		assert.Equal(t, 0, registry.Len())
	})

	t.Run("get or open reuses the session", func(t *testing.T) {
		first, err := registry.GetOrOpen(ctx, "u1")
		require.NoError(t, err)
		second, err := registry.GetOrOpen(ctx, "u1")
		require.NoError(t, err)
		assert.Same(t, first, second)

		reopened, err := registry.Open(ctx, "u1")
		require.NoError(t, err)
		assert.NotSame(t, first, reopened)
		assert.Equal(t, 1, registry.Len())
	})

	t.Run("idle sessions are evicted", func(t *testing.T) {
		_, err := registry.Open(ctx, "u2")
		require.NoError(t, err)

		now = now.Add(20 * time.Minute)
		_, ok := registry.Get("u2")
		require.True(t, ok)

		now = now.Add(15 * time.Minute)
		assert.Equal(t, 1, registry.EvictIdle(30*time.Minute))
		_, ok = registry.Get("u1")
		assert.False(t, ok)
		_, ok = registry.Get("u2")
		assert.True(t, ok)
	})

	t.Run("evict", func(t *testing.T) {
		registry.Evict("u2")
		assert.Equal(t, 0, registry.Len())
	})
}
