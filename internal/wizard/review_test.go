package wizard

import (
	"context"
	"testing"

	"grapher_backend/internal/models"
	"grapher_backend/internal/profilerules"
	"grapher_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeProfile(uid string) *models.ProfessionalProfile {
	p := profileWithBio(uid)
	p.Portfolio.ExternalLinks = []models.ExternalLink{{Platform: "Behance", URL: "https://behance.net/ana"}}
	p.Availability.Locations = []models.Location{{City: "Austin", Country: "USA"}}
	return p
}

func TestReview(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregate lists issues by section", func(t *testing.T) {
		f := newFixture(t, profileWithBio("u1"))
		form, err := f.session.Review.Load(ctx, "u1")
		require.NoError(t, err)

		assert.Nil(t, form.ValidationIssues[profilerules.SectionBasicInfo])
		require.NotNil(t, form.ValidationIssues[profilerules.SectionPortfolio])
		require.NotNil(t, form.ValidationIssues[profilerules.SectionAvailability])
		assert.Equal(t, 3, form.AccessibleUpTo)
		assert.Equal(t, "Photographer", form.Profile.Bio)
	})

	t.Run("complete with issues is rejected locally", func(t *testing.T) {
		f := newFixture(t, profileWithBio("u1"))

		_, err := f.session.Review.Complete(ctx)
		require.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
		assert.Equal(t, 0, f.completer.calls)
		assert.Equal(t, 0, f.store.updateCount())
	})

	t.Run("complete delegates and refreshes", func(t *testing.T) {
		f := newFixture(t, completeProfile("u1"))

		completion, err := f.session.Review.Complete(ctx)
		require.NoError(t, err)
		assert.Equal(t, "token-u1", completion.Token)
		assert.Equal(t, 1, f.completer.calls)

		assert.True(t, f.session.Cache.Get().IsSetupCompleted)
		assert.Equal(t, completion.Version, f.session.Version())
		assert.Equal(t, 3, f.session.Gate(0))
	})

	t.Run("stale session conflicts", func(t *testing.T) {
		f := newFixture(t, completeProfile("u1"))
		f.store.touch("u1", func(p *models.ProfessionalProfile) { p.Bio = "Edited elsewhere" })

		_, err := f.session.Review.Complete(ctx)
		require.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
		assert.Equal(t, "Edited elsewhere", f.session.Cache.Get().Bio)

		_, err = f.session.Review.Complete(ctx)
		require.NoError(t, err)
	})
}

func TestWizardScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.NewProfessionalProfile("u1"))
	s := f.session

	assert.Equal(t, 0, s.Gate(0))

	require.NoError(t, s.BasicInfo.MutateField("bio", raw(t, "Photographer")))
	require.NoError(t, s.BasicInfo.MutateField("services", raw(t, []string{"Photography"})))
	target, err := s.BasicInfo.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, target.Index)
	assert.Equal(t, 1, s.Gate(0))

	_, err = s.Portfolio.AddFile(ctx, Upload{Data: pngBytes(t, 50, 50), MimeType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Gate(1))

	_, err = s.Availability.AddLocation(ctx, "Austin", "USA")
	require.NoError(t, err)
	assert.Equal(t, 3, s.Gate(2))

	_, err = s.Review.Complete(ctx)
	require.NoError(t, err)
	assert.True(t, f.store.stored("u1").IsSetupCompleted)
}
