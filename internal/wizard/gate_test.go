package wizard

import (
	"testing"

	"grapher_backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAccessibleUpTo(t *testing.T) {
	t.Run("nil profile", func(t *testing.T) {
		assert.Equal(t, 0, AccessibleUpTo(nil, 2))
	})

	t.Run("new profile stays on basic info", func(t *testing.T) {
		assert.Equal(t, 0, AccessibleUpTo(models.NewProfessionalProfile("u1"), 0))
	})

	t.Run("basic info unlocks portfolio only", func(t *testing.T) {
		p := models.NewProfessionalProfile("u1")
		p.Bio = "Photographer"
		p.Services = []models.Service{models.ServicePhotography}
		assert.Equal(t, 1, AccessibleUpTo(p, 0))
	})

	t.Run("portfolio file unlocks availability", func(t *testing.T) {
		p := models.NewProfessionalProfile("u1")
		p.Bio = "Photographer"
		p.Portfolio.Files = []models.PortfolioFile{{ID: "f1", URL: "https://cdn.test/f1", Type: "image"}}
		assert.Equal(t, 2, AccessibleUpTo(p, 0))
	})

	t.Run("remote work unlocks review", func(t *testing.T) {
		p := models.NewProfessionalProfile("u1")
		p.Bio = "Photographer"
		p.Portfolio.ExternalLinks = []models.ExternalLink{{Platform: "Instagram", URL: "https://instagram.com/me"}}
		p.Availability.RemoteWork = true
		assert.Equal(t, 3, AccessibleUpTo(p, 0))
	})

	t.Run("missing response time does not close review", func(t *testing.T) {
		p := models.NewProfessionalProfile("u1")
		p.Bio = "Photographer"
		p.Portfolio.ExternalLinks = []models.ExternalLink{{Platform: "Instagram", URL: "https://instagram.com/me"}}
		p.Availability.Locations = []models.Location{{City: "Austin", Country: "USA"}}
		p.Availability.ResponseTime = ""
		assert.Equal(t, 3, AccessibleUpTo(p, 0))
	})

	t.Run("completion is nested", func(t *testing.T) {
		p := models.NewProfessionalProfile("u1")
		p.Portfolio.ExternalLinks = []models.ExternalLink{{Platform: "Instagram", URL: "https://instagram.com/me"}}
		p.Availability.RemoteWork = true
		assert.Equal(t, 0, AccessibleUpTo(p, 0))
	})

	t.Run("current index is kept and clamped", func(t *testing.T) {
		p := models.NewProfessionalProfile("u1")
		assert.Equal(t, 2, AccessibleUpTo(p, 2))
		assert.Equal(t, 3, AccessibleUpTo(p, 9))
		assert.Equal(t, 0, AccessibleUpTo(p, -4))
	})

	t.Run("completed profile unlocks everything", func(t *testing.T) {
		p := models.NewProfessionalProfile("u1")
		p.IsSetupCompleted = true
		assert.Equal(t, 3, AccessibleUpTo(p, 0))
	})

	t.Run("idempotent", func(t *testing.T) {
		p := models.NewProfessionalProfile("u1")
		p.Bio = "Photographer"
		first := AccessibleUpTo(p, 1)
		assert.Equal(t, first, AccessibleUpTo(p, 1))
	})
}

func TestNavigationTargets(t *testing.T) {
	assert.Equal(t, NavigationTarget{Index: 1, Step: StepPortfolio, Path: "/pro-signup/create-profile/portfolio"}, TargetFor(1))
	assert.Equal(t, StepReview, TargetFor(12).Step)
	assert.Equal(t, "/dashboard/professional", DashboardTarget().Path)

	idx, ok := StepIndex(StepAvailability)
	assert.True(t, ok)
	assert.Equal(t, 2, idx)
	_, ok = StepIndex("payments")
	assert.False(t, ok)
}
