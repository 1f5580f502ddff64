package wizard

import (
	"context"
	"testing"

	"grapher_backend/internal/models"
	"grapher_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// After a conflict the retry must build on the other writer's data.
func TestRetryAfterConflictKeepsOtherWrites(t *testing.T) {
	ctx := context.Background()

	t.Run("skills", func(t *testing.T) {
		f := newFixture(t, models.NewProfessionalProfile("u1"))
		f.store.touch("u1", func(p *models.ProfessionalProfile) { p.Skills = append(p.Skills, "Drone") })

		_, err := f.session.BasicInfo.AddSkill(ctx, "Lighting")
		require.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

		skills, err := f.session.BasicInfo.AddSkill(ctx, "Lighting")
		require.NoError(t, err)
		assert.Equal(t, []string{"Drone", "Lighting"}, skills)
		assert.Equal(t, []string{"Drone", "Lighting"}, []string(f.store.stored("u1").Skills))
	})

	t.Run("services", func(t *testing.T) {
		f := newFixture(t, models.NewProfessionalProfile("u1"))
		f.store.touch("u1", func(p *models.ProfessionalProfile) {
			p.Services = append(p.Services, models.ServiceVideography)
		})

		_, err := f.session.BasicInfo.ToggleService(ctx, "Photography")
		require.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

		services, err := f.session.BasicInfo.ToggleService(ctx, "Photography")
		require.NoError(t, err)
		assert.Equal(t, []models.Service{models.ServiceVideography}, services)
	})

	t.Run("locations", func(t *testing.T) {
		f := newFixture(t, profileWithBio("u1"))
		f.store.touch("u1", func(p *models.ProfessionalProfile) {
			p.Availability.Locations = append(p.Availability.Locations, models.Location{City: "Austin", Country: "USA"})
		})

		_, err := f.session.Availability.AddLocation(ctx, "Denver", "USA")
		require.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

		locations, err := f.session.Availability.AddLocation(ctx, "Denver", "USA")
		require.NoError(t, err)
		require.Len(t, locations, 2)
		assert.Equal(t, "Austin", locations[0].City)
		assert.Len(t, f.store.stored("u1").Availability.Locations, 2)
	})

	t.Run("portfolio files", func(t *testing.T) {
		p := profileWithBio("u1")
		p.Portfolio.Files = []models.PortfolioFile{{ID: "a", Type: "image"}}
		f := newFixture(t, p)
		f.store.touch("u1", func(p *models.ProfessionalProfile) {
			p.Portfolio.Files = append(p.Portfolio.Files, models.PortfolioFile{ID: "b", Type: "image"})
		})

		err := f.session.Portfolio.RemoveFile(ctx, "a")
		require.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

		require.NoError(t, f.session.Portfolio.RemoveFile(ctx, "a"))
		files := f.store.stored("u1").Portfolio.Files
		require.Len(t, files, 1)
		assert.Equal(t, "b", files[0].ID)
	})

	t.Run("form reflects the refreshed profile", func(t *testing.T) {
		f := newFixture(t, models.NewProfessionalProfile("u1"))
		f.store.touch("u1", func(p *models.ProfessionalProfile) { p.Equipment = append(p.Equipment, "Gimbal") })

		_, err := f.session.BasicInfo.AddSkill(ctx, "Lighting")
		require.Error(t, err)

		form := f.session.BasicInfo.Form().(BasicInfoForm)
		assert.Equal(t, []string{"Gimbal"}, form.Equipment)
		assert.Empty(t, form.Skills)
	})
}
