package wizard

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"grapher_backend/internal/models"
	"grapher_backend/pkg/apperrors"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestBasicInfoSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("zero services is rejected without a write", func(t *testing.T) {
		f := newFixture(t, models.NewProfessionalProfile("u1"))
		step := f.session.BasicInfo

		require.NoError(t, step.MutateField("bio", raw(t, "Wedding photographer")))
		require.NoError(t, step.MutateField("services", raw(t, []string{})))

		_, err := step.Submit(ctx)
		require.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
		appErr, _ := apperrors.AsAppError(err)
		assert.Equal(t, map[string]string{"services": "Select at least one service that you offer."}, appErr.Details)
		assert.Equal(t, 0, f.store.updateCount())
	})

	t.Run("missing bio", func(t *testing.T) {
		f := newFixture(t, models.NewProfessionalProfile("u1"))
		result := f.session.BasicInfo.Validate()
		assert.False(t, result.Valid)
		assert.Equal(t, "bio", result.Issue.Field)
	})

	t.Run("valid form persists and moves to portfolio", func(t *testing.T) {
		f := newFixture(t, models.NewProfessionalProfile("u1"))
		step := f.session.BasicInfo

		require.NoError(t, step.MutateField("bio", raw(t, "Photographer")))
		require.NoError(t, step.MutateField("services", raw(t, []string{"photography", "Video Editing"})))
		require.NoError(t, step.MutateField("experience", raw(t, models.Experience{Years: 4, CompletedProjects: 30})))
		assert.True(t, step.Validate().Valid)

		target, err := step.Submit(ctx)
		require.NoError(t, err)
		assert.Equal(t, TargetFor(1), target)

		stored := f.store.stored("u1")
		assert.Equal(t, "Photographer", stored.Bio)
		assert.Equal(t, []models.Service{models.ServicePhotography, models.ServiceVideoEditing}, []models.Service(stored.Services))
		assert.Equal(t, 4, stored.Experience.Years)
		assert.Equal(t, 1, f.store.updateCount())

		assert.Equal(t, 1, f.session.Gate(0))
	})
}

func TestBasicInfoFields(t *testing.T) {
	ctx := context.Background()
	faker := gofakeit.New(7)

	t.Run("bio round trip", func(t *testing.T) {
		f := newFixture(t, models.NewProfessionalProfile("u1"))
		bio := faker.Sentence(12)

		require.NoError(t, f.session.BasicInfo.MutateField("bio", raw(t, bio)))
		require.NoError(t, f.session.BasicInfo.PersistField(ctx, "bio"))

		form, err := f.session.BasicInfo.Load(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, bio, form.Bio)
	})

	t.Run("bio blur skips empty and unchanged", func(t *testing.T) {
		f := newFixture(t, models.NewProfessionalProfile("u1"))
		step := f.session.BasicInfo

		require.NoError(t, step.MutateField("bio", raw(t, "   ")))
		require.NoError(t, step.PersistField(ctx, "bio"))
		assert.Equal(t, 0, f.store.updateCount())

		require.NoError(t, step.MutateField("bio", raw(t, "Portraits")))
		require.NoError(t, step.PersistField(ctx, "bio"))
		require.NoError(t, step.PersistField(ctx, "bio"))
		assert.Equal(t, 1, f.store.updateCount())
	})

	t.Run("bio over the limit", func(t *testing.T) {
		f := newFixture(t, models.NewProfessionalProfile("u1"))
		err := f.session.BasicInfo.MutateField("bio", raw(t, strings.Repeat("a", 251)))
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

		assert.NoError(t, f.session.BasicInfo.MutateField("bio", raw(t, strings.Repeat("é", 250))))
	})

	t.Run("disjoint persists keep both values", func(t *testing.T) {
		f := newFixture(t, models.NewProfessionalProfile("u1"))
		step := f.session.BasicInfo
		bio := faker.Sentence(8)
		skills := []string{faker.HipsterWord() + " 1", faker.HipsterWord() + " 2"}

		require.NoError(t, step.MutateField("bio", raw(t, bio)))
		require.NoError(t, step.PersistField(ctx, "bio"))
		require.NoError(t, step.MutateField("skills", raw(t, skills)))
		require.NoError(t, step.PersistField(ctx, "skills"))

		stored := f.store.stored("u1")
		assert.Equal(t, bio, stored.Bio)
		assert.Equal(t, skills, []string(stored.Skills))
		assert.Equal(t, int64(3), stored.Version)
	})

	t.Run("negative experience", func(t *testing.T) {
		f := newFixture(t, models.NewProfessionalProfile("u1"))
		err := f.session.BasicInfo.MutateField("experience", raw(t, models.Experience{Years: -1}))
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
	})

	t.Run("unknown and malformed fields", func(t *testing.T) {
		f := newFixture(t, models.NewProfessionalProfile("u1"))
		step := f.session.BasicInfo
		assert.True(t, apperrors.HasCode(step.MutateField("nickname", raw(t, "x")), apperrors.CodeValidationFailed))
		assert.True(t, apperrors.HasCode(step.MutateField("bio", raw(t, 12)), apperrors.CodeValidationFailed))
		assert.True(t, apperrors.HasCode(step.PersistField(ctx, "nickname"), apperrors.CodeValidationFailed))
	})
}

func TestBasicInfoTagsAndServices(t *testing.T) {
	ctx := context.Background()

	t.Run("skills trim, ignore empty and reject duplicates", func(t *testing.T) {
		f := newFixture(t, models.NewProfessionalProfile("u1"))
		step := f.session.BasicInfo

		skills, err := step.AddSkill(ctx, "  Lighting ")
		require.NoError(t, err)
		assert.Equal(t, []string{"Lighting"}, skills)

		skills, err = step.AddSkill(ctx, "   ")
		require.NoError(t, err)
		assert.Equal(t, []string{"Lighting"}, skills)
		assert.Equal(t, 1, f.store.updateCount())

		_, err = step.AddSkill(ctx, "lighting")
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
		assert.Equal(t, 1, f.store.updateCount())

		skills, err = step.RemoveSkill(ctx, "Lighting")
		require.NoError(t, err)
		assert.Empty(t, skills)
		assert.Empty(t, f.store.stored("u1").Skills)
	})

	t.Run("equipment", func(t *testing.T) {
		f := newFixture(t, models.NewProfessionalProfile("u1"))
		_, err := f.session.BasicInfo.AddEquipment(ctx, "Sony A7 IV")
		require.NoError(t, err)
		_, err = f.session.BasicInfo.AddEquipment(ctx, "DJI Mini 3")
		require.NoError(t, err)

		equipment, err := f.session.BasicInfo.RemoveEquipment(ctx, "Sony A7 IV")
		require.NoError(t, err)
		assert.Equal(t, []string{"DJI Mini 3"}, equipment)
		assert.Equal(t, []string{"DJI Mini 3"}, []string(f.store.stored("u1").Equipment))
	})

	t.Run("toggle persists each click", func(t *testing.T) {
		f := newFixture(t, models.NewProfessionalProfile("u1"))
		step := f.session.BasicInfo

		services, err := step.ToggleService(ctx, "Videography")
		require.NoError(t, err)
		assert.Equal(t, []models.Service{models.ServicePhotography, models.ServiceVideography}, services)

		services, err = step.ToggleService(ctx, "Photography")
		require.NoError(t, err)
		assert.Equal(t, []models.Service{models.ServiceVideography}, services)

		assert.Equal(t, 2, f.store.updateCount())
		assert.Equal(t, []models.Service{models.ServiceVideography}, []models.Service(f.store.stored("u1").Services))

		_, err = step.ToggleService(ctx, "Catering")
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
		assert.Equal(t, 2, f.store.updateCount())
	})

	t.Run("failed toggle keeps form and refreshes cache", func(t *testing.T) {
		f := newFixture(t, models.NewProfessionalProfile("u1"))
		f.store.failNextUpdate(apperrors.PersistenceError(assert.AnError))

		_, err := f.session.BasicInfo.ToggleService(ctx, "Videography")
		require.True(t, apperrors.HasCode(err, apperrors.CodePersistenceFailed))
		form := f.session.BasicInfo.Form().(BasicInfoForm)
		assert.Equal(t, []models.Service{models.ServicePhotography}, form.Services)
	})
}

func TestBasicInfoCoverImage(t *testing.T) {
	ctx := context.Background()
	const oldCover = "profile-pictures/u1/cover/old"

	withCover := func() *models.ProfessionalProfile {
		p := models.NewProfessionalProfile("u1")
		p.CoverImage = &models.CoverImage{ID: oldCover, URL: "https://cdn.test/" + oldCover}
		return p
	}

	t.Run("replace uploads first then deletes old", func(t *testing.T) {
		f := newFixture(t, withCover())
		f.media.put(oldCover)

		cover, err := f.session.BasicInfo.ReplaceCoverImage(ctx, Upload{Data: pngBytes(t, 300, 100), MimeType: "image/png"})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(cover.ID, "profile-pictures/u1/cover/u1_"))
		assert.True(t, f.media.has(cover.ID))
		assert.False(t, f.media.has(oldCover))
		assert.Equal(t, []string{oldCover}, f.media.deletes)
		assert.Equal(t, cover.ID, f.store.stored("u1").CoverImage.ID)
	})

	t.Run("failed persist keeps the old cover", func(t *testing.T) {
		f := newFixture(t, withCover())
		f.media.put(oldCover)
		f.store.failNextUpdate(apperrors.PersistenceError(assert.AnError))

		_, err := f.session.BasicInfo.ReplaceCoverImage(ctx, Upload{Data: pngBytes(t, 300, 100), MimeType: "image/png"})
		require.Error(t, err)
		assert.True(t, f.media.has(oldCover))
		require.Len(t, f.media.uploads, 1)
		assert.False(t, f.media.has(f.media.uploads[0]))
		assert.Equal(t, oldCover, f.store.stored("u1").CoverImage.ID)
	})

	t.Run("failed delete of old cover is ignored", func(t *testing.T) {
		f := newFixture(t, withCover())
		f.media.failDelete = assert.AnError

		cover, err := f.session.BasicInfo.ReplaceCoverImage(ctx, Upload{Data: pngBytes(t, 300, 100), MimeType: "image/png"})
		require.NoError(t, err)
		assert.Equal(t, cover.ID, f.store.stored("u1").CoverImage.ID)
	})

	t.Run("non image rejected before upload", func(t *testing.T) {
		f := newFixture(t, withCover())
		_, err := f.session.BasicInfo.ReplaceCoverImage(ctx, Upload{Data: []byte("%PDF"), MimeType: "application/pdf"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidFileType)
		assert.Empty(t, f.media.uploads)
	})

	t.Run("remove clears field then deletes", func(t *testing.T) {
		f := newFixture(t, withCover())
		f.media.put(oldCover)

		require.NoError(t, f.session.BasicInfo.RemoveCoverImage(ctx))
		assert.Nil(t, f.store.stored("u1").CoverImage)
		assert.False(t, f.media.has(oldCover))

		require.NoError(t, f.session.BasicInfo.RemoveCoverImage(ctx))
		assert.Equal(t, 1, f.store.updateCount())
	})
}
