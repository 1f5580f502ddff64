package wizard

import (
	"context"
	"fmt"
	"testing"

	"grapher_backend/internal/models"
	"grapher_backend/internal/storage"
	"grapher_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileWithBio(uid string) *models.ProfessionalProfile {
	p := models.NewProfessionalProfile(uid)
	p.Bio = "Photographer"
	return p
}

func TestPortfolioFiles(t *testing.T) {
	ctx := context.Background()

	t.Run("add uploads image and thumbnail then persists", func(t *testing.T) {
		f := newFixture(t, profileWithBio("u1"))

		file, err := f.session.Portfolio.AddFile(ctx, Upload{Data: pngBytes(t, 60, 40), MimeType: "image/png"})
		require.NoError(t, err)

		path := storage.PortfolioPath("u1", file.ID)
		assert.Equal(t, []string{path, storage.ThumbnailPath(path)}, f.media.uploads)
		assert.Equal(t, "image", file.Type)
		assert.Equal(t, "image/jpeg", file.MimeType)
		assert.Equal(t, "https://cdn.test/"+storage.ThumbnailPath(path), file.ThumbnailURL)

		stored := f.store.stored("u1")
		require.Len(t, stored.Portfolio.Files, 1)
		assert.Equal(t, file.ID, stored.Portfolio.Files[0].ID)

		assert.Equal(t, 2, f.session.Gate(0))
	})

	t.Run("limits are checked before any crop or upload", func(t *testing.T) {
		p := profileWithBio("u1")
		for i := 0; i < models.MaxPortfolioFiles; i++ {
			p.Portfolio.Files = append(p.Portfolio.Files, models.PortfolioFile{ID: fmt.Sprintf("f%d", i), Type: "image"})
		}
		f := newFixture(t, p)

		_, err := f.session.Portfolio.AddFile(ctx, Upload{Data: pngBytes(t, 20, 20), MimeType: "image/png"})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

		_, err = f.session.Portfolio.AddFile(ctx, Upload{Data: []byte("GIF89a"), MimeType: "image/gif"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidFileType)

		_, err = f.session.Portfolio.AddFile(ctx, Upload{Data: make([]byte, models.MaxUploadBytes+1), MimeType: "image/jpeg"})
		assert.ErrorIs(t, err, apperrors.ErrFileTooLarge)

		assert.Empty(t, f.media.uploads)
		assert.Equal(t, 0, f.store.updateCount())
	})

	t.Run("undecodable image", func(t *testing.T) {
		f := newFixture(t, profileWithBio("u1"))
		_, err := f.session.Portfolio.AddFile(ctx, Upload{Data: []byte("not an image"), MimeType: "image/png"})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidCrop))
		assert.Empty(t, f.media.uploads)
	})

	t.Run("failed persist removes the new objects", func(t *testing.T) {
		f := newFixture(t, profileWithBio("u1"))
		f.store.failNextUpdate(apperrors.PersistenceError(assert.AnError))

		_, err := f.session.Portfolio.AddFile(ctx, Upload{Data: pngBytes(t, 30, 30), MimeType: "image/jpeg"})
		require.True(t, apperrors.HasCode(err, apperrors.CodePersistenceFailed))
		require.Len(t, f.media.uploads, 2)
		for _, path := range f.media.uploads {
			assert.False(t, f.media.has(path))
		}
		assert.Empty(t, f.session.Portfolio.Form().(PortfolioForm).Files)
	})

	t.Run("failed upload persists nothing", func(t *testing.T) {
		f := newFixture(t, profileWithBio("u1"))
		f.media.failUpload = assert.AnError

		_, err := f.session.Portfolio.AddFile(ctx, Upload{Data: pngBytes(t, 30, 30), MimeType: "image/png"})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeUploadFailed))
		assert.Equal(t, 0, f.store.updateCount())
	})

	t.Run("remove persists first then deletes objects", func(t *testing.T) {
		f := newFixture(t, profileWithBio("u1"))
		file, err := f.session.Portfolio.AddFile(ctx, Upload{Data: pngBytes(t, 30, 30), MimeType: "image/png"})
		require.NoError(t, err)

		require.NoError(t, f.session.Portfolio.RemoveFile(ctx, file.ID))
		assert.Empty(t, f.store.stored("u1").Portfolio.Files)
		path := storage.PortfolioPath("u1", file.ID)
		assert.Equal(t, []string{path, storage.ThumbnailPath(path)}, f.media.deletes)

		err = f.session.Portfolio.RemoveFile(ctx, file.ID)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	})

	t.Run("remove with failed write keeps the objects", func(t *testing.T) {
		f := newFixture(t, profileWithBio("u1"))
		file, err := f.session.Portfolio.AddFile(ctx, Upload{Data: pngBytes(t, 30, 30), MimeType: "image/png"})
		require.NoError(t, err)

		f.store.failNextUpdate(apperrors.PersistenceError(assert.AnError))
		require.Error(t, f.session.Portfolio.RemoveFile(ctx, file.ID))
		assert.Empty(t, f.media.deletes)
		assert.True(t, f.media.has(storage.PortfolioPath("u1", file.ID)))
		assert.Len(t, f.store.stored("u1").Portfolio.Files, 1)
	})
}

func TestPortfolioLinks(t *testing.T) {
	ctx := context.Background()

	t.Run("add validates and defaults platform", func(t *testing.T) {
		f := newFixture(t, profileWithBio("u1"))

		link, err := f.session.Portfolio.AddLink(ctx, "", "https://instagram.com/ana")
		require.NoError(t, err)
		assert.Equal(t, "Instagram", link.Platform)

		_, err = f.session.Portfolio.AddLink(ctx, "Behance", "not a url")
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
		_, err = f.session.Portfolio.AddLink(ctx, "Behance", "")
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

		assert.Equal(t, 1, f.store.updateCount())
		assert.Len(t, f.store.stored("u1").Portfolio.ExternalLinks, 1)
	})

	t.Run("remove by index", func(t *testing.T) {
		f := newFixture(t, profileWithBio("u1"))
		_, err := f.session.Portfolio.AddLink(ctx, "Behance", "https://behance.net/ana")
		require.NoError(t, err)
		_, err = f.session.Portfolio.AddLink(ctx, "Vimeo", "https://vimeo.com/ana")
		require.NoError(t, err)

		require.NoError(t, f.session.Portfolio.RemoveLink(ctx, 0))
		links := f.store.stored("u1").Portfolio.ExternalLinks
		require.Len(t, links, 1)
		assert.Equal(t, "Vimeo", links[0].Platform)

		assert.True(t, apperrors.HasCode(f.session.Portfolio.RemoveLink(ctx, 5), apperrors.CodeValidationFailed))
	})

	t.Run("mutate then persist links", func(t *testing.T) {
		f := newFixture(t, profileWithBio("u1"))
		require.NoError(t, f.session.Portfolio.MutateField("externalLinks", raw(t, []models.ExternalLink{{URL: "https://500px.com/ana"}})))
		require.NoError(t, f.session.Portfolio.PersistField(ctx, "externalLinks"))
		assert.Equal(t, []models.ExternalLink{{Platform: "Instagram", URL: "https://500px.com/ana"}}, f.store.stored("u1").Portfolio.ExternalLinks)

		err := f.session.Portfolio.MutateField("files", raw(t, []models.PortfolioFile{}))
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
	})
}

func TestPortfolioSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("empty portfolio", func(t *testing.T) {
		f := newFixture(t, profileWithBio("u1"))
		_, err := f.session.Portfolio.Submit(ctx)
		require.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
		appErr, _ := apperrors.AsAppError(err)
		assert.Equal(t, map[string]string{"portfolio": "Your portfolio is empty. Add at least one image or external link."}, appErr.Details)
		assert.Equal(t, 0, f.store.updateCount())
	})

	t.Run("a link is enough", func(t *testing.T) {
		f := newFixture(t, profileWithBio("u1"))
		require.NoError(t, f.session.Portfolio.MutateField("externalLinks", raw(t, []models.ExternalLink{{Platform: "Behance", URL: "https://behance.net/ana"}})))
		assert.True(t, f.session.Portfolio.Validate().Valid)

		target, err := f.session.Portfolio.Submit(ctx)
		require.NoError(t, err)
		assert.Equal(t, StepAvailability, target.Step)
	})
}
