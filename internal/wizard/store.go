// Package wizard drives the professional sign-up wizard: one session per user,
// a profile cache shared by four step controllers, and the step gate.
package wizard

import (
	"context"
	"io"

	"grapher_backend/internal/imageprocessor"
	"grapher_backend/internal/models"
	"grapher_backend/internal/storage"
)

// Store is the remote profile store as seen by the wizard. Update applies
// patch only if the stored version still equals expectedVersion and returns
// the new version.
type Store interface {
	Get(ctx context.Context, uid string) (*models.ProfessionalProfile, error)
	Update(ctx context.Context, uid string, expectedVersion int64, patch models.ProfessionalPatch) (int64, error)
}

type MediaStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (*storage.UploadedObject, error)
	Delete(ctx context.Context, path string) error
}

type ImagePipeline interface {
	CropWithPreset(src io.Reader, preset imageprocessor.Preset, sel *imageprocessor.Selection) ([]byte, error)
	Thumbnail(src io.Reader, maxSide int) ([]byte, error)
}

// Completion is the outcome of the terminal complete-profile operation.
type Completion struct {
	Version int64  `json:"version"`
	Token   string `json:"token"`
}

// Completer runs the server-side complete-profile transaction.
type Completer interface {
	CompleteProfile(ctx context.Context, uid string, expectedVersion int64) (*Completion, error)
}

// Upload is an image file received from the client, plus the crop selection
// the user confirmed. A nil Selection uses the preset's initial selection.
type Upload struct {
	Data      []byte
	MimeType  string
	Selection *imageprocessor.Selection
}

func (u Upload) Size() int64 {
	return int64(len(u.Data))
}

// Deps are the collaborators shared by every session.
type Deps struct {
	Store     Store
	Media     MediaStore
	Images    ImagePipeline
	Completer Completer
}
