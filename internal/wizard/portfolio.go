package wizard

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"grapher_backend/internal/imageprocessor"
	"grapher_backend/internal/logger"
	"grapher_backend/internal/models"
	"grapher_backend/internal/profilerules"
	"grapher_backend/internal/storage"
	"grapher_backend/pkg/apperrors"
)

type PortfolioForm struct {
	Files         []models.PortfolioFile `json:"files"`
	ExternalLinks []models.ExternalLink  `json:"externalLinks"`
}

func (f PortfolioForm) portfolio() models.Portfolio {
	return models.Portfolio{
		Files:         append([]models.PortfolioFile{}, f.Files...),
		ExternalLinks: append([]models.ExternalLink{}, f.ExternalLinks...),
	}
}

type PortfolioStep struct {
	cache  *ProfileCache
	media  MediaStore
	images ImagePipeline

	mu   sync.Mutex
	gen  uint64
	form PortfolioForm
}

func NewPortfolioStep(cache *ProfileCache, media MediaStore, images ImagePipeline) *PortfolioStep {
	return &PortfolioStep{cache: cache, media: media, images: images}
}

func (s *PortfolioStep) ID() StepID { return StepPortfolio }
func (s *PortfolioStep) Index() int { return 1 }

func (s *PortfolioStep) Load(ctx context.Context, uid string) (PortfolioForm, error) {
	if _, err := s.cache.Load(ctx, uid); err != nil {
		return PortfolioForm{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()
	return s.snapshot(), nil
}

func (s *PortfolioStep) LoadForm(ctx context.Context, uid string) (any, error) {
	return s.Load(ctx, uid)
}

func (s *PortfolioStep) Form() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()
	return s.snapshot()
}

func (s *PortfolioStep) snapshot() PortfolioForm {
	p := s.form.portfolio()
	return PortfolioForm{Files: p.Files, ExternalLinks: p.ExternalLinks}
}

func (s *PortfolioStep) resync() {
	profile, gen := s.cache.Snapshot()
	if profile == nil || gen == s.gen {
		return
	}
	s.fill(profile)
	s.gen = gen
}

func (s *PortfolioStep) fill(p *models.ProfessionalProfile) {
	s.form = PortfolioForm{
		Files:         append([]models.PortfolioFile{}, p.Portfolio.Files...),
		ExternalLinks: append([]models.ExternalLink{}, p.Portfolio.ExternalLinks...),
	}
}

// MutateField accepts externalLinks only; files change through uploads.
func (s *PortfolioStep) MutateField(field string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()

	switch field {
	case "externalLinks":
		var raw []models.ExternalLink
		if err := decodeValue(field, value, &raw); err != nil {
			return err
		}
		links := make([]models.ExternalLink, 0, len(raw))
		for _, l := range raw {
			link, err := profilerules.ValidateExternalLink(l.Platform, l.URL)
			if err != nil {
				return err
			}
			links = append(links, link)
		}
		s.form.ExternalLinks = links
	case "files":
		return apperrors.NewValidationError(field, "Files are added and removed through uploads.")
	default:
		return unknownField(field)
	}
	return nil
}

func (s *PortfolioStep) PersistField(ctx context.Context, field string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()

	switch field {
	case "externalLinks":
		links := append([]models.ExternalLink{}, s.form.ExternalLinks...)
		return s.persist(ctx, func(p *models.Portfolio) { p.ExternalLinks = links })
	case "files":
		files := append([]models.PortfolioFile{}, s.form.Files...)
		return s.persist(ctx, func(p *models.Portfolio) { p.Files = files })
	default:
		return unknownField(field)
	}
}

func (s *PortfolioStep) Validate() ValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()
	p := s.form.portfolio()
	return resultOf(profilerules.Check(profilerules.SectionPortfolio, sectionView(s.cache, models.ProfessionalPatch{Portfolio: &p})))
}

func (s *PortfolioStep) Submit(ctx context.Context) (NavigationTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()

	p := s.form.portfolio()
	patch := models.ProfessionalPatch{Portfolio: &p}
	if issue := profilerules.Check(profilerules.SectionPortfolio, sectionView(s.cache, patch)); issue != nil {
		return NavigationTarget{}, issueError(issue)
	}
	if _, err := s.cache.Persist(ctx, patch); err != nil {
		return NavigationTarget{}, err
	}
	return TargetFor(s.Index() + 1), nil
}

// AddFile validates, crops, uploads the image and its thumbnail, then
// persists the file list. If the write fails both objects are removed.
func (s *PortfolioStep) AddFile(ctx context.Context, up Upload) (*models.PortfolioFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()

	if err := profilerules.ValidatePortfolioUpload(up.MimeType, up.Size(), len(s.form.Files)); err != nil {
		return nil, err
	}
	uid := s.cache.UID()
	if uid == "" {
		return nil, notLoaded()
	}

	data, err := s.images.CropWithPreset(bytes.NewReader(up.Data), imageprocessor.PortfolioPreset, up.Selection)
	if err != nil {
		return nil, err
	}
	thumb, err := s.images.Thumbnail(bytes.NewReader(data), imageprocessor.ThumbnailSide)
	if err != nil {
		return nil, apperrors.UploadError(err)
	}

	fileID := storage.NewImageID(uid)
	path := storage.PortfolioPath(uid, fileID)

	obj, err := s.media.Upload(ctx, path, data, "image/jpeg")
	if err != nil {
		return nil, err
	}
	thumbObj, err := s.media.Upload(ctx, storage.ThumbnailPath(path), thumb, "image/jpeg")
	if err != nil {
		s.discard(ctx, obj.ObjectID)
		return nil, err
	}

	file := models.PortfolioFile{
		ID:           fileID,
		URL:          obj.URL,
		Type:         models.PortfolioFileTypeImage,
		MimeType:     "image/jpeg",
		ThumbnailURL: thumbObj.URL,
	}
	files := append(append([]models.PortfolioFile{}, s.form.Files...), file)
	if err := s.persist(ctx, func(p *models.Portfolio) { p.Files = files }); err != nil {
		s.discard(ctx, obj.ObjectID)
		s.discard(ctx, thumbObj.ObjectID)
		return nil, err
	}
	return &file, nil
}

// RemoveFile drops the file from the list first and deletes the objects
// afterwards, so a failed write never leaves metadata pointing at nothing.
func (s *PortfolioStep) RemoveFile(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()

	files := make([]models.PortfolioFile, 0, len(s.form.Files))
	found := false
	for _, f := range s.form.Files {
		if f.ID == id {
			found = true
			continue
		}
		files = append(files, f)
	}
	if !found {
		return apperrors.NotFoundError("portfolio", "Portfolio file not found")
	}

	if err := s.persist(ctx, func(p *models.Portfolio) { p.Files = files }); err != nil {
		return err
	}

	path := storage.PortfolioPath(s.cache.UID(), id)
	s.discard(ctx, path)
	s.discard(ctx, storage.ThumbnailPath(path))
	return nil
}

func (s *PortfolioStep) AddLink(ctx context.Context, platform, rawURL string) (*models.ExternalLink, error) {
	link, err := profilerules.ValidateExternalLink(platform, rawURL)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()

	links := append(append([]models.ExternalLink{}, s.form.ExternalLinks...), link)
	if err := s.persist(ctx, func(p *models.Portfolio) { p.ExternalLinks = links }); err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *PortfolioStep) RemoveLink(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()

	if index < 0 || index >= len(s.form.ExternalLinks) {
		return apperrors.NewValidationError("externalLinks", "No link at that position.")
	}
	links := append([]models.ExternalLink{}, s.form.ExternalLinks[:index]...)
	links = append(links, s.form.ExternalLinks[index+1:]...)
	return s.persist(ctx, func(p *models.Portfolio) { p.ExternalLinks = links })
}

// persist applies mutate to the stored portfolio and, on success, to the form.
func (s *PortfolioStep) persist(ctx context.Context, mutate func(*models.Portfolio)) error {
	cached := s.cache.Get()
	if cached == nil {
		return notLoaded()
	}
	p := cached.Portfolio
	mutate(&p)
	if _, err := s.cache.Persist(ctx, models.ProfessionalPatch{Portfolio: &p}); err != nil {
		return err
	}

	form := s.form.portfolio()
	mutate(&form)
	s.form = PortfolioForm{Files: form.Files, ExternalLinks: form.ExternalLinks}
	return nil
}

func (s *PortfolioStep) discard(ctx context.Context, path string) {
	if err := s.media.Delete(ctx, path); err != nil {
		logger.CtxWithError(ctx, "failed to delete portfolio object", err, "path", path)
	}
}
