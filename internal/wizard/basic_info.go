package wizard

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"

	"grapher_backend/internal/imageprocessor"
	"grapher_backend/internal/logger"
	"grapher_backend/internal/models"
	"grapher_backend/internal/profilerules"
	"grapher_backend/internal/storage"
)

type BasicInfoForm struct {
	CoverImage *models.CoverImage `json:"coverImage"`
	Bio        string             `json:"bio"`
	Services   []models.Service   `json:"services"`
	Skills     []string           `json:"skills"`
	Equipment  []string           `json:"equipment"`
	Experience models.Experience  `json:"experience"`
}

func (f BasicInfoForm) clone() BasicInfoForm {
	out := f
	if f.CoverImage != nil {
		cover := *f.CoverImage
		out.CoverImage = &cover
	}
	out.Services = append([]models.Service{}, f.Services...)
	out.Skills = append([]string{}, f.Skills...)
	out.Equipment = append([]string{}, f.Equipment...)
	return out
}

// patch covers the fields written on submit. The cover image has its own
// upload path and is not part of it.
func (f BasicInfoForm) patch() models.ProfessionalPatch {
	form := f.clone()
	return models.ProfessionalPatch{
		Bio:        &form.Bio,
		Services:   &form.Services,
		Skills:     &form.Skills,
		Equipment:  &form.Equipment,
		Experience: &form.Experience,
	}
}

type BasicInfoStep struct {
	cache  *ProfileCache
	media  MediaStore
	images ImagePipeline

	mu   sync.Mutex
	gen  uint64
	form BasicInfoForm
}

func NewBasicInfoStep(cache *ProfileCache, media MediaStore, images ImagePipeline) *BasicInfoStep {
	return &BasicInfoStep{cache: cache, media: media, images: images}
}

func (s *BasicInfoStep) ID() StepID { return StepBasicInfo }
func (s *BasicInfoStep) Index() int { return 0 }

func (s *BasicInfoStep) Load(ctx context.Context, uid string) (BasicInfoForm, error) {
	if _, err := s.cache.Load(ctx, uid); err != nil {
		return BasicInfoForm{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()
	return s.form.clone(), nil
}

func (s *BasicInfoStep) LoadForm(ctx context.Context, uid string) (any, error) {
	return s.Load(ctx, uid)
}

func (s *BasicInfoStep) Form() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()
	return s.form.clone()
}

// resync refills the form when the cache has re-read the store since the
// last fill, so list edits after a conflict start from the stored value.
func (s *BasicInfoStep) resync() {
	profile, gen := s.cache.Snapshot()
	if profile == nil || gen == s.gen {
		return
	}
	s.fill(profile)
	s.gen = gen
}

func (s *BasicInfoStep) fill(p *models.ProfessionalProfile) {
	s.form = BasicInfoForm{
		CoverImage: p.CoverImage,
		Bio:        p.Bio,
		Services:   p.Services,
		Skills:     p.Skills,
		Equipment:  p.Equipment,
		Experience: p.Experience,
	}.clone()
}

func (s *BasicInfoStep) MutateField(field string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()

	switch field {
	case "bio":
		var bio string
		if err := decodeValue(field, value, &bio); err != nil {
			return err
		}
		if err := profilerules.ValidateBio(bio); err != nil {
			return err
		}
		s.form.Bio = bio
	case "services":
		var raw []string
		if err := decodeValue(field, value, &raw); err != nil {
			return err
		}
		services := make([]models.Service, 0, len(raw))
		for _, r := range raw {
			svc, err := profilerules.ParseService(r)
			if err != nil {
				return err
			}
			if !containsService(services, svc) {
				services = append(services, svc)
			}
		}
		s.form.Services = services
	case "skills", "equipment":
		var raw []string
		if err := decodeValue(field, value, &raw); err != nil {
			return err
		}
		tags := make([]string, 0, len(raw))
		for _, r := range raw {
			tag, err := profilerules.CanAddTag(field, tags, r)
			if err != nil {
				return err
			}
			if tag != "" {
				tags = append(tags, tag)
			}
		}
		if field == "skills" {
			s.form.Skills = tags
		} else {
			s.form.Equipment = tags
		}
	case "experience":
		var exp models.Experience
		if err := decodeValue(field, value, &exp); err != nil {
			return err
		}
		if err := profilerules.ValidateExperience(exp); err != nil {
			return err
		}
		s.form.Experience = exp
	default:
		return unknownField(field)
	}
	return nil
}

func (s *BasicInfoStep) PersistField(ctx context.Context, field string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()

	form := s.form.clone()
	var patch models.ProfessionalPatch
	switch field {
	case "bio":
		cached := s.cache.Get()
		if cached == nil {
			return notLoaded()
		}
		if strings.TrimSpace(form.Bio) == "" || form.Bio == cached.Bio {
			return nil
		}
		if err := profilerules.ValidateBio(form.Bio); err != nil {
			return err
		}
		patch.Bio = &form.Bio
	case "services":
		patch.Services = &form.Services
	case "skills":
		patch.Skills = &form.Skills
	case "equipment":
		patch.Equipment = &form.Equipment
	case "experience":
		if err := profilerules.ValidateExperience(form.Experience); err != nil {
			return err
		}
		patch.Experience = &form.Experience
	default:
		return unknownField(field)
	}

	_, err := s.cache.Persist(ctx, patch)
	return err
}

func (s *BasicInfoStep) Validate() ValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()
	return resultOf(profilerules.Check(profilerules.SectionBasicInfo, sectionView(s.cache, s.form.patch())))
}

func (s *BasicInfoStep) Submit(ctx context.Context) (NavigationTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()

	patch := s.form.patch()
	if issue := profilerules.Check(profilerules.SectionBasicInfo, sectionView(s.cache, patch)); issue != nil {
		return NavigationTarget{}, issueError(issue)
	}
	if err := profilerules.ValidateBio(*patch.Bio); err != nil {
		return NavigationTarget{}, err
	}
	if err := profilerules.ValidateExperience(*patch.Experience); err != nil {
		return NavigationTarget{}, err
	}

	if _, err := s.cache.Persist(ctx, patch); err != nil {
		return NavigationTarget{}, err
	}
	return TargetFor(s.Index() + 1), nil
}

// ToggleService flips one service and persists the list immediately.
func (s *BasicInfoStep) ToggleService(ctx context.Context, raw string) ([]models.Service, error) {
	svc, err := profilerules.ParseService(raw)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()

	next := make([]models.Service, 0, len(s.form.Services)+1)
	for _, existing := range s.form.Services {
		if existing != svc {
			next = append(next, existing)
		}
	}
	if len(next) == len(s.form.Services) {
		next = append(next, svc)
	}

	if _, err := s.cache.Persist(ctx, models.ProfessionalPatch{Services: &next}); err != nil {
		return nil, err
	}
	s.form.Services = next
	return append([]models.Service{}, next...), nil
}

func (s *BasicInfoStep) AddSkill(ctx context.Context, raw string) ([]string, error) {
	return s.addTag(ctx, "skills", raw)
}

func (s *BasicInfoStep) RemoveSkill(ctx context.Context, value string) ([]string, error) {
	return s.removeTag(ctx, "skills", value)
}

func (s *BasicInfoStep) AddEquipment(ctx context.Context, raw string) ([]string, error) {
	return s.addTag(ctx, "equipment", raw)
}

func (s *BasicInfoStep) RemoveEquipment(ctx context.Context, value string) ([]string, error) {
	return s.removeTag(ctx, "equipment", value)
}

func (s *BasicInfoStep) addTag(ctx context.Context, field, raw string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()

	current := s.tags(field)
	tag, err := profilerules.CanAddTag(field, current, raw)
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return append([]string{}, current...), nil
	}
	return s.persistTags(ctx, field, append(append([]string{}, current...), tag))
}

func (s *BasicInfoStep) removeTag(ctx context.Context, field, value string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()

	current := s.tags(field)
	next := make([]string, 0, len(current))
	for _, t := range current {
		if t != value {
			next = append(next, t)
		}
	}
	if len(next) == len(current) {
		return append([]string{}, current...), nil
	}
	return s.persistTags(ctx, field, next)
}

func (s *BasicInfoStep) tags(field string) []string {
	if field == "skills" {
		return s.form.Skills
	}
	return s.form.Equipment
}

func (s *BasicInfoStep) persistTags(ctx context.Context, field string, next []string) ([]string, error) {
	var patch models.ProfessionalPatch
	if field == "skills" {
		patch.Skills = &next
	} else {
		patch.Equipment = &next
	}
	if _, err := s.cache.Persist(ctx, patch); err != nil {
		return nil, err
	}
	if field == "skills" {
		s.form.Skills = next
	} else {
		s.form.Equipment = next
	}
	return append([]string{}, next...), nil
}

// ReplaceCoverImage uploads the new cover before touching the old one, so a
// failure at any point leaves the previous cover in place.
func (s *BasicInfoStep) ReplaceCoverImage(ctx context.Context, up Upload) (*models.CoverImage, error) {
	if err := profilerules.ValidateCoverUpload(up.MimeType, up.Size()); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()

	cached := s.cache.Get()
	if cached == nil {
		return nil, notLoaded()
	}

	data, err := s.images.CropWithPreset(bytes.NewReader(up.Data), imageprocessor.CoverPreset, up.Selection)
	if err != nil {
		return nil, err
	}

	uid := s.cache.UID()
	obj, err := s.media.Upload(ctx, storage.CoverImagePath(uid, storage.NewImageID(uid)), data, "image/jpeg")
	if err != nil {
		return nil, err
	}

	cover := models.CoverImage{ID: obj.ObjectID, URL: obj.URL}
	if _, err := s.cache.Persist(ctx, models.ProfessionalPatch{CoverImage: &cover}); err != nil {
		s.discard(ctx, obj.ObjectID)
		return nil, err
	}
	s.form.CoverImage = &cover

	if old := cached.CoverImage; old != nil && old.ID != cover.ID {
		s.discard(ctx, old.ID)
	}
	return &cover, nil
}

// RemoveCoverImage clears the field first, then deletes the object.
func (s *BasicInfoStep) RemoveCoverImage(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()

	cached := s.cache.Get()
	if cached == nil {
		return notLoaded()
	}
	if cached.CoverImage == nil {
		s.form.CoverImage = nil
		return nil
	}

	if _, err := s.cache.Persist(ctx, models.ProfessionalPatch{ClearCoverImage: true}); err != nil {
		return err
	}
	s.form.CoverImage = nil
	s.discard(ctx, cached.CoverImage.ID)
	return nil
}

func (s *BasicInfoStep) discard(ctx context.Context, path string) {
	if err := s.media.Delete(ctx, path); err != nil {
		logger.CtxWithError(ctx, "failed to delete cover image", err, "path", path)
	}
}

func containsService(list []models.Service, svc models.Service) bool {
	for _, s := range list {
		if s == svc {
			return true
		}
	}
	return false
}
