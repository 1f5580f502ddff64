package wizard

import (
	"context"
	"encoding/json"
	"sync"

	"grapher_backend/internal/models"
	"grapher_backend/internal/profilerules"
	"grapher_backend/pkg/apperrors"
)

type AvailabilityForm struct {
	Locations    []models.Location   `json:"locations"`
	RemoteWork   bool                `json:"remoteWork"`
	ResponseTime models.ResponseTime `json:"responseTime"`
	Travel       models.Travel       `json:"travel"`
}

func (f AvailabilityForm) availability() models.Availability {
	return models.Availability{
		RemoteWork:   f.RemoteWork,
		ResponseTime: f.ResponseTime,
		Locations:    append([]models.Location{}, f.Locations...),
		Travel:       f.Travel,
	}
}

func formFromAvailability(a models.Availability) AvailabilityForm {
	return AvailabilityForm{
		Locations:    append([]models.Location{}, a.Locations...),
		RemoteWork:   a.RemoteWork,
		ResponseTime: a.ResponseTime,
		Travel:       a.Travel,
	}
}

type AvailabilityStep struct {
	cache *ProfileCache

	mu   sync.Mutex
	gen  uint64
	form AvailabilityForm
}

func NewAvailabilityStep(cache *ProfileCache) *AvailabilityStep {
	return &AvailabilityStep{cache: cache}
}

func (s *AvailabilityStep) ID() StepID { return StepAvailability }
func (s *AvailabilityStep) Index() int { return 2 }

func (s *AvailabilityStep) Load(ctx context.Context, uid string) (AvailabilityForm, error) {
	if _, err := s.cache.Load(ctx, uid); err != nil {
		return AvailabilityForm{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()
	return formFromAvailability(s.form.availability()), nil
}

func (s *AvailabilityStep) LoadForm(ctx context.Context, uid string) (any, error) {
	return s.Load(ctx, uid)
}

func (s *AvailabilityStep) Form() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()
	return formFromAvailability(s.form.availability())
}

func (s *AvailabilityStep) resync() {
	profile, gen := s.cache.Snapshot()
	if profile == nil || gen == s.gen {
		return
	}
	s.fill(profile)
	s.gen = gen
}

func (s *AvailabilityStep) fill(p *models.ProfessionalProfile) {
	s.form = formFromAvailability(p.Availability)
}

func (s *AvailabilityStep) MutateField(field string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()

	switch field {
	case "locations":
		var raw []models.Location
		if err := decodeValue(field, value, &raw); err != nil {
			return err
		}
		locations := make([]models.Location, 0, len(raw))
		for _, l := range raw {
			loc, err := profilerules.CanAddLocation(locations, l.City, l.Country)
			if err != nil {
				return err
			}
			locations = append(locations, loc)
		}
		s.form.Locations = locations
	case "remoteWork":
		var on bool
		if err := decodeValue(field, value, &on); err != nil {
			return err
		}
		s.form.RemoteWork = on
	case "responseTime":
		var raw string
		if err := decodeValue(field, value, &raw); err != nil {
			return err
		}
		rt, err := profilerules.ParseResponseTime(raw)
		if err != nil {
			return err
		}
		s.form.ResponseTime = rt
	case "travel":
		var travel models.Travel
		if err := decodeValue(field, value, &travel); err != nil {
			return err
		}
		if travel.MaxDistanceKm < 0 {
			return apperrors.NewValidationError("travel.maxDistanceKm", "Distance cannot be negative.")
		}
		s.form.Travel = travel
	case "maxDistanceKm":
		var km int
		if err := decodeValue(field, value, &km); err != nil {
			return err
		}
		s.setMaxDistance(km)
	default:
		return unknownField(field)
	}
	return nil
}

// PersistField writes one availability field. Travel is written only when
// it differs from the stored value, which is how distance edits land on blur.
func (s *AvailabilityStep) PersistField(ctx context.Context, field string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()

	form := formFromAvailability(s.form.availability())
	switch field {
	case "locations":
		return s.persist(ctx, func(a *models.Availability) { a.Locations = form.Locations })
	case "remoteWork":
		return s.persist(ctx, func(a *models.Availability) { a.RemoteWork = form.RemoteWork })
	case "responseTime":
		return s.persist(ctx, func(a *models.Availability) { a.ResponseTime = form.ResponseTime })
	case "travel", "maxDistanceKm":
		cached := s.cache.Get()
		if cached == nil {
			return notLoaded()
		}
		if cached.Availability.Travel == form.Travel {
			return nil
		}
		return s.persist(ctx, func(a *models.Availability) { a.Travel = form.Travel })
	default:
		return unknownField(field)
	}
}

func (s *AvailabilityStep) Validate() ValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()
	a := s.form.availability()
	if issue := profilerules.Check(profilerules.SectionAvailability, sectionView(s.cache, models.ProfessionalPatch{Availability: &a})); issue != nil {
		return resultOf(issue)
	}
	return resultOf(profilerules.CheckResponseTime(a))
}

func (s *AvailabilityStep) Submit(ctx context.Context) (NavigationTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()

	a := s.form.availability()
	patch := models.ProfessionalPatch{Availability: &a}
	if issue := profilerules.Check(profilerules.SectionAvailability, sectionView(s.cache, patch)); issue != nil {
		return NavigationTarget{}, issueError(issue)
	}
	if issue := profilerules.CheckResponseTime(a); issue != nil {
		return NavigationTarget{}, issueError(issue)
	}
	if _, err := s.cache.Persist(ctx, patch); err != nil {
		return NavigationTarget{}, err
	}
	return TargetFor(s.Index() + 1), nil
}

// AddLocation leaves the list untouched on any validation failure.
func (s *AvailabilityStep) AddLocation(ctx context.Context, city, country string) ([]models.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()

	loc, err := profilerules.CanAddLocation(s.form.Locations, city, country)
	if err != nil {
		return nil, err
	}
	next := append(append([]models.Location{}, s.form.Locations...), loc)
	if err := s.persist(ctx, func(a *models.Availability) { a.Locations = next }); err != nil {
		return nil, err
	}
	return append([]models.Location{}, next...), nil
}

func (s *AvailabilityStep) RemoveLocation(ctx context.Context, index int) ([]models.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()

	if index < 0 || index >= len(s.form.Locations) {
		return nil, apperrors.NewValidationError("locations", "No location at that position.")
	}
	next := append([]models.Location{}, s.form.Locations[:index]...)
	next = append(next, s.form.Locations[index+1:]...)
	if err := s.persist(ctx, func(a *models.Availability) { a.Locations = next }); err != nil {
		return nil, err
	}
	return append([]models.Location{}, next...), nil
}

func (s *AvailabilityStep) SetRemoteWork(ctx context.Context, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()
	return s.persist(ctx, func(a *models.Availability) { a.RemoteWork = on })
}

func (s *AvailabilityStep) SetResponseTime(ctx context.Context, raw string) error {
	rt, err := profilerules.ParseResponseTime(raw)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()
	return s.persist(ctx, func(a *models.Availability) { a.ResponseTime = rt })
}

// SetWillingToTravel defaults the distance when switched on and zeroes it
// when switched off.
func (s *AvailabilityStep) SetWillingToTravel(ctx context.Context, on bool) (models.Travel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()

	travel := s.form.Travel
	travel.WillingToTravel = on
	if !on {
		travel.MaxDistanceKm = 0
	} else if travel.MaxDistanceKm == 0 {
		travel.MaxDistanceKm = models.DefaultTravelKm
	}
	if err := s.persist(ctx, func(a *models.Availability) { a.Travel = travel }); err != nil {
		return models.Travel{}, err
	}
	return travel, nil
}

// SetMaxDistance is local only; values below 1 are ignored.
func (s *AvailabilityStep) SetMaxDistance(km int) models.Travel {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resync()
	s.setMaxDistance(km)
	return s.form.Travel
}

func (s *AvailabilityStep) setMaxDistance(km int) {
	if km < 1 {
		return
	}
	s.form.Travel.MaxDistanceKm = km
}

// persist applies mutate to the stored availability and, on success, to the form.
func (s *AvailabilityStep) persist(ctx context.Context, mutate func(*models.Availability)) error {
	cached := s.cache.Get()
	if cached == nil {
		return notLoaded()
	}
	a := cached.Availability
	mutate(&a)
	if _, err := s.cache.Persist(ctx, models.ProfessionalPatch{Availability: &a}); err != nil {
		return err
	}

	form := s.form.availability()
	mutate(&form)
	s.form = formFromAvailability(form)
	return nil
}
