package wizard

import (
	"context"

	"grapher_backend/internal/logger"
	"grapher_backend/internal/models"
	"grapher_backend/internal/profilerules"
	"grapher_backend/pkg/apperrors"
)

type ReviewForm struct {
	Profile          *models.ProfessionalProfile                    `json:"profile"`
	ValidationIssues map[profilerules.Section]*profilerules.Issue `json:"validationIssues"`
	AccessibleUpTo   int                                            `json:"accessibleUpTo"`
}

type ReviewStep struct {
	cache     *ProfileCache
	completer Completer
}

func NewReviewStep(cache *ProfileCache, completer Completer) *ReviewStep {
	return &ReviewStep{cache: cache, completer: completer}
}

func (s *ReviewStep) ID() StepID { return StepReview }
func (s *ReviewStep) Index() int { return 3 }

func (s *ReviewStep) Load(ctx context.Context, uid string) (*ReviewForm, error) {
	if _, err := s.cache.Load(ctx, uid); err != nil {
		return nil, err
	}
	return s.Form(), nil
}

// Form aggregates the cached profile without fetching.
func (s *ReviewStep) Form() *ReviewForm {
	profile := s.cache.Get()
	return &ReviewForm{
		Profile:          profile,
		ValidationIssues: profilerules.Issues(profile),
		AccessibleUpTo:   AccessibleUpTo(profile, s.Index()),
	}
}

// Complete rejects locally while any section has an issue. Otherwise it runs
// the server-side completion and reloads the cache from the store.
func (s *ReviewStep) Complete(ctx context.Context) (*Completion, error) {
	profile := s.cache.Get()
	if profile == nil {
		return nil, notLoaded()
	}
	issues := profilerules.Issues(profile)
	if profilerules.HasIssues(issues) {
		return nil, apperrors.ValidationError(profilerules.Details(issues))
	}

	uid := s.cache.UID()
	completion, err := s.completer.CompleteProfile(ctx, uid, s.cache.Version())
	if err != nil {
		if _, refreshErr := s.cache.Refresh(ctx, uid); refreshErr != nil {
			logger.CtxWithError(ctx, "failed to refresh profile cache after completion error", refreshErr)
		}
		return nil, err
	}

	if _, err := s.cache.Refresh(ctx, uid); err != nil {
		logger.CtxWithError(ctx, "failed to refresh profile cache after completion", err)
	}
	return completion, nil
}
