package wizard

import (
	"context"
	"encoding/json"

	"grapher_backend/internal/models"
	"grapher_backend/internal/profilerules"
	"grapher_backend/pkg/apperrors"
)

// Step is the contract shared by the three editable steps. MutateField only
// touches the step's local form; PersistField and Submit write through the
// session's profile cache.
type Step interface {
	ID() StepID
	Index() int
	LoadForm(ctx context.Context, uid string) (any, error)
	Form() any
	MutateField(field string, value json.RawMessage) error
	PersistField(ctx context.Context, field string) error
	Validate() ValidationResult
	Submit(ctx context.Context) (NavigationTarget, error)
}

type ValidationResult struct {
	Valid bool                `json:"valid"`
	Issue *profilerules.Issue `json:"issue,omitempty"`
}

func resultOf(issue *profilerules.Issue) ValidationResult {
	return ValidationResult{Valid: issue == nil, Issue: issue}
}

func issueError(issue *profilerules.Issue) error {
	return apperrors.ValidationError(map[string]string{issue.Field: issue.Message})
}

func decodeValue(field string, raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return apperrors.NewValidationError(field, "A value is required.")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperrors.NewValidationError(field, "Invalid value for this field.")
	}
	return nil
}

func unknownField(field string) error {
	return apperrors.NewValidationError(field, "Unknown field.")
}

// sectionView returns the cached profile with patch merged in, so a step can
// run its section check against unsaved form state.
func sectionView(cache *ProfileCache, patch models.ProfessionalPatch) *models.ProfessionalProfile {
	view := cache.Get()
	if view != nil {
		patch.Apply(view)
	}
	return view
}

func notLoaded() error {
	return apperrors.ErrInvalidOperation("wizard", "Profile is not loaded.")
}
