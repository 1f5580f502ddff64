package wizard

import (
	"grapher_backend/internal/models"
	"grapher_backend/internal/profilerules"
)

type StepID string

const (
	StepBasicInfo    StepID = "basic-info"
	StepPortfolio    StepID = "portfolio"
	StepAvailability StepID = "availability"
	StepReview       StepID = "review"
)

const (
	basePath      = "/pro-signup/create-profile/"
	dashboardPath = "/dashboard/professional"
)

// StepOrder lists the steps by index.
var StepOrder = []StepID{StepBasicInfo, StepPortfolio, StepAvailability, StepReview}

const LastStepIndex = 3

// NavigationTarget tells the client where to go next.
type NavigationTarget struct {
	Index int    `json:"index"`
	Step  StepID `json:"step"`
	Path  string `json:"path"`
}

func TargetFor(index int) NavigationTarget {
	index = clamp(index)
	id := StepOrder[index]
	return NavigationTarget{Index: index, Step: id, Path: basePath + string(id)}
}

// DashboardTarget is where a completed profile lands.
func DashboardTarget() NavigationTarget {
	return NavigationTarget{Index: LastStepIndex + 1, Step: "dashboard", Path: dashboardPath}
}

func StepIndex(id StepID) (int, bool) {
	for i, s := range StepOrder {
		if s == id {
			return i, true
		}
	}
	return 0, false
}

// AccessibleUpTo returns the highest step index the user may navigate to.
// Each section counts only when every earlier section is complete, and a
// completed profile unlocks every step.
func AccessibleUpTo(profile *models.ProfessionalProfile, currentStepIndex int) int {
	if profile == nil {
		return 0
	}
	if profile.IsSetupCompleted {
		return LastStepIndex
	}

	completed := 0
	for _, section := range profilerules.Sections {
		if profilerules.Check(section, profile) != nil {
			break
		}
		completed++
	}
	return clamp(max(completed, currentStepIndex))
}

func clamp(i int) int {
	if i < 0 {
		return 0
	}
	if i > LastStepIndex {
		return LastStepIndex
	}
	return i
}
