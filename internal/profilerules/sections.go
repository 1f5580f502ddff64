// Package profilerules holds the completion predicates and field rules for a
// professional profile. Step submits and the review aggregate both call it.
package profilerules

import (
	"strings"

	"grapher_backend/internal/models"
)

type Section string

const (
	SectionBasicInfo    Section = "basicInfo"
	SectionPortfolio    Section = "portfolio"
	SectionAvailability Section = "availability"
)

// Sections in wizard order.
var Sections = []Section{SectionBasicInfo, SectionPortfolio, SectionAvailability}

const (
	MsgBioMissing          = "Your bio is missing. Please add a detailed description."
	MsgServicesMissing     = "Select at least one service that you offer."
	MsgPortfolioEmpty      = "Your portfolio is empty. Add at least one image or external link."
	MsgAvailabilityMissing = "Set your availability. Add at least one location or enable remote work."
	MsgResponseTimeInvalid = "Select how quickly you usually respond."
)

// Issue describes why a section is incomplete.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Check returns nil when the section is complete.
func Check(section Section, p *models.ProfessionalProfile) *Issue {
	if p == nil {
		return &Issue{Field: string(section), Message: "Profile not loaded."}
	}
	switch section {
	case SectionBasicInfo:
		return checkBasicInfo(p)
	case SectionPortfolio:
		return checkPortfolio(p)
	case SectionAvailability:
		return checkAvailability(p)
	default:
		return &Issue{Field: string(section), Message: "Unknown section."}
	}
}

// Issues runs every section check. Complete sections map to nil.
func Issues(p *models.ProfessionalProfile) map[Section]*Issue {
	issues := make(map[Section]*Issue, len(Sections))
	for _, s := range Sections {
		issues[s] = Check(s, p)
	}
	return issues
}

// HasIssues reports whether any entry is non-nil.
func HasIssues(issues map[Section]*Issue) bool {
	for _, issue := range issues {
		if issue != nil {
			return true
		}
	}
	return false
}

// Details flattens issues into the field -> message shape used by ValidationError.
func Details(issues map[Section]*Issue) map[string]string {
	details := make(map[string]string)
	for section, issue := range issues {
		if issue != nil {
			details[string(section)] = issue.Message
		}
	}
	return details
}

func checkBasicInfo(p *models.ProfessionalProfile) *Issue {
	if strings.TrimSpace(p.Bio) == "" {
		return &Issue{Field: "bio", Message: MsgBioMissing}
	}
	if len(p.Services) == 0 {
		return &Issue{Field: "services", Message: MsgServicesMissing}
	}
	return nil
}

func checkPortfolio(p *models.ProfessionalProfile) *Issue {
	if !p.Portfolio.HasContent() {
		return &Issue{Field: "portfolio", Message: MsgPortfolioEmpty}
	}
	return nil
}

func checkAvailability(p *models.ProfessionalProfile) *Issue {
	a := p.Availability
	if len(a.Locations) == 0 && !a.RemoteWork {
		return &Issue{Field: "locations", Message: MsgAvailabilityMissing}
	}
	return nil
}

// CheckResponseTime is a submit-time field rule. It does not take part in the
// section predicate, so it never closes the gate.
func CheckResponseTime(a models.Availability) *Issue {
	if !a.ResponseTime.IsValid() {
		return &Issue{Field: "responseTime", Message: MsgResponseTimeInvalid}
	}
	return nil
}
