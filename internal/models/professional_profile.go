package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/datatypes"
)

type Experience struct {
	Years             int `json:"years"`
	CompletedProjects int `json:"completedProjects"`
}

func (e Experience) Value() (driver.Value, error) { return jsonColumnValue(e) }
func (e *Experience) Scan(src any) error          { return scanJSONColumn(src, e) }

// CoverImage.ID is the media store path, used for deletion.
type CoverImage struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (c CoverImage) Value() (driver.Value, error) { return jsonColumnValue(c) }
func (c *CoverImage) Scan(src any) error          { return scanJSONColumn(src, c) }

type PortfolioFile struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	Type         string `json:"type"`
	MimeType     string `json:"mimeType"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

type ExternalLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

type Portfolio struct {
	Files         []PortfolioFile `json:"files"`
	ExternalLinks []ExternalLink  `json:"externalLinks"`
}

func (p Portfolio) Value() (driver.Value, error) { return jsonColumnValue(p.normalized()) }
func (p *Portfolio) Scan(src any) error          { return scanJSONColumn(src, p) }

// HasContent reports whether at least one file or link exists.
func (p Portfolio) HasContent() bool {
	return len(p.Files) > 0 || len(p.ExternalLinks) > 0
}

func (p Portfolio) normalized() Portfolio {
	if p.Files == nil {
		p.Files = []PortfolioFile{}
	}
	if p.ExternalLinks == nil {
		p.ExternalLinks = []ExternalLink{}
	}
	return p
}

type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

type Travel struct {
	WillingToTravel bool `json:"willingToTravel"`
	MaxDistanceKm   int  `json:"maxDistanceKm"`
}

type Availability struct {
	RemoteWork   bool         `json:"remoteWork"`
	ResponseTime ResponseTime `json:"responseTime"`
	Locations    []Location   `json:"locations"`
	Travel       Travel       `json:"travel"`
}

func (a Availability) Value() (driver.Value, error) {
	if a.Locations == nil {
		a.Locations = []Location{}
	}
	return jsonColumnValue(a)
}
func (a *Availability) Scan(src any) error { return scanJSONColumn(src, a) }

type ProfessionalUsageStats struct {
	MoneyEarned     float64 `json:"moneyEarned"`
	CompletedOrders int     `json:"completedOrders"`
	ReviewsReceived int     `json:"reviewsReceived"`
	AverageRating   float64 `json:"averageRating"`
}

func (s ProfessionalUsageStats) Value() (driver.Value, error) { return jsonColumnValue(s) }
func (s *ProfessionalUsageStats) Scan(src any) error          { return scanJSONColumn(src, s) }

type Ranking struct {
	Level  RankingLevel `json:"level"`
	Points int          `json:"points"`
}

func (r Ranking) Value() (driver.Value, error) { return jsonColumnValue(r) }
func (r *Ranking) Scan(src any) error          { return scanJSONColumn(src, r) }

type ProfessionalProfile struct {
	UID              string                       `gorm:"primaryKey;type:varchar(64)" json:"uid"`
	Bio              string                       `gorm:"type:text" json:"bio"`
	Skills           datatypes.JSONSlice[string]  `json:"skills"`
	Services         datatypes.JSONSlice[Service] `json:"services"`
	Equipment        datatypes.JSONSlice[string]  `json:"equipment"`
	Experience       Experience                   `gorm:"type:json" json:"experience"`
	CoverImage       *CoverImage                  `gorm:"type:json" json:"coverImage"`
	Portfolio        Portfolio                    `gorm:"type:json" json:"portfolio"`
	Availability     Availability                 `gorm:"type:json" json:"availability"`
	UsageStats       ProfessionalUsageStats       `gorm:"type:json" json:"usageStats"`
	Ranking          Ranking                      `gorm:"type:json" json:"ranking"`
	IsSetupCompleted bool                         `gorm:"not null;default:false;index" json:"isSetupCompleted"`
	Version          int64                        `gorm:"not null;default:1" json:"version"`
	CreatedAt        time.Time                    `json:"createdAt"`
	UpdatedAt        time.Time                    `json:"updatedAt"`
	SoftDelete
}

func (ProfessionalProfile) TableName() string { return "professional_profiles" }

// NewProfessionalProfile returns the defaults used on first opt-in and on reset.
func NewProfessionalProfile(uid string) *ProfessionalProfile {
	return &ProfessionalProfile{
		UID:       uid,
		Skills:    datatypes.JSONSlice[string]{},
		Services:  datatypes.JSONSlice[Service]{ServicePhotography},
		Equipment: datatypes.JSONSlice[string]{},
		Portfolio: Portfolio{Files: []PortfolioFile{}, ExternalLinks: []ExternalLink{}},
		Availability: Availability{
			ResponseTime: DefaultResponseTime,
			Locations:    []Location{},
		},
		Ranking: Ranking{Level: RankingBronze},
		Version: 1,
	}
}

// HasService reports whether s is among the offered services.
func (p *ProfessionalProfile) HasService(s Service) bool {
	for _, existing := range p.Services {
		if existing == s {
			return true
		}
	}
	return false
}

// Clone returns a deep copy; slices and the cover pointer are not shared.
func (p *ProfessionalProfile) Clone() *ProfessionalProfile {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Skills = append(datatypes.JSONSlice[string]{}, p.Skills...)
	cp.Services = append(datatypes.JSONSlice[Service]{}, p.Services...)
	cp.Equipment = append(datatypes.JSONSlice[string]{}, p.Equipment...)
	if p.CoverImage != nil {
		cover := *p.CoverImage
		cp.CoverImage = &cover
	}
	cp.Portfolio = Portfolio{
		Files:         append([]PortfolioFile{}, p.Portfolio.Files...),
		ExternalLinks: append([]ExternalLink{}, p.Portfolio.ExternalLinks...),
	}
	cp.Availability.Locations = append([]Location{}, p.Availability.Locations...)
	if p.DeletedAt != nil {
		at := *p.DeletedAt
		cp.DeletedAt = &at
	}
	return &cp
}

// ============================================
// Partial updates
// ============================================

// ProfessionalPatch is a partial write. Nil fields are left untouched.
// ClearCoverImage removes the cover, since a nil CoverImage means "unchanged".
type ProfessionalPatch struct {
	Bio              *string
	Skills           *[]string
	Services         *[]Service
	Equipment        *[]string
	Experience       *Experience
	CoverImage       *CoverImage
	ClearCoverImage  bool
	Portfolio        *Portfolio
	Availability     *Availability
	IsSetupCompleted *bool
}

// IsEmpty reports whether the patch writes nothing.
func (p ProfessionalPatch) IsEmpty() bool {
	return p.Bio == nil && p.Skills == nil && p.Services == nil && p.Equipment == nil &&
		p.Experience == nil && p.CoverImage == nil && !p.ClearCoverImage &&
		p.Portfolio == nil && p.Availability == nil && p.IsSetupCompleted == nil
}

// Apply merges the patch into profile, replacing each present top-level field.
func (p ProfessionalPatch) Apply(profile *ProfessionalProfile) {
	if p.Bio != nil {
		profile.Bio = *p.Bio
	}
	if p.Skills != nil {
		profile.Skills = append(datatypes.JSONSlice[string]{}, (*p.Skills)...)
	}
	if p.Services != nil {
		profile.Services = append(datatypes.JSONSlice[Service]{}, (*p.Services)...)
	}
	if p.Equipment != nil {
		profile.Equipment = append(datatypes.JSONSlice[string]{}, (*p.Equipment)...)
	}
	if p.Experience != nil {
		profile.Experience = *p.Experience
	}
	if p.ClearCoverImage {
		profile.CoverImage = nil
	} else if p.CoverImage != nil {
		cover := *p.CoverImage
		profile.CoverImage = &cover
	}
	if p.Portfolio != nil {
		profile.Portfolio = Portfolio{
			Files:         append([]PortfolioFile{}, p.Portfolio.Files...),
			ExternalLinks: append([]ExternalLink{}, p.Portfolio.ExternalLinks...),
		}
	}
	if p.Availability != nil {
		a := *p.Availability
		a.Locations = append([]Location{}, p.Availability.Locations...)
		profile.Availability = a
	}
	if p.IsSetupCompleted != nil {
		profile.IsSetupCompleted = *p.IsSetupCompleted
	}
}

// Columns maps the patch onto column names for gorm Updates.
func (p ProfessionalPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.Bio != nil {
		cols["bio"] = *p.Bio
	}
	if p.Skills != nil {
		cols["skills"] = datatypes.JSONSlice[string](append([]string{}, (*p.Skills)...))
	}
	if p.Services != nil {
		cols["services"] = datatypes.JSONSlice[Service](append([]Service{}, (*p.Services)...))
	}
	if p.Equipment != nil {
		cols["equipment"] = datatypes.JSONSlice[string](append([]string{}, (*p.Equipment)...))
	}
	if p.Experience != nil {
		cols["experience"] = *p.Experience
	}
	if p.ClearCoverImage {
		cols["cover_image"] = nil
	} else if p.CoverImage != nil {
		cols["cover_image"] = *p.CoverImage
	}
	if p.Portfolio != nil {
		cols["portfolio"] = *p.Portfolio
	}
	if p.Availability != nil {
		cols["availability"] = *p.Availability
	}
	if p.IsSetupCompleted != nil {
		cols["is_setup_completed"] = *p.IsSetupCompleted
	}
	return cols
}
