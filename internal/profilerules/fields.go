package profilerules

import (
	"fmt"
	"net/url"
	"strings"

	"grapher_backend/internal/models"
	"grapher_backend/pkg/apperrors"
)

var portfolioMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

func ValidateBio(bio string) error {
	if n := len([]rune(bio)); n > models.MaxBioLength {
		return apperrors.NewValidationError("bio", fmt.Sprintf("Bio must be at most %d characters (currently %d).", models.MaxBioLength, n))
	}
	return nil
}

func ValidateExperience(e models.Experience) error {
	if e.Years < 0 {
		return apperrors.NewValidationError("experience.years", "Years of experience cannot be negative.")
	}
	if e.CompletedProjects < 0 {
		return apperrors.NewValidationError("experience.completedProjects", "Completed projects cannot be negative.")
	}
	return nil
}

// CanAddTag trims the tag and rejects a case-insensitive duplicate.
// An empty tag returns ("", nil) and should be ignored by the caller.
func CanAddTag(field string, existing []string, tag string) (string, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", nil
	}
	for _, t := range existing {
		if strings.EqualFold(t, tag) {
			return "", apperrors.NewValidationError(field, fmt.Sprintf("%q is already in the list.", tag))
		}
	}
	return tag, nil
}

// CanAddLocation trims both parts and enforces the cap and uniqueness.
func CanAddLocation(existing []models.Location, city, country string) (models.Location, error) {
	loc := models.Location{City: strings.TrimSpace(city), Country: strings.TrimSpace(country)}
	if loc.City == "" || loc.Country == "" {
		return models.Location{}, apperrors.NewValidationError("locations", "Both city and country are required.")
	}
	if len(existing) >= models.MaxLocations {
		return models.Location{}, apperrors.NewValidationError("locations", fmt.Sprintf("You can add up to %d locations.", models.MaxLocations))
	}
	for _, l := range existing {
		if strings.EqualFold(l.City, loc.City) && strings.EqualFold(l.Country, loc.Country) {
			return models.Location{}, apperrors.NewValidationError("locations", "This location has already been added.")
		}
	}
	return loc, nil
}

// ValidateExternalLink defaults the platform and requires an absolute URL.
func ValidateExternalLink(platform, rawURL string) (models.ExternalLink, error) {
	platform = strings.TrimSpace(platform)
	if platform == "" {
		platform = models.DefaultLinkPlatform
	}
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return models.ExternalLink{}, apperrors.NewValidationError("url", "Please enter a URL.")
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return models.ExternalLink{}, apperrors.NewValidationError("url", "Please enter a valid URL.")
	}
	return models.ExternalLink{Platform: platform, URL: rawURL}, nil
}

// ValidatePortfolioUpload runs before any crop or upload.
func ValidatePortfolioUpload(mimeType string, size int64, currentCount int) error {
	if !portfolioMimeTypes[strings.ToLower(mimeType)] {
		return apperrors.ErrInvalidFileType.WithDetails(map[string]string{
			"file": "Only JPEG, PNG and WebP images are allowed.",
		})
	}
	if size > models.MaxUploadBytes {
		return apperrors.ErrFileTooLarge.WithDetails(map[string]string{
			"file": "Images must be 10MB or smaller.",
		})
	}
	if currentCount >= models.MaxPortfolioFiles {
		return apperrors.NewValidationError("files", fmt.Sprintf("You can upload up to %d images.", models.MaxPortfolioFiles))
	}
	return nil
}

// ValidateCoverUpload accepts any image type up to 10MB.
func ValidateCoverUpload(mimeType string, size int64) error {
	if !strings.HasPrefix(strings.ToLower(mimeType), "image/") {
		return apperrors.ErrInvalidFileType.WithDetails(map[string]string{
			"file": "Please select an image file.",
		})
	}
	if size > models.MaxUploadBytes {
		return apperrors.ErrFileTooLarge.WithDetails(map[string]string{
			"file": "Images must be 10MB or smaller.",
		})
	}
	return nil
}

func ParseService(raw string) (models.Service, error) {
	s, ok := models.ParseService(raw)
	if !ok {
		return "", apperrors.NewValidationError("services", fmt.Sprintf("Unknown service %q.", raw))
	}
	return s, nil
}

func ParseResponseTime(raw string) (models.ResponseTime, error) {
	r, ok := models.ParseResponseTime(raw)
	if !ok {
		return "", apperrors.NewValidationError("responseTime", fmt.Sprintf("Unknown response time %q.", raw))
	}
	return r, nil
}
