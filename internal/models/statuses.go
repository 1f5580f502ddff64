package models

import "strings"

type Service string
type ResponseTime string
type RankingLevel string

const (
	ServicePhotography  Service = "Photography"
	ServiceVideography  Service = "Videography"
	ServicePhotoEditing Service = "Photo Editing"
	ServiceVideoEditing Service = "Video Editing"

	ResponseWithin1Hour   ResponseTime = "Within 1 hour"
	ResponseWithin4Hours  ResponseTime = "Within 4 hours"
	ResponseWithin8Hours  ResponseTime = "Within 8 hours"
	ResponseWithin12Hours ResponseTime = "Within 12 hours"
	ResponseWithin24Hours ResponseTime = "Within 24 hours"
	ResponseWithin3Days   ResponseTime = "Within 3 days"
	ResponseWithinAWeek   ResponseTime = "Within a week"

	RankingBronze   RankingLevel = "Bronze"
	RankingSilver   RankingLevel = "Silver"
	RankingGold     RankingLevel = "Gold"
	RankingPlatinum RankingLevel = "Platinum"
)

// AllServices lists the services in display order.
var AllServices = []Service{
	ServicePhotography,
	ServiceVideography,
	ServicePhotoEditing,
	ServiceVideoEditing,
}

// AllResponseTimes lists the response-time buckets from fastest to slowest.
var AllResponseTimes = []ResponseTime{
	ResponseWithin1Hour,
	ResponseWithin4Hours,
	ResponseWithin8Hours,
	ResponseWithin12Hours,
	ResponseWithin24Hours,
	ResponseWithin3Days,
	ResponseWithinAWeek,
}

const (
	DefaultResponseTime = ResponseWithin24Hours
	DefaultTravelKm     = 25

	MaxBioLength      = 250
	MaxPortfolioFiles = 6
	MaxLocations      = 5
	MaxUploadBytes    = 10 * 1024 * 1024

	PortfolioFileTypeImage = "image"
	DefaultLinkPlatform    = "Instagram"
)

func (s Service) IsValid() bool {
	for _, known := range AllServices {
		if s == known {
			return true
		}
	}
	return false
}

func (r ResponseTime) IsValid() bool {
	for _, known := range AllResponseTimes {
		if r == known {
			return true
		}
	}
	return false
}

// ParseService matches a service name case-insensitively.
func ParseService(raw string) (Service, bool) {
	raw = strings.TrimSpace(raw)
	for _, known := range AllServices {
		if strings.EqualFold(string(known), raw) {
			return known, true
		}
	}
	return "", false
}

// ParseResponseTime matches a bucket label case-insensitively.
func ParseResponseTime(raw string) (ResponseTime, bool) {
	raw = strings.TrimSpace(raw)
	for _, known := range AllResponseTimes {
		if strings.EqualFold(string(known), raw) {
			return known, true
		}
	}
	return "", false
}
