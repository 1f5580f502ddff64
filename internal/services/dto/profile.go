package dto

import (
	"time"

	"grapher_backend/internal/models"
)

// PublicProfessional is what anyone may see of a completed professional profile.
type PublicProfessional struct {
	UID          string                        `json:"uid"`
	DisplayName  string                        `json:"displayName"`
	PhotoURL     *string                       `json:"photoURL"`
	Bio          string                        `json:"bio"`
	Services     []models.Service              `json:"services"`
	Skills       []string                      `json:"skills"`
	Equipment    []string                      `json:"equipment"`
	Experience   models.Experience             `json:"experience"`
	CoverImage   *models.CoverImage            `json:"coverImage"`
	Portfolio    models.Portfolio              `json:"portfolio"`
	Availability models.Availability           `json:"availability"`
	Ranking      models.Ranking                `json:"ranking"`
	UsageStats   models.ProfessionalUsageStats `json:"usageStats"`
	UpdatedAt    time.Time                     `json:"updatedAt"`
}

// ProfessionalSummary is one card on the browse page.
type ProfessionalSummary struct {
	UID          string              `json:"uid"`
	DisplayName  string              `json:"displayName"`
	PhotoURL     *string             `json:"photoURL"`
	Bio          string              `json:"bio"`
	Services     []models.Service    `json:"services"`
	CoverURL     string              `json:"coverUrl,omitempty"`
	Locations    []models.Location   `json:"locations"`
	RemoteWork   bool                `json:"remoteWork"`
	ResponseTime models.ResponseTime `json:"responseTime"`
	Ranking      models.Ranking      `json:"ranking"`
}

type PublicClient struct {
	UID         string                  `json:"uid"`
	DisplayName string                  `json:"displayName"`
	PhotoURL    *string                 `json:"photoURL"`
	UsageStats  models.ClientUsageStats `json:"usageStats"`
	Ranking     models.Ranking          `json:"ranking"`
	MemberSince time.Time               `json:"memberSince"`
}

// ProfessionalListRequest binds the browse query string.
type ProfessionalListRequest struct {
	Query   string `form:"query" validate:"omitempty,max=100"`
	Service string `form:"service" validate:"omitempty,is-service"`
	Remote  *bool  `form:"remote"`
	City    string `form:"city" validate:"omitempty,max=100"`
}

type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
	HasMore    bool        `json:"has_more"`
}

func NewPaginatedResponse(data interface{}, total int64, page, pageSize int) *PaginatedResponse {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}
}
