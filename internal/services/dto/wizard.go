package dto

import (
	"encoding/json"

	"grapher_backend/internal/models"
)

// ==========================
// Wizard requests
// ==========================

// FieldValueRequest carries one raw form value for mutateField.
type FieldValueRequest struct {
	Value json.RawMessage `json:"value"`
}

type TagRequest struct {
	Value string `json:"value" validate:"required,max=60"`
}

type ToggleServiceRequest struct {
	Service string `json:"service" validate:"required,is-service"`
}

type AddLinkRequest struct {
	Platform string `json:"platform" validate:"omitempty,max=40"`
	URL      string `json:"url" validate:"required,max=2048"`
}

type AddLocationRequest struct {
	City    string `json:"city" validate:"required,max=100"`
	Country string `json:"country" validate:"required,max=100"`
}

type RemoteWorkRequest struct {
	RemoteWork *bool `json:"remoteWork" validate:"required"`
}

type ResponseTimeRequest struct {
	ResponseTime string `json:"responseTime" validate:"required,is-response-time"`
}

// TravelRequest toggles travel and/or sets the distance. A distance alone is
// kept local until persisted through the travel field.
type TravelRequest struct {
	WillingToTravel *bool `json:"willingToTravel"`
	MaxDistanceKm   *int  `json:"maxDistanceKm" validate:"omitempty,min=1,max=20000"`
}

// ==========================
// Wizard responses
// ==========================

type WizardSessionResponse struct {
	AccessibleUpTo int                         `json:"accessibleUpTo"`
	Version        int64                       `json:"version"`
	Profile        *models.ProfessionalProfile `json:"profile"`
}

type GateResponse struct {
	Current        int `json:"current"`
	AccessibleUpTo int `json:"accessibleUpTo"`
}

type CompletionResponse struct {
	Token    string      `json:"token"`
	Version  int64       `json:"version"`
	Redirect interface{} `json:"redirect"`
}
