package dto

import "grapher_backend/internal/models"

// AuthResponse is returned whenever a fresh token is issued.
type AuthResponse struct {
	Token           string       `json:"token"`
	ExpiresIn       int64        `json:"expiresIn"`
	User            *models.User `json:"user"`
	ProfileComplete bool         `json:"profileComplete"`
}

// SessionRequest exchanges a bearer token for the session cookie.
// The token may also come from the Authorization header.
type SessionRequest struct {
	Token string `json:"token"`
}

// SetClaimsRequest is the set-custom-claims body.
type SetClaimsRequest struct {
	Role string `json:"role" validate:"required,is-role"`
}
