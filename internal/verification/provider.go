// Package verification confirms phone numbers through an SMS code provider.
package verification

import "context"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
	StatusExpired  Status = "expired"
)

type Result struct {
	Status Status `json:"status"`
}

// Provider issues and checks SMS codes for E.164 numbers.
type Provider interface {
	StartVerification(ctx context.Context, e164 string) (*Result, error)
	CheckCode(ctx context.Context, e164, code string) (*Result, error)
}
