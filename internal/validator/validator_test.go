package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Service      string `json:"service" validate:"required,is-service"`
	ResponseTime string `json:"responseTime" validate:"omitempty,is-response-time"`
	Role         string `json:"role" validate:"is-role"`
	Phone        string `json:"phoneNumber" validate:"phone"`
}

func TestCustomRules(t *testing.T) {
	v := New()

	t.Run("valid request passes", func(t *testing.T) {
		err := v.Validate(&sampleRequest{
			Service:      "photo editing",
			ResponseTime: "Within 3 days",
			Role:         "both",
			Phone:        "+14155550123",
		})
		assert.NoError(t, err)
	})

	t.Run("errors are keyed by json name", func(t *testing.T) {
		err := v.Validate(&sampleRequest{
			Service:      "Painting",
			ResponseTime: "Whenever",
			Role:         "admin",
			Phone:        "0123",
		})
		require.Error(t, err)

		vErr, ok := err.(*ValidationError)
		require.True(t, ok)
		assert.Contains(t, vErr.Errors, "service")
		assert.Contains(t, vErr.Errors, "responseTime")
		assert.Contains(t, vErr.Errors, "role")
		assert.Equal(t, "Please enter a valid phone number", vErr.Errors["phoneNumber"])
	})
}

func TestPhonePattern(t *testing.T) {
	for _, ok := range []string{"+14155550123", "14155550123", "+447911123456"} {
		assert.True(t, PhonePattern.MatchString(ok), ok)
	}
	for _, bad := range []string{"", "+0123", "abc", "+1234567890123456", "+1 415 555"} {
		assert.False(t, PhonePattern.MatchString(bad), bad)
	}
}
