package validator

import (
	"log"
	"regexp"

	"grapher_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// PhonePattern accepts E.164 numbers with an optional leading plus.
var PhonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// 'is-service': one of the four offered services
	mustRegister("is-service", validateService)

	// 'is-response-time': one of the seven response buckets
	mustRegister("is-response-time", validateResponseTime)

	// 'is-role': client, professional or both
	mustRegister("is-role", validateRole)

	// 'phone': E.164, leading plus optional
	mustRegister("phone", validatePhone)
}

func validateService(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // 'required' handles empties
	}
	_, ok := models.ParseService(value)
	return ok
}

func validateResponseTime(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, ok := models.ParseResponseTime(value)
	return ok
}

func validateRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "client", "professional", "both":
		return true
	default:
		return false
	}
}

func validatePhone(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return PhonePattern.MatchString(value)
}
