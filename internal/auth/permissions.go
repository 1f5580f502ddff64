package auth

import (
	"grapher_backend/internal/models"
	"grapher_backend/pkg/apperrors"
)

// ResolveRoleChange applies the set-custom-claims rules. The professional
// role can always be dropped but only granted once the profile is complete.
func ResolveRoleChange(requested string, profileComplete bool) (models.Role, error) {
	client, professional, ok := FlagsFromRole(requested)
	if !ok {
		return models.Role{}, apperrors.NewValidationError("role", "Role must be client, professional or both.")
	}
	if professional && !profileComplete {
		return models.Role{}, apperrors.ErrProfileIncomplete
	}
	return models.Role{Client: client, Professional: professional}, nil
}

// HasRole reports whether a claims role string includes want.
func HasRole(role, want string) bool {
	client, professional, ok := FlagsFromRole(role)
	if !ok {
		return false
	}
	switch want {
	case RoleClient:
		return client
	case RoleProfessional:
		return professional
	case RoleBoth:
		return client && professional
	}
	return false
}
