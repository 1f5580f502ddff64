// Package auth issues and checks the JWTs that carry a user's roles.
package auth

import (
	"errors"
	"time"

	"grapher_backend/internal/models"
	"grapher_backend/pkg/apperrors"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleClient       = "client"
	RoleProfessional = "professional"
	RoleBoth         = "both"
)

type Claims struct {
	UID             string `json:"uid"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	ProfileComplete bool   `json:"profileComplete"`
	jwt.RegisteredClaims
}

// TokenIssuer signs HS256 tokens with a shared secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

func (i *TokenIssuer) Issue(user *models.User, profileComplete bool) (string, error) {
	if user == nil {
		return "", errors.New("auth: nil user")
	}
	now := i.now()
	claims := Claims{
		UID:             user.UID,
		Email:           user.Email,
		Role:            RoleFromFlags(user.Role.Client, user.Role.Professional),
		ProfileComplete: profileComplete,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Parse verifies signature and expiry. Any failure is ErrInvalidToken.
func (i *TokenIssuer) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !token.Valid {
		return nil, apperrors.ErrInvalidToken.WithError(err)
	}
	if claims.UID == "" {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

func RoleFromFlags(client, professional bool) string {
	switch {
	case client && professional:
		return RoleBoth
	case professional:
		return RoleProfessional
	default:
		return RoleClient
	}
}

// FlagsFromRole is the inverse of RoleFromFlags.
func FlagsFromRole(role string) (client, professional bool, ok bool) {
	switch role {
	case RoleClient:
		return true, false, true
	case RoleProfessional:
		return false, true, true
	case RoleBoth:
		return true, true, true
	}
	return false, false, false
}
