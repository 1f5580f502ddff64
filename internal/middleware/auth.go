package middleware

import (
	"strings"

	"grapher_backend/internal/auth"
	"grapher_backend/internal/logger"
	"grapher_backend/pkg/apperrors"
	"grapher_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware accepts a Bearer token or, failing that, the session cookie.
func AuthMiddleware(issuer *auth.TokenIssuer, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := BearerToken(c)
		if tokenStr == "" && cookieName != "" {
			if v, err := c.Cookie(cookieName); err == nil {
				tokenStr = v
			}
		}
		if tokenStr == "" {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authentication required"))
			c.Abort()
			return
		}

		claims, err := issuer.Parse(tokenStr)
		if err != nil {
			apperrors.HandleError(c, err)
			c.Abort()
			return
		}

		c.Set(contextkeys.UserIDKey, claims.UID)
		c.Set(contextkeys.RoleKey, claims.Role)
		c.Set(contextkeys.ClaimsKey, claims)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UID))
		c.Next()
	}
}

// RequireRole rejects callers whose claims do not include role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		current := c.GetString(contextkeys.RoleKey)
		if !auth.HasRole(current, role) {
			apperrors.HandleError(c, apperrors.NewForbiddenError("Access denied: insufficient role"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// BearerToken returns the token from the Authorization header, or "".
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// GetClaims returns the claims AuthMiddleware stored, if any.
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(contextkeys.ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
