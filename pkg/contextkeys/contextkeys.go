package contextkeys

type contextKey string

// DBContextKey is where DBMiddleware stores the request's *gorm.DB.
const DBContextKey = contextKey("db")

// Gin context keys set by AuthMiddleware.
const (
	UserIDKey = "userID"
	RoleKey   = "role"
	ClaimsKey = "claims"
)
