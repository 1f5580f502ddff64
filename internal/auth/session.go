package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	StateCookieName = "oauth_state"
	stateCookieTTL  = 10 * time.Minute
)

// SessionCookie describes the long-lived session cookie.
type SessionCookie struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

func (s SessionCookie) Set(c *gin.Context, token string) {
	setCookie(c, s.Name, token, int(s.TTL.Seconds()), s.Secure)
}

func (s SessionCookie) Clear(c *gin.Context) {
	setCookie(c, s.Name, "", -1, s.Secure)
}

func SetStateCookie(c *gin.Context, state string, secure bool) {
	setCookie(c, StateCookieName, state, int(stateCookieTTL.Seconds()), secure)
}

func ClearStateCookie(c *gin.Context, secure bool) {
	setCookie(c, StateCookieName, "", -1, secure)
}

func setCookie(c *gin.Context, name, value string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", secure, true)
}
