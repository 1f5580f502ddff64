package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"grapher_backend/internal/auth"
	"grapher_backend/internal/logger"
	"grapher_backend/internal/middleware"
	"grapher_backend/internal/services"
	"grapher_backend/internal/services/dto"
	"grapher_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	*BaseHandler
	authService services.AuthService
	tokens      *auth.TokenIssuer
	google      *auth.GoogleOAuth
	cookie      auth.SessionCookie
	frontendURL string
}

func NewAuthHandler(
	base *BaseHandler,
	authService services.AuthService,
	tokens *auth.TokenIssuer,
	google *auth.GoogleOAuth,
	cookie auth.SessionCookie,
	frontendURL string,
) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		authService: authService,
		tokens:      tokens,
		google:      google,
		cookie:      cookie,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	a := rg.Group("/auth")
	{
		a.GET("/google/start", h.GoogleStart)
		a.GET("/google/callback", h.GoogleCallback)
		a.POST("/session", h.CreateSession)
		a.DELETE("/session", h.DeleteSession)
		a.POST("/claims", requireAuth, h.SetClaims)
	}
}

// GoogleStart redirects to Google with a fresh state cookie.
func (h *AuthHandler) GoogleStart(c *gin.Context) {
	if !h.google.Enabled() {
		h.HandleServiceError(c, apperrors.ErrInvalidOperation("auth", "Google sign-in is not configured"))
		return
	}
	state, err := auth.RandomState()
	if err != nil {
		h.HandleServiceError(c, apperrors.InternalError(err))
		return
	}
	auth.SetStateCookie(c, state, h.cookie.Secure)
	c.Redirect(http.StatusFound, h.google.AuthCodeURL(state))
}

// GoogleCallback checks state, signs the user in, sets the session cookie
// and sends the browser back to the frontend.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	ctx := c.Request.Context()
	if !h.google.Enabled() {
		h.HandleServiceError(c, apperrors.ErrInvalidOperation("auth", "Google sign-in is not configured"))
		return
	}

	expected, err := c.Cookie(auth.StateCookieName)
	auth.ClearStateCookie(c, h.cookie.Secure)
	state := c.Query("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(state)) != 1 {
		logger.CtxWarn(ctx, "oauth state mismatch", "ip", c.ClientIP())
		h.HandleServiceError(c, apperrors.NewBadRequestError("Invalid OAuth state"))
		return
	}
	if errParam := c.Query("error"); errParam != "" {
		h.HandleServiceError(c, apperrors.NewUnauthorizedError("Google sign-in was cancelled"))
		return
	}

	gu, err := h.google.Exchange(ctx, c.Query("code"))
	if err != nil {
		logger.CtxWithError(ctx, "google exchange failed", err)
		h.HandleServiceError(c, apperrors.NewUnauthorizedError("Google sign-in failed"))
		return
	}

	db := h.GetDB(c)
	signedIn, err := h.authService.SignInWithGoogle(ctx, db, gu)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	session, err := h.authService.IssueSession(db, signedIn.User.UID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.cookie.Set(c, session.Token)

	target := h.frontendURL + "/"
	if session.ProfileComplete {
		target = h.frontendURL + "/dashboard/professional"
	}
	c.Redirect(http.StatusFound, target)
}

// CreateSession exchanges a valid token for the session cookie.
func (h *AuthHandler) CreateSession(c *gin.Context) {
	var req dto.SessionRequest
	if c.Request.ContentLength > 0 {
		if !h.BindAndValidate_JSON(c, &req) {
			return
		}
	}
	token := req.Token
	if token == "" {
		token = middleware.BearerToken(c)
	}
	if token == "" {
		h.HandleServiceError(c, apperrors.NewUnauthorizedError("Authentication required"))
		return
	}

	claims, err := h.tokens.Parse(token)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	session, err := h.authService.IssueSession(h.GetDB(c), claims.UID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.cookie.Set(c, session.Token)
	c.JSON(http.StatusOK, gin.H{"status": "success", "expiresIn": session.ExpiresIn})
}

func (h *AuthHandler) DeleteSession(c *gin.Context) {
	h.cookie.Clear(c)
	c.Status(http.StatusNoContent)
}

// SetClaims changes the caller's role and returns a refreshed token.
func (h *AuthHandler) SetClaims(c *gin.Context) {
	uid, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.SetClaimsRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)
	resp, err := h.authService.SetRole(c.Request.Context(), db, uid, req.Role)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	if _, err := c.Cookie(h.cookie.Name); err == nil {
		if session, err := h.authService.IssueSession(db, uid); err == nil {
			h.cookie.Set(c, session.Token)
		}
	}
	c.JSON(http.StatusOK, resp)
}
