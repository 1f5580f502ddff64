package handlers

import (
	"net/http"

	"grapher_backend/internal/auth"
	"grapher_backend/internal/services"
	"grapher_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	*BaseHandler
	userService    services.UserService
	accountService services.AccountService
	cookie         auth.SessionCookie
}

func NewUserHandler(
	base *BaseHandler,
	userService services.UserService,
	accountService services.AccountService,
	cookie auth.SessionCookie,
) *UserHandler {
	return &UserHandler{
		BaseHandler:    base,
		userService:    userService,
		accountService: accountService,
		cookie:         cookie,
	}
}

func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	users := r.Group("/users")
	users.Use(requireAuth)
	{
		users.GET("/me", h.GetMe)
		users.PUT("/me", h.UpdateMe)
		users.POST("/me/photo", h.UploadPhoto)
		users.GET("/me/client-profile", h.GetClientProfile)
		users.DELETE("/me", h.DeleteMe)
	}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	uid, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	user, err := h.userService.GetMe(h.GetDB(c), uid)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	uid, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	user, err := h.userService.UpdateDisplayName(h.GetDB(c), uid, req.DisplayName)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UploadPhoto takes a multipart "file" plus optional crop_* fields.
func (h *UserHandler) UploadPhoto(c *gin.Context) {
	uid, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	up, err := readUpload(c)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	user, err := h.accountService.UploadProfilePicture(c.Request.Context(), h.GetDB(c), uid, up.Data, up.MimeType, up.Selection)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetClientProfile(c *gin.Context) {
	uid, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	profile, err := h.userService.GetClientProfile(h.GetDB(c), uid)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// DeleteMe removes the account and signs the browser out.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	uid, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	if err := h.accountService.DeleteAccount(c.Request.Context(), h.GetDB(c), uid); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.cookie.Clear(c)
	c.Status(http.StatusNoContent)
}
