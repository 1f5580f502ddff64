package handlers

import (
	"net/http"

	"grapher_backend/internal/services"
	"grapher_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// ProfileHandler serves the public professional and client views.
type ProfileHandler struct {
	*BaseHandler
	profileService services.ProfileService
}

func NewProfileHandler(base *BaseHandler, profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    base,
		profileService: profileService,
	}
}

func (h *ProfileHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/professionals", h.ListProfessionals)
	r.GET("/professionals/:uid", h.GetProfessional)
	r.GET("/clients/:uid", h.GetClient)
}

// ListProfessionals filters completed profiles; there is no ranking.
func (h *ProfileHandler) ListProfessionals(c *gin.Context) {
	var req dto.ProfessionalListRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}
	page, pageSize := ParsePagination(c)

	resp, err := h.profileService.ListProfessionals(h.GetDB(c), &req, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProfileHandler) GetProfessional(c *gin.Context) {
	profile, err := h.profileService.GetPublicProfessional(h.GetDB(c), c.Param("uid"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) GetClient(c *gin.Context) {
	profile, err := h.profileService.GetPublicClient(h.GetDB(c), c.Param("uid"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
