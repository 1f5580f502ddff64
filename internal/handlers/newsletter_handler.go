package handlers

import (
	"net/http"

	"grapher_backend/internal/services"
	"grapher_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type NewsletterHandler struct {
	*BaseHandler
	newsletter services.NewsletterService
}

func NewNewsletterHandler(base *BaseHandler, newsletter services.NewsletterService) *NewsletterHandler {
	return &NewsletterHandler{BaseHandler: base, newsletter: newsletter}
}

// RegisterRoutes mounts the public opt-in endpoints.
func (h *NewsletterHandler) RegisterRoutes(r *gin.RouterGroup) {
	newsletter := r.Group("/newsletter")
	{
		newsletter.POST("/subscriptions", h.Subscribe)
		newsletter.POST("/unsubscribe", h.Unsubscribe)
	}
}

// Subscribe answers 201 for a new address and 200 when it was already known.
func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	var req dto.SubscribeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	n, created, err := h.newsletter.Subscribe(c.Request.Context(), h.GetDB(c), req.Email, req.Name)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, n)
}

func (h *NewsletterHandler) Unsubscribe(c *gin.Context) {
	var req dto.UnsubscribeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	if err := h.newsletter.Unsubscribe(c.Request.Context(), h.GetDB(c), req.Email); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
