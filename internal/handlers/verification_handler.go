package handlers

import (
	"context"
	"net/http"

	"grapher_backend/internal/services/dto"
	"grapher_backend/internal/verification"

	"github.com/gin-gonic/gin"
)

// PhoneVerifier is the slice of verification.PhoneVerificationService the
// handler needs.
type PhoneVerifier interface {
	SendCode(ctx context.Context, uid, phone string) (*verification.Result, error)
	ConfirmCode(ctx context.Context, uid, phone, code, countryCode string) (*verification.Result, error)
}

type VerificationHandler struct {
	*BaseHandler
	verifier PhoneVerifier
}

func NewVerificationHandler(base *BaseHandler, verifier PhoneVerifier) *VerificationHandler {
	return &VerificationHandler{BaseHandler: base, verifier: verifier}
}

func (h *VerificationHandler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	phone := r.Group("/verification/phone")
	phone.Use(requireAuth)
	{
		phone.POST("/send", h.SendCode)
		phone.POST("/confirm", h.ConfirmCode)
	}
}

func (h *VerificationHandler) SendCode(c *gin.Context) {
	uid, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.SendPhoneCodeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	res, err := h.verifier.SendCode(c.Request.Context(), uid, req.PhoneNumber)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PhoneVerificationResponse{Status: string(res.Status)})
}

func (h *VerificationHandler) ConfirmCode(c *gin.Context) {
	uid, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.ConfirmPhoneCodeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	res, err := h.verifier.ConfirmCode(c.Request.Context(), uid, req.PhoneNumber, req.Code, req.CountryCode)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PhoneVerificationResponse{Status: string(res.Status)})
}
