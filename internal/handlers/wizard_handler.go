package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"grapher_backend/internal/auth"
	"grapher_backend/internal/logger"
	"grapher_backend/internal/services"
	"grapher_backend/internal/services/dto"
	"grapher_backend/internal/wizard"
	"grapher_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// ============================================
// WIZARD HANDLER
// ============================================

type WizardHandler struct {
	*BaseHandler
	sessions       *wizard.Registry
	profileService services.ProfileService
	accountService services.AccountService
	authService    services.AuthService
	cookie         auth.SessionCookie
}

func NewWizardHandler(
	base *BaseHandler,
	sessions *wizard.Registry,
	profileService services.ProfileService,
	accountService services.AccountService,
	authService services.AuthService,
	cookie auth.SessionCookie,
) *WizardHandler {
	return &WizardHandler{
		BaseHandler:    base,
		sessions:       sessions,
		profileService: profileService,
		accountService: accountService,
		authService:    authService,
		cookie:         cookie,
	}
}

// ============================================
// ROUTES
// ============================================

func (h *WizardHandler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	wz := r.Group("/wizard")
	wz.Use(requireAuth)
	{
		wz.POST("/session", h.OpenSession)
		wz.GET("/gate", h.GetGate)
		wz.POST("/complete", h.Complete)
		wz.POST("/reset", h.Reset)
		wz.GET("/review", h.GetReview)

		for _, id := range []wizard.StepID{wizard.StepBasicInfo, wizard.StepPortfolio, wizard.StepAvailability} {
			step := wz.Group("/" + string(id))
			step.GET("", h.GetStep(id))
			step.PATCH("/fields/:field", h.MutateField(id))
			step.POST("/fields/:field/persist", h.PersistField(id))
			step.POST("/validate", h.ValidateStep(id))
			step.POST("/submit", h.SubmitStep(id))
		}

		basic := wz.Group("/basic-info")
		{
			basic.POST("/services/toggle", h.ToggleService)
			basic.POST("/skills", h.AddSkill)
			basic.DELETE("/skills/:value", h.RemoveSkill)
			basic.POST("/equipment", h.AddEquipment)
			basic.DELETE("/equipment/:value", h.RemoveEquipment)
			basic.PUT("/cover", h.ReplaceCover)
			basic.DELETE("/cover", h.RemoveCover)
		}

		portfolio := wz.Group("/portfolio")
		{
			portfolio.POST("/files", h.AddPortfolioFile)
			portfolio.DELETE("/files/:id", h.RemovePortfolioFile)
			portfolio.POST("/links", h.AddLink)
			portfolio.DELETE("/links/:index", h.RemoveLink)
		}

		availability := wz.Group("/availability")
		{
			availability.POST("/locations", h.AddLocation)
			availability.DELETE("/locations/:index", h.RemoveLocation)
			availability.PUT("/remote-work", h.SetRemoteWork)
			availability.PUT("/response-time", h.SetResponseTime)
			availability.PUT("/travel", h.SetTravel)
		}
	}
}

// ============================================
// SESSION HELPERS
// ============================================

func etag(version int64) string {
	return fmt.Sprintf(`"v%d"`, version)
}

// session resolves the caller's wizard session and enforces If-Match when
// the request carries one.
func (h *WizardHandler) session(c *gin.Context) (*wizard.Session, bool) {
	uid, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return nil, false
	}
	s, err := h.sessions.GetOrOpen(c.Request.Context(), uid)
	if err != nil {
		h.HandleServiceError(c, err)
		return nil, false
	}
	if match := strings.TrimSpace(c.GetHeader("If-Match")); match != "" && match != "*" {
		if strings.TrimPrefix(match, "W/") != etag(s.Version()) {
			h.HandleServiceError(c, apperrors.ConflictError("Profile was changed elsewhere; reload and try again").
				WithDetails(map[string]string{"etag": etag(s.Version())}))
			return nil, false
		}
	}
	return s, true
}

// respond writes body with the session's current ETag.
func (h *WizardHandler) respond(c *gin.Context, s *wizard.Session, status int, body interface{}) {
	c.Header("ETag", etag(s.Version()))
	c.JSON(status, body)
}

func (h *WizardHandler) editable(c *gin.Context, s *wizard.Session, id wizard.StepID) (wizard.Step, bool) {
	step, ok := s.Step(id)
	if !ok {
		h.HandleServiceError(c, apperrors.NotFoundError("wizard", "Unknown wizard step"))
		return nil, false
	}
	c.Request = c.Request.WithContext(logger.WithStep(c.Request.Context(), string(id)))
	return step, true
}

// ============================================
// SESSION
// ============================================

// OpenSession seeds the professional profile on first use and starts a
// fresh session.
func (h *WizardHandler) OpenSession(c *gin.Context) {
	uid, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	if _, err := h.profileService.GetOrCreateProfessional(h.GetDB(c), uid); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	s, err := h.sessions.Open(c.Request.Context(), uid)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.respond(c, s, http.StatusOK, dto.WizardSessionResponse{
		AccessibleUpTo: s.Gate(0),
		Version:        s.Version(),
		Profile:        s.Cache.Get(),
	})
}

func (h *WizardHandler) GetGate(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	current := ParseQueryInt(c, "current", 0)
	h.respond(c, s, http.StatusOK, dto.GateResponse{
		Current:        current,
		AccessibleUpTo: s.Gate(current),
	})
}

// ============================================
// GENERIC STEP OPERATIONS
// ============================================

func (h *WizardHandler) GetStep(id wizard.StepID) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := h.session(c)
		if !ok {
			return
		}
		step, ok := h.editable(c, s, id)
		if !ok {
			return
		}
		h.respond(c, s, http.StatusOK, gin.H{
			"form":           step.Form(),
			"accessibleUpTo": s.Gate(step.Index()),
		})
	}
}

func (h *WizardHandler) GetReview(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, s, http.StatusOK, s.Review.Form())
}

// MutateField edits the local form only; nothing is written.
func (h *WizardHandler) MutateField(id wizard.StepID) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := h.session(c)
		if !ok {
			return
		}
		step, ok := h.editable(c, s, id)
		if !ok {
			return
		}
		var req dto.FieldValueRequest
		if !h.BindAndValidate_JSON(c, &req) {
			return
		}
		if err := step.MutateField(c.Param("field"), req.Value); err != nil {
			h.HandleServiceError(c, err)
			return
		}
		h.respond(c, s, http.StatusOK, gin.H{"form": step.Form()})
	}
}

func (h *WizardHandler) PersistField(id wizard.StepID) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := h.session(c)
		if !ok {
			return
		}
		step, ok := h.editable(c, s, id)
		if !ok {
			return
		}
		if err := step.PersistField(c.Request.Context(), c.Param("field")); err != nil {
			h.HandleServiceError(c, err)
			return
		}
		h.respond(c, s, http.StatusOK, gin.H{"form": step.Form()})
	}
}

func (h *WizardHandler) ValidateStep(id wizard.StepID) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := h.session(c)
		if !ok {
			return
		}
		step, ok := h.editable(c, s, id)
		if !ok {
			return
		}
		h.respond(c, s, http.StatusOK, step.Validate())
	}
}

func (h *WizardHandler) SubmitStep(id wizard.StepID) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := h.session(c)
		if !ok {
			return
		}
		step, ok := h.editable(c, s, id)
		if !ok {
			return
		}
		next, err := step.Submit(c.Request.Context())
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		h.respond(c, s, http.StatusOK, gin.H{
			"next":           next,
			"accessibleUpTo": s.Gate(next.Index),
		})
	}
}

// ============================================
// BASIC INFO
// ============================================

func (h *WizardHandler) ToggleService(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.ToggleServiceRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	list, err := s.BasicInfo.ToggleService(c.Request.Context(), req.Service)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.respond(c, s, http.StatusOK, gin.H{"services": list})
}

func (h *WizardHandler) AddSkill(c *gin.Context) {
	h.addTag(c, "skills", (*wizard.BasicInfoStep).AddSkill)
}

func (h *WizardHandler) AddEquipment(c *gin.Context) {
	h.addTag(c, "equipment", (*wizard.BasicInfoStep).AddEquipment)
}

func (h *WizardHandler) RemoveSkill(c *gin.Context) {
	h.removeTag(c, "skills", (*wizard.BasicInfoStep).RemoveSkill)
}

func (h *WizardHandler) RemoveEquipment(c *gin.Context) {
	h.removeTag(c, "equipment", (*wizard.BasicInfoStep).RemoveEquipment)
}

type tagOp func(*wizard.BasicInfoStep, context.Context, string) ([]string, error)

func (h *WizardHandler) addTag(c *gin.Context, field string, op tagOp) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.TagRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	list, err := op(s.BasicInfo, c.Request.Context(), req.Value)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.respond(c, s, http.StatusOK, gin.H{field: list})
}

func (h *WizardHandler) removeTag(c *gin.Context, field string, op tagOp) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	list, err := op(s.BasicInfo, c.Request.Context(), c.Param("value"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.respond(c, s, http.StatusOK, gin.H{field: list})
}

func (h *WizardHandler) ReplaceCover(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	up, err := readUpload(c)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	cover, err := s.BasicInfo.ReplaceCoverImage(c.Request.Context(), up)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.respond(c, s, http.StatusOK, gin.H{"coverImage": cover})
}

func (h *WizardHandler) RemoveCover(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.BasicInfo.RemoveCoverImage(c.Request.Context()); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.respond(c, s, http.StatusOK, gin.H{"coverImage": nil})
}

// ============================================
// PORTFOLIO
// ============================================

func (h *WizardHandler) AddPortfolioFile(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	up, err := readUpload(c)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	file, err := s.Portfolio.AddFile(c.Request.Context(), up)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.respond(c, s, http.StatusCreated, file)
}

func (h *WizardHandler) RemovePortfolioFile(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Portfolio.RemoveFile(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.respond(c, s, http.StatusOK, gin.H{"form": s.Portfolio.Form()})
}

func (h *WizardHandler) AddLink(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.AddLinkRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	link, err := s.Portfolio.AddLink(c.Request.Context(), req.Platform, req.URL)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.respond(c, s, http.StatusCreated, link)
}

func (h *WizardHandler) RemoveLink(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	index, err := ParseParamInt(c, "index")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	if err := s.Portfolio.RemoveLink(c.Request.Context(), index); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.respond(c, s, http.StatusOK, gin.H{"form": s.Portfolio.Form()})
}

// ============================================
// AVAILABILITY
// ============================================

func (h *WizardHandler) AddLocation(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.AddLocationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	locations, err := s.Availability.AddLocation(c.Request.Context(), req.City, req.Country)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.respond(c, s, http.StatusCreated, gin.H{"locations": locations})
}

func (h *WizardHandler) RemoveLocation(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	index, err := ParseParamInt(c, "index")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	locations, err := s.Availability.RemoveLocation(c.Request.Context(), index)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.respond(c, s, http.StatusOK, gin.H{"locations": locations})
}

func (h *WizardHandler) SetRemoteWork(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.RemoteWorkRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	if err := s.Availability.SetRemoteWork(c.Request.Context(), *req.RemoteWork); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.respond(c, s, http.StatusOK, gin.H{"form": s.Availability.Form()})
}

func (h *WizardHandler) SetResponseTime(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.ResponseTimeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	if err := s.Availability.SetResponseTime(c.Request.Context(), req.ResponseTime); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.respond(c, s, http.StatusOK, gin.H{"form": s.Availability.Form()})
}

// SetTravel persists a toggle immediately. A distance on its own stays in
// the form until the travel field is persisted.
func (h *WizardHandler) SetTravel(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.TravelRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	if req.WillingToTravel == nil && req.MaxDistanceKm == nil {
		h.HandleServiceError(c, apperrors.NewValidationError("travel", "Nothing to update."))
		return
	}

	if req.WillingToTravel != nil {
		if _, err := s.Availability.SetWillingToTravel(c.Request.Context(), *req.WillingToTravel); err != nil {
			h.HandleServiceError(c, err)
			return
		}
	}
	if req.MaxDistanceKm != nil {
		s.Availability.SetMaxDistance(*req.MaxDistanceKm)
	}
	h.respond(c, s, http.StatusOK, gin.H{"form": s.Availability.Form()})
}

// ============================================
// COMPLETE / RESET
// ============================================

// Complete runs the terminal transaction. A caller on the session cookie
// gets it reissued, since the claims now carry the professional role.
func (h *WizardHandler) Complete(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	completion, err := s.Review.Complete(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	if _, err := c.Cookie(h.cookie.Name); err == nil && h.authService != nil {
		session, err := h.authService.IssueSession(h.GetDB(c), s.UID)
		if err != nil {
			logger.CtxWithError(c.Request.Context(), "failed to reissue session cookie", err)
		} else {
			h.cookie.Set(c, session.Token)
		}
	}
	h.respond(c, s, http.StatusOK, dto.CompletionResponse{
		Token:    completion.Token,
		Version:  completion.Version,
		Redirect: wizard.DashboardTarget(),
	})
}

func (h *WizardHandler) Reset(c *gin.Context) {
	uid, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	profile, err := h.accountService.ResetProfessionalProfile(c.Request.Context(), h.GetDB(c), uid)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Header("ETag", etag(profile.Version))
	c.JSON(http.StatusOK, dto.WizardSessionResponse{
		AccessibleUpTo: wizard.AccessibleUpTo(profile, 0),
		Version:        profile.Version,
		Profile:        profile,
	})
}
