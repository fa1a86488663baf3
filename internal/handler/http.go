package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crm-voice-server/internal/model"
	"crm-voice-server/internal/repository"
	"crm-voice-server/internal/schemas"
	"crm-voice-server/internal/service"
)

// maxAudioBytes caps uploaded clips. Whisper rejects larger files anyway, so
// oversized uploads fail fast here instead of after a round trip.
const maxAudioBytes = 25 << 20

// VoiceHandler exposes the voice pipeline and the CRM read/write endpoints.
type VoiceHandler struct {
	voice     *service.VoiceService
	executor  service.Executor
	leads     repository.LeadRepository
	events    repository.CalendarEventRepository
	followUps repository.FollowUpRepository
	verifier  *JWTVerifier
	logger    *zap.Logger
}

func NewVoiceHandler(
	voice *service.VoiceService,
	executor service.Executor,
	leads repository.LeadRepository,
	events repository.CalendarEventRepository,
	followUps repository.FollowUpRepository,
	verifier *JWTVerifier,
	logger *zap.Logger,
) *VoiceHandler {
	return &VoiceHandler{
		voice:     voice,
		executor:  executor,
		leads:     leads,
		events:    events,
		followUps: followUps,
		verifier:  verifier,
		logger:    logger.Named("VoiceHandler"),
	}
}

// RegisterRoutes mounts all API routes under /api behind the auth middleware.
func (h *VoiceHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.Use(AuthMiddleware(h.verifier))
	{
		api.POST("/voice/notes", h.processVoiceNote)
		api.POST("/voice/plans/execute", h.executePlan)

		api.GET("/leads", h.listLeads)
		api.POST("/leads", h.createLead)
		api.GET("/calendar-events", h.listCalendarEvents)
		api.GET("/follow-ups", h.listFollowUps)
	}
}

// processVoiceNote accepts a multipart upload with an "audio" file part and
// optional "mode", "auto_execute" and "now" fields, and runs the pipeline.
func (h *VoiceHandler) processVoiceNote(c *gin.Context) {
	orgID := orgIDFromContext(c)

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		respondWithError(c, http.StatusBadRequest, "Audio file is required")
		return
	}
	if fileHeader.Size > maxAudioBytes {
		respondWithError(c, http.StatusRequestEntityTooLarge, "Audio file exceeds the 25 MB limit")
		return
	}

	mode := model.PlanModeExclusive
	if c.PostForm("mode") == string(model.PlanModeOpen) {
		mode = model.PlanModeOpen
	}
	autoExecute := c.PostForm("auto_execute") == "true"

	now := time.Now().UTC()
	if raw := c.PostForm("now"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, "Field 'now' must be RFC3339")
			return
		}
		now = parsed
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded audio", zap.Error(err))
		respondWithError(c, http.StatusBadRequest, "Could not read the audio file")
		return
	}
	defer file.Close()

	result, err := h.voice.ProcessNote(c.Request.Context(), orgID, file, fileHeader.Filename, now, mode, autoExecute)
	if err != nil {
		h.respondPipelineError(c, orgID, err)
		return
	}
	c.JSON(http.StatusOK, toVoiceNoteResponse(result))
}

// executePlan applies a plan the client reviewed earlier. The action list is
// re-coerced, so only well-formed actions reach the executor.
func (h *VoiceHandler) executePlan(c *gin.Context) {
	orgID := orgIDFromContext(c)

	var req ExecutePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	actions := schemas.CoerceActions(req.Actions)
	report, err := h.executor.Execute(c.Request.Context(), orgID, actions)
	if err != nil {
		h.logger.Error("Plan execution failed", zap.String("orgID", orgID), zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, "Plan execution failed")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *VoiceHandler) listLeads(c *gin.Context) {
	orgID := orgIDFromContext(c)
	leads, err := h.leads.ListByOrg(c.Request.Context(), orgID)
	if err != nil {
		h.logger.Error("Failed to list leads", zap.String("orgID", orgID), zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, "Failed to list leads")
		return
	}
	c.JSON(http.StatusOK, LeadListResponse{Leads: leads})
}

func (h *VoiceHandler) createLead(c *gin.Context) {
	orgID := orgIDFromContext(c)

	var req CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, "Field 'name' is required")
		return
	}

	var phone *string
	if req.Phone != nil {
		phone = schemas.NormalizePhone(*req.Phone)
	}
	lead := model.Lead{
		OrgID:       orgID,
		Name:        req.Name,
		Phone:       phone,
		Preferences: req.Preferences,
	}
	if err := h.leads.Create(c.Request.Context(), &lead); err != nil {
		h.logger.Error("Failed to create lead", zap.String("orgID", orgID), zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, "Failed to create lead")
		return
	}
	c.JSON(http.StatusCreated, lead)
}

func (h *VoiceHandler) listCalendarEvents(c *gin.Context) {
	orgID := orgIDFromContext(c)
	events, err := h.events.ListByOrg(c.Request.Context(), orgID)
	if err != nil {
		h.logger.Error("Failed to list calendar events", zap.String("orgID", orgID), zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, "Failed to list calendar events")
		return
	}
	c.JSON(http.StatusOK, CalendarEventListResponse{Events: events})
}

func (h *VoiceHandler) listFollowUps(c *gin.Context) {
	orgID := orgIDFromContext(c)
	followUps, err := h.followUps.ListByOrg(c.Request.Context(), orgID)
	if err != nil {
		h.logger.Error("Failed to list follow-ups", zap.String("orgID", orgID), zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, "Failed to list follow-ups")
		return
	}
	c.JSON(http.StatusOK, FollowUpListResponse{FollowUps: followUps})
}

// respondPipelineError maps pipeline failures to statuses the client can act
// on: an empty transcript is the caller's problem, upstream model failures
// are a bad gateway.
func (h *VoiceHandler) respondPipelineError(c *gin.Context, orgID string, err error) {
	switch {
	case errors.Is(err, model.ErrEmptyTranscript):
		respondWithError(c, http.StatusUnprocessableEntity, "The recording produced no speech. Please record the note again.")
	case errors.Is(err, model.ErrTranscriptionUnsupported):
		respondWithError(c, http.StatusNotImplemented, "Audio transcription is not available on this backend")
	case errors.Is(err, model.ErrEmptyCompletion):
		h.logger.Error("Language model returned empty completion", zap.String("orgID", orgID))
		respondWithError(c, http.StatusBadGateway, "The analysis service returned no result. Please try again.")
	default:
		h.logger.Error("Voice note processing failed", zap.String("orgID", orgID), zap.Error(err))
		respondWithError(c, http.StatusBadGateway, "Failed to process the voice note. Please try again.")
	}
}

func respondWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, APIError{Message: message})
}
