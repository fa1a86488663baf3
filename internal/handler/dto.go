package handler

import (
	"crm-voice-server/internal/model"
	"crm-voice-server/internal/service"
)

// APIError is the uniform error body for every non-2xx response.
type APIError struct {
	Message string `json:"message"`
}

// VoiceNoteResponse is the response to a processed voice note.
type VoiceNoteResponse struct {
	Transcript string                 `json:"transcript"`
	Plan       *model.Plan            `json:"plan"`
	Report     *model.ExecutionReport `json:"report,omitempty"`
}

func toVoiceNoteResponse(result *service.NoteResult) VoiceNoteResponse {
	return VoiceNoteResponse{
		Transcript: result.Transcript,
		Plan:       result.Plan,
		Report:     result.Report,
	}
}

// ExecutePlanRequest carries a previously reviewed plan back for execution.
// Actions is intentionally untyped: the payload is client-supplied and goes
// through the same coercion as model output, so hand-edited or stale plans
// degrade to dropped actions instead of errors.
type ExecutePlanRequest struct {
	Actions []any `json:"actions"`
}

// CreateLeadRequest creates a lead directly, outside the voice pipeline.
type CreateLeadRequest struct {
	Name        string  `json:"name" binding:"required"`
	Phone       *string `json:"phone"`
	Preferences *string `json:"preferences"`
}

// LeadListResponse wraps the lead list.
type LeadListResponse struct {
	Leads []model.Lead `json:"leads"`
}

// CalendarEventListResponse wraps the calendar event list.
type CalendarEventListResponse struct {
	Events []model.CalendarEvent `json:"events"`
}

// FollowUpListResponse wraps the follow-up list.
type FollowUpListResponse struct {
	FollowUps []model.FollowUp `json:"followUps"`
}
