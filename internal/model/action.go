package model

// ActionType is the discriminator of the action union. The set is closed:
// anything else coming back from the language model is discarded during
// coercion.
type ActionType string

const (
	ActionCreateLead          ActionType = "create_lead"
	ActionCreateCalendarEvent ActionType = "create_calendar_event"
	ActionCreateFollowUp      ActionType = "create_follow_up"
	ActionCreateContact       ActionType = "create_contact"
	ActionDraftSMS            ActionType = "draft_sms"
	ActionDraftEmail          ActionType = "draft_email"
)

// Action is one validated CRM mutation (or draft) extracted from a voice
// note. Exactly one payload field matching Type is non-nil. Instances are
// produced only by schemas.CoerceActions, so downstream code never
// re-validates shape.
type Action struct {
	Type                ActionType                  `json:"type"`
	CreateLead          *CreateLeadPayload          `json:"createLead,omitempty"`
	CreateCalendarEvent *CreateCalendarEventPayload `json:"createCalendarEvent,omitempty"`
	CreateFollowUp      *CreateFollowUpPayload      `json:"createFollowUp,omitempty"`
	CreateContact       *CreateContactPayload       `json:"createContact,omitempty"`
	DraftSMS            *DraftSMSPayload            `json:"draftSms,omitempty"`
	DraftEmail          *DraftEmailPayload          `json:"draftEmail,omitempty"`
}

// CreateLeadPayload - Name is non-empty, Phone is normalized or nil.
type CreateLeadPayload struct {
	Name        string  `json:"name"`
	Phone       *string `json:"phone"`
	Preferences *string `json:"preferences"`
}

// CreateCalendarEventPayload - Date (YYYY-MM-DD) and Time (HH:mm) are both
// guaranteed present; a meeting without a time is meaningless, so coercion
// drops such actions whole instead of producing a partial event.
type CreateCalendarEventPayload struct {
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Title     string    `json:"title"`
	Note      string    `json:"note"`
	EventType EventType `json:"eventType"`
}

// CreateFollowUpPayload - RelatedID is resolved at execution time when nil.
type CreateFollowUpPayload struct {
	RelatedName  *string      `json:"relatedName"`
	RelatedID    *int64       `json:"relatedId"`
	DueDate      string       `json:"dueDate"`
	Time         *string      `json:"time"`
	FollowUpType FollowUpType `json:"followupType"`
}

type CreateContactPayload struct {
	Name  string  `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
}

// DraftSMSPayload is never persisted; it is rendered for manual send.
type DraftSMSPayload struct {
	ToName  string `json:"toName,omitempty"`
	ToPhone string `json:"toPhone,omitempty"`
	Message string `json:"message"`
}

// DraftEmailPayload is never persisted; it is rendered for manual send.
type DraftEmailPayload struct {
	ToName  string `json:"toName,omitempty"`
	ToEmail string `json:"toEmail,omitempty"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
