package model

import "time"

// EventType classifies a calendar event.
type EventType string

const (
	EventTypePozysk       EventType = "pozysk"
	EventTypePrezentacja  EventType = "prezentacja"
	EventTypeUmowa        EventType = "umowa"
	EventTypeInne         EventType = "inne"
	DefaultEventType                = EventTypePozysk
	DefaultCalendarTitle            = "Spotkanie"
)

// IsValid reports whether the value belongs to the closed event type set.
func (t EventType) IsValid() bool {
	switch t {
	case EventTypePozysk, EventTypePrezentacja, EventTypeUmowa, EventTypeInne:
		return true
	}
	return false
}

// FollowUpType classifies a follow-up.
type FollowUpType string

const (
	FollowUpTypePozysk      FollowUpType = "pozysk"
	FollowUpTypePrezentacja FollowUpType = "prezentacja"
	DefaultFollowUpType                  = FollowUpTypePozysk
)

func (t FollowUpType) IsValid() bool {
	switch t {
	case FollowUpTypePozysk, FollowUpTypePrezentacja:
		return true
	}
	return false
}

// FollowUpStatus is the lifecycle status of a follow-up.
type FollowUpStatus string

const (
	FollowUpStatusPending FollowUpStatus = "pending"
	FollowUpStatusDone    FollowUpStatus = "done"
)

// Lead is a prospective client of the agency.
type Lead struct {
	ID          int64     `json:"id" db:"id"`
	OrgID       string    `json:"orgId" db:"org_id"`
	Name        string    `json:"name" db:"name"`
	Phone       *string   `json:"phone" db:"phone"`
	Preferences *string   `json:"preferences" db:"preferences"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// CalendarEvent is a calendar entry. The voice pipeline only appends events;
// updates and deletions go through other CRM flows.
type CalendarEvent struct {
	ID        int64     `json:"id" db:"id"`
	OrgID     string    `json:"orgId" db:"org_id"`
	Date      string    `json:"date" db:"event_date"`
	Time      string    `json:"time" db:"event_time"`
	Title     string    `json:"title" db:"title"`
	Note      string    `json:"note" db:"note"`
	Type      EventType `json:"type" db:"event_type"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// FollowUp always references an existing lead; a record without a valid
// RelatedID is never created at all.
type FollowUp struct {
	ID        int64          `json:"id" db:"id"`
	OrgID     string         `json:"orgId" db:"org_id"`
	RelatedID int64          `json:"relatedId" db:"related_id"`
	Type      FollowUpType   `json:"type" db:"followup_type"`
	DueDate   string         `json:"dueDate" db:"due_date"`
	Time      *string        `json:"time" db:"due_time"`
	Status    FollowUpStatus `json:"status" db:"status"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
}

// Contact lives in the external CRM backend and is never stored locally.
type Contact struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
}
