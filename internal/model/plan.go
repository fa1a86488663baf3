package model

import (
	"time"

	"github.com/google/uuid"
)

// PlanMode selects the planner prompt variant. Exclusive mode restricts the
// model to the closed action set; open mode additionally asks for the
// coaching analysis (speaker, stage, tips, objections).
type PlanMode string

const (
	PlanModeExclusive PlanMode = "exclusive"
	PlanModeOpen      PlanMode = "open"
)

// RawPlan is the untrusted decoded output of the language model. Any field
// may be missing or mistyped; only CoerceActions turns Actions into something
// the rest of the pipeline trusts.
type RawPlan struct {
	Actions    []any
	Hint       string
	Speaker    string
	Stage      string
	Tips       []string
	Objections []Objection
}

// Objection is one objection/response pair from the coach analysis.
type Objection struct {
	Text     string `json:"text"`
	Response string `json:"response"`
}

// Plan is the validated result of analyzing one transcript.
type Plan struct {
	Transcript string         `json:"transcript"`
	Actions    []Action       `json:"actions"`
	Hint       string         `json:"hint,omitempty"`
	Coach      *CoachAnalysis `json:"coach,omitempty"`
}

// CoachAnalysis carries the call-coaching fields through to the client
// untouched; the executor never acts on them.
type CoachAnalysis struct {
	Speaker    string      `json:"speaker,omitempty"`
	Stage      string      `json:"stage,omitempty"`
	Tips       []string    `json:"tips,omitempty"`
	Objections []Objection `json:"objections,omitempty"`
}

// DraftKind distinguishes SMS from email drafts.
type DraftKind string

const (
	DraftKindSMS   DraftKind = "sms"
	DraftKindEmail DraftKind = "email"
)

// Draft is an outgoing message awaiting human review. Drafts are returned to
// the caller and never written to any store: the system does not auto-send
// communications. Diagnostic drafts additionally report actions the executor
// could not apply.
type Draft struct {
	ID         uuid.UUID `json:"id"`
	Kind       DraftKind `json:"kind"`
	ToName     string    `json:"toName,omitempty"`
	ToPhone    string    `json:"toPhone,omitempty"`
	ToEmail    string    `json:"toEmail,omitempty"`
	Subject    string    `json:"subject,omitempty"`
	Body       string    `json:"body"`
	Diagnostic bool      `json:"diagnostic"`
}

// ExecutionReport summarizes one executor run. Executions are not
// idempotent: running the same plan twice appends records twice.
type ExecutionReport struct {
	ExecutionID uuid.UUID       `json:"executionId"`
	OrgID       string          `json:"orgId"`
	Leads       []Lead          `json:"leads"`
	Events      []CalendarEvent `json:"events"`
	FollowUps   []FollowUp      `json:"followUps"`
	Contacts    []Contact       `json:"contacts"`
	Drafts      []Draft         `json:"drafts"`
	ExecutedAt  time.Time       `json:"executedAt"`
}

// DiagnosticCount returns the number of diagnostic drafts in the report.
func (r *ExecutionReport) DiagnosticCount() int {
	n := 0
	for _, d := range r.Drafts {
		if d.Diagnostic {
			n++
		}
	}
	return n
}
