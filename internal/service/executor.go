package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"crm-voice-server/internal/model"
	"crm-voice-server/internal/repository"
	"crm-voice-server/internal/resolver"
)

// Executor applies a validated action list against the CRM stores.
type Executor interface {
	Execute(ctx context.Context, orgID string, actions []model.Action) (*model.ExecutionReport, error)
}

// ReportPublisher broadcasts execution reports for operators. Publishing is
// advisory: a failure is logged and never fails the execution.
type ReportPublisher interface {
	PublishReport(ctx context.Context, report *model.ExecutionReport) error
}

// Compile-time check
var _ Executor = (*ExecutorService)(nil)

// ExecutorService applies plans. Lead creations run first, in full, because
// a follow-up later in the same batch may reference a lead created by it.
// All other actions then run in their original relative order.
//
// Per-action failures divert to diagnostic drafts instead of aborting the
// batch; nothing is ever silently lost. Execution is additive only and not
// idempotent - each voice note is a distinct real-world event, so callers
// must not auto-retry a partial execution.
type ExecutorService struct {
	leads     repository.LeadRepository
	events    repository.CalendarEventRepository
	followUps repository.FollowUpRepository
	contacts  repository.ContactCreator
	publisher ReportPublisher
	logger    *zap.Logger

	// One plan mutates an org's stores at a time; concurrent uploads for
	// the same org would otherwise race the lead-before-follow-up ordering.
	orgLocks sync.Map // map[string]*sync.Mutex
}

func NewExecutorService(
	leads repository.LeadRepository,
	events repository.CalendarEventRepository,
	followUps repository.FollowUpRepository,
	contacts repository.ContactCreator,
	publisher ReportPublisher,
	logger *zap.Logger,
) *ExecutorService {
	return &ExecutorService{
		leads:     leads,
		events:    events,
		followUps: followUps,
		contacts:  contacts,
		publisher: publisher,
		logger:    logger.Named("Executor"),
	}
}

func (s *ExecutorService) lockOrg(orgID string) *sync.Mutex {
	mu, _ := s.orgLocks.LoadOrStore(orgID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *ExecutorService) Execute(ctx context.Context, orgID string, actions []model.Action) (*model.ExecutionReport, error) {
	mu := s.lockOrg(orgID)
	mu.Lock()
	defer mu.Unlock()

	report := &model.ExecutionReport{
		ExecutionID: uuid.New(),
		OrgID:       orgID,
		Leads:       []model.Lead{},
		Events:      []model.CalendarEvent{},
		FollowUps:   []model.FollowUp{},
		Contacts:    []model.Contact{},
		Drafts:      []model.Draft{},
		ExecutedAt:  time.Now().UTC(),
	}

	// Snapshot of known leads for name resolution, extended as the batch
	// creates new ones.
	knownLeads, err := s.leads.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to load leads for execution: %w", err)
	}

	log := s.logger.With(zap.String("orgID", orgID), zap.String("executionID", report.ExecutionID.String()))
	log.Info("Executing plan", zap.Int("actions", len(actions)))

	for _, action := range actions {
		if action.Type != model.ActionCreateLead {
			continue
		}
		p := action.CreateLead
		lead := model.Lead{
			OrgID:       orgID,
			Name:        p.Name,
			Phone:       p.Phone,
			Preferences: p.Preferences,
		}
		if err := s.leads.Create(ctx, &lead); err != nil {
			report.Drafts = append(report.Drafts, diagnosticDraft(
				"Nie udało się utworzyć leada",
				fmt.Sprintf("Lead %q nie został zapisany.\nBłąd: %v", p.Name, err)))
			continue
		}
		report.Leads = append(report.Leads, lead)
		knownLeads = append(knownLeads, lead)
	}

	for _, action := range actions {
		switch action.Type {
		case model.ActionCreateLead:
			// Applied in the first pass.
		case model.ActionCreateCalendarEvent:
			s.applyCalendarEvent(ctx, orgID, action.CreateCalendarEvent, report)
		case model.ActionCreateFollowUp:
			s.applyFollowUp(ctx, orgID, action.CreateFollowUp, knownLeads, report)
		case model.ActionCreateContact:
			s.applyContact(ctx, orgID, action.CreateContact, report)
		case model.ActionDraftSMS:
			p := action.DraftSMS
			report.Drafts = append(report.Drafts, model.Draft{
				ID:      uuid.New(),
				Kind:    model.DraftKindSMS,
				ToName:  p.ToName,
				ToPhone: p.ToPhone,
				Body:    p.Message,
			})
		case model.ActionDraftEmail:
			p := action.DraftEmail
			report.Drafts = append(report.Drafts, model.Draft{
				ID:      uuid.New(),
				Kind:    model.DraftKindEmail,
				ToName:  p.ToName,
				ToEmail: p.ToEmail,
				Subject: p.Subject,
				Body:    p.Body,
			})
		}
	}

	log.Info("Plan executed",
		zap.Int("leads", len(report.Leads)),
		zap.Int("events", len(report.Events)),
		zap.Int("followUps", len(report.FollowUps)),
		zap.Int("contacts", len(report.Contacts)),
		zap.Int("drafts", len(report.Drafts)),
		zap.Int("diagnostics", report.DiagnosticCount()))

	if s.publisher != nil {
		if err := s.publisher.PublishReport(ctx, report); err != nil {
			log.Warn("Failed to publish execution report", zap.Error(err))
		}
	}
	return report, nil
}

func (s *ExecutorService) applyCalendarEvent(ctx context.Context, orgID string, p *model.CreateCalendarEventPayload, report *model.ExecutionReport) {
	event := model.CalendarEvent{
		OrgID: orgID,
		Date:  p.Date,
		Time:  p.Time,
		Title: p.Title,
		Note:  p.Note,
		Type:  p.EventType,
	}
	if err := s.events.Create(ctx, &event); err != nil {
		report.Drafts = append(report.Drafts, diagnosticDraft(
			"Nie udało się utworzyć wydarzenia",
			fmt.Sprintf("Wydarzenie %q (%s %s) nie zostało zapisane.\nBłąd: %v", p.Title, p.Date, p.Time, err)))
		return
	}
	report.Events = append(report.Events, event)
}

// applyFollowUp never creates a follow-up with a dangling lead reference.
// A failed resolution surfaces as a diagnostic draft so the operator can see
// what was lost instead of the record disappearing or pointing at a guess.
func (s *ExecutorService) applyFollowUp(ctx context.Context, orgID string, p *model.CreateFollowUpPayload, knownLeads []model.Lead, report *model.ExecutionReport) {
	var relatedID int64
	switch {
	case p.RelatedID != nil:
		relatedID = *p.RelatedID
	case p.RelatedName != nil:
		id, ok := resolver.Resolve(*p.RelatedName, knownLeads)
		if !ok {
			report.Drafts = append(report.Drafts, diagnosticDraft(
				"Nie udało się utworzyć follow-up",
				fmt.Sprintf("Nie znaleziono leada o nazwie %q.\nTermin: %s\nDodaj leada ręcznie i utwórz follow-up ponownie.", *p.RelatedName, p.DueDate)))
			return
		}
		relatedID = id
	default:
		report.Drafts = append(report.Drafts, diagnosticDraft(
			"Nie udało się utworzyć follow-up",
			fmt.Sprintf("Brak leada w poleceniu (termin: %s).", p.DueDate)))
		return
	}

	followUp := model.FollowUp{
		OrgID:     orgID,
		RelatedID: relatedID,
		Type:      p.FollowUpType,
		DueDate:   p.DueDate,
		Time:      p.Time,
		Status:    model.FollowUpStatusPending,
	}
	if err := s.followUps.Create(ctx, &followUp); err != nil {
		report.Drafts = append(report.Drafts, diagnosticDraft(
			"Nie udało się utworzyć follow-up",
			fmt.Sprintf("Follow-up dla leada #%d (termin: %s) nie został zapisany.\nBłąd: %v", relatedID, p.DueDate, err)))
		return
	}
	report.FollowUps = append(report.FollowUps, followUp)
}

// applyContact calls the external endpoint; the error payload and the
// original action are preserved verbatim in the diagnostic so nothing is
// silently lost.
func (s *ExecutorService) applyContact(ctx context.Context, orgID string, p *model.CreateContactPayload, report *model.ExecutionReport) {
	contact, err := s.contacts.CreateContact(ctx, orgID, p)
	if err != nil {
		payload, _ := json.Marshal(p)
		report.Drafts = append(report.Drafts, diagnosticDraft(
			"Nie udało się utworzyć kontaktu",
			fmt.Sprintf("Kontakt %q nie został zapisany.\nBłąd: %v\nDane: %s", p.Name, err, payload)))
		return
	}
	report.Contacts = append(report.Contacts, *contact)
}

func diagnosticDraft(subject, body string) model.Draft {
	return model.Draft{
		ID:         uuid.New(),
		Kind:       model.DraftKindEmail,
		ToName:     "Operator",
		Subject:    subject,
		Body:       body,
		Diagnostic: true,
	}
}
