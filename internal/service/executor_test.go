package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"crm-voice-server/internal/mocks"
	"crm-voice-server/internal/model"
	"crm-voice-server/internal/service"
)

func strPtr(s string) *string { return &s }

type executorFixture struct {
	leads     *mocks.MockLeadRepository
	events    *mocks.MockCalendarEventRepository
	followUps *mocks.MockFollowUpRepository
	contacts  *mocks.MockContactCreator
	publisher *mocks.MockReportPublisher
	svc       *service.ExecutorService
}

func newExecutorFixture(t *testing.T) *executorFixture {
	f := &executorFixture{
		leads:     mocks.NewMockLeadRepository(t),
		events:    mocks.NewMockCalendarEventRepository(t),
		followUps: mocks.NewMockFollowUpRepository(t),
		contacts:  mocks.NewMockContactCreator(t),
		publisher: mocks.NewMockReportPublisher(t),
	}
	f.svc = service.NewExecutorService(f.leads, f.events, f.followUps, f.contacts, f.publisher, zap.NewNop())
	return f
}

func TestExecute_LeadCreatedBeforeFollowUpResolution(t *testing.T) {
	f := newExecutorFixture(t)
	ctx := context.Background()

	f.leads.On("ListByOrg", mock.Anything, "org-1").Return([]model.Lead{}, nil).Once()
	f.leads.On("Create", mock.Anything, mock.AnythingOfType("*model.Lead")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.Lead).ID = 7
		}).Return(nil).Once()
	f.followUps.On("Create", mock.Anything, mock.MatchedBy(func(fu *model.FollowUp) bool {
		return fu.RelatedID == 7 && fu.Status == model.FollowUpStatusPending
	})).Return(nil).Once()
	f.publisher.On("PublishReport", mock.Anything, mock.Anything).Return(nil).Once()

	// The follow-up references a lead created later in the same batch.
	actions := []model.Action{
		{Type: model.ActionCreateFollowUp, CreateFollowUp: &model.CreateFollowUpPayload{
			RelatedName:  strPtr("Jan Kowalski"),
			DueDate:      "2026-09-05",
			FollowUpType: model.FollowUpTypePozysk,
		}},
		{Type: model.ActionCreateLead, CreateLead: &model.CreateLeadPayload{
			Name: "Jan Kowalski",
		}},
	}

	report, err := f.svc.Execute(ctx, "org-1", actions)
	require.NoError(t, err)
	assert.Len(t, report.Leads, 1)
	assert.Len(t, report.FollowUps, 1)
	assert.Empty(t, report.Drafts)
	f.leads.AssertExpectations(t)
	f.followUps.AssertExpectations(t)
}

func TestExecute_UnresolvableFollowUpBecomesDiagnostic(t *testing.T) {
	f := newExecutorFixture(t)

	f.leads.On("ListByOrg", mock.Anything, "org-1").
		Return([]model.Lead{{ID: 1, OrgID: "org-1", Name: "Jan Kowalski"}}, nil).Once()
	f.publisher.On("PublishReport", mock.Anything, mock.Anything).Return(nil).Once()

	actions := []model.Action{
		{Type: model.ActionCreateFollowUp, CreateFollowUp: &model.CreateFollowUpPayload{
			RelatedName:  strPtr("Ghost"),
			DueDate:      "2026-09-05",
			FollowUpType: model.FollowUpTypePozysk,
		}},
	}

	report, err := f.svc.Execute(context.Background(), "org-1", actions)
	require.NoError(t, err)
	assert.Empty(t, report.FollowUps)
	require.Len(t, report.Drafts, 1)
	assert.True(t, report.Drafts[0].Diagnostic)
	assert.Contains(t, report.Drafts[0].Body, "Ghost")
	assert.Equal(t, 1, report.DiagnosticCount())
	f.followUps.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExecute_FollowUpWithoutAnyReferenceBecomesDiagnostic(t *testing.T) {
	f := newExecutorFixture(t)

	f.leads.On("ListByOrg", mock.Anything, "org-1").Return([]model.Lead{}, nil).Once()
	f.publisher.On("PublishReport", mock.Anything, mock.Anything).Return(nil).Once()

	actions := []model.Action{
		{Type: model.ActionCreateFollowUp, CreateFollowUp: &model.CreateFollowUpPayload{
			DueDate:      "2026-09-05",
			FollowUpType: model.FollowUpTypePozysk,
		}},
	}

	report, err := f.svc.Execute(context.Background(), "org-1", actions)
	require.NoError(t, err)
	assert.Empty(t, report.FollowUps)
	require.Len(t, report.Drafts, 1)
	assert.True(t, report.Drafts[0].Diagnostic)
}

func TestExecute_DraftsAreReturnedNotPersisted(t *testing.T) {
	f := newExecutorFixture(t)

	f.leads.On("ListByOrg", mock.Anything, "org-1").Return([]model.Lead{}, nil).Once()
	f.publisher.On("PublishReport", mock.Anything, mock.Anything).Return(nil).Once()

	actions := []model.Action{
		{Type: model.ActionDraftSMS, DraftSMS: &model.DraftSMSPayload{
			ToName: "Jan", ToPhone: "+48601234567", Message: "Do zobaczenia jutro o 15:00",
		}},
		{Type: model.ActionDraftEmail, DraftEmail: &model.DraftEmailPayload{
			ToEmail: "jan@example.com", Subject: "Oferta", Body: "W załączeniu.",
		}},
	}

	report, err := f.svc.Execute(context.Background(), "org-1", actions)
	require.NoError(t, err)
	require.Len(t, report.Drafts, 2)
	assert.Equal(t, model.DraftKindSMS, report.Drafts[0].Kind)
	assert.Equal(t, model.DraftKindEmail, report.Drafts[1].Kind)
	assert.False(t, report.Drafts[0].Diagnostic)
	assert.False(t, report.Drafts[1].Diagnostic)
	assert.Zero(t, report.DiagnosticCount())

	f.leads.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.events.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.followUps.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExecute_ContactFailurePreservesErrorAndPayload(t *testing.T) {
	f := newExecutorFixture(t)

	f.leads.On("ListByOrg", mock.Anything, "org-1").Return([]model.Lead{}, nil).Once()
	f.contacts.On("CreateContact", mock.Anything, "org-1", mock.Anything).
		Return(nil, errors.New(`contact endpoint returned 422: {"error":"phone taken"}`)).Once()
	f.publisher.On("PublishReport", mock.Anything, mock.Anything).Return(nil).Once()

	actions := []model.Action{
		{Type: model.ActionCreateContact, CreateContact: &model.CreateContactPayload{
			Name: "Jan Kowalski", Phone: strPtr("+48601234567"),
		}},
	}

	report, err := f.svc.Execute(context.Background(), "org-1", actions)
	require.NoError(t, err)
	assert.Empty(t, report.Contacts)
	require.Len(t, report.Drafts, 1)
	assert.True(t, report.Drafts[0].Diagnostic)
	assert.Contains(t, report.Drafts[0].Body, "phone taken")
	assert.Contains(t, report.Drafts[0].Body, "+48601234567")
}

func TestExecute_LeadCreateFailureBecomesDiagnosticAndBatchContinues(t *testing.T) {
	f := newExecutorFixture(t)

	f.leads.On("ListByOrg", mock.Anything, "org-1").Return([]model.Lead{}, nil).Once()
	f.leads.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	f.events.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	f.publisher.On("PublishReport", mock.Anything, mock.Anything).Return(nil).Once()

	actions := []model.Action{
		{Type: model.ActionCreateLead, CreateLead: &model.CreateLeadPayload{Name: "Jan"}},
		{Type: model.ActionCreateCalendarEvent, CreateCalendarEvent: &model.CreateCalendarEventPayload{
			Date: "2026-09-02", Time: "15:00", Title: "Prezentacja", EventType: model.EventTypePrezentacja,
		}},
	}

	report, err := f.svc.Execute(context.Background(), "org-1", actions)
	require.NoError(t, err)
	assert.Empty(t, report.Leads)
	assert.Len(t, report.Events, 1)
	require.Len(t, report.Drafts, 1)
	assert.True(t, report.Drafts[0].Diagnostic)
}

func TestExecute_SnapshotFailureAbortsExecution(t *testing.T) {
	f := newExecutorFixture(t)

	f.leads.On("ListByOrg", mock.Anything, "org-1").Return(nil, errors.New("db down")).Once()

	_, err := f.svc.Execute(context.Background(), "org-1", []model.Action{
		{Type: model.ActionCreateLead, CreateLead: &model.CreateLeadPayload{Name: "Jan"}},
	})
	require.Error(t, err)
	f.leads.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "PublishReport", mock.Anything, mock.Anything)
}

func TestExecute_PublisherFailureDoesNotFailExecution(t *testing.T) {
	f := newExecutorFixture(t)

	f.leads.On("ListByOrg", mock.Anything, "org-1").Return([]model.Lead{}, nil).Once()
	f.leads.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { args.Get(1).(*model.Lead).ID = 1 }).
		Return(nil).Once()
	f.publisher.On("PublishReport", mock.Anything, mock.Anything).Return(errors.New("broker gone")).Once()

	report, err := f.svc.Execute(context.Background(), "org-1", []model.Action{
		{Type: model.ActionCreateLead, CreateLead: &model.CreateLeadPayload{Name: "Jan"}},
	})
	require.NoError(t, err)
	assert.Len(t, report.Leads, 1)
}

func TestExecute_EmptyActionListStillReports(t *testing.T) {
	f := newExecutorFixture(t)

	f.leads.On("ListByOrg", mock.Anything, "org-1").Return([]model.Lead{}, nil).Once()
	f.publisher.On("PublishReport", mock.Anything, mock.Anything).Return(nil).Once()

	report, err := f.svc.Execute(context.Background(), "org-1", nil)
	require.NoError(t, err)
	assert.NotEqual(t, "", report.ExecutionID.String())
	assert.NotNil(t, report.Leads)
	assert.NotNil(t, report.Drafts)
}
