package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"crm-voice-server/internal/mocks"
	"crm-voice-server/internal/model"
	"crm-voice-server/internal/service"
)

func TestProcessNote_TranscribePlanExecute(t *testing.T) {
	aiClient := mocks.NewMockAIClient(t)
	planner := mocks.NewMockPlanner(t)
	executor := mocks.NewMockExecutor(t)
	svc := service.NewVoiceService(aiClient, planner, executor, zap.NewNop())

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	plan := &model.Plan{
		Transcript: "dodaj leada jan kowalski",
		Actions: []model.Action{
			{Type: model.ActionCreateLead, CreateLead: &model.CreateLeadPayload{Name: "Jan Kowalski"}},
		},
	}
	report := &model.ExecutionReport{OrgID: "org-1"}

	aiClient.On("Transcribe", mock.Anything, mock.Anything, "note.ogg").
		Return("dodaj leada jan kowalski", nil).Once()
	planner.On("GeneratePlan", mock.Anything, "dodaj leada jan kowalski", now, model.PlanModeExclusive).
		Return(plan, nil).Once()
	executor.On("Execute", mock.Anything, "org-1", plan.Actions).
		Return(report, nil).Once()

	result, err := svc.ProcessNote(context.Background(), "org-1",
		strings.NewReader("audio"), "note.ogg", now, model.PlanModeExclusive, true)
	require.NoError(t, err)
	assert.Equal(t, "dodaj leada jan kowalski", result.Transcript)
	assert.Same(t, plan, result.Plan)
	assert.Same(t, report, result.Report)
}

func TestProcessNote_NoAutoExecuteSkipsExecutor(t *testing.T) {
	aiClient := mocks.NewMockAIClient(t)
	planner := mocks.NewMockPlanner(t)
	executor := mocks.NewMockExecutor(t)
	svc := service.NewVoiceService(aiClient, planner, executor, zap.NewNop())

	plan := &model.Plan{Actions: []model.Action{{Type: model.ActionDraftSMS, DraftSMS: &model.DraftSMSPayload{Message: "ok"}}}}
	aiClient.On("Transcribe", mock.Anything, mock.Anything, mock.Anything).Return("tekst", nil).Once()
	planner.On("GeneratePlan", mock.Anything, "tekst", mock.Anything, model.PlanModeExclusive).Return(plan, nil).Once()

	result, err := svc.ProcessNote(context.Background(), "org-1",
		strings.NewReader("audio"), "note.ogg", time.Now(), model.PlanModeExclusive, false)
	require.NoError(t, err)
	assert.Nil(t, result.Report)
	executor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessNote_EmptyPlanSkipsExecutorEvenWithAutoExecute(t *testing.T) {
	aiClient := mocks.NewMockAIClient(t)
	planner := mocks.NewMockPlanner(t)
	executor := mocks.NewMockExecutor(t)
	svc := service.NewVoiceService(aiClient, planner, executor, zap.NewNop())

	aiClient.On("Transcribe", mock.Anything, mock.Anything, mock.Anything).Return("tekst", nil).Once()
	planner.On("GeneratePlan", mock.Anything, "tekst", mock.Anything, model.PlanModeExclusive).
		Return(&model.Plan{Actions: []model.Action{}}, nil).Once()

	result, err := svc.ProcessNote(context.Background(), "org-1",
		strings.NewReader("audio"), "note.ogg", time.Now(), model.PlanModeExclusive, true)
	require.NoError(t, err)
	assert.Nil(t, result.Report)
	executor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessNote_EmptyTranscriptAborts(t *testing.T) {
	aiClient := mocks.NewMockAIClient(t)
	planner := mocks.NewMockPlanner(t)
	executor := mocks.NewMockExecutor(t)
	svc := service.NewVoiceService(aiClient, planner, executor, zap.NewNop())

	aiClient.On("Transcribe", mock.Anything, mock.Anything, mock.Anything).
		Return("", model.ErrEmptyTranscript).Once()

	_, err := svc.ProcessNote(context.Background(), "org-1",
		strings.NewReader("audio"), "note.ogg", time.Now(), model.PlanModeExclusive, true)
	require.ErrorIs(t, err, model.ErrEmptyTranscript)
	planner.AssertNotCalled(t, "GeneratePlan", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
