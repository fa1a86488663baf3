package service

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"crm-voice-server/internal/ai"
	"crm-voice-server/internal/model"
)

// NoteResult is the outcome of processing one voice note. Report is nil
// unless the plan was executed.
type NoteResult struct {
	Transcript string                 `json:"transcript"`
	Plan       *model.Plan            `json:"plan"`
	Report     *model.ExecutionReport `json:"report,omitempty"`
}

// VoiceService drives the full pipeline for one clip: transcribe, plan,
// optionally execute. Stages are strictly sequential - each stage's input is
// the previous stage's output - and a failure in an early stage aborts the
// whole attempt, since there is nothing downstream to salvage.
type VoiceService struct {
	aiClient ai.Client
	planner  Planner
	executor Executor
	logger   *zap.Logger
}

func NewVoiceService(aiClient ai.Client, planner Planner, executor Executor, logger *zap.Logger) *VoiceService {
	return &VoiceService{
		aiClient: aiClient,
		planner:  planner,
		executor: executor,
		logger:   logger.Named("VoiceService"),
	}
}

// ProcessNote runs the pipeline. now and orgID are threaded explicitly so
// tests and replays are deterministic. autoExecute applies the plan
// immediately; otherwise the caller reviews it and triggers execution
// separately.
func (s *VoiceService) ProcessNote(
	ctx context.Context,
	orgID string,
	audio io.Reader,
	filename string,
	now time.Time,
	mode model.PlanMode,
	autoExecute bool,
) (*NoteResult, error) {
	transcript, err := s.aiClient.Transcribe(ctx, audio, filename)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Voice note transcribed",
		zap.String("orgID", orgID),
		zap.Int("transcriptLength", len(transcript)))

	plan, err := s.planner.GeneratePlan(ctx, transcript, now, mode)
	if err != nil {
		return nil, err
	}

	result := &NoteResult{Transcript: transcript, Plan: plan}
	if autoExecute && len(plan.Actions) > 0 {
		report, err := s.executor.Execute(ctx, orgID, plan.Actions)
		if err != nil {
			return nil, err
		}
		result.Report = report
	}
	return result, nil
}
