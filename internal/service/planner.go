package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"crm-voice-server/internal/ai"
	"crm-voice-server/internal/model"
	"crm-voice-server/internal/schemas"
)

// Planner turns a transcript into a validated action plan.
type Planner interface {
	GeneratePlan(ctx context.Context, transcript string, now time.Time, mode model.PlanMode) (*model.Plan, error)
}

// Compile-time check
var _ Planner = (*PlannerService)(nil)

// PlannerService wraps the language-model call. The model is untrusted and
// unreliable: it may wrap JSON in prose, omit fields or return zero actions.
// Everything it produces goes through schemas before anyone else sees it.
//
// Date interpretation (a spoken "jutro o 15" has no year) is delegated to
// the prompt, which instructs the model to resolve dates relative to the
// supplied current time, rolling past dates forward to the next year. The
// service does not re-derive dates from the transcript.
type PlannerService struct {
	aiClient ai.Client
	prompts  *PromptProvider
	logger   *zap.Logger
}

func NewPlannerService(aiClient ai.Client, prompts *PromptProvider, logger *zap.Logger) *PlannerService {
	return &PlannerService{
		aiClient: aiClient,
		prompts:  prompts,
		logger:   logger.Named("Planner"),
	}
}

func (s *PlannerService) GeneratePlan(ctx context.Context, transcript string, now time.Time, mode model.PlanMode) (*model.Plan, error) {
	promptName := PromptPlanner
	if mode == model.PlanModeOpen {
		promptName = PromptCoach
	}
	systemPrompt, err := s.prompts.Get(promptName)
	if err != nil {
		return nil, err
	}

	userInput := fmt.Sprintf("Aktualny czas: %s\n\nTranskrypcja:\n%s",
		now.Format(time.RFC3339), transcript)

	response, usage, err := s.aiClient.Complete(ctx, systemPrompt, userInput)
	if err != nil {
		return nil, fmt.Errorf("plan generation failed: %w", err)
	}

	raw := schemas.ParseRawPlan([]byte(response))
	actions := schemas.CoerceActions(raw.Actions)

	s.logger.Info("Plan generated",
		zap.String("mode", string(mode)),
		zap.Int("rawActions", len(raw.Actions)),
		zap.Int("validActions", len(actions)),
		zap.Int("totalTokens", usage.TotalTokens))
	if len(actions) < len(raw.Actions) {
		s.logger.Warn("Dropped malformed actions from plan",
			zap.Int("dropped", len(raw.Actions)-len(actions)))
	}

	plan := &model.Plan{
		Transcript: transcript,
		Actions:    actions,
		Hint:       raw.Hint,
	}
	if mode == model.PlanModeOpen {
		coach := &model.CoachAnalysis{
			Speaker:    raw.Speaker,
			Stage:      raw.Stage,
			Tips:       raw.Tips,
			Objections: raw.Objections,
		}
		if coach.Speaker != "" || coach.Stage != "" || len(coach.Tips) > 0 || len(coach.Objections) > 0 {
			plan.Coach = coach
		}
	}
	return plan, nil
}
