package repository

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"go.uber.org/zap"

	"crm-voice-server/internal/model"
)

// Compile-time check
var _ FollowUpRepository = (*pgFollowUpRepository)(nil)

type pgFollowUpRepository struct {
	db     DBTX
	logger *zap.Logger
}

func NewPgFollowUpRepository(db DBTX, logger *zap.Logger) FollowUpRepository {
	return &pgFollowUpRepository{
		db:     db,
		logger: logger.Named("PgFollowUpRepo"),
	}
}

func (r *pgFollowUpRepository) Create(ctx context.Context, followUp *model.FollowUp) error {
	// related_id carries a foreign key to leads; the executor resolves it
	// before calling, the constraint is the last line of defense.
	query := `
        INSERT INTO follow_ups (org_id, related_id, followup_type, due_date, due_time, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `
	logFields := []zap.Field{
		zap.String("orgID", followUp.OrgID),
		zap.Int64("relatedID", followUp.RelatedID),
		zap.String("dueDate", followUp.DueDate),
	}
	r.logger.Debug("Creating follow-up", logFields...)

	if followUp.Status == "" {
		followUp.Status = model.FollowUpStatusPending
	}
	err := r.db.QueryRow(ctx, query,
		followUp.OrgID, followUp.RelatedID, followUp.Type, followUp.DueDate, followUp.Time, followUp.Status,
	).Scan(&followUp.ID, &followUp.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create follow-up", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to create follow-up: %w", err)
	}
	r.logger.Info("Follow-up created", append(logFields, zap.Int64("followUpID", followUp.ID))...)
	return nil
}

func (r *pgFollowUpRepository) ListByOrg(ctx context.Context, orgID string) ([]model.FollowUp, error) {
	query := `
        SELECT id, org_id, related_id, followup_type, due_date, due_time, status, created_at
        FROM follow_ups
        WHERE org_id = $1
        ORDER BY due_date ASC, id ASC
    `
	var followUps []model.FollowUp
	err := pgxscan.Select(ctx, r.db, &followUps, query, orgID)
	if err != nil {
		r.logger.Error("Failed to list follow-ups", zap.String("orgID", orgID), zap.Error(err))
		return nil, fmt.Errorf("failed to list follow-ups for org %s: %w", orgID, err)
	}
	if followUps == nil {
		followUps = []model.FollowUp{}
	}
	return followUps, nil
}
