package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"crm-voice-server/internal/model"
)

// Compile-time check
var _ LeadRepository = (*pgLeadRepository)(nil)

type pgLeadRepository struct {
	db     DBTX
	logger *zap.Logger
}

func NewPgLeadRepository(db DBTX, logger *zap.Logger) LeadRepository {
	return &pgLeadRepository{
		db:     db,
		logger: logger.Named("PgLeadRepo"),
	}
}

func (r *pgLeadRepository) Create(ctx context.Context, lead *model.Lead) error {
	query := `
        INSERT INTO leads (org_id, name, phone, preferences)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `
	logFields := []zap.Field{zap.String("orgID", lead.OrgID), zap.String("name", lead.Name)}
	r.logger.Debug("Creating lead", logFields...)

	err := r.db.QueryRow(ctx, query, lead.OrgID, lead.Name, lead.Phone, lead.Preferences).
		Scan(&lead.ID, &lead.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create lead", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to create lead: %w", err)
	}
	r.logger.Info("Lead created", append(logFields, zap.Int64("leadID", lead.ID))...)
	return nil
}

func (r *pgLeadRepository) GetByID(ctx context.Context, orgID string, id int64) (*model.Lead, error) {
	query := `
        SELECT id, org_id, name, phone, preferences, created_at
        FROM leads
        WHERE org_id = $1 AND id = $2
    `
	var lead model.Lead
	err := pgxscan.Get(ctx, r.db, &lead, query, orgID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		r.logger.Error("Failed to get lead by ID", zap.Int64("leadID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get lead %d: %w", id, err)
	}
	return &lead, nil
}

func (r *pgLeadRepository) ListByOrg(ctx context.Context, orgID string) ([]model.Lead, error) {
	query := `
        SELECT id, org_id, name, phone, preferences, created_at
        FROM leads
        WHERE org_id = $1
        ORDER BY id ASC
    `
	var leads []model.Lead
	err := pgxscan.Select(ctx, r.db, &leads, query, orgID)
	if err != nil {
		r.logger.Error("Failed to list leads", zap.String("orgID", orgID), zap.Error(err))
		return nil, fmt.Errorf("failed to list leads for org %s: %w", orgID, err)
	}
	if leads == nil {
		leads = []model.Lead{}
	}
	return leads, nil
}
