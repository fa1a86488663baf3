package repository

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"go.uber.org/zap"

	"crm-voice-server/internal/model"
)

// Compile-time check
var _ CalendarEventRepository = (*pgCalendarEventRepository)(nil)

type pgCalendarEventRepository struct {
	db     DBTX
	logger *zap.Logger
}

func NewPgCalendarEventRepository(db DBTX, logger *zap.Logger) CalendarEventRepository {
	return &pgCalendarEventRepository{
		db:     db,
		logger: logger.Named("PgCalendarEventRepo"),
	}
}

func (r *pgCalendarEventRepository) Create(ctx context.Context, event *model.CalendarEvent) error {
	query := `
        INSERT INTO calendar_events (org_id, event_date, event_time, title, note, event_type)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `
	logFields := []zap.Field{
		zap.String("orgID", event.OrgID),
		zap.String("date", event.Date),
		zap.String("time", event.Time),
	}
	r.logger.Debug("Creating calendar event", logFields...)

	err := r.db.QueryRow(ctx, query,
		event.OrgID, event.Date, event.Time, event.Title, event.Note, event.Type,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create calendar event", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to create calendar event: %w", err)
	}
	r.logger.Info("Calendar event created", append(logFields, zap.Int64("eventID", event.ID))...)
	return nil
}

func (r *pgCalendarEventRepository) ListByOrg(ctx context.Context, orgID string) ([]model.CalendarEvent, error) {
	query := `
        SELECT id, org_id, event_date, event_time, title, note, event_type, created_at
        FROM calendar_events
        WHERE org_id = $1
        ORDER BY event_date ASC, event_time ASC, id ASC
    `
	var events []model.CalendarEvent
	err := pgxscan.Select(ctx, r.db, &events, query, orgID)
	if err != nil {
		r.logger.Error("Failed to list calendar events", zap.String("orgID", orgID), zap.Error(err))
		return nil, fmt.Errorf("failed to list calendar events for org %s: %w", orgID, err)
	}
	if events == nil {
		events = []model.CalendarEvent{}
	}
	return events, nil
}
