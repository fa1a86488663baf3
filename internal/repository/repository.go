package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"crm-voice-server/internal/model"
)

// DBTX abstracts a pgx pool or transaction so repositories can run inside
// either.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LeadRepository stores leads. ListByOrg returns leads ordered by id
// ascending; the resolver depends on that order being creation order when
// breaking ties between substring matches.
type LeadRepository interface {
	Create(ctx context.Context, lead *model.Lead) error
	GetByID(ctx context.Context, orgID string, id int64) (*model.Lead, error)
	ListByOrg(ctx context.Context, orgID string) ([]model.Lead, error)
}

// CalendarEventRepository stores calendar events. The voice pipeline only
// appends; there are no update or delete operations here.
type CalendarEventRepository interface {
	Create(ctx context.Context, event *model.CalendarEvent) error
	ListByOrg(ctx context.Context, orgID string) ([]model.CalendarEvent, error)
}

// FollowUpRepository stores follow-ups. Create fails if RelatedID does not
// reference an existing lead; callers are expected to have resolved it.
type FollowUpRepository interface {
	Create(ctx context.Context, followUp *model.FollowUp) error
	ListByOrg(ctx context.Context, orgID string) ([]model.FollowUp, error)
}

// ContactCreator creates contacts in the external CRM backend. Unlike the
// other entities, contacts never touch local storage.
type ContactCreator interface {
	CreateContact(ctx context.Context, orgID string, payload *model.CreateContactPayload) (*model.Contact, error)
}
