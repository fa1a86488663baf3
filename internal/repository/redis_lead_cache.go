package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"crm-voice-server/internal/model"
)

// Compile-time check
var _ LeadRepository = (*cachedLeadRepository)(nil)

// cachedLeadRepository wraps a LeadRepository with a read-through Redis
// cache of whole per-org lead lists. The resolver scans the full list on
// every follow-up, which would otherwise hit Postgres once per voice note.
// Cache failures degrade to the underlying repository and never fail a
// request.
type cachedLeadRepository struct {
	inner  LeadRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedLeadRepository(inner LeadRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) LeadRepository {
	return &cachedLeadRepository{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger.Named("LeadCache"),
	}
}

func leadListKey(orgID string) string {
	return fmt.Sprintf("org_leads:%s", orgID)
}

// Create writes through to the store and drops the cached list, so the next
// ListByOrg sees the new lead. Executions within one batch work on an
// in-memory snapshot and are not affected.
func (r *cachedLeadRepository) Create(ctx context.Context, lead *model.Lead) error {
	if err := r.inner.Create(ctx, lead); err != nil {
		return err
	}
	if err := r.client.Del(ctx, leadListKey(lead.OrgID)).Err(); err != nil {
		r.logger.Warn("Failed to invalidate lead list cache",
			zap.String("orgID", lead.OrgID), zap.Error(err))
	}
	return nil
}

func (r *cachedLeadRepository) GetByID(ctx context.Context, orgID string, id int64) (*model.Lead, error) {
	return r.inner.GetByID(ctx, orgID, id)
}

func (r *cachedLeadRepository) ListByOrg(ctx context.Context, orgID string) ([]model.Lead, error) {
	key := leadListKey(orgID)

	if data, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var leads []model.Lead
		if err := json.Unmarshal(data, &leads); err == nil {
			r.logger.Debug("Lead list cache hit", zap.String("orgID", orgID), zap.Int("count", len(leads)))
			return leads, nil
		}
		r.logger.Warn("Dropping undecodable lead list cache entry", zap.String("orgID", orgID))
		_ = r.client.Del(ctx, key).Err()
	} else if err != redis.Nil {
		r.logger.Warn("Lead list cache read failed", zap.String("orgID", orgID), zap.Error(err))
	}

	leads, err := r.inner.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(leads); err == nil {
		if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
			r.logger.Warn("Lead list cache write failed", zap.String("orgID", orgID), zap.Error(err))
		}
	}
	return leads, nil
}
