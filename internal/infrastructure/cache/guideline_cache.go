package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
)

const activeGuidelinesKey = "guidelines:active"

// CachedGuidelineRepository decorates a GuidelineRepository with a per-tenant
// cache of active guidelines. Saves invalidate the tenant's entry. Cache
// failures are logged and fall through to the wrapped repository.
//
// A load that raced with a Save in this process is not written back. Saves on
// other replicas are only seen once their invalidation lands or the ttl
// expires.
type CachedGuidelineRepository struct {
	inner  port.GuidelineRepository
	store  Store
	ttl    time.Duration
	logger *slog.Logger

	// mu orders write-backs against invalidations; generations counts saves
	// per tenant.
	mu          sync.Mutex
	generations map[string]uint64
}

// NewCachedGuidelineRepository wraps inner. A zero ttl returns inner unchanged.
func NewCachedGuidelineRepository(inner port.GuidelineRepository, store Store, ttl time.Duration, logger *slog.Logger) port.GuidelineRepository {
	if ttl <= 0 || store == nil {
		return inner
	}
	return &CachedGuidelineRepository{
		inner:       inner,
		store:       store,
		ttl:         ttl,
		logger:      logger,
		generations: make(map[string]uint64),
	}
}

var _ port.GuidelineRepository = (*CachedGuidelineRepository)(nil)

// Save persists through the wrapped repository and drops the tenant's cache.
func (r *CachedGuidelineRepository) Save(ctx context.Context, g *model.Guideline) error {
	if err := r.inner.Save(ctx, g); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.generations[g.TenantID()]++
	if err := r.store.Delete(ctx, g.TenantID(), activeGuidelinesKey); err != nil {
		r.logger.WarnContext(ctx, "guideline cache invalidation failed",
			"tenant_id", g.TenantID(),
			"error", err,
		)
	}
	return nil
}

// FindByID is not cached.
func (r *CachedGuidelineRepository) FindByID(ctx context.Context, tenantID, id string) (*model.Guideline, error) {
	return r.inner.FindByID(ctx, tenantID, id)
}

// FindActiveByTenant serves the tenant's active guidelines from the cache,
// loading and storing them on a miss.
func (r *CachedGuidelineRepository) FindActiveByTenant(ctx context.Context, tenantID string) ([]*model.Guideline, error) {
	if cached, ok := r.load(ctx, tenantID); ok {
		return cached, nil
	}

	gen := r.generation(tenantID)
	active, err := r.inner.FindActiveByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	r.put(ctx, tenantID, gen, active)
	return active, nil
}

// FindApplicable filters the cached active set.
func (r *CachedGuidelineRepository) FindApplicable(ctx context.Context, tenantID, coverageType, state, naicsCode string) ([]*model.Guideline, error) {
	active, err := r.FindActiveByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	var applicable []*model.Guideline
	for _, g := range active {
		if g.IsApplicable(coverageType, state, naicsCode) {
			applicable = append(applicable, g)
		}
	}
	return applicable, nil
}

func (r *CachedGuidelineRepository) load(ctx context.Context, tenantID string) ([]*model.Guideline, bool) {
	data, err := r.store.Get(ctx, tenantID, activeGuidelinesKey)
	if err != nil {
		r.logger.WarnContext(ctx, "guideline cache read failed", "tenant_id", tenantID, "error", err)
		return nil, false
	}
	if data == nil {
		return nil, false
	}

	guidelines, err := decodeGuidelines(data)
	if err != nil {
		r.logger.WarnContext(ctx, "discarding unreadable guideline cache entry", "tenant_id", tenantID, "error", err)
		return nil, false
	}
	return guidelines, true
}

func (r *CachedGuidelineRepository) generation(tenantID string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generations[tenantID]
}

// put stores guidelines loaded at generation gen, unless a Save has run since.
func (r *CachedGuidelineRepository) put(ctx context.Context, tenantID string, gen uint64, guidelines []*model.Guideline) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generations[tenantID] != gen {
		r.logger.DebugContext(ctx, "skipping stale guideline cache write", "tenant_id", tenantID)
		return
	}

	data, err := encodeGuidelines(guidelines)
	if err == nil {
		err = r.store.Set(ctx, tenantID, activeGuidelinesKey, data, r.ttl)
	}
	if err != nil {
		r.logger.WarnContext(ctx, "guideline cache write failed", "tenant_id", tenantID, "error", err)
	}
}

func encodeGuidelines(guidelines []*model.Guideline) ([]byte, error) {
	snaps := make([]model.GuidelineSnapshot, len(guidelines))
	for i, g := range guidelines {
		snaps[i] = g.Snapshot()
	}
	data, err := json.Marshal(snaps)
	if err != nil {
		return nil, fmt.Errorf("encode guidelines: %w", err)
	}
	return data, nil
}

func decodeGuidelines(data []byte) ([]*model.Guideline, error) {
	var snaps []model.GuidelineSnapshot
	if err := json.Unmarshal(data, &snaps); err != nil {
		return nil, fmt.Errorf("decode guidelines: %w", err)
	}
	out := make([]*model.Guideline, 0, len(snaps))
	for _, snap := range snaps {
		g, err := model.ReconstructGuideline(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}
