package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

type memoryStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
}

func newMemoryStore() *memoryStore { return &memoryStore{data: map[string][]byte{}} }

func (s *memoryStore) Get(_ context.Context, tenantID, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet {
		return nil, errors.New("connection refused")
	}
	return s.data[makeKey(tenantID, key)], nil
}

func (s *memoryStore) Set(_ context.Context, tenantID, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[makeKey(tenantID, key)] = value
	return nil
}

func (s *memoryStore) Delete(_ context.Context, tenantID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, makeKey(tenantID, key))
	return nil
}

type countingRepository struct {
	guidelines  map[string]*model.Guideline
	activeCalls int
}

func (r *countingRepository) Save(_ context.Context, g *model.Guideline) error {
	g.ClearEvents()
	g.AdvanceRevision()
	r.guidelines[g.ID()] = g
	return nil
}

func (r *countingRepository) FindByID(_ context.Context, _, id string) (*model.Guideline, error) {
	g, ok := r.guidelines[id]
	if !ok {
		return nil, model.ErrGuidelineNotFound
	}
	return g, nil
}

func (r *countingRepository) FindActiveByTenant(_ context.Context, tenantID string) ([]*model.Guideline, error) {
	r.activeCalls++
	var out []*model.Guideline
	for _, g := range r.guidelines {
		if g.TenantID() == tenantID && g.IsActive() {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *countingRepository) FindApplicable(ctx context.Context, tenantID, coverageType, state, naicsCode string) ([]*model.Guideline, error) {
	return nil, errors.New("not used by the cache")
}

// pausingRepository blocks FindActiveByTenant after it has read the active set,
// so a Save can be interleaved before the result is returned.
type pausingRepository struct {
	*countingRepository
	loaded  chan struct{}
	release chan struct{}
}

func (r *pausingRepository) FindActiveByTenant(ctx context.Context, tenantID string) ([]*model.Guideline, error) {
	active, err := r.countingRepository.FindActiveByTenant(ctx, tenantID)
	close(r.loaded)
	<-r.release
	return active, err
}

func activeGuideline(t *testing.T, name, states string) *model.Guideline {
	t.Helper()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	g, err := model.NewGuideline("tenant-1", name, "", now)
	require.NoError(t, err)
	require.NoError(t, g.SetApplicability("", states, "", now))
	_, err = g.AddRule("Refer new ventures", valueobject.RuleTypeAppetite, valueobject.RuleActionRefer, 1, now)
	require.NoError(t, err)
	require.NoError(t, g.Activate(now))
	return g
}

func newCached(inner *countingRepository, store Store) *CachedGuidelineRepository {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCachedGuidelineRepository(inner, store, time.Minute, logger).(*CachedGuidelineRepository)
}

func TestCachedGuidelineRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("serves repeated reads from the cache", func(t *testing.T) {
		inner := &countingRepository{guidelines: map[string]*model.Guideline{}}
		repo := newCached(inner, newMemoryStore())
		require.NoError(t, repo.Save(ctx, activeGuideline(t, "Midwest", "IL,IN")))

		first, err := repo.FindActiveByTenant(ctx, "tenant-1")
		require.NoError(t, err)
		second, err := repo.FindApplicable(ctx, "tenant-1", "PROPERTY", "IL", "")
		require.NoError(t, err)

		assert.Equal(t, 1, inner.activeCalls)
		require.Len(t, first, 1)
		require.Len(t, second, 1)
		assert.Equal(t, first[0].ID(), second[0].ID())
		assert.Len(t, second[0].Rules(), 1)
		assert.Equal(t, 1, second[0].Revision())
	})

	t.Run("filters the cached set by applicability", func(t *testing.T) {
		inner := &countingRepository{guidelines: map[string]*model.Guideline{}}
		repo := newCached(inner, newMemoryStore())
		require.NoError(t, repo.Save(ctx, activeGuideline(t, "Midwest", "IL,IN")))

		got, err := repo.FindApplicable(ctx, "tenant-1", "PROPERTY", "TX", "")

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("save invalidates the tenant entry", func(t *testing.T) {
		inner := &countingRepository{guidelines: map[string]*model.Guideline{}}
		repo := newCached(inner, newMemoryStore())
		require.NoError(t, repo.Save(ctx, activeGuideline(t, "Midwest", "IL")))
		_, err := repo.FindActiveByTenant(ctx, "tenant-1")
		require.NoError(t, err)

		require.NoError(t, repo.Save(ctx, activeGuideline(t, "Southwest", "TX")))
		got, err := repo.FindActiveByTenant(ctx, "tenant-1")

		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, 2, inner.activeCalls)
	})

	t.Run("does not cache a load that raced with a save", func(t *testing.T) {
		counting := &countingRepository{guidelines: map[string]*model.Guideline{}}
		require.NoError(t, counting.Save(ctx, activeGuideline(t, "Midwest", "IL")))
		inner := &pausingRepository{
			countingRepository: counting,
			loaded:             make(chan struct{}),
			release:            make(chan struct{}),
		}
		store := newMemoryStore()
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		repo := NewCachedGuidelineRepository(inner, store, time.Minute, logger)

		done := make(chan []*model.Guideline)
		go func() {
			got, err := repo.FindActiveByTenant(ctx, "tenant-1")
			assert.NoError(t, err)
			done <- got
		}()

		<-inner.loaded
		require.NoError(t, repo.Save(ctx, activeGuideline(t, "Southwest", "TX")))
		close(inner.release)

		assert.Len(t, <-done, 1)
		cached, err := store.Get(ctx, "tenant-1", activeGuidelinesKey)
		require.NoError(t, err)
		assert.Nil(t, cached, "the pre-save set must not be written back")
	})

	t.Run("falls through when the store is unavailable", func(t *testing.T) {
		inner := &countingRepository{guidelines: map[string]*model.Guideline{}}
		store := newMemoryStore()
		store.failGet = true
		repo := newCached(inner, store)
		require.NoError(t, repo.Save(ctx, activeGuideline(t, "Midwest", "IL")))

		got, err := repo.FindActiveByTenant(ctx, "tenant-1")

		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("zero ttl disables caching", func(t *testing.T) {
		inner := &countingRepository{guidelines: map[string]*model.Guideline{}}
		repo := NewCachedGuidelineRepository(inner, newMemoryStore(), 0, slog.Default())
		assert.Same(t, inner, repo)
	})
}

func TestMakeKey(t *testing.T) {
	assert.Equal(t, "underwriting:tenant-1:guidelines:active", makeKey("tenant-1", activeGuidelinesKey))
}
