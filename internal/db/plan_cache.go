package db

import (
	"context"
	"sync"
	"time"

	"github.com/patrickwarner/openmediaplan/internal/models"
)

// PlanCache stores generated plans so they can be fetched and exported by ID.
type PlanCache interface {
	SavePlan(ctx context.Context, plan *models.StoredPlan, ttl time.Duration) error
	GetPlan(ctx context.Context, id string) (*models.StoredPlan, error)
}

// MemoryPlanCache is a process-local PlanCache used when Redis is not
// configured and in tests.
type MemoryPlanCache struct {
	mu    sync.RWMutex
	plans map[string]memoryEntry
	now   func() time.Time
}

type memoryEntry struct {
	plan    models.StoredPlan
	expires time.Time
}

func NewMemoryPlanCache() *MemoryPlanCache {
	return &MemoryPlanCache{plans: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryPlanCache) SavePlan(_ context.Context, plan *models.StoredPlan, ttl time.Duration) error {
	e := memoryEntry{plan: *plan}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.plans[plan.ID] = e
	m.mu.Unlock()
	return nil
}

func (m *MemoryPlanCache) GetPlan(_ context.Context, id string) (*models.StoredPlan, error) {
	m.mu.RLock()
	e, ok := m.plans[id]
	m.mu.RUnlock()
	if !ok || (!e.expires.IsZero() && m.now().After(e.expires)) {
		return nil, models.ErrNotFound
	}
	plan := e.plan
	return &plan, nil
}

var (
	_ PlanCache = (*RedisStore)(nil)
	_ PlanCache = (*MemoryPlanCache)(nil)
)
