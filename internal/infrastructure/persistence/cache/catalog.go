// Package cache keeps an in-process snapshot of the recipe catalog.
package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"menu-planner/internal/core/recipe"
	"menu-planner/internal/pkg/common"
)

// Stats counts snapshot reuse.
type Stats struct {
	Hits          int64
	Misses        int64
	Invalidations int64
}

// Repository serves catalog reads from one snapshot of the wrapped
// repository. Any write through it drops the snapshot; writes made elsewhere
// show up once the TTL expires.
type Repository struct {
	next recipe.Repository
	ttl  time.Duration
	now  func() time.Time

	mu        sync.RWMutex
	snapshot  []recipe.Recipe
	expiresAt time.Time
	stats     Stats
}

// NewRepository wraps next. ttl <= 0 keeps the snapshot until the next write.
func NewRepository(next recipe.Repository, ttl time.Duration) *Repository {
	common.LogInfo("catalog cache enabled", zap.Duration("ttl", ttl))
	return &Repository{next: next, ttl: ttl, now: time.Now}
}

func (r *Repository) ListRecipes(ctx context.Context) ([]recipe.Recipe, error) {
	snap, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return append([]recipe.Recipe(nil), snap...), nil
}

func (r *Repository) GetRecipesByIDs(ctx context.Context, ids []int64) ([]recipe.Recipe, error) {
	snap, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := []recipe.Recipe{}
	for _, rec := range snap {
		if want[rec.ID] {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *Repository) GetRecipesByType(ctx context.Context, category recipe.Category) ([]recipe.Recipe, error) {
	snap, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := []recipe.Recipe{}
	for _, rec := range snap {
		if rec.Type == category {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *Repository) Create(ctx context.Context, rec *recipe.Recipe) error {
	defer r.Invalidate()
	return r.next.Create(ctx, rec)
}

func (r *Repository) Update(ctx context.Context, rec *recipe.Recipe) error {
	defer r.Invalidate()
	return r.next.Update(ctx, rec)
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	defer r.Invalidate()
	return r.next.Delete(ctx, id)
}

// Export always reads through, so backups never come from a stale snapshot.
func (r *Repository) Export(ctx context.Context, ids []int64) ([]recipe.Recipe, error) {
	return r.next.Export(ctx, ids)
}

func (r *Repository) Import(ctx context.Context, recipes []recipe.Recipe, clear bool) (int, error) {
	defer r.Invalidate()
	return r.next.Import(ctx, recipes, clear)
}

// Invalidate drops the snapshot.
func (r *Repository) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snapshot != nil {
		r.stats.Invalidations++
	}
	r.snapshot = nil
}

func (r *Repository) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats
}

func (r *Repository) load(ctx context.Context) ([]recipe.Recipe, error) {
	r.mu.RLock()
	if r.fresh() {
		snap := r.snapshot
		r.mu.RUnlock()
		r.mu.Lock()
		r.stats.Hits++
		r.mu.Unlock()
		return snap, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fresh() {
		r.stats.Hits++
		return r.snapshot, nil
	}

	r.stats.Misses++
	all, err := r.next.ListRecipes(ctx)
	if err != nil {
		return nil, err
	}
	if all == nil {
		all = []recipe.Recipe{}
	}
	r.snapshot = all
	if r.ttl > 0 {
		r.expiresAt = r.now().Add(r.ttl)
	}
	common.LogDebug("catalog snapshot refreshed", zap.Int("recipes", len(all)))
	return r.snapshot, nil
}

// fresh requires r.mu held.
func (r *Repository) fresh() bool {
	if r.snapshot == nil {
		return false
	}
	return r.ttl <= 0 || r.now().Before(r.expiresAt)
}

// Ping forwards to the wrapped repository when it supports it.
func (r *Repository) Ping(ctx context.Context) error {
	if p, ok := r.next.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
