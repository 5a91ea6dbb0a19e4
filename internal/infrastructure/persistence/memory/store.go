// Package memory provides in-process catalog and state stores.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"menu-planner/internal/core/menu"
	"menu-planner/internal/core/recipe"
	"menu-planner/internal/pkg/common"
)

// RecipeRepository is a recipe.Repository backed by a slice.
type RecipeRepository struct {
	mu      sync.RWMutex
	recipes []recipe.Recipe
	nextID  int64
}

// NewRecipeRepository seeds the repository; seed ids are kept.
func NewRecipeRepository(seed ...recipe.Recipe) *RecipeRepository {
	r := &RecipeRepository{nextID: 1}
	for _, rec := range seed {
		rec.Normalize()
		if rec.ID == 0 {
			rec.ID = r.nextID
		}
		if rec.ID >= r.nextID {
			r.nextID = rec.ID + 1
		}
		r.recipes = append(r.recipes, rec)
	}
	return r
}

func (r *RecipeRepository) ListRecipes(ctx context.Context) ([]recipe.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]recipe.Recipe(nil), r.recipes...)
	recipe.SortByName(out)
	return out, nil
}

func (r *RecipeRepository) GetRecipesByIDs(ctx context.Context, ids []int64) ([]recipe.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := []recipe.Recipe{}
	for _, rec := range r.recipes {
		if want[rec.ID] {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *RecipeRepository) GetRecipesByType(ctx context.Context, category recipe.Category) ([]recipe.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []recipe.Recipe{}
	for _, rec := range r.recipes {
		if rec.Type == category {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *RecipeRepository) Create(ctx context.Context, rec *recipe.Recipe) error {
	rec.Normalize()
	if err := rec.Validate(); err != nil {
		return common.Invalid("%v", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.ID = r.nextID
	r.nextID++
	r.recipes = append(r.recipes, *rec)
	return nil
}

func (r *RecipeRepository) Update(ctx context.Context, rec *recipe.Recipe) error {
	rec.Normalize()
	if err := rec.Validate(); err != nil {
		return common.Invalid("%v", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.recipes {
		if r.recipes[i].ID == rec.ID {
			r.recipes[i] = *rec
			return nil
		}
	}
	return common.NotFound("recipe %d", rec.ID)
}

func (r *RecipeRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.recipes {
		if r.recipes[i].ID == id {
			r.recipes = append(r.recipes[:i], r.recipes[i+1:]...)
			return nil
		}
	}
	return common.NotFound("recipe %d", id)
}

func (r *RecipeRepository) Export(ctx context.Context, ids []int64) ([]recipe.Recipe, error) {
	if len(ids) == 0 {
		return r.ListRecipes(ctx)
	}
	return r.GetRecipesByIDs(ctx, ids)
}

// Import validates everything before touching the catalog.
func (r *RecipeRepository) Import(ctx context.Context, recipes []recipe.Recipe, clear bool) (int, error) {
	batch := make([]recipe.Recipe, 0, len(recipes))
	for i, rec := range recipes {
		rec.Normalize()
		if err := rec.Validate(); err != nil {
			return 0, common.Invalid("recipe %d: %v", i+1, err)
		}
		batch = append(batch, rec)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if clear {
		r.recipes = nil
	}
	for _, rec := range batch {
		rec.ID = r.nextID
		r.nextID++
		r.recipes = append(r.recipes, rec)
	}
	return len(batch), nil
}

// StateStore keeps the plan serialised so callers never share pointers with
// the stored copy.
type StateStore struct {
	mu   sync.RWMutex
	data []byte
}

func NewStateStore() *StateStore {
	return &StateStore{}
}

func (s *StateStore) Load(ctx context.Context) (*menu.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, nil
	}
	var st menu.State
	if err := common.ParseJSONBytes(s.data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *StateStore) Save(ctx context.Context, st *menu.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// Ping always succeeds.
func (s *StateStore) Ping(ctx context.Context) error {
	return nil
}
