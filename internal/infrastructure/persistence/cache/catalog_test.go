package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-planner/internal/core/recipe"
	"menu-planner/internal/infrastructure/persistence/memory"
)

type countingRepo struct {
	*memory.RecipeRepository
	lists int
	err   error
}

func (c *countingRepo) ListRecipes(ctx context.Context) ([]recipe.Recipe, error) {
	c.lists++
	if c.err != nil {
		return nil, c.err
	}
	return c.RecipeRepository.ListRecipes(ctx)
}

func newRepo() *countingRepo {
	return &countingRepo{RecipeRepository: memory.NewRecipeRepository(
		recipe.Recipe{ID: 1, Name: "Carbonara", Type: recipe.CategoryPrimo},
		recipe.Recipe{ID: 2, Name: "Saltimbocca", Type: recipe.CategorySecondo},
	)}
}

func TestSnapshotServesReads(t *testing.T) {
	ctx := context.Background()
	next := newRepo()
	r := NewRepository(next, 0)

	all, err := r.ListRecipes(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byType, err := r.GetRecipesByType(ctx, recipe.CategorySecondo)
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "Saltimbocca", byType[0].Name)

	byID, err := r.GetRecipesByIDs(ctx, []int64{1, 9})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "Carbonara", byID[0].Name)

	assert.Equal(t, 1, next.lists)
	assert.Equal(t, Stats{Hits: 2, Misses: 1}, r.Stats())
}

func TestWritesInvalidate(t *testing.T) {
	ctx := context.Background()
	next := newRepo()
	r := NewRepository(next, 0)

	_, err := r.ListRecipes(ctx)
	require.NoError(t, err)

	rec := recipe.Recipe{Name: "Tiramisù", Type: recipe.CategoryDolce}
	require.NoError(t, r.Create(ctx, &rec))

	desserts, err := r.GetRecipesByType(ctx, recipe.CategoryDolce)
	require.NoError(t, err)
	assert.Len(t, desserts, 1)
	assert.Equal(t, 2, next.lists)

	rec.Name = "Tiramisù classico"
	require.NoError(t, r.Update(ctx, &rec))
	got, err := r.GetRecipesByIDs(ctx, []int64{rec.ID})
	require.NoError(t, err)
	assert.Equal(t, "Tiramisù classico", got[0].Name)

	require.NoError(t, r.Delete(ctx, rec.ID))
	_, err = r.Import(ctx, []recipe.Recipe{{Name: "Pesto", Type: recipe.CategorySugo}}, true)
	require.NoError(t, err)

	all, err := r.ListRecipes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Pesto", all[0].Name)
	assert.Equal(t, int64(3), r.Stats().Invalidations)
}

func TestSnapshotExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(0, 0)
	next := newRepo()
	r := NewRepository(next, time.Minute)
	r.now = func() time.Time { return now }

	_, err := r.ListRecipes(ctx)
	require.NoError(t, err)
	now = now.Add(30 * time.Second)
	_, err = r.ListRecipes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, next.lists)

	now = now.Add(time.Minute)
	_, err = r.ListRecipes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, next.lists)
}

func TestListErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	next := newRepo()
	next.err = errors.New("disk full")
	r := NewRepository(next, 0)

	_, err := r.ListRecipes(ctx)
	assert.Error(t, err)

	next.err = nil
	all, err := r.ListRecipes(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListReturnsCopy(t *testing.T) {
	r := NewRepository(newRepo(), 0)
	all, err := r.ListRecipes(context.Background())
	require.NoError(t, err)
	all[0].Name = "changed"

	again, err := r.ListRecipes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Carbonara", again[0].Name)
}
