package recipe

import (
	"context"
	"sort"
)

// Catalog is the read-only view of the recipe collection the planner uses.
type Catalog interface {
	ListRecipes(ctx context.Context) ([]Recipe, error)
	GetRecipesByIDs(ctx context.Context, ids []int64) ([]Recipe, error)
	GetRecipesByType(ctx context.Context, category Category) ([]Recipe, error)
}

// Repository adds the CRUD and bulk operations used by the recipe endpoints.
type Repository interface {
	Catalog
	Create(ctx context.Context, r *Recipe) error
	Update(ctx context.Context, r *Recipe) error
	Delete(ctx context.Context, id int64) error
	Export(ctx context.Context, ids []int64) ([]Recipe, error)
	Import(ctx context.Context, recipes []Recipe, clear bool) (int, error)
}

// Buckets groups a catalog snapshot by category.
type Buckets map[Category][]Recipe

// BucketByCategory splits recipes by type, keeping the input order inside
// each bucket.
func BucketByCategory(recipes []Recipe) Buckets {
	b := make(Buckets, len(Categories))
	for _, r := range recipes {
		b[r.Type] = append(b[r.Type], r)
	}
	return b
}

// Index maps recipes by id.
func Index(recipes []Recipe) map[int64]Recipe {
	m := make(map[int64]Recipe, len(recipes))
	for _, r := range recipes {
		m[r.ID] = r
	}
	return m
}

// SortByName orders recipes by name, then id.
func SortByName(recipes []Recipe) {
	sort.SliceStable(recipes, func(i, j int) bool {
		if recipes[i].Name == recipes[j].Name {
			return recipes[i].ID < recipes[j].ID
		}
		return recipes[i].Name < recipes[j].Name
	})
}
