package sqlite

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"menu-planner/internal/core/recipe"
	"menu-planner/internal/pkg/common"
)

// RecipeRepository implements recipe.Repository on gorm.
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// ListRecipes returns the whole catalog ordered by name.
func (r *RecipeRepository) ListRecipes(ctx context.Context) ([]recipe.Recipe, error) {
	var models []RecipeModel
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return modelsToRecipes(models), nil
}

// GetRecipesByIDs returns the recipes among ids that exist.
func (r *RecipeRepository) GetRecipesByIDs(ctx context.Context, ids []int64) ([]recipe.Recipe, error) {
	if len(ids) == 0 {
		return []recipe.Recipe{}, nil
	}
	var models []RecipeModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return modelsToRecipes(models), nil
}

// GetRecipesByType returns one category in id order.
func (r *RecipeRepository) GetRecipesByType(ctx context.Context, category recipe.Category) ([]recipe.Recipe, error) {
	var models []RecipeModel
	if err := r.db.WithContext(ctx).Where("type = ?", string(category)).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return modelsToRecipes(models), nil
}

// Create inserts rec and sets its id.
func (r *RecipeRepository) Create(ctx context.Context, rec *recipe.Recipe) error {
	rec.Normalize()
	if err := rec.Validate(); err != nil {
		return common.Invalid("%v", err)
	}
	rec.ID = 0

	model := recipeToModel(*rec)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	rec.ID = model.ID
	return nil
}

// Update overwrites the recipe with rec.ID.
func (r *RecipeRepository) Update(ctx context.Context, rec *recipe.Recipe) error {
	rec.Normalize()
	if err := rec.Validate(); err != nil {
		return common.Invalid("%v", err)
	}

	db := r.db.WithContext(ctx)
	var existing RecipeModel
	if err := db.First(&existing, "id = ?", rec.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.NotFound("recipe %d", rec.ID)
		}
		return err
	}

	model := recipeToModel(*rec)
	model.CreatedAt = existing.CreatedAt
	return db.Save(model).Error
}

// Delete removes the recipe with id.
func (r *RecipeRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&RecipeModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.NotFound("recipe %d", id)
	}
	return nil
}

// Export returns the recipes with ids, or the whole catalog when ids is
// empty.
func (r *RecipeRepository) Export(ctx context.Context, ids []int64) ([]recipe.Recipe, error) {
	if len(ids) == 0 {
		return r.ListRecipes(ctx)
	}
	return r.GetRecipesByIDs(ctx, ids)
}

// Import inserts recipes with fresh ids in one transaction, optionally
// wiping the catalog first. Any invalid recipe aborts the whole import.
func (r *RecipeRepository) Import(ctx context.Context, recipes []recipe.Recipe, clear bool) (int, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if clear {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&RecipeModel{}).Error; err != nil {
				return err
			}
		}

		for i := range recipes {
			rec := recipes[i]
			rec.Normalize()
			if err := rec.Validate(); err != nil {
				return common.Invalid("recipe %d: %v", i+1, err)
			}
			rec.ID = 0
			if err := tx.Create(recipeToModel(rec)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(recipes), nil
}

// Ping checks the connection.
func (r *RecipeRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
