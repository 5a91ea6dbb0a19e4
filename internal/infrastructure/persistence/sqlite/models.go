package sqlite

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"menu-planner/internal/core/recipe"
)

// IngredientList is stored as a JSON text column.
type IngredientList []recipe.Ingredient

// Scan implements the sql.Scanner interface
func (l *IngredientList) Scan(value interface{}) error {
	if value == nil {
		*l = IngredientList{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into IngredientList", value)
	}
	if len(data) == 0 {
		*l = IngredientList{}
		return nil
	}
	return json.Unmarshal(data, l)
}

// Value implements the driver.Valuer interface
func (l IngredientList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// RecipeModel is the catalog row.
type RecipeModel struct {
	ID          int64          `gorm:"primaryKey;autoIncrement"`
	Name        string         `gorm:"not null;index"`
	Type        string         `gorm:"not null;index"`
	Servings    int            `gorm:"not null"`
	Ingredients IngredientList `gorm:"type:text"`
	Difficulty  int            `gorm:"not null"`
	Procedure   string         `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (RecipeModel) TableName() string { return "recipes" }

// StateModel holds the serialised plan in the single row with CurrentStateID.
type StateModel struct {
	ID        int    `gorm:"primaryKey;autoIncrement:false"`
	Data      string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (StateModel) TableName() string { return "menu_state" }

// CurrentStateID is the id of the only state row.
const CurrentStateID = 1

func recipeToModel(r recipe.Recipe) *RecipeModel {
	return &RecipeModel{
		ID:          r.ID,
		Name:        r.Name,
		Type:        string(r.Type),
		Servings:    r.Servings,
		Ingredients: IngredientList(r.Ingredients),
		Difficulty:  r.Difficulty,
		Procedure:   r.Procedure,
	}
}

func modelToRecipe(m RecipeModel) recipe.Recipe {
	ings := []recipe.Ingredient(m.Ingredients)
	if ings == nil {
		ings = []recipe.Ingredient{}
	}
	return recipe.Recipe{
		ID:          m.ID,
		Name:        m.Name,
		Type:        recipe.Category(m.Type),
		Servings:    m.Servings,
		Ingredients: ings,
		Difficulty:  m.Difficulty,
		Procedure:   m.Procedure,
	}
}

func modelsToRecipes(models []RecipeModel) []recipe.Recipe {
	out := make([]recipe.Recipe, 0, len(models))
	for _, m := range models {
		out = append(out, modelToRecipe(m))
	}
	return out
}
