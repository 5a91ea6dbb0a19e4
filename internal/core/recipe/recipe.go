package recipe

import (
	"fmt"
	"strings"
)

// Category is the closed set of recipe types.
type Category string

const (
	CategoryPrimo           Category = "primo"
	CategoryPrimoCompleto   Category = "primo_completo"
	CategorySugo            Category = "sugo"
	CategorySecondo         Category = "secondo"
	CategorySecondoCompleto Category = "secondo_completo"
	CategoryContorno        Category = "contorno"
	CategoryAntipasto       Category = "antipasto"
	CategoryPanificato      Category = "panificato"
	CategoryPreparazione    Category = "preparazione"
	CategoryDolce           Category = "dolce"
)

// Categories lists every valid category.
var Categories = []Category{
	CategoryPrimo,
	CategoryPrimoCompleto,
	CategorySugo,
	CategorySecondo,
	CategorySecondoCompleto,
	CategoryContorno,
	CategoryAntipasto,
	CategoryPanificato,
	CategoryPreparazione,
	CategoryDolce,
}

// ParseCategory validates a raw type tag.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c.Valid() {
		return c, nil
	}
	return "", fmt.Errorf("unknown recipe type %q", s)
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// IsFirstCourse reports primo and primo_completo.
func (c Category) IsFirstCourse() bool {
	return strings.Contains(string(c), "primo")
}

// IsAccompaniment reports categories that pair with a base dish (sauces and
// side dishes).
func (c Category) IsAccompaniment() bool {
	return c == CategorySugo || c == CategoryContorno
}

const (
	DefaultServings   = 2
	DefaultDifficulty = 1
	MaxDifficulty     = 5
)

// Ingredient is one line of a recipe.
type Ingredient struct {
	Name     string   `json:"name"`
	Quantity Quantity `json:"quantity"`
}

// Recipe is a catalog entry. Ingredient quantities are calibrated for
// Servings people.
type Recipe struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Type        Category     `json:"type"`
	Servings    int          `json:"servings"`
	Ingredients []Ingredient `json:"ingredients"`
	Difficulty  int          `json:"difficulty"`
	Procedure   string       `json:"procedure"`
}

// Normalize applies the catalog defaults for missing servings and difficulty.
func (r *Recipe) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	if r.Servings <= 0 {
		r.Servings = DefaultServings
	}
	if r.Difficulty <= 0 {
		r.Difficulty = DefaultDifficulty
	}
	if r.Ingredients == nil {
		r.Ingredients = []Ingredient{}
	}
}

// Validate checks the fields the planner relies on.
func (r Recipe) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("recipe name is required")
	}
	if !r.Type.Valid() {
		return fmt.Errorf("unknown recipe type %q", r.Type)
	}
	for i, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return fmt.Errorf("ingredient %d has no name", i+1)
		}
	}
	return nil
}

// Weight is the selection weight: 5 for difficulty 1 down to 1 for
// difficulty 5 and above.
func (r Recipe) Weight() int {
	return max(1, 6-r.Difficulty)
}
