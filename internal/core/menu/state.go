package menu

import (
	"context"
	"fmt"

	"menu-planner/internal/core/shopping"
)

// Shopping source labels.
const (
	ContextExtra   = "Extra"
	ContextDessert = "Dessert"
)

// State is the single persisted plan aggregate. The shopping list is derived
// and always recomputed before saving.
type State struct {
	Menu              WeeklyPlan         `json:"menu"`
	ExtraMeals        []ExtraMeal        `json:"extraMeals"`
	Dessert           *Meal              `json:"dessert"`
	People            int                `json:"people"`
	DessertPeople     int                `json:"dessertPeople"`
	ShoppingList      shopping.List      `json:"shoppingList"`
	ShoppingOverrides shopping.Overrides `json:"shoppingOverrides"`
	ShoppingExtras    []shopping.Extra   `json:"shoppingExtras"`
}

// StateStore persists the current state. Load returns nil, nil when no plan
// has been generated.
type StateStore interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, s *State) error
}

// SlotContext labels a calendar slot, e.g. "Day 3 (Dinner)".
func SlotContext(day int, slot Slot) string {
	return fmt.Sprintf("Day %d (%s)", day, slot.Label())
}

// EffectiveDessertPeople is dessertPeople, falling back to people when unset.
func (s *State) EffectiveDessertPeople() int {
	if s.DessertPeople > 0 {
		return s.DessertPeople
	}
	return s.People
}

// Sources lists every meal contribution in plan order: days, extras, dessert.
func (s *State) Sources() []shopping.Source {
	var sources []shopping.Source
	for _, d := range s.Menu {
		for _, slot := range []Slot{SlotLunch, SlotDinner} {
			m := d.Get(slot)
			if m == nil {
				continue
			}
			sources = append(sources, shopping.Source{
				Context:  SlotContext(d.Day, slot),
				Servings: m.ServingsOr(s.People),
				Recipes:  m.Leaves(),
			})
		}
	}
	for _, e := range s.ExtraMeals {
		sources = append(sources, shopping.Source{
			Context:  ContextExtra,
			Servings: e.Meal.ServingsOr(s.People),
			Recipes:  e.Meal.Leaves(),
		})
	}
	if s.Dessert != nil {
		sources = append(sources, shopping.Source{
			Context:  ContextDessert,
			Servings: s.Dessert.ServingsOr(s.EffectiveDessertPeople()),
			Recipes:  s.Dessert.Leaves(),
		})
	}
	return sources
}

// Recompute rebuilds the shopping list using the current list as prior.
// Overrides and extras are left as they are.
func (s *State) Recompute() {
	s.normalize()
	s.ShoppingList = shopping.Aggregate(s.Sources(), s.ShoppingOverrides, s.ShoppingList.Main)
}

// normalize replaces nil collections so the JSON shape is stable.
func (s *State) normalize() {
	if s.Menu == nil {
		s.Menu = WeeklyPlan{}
	}
	if s.ExtraMeals == nil {
		s.ExtraMeals = []ExtraMeal{}
	}
	if s.ShoppingOverrides == nil {
		s.ShoppingOverrides = shopping.Overrides{}
	}
	if s.ShoppingExtras == nil {
		s.ShoppingExtras = []shopping.Extra{}
	}
	if s.ShoppingList.Main == nil {
		s.ShoppingList = shopping.NewList()
	}
}

// extraIndex returns the position of the extra meal with id, or -1.
func (s *State) extraIndex(id string) int {
	for i := range s.ExtraMeals {
		if s.ExtraMeals[i].UniqueID == id {
			return i
		}
	}
	return -1
}
