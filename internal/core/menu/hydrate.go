package menu

import "menu-planner/internal/core/recipe"

// Hydrate refreshes every embedded recipe snapshot from live, keyed by id.
// Plan fields (custom servings, extra ids, composite name) are kept. Recipes
// that no longer exist keep their snapshot.
func (s *State) Hydrate(live map[int64]recipe.Recipe) {
	for i := range s.Menu {
		s.Menu[i].Lunch = hydrateMeal(s.Menu[i].Lunch, live)
		s.Menu[i].Dinner = hydrateMeal(s.Menu[i].Dinner, live)
	}
	for i := range s.ExtraMeals {
		s.ExtraMeals[i].Meal = refresh(s.ExtraMeals[i].Meal, live)
	}
	s.Dessert = hydrateMeal(s.Dessert, live)
}

func hydrateMeal(m *Meal, live map[int64]recipe.Recipe) *Meal {
	if m == nil {
		return nil
	}
	out := refresh(*m, live)
	return &out
}

func refresh(m Meal, live map[int64]recipe.Recipe) Meal {
	switch {
	case m.Composite != nil:
		c := *m.Composite
		c.Items[0] = refreshRecipe(c.Items[0], live)
		c.Items[1] = refreshRecipe(c.Items[1], live)
		m.Composite = &c
	case m.Recipe != nil:
		r := refreshRecipe(*m.Recipe, live)
		m.Recipe = &r
	}
	return m
}

func refreshRecipe(r recipe.Recipe, live map[int64]recipe.Recipe) recipe.Recipe {
	if cur, ok := live[r.ID]; ok {
		return cur
	}
	return r
}

// RecipeIDs lists every recipe id referenced by the state.
func (s *State) RecipeIDs() []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	add := func(m *Meal) {
		if m == nil {
			return
		}
		for _, leaf := range m.Leaves() {
			if !seen[leaf.ID] {
				seen[leaf.ID] = true
				ids = append(ids, leaf.ID)
			}
		}
	}
	for i := range s.Menu {
		add(s.Menu[i].Lunch)
		add(s.Menu[i].Dinner)
	}
	for i := range s.ExtraMeals {
		add(&s.ExtraMeals[i].Meal)
	}
	add(s.Dessert)
	return ids
}
