package menu

import "menu-planner/internal/core/recipe"

// Compose builds a meal from primary and an optional secondary. The base
// dish always comes first: a sauce or side given as primary is swapped
// behind its partner.
func Compose(primary recipe.Recipe, secondary *recipe.Recipe) Meal {
	if secondary == nil {
		return SingleMeal(primary)
	}

	base, side := primary, *secondary
	if base.Type.IsAccompaniment() {
		base, side = side, base
	}

	sep := " + "
	if base.Type.IsFirstCourse() && side.Type == recipe.CategorySugo {
		sep = " al "
	}

	return Meal{Composite: &Composite{
		Name:       base.Name + sep + side.Name,
		Items:      [2]recipe.Recipe{base, side},
		Difficulty: max(primary.Difficulty, secondary.Difficulty),
	}}
}
