package shopping

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-planner/internal/core/recipe"
)

func leaf(name string, servings int, ings ...recipe.Ingredient) recipe.Recipe {
	return recipe.Recipe{Name: name, Type: recipe.CategoryPrimo, Servings: servings, Ingredients: ings}
}

func ing(name, qty string) recipe.Ingredient {
	return recipe.Ingredient{Name: name, Quantity: recipe.ParseQuantity(qty)}
}

func TestAggregateRatioScaling(t *testing.T) {
	sources := []Source{{Context: "Day 1 (Lunch)", Servings: 4, Recipes: []recipe.Recipe{leaf("Pasta al forno", 2, ing("Farina", "100"))}}}

	list := Aggregate(sources, nil, nil)

	item, ok := list.Main["Farina"]
	require.True(t, ok)
	assert.Equal(t, 200.0, item.Qty.Number())
	require.Len(t, item.Usages, 1)
	assert.Equal(t, "Day 1 (Lunch)", item.Usages[0].Context)
	assert.Equal(t, "Pasta al forno", item.Usages[0].Recipe)
	assert.Equal(t, 200.0, item.Usages[0].Qty.Number())
}

func TestAggregateCompositeUsesLeafServings(t *testing.T) {
	sources := []Source{{
		Context:  "Day 2 (Dinner)",
		Servings: 4,
		Recipes: []recipe.Recipe{
			leaf("Pollo", 2, ing("pollo", "300")),
			leaf("Patate", 4, ing("patate", "500")),
		},
	}}

	list := Aggregate(sources, nil, nil)
	assert.Equal(t, 600.0, list.Main["Pollo"].Qty.Number())
	assert.Equal(t, 500.0, list.Main["Patate"].Qty.Number())
}

func TestAggregateToTasteIsSticky(t *testing.T) {
	numericFirst := []Source{
		{Context: "A", Servings: 2, Recipes: []recipe.Recipe{leaf("R1", 2, ing("Sale", "100"))}},
		{Context: "B", Servings: 2, Recipes: []recipe.Recipe{leaf("R2", 2, ing("sale", "q.b."))}},
	}
	toTasteFirst := []Source{numericFirst[1], numericFirst[0]}

	for name, sources := range map[string][]Source{"numeric first": numericFirst, "to taste first": toTasteFirst} {
		t.Run(name, func(t *testing.T) {
			item := Aggregate(sources, nil, nil).Main["Sale"]
			assert.True(t, item.Qty.IsText())
			assert.Equal(t, recipe.ToTasteLabel, item.Qty.String())
			assert.Len(t, item.Usages, 2)
		})
	}
}

func TestAggregateMergesByNormalizedName(t *testing.T) {
	sources := []Source{
		{Context: "A", Servings: 2, Recipes: []recipe.Recipe{leaf("R1", 2, ing(" pomodoro", "100"))}},
		{Context: "B", Servings: 2, Recipes: []recipe.Recipe{leaf("R2", 2, ing("POMODORO ", "50.5"))}},
	}

	list := Aggregate(sources, nil, nil)
	require.Len(t, list.Main, 1)
	item := list.Main["Pomodoro"]
	assert.Equal(t, 151.0, item.Qty.Number())
}

func TestAggregateOverridePrecedence(t *testing.T) {
	sources := []Source{{Context: "A", Servings: 2, Recipes: []recipe.Recipe{leaf("Pane", 2, ing("Farina", "12"))}}}
	overrides := Overrides{OverrideKey("Farina"): "5"}

	item := Aggregate(sources, overrides, nil).Main["Farina"]
	assert.Equal(t, "5", item.Qty.String())
	assert.True(t, item.Qty.IsText())
	assert.True(t, item.IsModified)
}

func TestAggregateSafetyUncheck(t *testing.T) {
	prior := map[string]Item{"Farina": {Qty: NumberQty(10), Checked: true}}

	cases := map[string]bool{"10": true, "11": false, "9": true}
	for qty, wantChecked := range cases {
		t.Run(qty, func(t *testing.T) {
			sources := []Source{{Context: "A", Servings: 2, Recipes: []recipe.Recipe{leaf("Pane", 2, ing("Farina", qty))}}}
			item := Aggregate(sources, nil, prior).Main["Farina"]
			assert.Equal(t, wantChecked, item.Checked)
		})
	}

	t.Run("override keeps check", func(t *testing.T) {
		sources := []Source{{Context: "A", Servings: 2, Recipes: []recipe.Recipe{leaf("Pane", 2, ing("Farina", "50"))}}}
		item := Aggregate(sources, Overrides{"main_Farina": "1 kg"}, prior).Main["Farina"]
		assert.True(t, item.Checked)
	})

	t.Run("unchecked stays unchecked", func(t *testing.T) {
		sources := []Source{{Context: "A", Servings: 2, Recipes: []recipe.Recipe{leaf("Pane", 2, ing("Farina", "1"))}}}
		item := Aggregate(sources, nil, map[string]Item{"Farina": {Qty: NumberQty(10)}}).Main["Farina"]
		assert.False(t, item.Checked)
	})
}

func TestAggregateIdempotent(t *testing.T) {
	sources := []Source{
		{Context: "Day 1 (Lunch)", Servings: 3, Recipes: []recipe.Recipe{leaf("Risotto", 2, ing("Riso", "160"), ing("Sale", "q.b."))}},
		{Context: "Dessert", Servings: 3, Recipes: []recipe.Recipe{leaf("Tiramisù", 4, ing("Mascarpone", "250"))}},
	}
	overrides := Overrides{OverrideKey("Riso"): "300"}

	first := Aggregate(sources, overrides, nil)
	for k, item := range first.Main {
		item.Checked = true
		first.Main[k] = item
	}
	second := Aggregate(sources, overrides, first.Main)
	third := Aggregate(sources, overrides, second.Main)

	a, err := json.Marshal(second)
	require.NoError(t, err)
	b, err := json.Marshal(third)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))

	for name, item := range second.Main {
		assert.True(t, item.Checked, name)
	}
}

func TestAggregateRoundsFloatNoise(t *testing.T) {
	sources := []Source{{Context: "A", Servings: 4, Recipes: []recipe.Recipe{leaf("R", 3, ing("Carne", "300"))}}}
	assert.Equal(t, 400.0, Aggregate(sources, nil, nil).Main["Carne"].Qty.Number())
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Olio Di Oliva", TitleCase("  olio DI oliva "))
	assert.Equal(t, "Farina", TitleCase("farina"))
}

func TestQtyJSON(t *testing.T) {
	out, err := json.Marshal([]Qty{NumberQty(12), TextQty("q.b.")})
	require.NoError(t, err)
	assert.Equal(t, `[12,"q.b."]`, string(out))

	var back []Qty
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, 12.0, back[0].Number())
	assert.True(t, back[1].IsText())
}
