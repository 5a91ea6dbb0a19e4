package shopping

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"menu-planner/internal/core/recipe"
)

var titleCaser = cases.Title(language.Italian)

// TitleCase capitalises every word and lower-cases the rest.
func TitleCase(s string) string {
	return titleCaser.String(strings.TrimSpace(s))
}

// MergeKey is the normalised ingredient identity.
func MergeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type accumulator struct {
	display string
	total   float64
	toTaste bool
	usages  []Usage
}

// Aggregate merges every source's ingredients into the main list. prior is
// the main list being replaced and only drives checked-state carry-over.
// The result depends only on its inputs.
func Aggregate(sources []Source, overrides Overrides, prior map[string]Item) List {
	acc := make(map[string]*accumulator)

	for _, src := range sources {
		for _, leaf := range src.Recipes {
			ratio := servingRatio(src.Servings, leaf.Servings)
			for _, ing := range leaf.Ingredients {
				key := MergeKey(ing.Name)
				if key == "" {
					continue
				}
				a, ok := acc[key]
				if !ok {
					a = &accumulator{display: TitleCase(ing.Name)}
					acc[key] = a
				}

				usage := Usage{Context: src.Context, Recipe: leaf.Name}
				if ing.Quantity.IsToTaste() {
					a.toTaste = true
					usage.Qty = ToTasteQty()
				} else {
					v := ing.Quantity.Amount() * ratio
					a.total += v
					usage.Qty = NumberQty(v)
				}
				a.usages = append(a.usages, usage)
			}
		}
	}

	keys := make([]string, 0, len(acc))
	for k := range acc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	list := NewList()
	for _, k := range keys {
		a := acc[k]
		required := ceilQty(a.total)
		override, hasOverride := overrides[OverrideKey(a.display)]

		item := Item{IsModified: hasOverride, Usages: a.usages}
		switch {
		case hasOverride:
			item.Qty = TextQty(override.String())
		case a.toTaste:
			item.Qty = ToTasteQty()
		default:
			item.Qty = NumberQty(required)
		}

		if old, ok := prior[a.display]; ok && old.Checked {
			item.Checked = hasOverride || a.toTaste || required <= old.Qty.Number()
		}

		list.Main[a.display] = item
	}
	return list
}

func servingRatio(people, base int) float64 {
	if base <= 0 {
		base = recipe.DefaultServings
	}
	return float64(people) / float64(base)
}

// ceilQty rounds up after trimming float noise, so 400.00000000000006
// counts as 400.
func ceilQty(v float64) float64 {
	return math.Ceil(math.Round(v*1e6) / 1e6)
}
