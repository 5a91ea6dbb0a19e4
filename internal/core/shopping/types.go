package shopping

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"menu-planner/internal/core/recipe"
	"menu-planner/internal/pkg/common"
)

// OverridePrefix namespaces override keys. Only the unified main list exists.
const OverridePrefix = "main_"

// OverrideKey returns the override key for a title-cased item name.
func OverrideKey(title string) string {
	return OverridePrefix + title
}

// Qty is a displayed quantity: a number or free text ("q.b.", an override).
type Qty struct {
	number float64
	text   string
	isText bool
}

// NumberQty returns a numeric display quantity.
func NumberQty(v float64) Qty {
	return Qty{number: v}
}

// TextQty returns a textual display quantity.
func TextQty(s string) Qty {
	return Qty{text: s, isText: true}
}

// ToTasteQty is the display for non-quantified items.
func ToTasteQty() Qty {
	return TextQty(recipe.ToTasteLabel)
}

// IsText reports whether q is textual.
func (q Qty) IsText() bool {
	return q.isText
}

// Number returns the numeric value of q. Text yields its leading number, or
// zero when there is none.
func (q Qty) Number() float64 {
	if !q.isText {
		return q.number
	}
	v, _ := recipe.LeadingNumber(q.text)
	return v
}

func (q Qty) String() string {
	if q.isText {
		return q.text
	}
	return strconv.FormatFloat(q.number, 'f', -1, 64)
}

// MarshalJSON implements json.Marshaler.
func (q Qty) MarshalJSON() ([]byte, error) {
	if q.isText {
		return json.Marshal(q.text)
	}
	if math.IsNaN(q.number) || math.IsInf(q.number, 0) {
		return []byte("0"), nil
	}
	return []byte(strconv.FormatFloat(q.number, 'f', -1, 64)), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (q *Qty) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*q = NumberQty(0)
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*q = TextQty(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return err
	}
	*q = NumberQty(f)
	return nil
}

// Usage records one contribution to an item.
type Usage struct {
	Context string `json:"context"`
	Recipe  string `json:"recipe"`
	Qty     Qty    `json:"qty"`
}

// Item is one aggregated line of the main list.
type Item struct {
	Qty        Qty     `json:"qty"`
	Checked    bool    `json:"checked"`
	IsModified bool    `json:"isModified"`
	Usages     []Usage `json:"usages"`
}

// List is the computed shopping list, keyed by title-cased name.
type List struct {
	Main map[string]Item `json:"main"`
}

// NewList returns an empty list.
func NewList() List {
	return List{Main: map[string]Item{}}
}

// Overrides maps OverrideKey(name) to a manually entered quantity.
type Overrides map[string]common.FlexString

// Extra is a manually added shopping item.
type Extra struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Qty     common.FlexString `json:"qty"`
	Checked bool              `json:"checked"`
}

// Source is one meal contribution: the leaf recipes eaten by Servings people
// under a context label.
type Source struct {
	Context  string
	Servings int
	Recipes  []recipe.Recipe
}
