package menu

import (
	"bytes"
	"encoding/json"
	"fmt"

	"menu-planner/internal/core/recipe"
)

// Composite pairs a base dish with its accompaniment. Both leaves keep their
// full recipe payload.
type Composite struct {
	Name       string
	Items      [2]recipe.Recipe
	Difficulty int
}

// Meal is a plan entry: exactly one of Recipe or Composite is set.
type Meal struct {
	Recipe         *recipe.Recipe
	Composite      *Composite
	CustomServings *int
}

// SingleMeal wraps one recipe.
func SingleMeal(r recipe.Recipe) Meal {
	return Meal{Recipe: &r}
}

// IsComposite reports whether m pairs two recipes.
func (m Meal) IsComposite() bool {
	return m.Composite != nil
}

// Name is the display name.
func (m Meal) Name() string {
	if m.Composite != nil {
		return m.Composite.Name
	}
	if m.Recipe != nil {
		return m.Recipe.Name
	}
	return ""
}

// Difficulty of the meal; for composites the harder leaf wins.
func (m Meal) Difficulty() int {
	if m.Composite != nil {
		return m.Composite.Difficulty
	}
	if m.Recipe != nil {
		return m.Recipe.Difficulty
	}
	return 0
}

// Leaves returns the recipes eaten in this meal.
func (m Meal) Leaves() []recipe.Recipe {
	switch {
	case m.Composite != nil:
		return []recipe.Recipe{m.Composite.Items[0], m.Composite.Items[1]}
	case m.Recipe != nil:
		return []recipe.Recipe{*m.Recipe}
	default:
		return nil
	}
}

// PrimaryID is the id used to avoid repeats: the base dish for composites.
func (m Meal) PrimaryID() int64 {
	if m.Composite != nil {
		return m.Composite.Items[0].ID
	}
	if m.Recipe != nil {
		return m.Recipe.ID
	}
	return 0
}

// ServingsOr returns CustomServings when set, else fallback.
func (m Meal) ServingsOr(fallback int) int {
	if m.CustomServings != nil {
		return *m.CustomServings
	}
	return fallback
}

// WithServings returns m with CustomServings set to a copy of n (nil clears).
func (m Meal) WithServings(n *int) Meal {
	if n != nil {
		v := *n
		n = &v
	}
	m.CustomServings = n
	return m
}

type singleWire struct {
	recipe.Recipe
	CustomServings *int `json:"customServings,omitempty"`
}

type compositeWire struct {
	IsComposite    bool            `json:"isComposite"`
	Name           string          `json:"name"`
	Items          []recipe.Recipe `json:"items"`
	Difficulty     int             `json:"difficulty"`
	CustomServings *int            `json:"customServings,omitempty"`
}

// MarshalJSON writes a single meal as flat recipe fields and a composite as
// {isComposite, name, items, difficulty}.
func (m Meal) MarshalJSON() ([]byte, error) {
	switch {
	case m.Composite != nil:
		return json.Marshal(compositeWire{
			IsComposite:    true,
			Name:           m.Composite.Name,
			Items:          m.Composite.Items[:],
			Difficulty:     m.Composite.Difficulty,
			CustomServings: m.CustomServings,
		})
	case m.Recipe != nil:
		return json.Marshal(singleWire{Recipe: *m.Recipe, CustomServings: m.CustomServings})
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON dispatches on isComposite / items.
func (m *Meal) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = Meal{}
		return nil
	}

	var probe struct {
		IsComposite bool            `json:"isComposite"`
		Items       json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	if probe.IsComposite || len(probe.Items) > 0 && !bytes.Equal(probe.Items, []byte("null")) {
		var w compositeWire
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		if len(w.Items) != 2 {
			return fmt.Errorf("composite meal needs 2 items, got %d", len(w.Items))
		}
		*m = Meal{
			Composite:      &Composite{Name: w.Name, Items: [2]recipe.Recipe{w.Items[0], w.Items[1]}, Difficulty: w.Difficulty},
			CustomServings: w.CustomServings,
		}
		return nil
	}

	var w singleWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r := w.Recipe
	*m = Meal{Recipe: &r, CustomServings: w.CustomServings}
	return nil
}

// ExtraMeal is a user-managed meal outside the weekly grid.
type ExtraMeal struct {
	UniqueID string
	Meal     Meal
}

// MarshalJSON adds uniqueId to the meal's own encoding.
func (e ExtraMeal) MarshalJSON() ([]byte, error) {
	body, err := json.Marshal(e.Meal)
	if err != nil {
		return nil, err
	}
	id, err := json.Marshal(e.UniqueID)
	if err != nil {
		return nil, err
	}
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("extra meal %s has no content", e.UniqueID)
	}

	var buf bytes.Buffer
	buf.WriteString(`{"uniqueId":`)
	buf.Write(id)
	if len(body) > 2 {
		buf.WriteByte(',')
	}
	buf.Write(body[1:])
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *ExtraMeal) UnmarshalJSON(data []byte) error {
	var probe struct {
		UniqueID json.RawMessage `json:"uniqueId"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if err := json.Unmarshal(data, &e.Meal); err != nil {
		return err
	}
	e.UniqueID = rawID(probe.UniqueID)
	return nil
}

// rawID accepts string and numeric ids.
func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// Slot is a daily meal slot.
type Slot string

const (
	SlotLunch  Slot = "lunch"
	SlotDinner Slot = "dinner"
)

// ParseSlot validates a slot name.
func ParseSlot(s string) (Slot, error) {
	switch Slot(s) {
	case SlotLunch, SlotDinner:
		return Slot(s), nil
	}
	return "", fmt.Errorf("unknown slot %q", s)
}

// Label is the capitalised slot name used in shopping contexts.
func (s Slot) Label() string {
	if s == SlotLunch {
		return "Lunch"
	}
	return "Dinner"
}

// DaysPerWeek is the plan length.
const DaysPerWeek = 7

// DayEntry holds one day of the plan; a nil slot means nothing could be
// planned.
type DayEntry struct {
	Day    int   `json:"day"`
	Lunch  *Meal `json:"lunch"`
	Dinner *Meal `json:"dinner"`
}

// Get returns the meal in slot.
func (d *DayEntry) Get(slot Slot) *Meal {
	if slot == SlotLunch {
		return d.Lunch
	}
	return d.Dinner
}

// Set replaces the meal in slot.
func (d *DayEntry) Set(slot Slot, m *Meal) {
	if slot == SlotLunch {
		d.Lunch = m
		return
	}
	d.Dinner = m
}

// WeeklyPlan is the ordered sequence of days 1..7.
type WeeklyPlan []DayEntry

// Day returns the entry for day (1-based), or nil.
func (p WeeklyPlan) Day(day int) *DayEntry {
	for i := range p {
		if p[i].Day == day {
			return &p[i]
		}
	}
	return nil
}
