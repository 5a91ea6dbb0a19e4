package shopping

import (
	"sort"
	"strings"

	"menu-planner/internal/pkg/common"
)

// NewExtra builds an unchecked manual item with a fresh id. The name is
// title-cased like computed items.
func NewExtra(name string, qty common.FlexString) Extra {
	return Extra{
		ID:   common.NewTimeID(),
		Name: TitleCase(name),
		Qty:  qty,
	}
}

// OverridesToExtras turns manual quantity corrections into unchecked extras,
// in key order. Used when the plan they refer to is replaced.
func OverridesToExtras(overrides Overrides) []Extra {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	extras := make([]Extra, 0, len(keys))
	for _, k := range keys {
		extras = append(extras, Extra{
			ID:   common.NewTimeID(),
			Name: strings.TrimPrefix(k, OverridePrefix),
			Qty:  overrides[k],
		})
	}
	return extras
}

// RemoveExtra drops the extra with id. ok is false when none matched.
func RemoveExtra(extras []Extra, id string) (out []Extra, ok bool) {
	out = make([]Extra, 0, len(extras))
	for _, e := range extras {
		if e.ID == id {
			ok = true
			continue
		}
		out = append(out, e)
	}
	return out, ok
}

// ToggleExtra flips the checked flag of the extra with id.
func ToggleExtra(extras []Extra, id string) bool {
	for i := range extras {
		if extras[i].ID == id {
			extras[i].Checked = !extras[i].Checked
			return true
		}
	}
	return false
}
