package menu

import (
	"fmt"
	"strings"

	"menu-planner/internal/pkg/common"
)

// TargetKind selects which part of the plan a mutation addresses.
type TargetKind string

const (
	TargetSlot    TargetKind = "slot"
	TargetExtra   TargetKind = "extra"
	TargetDessert TargetKind = "dessert"
)

// Target addresses a calendar slot, an extra meal, or the dessert.
type Target struct {
	Kind    TargetKind `json:"kind"`
	Day     int        `json:"day,omitempty"`
	Slot    Slot       `json:"slot,omitempty"`
	ExtraID string     `json:"uniqueId,omitempty"`
}

func SlotTarget(day int, slot Slot) Target {
	return Target{Kind: TargetSlot, Day: day, Slot: slot}
}

func ExtraTarget(uniqueID string) Target {
	return Target{Kind: TargetExtra, ExtraID: uniqueID}
}

func DessertTarget() Target {
	return Target{Kind: TargetDessert}
}

// Validate checks that the fields required by Kind are present.
func (t Target) Validate() error {
	switch t.Kind {
	case TargetSlot:
		if t.Day < 1 || t.Day > DaysPerWeek {
			return common.Invalid("day must be between 1 and %d, got %d", DaysPerWeek, t.Day)
		}
		if _, err := ParseSlot(string(t.Slot)); err != nil {
			return common.Invalid("%v", err)
		}
	case TargetExtra:
		if strings.TrimSpace(t.ExtraID) == "" {
			return common.Invalid("extra meal target needs a uniqueId")
		}
	case TargetDessert:
	default:
		return common.Invalid("unknown target kind %q", t.Kind)
	}
	return nil
}

func (t Target) String() string {
	switch t.Kind {
	case TargetSlot:
		return fmt.Sprintf("day %d %s", t.Day, t.Slot)
	case TargetExtra:
		return "extra " + t.ExtraID
	default:
		return string(t.Kind)
	}
}
