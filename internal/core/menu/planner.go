package menu

import (
	"sync"

	"menu-planner/internal/core/recipe"
)

const (
	completeLunchThreshold  = 0.6
	completeDinnerThreshold = 0.5
)

// slotPools names the categories one slot draws from.
type slotPools struct {
	complete      recipe.Category
	simple        recipe.Category
	accompaniment recipe.Category
	threshold     float64
}

var poolsBySlot = map[Slot]slotPools{
	SlotLunch: {
		complete:      recipe.CategoryPrimoCompleto,
		simple:        recipe.CategoryPrimo,
		accompaniment: recipe.CategorySugo,
		threshold:     completeLunchThreshold,
	},
	SlotDinner: {
		complete:      recipe.CategorySecondoCompleto,
		simple:        recipe.CategorySecondo,
		accompaniment: recipe.CategoryContorno,
		threshold:     completeDinnerThreshold,
	},
}

// Planner fills plan slots from a bucketed catalog. Safe for concurrent use.
type Planner struct {
	mu  sync.Mutex
	rng Random
}

// NewPlanner returns a planner drawing from rng; nil uses a clock-seeded
// source.
func NewPlanner(rng Random) *Planner {
	if rng == nil {
		rng = NewRandom(0)
	}
	return &Planner{rng: rng}
}

// GenerateWeek plans lunch and dinner for 7 days, avoiding repeats across the
// week while the pools allow it, and picks a dessert independently.
func (p *Planner) GenerateWeek(b recipe.Buckets) (WeeklyPlan, *Meal) {
	p.mu.Lock()
	defer p.mu.Unlock()

	used := make(map[int64]bool)
	plan := make(WeeklyPlan, 0, DaysPerWeek)
	for day := 1; day <= DaysPerWeek; day++ {
		plan = append(plan, DayEntry{
			Day:    day,
			Lunch:  p.planSlot(b, SlotLunch, used),
			Dinner: p.planSlot(b, SlotDinner, used),
		})
	}
	return plan, p.pickDessert(b, make(map[int64]bool))
}

// PlanSlot runs the slot algorithm once with a fresh exclude set.
func (p *Planner) PlanSlot(b recipe.Buckets, slot Slot) *Meal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.planSlot(b, slot, make(map[int64]bool))
}

// PickDessert draws a dessert, avoiding the ids in exclude when possible.
func (p *Planner) PickDessert(b recipe.Buckets, exclude map[int64]bool) *Meal {
	p.mu.Lock()
	defer p.mu.Unlock()
	if exclude == nil {
		exclude = make(map[int64]bool)
	}
	return p.pickDessert(b, exclude)
}

func (p *Planner) pickDessert(b recipe.Buckets, exclude map[int64]bool) *Meal {
	r := Select(p.rng, b[recipe.CategoryDolce], exclude)
	if r == nil {
		return nil
	}
	m := SingleMeal(*r)
	return &m
}

// planSlot picks a complete dish with probability 1-threshold when one
// exists, or always when there is no simple dish; otherwise a simple dish
// composed with an accompaniment if one is available.
func (p *Planner) planSlot(b recipe.Buckets, slot Slot, used map[int64]bool) *Meal {
	pools := poolsBySlot[slot]
	complete, simple := b[pools.complete], b[pools.simple]

	if (p.rng.Float64() > pools.threshold && len(complete) > 0) || len(simple) == 0 {
		r := Select(p.rng, complete, used)
		if r == nil {
			return nil
		}
		m := SingleMeal(*r)
		return &m
	}

	base := Select(p.rng, simple, used)
	if base == nil {
		return nil
	}
	side := Select(p.rng, b[pools.accompaniment], used)
	m := Compose(*base, side)
	return &m
}
