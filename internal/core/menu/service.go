package menu

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"menu-planner/internal/core/recipe"
	"menu-planner/internal/core/shopping"
	"menu-planner/internal/pkg/common"
)

// MinCatalogSize is the smallest catalog a week can be planned from.
const MinCatalogSize = 2

// Service owns the current plan. Every mutation loads the state, applies one
// change, recomputes the shopping list and saves. Nothing is saved when the
// change fails. Mutations are serialised so concurrent requests cannot lose
// each other's changes.
type Service struct {
	mu      sync.Mutex
	catalog recipe.Catalog
	store   StateStore
	planner *Planner
	metrics *Metrics
}

// NewService wires the reconciler. metrics may be nil.
func NewService(catalog recipe.Catalog, store StateStore, planner *Planner, metrics *Metrics) *Service {
	if planner == nil {
		planner = NewPlanner(nil)
	}
	return &Service{
		catalog: catalog,
		store:   store,
		planner: planner,
		metrics: metrics,
	}
}

// Generate replaces the current plan with a new week for people. Shopping
// extras survive, and every manual quantity override becomes an extra.
func (s *Service) Generate(ctx context.Context, people int) (state *State, err error) {
	defer func() { s.finish("generate", state, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if people < 1 {
		return nil, common.Invalid("people must be at least 1, got %d", people)
	}

	prior, err := s.store.Load(ctx)
	if err != nil {
		return nil, common.Internal(err)
	}

	recipes, err := s.catalog.ListRecipes(ctx)
	if err != nil {
		return nil, common.Internal(err)
	}
	if len(recipes) < MinCatalogSize {
		return nil, common.InsufficientCatalog(len(recipes))
	}

	plan, dessert := s.planner.GenerateWeek(recipe.BucketByCategory(recipes))

	extras := []shopping.Extra{}
	if prior != nil {
		extras = append(extras, prior.ShoppingExtras...)
		extras = append(extras, shopping.OverridesToExtras(prior.ShoppingOverrides)...)
	}

	state = &State{
		Menu:              plan,
		ExtraMeals:        []ExtraMeal{},
		Dessert:           dessert,
		People:            people,
		DessertPeople:     people,
		ShoppingOverrides: shopping.Overrides{},
		ShoppingExtras:    extras,
	}
	state.Recompute()

	if err := s.store.Save(ctx, state); err != nil {
		return nil, common.Internal(err)
	}
	return state, nil
}

// Current returns the hydrated plan, or nil when none exists.
func (s *Service) Current(ctx context.Context) (*State, error) {
	state, err := s.store.Load(ctx)
	if err != nil {
		return nil, common.Internal(err)
	}
	if state == nil {
		return nil, nil
	}
	if err := s.hydrate(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// ToggleItem flips the checked flag of a computed item.
func (s *Service) ToggleItem(ctx context.Context, name string) (*State, error) {
	return s.mutate(ctx, "toggle_item", func(st *State) error {
		item, ok := st.ShoppingList.Main[name]
		if !ok {
			return common.NotFound("shopping item %q", name)
		}
		item.Checked = !item.Checked
		st.ShoppingList.Main[name] = item
		return nil
	})
}

// ToggleExtra flips the checked flag of a manual item.
func (s *Service) ToggleExtra(ctx context.Context, id string) (*State, error) {
	return s.mutate(ctx, "toggle_extra", func(st *State) error {
		if !shopping.ToggleExtra(st.ShoppingExtras, id) {
			return common.NotFound("shopping extra %q", id)
		}
		return nil
	})
}

// SetOverride pins the displayed quantity of item. An empty qty removes the
// override.
func (s *Service) SetOverride(ctx context.Context, item string, qty common.FlexString) (*State, error) {
	return s.mutate(ctx, "set_override", func(st *State) error {
		if strings.TrimSpace(item) == "" {
			return common.Invalid("item name is required")
		}
		key := shopping.OverrideKey(item)
		if strings.TrimSpace(qty.String()) == "" {
			delete(st.ShoppingOverrides, key)
			return nil
		}
		st.ShoppingOverrides[key] = qty
		return nil
	})
}

// AddExtra appends a manual shopping item.
func (s *Service) AddExtra(ctx context.Context, name string, qty common.FlexString) (*State, error) {
	return s.mutate(ctx, "add_extra", func(st *State) error {
		if strings.TrimSpace(name) == "" {
			return common.Invalid("extra item name is required")
		}
		st.ShoppingExtras = append(st.ShoppingExtras, shopping.NewExtra(name, qty))
		return nil
	})
}

// RemoveExtra deletes a manual shopping item.
func (s *Service) RemoveExtra(ctx context.Context, id string) (*State, error) {
	return s.mutate(ctx, "remove_extra", func(st *State) error {
		out, ok := shopping.RemoveExtra(st.ShoppingExtras, id)
		if !ok {
			return common.NotFound("shopping extra %q", id)
		}
		st.ShoppingExtras = out
		return nil
	})
}

// ClearExtras deletes every manual shopping item.
func (s *Service) ClearExtras(ctx context.Context) (*State, error) {
	return s.mutate(ctx, "clear_extras", func(st *State) error {
		st.ShoppingExtras = []shopping.Extra{}
		return nil
	})
}

// SetServings changes how many people a slot or extra meal feeds. For the
// dessert target it sets dessertPeople.
func (s *Service) SetServings(ctx context.Context, target Target, servings int) (*State, error) {
	return s.mutate(ctx, "set_servings", func(st *State) error {
		if err := target.Validate(); err != nil {
			return err
		}
		if servings < 1 {
			return common.Invalid("servings must be at least 1, got %d", servings)
		}

		switch target.Kind {
		case TargetDessert:
			st.DessertPeople = servings
		case TargetExtra:
			i := st.extraIndex(target.ExtraID)
			if i < 0 {
				return common.NotFound("extra meal %q", target.ExtraID)
			}
			st.ExtraMeals[i].Meal = st.ExtraMeals[i].Meal.WithServings(&servings)
		case TargetSlot:
			m, err := slotMeal(st, target)
			if err != nil {
				return err
			}
			if m == nil {
				return common.NotFound("no meal planned for %s", target)
			}
			next := m.WithServings(&servings)
			st.Menu.Day(target.Day).Set(target.Slot, &next)
		}
		return nil
	})
}

// Regenerate draws a new meal for a slot, or a new dessert different from
// the current one when another exists.
func (s *Service) Regenerate(ctx context.Context, target Target) (*State, error) {
	return s.mutate(ctx, "regenerate", func(st *State) error {
		if err := target.Validate(); err != nil {
			return err
		}

		switch target.Kind {
		case TargetExtra:
			return common.Invalid("extra meals are chosen manually and cannot be regenerated")
		case TargetDessert:
			return s.regenerateDessert(ctx, st)
		}

		old, err := slotMeal(st, target)
		if err != nil {
			return err
		}
		pools := poolsBySlot[target.Slot]
		buckets, err := s.buckets(ctx, pools.complete, pools.simple, pools.accompaniment)
		if err != nil {
			return err
		}
		next := s.planner.PlanSlot(buckets, target.Slot)
		if next == nil {
			return common.NotFound("no recipes available for %s", target.Slot)
		}
		if old != nil {
			*next = next.WithServings(old.CustomServings)
		}
		st.Menu.Day(target.Day).Set(target.Slot, next)
		return nil
	})
}

func (s *Service) regenerateDessert(ctx context.Context, st *State) error {
	buckets, err := s.buckets(ctx, recipe.CategoryDolce)
	if err != nil {
		return err
	}
	exclude := map[int64]bool{}
	if st.Dessert != nil {
		exclude[st.Dessert.PrimaryID()] = true
	}
	next := s.planner.PickDessert(buckets, exclude)
	if next == nil {
		return common.NotFound("no desserts in the catalog")
	}
	st.Dessert = next
	if st.DessertPeople == 0 {
		st.DessertPeople = st.People
	}
	return nil
}

// Assign pins recipeID, optionally paired with pairedID, to target.
func (s *Service) Assign(ctx context.Context, target Target, recipeID, pairedID int64) (*State, error) {
	return s.mutate(ctx, "assign", func(st *State) error {
		if err := target.Validate(); err != nil {
			return err
		}
		meal, err := s.composeByID(ctx, recipeID, pairedID)
		if err != nil {
			return err
		}

		switch target.Kind {
		case TargetDessert:
			st.Dessert = &meal
			if st.DessertPeople == 0 {
				st.DessertPeople = st.People
			}
		case TargetExtra:
			i := st.extraIndex(target.ExtraID)
			if i < 0 {
				return common.NotFound("extra meal %q", target.ExtraID)
			}
			st.ExtraMeals[i].Meal = meal.WithServings(st.ExtraMeals[i].Meal.CustomServings)
		case TargetSlot:
			old, err := slotMeal(st, target)
			if err != nil {
				return err
			}
			if old != nil {
				meal = meal.WithServings(old.CustomServings)
			}
			st.Menu.Day(target.Day).Set(target.Slot, &meal)
		}
		return nil
	})
}

// AddExtraMeal appends a manual meal feeding the plan's people.
func (s *Service) AddExtraMeal(ctx context.Context, recipeID, pairedID int64) (*State, error) {
	return s.mutate(ctx, "add_extra_meal", func(st *State) error {
		meal, err := s.composeByID(ctx, recipeID, pairedID)
		if err != nil {
			return err
		}
		people := st.People
		st.ExtraMeals = append(st.ExtraMeals, ExtraMeal{
			UniqueID: common.NewTimeID(),
			Meal:     meal.WithServings(&people),
		})
		return nil
	})
}

// RemoveExtraMeal deletes a manual meal.
func (s *Service) RemoveExtraMeal(ctx context.Context, uniqueID string) (*State, error) {
	return s.mutate(ctx, "remove_extra_meal", func(st *State) error {
		i := st.extraIndex(uniqueID)
		if i < 0 {
			return common.NotFound("extra meal %q", uniqueID)
		}
		st.ExtraMeals = append(st.ExtraMeals[:i], st.ExtraMeals[i+1:]...)
		return nil
	})
}

func (s *Service) mutate(ctx context.Context, action string, apply func(*State) error) (state *State, err error) {
	defer func() { s.finish(action, state, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err = s.store.Load(ctx)
	if err != nil {
		return nil, common.Internal(err)
	}
	if state == nil {
		return nil, common.ErrNoActivePlan
	}
	if err := s.hydrate(ctx, state); err != nil {
		return nil, err
	}
	state.normalize()

	if err := apply(state); err != nil {
		return nil, err
	}
	state.Recompute()

	if err := s.store.Save(ctx, state); err != nil {
		return nil, common.Internal(err)
	}
	return state, nil
}

func (s *Service) finish(action string, state *State, err error) {
	s.metrics.observe(action, err)
	if err != nil {
		common.LogError("menu action failed", zap.String("action", action), zap.Error(err))
		return
	}
	s.metrics.observeState(state)
	common.LogInfo("menu action applied",
		zap.String("action", action),
		zap.Int("shopping_items", len(state.ShoppingList.Main)),
	)
}

func (s *Service) hydrate(ctx context.Context, state *State) error {
	ids := state.RecipeIDs()
	if len(ids) == 0 {
		return nil
	}
	live, err := s.catalog.GetRecipesByIDs(ctx, ids)
	if err != nil {
		return common.Internal(err)
	}
	state.Hydrate(recipe.Index(live))
	return nil
}

func (s *Service) buckets(ctx context.Context, categories ...recipe.Category) (recipe.Buckets, error) {
	b := make(recipe.Buckets, len(categories))
	for _, c := range categories {
		recipes, err := s.catalog.GetRecipesByType(ctx, c)
		if err != nil {
			return nil, common.Internal(err)
		}
		b[c] = recipes
	}
	return b, nil
}

// composeByID fetches the recipes and builds the meal. pairedID 0 means a
// single recipe.
func (s *Service) composeByID(ctx context.Context, recipeID, pairedID int64) (Meal, error) {
	if recipeID == 0 {
		return Meal{}, common.Invalid("recipeId is required")
	}
	ids := []int64{recipeID}
	if pairedID != 0 {
		ids = append(ids, pairedID)
	}

	found, err := s.catalog.GetRecipesByIDs(ctx, ids)
	if err != nil {
		return Meal{}, common.Internal(err)
	}
	byID := recipe.Index(found)

	primary, ok := byID[recipeID]
	if !ok {
		return Meal{}, common.NotFound("recipe %d", recipeID)
	}
	if pairedID == 0 {
		return Compose(primary, nil), nil
	}
	paired, ok := byID[pairedID]
	if !ok {
		return Meal{}, common.NotFound("recipe %d", pairedID)
	}
	return Compose(primary, &paired), nil
}

func slotMeal(st *State, target Target) (*Meal, error) {
	day := st.Menu.Day(target.Day)
	if day == nil {
		return nil, common.NotFound("day %d is not in the plan", target.Day)
	}
	return day.Get(target.Slot), nil
}
