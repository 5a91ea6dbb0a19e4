package menu

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"menu-planner/internal/core/recipe"
	"menu-planner/internal/core/shopping"
	"menu-planner/internal/pkg/common"
)

type fakeCatalog struct {
	recipes []recipe.Recipe
	err     error
}

func (f *fakeCatalog) ListRecipes(ctx context.Context) ([]recipe.Recipe, error) {
	return f.recipes, f.err
}

func (f *fakeCatalog) GetRecipesByIDs(ctx context.Context, ids []int64) ([]recipe.Recipe, error) {
	if f.err != nil {
		return nil, f.err
	}
	want := map[int64]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []recipe.Recipe
	for _, r := range f.recipes {
		if want[r.ID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetRecipesByType(ctx context.Context, c recipe.Category) ([]recipe.Recipe, error) {
	if f.err != nil {
		return nil, f.err
	}
	return recipe.BucketByCategory(f.recipes)[c], nil
}

func (f *fakeCatalog) update(r recipe.Recipe) {
	for i := range f.recipes {
		if f.recipes[i].ID == r.ID {
			f.recipes[i] = r
		}
	}
}

// jsonStore keeps the state serialised, like the real stores.
type jsonStore struct {
	data    []byte
	saves   int
	saveErr error
}

func (s *jsonStore) Load(ctx context.Context) (*State, error) {
	if s.data == nil {
		return nil, nil
	}
	var st State
	if err := json.Unmarshal(s.data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *jsonStore) Save(ctx context.Context, st *State) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	s.data = data
	s.saves++
	return nil
}

func withIngredients(r recipe.Recipe, ings ...recipe.Ingredient) recipe.Recipe {
	r.Ingredients = ings
	return r
}

func qty(name, raw string) recipe.Ingredient {
	return recipe.Ingredient{Name: name, Quantity: recipe.ParseQuantity(raw)}
}

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	catalog *fakeCatalog
	store   *jsonStore
	svc     *Service
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.catalog = &fakeCatalog{recipes: []recipe.Recipe{
		withIngredients(named(1, "Pasta", recipe.CategoryPrimo, 1), qty("Pasta", "200")),
		withIngredients(named(2, "Pollo", recipe.CategorySecondo, 1), qty("Pollo", "300")),
	}}
	s.store = &jsonStore{}
	s.svc = NewService(s.catalog, s.store, NewPlanner(NewRandom(99)), NewMetrics(nil))
}

func (s *ServiceSuite) addRecipes(rs ...recipe.Recipe) {
	s.catalog.recipes = append(s.catalog.recipes, rs...)
}

func (s *ServiceSuite) TestGenerateEndToEnd() {
	st, err := s.svc.Generate(s.ctx, 4)
	s.Require().NoError(err)

	s.Require().Len(st.Menu, DaysPerWeek)
	for _, d := range st.Menu {
		s.Require().NotNil(d.Lunch)
		s.Require().NotNil(d.Dinner)
		s.Equal(int64(1), d.Lunch.PrimaryID())
		s.Equal(int64(2), d.Dinner.PrimaryID())
	}
	s.Nil(st.Dessert)
	s.Equal(4, st.DessertPeople)

	pasta := st.ShoppingList.Main["Pasta"]
	pollo := st.ShoppingList.Main["Pollo"]
	s.Equal(2800.0, pasta.Qty.Number())
	s.Equal(4200.0, pollo.Qty.Number())
	s.Len(pasta.Usages, 7)
	s.Equal(400.0, pasta.Usages[0].Qty.Number())
	s.Equal("Day 1 (Lunch)", pasta.Usages[0].Context)
	s.Equal(600.0, pollo.Usages[0].Qty.Number())
	s.False(pasta.Checked)
	s.False(pasta.IsModified)
	s.False(pollo.Checked)
	s.Equal(1, s.store.saves)
}

func (s *ServiceSuite) TestGenerateInsufficientCatalog() {
	s.catalog.recipes = s.catalog.recipes[:1]

	_, err := s.svc.Generate(s.ctx, 2)
	s.True(errors.Is(err, common.ErrInsufficientCatalog))
	s.Equal(0, s.store.saves)
}

func (s *ServiceSuite) TestGenerateRejectsBadPeople() {
	_, err := s.svc.Generate(s.ctx, 0)
	s.True(errors.Is(err, common.ErrInvalidRequest))
}

func (s *ServiceSuite) TestRegenerationCarriesExtrasAndConvertsOverrides() {
	_, err := s.svc.Generate(s.ctx, 2)
	s.Require().NoError(err)
	_, err = s.svc.AddExtra(s.ctx, "carta forno", "1")
	s.Require().NoError(err)
	_, err = s.svc.SetOverride(s.ctx, "Pasta", "1 kg")
	s.Require().NoError(err)

	st, err := s.svc.Generate(s.ctx, 2)
	s.Require().NoError(err)

	s.Empty(st.ShoppingOverrides)
	s.Require().Len(st.ShoppingExtras, 2)
	s.Equal("Carta Forno", st.ShoppingExtras[0].Name)
	s.Equal("Pasta", st.ShoppingExtras[1].Name)
	s.Equal("1 kg", st.ShoppingExtras[1].Qty.String())
	s.False(st.ShoppingExtras[1].Checked)
	s.False(st.ShoppingList.Main["Pasta"].IsModified)
}

func (s *ServiceSuite) TestMutationWithoutPlan() {
	_, err := s.svc.ToggleItem(s.ctx, "Pasta")
	s.True(errors.Is(err, common.ErrNoActivePlan))

	st, err := s.svc.Current(s.ctx)
	s.NoError(err)
	s.Nil(st)
}

func (s *ServiceSuite) TestToggleAndSafetyUncheck() {
	_, err := s.svc.Generate(s.ctx, 2)
	s.Require().NoError(err)

	st, err := s.svc.ToggleItem(s.ctx, "Pasta")
	s.Require().NoError(err)
	s.True(st.ShoppingList.Main["Pasta"].Checked)

	// fewer people on day 1: requirement drops, check survives
	st, err = s.svc.SetServings(s.ctx, SlotTarget(1, SlotLunch), 1)
	s.Require().NoError(err)
	s.True(st.ShoppingList.Main["Pasta"].Checked)
	s.Equal(1300.0, st.ShoppingList.Main["Pasta"].Qty.Number())

	// more people: requirement grows past what was checked off
	st, err = s.svc.SetServings(s.ctx, SlotTarget(1, SlotLunch), 6)
	s.Require().NoError(err)
	s.False(st.ShoppingList.Main["Pasta"].Checked)
	s.Equal(1800.0, st.ShoppingList.Main["Pasta"].Qty.Number())

	_, err = s.svc.ToggleItem(s.ctx, "Nutella")
	s.True(errors.Is(err, common.ErrNotFound))
}

func (s *ServiceSuite) TestOverrideSetAndClear() {
	_, err := s.svc.Generate(s.ctx, 2)
	s.Require().NoError(err)

	st, err := s.svc.SetOverride(s.ctx, "Pollo", "5")
	s.Require().NoError(err)
	s.Equal("5", st.ShoppingList.Main["Pollo"].Qty.String())
	s.True(st.ShoppingList.Main["Pollo"].IsModified)

	st, err = s.svc.SetOverride(s.ctx, "Pollo", "")
	s.Require().NoError(err)
	s.NotContains(st.ShoppingOverrides, shopping.OverrideKey("Pollo"))
	s.Equal(2100.0, st.ShoppingList.Main["Pollo"].Qty.Number())
}

func (s *ServiceSuite) TestShoppingExtrasLifecycle() {
	_, err := s.svc.Generate(s.ctx, 2)
	s.Require().NoError(err)

	st, err := s.svc.AddExtra(s.ctx, "detersivo", "2")
	s.Require().NoError(err)
	s.Require().Len(st.ShoppingExtras, 1)
	id := st.ShoppingExtras[0].ID

	st, err = s.svc.ToggleExtra(s.ctx, id)
	s.Require().NoError(err)
	s.True(st.ShoppingExtras[0].Checked)

	st, err = s.svc.RemoveExtra(s.ctx, id)
	s.Require().NoError(err)
	s.Empty(st.ShoppingExtras)

	_, err = s.svc.RemoveExtra(s.ctx, id)
	s.True(errors.Is(err, common.ErrNotFound))

	_, err = s.svc.AddExtra(s.ctx, " ", "1")
	s.True(errors.Is(err, common.ErrInvalidRequest))

	_, err = s.svc.AddExtra(s.ctx, "sale grosso", "1")
	s.Require().NoError(err)
	st, err = s.svc.ClearExtras(s.ctx)
	s.Require().NoError(err)
	s.Empty(st.ShoppingExtras)
}

func (s *ServiceSuite) TestRegenerateSlotKeepsServings() {
	s.addRecipes(withIngredients(named(3, "Riso", recipe.CategoryPrimo, 1), qty("Riso", "160")))
	_, err := s.svc.Generate(s.ctx, 2)
	s.Require().NoError(err)
	_, err = s.svc.SetServings(s.ctx, SlotTarget(2, SlotLunch), 5)
	s.Require().NoError(err)

	st, err := s.svc.Regenerate(s.ctx, SlotTarget(2, SlotLunch))
	s.Require().NoError(err)
	lunch := st.Menu.Day(2).Lunch
	s.Require().NotNil(lunch)
	s.Equal(5, lunch.ServingsOr(0))
	s.Contains([]int64{1, 3}, lunch.PrimaryID())
}

func (s *ServiceSuite) TestRegenerateReportsEmptyPools() {
	_, err := s.svc.Generate(s.ctx, 2)
	s.Require().NoError(err)

	_, err = s.svc.Regenerate(s.ctx, DessertTarget())
	s.True(errors.Is(err, common.ErrNotFound))

	_, err = s.svc.Regenerate(s.ctx, ExtraTarget("x"))
	s.True(errors.Is(err, common.ErrInvalidRequest))

	saves := s.store.saves
	s.catalog.recipes = s.catalog.recipes[:1]
	_, err = s.svc.Regenerate(s.ctx, SlotTarget(1, SlotDinner))
	s.True(errors.Is(err, common.ErrNotFound))
	s.Equal(saves, s.store.saves)
}

func (s *ServiceSuite) TestRegenerateDessert() {
	s.addRecipes(
		withIngredients(named(8, "Tiramisù", recipe.CategoryDolce, 1), qty("Mascarpone", "250")),
		withIngredients(named(9, "Panna cotta", recipe.CategoryDolce, 1), qty("Panna", "500")),
	)
	st, err := s.svc.Generate(s.ctx, 4)
	s.Require().NoError(err)
	s.Require().NotNil(st.Dessert)
	first := st.Dessert.PrimaryID()

	st, err = s.svc.Regenerate(s.ctx, DessertTarget())
	s.Require().NoError(err)
	s.NotEqual(first, st.Dessert.PrimaryID())

	st, err = s.svc.SetServings(s.ctx, DessertTarget(), 8)
	s.Require().NoError(err)
	s.Equal(8, st.DessertPeople)
	for name, item := range st.ShoppingList.Main {
		for _, u := range item.Usages {
			if u.Context == ContextDessert {
				s.Contains([]float64{1000, 2000}, u.Qty.Number(), name)
			}
		}
	}
}

func (s *ServiceSuite) TestAssignCompositeToSlot() {
	s.addRecipes(
		withIngredients(named(3, "Pomodoro", recipe.CategorySugo, 3), qty("Pomodori", "400"), qty("Sale", "q.b.")),
	)
	_, err := s.svc.Generate(s.ctx, 2)
	s.Require().NoError(err)
	_, err = s.svc.SetServings(s.ctx, SlotTarget(3, SlotLunch), 4)
	s.Require().NoError(err)

	st, err := s.svc.Assign(s.ctx, SlotTarget(3, SlotLunch), 3, 1)
	s.Require().NoError(err)
	lunch := st.Menu.Day(3).Lunch
	s.Require().True(lunch.IsComposite())
	s.Equal("Pasta al Pomodoro", lunch.Name())
	s.Equal(3, lunch.Difficulty())
	s.Equal(4, lunch.ServingsOr(0))
	var day3 []shopping.Usage
	for _, u := range st.ShoppingList.Main["Pomodori"].Usages {
		if u.Context == SlotContext(3, SlotLunch) {
			day3 = append(day3, u)
		}
	}
	s.Require().Len(day3, 1)
	s.Equal(800.0, day3[0].Qty.Number())
	s.Equal("Pomodoro", day3[0].Recipe)
	s.Equal(recipe.ToTasteLabel, st.ShoppingList.Main["Sale"].Qty.String())

	_, err = s.svc.Assign(s.ctx, SlotTarget(3, SlotLunch), 42, 0)
	s.True(errors.Is(err, common.ErrNotFound))
}

func (s *ServiceSuite) TestExtraMeals() {
	_, err := s.svc.Generate(s.ctx, 3)
	s.Require().NoError(err)

	st, err := s.svc.AddExtraMeal(s.ctx, 2, 0)
	s.Require().NoError(err)
	s.Require().Len(st.ExtraMeals, 1)
	extra := st.ExtraMeals[0]
	s.NotEmpty(extra.UniqueID)
	s.Equal(3, extra.Meal.ServingsOr(0))
	usages := st.ShoppingList.Main["Pollo"].Usages
	s.Equal(ContextExtra, usages[len(usages)-1].Context)

	st, err = s.svc.SetServings(s.ctx, ExtraTarget(extra.UniqueID), 6)
	s.Require().NoError(err)
	s.Equal(6, st.ExtraMeals[0].Meal.ServingsOr(0))

	st, err = s.svc.Assign(s.ctx, ExtraTarget(extra.UniqueID), 1, 0)
	s.Require().NoError(err)
	s.Equal(extra.UniqueID, st.ExtraMeals[0].UniqueID)
	s.Equal(int64(1), st.ExtraMeals[0].Meal.PrimaryID())
	s.Equal(6, st.ExtraMeals[0].Meal.ServingsOr(0))

	st, err = s.svc.RemoveExtraMeal(s.ctx, extra.UniqueID)
	s.Require().NoError(err)
	s.Empty(st.ExtraMeals)

	_, err = s.svc.RemoveExtraMeal(s.ctx, extra.UniqueID)
	s.True(errors.Is(err, common.ErrNotFound))
}

func (s *ServiceSuite) TestHydrationAppliesCatalogEdits() {
	_, err := s.svc.Generate(s.ctx, 2)
	s.Require().NoError(err)

	s.catalog.update(withIngredients(named(1, "Pasta integrale", recipe.CategoryPrimo, 2), qty("Pasta integrale", "100")))

	st, err := s.svc.Current(s.ctx)
	s.Require().NoError(err)
	s.Equal("Pasta integrale", st.Menu.Day(1).Lunch.Name())

	st, err = s.svc.ClearExtras(s.ctx)
	s.Require().NoError(err)
	s.NotContains(st.ShoppingList.Main, "Pasta")
	s.Equal(700.0, st.ShoppingList.Main["Pasta Integrale"].Qty.Number())
}

func (s *ServiceSuite) TestFailedSaveLeavesStateUntouched() {
	_, err := s.svc.Generate(s.ctx, 2)
	s.Require().NoError(err)
	before := string(s.store.data)

	s.store.saveErr = errors.New("disk full")
	_, err = s.svc.AddExtra(s.ctx, "latte", "1")
	s.True(errors.Is(err, common.ErrInternalError))
	s.Equal(before, string(s.store.data))
}

func (s *ServiceSuite) TestRecomputeIsIdempotent() {
	_, err := s.svc.Generate(s.ctx, 2)
	s.Require().NoError(err)
	_, err = s.svc.ToggleItem(s.ctx, "Pollo")
	s.Require().NoError(err)

	a, err := s.svc.ClearExtras(s.ctx)
	s.Require().NoError(err)
	b, err := s.svc.ClearExtras(s.ctx)
	s.Require().NoError(err)

	first, _ := json.Marshal(a.ShoppingList)
	second, _ := json.Marshal(b.ShoppingList)
	s.JSONEq(string(first), string(second))
	s.True(b.ShoppingList.Main["Pollo"].Checked)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}
