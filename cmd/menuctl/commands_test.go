package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-planner/internal/api"
	"menu-planner/internal/core/menu"
	"menu-planner/internal/core/recipe"
	"menu-planner/internal/infrastructure/config"
	"menu-planner/internal/infrastructure/persistence/memory"
)

func startServer(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recipes := memory.NewRecipeRepository(
		recipe.Recipe{Name: "Lasagna", Type: recipe.CategoryPrimoCompleto, Servings: 4,
			Ingredients: []recipe.Ingredient{{Name: "Sfoglia", Quantity: recipe.Numeric(250)}}},
		recipe.Recipe{Name: "Frittata", Type: recipe.CategorySecondoCompleto, Servings: 2,
			Ingredients: []recipe.Ingredient{{Name: "Uova", Quantity: recipe.Numeric(4)}}},
	)
	svc := menu.NewService(recipes, memory.NewStateStore(), menu.NewPlanner(menu.NewRandom(3)), nil)
	cfg := &config.Config{
		Auth: config.AuthConfig{SecretCode: "code"},
		CORS: config.CORSConfig{AllowOrigins: []string{"*"}},
	}
	router, err := api.SetupRouter(cfg, api.Dependencies{Recipes: recipes, Menu: svc})
	require.NoError(t, err)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(t *testing.T, url string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(append([]string{"--server", url, "--token", "code"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestMenuctlFlow(t *testing.T) {
	url := startServer(t)

	out, err := run(t, url, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "No menu yet")

	out, err = run(t, url, "generate", "-p", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Menu for 4")
	assert.Contains(t, out, "Lasagna")
	assert.Contains(t, out, "Sfoglia")

	out, err = run(t, url, "shopping", "toggle", "Uova")
	require.NoError(t, err)
	assert.Contains(t, out, "[x] Uova")

	out, err = run(t, url, "shopping", "qty", "Sfoglia", "2 confezioni")
	require.NoError(t, err)
	assert.Contains(t, out, "2 confezioni")
	assert.Contains(t, out, "edited")

	out, err = run(t, url, "servings", "6", "--day", "1", "--slot", "dinner")
	require.NoError(t, err)
	assert.Contains(t, out, "Frittata (x6)")

	_, err = run(t, url, "servings", "6")
	assert.Error(t, err)

	out, err = run(t, url, "--json", "recipes")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Frittata"`)
}

func TestMenuctlImport(t *testing.T) {
	url := startServer(t)
	path := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"Tiramisù","type":"dolce","ingredients":[]}]`), 0o644))

	out, err := run(t, url, "recipes", "import", path, "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 recipes")

	out, err = run(t, url, "recipes")
	require.NoError(t, err)
	assert.Contains(t, out, "Tiramisù")
	assert.NotContains(t, out, "Lasagna")
}

func TestMenuctlUnauthorized(t *testing.T) {
	url := startServer(t)
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{"--server", url, "--token", "bad", "recipes"})
	assert.Error(t, cmd.Execute())
}

func TestTargetFromFlags(t *testing.T) {
	parse := func(args ...string) (menu.Target, error) {
		cmd := &cobra.Command{}
		addTargetFlags(cmd)
		require.NoError(t, cmd.Flags().Parse(args))
		return targetFromFlags(cmd)
	}

	tg, err := parse("--day", "3", "--slot", "lunch")
	require.NoError(t, err)
	assert.Equal(t, menu.SlotTarget(3, menu.SlotLunch), tg)

	tg, err = parse("--extra", "abc")
	require.NoError(t, err)
	assert.Equal(t, menu.ExtraTarget("abc"), tg)

	tg, err = parse("--dessert")
	require.NoError(t, err)
	assert.Equal(t, menu.DessertTarget(), tg)

	_, err = parse("--day", "2", "--slot", "brunch")
	assert.Error(t, err)

	_, err = parse()
	assert.Error(t, err)
}
