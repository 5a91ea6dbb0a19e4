// Package client is a typed HTTP client for the menu planner API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"menu-planner/internal/core/menu"
	"menu-planner/internal/core/recipe"
	"menu-planner/internal/pkg/common"
)

const defaultTimeout = 30 * time.Second

// Client talks to one server. Errors answered by the server come back as
// *common.CustomError, so errors.Is against the common sentinels works.
type Client struct {
	http *resty.Client
}

// Options configures New.
type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// HTTPClient replaces the transport, mainly for tests.
	HTTPClient *http.Client
}

func New(opts Options) *Client {
	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rc.SetBaseURL(opts.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if opts.Token != "" {
		rc.SetAuthToken(opts.Token)
	}
	return &Client{http: rc}
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.http.SetAuthToken(token)
}

// Login exchanges the access code for a token and starts using it.
func (c *Client) Login(ctx context.Context, code string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.post(ctx, "/api/login", map[string]string{"code": code}, &out); err != nil {
		return "", err
	}
	c.SetToken(out.Token)
	return out.Token, nil
}

// Generate plans a new week.
func (c *Client) Generate(ctx context.Context, people int) (*menu.State, error) {
	return c.state(ctx, "/api/generate-menu", map[string]int{"people": people})
}

// Last returns the current plan, nil when none exists.
func (c *Client) Last(ctx context.Context) (*menu.State, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/api/last-menu")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch last menu: %w", err)
	}
	if err := asError(resp); err != nil {
		return nil, err
	}
	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}
	var st menu.State
	if err := json.Unmarshal(body, &st); err != nil {
		return nil, fmt.Errorf("failed to decode menu: %w", err)
	}
	return &st, nil
}

func (c *Client) ToggleItem(ctx context.Context, item string) (*menu.State, error) {
	return c.state(ctx, "/api/toggle-shopping-item", map[string]interface{}{"item": item})
}

func (c *Client) ToggleExtra(ctx context.Context, id string) (*menu.State, error) {
	return c.state(ctx, "/api/toggle-shopping-item", map[string]interface{}{"isExtra": true, "id": id})
}

// SetQuantity overrides an item's displayed quantity; "" restores the
// computed value.
func (c *Client) SetQuantity(ctx context.Context, item, qty string) (*menu.State, error) {
	return c.state(ctx, "/api/update-shopping-qty", map[string]string{"item": item, "newQty": qty})
}

func (c *Client) AddExtra(ctx context.Context, name, qty string) (*menu.State, error) {
	return c.state(ctx, "/api/add-shopping-extra", map[string]string{"name": name, "qty": qty})
}

func (c *Client) RemoveExtra(ctx context.Context, id string) (*menu.State, error) {
	return c.state(ctx, "/api/remove-shopping-extra", map[string]string{"id": id})
}

func (c *Client) ClearExtras(ctx context.Context) (*menu.State, error) {
	return c.state(ctx, "/api/clear-shopping-extras", nil)
}

func (c *Client) SetServings(ctx context.Context, target menu.Target, servings int) (*menu.State, error) {
	if target.Kind == menu.TargetDessert {
		return c.state(ctx, "/api/update-dessert-servings", map[string]int{"servings": servings})
	}
	return c.state(ctx, "/api/update-meal-servings", map[string]interface{}{"target": target, "servings": servings})
}

func (c *Client) Regenerate(ctx context.Context, target menu.Target) (*menu.State, error) {
	if target.Kind == menu.TargetDessert {
		return c.state(ctx, "/api/regenerate-dessert", nil)
	}
	return c.state(ctx, "/api/regenerate-meal", map[string]interface{}{"target": target})
}

// Assign pins a recipe to target. pairedID 0 means no pairing.
func (c *Client) Assign(ctx context.Context, target menu.Target, recipeID, pairedID int64) (*menu.State, error) {
	body := map[string]interface{}{"recipeId": recipeID, "pairedRecipeId": pairedID}
	if target.Kind == menu.TargetDessert {
		return c.state(ctx, "/api/set-manual-dessert", body)
	}
	body["target"] = target
	return c.state(ctx, "/api/set-manual-meal", body)
}

func (c *Client) AddMeal(ctx context.Context, recipeID, pairedID int64) (*menu.State, error) {
	return c.state(ctx, "/api/add-manual-meal", map[string]int64{"recipeId": recipeID, "pairedRecipeId": pairedID})
}

func (c *Client) RemoveMeal(ctx context.Context, uniqueID string) (*menu.State, error) {
	return c.state(ctx, "/api/remove-manual-meal", map[string]string{"uniqueId": uniqueID})
}

func (c *Client) ListRecipes(ctx context.Context) ([]recipe.Recipe, error) {
	var out []recipe.Recipe
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/api/recipes")
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	if err := asError(resp); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateRecipe returns the new id.
func (c *Client) CreateRecipe(ctx context.Context, rec recipe.Recipe) (int64, error) {
	var out struct {
		ID int64 `json:"id"`
	}
	if err := c.post(ctx, "/api/recipes", rec, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *Client) UpdateRecipe(ctx context.Context, rec recipe.Recipe) error {
	resp, err := c.http.R().SetContext(ctx).SetBody(rec).Put("/api/recipes/" + strconv.FormatInt(rec.ID, 10))
	if err != nil {
		return fmt.Errorf("failed to update recipe: %w", err)
	}
	return asError(resp)
}

func (c *Client) DeleteRecipe(ctx context.Context, id int64) error {
	resp, err := c.http.R().SetContext(ctx).Delete("/api/recipes/" + strconv.FormatInt(id, 10))
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	return asError(resp)
}

// Export downloads the given recipes, or all of them when ids is empty.
func (c *Client) Export(ctx context.Context, ids []int64) ([]recipe.Recipe, error) {
	var out []recipe.Recipe
	if err := c.post(ctx, "/api/export-json", map[string][]int64{"ids": ids}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Import uploads a backup and returns how many recipes were stored.
func (c *Client) Import(ctx context.Context, recipes []recipe.Recipe, clear bool) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	body := map[string]interface{}{"recipes": recipes, "clear": clear}
	if err := c.post(ctx, "/api/import-json", body, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) state(ctx context.Context, path string, body interface{}) (*menu.State, error) {
	var st menu.State
	if err := c.post(ctx, path, body, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	resp, err := req.Post(path)
	if err != nil {
		return fmt.Errorf("request %s failed: %w", path, err)
	}
	return asError(resp)
}

// asError converts a non-2xx answer into a CustomError.
func asError(resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}
	var body common.ErrorResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil || body.Code == "" {
		return common.NewError(common.ErrCodeInternalError, resp.Status(), resp.StatusCode(), nil)
	}
	var cause error
	if body.Details != "" {
		cause = fmt.Errorf("%s", body.Details)
	}
	return common.NewError(body.Code, body.Message, resp.StatusCode(), cause)
}
