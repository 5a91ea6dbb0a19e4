package menu

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"menu-planner/internal/api/handlers"
	"menu-planner/internal/core/menu"
)

// GenerateRequest starts a new week.
type GenerateRequest struct {
	People int `json:"people" binding:"required"`
}

type ServingsRequest struct {
	Target   menu.Target `json:"target"`
	Servings int         `json:"servings" binding:"required"`
}

type DessertServingsRequest struct {
	Servings int `json:"servings" binding:"required"`
}

type RegenerateRequest struct {
	Target menu.Target `json:"target"`
}

// AssignRequest pins a recipe, optionally paired, to a target.
type AssignRequest struct {
	Target         menu.Target `json:"target"`
	RecipeID       int64       `json:"recipeId" binding:"required"`
	PairedRecipeID int64       `json:"pairedRecipeId"`
}

// ManualMealRequest picks a recipe for the dessert or a new extra meal.
type ManualMealRequest struct {
	RecipeID       int64 `json:"recipeId" binding:"required"`
	PairedRecipeID int64 `json:"pairedRecipeId"`
}

type RemoveManualMealRequest struct {
	UniqueID string `json:"uniqueId" binding:"required"`
}

// Handler exposes the plan and its shopping list. Every mutation answers
// with the full updated state.
type Handler struct {
	svc *menu.Service
}

func NewHandler(svc *menu.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Generate(c *gin.Context) {
	var req GenerateRequest
	if !handlers.BindJSON(c, &req) {
		return
	}
	respond(c, func() (*menu.State, error) {
		return h.svc.Generate(c.Request.Context(), req.People)
	})
}

// Last returns the current plan, or null before the first generation.
func (h *Handler) Last(c *gin.Context) {
	st, err := h.svc.Current(c.Request.Context())
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	if st == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) UpdateMealServings(c *gin.Context) {
	var req ServingsRequest
	if !handlers.BindJSON(c, &req) {
		return
	}
	respond(c, func() (*menu.State, error) {
		return h.svc.SetServings(c.Request.Context(), req.Target, req.Servings)
	})
}

func (h *Handler) UpdateDessertServings(c *gin.Context) {
	var req DessertServingsRequest
	if !handlers.BindJSON(c, &req) {
		return
	}
	respond(c, func() (*menu.State, error) {
		return h.svc.SetServings(c.Request.Context(), menu.DessertTarget(), req.Servings)
	})
}

func (h *Handler) RegenerateMeal(c *gin.Context) {
	var req RegenerateRequest
	if !handlers.BindJSON(c, &req) {
		return
	}
	respond(c, func() (*menu.State, error) {
		return h.svc.Regenerate(c.Request.Context(), req.Target)
	})
}

func (h *Handler) RegenerateDessert(c *gin.Context) {
	respond(c, func() (*menu.State, error) {
		return h.svc.Regenerate(c.Request.Context(), menu.DessertTarget())
	})
}

func (h *Handler) SetManualMeal(c *gin.Context) {
	var req AssignRequest
	if !handlers.BindJSON(c, &req) {
		return
	}
	respond(c, func() (*menu.State, error) {
		return h.svc.Assign(c.Request.Context(), req.Target, req.RecipeID, req.PairedRecipeID)
	})
}

func (h *Handler) SetManualDessert(c *gin.Context) {
	var req ManualMealRequest
	if !handlers.BindJSON(c, &req) {
		return
	}
	respond(c, func() (*menu.State, error) {
		return h.svc.Assign(c.Request.Context(), menu.DessertTarget(), req.RecipeID, req.PairedRecipeID)
	})
}

func (h *Handler) AddManualMeal(c *gin.Context) {
	var req ManualMealRequest
	if !handlers.BindJSON(c, &req) {
		return
	}
	respond(c, func() (*menu.State, error) {
		return h.svc.AddExtraMeal(c.Request.Context(), req.RecipeID, req.PairedRecipeID)
	})
}

func (h *Handler) RemoveManualMeal(c *gin.Context) {
	var req RemoveManualMealRequest
	if !handlers.BindJSON(c, &req) {
		return
	}
	respond(c, func() (*menu.State, error) {
		return h.svc.RemoveExtraMeal(c.Request.Context(), req.UniqueID)
	})
}

func respond(c *gin.Context, fn func() (*menu.State, error)) {
	st, err := fn()
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
