package recipe

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"menu-planner/internal/api/handlers"
	"menu-planner/internal/core/recipe"
	"menu-planner/internal/pkg/common"
)

// ExportRequest selects recipes to export; empty means all.
type ExportRequest struct {
	IDs []int64 `json:"ids"`
}

// ImportRequest replaces or extends the catalog.
type ImportRequest struct {
	Recipes []recipe.Recipe `json:"recipes" binding:"required"`
	Clear   bool            `json:"clear"`
}

type ImportResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type CreateResponse struct {
	ID int64 `json:"id"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Handler serves the recipe catalog.
type Handler struct {
	repo recipe.Repository
}

func NewHandler(repo recipe.Repository) *Handler {
	return &Handler{repo: repo}
}

// List returns every recipe sorted by name.
func (h *Handler) List(c *gin.Context) {
	recipes, err := h.repo.ListRecipes(c.Request.Context())
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

func (h *Handler) Create(c *gin.Context) {
	var rec recipe.Recipe
	if !handlers.BindJSON(c, &rec) {
		return
	}
	rec.ID = 0
	if err := h.repo.Create(c.Request.Context(), &rec); err != nil {
		handlers.RespondError(c, err)
		return
	}
	common.LogInfo("recipe created", zap.Int64("id", rec.ID), zap.String("name", rec.Name))
	c.JSON(http.StatusCreated, CreateResponse{ID: rec.ID})
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var rec recipe.Recipe
	if !handlers.BindJSON(c, &rec) {
		return
	}
	rec.ID = id
	if err := h.repo.Update(c.Request.Context(), &rec); err != nil {
		handlers.RespondError(c, err)
		return
	}
	common.LogInfo("recipe updated", zap.Int64("id", id))
	c.JSON(http.StatusOK, MessageResponse{Message: "OK"})
}

// Delete removes a recipe. Plans that already use it keep their copy.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		handlers.RespondError(c, err)
		return
	}
	common.LogInfo("recipe deleted", zap.Int64("id", id))
	c.JSON(http.StatusOK, MessageResponse{Message: "OK"})
}

// Export sends the selected recipes as a downloadable backup.
func (h *Handler) Export(c *gin.Context) {
	var req ExportRequest
	if !handlers.BindOptionalJSON(c, &req) {
		return
	}
	recipes, err := h.repo.Export(c.Request.Context(), req.IDs)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=backup.json")
	c.JSON(http.StatusOK, recipes)
}

// Import loads a backup in one transaction.
func (h *Handler) Import(c *gin.Context) {
	var req ImportRequest
	if !handlers.BindJSON(c, &req) {
		return
	}
	n, err := h.repo.Import(c.Request.Context(), req.Recipes, req.Clear)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	common.LogInfo("recipes imported", zap.Int("count", n), zap.Bool("clear", req.Clear))
	c.JSON(http.StatusOK, ImportResponse{Message: "Import OK", Count: n})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		handlers.RespondError(c, common.Invalid("invalid recipe id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}
