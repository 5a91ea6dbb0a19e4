package menu

import (
	"github.com/gin-gonic/gin"

	"menu-planner/internal/api/handlers"
	"menu-planner/internal/core/menu"
	"menu-planner/internal/pkg/common"
)

// ToggleRequest flips a computed item by name, or an extra by id.
type ToggleRequest struct {
	Item    string `json:"item"`
	IsExtra bool   `json:"isExtra"`
	ID      string `json:"id"`
}

// UpdateQtyRequest overrides a displayed quantity; an empty newQty drops the
// override.
type UpdateQtyRequest struct {
	Item   string            `json:"item" binding:"required"`
	NewQty common.FlexString `json:"newQty"`
}

type AddExtraRequest struct {
	Name string            `json:"name" binding:"required"`
	Qty  common.FlexString `json:"qty"`
}

type RemoveExtraRequest struct {
	ID string `json:"id" binding:"required"`
}

func (h *Handler) ToggleShoppingItem(c *gin.Context) {
	var req ToggleRequest
	if !handlers.BindJSON(c, &req) {
		return
	}
	switch {
	case req.IsExtra && req.ID != "":
		respond(c, func() (*menu.State, error) {
			return h.svc.ToggleExtra(c.Request.Context(), req.ID)
		})
	case !req.IsExtra && req.Item != "":
		respond(c, func() (*menu.State, error) {
			return h.svc.ToggleItem(c.Request.Context(), req.Item)
		})
	default:
		handlers.RespondError(c, common.Invalid("item or id is required"))
	}
}

func (h *Handler) UpdateShoppingQty(c *gin.Context) {
	var req UpdateQtyRequest
	if !handlers.BindJSON(c, &req) {
		return
	}
	respond(c, func() (*menu.State, error) {
		return h.svc.SetOverride(c.Request.Context(), req.Item, req.NewQty)
	})
}

func (h *Handler) AddShoppingExtra(c *gin.Context) {
	var req AddExtraRequest
	if !handlers.BindJSON(c, &req) {
		return
	}
	respond(c, func() (*menu.State, error) {
		return h.svc.AddExtra(c.Request.Context(), req.Name, req.Qty)
	})
}

func (h *Handler) RemoveShoppingExtra(c *gin.Context) {
	var req RemoveExtraRequest
	if !handlers.BindJSON(c, &req) {
		return
	}
	respond(c, func() (*menu.State, error) {
		return h.svc.RemoveExtra(c.Request.Context(), req.ID)
	})
}

func (h *Handler) ClearShoppingExtras(c *gin.Context) {
	respond(c, func() (*menu.State, error) {
		return h.svc.ClearExtras(c.Request.Context())
	})
}
