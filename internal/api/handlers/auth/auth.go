package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"menu-planner/internal/api/handlers"
	"menu-planner/internal/api/middleware"
	"menu-planner/internal/pkg/common"
)

// LoginRequest carries the shared access code.
type LoginRequest struct {
	Code string `json:"code" binding:"required"`
}

// LoginResponse returns the bearer token for subsequent calls.
type LoginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

type Handler struct {
	secret string
}

func NewHandler(secret string) *Handler {
	return &Handler{secret: secret}
}

// Login exchanges the access code for the bearer token. The shared code is
// the token.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !handlers.BindJSON(c, &req) {
		return
	}
	if !middleware.ValidToken(req.Code, h.secret) {
		common.LogWarn("login rejected", zap.String("ip", c.ClientIP()))
		handlers.RespondError(c, common.ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, LoginResponse{Token: h.secret, Message: "Login OK"})
}
