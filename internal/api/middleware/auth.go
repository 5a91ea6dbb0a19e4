package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"menu-planner/internal/pkg/common"
)

// TokenFromRequest reads the bearer token from Authorization or X-Auth-Token.
func TokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return strings.TrimSpace(h)
	}
	return strings.TrimSpace(c.GetHeader("X-Auth-Token"))
}

// ValidToken compares in constant time.
func ValidToken(token, secret string) bool {
	if token == "" || secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}

// Auth requires the shared secret as bearer token.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ValidToken(TokenFromRequest(c), secret) {
			common.LogWarn("unauthorized request",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.ErrorResponse{
				Code:    common.ErrCodeUnauthorized,
				Message: common.ErrUnauthorized.Message,
			})
			return
		}
		c.Next()
	}
}
