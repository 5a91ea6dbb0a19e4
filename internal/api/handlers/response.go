// Package handlers holds the JSON helpers shared by the HTTP handlers.
package handlers

import (
	"errors"
	"io"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"menu-planner/internal/pkg/common"
)

// RespondError writes err as an ErrorResponse with the status its code maps
// to. Details are only exposed in debug mode.
func RespondError(c *gin.Context, err error) {
	ce := common.AsCustomError(err)
	resp := common.ErrorResponse{
		Code:    ce.Code,
		Message: ce.Message,
	}
	if gin.IsDebugging() && ce.Err != nil {
		resp.Details = ce.Err.Error()
	}

	fields := []zap.Field{
		zap.String("code", ce.Code),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", requestid.Get(c)),
		zap.Error(err),
	}
	if ce.Status >= 500 {
		common.LogError("request failed", fields...)
	} else {
		common.LogDebug("request rejected", fields...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(ce.Status, resp)
}

// BindJSON decodes the body into req and answers 400 when it cannot.
func BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if errors.Is(err, io.EOF) {
			err = common.NewValidationError("request body is empty")
		}
		RespondError(c, common.Invalid("%v", err))
		return false
	}
	return true
}

// BindOptionalJSON tolerates an empty body.
func BindOptionalJSON(c *gin.Context, req interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return BindJSON(c, req)
}
