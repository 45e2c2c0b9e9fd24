// Package handlers implements the gin handlers of the query API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/hypocal-explain/internal/interfaces/http/middleware"
	"github.com/turtacn/hypocal-explain/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeAppError maps an error onto its HTTP status and response body.
// Errors without a code are masked as internal errors.
func writeAppError(c *gin.Context, err error) {
	_ = c.Error(err)

	var appErr *errors.AppError
	if !errors.As(err, &appErr) {
		appErr = errors.New(errors.ErrCodeInternal, "internal server error")
	}
	status := appErr.HTTPStatus()
	resp := ErrorResponse{
		Code:      appErr.Code.String(),
		Message:   appErr.Message,
		Detail:    appErr.Detail,
		RequestID: middleware.GetRequestID(c),
	}
	if status >= http.StatusInternalServerError {
		resp.Detail = ""
	}
	c.AbortWithStatusJSON(status, resp)
}

// NoRoute answers unknown paths with the standard error body.
func NoRoute(c *gin.Context) {
	writeAppError(c, errors.Newf(errors.ErrCodeNotFound, "no route for %s %s", c.Request.Method, c.Request.URL.Path))
}

// writeBindError reports a malformed request body.
func writeBindError(c *gin.Context, err error) {
	writeAppError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body").WithDetail(err.Error()))
}

//Personal.AI order the ending
