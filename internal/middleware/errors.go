package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"afrizone/internal/apperr"
	"afrizone/internal/logging"
)

type errorBody struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// AbortWithError renders err as {"message": ...} with the status of its kind
// and stops the handler chain. Causes of internal errors are logged only.
func AbortWithError(c *gin.Context, err error) {
	appErr := apperr.From(err)
	status := appErr.Status()

	if status >= 500 {
		logging.Area(Logger(c), logging.AreaHTTP).
			WithError(err).
			WithField("route", c.FullPath()).
			Error("request failed")
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorBody{Message: appErr.Message, Details: appErr.Details})
}

// Recovery turns a panic into a 500 JSON response.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		AbortWithError(c, apperr.Internal("panic recovered", fmt.Errorf("%v", recovered)))
	})
}
