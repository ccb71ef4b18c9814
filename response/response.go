package response

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civictrack-be/apperrors"
	"civictrack-be/validation"
)

const LoggerKey = "logger"

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Error writes err as a JSON error body and aborts the chain. Binding
// failures become field-level InvalidArgument; unknown errors become a
// generic 500 and are logged.
func Error(c *gin.Context, err error) {
	if fields := validation.Fields(err); fields != nil {
		err = apperrors.Validation(fields)
	} else if errors.Is(err, io.EOF) {
		err = apperrors.InvalidArgument("Request body is required")
	}

	appErr := apperrors.From(err)
	if appErr.Status >= http.StatusInternalServerError {
		Logger(c).Error("request failed",
			zap.String("code", appErr.Code),
			zap.String("path", c.Request.URL.Path),
			zap.Error(appErr),
		)
	}

	c.AbortWithStatusJSON(appErr.Status, ErrorResponse{
		Error:   appErr.Code,
		Message: appErr.Message,
		Fields:  appErr.Fields,
	})
}

// BadRequest reports a malformed request that never reached validation.
func BadRequest(c *gin.Context, err error) {
	if validation.Fields(err) == nil && !errors.Is(err, io.EOF) {
		err = apperrors.InvalidArgument(err.Error())
	}
	Error(c, err)
}

// Logger returns the request-scoped logger, or the global one.
func Logger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(LoggerKey); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.L()
}
