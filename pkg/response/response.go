package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/rapidcart/catalog/pkg/errors"
	"github.com/rapidcart/catalog/pkg/logger"
)

// Envelope is the wire format shared by every data-bearing endpoint:
// {"data": ...} on success, {"error": "..."} on failure. The Source field
// reports whether a read was served from the cache or the database.
type Envelope struct {
	Data   interface{} `json:"data,omitempty"`
	Source string      `json:"source,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Data writes a JSON success response wrapping the payload.
func Data(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Envelope{Data: data})
}

// DataWithSource writes a success response tagged with the serving layer
// ("cache" or "database").
func DataWithSource(c *gin.Context, statusCode int, data interface{}, source string) {
	c.JSON(statusCode, Envelope{Data: data, Source: source})
}

// Error renders any error as the {"error": message} envelope, converting it
// to an AppError first so internal details are never exposed.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr == nil {
		appErr = appErrors.ErrInternalServer
	}

	if appErr.StatusCode >= http.StatusInternalServerError {
		logger.WithModule("http").Error("request failed",
			zap.String("code", appErr.Code),
			zap.Error(appErr),
		)
	}

	c.AbortWithStatusJSON(appErr.StatusCode, Envelope{Error: appErr.Message})
}
