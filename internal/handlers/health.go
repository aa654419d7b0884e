package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// Health reports liveness together with the identity of the worker process
// answering the probe. With clustering enabled each request may be served by
// a different worker, so the pid is the interesting part.
func Health(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"service":  service,
			"workerId": os.Getpid(),
		})
	}
}
