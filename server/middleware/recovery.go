package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/hostagent/logger"
)

// Recovery returns a Gin middleware that recovers from panics and logs the
// stack. A control plugin panicking must never take the agent down.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered", map[string]interface{}{
					"error":     fmt.Sprintf("%v", err),
					"stack":     string(debug.Stack()),
					"path":      c.Request.URL.Path,
					"method":    c.Request.Method,
					"client_ip": c.ClientIP(),
				})
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success":     false,
					"status_code": http.StatusInternalServerError,
					"error":       "internal server error",
				})
			}
		}()
		c.Next()
	}
}
