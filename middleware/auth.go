package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/luckymart/LuckyMart/config"
	"github.com/luckymart/LuckyMart/utils"
)

// AdminTokenMiddleware guards the admin surface with a shared token carried
// in the X-Admin-Token header. An empty configured token locks the surface.
func AdminTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := config.App.AdminAPIToken
		supplied := c.GetHeader("X-Admin-Token")

		if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(supplied)) != 1 {
			utils.LogError("Admin token rejected for %s %s", c.Request.Method, c.Request.URL.Path)
			utils.Unauthorized(c, "Invalid admin token")
			c.Abort()
			return
		}
		c.Next()
	}
}
