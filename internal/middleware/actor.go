package middleware

import (
	"go-fleet/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
)

// Actor reads the caller identity from the X-Actor-ID header set by the API
// gateway and propagates it to handlers and the standard context.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetHeader("X-Actor-ID")
		if actorID != "" {
			c.Set("actor_id", actorID)
			ctx := contextutil.WithActorID(c.Request.Context(), actorID)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
