package approval

import (
	"go-fleet/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	approvals := r.Group("/approvals")
	{
		approvals.GET("", h.GetPending)
		approvals.GET("/:id", h.GetByID)
		approvals.POST("/:id/approve", middleware.RateLimitByActor(2, 5), h.Approve)
		approvals.POST("/:id/reject", middleware.RateLimitByActor(2, 5), h.Reject)
	}
}
