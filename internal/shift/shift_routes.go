package shift

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	shifts := r.Group("/shifts")
	{
		shifts.GET("", h.GetByDriverAndDate)
		shifts.POST("", h.Create)
		shifts.POST("/:id/activate", h.Activate)
		shifts.POST("/:id/complete", h.Complete)
		shifts.POST("/:id/absent", h.MarkAbsent)
		shifts.POST("/:id/cancel", h.Cancel)
	}
}
