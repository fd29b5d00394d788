package vehicle

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	vehicles := r.Group("/vehicles")
	{
		vehicles.GET("", h.GetAll)
		vehicles.GET("/:id", h.GetByID)
		vehicles.POST("", h.Create)
		vehicles.PATCH("/:id/status", h.SetStatus)
	}
}
