package user

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	users := r.Group("/users")
	{
		users.GET("", h.GetAll)
		users.GET("/options", h.GetOptions)
		users.GET("/:id", h.GetByID)
		users.GET("/:id/manager", h.GetManager)
		users.POST("", h.Create)
		users.PUT("/:id/manager", h.AssignManager)
	}
}
