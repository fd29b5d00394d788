package booking

import (
	"go-fleet/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rdb *redis.Client) {
	bookings := r.Group("/bookings")
	{
		bookings.GET("", h.GetAll)
		bookings.GET("/:id", h.GetByID)
		bookings.GET("/:id/transitions", h.GetTransitions)
		bookings.POST("",
			middleware.RateLimitByActor(1, 5),
			middleware.Idempotency(rdb),
			h.Create,
		)
		bookings.POST("/:id/match", middleware.RateLimitByActor(2, 5), h.MatchAndReserve)
		bookings.POST("/:id/confirm-assignment", h.ConfirmAssignment)
		bookings.POST("/:id/start", h.StartTrip)
		bookings.POST("/:id/complete", h.CompleteTrip)
		bookings.POST("/:id/cancel", h.Cancel)
		bookings.POST("/:id/redirect", h.RedirectExternal)
	}
}
