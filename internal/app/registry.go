package app

import (
	"database/sql"

	"go-fleet/internal/approval"
	"go-fleet/internal/booking"
	"go-fleet/internal/matching"
	"go-fleet/internal/messaging/kafka"
	"go-fleet/internal/middleware"
	"go-fleet/internal/shared/clock"
	"go-fleet/internal/shared/counter"
	"go-fleet/internal/shift"
	"go-fleet/internal/user"
	"go-fleet/internal/vehicle"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	policy PolicyConfig,
) error {
	clk := clock.System()

	// --- Repositories ---
	approvalRepo := approval.NewRepository(gormDB)
	bookingRepo := booking.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	shiftRepo := shift.NewRepository(gormDB)
	userRepo := user.NewRepository(gormDB)
	vehicleRepo := vehicle.NewRepository(gormDB)

	// --- Services ---
	approvalService := approval.NewService(db, approvalRepo, bookingRepo, userRepo, outboxRepo, rdb, clk, approval.Config{
		ApprovalTTL:        policy.ApprovalTTL,
		ReminderInterval:   policy.ReminderInterval,
		ReminderMaxCount:   policy.ReminderMaxCount,
		CcMinPositionLevel: policy.CcMinPositionLevel,
	})
	matchingService := matching.NewService(bookingRepo, shiftRepo, vehicleRepo)
	bookingService := booking.NewService(db, bookingRepo, vehicleRepo, approvalService, matchingService, outboxRepo, counterRepo, clk, booking.ServiceConfig{
		ReserveAttempts: policy.ReserveAttempts,
	})
	shiftService := shift.NewService(db, shiftRepo)
	userService := user.NewService(db, userRepo, rdb)
	vehicleService := vehicle.NewService(db, vehicleRepo)

	// --- Handlers ---
	approvalHandler := approval.NewHandler(approvalService)
	bookingHandler := booking.NewHandler(bookingService)
	shiftHandler := shift.NewHandler(shiftService)
	userHandler := user.NewHandler(userService)
	vehicleHandler := vehicle.NewHandler(vehicleService)

	// --- Routes Registration ---
	router.Use(middleware.RequestID())
	router.Use(middleware.Actor())

	api := router.Group("/api/v1")
	{
		approval.RegisterRoutes(api, approvalHandler)
		booking.RegisterRoutes(api, bookingHandler, rdb)
		shift.RegisterRoutes(api, shiftHandler)
		user.RegisterRoutes(api, userHandler)
		vehicle.RegisterRoutes(api, vehicleHandler)
	}

	return nil
}
