package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-fleet/internal/approval"
	"go-fleet/internal/booking"
	"go-fleet/internal/messaging/kafka"
	"go-fleet/internal/messaging/kafka/producer"
	"go-fleet/internal/shared/clock"
	"go-fleet/internal/shared/connection"
	"go-fleet/internal/user"

	"go.uber.org/zap"
)

// RunWorker drives the async side of the lifecycle: draining the outbox to
// Kafka and sweeping approvals for timeouts and reminders.
func RunWorker() error {
	logger := zap.L().Named("app.worker")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(kafkaBroker, 5)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	policy := LoadPolicyConfig()

	approvalRepo := approval.NewRepository(gormDB)
	bookingRepo := booking.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(sqlDB)
	userRepo := user.NewRepository(gormDB)

	approvalService := approval.NewService(sqlDB, approvalRepo, bookingRepo, userRepo, outboxRepo, redisClient, clock.System(), approval.Config{
		ApprovalTTL:        policy.ApprovalTTL,
		ReminderInterval:   policy.ReminderInterval,
		ReminderMaxCount:   policy.ReminderMaxCount,
		CcMinPositionLevel: policy.CcMinPositionLevel,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		logger,
		policy.OutboxPollInterval,
	)

	go runSweep(ctx, logger.Named("approval.expiry_sweep"), policy.ExpirySweepInterval, approvalService.RunExpirySweep)
	go runSweep(ctx, logger.Named("approval.reminder_sweep"), policy.ReminderSweepInterval, approvalService.RunReminderSweep)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}

func runSweep(ctx context.Context, log *zap.Logger, interval time.Duration, sweep func(context.Context) (int, error)) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("sweep started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			log.Info("sweep stopped")
			return
		case <-ticker.C:
			if _, err := sweep(ctx); err != nil {
				log.Error("sweep run failed", zap.Error(err))
			}
		}
	}
}
