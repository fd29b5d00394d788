package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-fleet/internal/events"
	"go-fleet/internal/messaging/kafka/consumer"
	"go-fleet/internal/notify"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer tails the lifecycle topics and hands each event to the
// notifier.
func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	bookingReader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{kafkaBroker},
		Topic:          events.BookingLifecycleTopic,
		GroupID:        "go-fleet-notifications",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer bookingReader.Close()

	approvalReader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{kafkaBroker},
		Topic:          events.ApprovalLifecycleTopic,
		GroupID:        "go-fleet-notifications",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer approvalReader.Close()

	notifier := notify.NewLogNotifier(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeBookingLifecycle(ctx, bookingReader, notifier, logger)
	go consumer.ConsumeApprovalLifecycle(ctx, approvalReader, notifier, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
