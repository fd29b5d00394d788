package notify

import (
	"context"

	"go.uber.org/zap"
)

// Notification adalah bentuk generik yang dikirim ke kanal delivery
// (push/SMS/email). Mekanisme pengirimannya di luar core ini.
type Notification struct {
	EventType   string
	RecipientID string
	BookingID   string
	Message     string
}

//go:generate mockgen -source=notifier.go -destination=mock/notifier_mock.go -package=mock
type Notifier interface {
	Deliver(ctx context.Context, n Notification) error
}

type logNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier menulis notifikasi ke log saja. Dipakai selama kanal
// delivery eksternal belum disambungkan.
func NewLogNotifier(logger *zap.Logger) Notifier {
	return &logNotifier{logger: logger.Named("notify.log")}
}

func (n *logNotifier) Deliver(_ context.Context, notif Notification) error {
	n.logger.Info("notification delivered",
		zap.String("event_type", notif.EventType),
		zap.String("recipient_id", notif.RecipientID),
		zap.String("booking_id", notif.BookingID),
		zap.String("message", notif.Message),
	)
	return nil
}
