package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func newOutboxRepoForTest(t *testing.T) (OutboxRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewOutboxRepository(db), mock
}

func validEvent() OutboxEvent {
	return OutboxEvent{
		ID:            "1d6f9d2c-8a7e-4d9f-9a5a-0c2f6a1b3c4d",
		RequestID:     "req-123",
		AggregateType: "booking",
		AggregateID:   "a8098c1a-f86e-11da-bd1a-00112444be1e",
		EventType:     "BOOKING_CONFIRMED",
		Topic:         "booking.lifecycle",
		Payload:       []byte(`{"status":"CONFIRMED"}`),
		Status:        OutboxStatusPending,
	}
}

func TestOutboxRepositoryCreate(t *testing.T) {
	t.Run("success inserts pending event with request id", func(t *testing.T) {
		repo, mock := newOutboxRepoForTest(t)
		e := validEvent()

		mock.ExpectExec("INSERT INTO outbox_events").
			WithArgs(e.ID, e.RequestID, e.AggregateType, e.AggregateID, e.EventType, e.Topic, e.Payload, e.Status).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Create(context.Background(), e)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative rejects event without topic before touching the db", func(t *testing.T) {
		repo, mock := newOutboxRepoForTest(t)
		e := validEvent()
		e.Topic = ""

		err := repo.Create(context.Background(), e)

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepositoryListPending(t *testing.T) {
	t.Run("success skips rows past the delivery cap", func(t *testing.T) {
		repo, mock := newOutboxRepoForTest(t)
		e := validEvent()
		now := time.Now()

		rows := sqlmock.NewRows([]string{
			"id", "request_id", "aggregate_type", "aggregate_id",
			"event_type", "topic", "payload", "status", "retry_count", "next_retry_at",
		}).AddRow(e.ID, e.RequestID, e.AggregateType, e.AggregateID,
			e.EventType, e.Topic, e.Payload, OutboxStatusFailed, 2, now)

		mock.ExpectQuery("FROM outbox_events").
			WithArgs(OutboxStatusPending, OutboxStatusFailed, maxDeliveryAttempts, 50).
			WillReturnRows(rows)

		events, err := repo.ListPending(context.Background(), 50)

		assert.NoError(t, err)
		assert.Len(t, events, 1)
		assert.Equal(t, "req-123", events[0].RequestID)
		assert.Equal(t, 2, events[0].RetryCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepositoryMarkFailed(t *testing.T) {
	t.Run("success schedules a capped backoff", func(t *testing.T) {
		repo, mock := newOutboxRepoForTest(t)

		mock.ExpectExec("UPDATE outbox_events").
			WithArgs("evt-1", OutboxStatusFailed, "broker unreachable", maxDeliveryAttempts).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.MarkFailed(context.Background(), "evt-1", "broker unreachable")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepositoryDeleteSentBefore(t *testing.T) {
	t.Run("success reports pruned row count", func(t *testing.T) {
		repo, mock := newOutboxRepoForTest(t)
		cutoff := time.Now().Add(-72 * time.Hour)

		mock.ExpectExec("DELETE FROM outbox_events").
			WithArgs(OutboxStatusSent, cutoff).
			WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := repo.DeleteSentBefore(context.Background(), cutoff)

		assert.NoError(t, err)
		assert.Equal(t, int64(3), n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
