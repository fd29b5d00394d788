package booking

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// ApprovalGateway memutuskan jalur approval sebuah booking baru dan
// membereskan approval yang masih menggantung saat booking dibatalkan.
// Diimplementasikan oleh approval service; interface di sini supaya arah
// dependency tetap satu arah.
type ApprovalGateway interface {
	// Classify returns the approval type for the booking and, when routing
	// requires it, records the approval plus its notification in the same
	// transaction. Returns ApprovalManager, ApprovalCcOnly or ApprovalAuto.
	Classify(ctx context.Context, tx *sql.Tx, b *Booking) (string, error)

	// ResolveOnBookingCancel marks any still-pending approval of the
	// booking as rejected-by-cancellation so it is not left dangling.
	ResolveOnBookingCancel(ctx context.Context, tx *sql.Tx, bookingID string, actorID *uuid.UUID) error
}

type MatchCandidate struct {
	DriverID  uuid.UUID
	VehicleID uuid.UUID
}

// Matcher selects a driver+vehicle pair for the booking's window. Selection
// reads committed state; the commit itself happens through the repository's
// optimistic ReserveResources guard.
type Matcher interface {
	Match(ctx context.Context, b *Booking) (MatchCandidate, error)
}

// CanTransition exposes the state machine check to collaborating packages
// (approval routing flips bookings between waiting states).
func CanTransition(currentStatus, targetStatus string) bool {
	return isAllowedStatusTransition(currentStatus, targetStatus)
}
