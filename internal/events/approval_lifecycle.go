package events

import "time"

const ApprovalLifecycleTopic = "fleet.approval.lifecycle.v1"

const (
	TypeApprovalRequired = "approval_required"
	TypeApprovalReminder = "approval_reminder"
	TypeApprovalCc       = "approval_cc"
)

type ApprovalLifecycleEvent struct {
	EventType     string    `json:"event_type"`
	RequestID     string    `json:"request_id,omitempty"`
	ApprovalID    string    `json:"approval_id"`
	BookingID     string    `json:"booking_id"`
	ApproverID    string    `json:"approver_id"`
	RequesterID   string    `json:"requester_id"`
	ApprovalType  string    `json:"approval_type"`
	ReminderCount int       `json:"reminder_count,omitempty"`
	ExpiresAt     time.Time `json:"expires_at"`
	OccurredAt    time.Time `json:"occurred_at"`
}
