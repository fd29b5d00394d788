package approval

type DecideApprovalRequest struct {
	Notes string `json:"notes"`
}

type ApprovalResponse struct {
	ID            string  `json:"id"`
	BookingID     string  `json:"booking_id"`
	RequesterID   string  `json:"requester_id"`
	ApproverID    string  `json:"approver_id"`
	Status        string  `json:"status"`
	Notes         string  `json:"notes,omitempty"`
	ExpiresAt     string  `json:"expires_at"`
	ReminderCount int     `json:"reminder_count"`
	RespondedAt   *string `json:"responded_at,omitempty"`
	RespondedBy   *string `json:"responded_by,omitempty"`
	CreatedAt     string  `json:"created_at"`
}
