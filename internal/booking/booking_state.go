package booking

const (
	StatusPendingApproval    = "PENDING_APPROVAL"
	StatusPending            = "PENDING"
	StatusConfirmed          = "CONFIRMED"
	StatusAssigned           = "ASSIGNED"
	StatusInProgress         = "IN_PROGRESS"
	StatusCompleted          = "COMPLETED"
	StatusCancelled          = "CANCELLED"
	StatusRedirectedExternal = "REDIRECTED_EXTERNAL"
)

// allowedTransitions is the booking state machine evaluated in application
// code before any persistence write; the store stays dumb.
var allowedTransitions = map[string][]string{
	StatusPendingApproval:    {StatusPending, StatusCancelled},
	StatusPending:            {StatusConfirmed, StatusCancelled, StatusRedirectedExternal},
	StatusConfirmed:          {StatusAssigned, StatusCancelled},
	StatusAssigned:           {StatusInProgress, StatusCancelled},
	StatusInProgress:         {StatusCompleted},
	StatusCompleted:          {},
	StatusCancelled:          {},
	StatusRedirectedExternal: {},
}

func isAllowedStatusTransition(currentStatus, targetStatus string) bool {
	for _, t := range allowedTransitions[currentStatus] {
		if t == targetStatus {
			return true
		}
	}
	return false
}

func IsTerminal(status string) bool {
	switch status {
	case StatusCompleted, StatusCancelled, StatusRedirectedExternal:
		return true
	default:
		return false
	}
}

// ResourceHoldingStatuses are the statuses whose bookings occupy their
// driver and vehicle for the window; the overlap predicate counts only these.
var ResourceHoldingStatuses = []string{StatusConfirmed, StatusAssigned, StatusInProgress}
