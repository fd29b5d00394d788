package shift

const (
	StatusScheduled = "SCHEDULED"
	StatusActive    = "ACTIVE"
	StatusCompleted = "COMPLETED"
	StatusAbsent    = "ABSENT"
	StatusCancelled = "CANCELLED"
)

// allowedTransitions encodes the shift state machine in application code so
// validity holds regardless of the storage underneath.
var allowedTransitions = map[string][]string{
	StatusScheduled: {StatusActive, StatusAbsent, StatusCancelled},
	StatusActive:    {StatusCompleted},
	StatusCompleted: {},
	StatusAbsent:    {},
	StatusCancelled: {},
}

func isAllowedStatusTransition(currentStatus, targetStatus string) bool {
	for _, t := range allowedTransitions[currentStatus] {
		if t == targetStatus {
			return true
		}
	}
	return false
}

// IsMatchable reports whether a shift in this status makes its driver
// eligible for booking assignment.
func IsMatchable(status string) bool {
	return status == StatusScheduled || status == StatusActive
}
