package app

import (
	"os"
	"strconv"
	"time"
)

// PolicyConfig collects the lifecycle knobs that vary per deployment. All of
// them come from env with workable defaults.
type PolicyConfig struct {
	ApprovalTTL           time.Duration
	ReminderInterval      time.Duration
	ReminderMaxCount      int
	CcMinPositionLevel    int
	ReserveAttempts       int
	OutboxPollInterval    time.Duration
	ExpirySweepInterval   time.Duration
	ReminderSweepInterval time.Duration
}

func LoadPolicyConfig() PolicyConfig {
	return PolicyConfig{
		ApprovalTTL:           envDuration("APPROVAL_TTL", 24*time.Hour),
		ReminderInterval:      envDuration("APPROVAL_REMINDER_INTERVAL", 4*time.Hour),
		ReminderMaxCount:      envInt("APPROVAL_REMINDER_MAX_COUNT", 3),
		CcMinPositionLevel:    envInt("APPROVAL_CC_MIN_POSITION_LEVEL", 5),
		ReserveAttempts:       envInt("BOOKING_RESERVE_ATTEMPTS", 3),
		OutboxPollInterval:    envDuration("OUTBOX_POLL_INTERVAL", 3*time.Second),
		ExpirySweepInterval:   envDuration("APPROVAL_EXPIRY_SWEEP_INTERVAL", time.Minute),
		ReminderSweepInterval: envDuration("APPROVAL_REMINDER_SWEEP_INTERVAL", time.Minute),
	}
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
