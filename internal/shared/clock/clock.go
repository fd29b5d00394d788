package clock

import "time"

// Clock dipakai semua service yang menghitung expiry/reminder, supaya
// unit test bisa menggeser waktu tanpa time.Sleep.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func System() Clock {
	return systemClock{}
}

// Fixed is a manually advanced clock for tests.
type Fixed struct {
	Current time.Time
}

func NewFixed(t time.Time) *Fixed {
	return &Fixed{Current: t.UTC()}
}

func (f *Fixed) Now() time.Time {
	return f.Current
}

func (f *Fixed) Advance(d time.Duration) {
	f.Current = f.Current.Add(d)
}
