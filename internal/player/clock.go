package player

import "time"

// Clock abstracts wall time so playback timing is testable without
// real waiting or audio hardware.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system time.
type RealClock struct{}

func (c RealClock) Now() time.Time {
	return time.Now()
}

// MockClock implements Clock for tests; advance it by assigning MockTime.
type MockClock struct {
	MockTime time.Time
}

func (m *MockClock) Now() time.Time {
	return m.MockTime
}

// Advance moves the mock clock forward.
func (m *MockClock) Advance(d time.Duration) {
	m.MockTime = m.MockTime.Add(d)
}
