package clock

import "time"

// Clock abstracts time.Now so pricing rules can be tested at fixed instants.
type Clock interface {
	Now() time.Time
}

// RealClock returns the system time.
type RealClock struct{}

// NewRealClock creates a new RealClock.
func NewRealClock() Clock {
	return &RealClock{}
}

func (c *RealClock) Now() time.Time {
	return time.Now()
}

// MockClock is a settable clock for tests.
type MockClock struct {
	current time.Time
}

// NewMockClock creates a MockClock frozen at startTime.
func NewMockClock(startTime time.Time) *MockClock {
	return &MockClock{current: startTime}
}

func (m *MockClock) Now() time.Time {
	return m.current
}

// Set moves the clock to t.
func (m *MockClock) Set(t time.Time) {
	m.current = t
}

// Advance moves the clock forward by d.
func (m *MockClock) Advance(d time.Duration) {
	m.current = m.current.Add(d)
}
