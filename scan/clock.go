package scan

import (
	"sync"
	"time"
)

// Clock abstracts time so history timestamps can be tested without
// real delays.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// FakeClock implements Clock for testing with controllable time.
type FakeClock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewFakeClock creates a FakeClock starting at the given time.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (fc *FakeClock) Now() time.Time {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return fc.now
}

// Advance moves the fake clock forward by the given duration.
func (fc *FakeClock) Advance(d time.Duration) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.now = fc.now.Add(d)
}
