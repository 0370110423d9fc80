package testutil

import (
	"sync"
	"time"
)

// Epoch is the default start of a DeterministicTime.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// DeterministicTime is a wall-clock stand-in for tests.
//
// Each call to Now advances the time by a fixed step, so lineage timestamps
// are distinct yet identical across runs. It can be reset for test reuse.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicTime struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	calls int64
}

// NewDeterministicTime creates a time source starting at start.
// A zero start means Epoch; a zero step means the time never advances.
func NewDeterministicTime(start time.Time, step time.Duration) *DeterministicTime {
	if start.IsZero() {
		start = Epoch
	}
	return &DeterministicTime{start: start, step: step}
}

// Now returns the current time and advances by one step.
// The first call returns start.
func (d *DeterministicTime) Now() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	t := d.start.Add(time.Duration(d.calls) * d.step)
	d.calls++
	return t
}

// Calls returns how many times Now has been called.
func (d *DeterministicTime) Calls() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// Reset rewinds the time source to start.
func (d *DeterministicTime) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = 0
}

// FixedTime returns a time source that always reports t.
func FixedTime(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
