package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeterministicTime_StartsAtEpoch(t *testing.T) {
	clock := NewDeterministicTime(time.Time{}, time.Second)
	assert.Equal(t, Epoch, clock.Now())
	assert.Equal(t, Epoch.Add(time.Second), clock.Now())
	assert.Equal(t, int64(2), clock.Calls())
}

func TestDeterministicTime_ZeroStepIsFixed(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := NewDeterministicTime(start, 0)

	for i := 0; i < 5; i++ {
		assert.Equal(t, start, clock.Now())
	}
}

func TestDeterministicTime_Reset(t *testing.T) {
	clock := NewDeterministicTime(time.Time{}, time.Minute)
	clock.Now()
	clock.Now()
	clock.Now()

	clock.Reset()
	assert.Equal(t, int64(0), clock.Calls())
	assert.Equal(t, Epoch, clock.Now())
}

func TestDeterministicTime_ThreadSafe(t *testing.T) {
	clock := NewDeterministicTime(time.Time{}, time.Millisecond)
	const goroutines = 50
	const callsEach = 20

	var mu sync.Mutex
	seen := make(map[time.Time]bool)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < callsEach; j++ {
				now := clock.Now()
				mu.Lock()
				seen[now] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, goroutines*callsEach)
}

func TestDeterministicTime_Deterministic(t *testing.T) {
	a := NewDeterministicTime(time.Time{}, time.Second)
	b := NewDeterministicTime(time.Time{}, time.Second)

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Now(), b.Now())
	}
}

func TestFixedTime(t *testing.T) {
	now := FixedTime(Epoch)
	assert.Equal(t, Epoch, now())
	assert.Equal(t, Epoch, now())
}
