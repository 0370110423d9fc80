package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/logos/internal/store"
)

var (
	_ store.SpanGenerator = (*FixedSpanGenerator)(nil)
	_ store.SpanGenerator = (*SequenceSpanGenerator)(nil)
)

func TestFixedSpanGenerator_ReturnsSameSpan(t *testing.T) {
	gen := NewFixedSpanGenerator("dev_001")

	assert.Equal(t, "dev_001", gen.Generate())
	assert.Equal(t, "dev_001", gen.Generate())
}

func TestFixedSpanGenerator_EmptyDefault(t *testing.T) {
	gen := NewFixedSpanGenerator("")
	assert.Equal(t, "test-span-default", gen.Generate())
}

func TestSequenceSpanGenerator_Numbers(t *testing.T) {
	gen := NewSequenceSpanGenerator("run")

	assert.Equal(t, "run-0001", gen.Generate())
	assert.Equal(t, "run-0002", gen.Generate())

	gen.Reset()
	assert.Equal(t, "run-0001", gen.Generate())
}

func TestSequenceSpanGenerator_DefaultPrefix(t *testing.T) {
	assert.Equal(t, "span-0001", NewSequenceSpanGenerator("").Generate())
}

func TestSequenceSpanGenerator_ThreadSafe(t *testing.T) {
	gen := NewSequenceSpanGenerator("")
	const goroutines = 20
	const callsEach = 50

	results := make([][]string, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		results[i] = make([]string, callsEach)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < callsEach; j++ {
				results[idx][j] = gen.Generate()
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, spans := range results {
		for _, s := range spans {
			require.False(t, seen[s], "duplicate span %s", s)
			seen[s] = true
		}
	}
	assert.Len(t, seen, goroutines*callsEach)
}
