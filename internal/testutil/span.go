package testutil

import (
	"fmt"
	"sync"
)

// FixedSpanGenerator generates the same span id every time.
//
// Every invocation without an @span annotation then shares one span, which
// keeps journal traces byte-identical across runs.
//
// Thread-safety: FixedSpanGenerator is stateless and safe for concurrent use.
type FixedSpanGenerator struct {
	span string
}

// NewFixedSpanGenerator creates a new fixed span generator.
// If span is empty, Generate returns "test-span-default".
func NewFixedSpanGenerator(span string) *FixedSpanGenerator {
	if span == "" {
		span = "test-span-default"
	}
	return &FixedSpanGenerator{span: span}
}

// Generate returns the fixed span id.
func (g *FixedSpanGenerator) Generate() string {
	return g.span
}

// SequenceSpanGenerator generates numbered span ids: prefix-0001,
// prefix-0002 and so on. It never runs out.
//
// Thread-safety: SequenceSpanGenerator is safe for concurrent use via internal mutex.
type SequenceSpanGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceSpanGenerator creates a numbered span generator.
// An empty prefix means "span".
func NewSequenceSpanGenerator(prefix string) *SequenceSpanGenerator {
	if prefix == "" {
		prefix = "span"
	}
	return &SequenceSpanGenerator{prefix: prefix}
}

// Generate returns the next numbered span id.
func (g *SequenceSpanGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}

// Reset restarts numbering at 1.
func (g *SequenceSpanGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
