package errs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type testError struct {
	Sympathy
	kind Kind
}

func (e *testError) Error() string { return Format(e.kind, "x", "boom", e.Sympathy) }
func (e *testError) Kind() Kind    { return e.kind }

func TestFormat_WithLocus(t *testing.T) {
	got := Format(KindPathSyntax, "[entropy=hot]", "entropy must be a float", Sympathy{})
	assert.Equal(t, "PathSyntaxError@[entropy=hot]: entropy must be a float", got)
}

func TestFormat_WithoutLocus(t *testing.T) {
	got := Format(KindLineage, "", "extends is empty", Sympathy{Suggestion: "extend concept"})
	assert.Equal(t, "LineageError: extends is empty Try: extend concept", got)
}

func TestSympathy_Explain(t *testing.T) {
	s := Sympathy{Why: "unknown", Suggestion: "explore", Related: []string{"a", "b"}}
	assert.Equal(t, " Why: unknown Try: explore Related: a, b", s.Explain())
	assert.Empty(t, Sympathy{}.Explain())
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("outer: %w", &testError{kind: KindAffordance})
	assert.Equal(t, KindAffordance, KindOf(err))
	assert.True(t, Is(err, KindAffordance))
	assert.False(t, Is(err, KindLattice))
}

func TestKindOf_Plain(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(fmt.Errorf("plain")))
	assert.False(t, Is(nil, KindAffordance))
}

func TestSympathyOf(t *testing.T) {
	s := Sympathy{Why: "no parent", Related: []string{"concept.entity"}}
	err := fmt.Errorf("define: %w", &testError{Sympathy: s, kind: KindLineage})

	got, ok := SympathyOf(err)
	assert.True(t, ok)
	assert.Equal(t, s, got)

	_, ok = SympathyOf(fmt.Errorf("plain"))
	assert.False(t, ok)
}
