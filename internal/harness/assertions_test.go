package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/logos/internal/lattice"
	"github.com/roach88/logos/internal/logos"
)

var sampleTrace = []TraceEvent{
	{Seq: 1, Kind: "invocation", Span: "s1", Subject: "world.house.manifest", Outcome: "ok"},
	{Seq: 2, Kind: "invocation", Span: "s2", Subject: "world.house.blueprint", Outcome: "error:AffordanceError"},
	{Seq: 3, Kind: "lineage", Subject: "concept.shelter", Outcome: "depth=2"},
	{Seq: 4, Kind: "invocation", Span: "s3", Subject: "world.house.blueprint", Outcome: "ok"},
}

func TestAssertTraceContains(t *testing.T) {
	assert.NoError(t, assertTraceContains(sampleTrace, Assertion{Subject: "concept.shelter"}))
	assert.NoError(t, assertTraceContains(sampleTrace, Assertion{Subject: "world.house.blueprint", Outcome: "ok"}))

	err := assertTraceContains(sampleTrace, Assertion{Subject: "world.house.manifest", Outcome: "error:AffordanceError"})
	require.Error(t, err)
	var aerr *AssertionError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, AssertTraceContains, aerr.Type)
	assert.Contains(t, err.Error(), "with outcome error:AffordanceError")
	assert.Contains(t, err.Error(), "[3] lineage concept.shelter depth=2")
}

func TestAssertTraceOrder(t *testing.T) {
	assert.NoError(t, assertTraceOrder(sampleTrace, Assertion{
		Subjects: []string{"world.house.manifest", "world.house.blueprint", "concept.shelter"},
	}))

	err := assertTraceOrder(sampleTrace, Assertion{Subjects: []string{"concept.shelter", "world.house.manifest"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "concept.shelter (pos 3) should be before world.house.manifest (pos 1)")

	err = assertTraceOrder(sampleTrace, Assertion{Subjects: []string{"world.house.manifest", "concept.tent"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing subject: concept.tent")
}

func TestAssertTraceCount(t *testing.T) {
	assert.NoError(t, assertTraceCount(sampleTrace, Assertion{Subject: "world.house.blueprint", Count: 2}))
	assert.NoError(t, assertTraceCount(sampleTrace, Assertion{Subject: "world.tent.manifest", Count: 0}))

	err := assertTraceCount(sampleTrace, Assertion{Subject: "world.house.manifest", Count: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 occurrences")
}

func TestEvaluateAssertions_LineageNeedsContext(t *testing.T) {
	result := NewResult()
	failures := EvaluateAssertions(result, []Assertion{{Type: AssertLineage, Handle: "concept.a"}}, nil)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "requires a logos context")
}

func TestEvaluateAssertions_LatticeAcyclic(t *testing.T) {
	l := logos.New()
	actx := &AssertionContext{Logos: l}
	acyclic := []Assertion{{Type: AssertAcyclic}}

	assert.Empty(t, EvaluateAssertions(NewResult(), acyclic, actx))

	// RegisterLineage skips the position check, so a cycle can be forced in.
	_, err := l.Lattice().RegisterLineage("concept.a", []string{"concept.entity"}, lattice.RegisterOptions{})
	require.NoError(t, err)
	_, err = l.Lattice().RegisterLineage("concept.b", []string{"concept.a"}, lattice.RegisterOptions{Children: []string{"concept.a"}})
	require.NoError(t, err)

	failures := EvaluateAssertions(NewResult(), acyclic, actx)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "concept.a -> concept.b -> concept.a")
}

func TestAssertLineage_Affordances(t *testing.T) {
	l := logos.New()
	actx := &AssertionContext{Logos: l}

	ok := []Assertion{{Type: AssertLineage, Handle: "concept.entity", Affordances: []string{"identity", "mutable"}}}
	assert.Empty(t, EvaluateAssertions(NewResult(), ok, actx))

	wrong := []Assertion{{Type: AssertLineage, Handle: "concept.entity", Affordances: []string{"identity"}}}
	failures := EvaluateAssertions(NewResult(), wrong, actx)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "affords [identity mutable]")
}

func TestMatchSubset(t *testing.T) {
	got := normalize(map[string]any{
		"handle":  "world.house",
		"kind":    "placeholder",
		"content": map[string]any{"exists": false, "holon": "house"},
		"tags":    []string{"a", "b"},
	})

	assert.True(t, matchSubset(normalize(map[string]any{"kind": "placeholder"}), got))
	assert.True(t, matchSubset(normalize(map[string]any{"content": map[string]any{"exists": false}}), got))
	assert.True(t, matchSubset(normalize(map[string]any{"tags": []string{"a", "b"}}), got))
	assert.False(t, matchSubset(normalize(map[string]any{"tags": []string{"a"}}), got))
	assert.False(t, matchSubset(normalize(map[string]any{"kind": "spec"}), got))
	assert.False(t, matchSubset(normalize(map[string]any{"missing": 1}), got))
	assert.True(t, matchSubset(normalize(12), normalize(int64(12))))
}
