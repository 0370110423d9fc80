package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/logos/internal/node"
	"github.com/roach88/logos/internal/store"
)

func architect() *node.ObserverMeta {
	return &node.ObserverMeta{Name: "ada", Archetype: "architect"}
}

func TestRun_PlaceholderInvoke(t *testing.T) {
	scenario := &Scenario{
		Name:     "minimal",
		Observer: architect(),
		Steps: []Step{
			{Invoke: "world.house.manifest"},
		},
		Assertions: []Assertion{
			{Type: AssertTraceContains, Subject: "world.house.manifest", Outcome: "ok"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)

	require.Len(t, result.Trace, 1)
	assert.Equal(t, int64(1), result.Trace[0].Seq)
	assert.Equal(t, store.EntryInvocation, result.Trace[0].Kind)
	assert.Equal(t, "span-0001", result.Trace[0].Span)

	require.Len(t, result.Steps, 1)
	content := result.Steps[0].Result.(map[string]any)
	assert.Equal(t, "placeholder", content["kind"])
}

func TestRun_ExpectedErrorMatches(t *testing.T) {
	scenario := &Scenario{
		Name: "denied",
		Steps: []Step{
			{Invoke: "world.house.blueprint", Observer: &node.ObserverMeta{Name: "s", Archetype: "poet"},
				Expect: &Expect{Error: "AffordanceError"}},
			{Invoke: "world.house.manifest", Expect: &Expect{Error: "ObserverRequiredError"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, "error:AffordanceError", result.Steps[0].Outcome)
	assert.Equal(t, "error:ObserverRequiredError", result.Steps[1].Outcome)
}

func TestRun_UnexpectedErrorFails(t *testing.T) {
	scenario := &Scenario{
		Name:  "unexpected",
		Steps: []Step{{Invoke: "world.house.manifest"}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "steps[0] invoke world.house.manifest: unexpected error")
}

func TestRun_WrongErrorKindFails(t *testing.T) {
	scenario := &Scenario{
		Name:     "wrong_kind",
		Observer: architect(),
		Steps: []Step{
			{Invoke: "nowhere.house.manifest", Expect: &Expect{Error: "AffordanceError"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "expected AffordanceError, got PathNotFoundError")
}

func TestRun_ExpectedErrorButSucceeded(t *testing.T) {
	scenario := &Scenario{
		Name:     "no_error",
		Observer: architect(),
		Steps: []Step{
			{Invoke: "world.house.manifest", Expect: &Expect{Error: "AffordanceError"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "expected AffordanceError, got success")
}

func TestRun_ResultMismatchShowsDiff(t *testing.T) {
	scenario := &Scenario{
		Name:     "mismatch",
		Observer: architect(),
		Steps: []Step{
			{Invoke: "world.house.manifest", Expect: &Expect{Result: map[string]any{"kind": "concept"}}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "result mismatch (-want +got)")
}

func TestRun_FailedAssertion(t *testing.T) {
	scenario := &Scenario{
		Name:     "assert",
		Observer: architect(),
		Steps:    []Step{{Invoke: "world.house.manifest"}},
		Assertions: []Assertion{
			{Type: AssertTraceCount, Subject: "world.house.manifest", Count: 2},
			{Type: AssertLineage, Handle: "concept.shelter"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "2 occurrences of world.house.manifest")
	assert.Contains(t, result.Errors[1], "not defined")
}

func TestRun_NilScenario(t *testing.T) {
	_, err := Run(nil)
	require.Error(t, err)
}

func TestRunContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunContext(ctx, &Scenario{Name: "x", Steps: []Step{{Invoke: "world.a.manifest"}}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_TestdataScenarios(t *testing.T) {
	paths, err := FindScenarios(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_DoorPipeline(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "door_pipeline.yaml"))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, result.Errors)

	assert.Equal(t, "knock", result.Steps[0].Result)

	laws := result.Steps[1].Result.([]any)
	assert.Len(t, laws, 7)
	for _, l := range laws {
		assert.Equal(t, true, l.(map[string]any)["passed"])
	}

	lineage := result.Steps[3].Result.(map[string]any)
	assert.Equal(t, "concept.portal", lineage["handle"])
	assert.Equal(t, "ada", lineage["created_by"])
	assert.Equal(t, "2024-01-01T00:00:01Z", lineage["created_at"])
	assert.Contains(t, lineage["affordances"], "traversable")
}

func TestRun_Adoption(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "adoption.yaml"))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, result.Errors)

	require.Len(t, result.Steps, 4)
	assert.Equal(t, "error:LatticeError", result.Steps[1].Outcome)
	assert.Equal(t, "error:LineageError", result.Steps[2].Outcome)

	adopter := result.Steps[3].Result.(map[string]any)
	assert.Equal(t, []any{"concept.cat"}, adopter["subsumes"])
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "door_pipeline.yaml"))
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, first.Trace, second.Trace)
}
