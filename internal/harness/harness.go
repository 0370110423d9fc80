package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/logos/internal/compiler"
	"github.com/roach88/logos/internal/compose"
	"github.com/roach88/logos/internal/errs"
	"github.com/roach88/logos/internal/logging"
	"github.com/roach88/logos/internal/logos"
	"github.com/roach88/logos/internal/node"
	"github.com/roach88/logos/internal/store"
	"github.com/roach88/logos/internal/testutil"
)

// SpanPrefix prefixes the spans generated for steps without @span.
const SpanPrefix = "span"

// Harness runs one scenario against its own Logos and journal.
type Harness struct {
	logos    *logos.Logos
	journal  *store.Store
	clock    *testutil.DeterministicTime
	logger   *slog.Logger
	scenario *Scenario
}

// Run executes a scenario and returns the result.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext executes a scenario in a fresh in-memory journal.
//
// A returned error means the scenario could not run at all. Failed
// expectations and assertions are reported in Result.Errors instead.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	return RunWithLogger(ctx, scenario, nil)
}

// RunWithLogger is RunContext with a logger for the Logos under test.
func RunWithLogger(ctx context.Context, scenario *Scenario, logger *slog.Logger) (*Result, error) {
	if scenario == nil {
		return nil, fmt.Errorf("scenario is nil")
	}

	st, err := store.Open(store.MemoryDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		journal:  st,
		clock:    testutil.NewDeterministicTime(testutil.Epoch, time.Second),
		logger:   logging.OrDiscard(logger),
		scenario: scenario,
	}

	opts := []logos.Option{
		logos.WithJournal(st),
		logos.WithSpanGenerator(testutil.NewSequenceSpanGenerator(SpanPrefix)),
		logos.WithClock(h.clock.Now),
		logos.WithLogger(h.logger),
	}
	if scenario.Specs != "" {
		opts = append(opts, logos.WithSpecs(compiler.NewDir(scenario.Specs)))
	}
	if scenario.MinimalOutput != nil {
		opts = append(opts, logos.WithMinimalOutput(*scenario.MinimalOutput))
	}
	h.logos = logos.New(opts...)

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h.executeStep(ctx, i, step, result)
	}

	entries, err := st.Trace(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	result.Trace = traceFromEntries(entries)

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, &AssertionContext{Logos: h.logos}) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) executeStep(ctx context.Context, i int, step Step, result *Result) {
	observer := step.Observer
	if observer == nil {
		observer = h.scenario.Observer
	}

	out, err := h.perform(ctx, step, observer)

	outcome := StepOutcome{
		Index:   i,
		Kind:    step.Kind(),
		Target:  step.Target(),
		Outcome: store.OutcomeOK,
	}
	if err != nil {
		outcome.Outcome = outcomeOf(err)
	} else {
		outcome.Result = normalize(out)
	}
	result.Steps = append(result.Steps, outcome)

	h.logger.Debug("step executed",
		"index", i,
		"kind", outcome.Kind,
		"target", outcome.Target,
		"outcome", outcome.Outcome,
	)

	checkExpect(i, step, outcome, err, result)
}

func (h *Harness) perform(ctx context.Context, step Step, observer *node.ObserverMeta) (any, error) {
	kwargs := node.Kwargs(step.Args)

	switch step.Kind() {
	case StepInvoke:
		return h.logos.Invoke(ctx, step.Invoke, observer, kwargs)

	case StepCompose:
		cp, err := h.logos.Compose(step.Compose...)
		if err != nil {
			return nil, err
		}
		return cp.Invoke(ctx, observer, step.Input, kwargs)

	case StepDefine:
		concept, err := h.logos.DefineConcept(ctx, logos.DefineRequest{
			Handle:        step.Define,
			Extends:       step.Extends,
			Subsumes:      step.Subsumes,
			Justification: step.Justification,
			Spec:          step.Spec,
		}, observer)
		if err != nil {
			return nil, err
		}
		lin, _ := h.logos.Lattice().Lineage(concept.Handle())
		return lin, nil

	case StepLaws:
		ms := make([]compose.Morphism, 0, len(step.Laws))
		for _, raw := range step.Laws {
			m, err := h.logos.Morphism(raw, observer, kwargs)
			if err != nil {
				return nil, err
			}
			ms = append(ms, m)
		}
		results, err := h.logos.VerifyLaws(ctx, step.Input, ms...)
		if err != nil {
			return nil, err
		}
		return results, nil
	}
	return nil, fmt.Errorf("step has no operation")
}

func checkExpect(i int, step Step, outcome StepOutcome, err error, result *Result) {
	expect := step.Expect
	if expect != nil && expect.Error != "" {
		if err == nil {
			result.AddError(fmt.Sprintf("steps[%d] %s %s: expected %s, got success",
				i, outcome.Kind, outcome.Target, expect.Error))
			return
		}
		if got := string(errs.KindOf(err)); got != expect.Error {
			result.AddError(fmt.Sprintf("steps[%d] %s %s: expected %s, got %s: %v",
				i, outcome.Kind, outcome.Target, expect.Error, got, err))
		}
		return
	}

	if err != nil {
		result.AddError(fmt.Sprintf("steps[%d] %s %s: unexpected error: %v",
			i, outcome.Kind, outcome.Target, err))
		return
	}

	if expect != nil && expect.Result != nil {
		want := normalize(expect.Result)
		if !matchSubset(want, outcome.Result) {
			result.AddError(fmt.Sprintf("steps[%d] %s %s: result mismatch (-want +got):\n%s",
				i, outcome.Kind, outcome.Target, cmp.Diff(want, outcome.Result)))
		}
	}
}

func outcomeOf(err error) string {
	if kind := errs.KindOf(err); kind != "" {
		return store.OutcomeError + ":" + string(kind)
	}
	return store.OutcomeError
}

// normalize round-trips v through JSON so YAML expectations and Go results
// compare as the same generic shapes (maps, slices, float64, string, bool).
func normalize(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return string(data)
	}
	return out
}

// matchSubset reports whether got contains want. Maps match when every key
// of want matches; everything else must be equal.
func matchSubset(want, got any) bool {
	switch w := want.(type) {
	case map[string]any:
		g, ok := got.(map[string]any)
		if !ok {
			return false
		}
		for k, wv := range w {
			gv, ok := g[k]
			if !ok || !matchSubset(wv, gv) {
				return false
			}
		}
		return true
	case []any:
		g, ok := got.([]any)
		if !ok || len(g) != len(w) {
			return false
		}
		for i := range w {
			if !matchSubset(w[i], g[i]) {
				return false
			}
		}
		return true
	default:
		return cmp.Equal(want, got)
	}
}
