package harness

import "github.com/roach88/logos/internal/store"

// TraceEvent is one journal entry as seen by assertions and snapshots.
// Content ids are left out: they are covered by the store's own tests and
// would make snapshots unreadable.
type TraceEvent struct {
	Seq     int64  `json:"seq"`
	Kind    string `json:"kind"`
	Span    string `json:"span,omitempty"`
	Subject string `json:"subject"`
	Outcome string `json:"outcome"`
}

func traceFromEntries(entries []store.Entry) []TraceEvent {
	out := make([]TraceEvent, len(entries))
	for i, e := range entries {
		out[i] = TraceEvent{
			Seq:     e.Seq,
			Kind:    e.Kind,
			Span:    e.Span,
			Subject: e.Subject,
			Outcome: e.Outcome,
		}
	}
	return out
}

// StepOutcome records how one step ended.
type StepOutcome struct {
	Index   int    `json:"index"`
	Kind    string `json:"kind"`
	Target  string `json:"target"`
	Outcome string `json:"outcome"`

	// Result is the step's value normalized through JSON. Not part of
	// golden snapshots.
	Result any `json:"-"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	Steps  []StepOutcome `json:"steps"`
	Trace  []TraceEvent  `json:"trace"`
	Errors []string      `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepOutcome{},
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
