package harness

import (
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/logos/internal/logos"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s %s\n", event.Seq, event.Kind, event.Subject, event.Outcome)
		}
	}
	return buf.String()
}

// AssertionContext gives lineage assertions access to the Logos under test.
type AssertionContext struct {
	Logos *logos.Logos
}

// EvaluateAssertions evaluates all assertions against the result and
// returns one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var failures []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertLineage:
			if actx == nil || actx.Logos == nil {
				err = fmt.Errorf("assertion[%d]: lineage requires a logos context", i)
			} else {
				err = assertLineage(actx.Logos, assertion)
			}
		case AssertAcyclic:
			if actx == nil || actx.Logos == nil {
				err = fmt.Errorf("assertion[%d]: lattice_acyclic requires a logos context", i)
			} else {
				err = assertAcyclic(actx.Logos)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

// assertTraceContains checks for an entry with the subject and, when
// given, the outcome.
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, event := range trace {
		if event.Subject == a.Subject && (a.Outcome == "" || event.Outcome == a.Outcome) {
			return nil
		}
	}

	expected := a.Subject
	if a.Outcome != "" {
		expected += " with outcome " + a.Outcome
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the first occurrences of the subjects appear
// in order. Other entries may sit between them.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	positions := make(map[string]int)
	for i, event := range trace {
		if _, seen := positions[event.Subject]; !seen {
			positions[event.Subject] = i + 1
		}
	}

	for _, subject := range a.Subjects {
		if positions[subject] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all subjects present: %v", a.Subjects),
				Actual:   "missing subject: " + subject,
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(a.Subjects); i++ {
		prev, curr := a.Subjects[i-1], a.Subjects[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("subjects in order: %v", a.Subjects),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

// assertTraceCount checks that the subject appears exactly Count times.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Subject == a.Subject {
			count++
		}
	}

	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, a.Subject),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertLineage checks a concept's place in the lattice.
func assertLineage(l *logos.Logos, a Assertion) error {
	lin, ok := l.Lattice().Lineage(a.Handle)
	if !ok {
		return &AssertionError{
			Type:     AssertLineage,
			Expected: a.Handle + " in the lattice",
			Actual:   "not defined",
		}
	}

	if a.Depth != nil && lin.Depth != *a.Depth {
		return &AssertionError{
			Type:     AssertLineage,
			Expected: fmt.Sprintf("%s at depth %d", a.Handle, *a.Depth),
			Actual:   fmt.Sprintf("depth %d", lin.Depth),
		}
	}

	if a.Extends != nil && !cmp.Equal(a.Extends, lin.Extends) {
		return &AssertionError{
			Type:     AssertLineage,
			Expected: fmt.Sprintf("%s extends %v", a.Handle, a.Extends),
			Actual:   fmt.Sprintf("extends %v", lin.Extends),
		}
	}

	if a.Affordances != nil && !cmp.Equal(a.Affordances, lin.Affordances) {
		return &AssertionError{
			Type:     AssertLineage,
			Expected: fmt.Sprintf("%s affords %v", a.Handle, a.Affordances),
			Actual:   fmt.Sprintf("affords %v", lin.Affordances),
		}
	}
	return nil
}

// assertAcyclic audits the whole lattice for cycles.
func assertAcyclic(l *logos.Logos) error {
	reports := l.Lattice().Audit()
	if len(reports) == 0 {
		return nil
	}
	cycles := make([]string, len(reports))
	for i, r := range reports {
		cycles[i] = strings.Join(r.Path, " -> ")
	}
	return &AssertionError{
		Type:     AssertAcyclic,
		Expected: "no cycles in the concept lattice",
		Actual:   strings.Join(cycles, "; "),
	}
}
