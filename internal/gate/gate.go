// Package gate checks observer affordances before invoking node aspects.
//
// There is no view from nowhere: every invocation needs an observer, and
// the aspects it may invoke are exactly node.Affordances(observer). The
// affordance set is a pure function of the node and the observer's
// archetype, so the same archetype always sees the same base set.
package gate

import (
	"context"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/roach88/logos/internal/errs"
	"github.com/roach88/logos/internal/node"
)

// ObserverRequiredError reports an invocation without an observer.
type ObserverRequiredError struct {
	errs.Sympathy
	Handle string `json:"handle"`
	Aspect string `json:"aspect"`
}

func (e *ObserverRequiredError) Error() string {
	return errs.Format(errs.KindObserverRequired, e.Handle+"."+e.Aspect,
		"an observer is required", e.Sympathy)
}

// Kind implements errs.Kinded.
func (e *ObserverRequiredError) Kind() errs.Kind { return errs.KindObserverRequired }

// AffordanceError reports an aspect the observer's archetype may not invoke.
type AffordanceError struct {
	errs.Sympathy
	Handle    string   `json:"handle"`
	Aspect    string   `json:"aspect"`
	Archetype string   `json:"archetype"`
	Available []string `json:"available"`
}

func (e *AffordanceError) Error() string {
	return errs.Format(errs.KindAffordance, e.Handle+"."+e.Aspect,
		fmt.Sprintf("archetype %q cannot invoke %q (available: %s)",
			e.Archetype, e.Aspect, strings.Join(e.Available, ", ")),
		e.Sympathy)
}

// Kind implements errs.Kinded.
func (e *AffordanceError) Kind() errs.Kind { return errs.KindAffordance }

// Available returns the aspects meta may invoke on n.
func Available(n node.Node, meta node.ObserverMeta) []string {
	return n.Affordances(meta)
}

// RequireAffordance checks that observer may invoke aspect on n without
// invoking it.
func RequireAffordance(n node.Node, aspect string, observer *node.ObserverMeta) error {
	if observer == nil {
		return &ObserverRequiredError{
			Sympathy: errs.Sympathy{
				Why:        "aspects are always invoked by someone",
				Suggestion: "pass an observer with an archetype",
			},
			Handle: n.Handle(),
			Aspect: aspect,
		}
	}

	available := Available(n, *observer)
	if node.Contains(available, aspect) {
		return nil
	}

	e := &AffordanceError{
		Handle:    n.Handle(),
		Aspect:    aspect,
		Archetype: observer.Archetype,
		Available: available,
	}
	e.Why = fmt.Sprintf("%s does not afford %q to the %q archetype", n.Handle(), aspect, observer.Archetype)
	if closest := closestAspect(aspect, available); closest != "" {
		e.Suggestion = "did you mean " + closest + "?"
	} else {
		e.Suggestion = "invoke one of the available aspects or use an archetype that affords " + aspect
	}
	e.Related = available
	return e
}

// CheckAndInvoke gates aspect on n for observer and invokes it.
func CheckAndInvoke(ctx context.Context, n node.Node, aspect string, observer *node.ObserverMeta, kwargs node.Kwargs) (any, error) {
	if err := RequireAffordance(n, aspect, observer); err != nil {
		return nil, err
	}
	return n.Invoke(ctx, aspect, observer, kwargs)
}

// closestAspect returns the available aspect most similar to aspect, or ""
// when none reaches a 0.6 similarity ratio.
func closestAspect(aspect string, available []string) string {
	best, bestRatio := "", 0.6
	a := strings.Split(aspect, "")
	for _, cand := range available {
		r := difflib.NewMatcher(a, strings.Split(cand, "")).Ratio()
		if r >= bestRatio && (best == "" || r > bestRatio) {
			best, bestRatio = cand, r
		}
	}
	return best
}
