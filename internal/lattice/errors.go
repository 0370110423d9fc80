package lattice

import (
	"fmt"
	"strings"

	"github.com/roach88/logos/internal/errs"
)

// LineageError reports an invalid lineage: no parents, missing parents or
// children, or a handle that is already defined.
type LineageError struct {
	errs.Sympathy
	Handle  string   `json:"handle"`
	Message string   `json:"message"`
	Missing []string `json:"missing,omitempty"`
}

func (e *LineageError) Error() string {
	return errs.Format(errs.KindLineage, e.Handle, e.Message, e.Sympathy)
}

// Kind implements errs.Kinded.
func (e *LineageError) Kind() errs.Kind { return errs.KindLineage }

// LatticeError reports a position that would make the lattice inconsistent.
type LatticeError struct {
	errs.Sympathy
	Handle string            `json:"handle"`
	Result ConsistencyResult `json:"result"`
}

func (e *LatticeError) Error() string {
	return errs.Format(errs.KindLattice, e.Handle,
		fmt.Sprintf("%s: %s", e.Result.Violation, e.Result.Reason), e.Sympathy)
}

// Kind implements errs.Kinded.
func (e *LatticeError) Kind() errs.Kind { return errs.KindLattice }

// Err converts an invalid result into the error define operations raise:
// missing parents or children are a LineageError, every other violation a
// LatticeError.
// Returns nil for a valid result.
func (r ConsistencyResult) Err(handle string) error {
	if r.Valid {
		return nil
	}
	switch r.Violation {
	case ViolationParentMissing:
		return &LineageError{
			Sympathy: errs.Sympathy{
				Why:        "a concept can only extend concepts that exist",
				Suggestion: "define " + strings.Join(r.MissingParents, ", ") + " first or extend a standard parent",
				Related:    r.MissingParents,
			},
			Handle:  handle,
			Message: r.Reason,
			Missing: r.MissingParents,
		}
	case ViolationChildMissing:
		return &LineageError{
			Sympathy: errs.Sympathy{
				Why:        "only concepts already in the lattice can be subsumed",
				Suggestion: "define " + strings.Join(r.MissingChildren, ", ") + " first or drop it from subsumes",
				Related:    r.MissingChildren,
			},
			Handle:  handle,
			Message: r.Reason,
			Missing: r.MissingChildren,
		}
	case ViolationCycle:
		return &LatticeError{
			Sympathy: errs.Sympathy{
				Why:        "concept inheritance must stay acyclic",
				Suggestion: "drop one of the extends or children edges on the path",
				Related:    r.CyclePath,
			},
			Handle: handle,
			Result: r,
		}
	case ViolationAffordanceConflict:
		return &LatticeError{
			Sympathy: errs.Sympathy{
				Why:        "the inherited affordances contradict each other",
				Suggestion: "extend parents that agree on " + strings.Join(r.ConflictingAffordances, " and "),
				Related:    r.ConflictingAffordances,
			},
			Handle: handle,
			Result: r,
		}
	}
	return &LatticeError{Handle: handle, Result: r}
}
