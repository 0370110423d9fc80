// Package errs defines the error kinds shared by every LOGOS component.
//
// All LOGOS errors are "sympathetic": besides the failure itself they carry
// why it happened, what the caller could try next, and related handles or
// aspects. Each component owns its concrete error types and embeds Sympathy
// to provide that context uniformly.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind categorizes errors across packages.
type Kind string

const (
	KindPathSyntax          Kind = "PathSyntaxError"
	KindPathNotFound        Kind = "PathNotFoundError"
	KindObserverRequired    Kind = "ObserverRequiredError"
	KindAffordance          Kind = "AffordanceError"
	KindCompositionViolated Kind = "CompositionViolationError"
	KindLawCheckFailed      Kind = "LawCheckFailed"
	KindLineage             Kind = "LineageError"
	KindLattice             Kind = "LatticeError"
	KindCompile             Kind = "CompileError"
)

// Kinded is implemented by every LOGOS error type.
type Kinded interface {
	error
	Kind() Kind
}

// Sympathy is the explanatory context carried by every LOGOS error.
type Sympathy struct {
	// Why explains the cause in domain terms.
	Why string `json:"why,omitempty"`

	// Suggestion is the next thing the caller could try.
	Suggestion string `json:"suggestion,omitempty"`

	// Related lists handles, aspects or contexts near the failure.
	Related []string `json:"related,omitempty"`
}

// Explain renders the sympathetic context as trailing sentences.
// Returns "" when there is nothing to add.
func (s Sympathy) Explain() string {
	var b strings.Builder
	if s.Why != "" {
		b.WriteString(" Why: ")
		b.WriteString(s.Why)
	}
	if s.Suggestion != "" {
		b.WriteString(" Try: ")
		b.WriteString(s.Suggestion)
	}
	if len(s.Related) > 0 {
		b.WriteString(" Related: ")
		b.WriteString(strings.Join(s.Related, ", "))
	}
	return b.String()
}

// Format renders the canonical "<Kind>@<locus>: <message>" error string.
// The "@<locus>" part is omitted when locus is empty.
func Format(kind Kind, locus, message string, s Sympathy) string {
	head := string(kind)
	if locus != "" {
		head = fmt.Sprintf("%s@%s", kind, locus)
	}
	return head + ": " + message + s.Explain()
}

// KindOf returns the Kind of the first LOGOS error in err's chain.
// Returns "" if err is nil or carries no Kind.
func KindOf(err error) Kind {
	var k Kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return ""
}

// Is reports whether err's chain contains a LOGOS error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Details returns s. Error types embedding Sympathy inherit it, which lets
// SympathyOf reach the context through any wrapping.
func (s Sympathy) Details() Sympathy { return s }

// Sympathetic is implemented by every error type embedding Sympathy.
type Sympathetic interface {
	error
	Details() Sympathy
}

// SympathyOf returns the context of the first sympathetic error in err's
// chain.
func SympathyOf(err error) (Sympathy, bool) {
	var s Sympathetic
	if errors.As(err, &s) {
		return s.Details(), true
	}
	return Sympathy{}, false
}
