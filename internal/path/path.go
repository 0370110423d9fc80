// Package path parses and renders LOGOS handles.
//
// A handle addresses an entity by context and holon, optionally naming an
// aspect to invoke and carrying clauses and annotations:
//
//	CONTEXT "." HOLON ("." ASPECT)? CLAUSE* ANNOTATION*
//	CLAUSE     = "[" MODIFIER ("=" VALUE)? "]"
//	ANNOTATION = "@" MODIFIER "=" VALUE
//
// Example:
//
//	world.house.manifest[phase=DEVELOP][entropy=0.2]@span=dev_001
//
// Parse validates grammar and modifier value types only. Membership of the
// context in the fixed context set is enforced by the resolver, which can
// offer suggestions for near misses.
package path

import (
	"strings"
)

// Contexts are the five top-level namespaces.
const (
	ContextWorld   = "world"
	ContextSelf    = "self"
	ContextConcept = "concept"
	ContextVoid    = "void"
	ContextTime    = "time"
)

// Contexts lists the valid contexts in canonical order.
var Contexts = []string{ContextWorld, ContextSelf, ContextConcept, ContextVoid, ContextTime}

// IsContext reports whether name is one of the five valid contexts.
func IsContext(name string) bool {
	for _, c := range Contexts {
		if c == name {
			return true
		}
	}
	return false
}

// Clause is a bracketed modifier applied to an invocation.
type Clause struct {
	Modifier string `json:"modifier"`
	Value    string `json:"value,omitempty"`
	HasValue bool   `json:"has_value,omitempty"`
}

// String renders the clause in path syntax.
func (c Clause) String() string {
	if c.HasValue {
		return "[" + c.Modifier + "=" + c.Value + "]"
	}
	return "[" + c.Modifier + "]"
}

// Annotation is an "@" metadata marker. Annotations never change semantics.
type Annotation struct {
	Modifier string `json:"modifier"`
	Value    string `json:"value"`
}

// String renders the annotation in path syntax.
func (a Annotation) String() string {
	return "@" + a.Modifier + "=" + a.Value
}

// ParsedPath is the structured form of a handle.
type ParsedPath struct {
	Context     string       `json:"context"`
	Holon       string       `json:"holon"`
	Aspect      string       `json:"aspect,omitempty"`
	Clauses     []Clause     `json:"clauses,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Handle returns the "context.holon" cache key.
func (p ParsedPath) Handle() string {
	return p.Context + "." + p.Holon
}

// Base returns "context.holon[.aspect]" without clauses or annotations.
func (p ParsedPath) Base() string {
	if p.Aspect == "" {
		return p.Handle()
	}
	return p.Handle() + "." + p.Aspect
}

// FullPath re-renders the canonical path string.
// Parse(p.FullPath()) yields a ParsedPath equal to p.
func (p ParsedPath) FullPath() string {
	var b strings.Builder
	b.WriteString(p.Base())
	for _, c := range p.Clauses {
		b.WriteString(c.String())
	}
	for _, a := range p.Annotations {
		b.WriteString(a.String())
	}
	return b.String()
}

// String implements fmt.Stringer.
func (p ParsedPath) String() string {
	return p.FullPath()
}

// WithAspect returns a copy of p addressing a different aspect.
func (p ParsedPath) WithAspect(aspect string) ParsedPath {
	q := p
	q.Aspect = aspect
	q.Clauses = append([]Clause(nil), p.Clauses...)
	q.Annotations = append([]Annotation(nil), p.Annotations...)
	return q
}

// Clause returns the first clause with the given modifier.
func (p ParsedPath) Clause(modifier string) (Clause, bool) {
	for _, c := range p.Clauses {
		if c.Modifier == modifier {
			return c, true
		}
	}
	return Clause{}, false
}

// Annotation returns the first annotation with the given modifier.
func (p ParsedPath) Annotation(modifier string) (Annotation, bool) {
	for _, a := range p.Annotations {
		if a.Modifier == modifier {
			return a, true
		}
	}
	return Annotation{}, false
}

// BoolClause returns the boolean value of a flag clause.
// A bare clause ("[rollback]") is true; an absent clause returns def.
func (p ParsedPath) BoolClause(modifier string, def bool) bool {
	c, ok := p.Clause(modifier)
	if !ok {
		return def
	}
	if !c.HasValue {
		return true
	}
	v, err := parseBool(c.Value)
	if err != nil {
		return def
	}
	return v
}

// Entropy returns the entropy clause value, if present.
func (p ParsedPath) Entropy() (float64, bool) {
	c, ok := p.Clause(ClauseEntropy)
	if !ok {
		return 0, false
	}
	v, err := parseEntropy(c.Value)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Phase returns the phase from the clause, falling back to the annotation.
func (p ParsedPath) Phase() (string, bool) {
	if c, ok := p.Clause(ClausePhase); ok {
		return c.Value, true
	}
	if a, ok := p.Annotation(AnnotationPhase); ok {
		return a.Value, true
	}
	return "", false
}
