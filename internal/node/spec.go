package node

import (
	"context"
	"fmt"
	"sort"
)

// AnyArchetype keys affordances granted to every archetype in a Spec.
const AnyArchetype = "*"

// SpecAspect is one aspect declared by a compiled spec.
type SpecAspect struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Archetypes restricts the aspect; empty means every archetype.
	Archetypes []string `json:"archetypes,omitempty"`

	// Emit is returned verbatim when HasEmit is true.
	Emit    any  `json:"emit,omitempty"`
	HasEmit bool `json:"has_emit,omitempty"`
}

// Spec is a node compiled from a declarative spec.
//
// Declared aspects return their Emit value when set, and otherwise pass the
// "input" kwarg through, which makes spec nodes usable as pipeline stages.
type Spec struct {
	SpecHandle  string                `json:"handle"`
	Purpose     string                `json:"purpose"`
	Aspects     map[string]SpecAspect `json:"aspects"`
	Grants      map[string][]string   `json:"grants,omitempty"` // archetype → aspects
	Constraints []string              `json:"constraints,omitempty"`
	Properties  []string              `json:"properties,omitempty"`

	table AffordanceTable
}

// WithTable sets the archetype table. A nil table uses DefaultArchetypes.
func (s *Spec) WithTable(table AffordanceTable) *Spec {
	s.table = table
	return s
}

func (s *Spec) Handle() string { return s.SpecHandle }

func (s *Spec) Affordances(meta ObserverMeta) []string {
	table := s.table
	if table == nil {
		table = DefaultArchetypes
	}
	extras := append([]string(nil), s.Grants[AnyArchetype]...)
	extras = append(extras, s.Grants[meta.Archetype]...)
	for name, a := range s.Aspects {
		if len(a.Archetypes) == 0 || Contains(a.Archetypes, meta.Archetype) {
			extras = append(extras, name)
		}
	}
	return table.For(meta.Archetype, extras...)
}

func (s *Spec) Manifest(_ context.Context, _ *ObserverMeta) (Renderable, error) {
	aspects := make([]string, 0, len(s.Aspects))
	for name := range s.Aspects {
		aspects = append(aspects, name)
	}
	return Renderable{
		Handle:  s.SpecHandle,
		Kind:    KindSpec,
		Summary: s.Purpose,
		Content: map[string]any{
			"aspects":     sortedCopy(aspects),
			"constraints": s.Constraints,
			"properties":  s.Properties,
		},
	}, nil
}

func (s *Spec) Invoke(ctx context.Context, aspect string, observer *ObserverMeta, kwargs Kwargs) (any, error) {
	if a, ok := s.Aspects[aspect]; ok {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if a.HasEmit {
			return a.Emit, nil
		}
		if in, ok := kwargs[InputKey]; ok {
			return in, nil
		}
		return Renderable{
			Handle:  s.SpecHandle,
			Kind:    KindResponse,
			Summary: fmt.Sprintf("%s.%s: %s", s.SpecHandle, aspect, a.Description),
			Content: map[string]any{"aspect": aspect, "realized": true},
		}, nil
	}
	if out, ok, err := respondBase(ctx, s, aspect, observer); ok {
		return out, err
	}
	return respondUnrealized(s.SpecHandle, aspect, kwargs), nil
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
