// Package node defines the polymorphic entities that handles resolve to.
//
// Every resolvable entity implements the closed Node interface. Concrete
// kinds in this package cover the core's own needs:
//
//   - Placeholder: an explorable stand-in for a holon that is not yet defined
//   - Stub: a degraded node wrapping raw spec text when compilation failed
//   - Spec: a node compiled from a declarative CUE spec
//   - Concept: a node backed by a registered concept lineage
//   - Func: a programmatic node whose aspects are Go functions
//
// Domain content handlers live outside the core and plug in through the
// same interface.
package node

import (
	"context"
	"slices"
	"sort"
)

// Kwargs are keyword arguments passed to an aspect invocation.
type Kwargs map[string]any

// Clone returns a shallow copy. A nil receiver yields an empty map.
func (k Kwargs) Clone() Kwargs {
	out := make(Kwargs, len(k)+1)
	for key, v := range k {
		out[key] = v
	}
	return out
}

// InputKey is the kwarg under which pipelines pass the previous stage output.
const InputKey = "input"

// ObserverMeta identifies who is asking. It is an immutable value derived
// externally for each call; the core never invents a default observer.
type ObserverMeta struct {
	Name         string   `json:"name" yaml:"name"`
	Archetype    string   `json:"archetype" yaml:"archetype"`
	Capabilities []string `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
}

// NewObserverMeta builds an ObserverMeta with a sorted, de-duplicated
// capability set.
func NewObserverMeta(name, archetype string, capabilities ...string) ObserverMeta {
	caps := append([]string(nil), capabilities...)
	sort.Strings(caps)
	caps = slices.Compact(caps)
	if len(caps) == 0 {
		caps = nil
	}
	return ObserverMeta{Name: name, Archetype: archetype, Capabilities: caps}
}

// Can reports whether the observer holds a capability.
func (m ObserverMeta) Can(capability string) bool {
	return slices.Contains(m.Capabilities, capability)
}

// Renderable is the observer-specific view returned by Manifest.
type Renderable struct {
	Handle  string         `json:"handle"`
	Kind    string         `json:"kind"`
	Summary string         `json:"summary"`
	Content map[string]any `json:"content,omitempty"`
}

// Node is the closed interface every resolvable entity implements.
type Node interface {
	// Handle returns the "context.holon" this node answers to.
	Handle() string

	// Affordances returns the aspects available to the observer.
	// Must be a pure function of the node and meta.Archetype.
	Affordances(meta ObserverMeta) []string

	// Manifest renders the node for the observer.
	Manifest(ctx context.Context, observer *ObserverMeta) (Renderable, error)

	// Invoke runs an aspect. Callers gate by Affordances first.
	Invoke(ctx context.Context, aspect string, observer *ObserverMeta, kwargs Kwargs) (any, error)
}
