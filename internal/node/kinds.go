package node

import (
	"context"
	"fmt"
	"strings"
)

// Node kinds reported in Renderable.Kind.
const (
	KindPlaceholder = "placeholder"
	KindStub        = "stub"
	KindSpec        = "spec"
	KindConcept     = "concept"
	KindFunc        = "func"
	KindWitness     = "witness"
	KindResponse    = "response"
)

// splitHandle splits "context.holon" into its parts.
func splitHandle(handle string) (string, string) {
	ctx, holon, _ := strings.Cut(handle, ".")
	return ctx, holon
}

// respondBase answers the base aspects shared by every kind.
// ok is false when aspect is not a base aspect.
func respondBase(ctx context.Context, n Node, aspect string, observer *ObserverMeta) (any, bool, error) {
	switch aspect {
	case AspectManifest:
		r, err := n.Manifest(ctx, observer)
		return r, true, err
	case AspectWitness:
		return Renderable{
			Handle:  n.Handle(),
			Kind:    KindWitness,
			Summary: "no recorded history for " + n.Handle(),
			Content: map[string]any{"events": 0},
		}, true, nil
	case AspectAffordances:
		var meta ObserverMeta
		if observer != nil {
			meta = *observer
		}
		return n.Affordances(meta), true, nil
	}
	return nil, false, nil
}

// respondUnrealized answers an allowed aspect that has no implementation.
func respondUnrealized(handle, aspect string, kwargs Kwargs) Renderable {
	content := map[string]any{"aspect": aspect, "realized": false}
	if in, ok := kwargs[InputKey]; ok {
		content[InputKey] = in
	}
	return Renderable{
		Handle:  handle,
		Kind:    KindResponse,
		Summary: fmt.Sprintf("%s.%s has no implementation yet", handle, aspect),
		Content: content,
	}
}

// Placeholder stands in for a holon that is not yet defined.
// Unknown holons are explorable, not errors: manifest, witness and
// affordances always work, and archetypes with "define" may define it.
type Placeholder struct {
	handle string
	table  AffordanceTable
}

// NewPlaceholder creates a placeholder for handle.
// A nil table uses DefaultArchetypes.
func NewPlaceholder(handle string, table AffordanceTable) *Placeholder {
	if table == nil {
		table = DefaultArchetypes
	}
	return &Placeholder{handle: handle, table: table}
}

func (p *Placeholder) Handle() string { return p.handle }

func (p *Placeholder) Affordances(meta ObserverMeta) []string {
	return p.table.For(meta.Archetype)
}

func (p *Placeholder) Manifest(_ context.Context, _ *ObserverMeta) (Renderable, error) {
	ctx, holon := splitHandle(p.handle)
	return Renderable{
		Handle:  p.handle,
		Kind:    KindPlaceholder,
		Summary: p.handle + " is not yet defined",
		Content: map[string]any{
			"context": ctx,
			"holon":   holon,
			"exists":  false,
		},
	}, nil
}

func (p *Placeholder) Invoke(ctx context.Context, aspect string, observer *ObserverMeta, kwargs Kwargs) (any, error) {
	if out, ok, err := respondBase(ctx, p, aspect, observer); ok {
		return out, err
	}
	return respondUnrealized(p.handle, aspect, kwargs), nil
}

// Stub is the degraded form of a node whose spec failed to compile for a
// reason other than validation. It keeps the raw spec text explorable.
type Stub struct {
	handle string
	raw    string
	reason string
	table  AffordanceTable
}

// NewStub wraps raw spec text. reason records why compilation degraded.
func NewStub(handle, raw, reason string, table AffordanceTable) *Stub {
	if table == nil {
		table = DefaultArchetypes
	}
	return &Stub{handle: handle, raw: raw, reason: reason, table: table}
}

func (s *Stub) Handle() string { return s.handle }

// Raw returns the wrapped spec text.
func (s *Stub) Raw() string { return s.raw }

func (s *Stub) Affordances(meta ObserverMeta) []string {
	return s.table.For(meta.Archetype)
}

func (s *Stub) Manifest(_ context.Context, _ *ObserverMeta) (Renderable, error) {
	return Renderable{
		Handle:  s.handle,
		Kind:    KindStub,
		Summary: s.handle + " is defined by a spec that could not be compiled",
		Content: map[string]any{
			"spec":   s.raw,
			"reason": s.reason,
		},
	}, nil
}

func (s *Stub) Invoke(ctx context.Context, aspect string, observer *ObserverMeta, kwargs Kwargs) (any, error) {
	if out, ok, err := respondBase(ctx, s, aspect, observer); ok {
		return out, err
	}
	return respondUnrealized(s.handle, aspect, kwargs), nil
}
