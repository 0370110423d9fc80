package node

import (
	"context"
)

// Handler implements one aspect of a Func node.
type Handler func(ctx context.Context, observer *ObserverMeta, kwargs Kwargs) (any, error)

type funcAspect struct {
	handler    Handler
	archetypes []string
}

// Func is a programmatic node whose aspects are Go functions.
// It is how content handlers outside the core plug in.
type Func struct {
	handle  string
	summary string
	table   AffordanceTable
	aspects map[string]funcAspect
}

// NewFunc creates an empty Func node.
func NewFunc(handle, summary string) *Func {
	return &Func{
		handle:  handle,
		summary: summary,
		table:   DefaultArchetypes,
		aspects: make(map[string]funcAspect),
	}
}

// WithTable sets the archetype table.
func (f *Func) WithTable(table AffordanceTable) *Func {
	if table != nil {
		f.table = table
	}
	return f
}

// On registers an aspect handler. With no archetypes the aspect is
// afforded to everyone; otherwise only to the listed archetypes.
func (f *Func) On(aspect string, h Handler, archetypes ...string) *Func {
	f.aspects[aspect] = funcAspect{handler: h, archetypes: archetypes}
	return f
}

func (f *Func) Handle() string { return f.handle }

func (f *Func) Affordances(meta ObserverMeta) []string {
	var extras []string
	for name, a := range f.aspects {
		if len(a.archetypes) == 0 || Contains(a.archetypes, meta.Archetype) {
			extras = append(extras, name)
		}
	}
	return f.table.For(meta.Archetype, extras...)
}

func (f *Func) Manifest(ctx context.Context, observer *ObserverMeta) (Renderable, error) {
	if a, ok := f.aspects[AspectManifest]; ok {
		out, err := a.handler(ctx, observer, nil)
		if err != nil {
			return Renderable{}, err
		}
		if r, ok := out.(Renderable); ok {
			return r, nil
		}
	}
	return Renderable{Handle: f.handle, Kind: KindFunc, Summary: f.summary}, nil
}

func (f *Func) Invoke(ctx context.Context, aspect string, observer *ObserverMeta, kwargs Kwargs) (any, error) {
	if a, ok := f.aspects[aspect]; ok {
		return a.handler(ctx, observer, kwargs)
	}
	if out, ok, err := respondBase(ctx, f, aspect, observer); ok {
		return out, err
	}
	return respondUnrealized(f.handle, aspect, kwargs), nil
}
