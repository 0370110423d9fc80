// Package compose builds and runs morphism pipelines.
//
// A Morphism is one of three variants: the identity, a named leaf wrapping
// a function, or the composition of two morphisms. Identity absorbs at
// construction (Compose(Identity(), f) returns f itself) and composition
// right-associates at construction, so (a ∘ b) ∘ c and a ∘ (b ∘ c) build
// the identical structure. The category laws therefore hold structurally;
// Verifier additionally checks them empirically for a given input.
//
// ComposedPath lifts the same algebra to handles: each stage is a path
// invoked through the gate, and each stage's output becomes the next
// stage's "input" kwarg.
package compose

import (
	"context"
	"strings"
)

// Func is the function wrapped by a leaf morphism.
type Func func(ctx context.Context, input any) (any, error)

// Morphism is a composable transformation.
// The set of implementations is closed to this package.
type Morphism interface {
	// Name identifies the morphism in pipelines and law loci.
	Name() string

	// Invoke applies the morphism to input.
	Invoke(ctx context.Context, input any) (any, error)

	sealed()
}

// IdentityName is the name of the identity morphism.
const IdentityName = "id"

type identity struct{}

// Identity returns the identity morphism.
func Identity() Morphism { return identity{} }

func (identity) Name() string { return IdentityName }

func (identity) Invoke(_ context.Context, input any) (any, error) { return input, nil }

func (identity) sealed() {}

// IsIdentity reports whether m is the identity morphism.
func IsIdentity(m Morphism) bool {
	_, ok := m.(identity)
	return ok
}

// Leaf is a named morphism wrapping a function.
type Leaf struct {
	name string
	fn   Func
}

// NewLeaf creates a leaf morphism.
func NewLeaf(name string, fn Func) *Leaf {
	return &Leaf{name: name, fn: fn}
}

func (l *Leaf) Name() string { return l.name }

func (l *Leaf) Invoke(ctx context.Context, input any) (any, error) {
	return l.fn(ctx, input)
}

func (*Leaf) sealed() {}

// Composed runs First and then Second on First's output.
// First is never itself a Composed: Compose right-associates.
type Composed struct {
	First  Morphism
	Second Morphism
}

// Name joins the stage names with " >> ".
func (c *Composed) Name() string {
	stages := Stages(c)
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Name()
	}
	return strings.Join(names, " >> ")
}

// Invoke runs the stages in order, checking for cancellation between them.
func (c *Composed) Invoke(ctx context.Context, input any) (any, error) {
	out := input
	for _, s := range Stages(c) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var err error
		if out, err = s.Invoke(ctx, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (*Composed) sealed() {}

// Compose returns "first, then second".
//
// Identity is absorbed on either side. A composed first argument is
// re-associated to the right, so the result is a right-leaning chain whose
// shape depends only on the sequence of leaves.
func Compose(first, second Morphism) Morphism {
	switch {
	case IsIdentity(first):
		return second
	case IsIdentity(second):
		return first
	}
	if c, ok := first.(*Composed); ok {
		return Compose(c.First, Compose(c.Second, second))
	}
	return &Composed{First: first, Second: second}
}

// Pipe composes morphisms left to right. An empty pipe is the identity.
func Pipe(ms ...Morphism) Morphism {
	if len(ms) == 0 {
		return Identity()
	}
	out := ms[len(ms)-1]
	for i := len(ms) - 2; i >= 0; i-- {
		out = Compose(ms[i], out)
	}
	return out
}

// Stages flattens m into its non-composed stages, in execution order.
// The identity has no stages.
func Stages(m Morphism) []Morphism {
	var out []Morphism
	for {
		switch v := m.(type) {
		case identity:
			return out
		case *Composed:
			out = append(out, v.First)
			m = v.Second
		default:
			return append(out, m)
		}
	}
}

// Structure renders the composition tree, e.g. "(inc >> (dbl >> sqr))".
func Structure(m Morphism) string {
	if c, ok := m.(*Composed); ok {
		return "(" + Structure(c.First) + " >> " + Structure(c.Second) + ")"
	}
	return m.Name()
}
