// Package compiler turns declarative holon specs into nodes.
//
// Specs are CUE documents looked up by handle from a Source. The resolver
// consults the compiler only on a registry miss when a spec exists.
// Validation failures (missing purpose, malformed aspects) are reported as
// CompileError and propagate to the caller; any other failure, such as a
// CUE syntax error, is a BuildError and the resolver degrades it to a stub
// node wrapping the raw spec text.
package compiler

import (
	"context"
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/logos/internal/node"
)

// Spec is raw spec text for one handle.
type Spec struct {
	Handle string
	Source string
	Origin string // file path or other provenance, used in error positions
}

// Compiler compiles a spec into a node.
type Compiler interface {
	Compile(ctx context.Context, spec Spec) (node.Node, error)
}

// BuildError reports a spec that could not be built at all.
// Unlike CompileError it is not a validation failure.
type BuildError struct {
	Handle string
	Err    error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build spec %s: %v", e.Handle, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// IsValidationError reports whether err is a spec validation failure.
func IsValidationError(err error) bool {
	var ce *CompileError
	return errors.As(err, &ce)
}

// CUE compiles CUE spec text.
type CUE struct {
	table node.AffordanceTable
}

// CUEOption configures the CUE compiler.
type CUEOption func(*CUE)

// WithAffordanceTable sets the archetype table given to compiled nodes.
func WithAffordanceTable(table node.AffordanceTable) CUEOption {
	return func(c *CUE) {
		c.table = table
	}
}

// NewCUE creates a CUE compiler.
func NewCUE(opts ...CUEOption) *CUE {
	c := &CUE{table: node.DefaultArchetypes}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile builds spec.Source with a fresh CUE context and compiles it.
func (c *CUE) Compile(ctx context.Context, spec Spec) (node.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cctx := cuecontext.New()
	opts := []cue.BuildOption{}
	if spec.Origin != "" {
		opts = append(opts, cue.Filename(spec.Origin))
	}
	v := cctx.CompileString(spec.Source, opts...)
	if err := v.Err(); err != nil {
		return nil, &BuildError{Handle: spec.Handle, Err: err}
	}

	n, err := CompileValue(spec.Handle, v)
	if err != nil {
		return nil, err
	}
	return n.WithTable(c.table), nil
}
