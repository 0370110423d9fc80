package compose

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/logos/internal/errs"
	"github.com/roach88/logos/internal/node"
	"github.com/roach88/logos/internal/path"
)

// PathSeparator joins stage paths in a pipeline name.
const PathSeparator = " >> "

// Invoker invokes one parsed path for an observer.
// The facade implements it by resolving, gating and invoking.
type Invoker interface {
	InvokePath(ctx context.Context, p path.ParsedPath, observer *node.ObserverMeta, kwargs node.Kwargs) (any, error)
}

// InvokerFunc adapts a function to Invoker.
type InvokerFunc func(ctx context.Context, p path.ParsedPath, observer *node.ObserverMeta, kwargs node.Kwargs) (any, error)

func (f InvokerFunc) InvokePath(ctx context.Context, p path.ParsedPath, observer *node.ObserverMeta, kwargs node.Kwargs) (any, error) {
	return f(ctx, p, observer, kwargs)
}

// ComposedPath is a pipeline of handles. Each stage's output is passed to
// the next stage as the "input" kwarg.
//
// ComposedPath values are immutable; Then and WithoutMinimalOutput return
// new pipelines.
type ComposedPath struct {
	invoker       Invoker
	paths         []path.ParsedPath
	minimalOutput bool
}

// NewComposedPath parses paths into a pipeline. Every path must name an
// aspect. The minimal output principle is enforced by default.
func NewComposedPath(invoker Invoker, paths ...string) (*ComposedPath, error) {
	if len(paths) == 0 {
		return nil, errors.New("compose: at least one path is required")
	}
	parsed := make([]path.ParsedPath, 0, len(paths))
	for _, raw := range paths {
		p, err := parseStage(raw)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, p)
	}
	return &ComposedPath{invoker: invoker, paths: parsed, minimalOutput: true}, nil
}

func parseStage(raw string) (path.ParsedPath, error) {
	p, err := path.Parse(raw)
	if err != nil {
		return path.ParsedPath{}, err
	}
	if p.Aspect == "" {
		return path.ParsedPath{}, fmt.Errorf("compose %s: stage must name an aspect", raw)
	}
	return p, nil
}

// Name is the stage paths joined by " >> ".
func (c *ComposedPath) Name() string {
	names := make([]string, len(c.paths))
	for i, p := range c.paths {
		names[i] = p.FullPath()
	}
	return strings.Join(names, PathSeparator)
}

// Len returns the number of stages.
func (c *ComposedPath) Len() int { return len(c.paths) }

// Paths returns a copy of the stage paths.
func (c *ComposedPath) Paths() []path.ParsedPath {
	return append([]path.ParsedPath(nil), c.paths...)
}

// MinimalOutput reports whether the pipeline enforces the principle.
func (c *ComposedPath) MinimalOutput() bool { return c.minimalOutput }

// Then returns a pipeline with raw appended as the last stage.
func (c *ComposedPath) Then(raw string) (*ComposedPath, error) {
	p, err := parseStage(raw)
	if err != nil {
		return nil, err
	}
	out := c.clone()
	out.paths = append(out.paths, p)
	return out, nil
}

// WithoutMinimalOutput returns a pipeline that does not check stage outputs.
func (c *ComposedPath) WithoutMinimalOutput() *ComposedPath {
	out := c.clone()
	out.minimalOutput = false
	return out
}

func (c *ComposedPath) clone() *ComposedPath {
	return &ComposedPath{
		invoker:       c.invoker,
		paths:         c.Paths(),
		minimalOutput: c.minimalOutput,
	}
}

// Invoke runs the stages in order for observer.
//
// The first stage receives input as its "input" kwarg (when input is not
// nil); later stages receive the previous stage's output. kwargs are passed
// to every stage. Stages run sequentially; the first error stops the
// pipeline.
func (c *ComposedPath) Invoke(ctx context.Context, observer *node.ObserverMeta, input any, kwargs node.Kwargs) (any, error) {
	current := input
	for i := range c.paths {
		out, err := c.invokeStage(ctx, i, observer, current, kwargs)
		if err != nil {
			return nil, err
		}
		current = out
	}
	return current, nil
}

func (c *ComposedPath) invokeStage(ctx context.Context, i int, observer *node.ObserverMeta, input any, kwargs node.Kwargs) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := c.paths[i]

	kw := kwargs.Clone()
	if input != nil {
		kw[node.InputKey] = input
	}

	out, err := c.invoker.InvokePath(ctx, p, observer, kw)
	if err != nil {
		return nil, err
	}

	if c.minimalOutput && p.BoolClause(path.ClauseMinimalOutput, true) {
		if typ, ok := CheckMinimalOutput(out); !ok {
			return nil, &CompositionViolationError{
				Sympathy: errs.Sympathy{
					Why:        "each stage must emit a single value so the next stage receives one input",
					Suggestion: "return one item per invocation, stream items through an iterator or channel, or add [minimal_output=false] to the stage",
					Related:    []string{c.Name()},
				},
				Stage: i,
				Locus: p.FullPath(),
				Type:  typ,
			}
		}
	}
	return out, nil
}

// AsMorphism lifts the pipeline into a morphism whose stages are leaves
// named by their paths. Each leaf invokes one stage for observer with kwargs.
func (c *ComposedPath) AsMorphism(observer *node.ObserverMeta, kwargs node.Kwargs) Morphism {
	leaves := make([]Morphism, len(c.paths))
	for i, p := range c.paths {
		leaves[i] = NewLeaf(p.FullPath(), func(ctx context.Context, input any) (any, error) {
			return c.invokeStage(ctx, i, observer, input, kwargs)
		})
	}
	return Pipe(leaves...)
}
