package resolver

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/roach88/logos/internal/compiler"
	"github.com/roach88/logos/internal/node"
	"github.com/roach88/logos/internal/path"
	"github.com/roach88/logos/internal/registry"
)

// RegistryContext is the default ContextResolver.
//
// Lookup order for "<context>.<holon>":
//  1. the registry
//  2. a spec in the spec source, compiled on demand and registered
//  3. an explorable placeholder
//
// A spec that fails validation propagates its CompileError. Any other
// compile failure degrades to a stub wrapping the raw spec text.
type RegistryContext struct {
	name     string
	registry registry.Registry
	source   compiler.Source
	compiler compiler.Compiler
	table    node.AffordanceTable
	logger   *slog.Logger
}

// RegistryOption configures a RegistryContext.
type RegistryOption func(*RegistryContext)

// WithSpecs enables JIT compilation of specs found in source.
func WithSpecs(source compiler.Source, c compiler.Compiler) RegistryOption {
	return func(rc *RegistryContext) {
		rc.source = source
		rc.compiler = c
	}
}

// WithTable sets the archetype table for placeholders and stubs.
func WithTable(table node.AffordanceTable) RegistryOption {
	return func(rc *RegistryContext) {
		if table != nil {
			rc.table = table
		}
	}
}

// WithRegistryLogger sets the logger.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(rc *RegistryContext) {
		if logger != nil {
			rc.logger = logger
		}
	}
}

// NewRegistryContext creates the default resolver for one context.
func NewRegistryContext(name string, reg registry.Registry, opts ...RegistryOption) *RegistryContext {
	rc := &RegistryContext{
		name:     name,
		registry: reg,
		table:    node.DefaultArchetypes,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// Resolve implements ContextResolver.
func (rc *RegistryContext) Resolve(ctx context.Context, holon string, _ []string) (node.Node, error) {
	handle := rc.name + "." + holon

	if n, ok := rc.registry.Get(handle); ok {
		return n, nil
	}

	if rc.source != nil && rc.compiler != nil {
		if spec, ok := rc.source.Lookup(handle); ok {
			return rc.compile(ctx, spec)
		}
	}

	return node.NewPlaceholder(handle, rc.table), nil
}

func (rc *RegistryContext) compile(ctx context.Context, spec compiler.Spec) (node.Node, error) {
	n, err := rc.compiler.Compile(ctx, spec)
	if err != nil {
		if compiler.IsValidationError(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		rc.logger.Warn("spec compile degraded to stub",
			"handle", spec.Handle,
			"error", err)
		return node.NewStub(spec.Handle, spec.Source, err.Error(), rc.table), nil
	}

	if err := rc.registry.Register(spec.Handle, n); err != nil {
		return nil, err
	}
	rc.logger.Debug("spec compiled", "handle", spec.Handle)
	return n, nil
}

// Standard returns a RegistryContext for each of the five contexts, all
// sharing reg and opts.
func Standard(reg registry.Registry, opts ...RegistryOption) map[string]ContextResolver {
	out := make(map[string]ContextResolver, len(path.Contexts))
	for _, name := range path.Contexts {
		out[name] = NewRegistryContext(name, reg, opts...)
	}
	return out
}
