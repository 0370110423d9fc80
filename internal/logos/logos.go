// Package logos is the public face of the engine.
//
// A Logos resolves handles to nodes, invokes aspects through the affordance
// gate, composes paths into pipelines with verifiable category laws, and
// defines concepts in the inheritance lattice. Every invocation, law check
// and definition is written to an optional diagnostic journal.
//
// Logos is single-writer: it holds no locks, so callers serialize use of one
// instance. DefineConcept in particular must not interleave with another
// DefineConcept on the same instance.
package logos

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/logos/internal/compiler"
	"github.com/roach88/logos/internal/compose"
	"github.com/roach88/logos/internal/lattice"
	"github.com/roach88/logos/internal/logging"
	"github.com/roach88/logos/internal/node"
	"github.com/roach88/logos/internal/path"
	"github.com/roach88/logos/internal/registry"
	"github.com/roach88/logos/internal/resolver"
	"github.com/roach88/logos/internal/store"
)

// Logos wires the resolver, gate, composition engine and lattice together.
type Logos struct {
	registry  registry.Registry
	resolver  *resolver.Resolver
	lattice   *lattice.Lattice
	verifier  *compose.Verifier
	compiler  compiler.Compiler
	specs     compiler.Source
	journal   *store.Store
	ownsStore bool
	spans     store.SpanGenerator
	table     node.AffordanceTable
	logger    *slog.Logger

	now           func() time.Time
	minimalOutput bool
	suggestions   int
	comparator    compose.Comparator
	overrides     map[string]resolver.ContextResolver
}

// Option configures a Logos.
type Option func(*Logos)

// WithRegistry sets the node registry. Defaults to an in-memory registry.
func WithRegistry(reg registry.Registry) Option {
	return func(l *Logos) {
		if reg != nil {
			l.registry = reg
		}
	}
}

// WithSpecs enables JIT compilation of specs found in source.
func WithSpecs(source compiler.Source) Option {
	return func(l *Logos) {
		l.specs = source
	}
}

// WithCompiler replaces the CUE spec compiler.
func WithCompiler(c compiler.Compiler) Option {
	return func(l *Logos) {
		if c != nil {
			l.compiler = c
		}
	}
}

// WithJournal records invocations, law checks and definitions in s.
// The caller keeps ownership of s.
func WithJournal(s *store.Store) Option {
	return func(l *Logos) {
		l.journal = s
	}
}

// WithSpanGenerator sets how spans are made for invocations without @span.
func WithSpanGenerator(g store.SpanGenerator) Option {
	return func(l *Logos) {
		if g != nil {
			l.spans = g
		}
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Logos) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock sets the time source for lineage timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Logos) {
		if now != nil {
			l.now = now
		}
	}
}

// WithMinimalOutput toggles the minimal output check of composed paths.
func WithMinimalOutput(enabled bool) Option {
	return func(l *Logos) {
		l.minimalOutput = enabled
	}
}

// WithSuggestionLimit caps the suggestions of a PathNotFoundError.
func WithSuggestionLimit(n int) Option {
	return func(l *Logos) {
		l.suggestions = n
	}
}

// WithAffordanceTable replaces the archetype table.
func WithAffordanceTable(table node.AffordanceTable) Option {
	return func(l *Logos) {
		if table != nil {
			l.table = table
		}
	}
}

// WithComparator sets how law checks compare both sides.
func WithComparator(c compose.Comparator) Option {
	return func(l *Logos) {
		l.comparator = c
	}
}

// WithContextResolver overrides the resolver of one of the five contexts.
// Other names never resolve.
func WithContextResolver(name string, cr resolver.ContextResolver) Option {
	return func(l *Logos) {
		l.overrides[name] = cr
	}
}

// New creates a Logos with an empty registry and a lattice holding only
// the standard parents.
func New(opts ...Option) *Logos {
	l := &Logos{
		registry:      registry.NewMemory(),
		spans:         store.UUIDv7Generator{},
		table:         node.DefaultArchetypes,
		logger:        logging.Discard(),
		now:           time.Now,
		minimalOutput: true,
		suggestions:   resolver.DefaultSuggestionLimit,
		overrides:     make(map[string]resolver.ContextResolver),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.compiler == nil {
		l.compiler = compiler.NewCUE(compiler.WithAffordanceTable(l.table))
	}

	rcOpts := []resolver.RegistryOption{
		resolver.WithTable(l.table),
		resolver.WithRegistryLogger(l.logger),
	}
	if l.specs != nil {
		rcOpts = append(rcOpts, resolver.WithSpecs(l.specs, l.compiler))
	}
	contexts := resolver.Standard(l.registry, rcOpts...)
	for name, cr := range l.overrides {
		contexts[name] = cr
	}
	l.resolver = resolver.New(
		resolver.WithContexts(contexts),
		resolver.WithSuggestionLimit(l.suggestions),
		resolver.WithLogger(l.logger),
	)

	l.lattice = lattice.New(
		lattice.WithParentResolver(lattice.ParentResolverFunc(l.parentExists)),
		lattice.WithClock(l.now),
		lattice.WithLogger(l.logger),
	)
	l.verifier = compose.NewVerifier(compose.WithComparator(l.comparator))

	l.seedStandardConcepts()
	return l
}

// Close closes a journal opened by Open. Journals passed in WithJournal
// stay open.
func (l *Logos) Close() error {
	if l.ownsStore && l.journal != nil {
		return l.journal.Close()
	}
	return nil
}

// Resolver exposes the node cache.
func (l *Logos) Resolver() *resolver.Resolver { return l.resolver }

// Lattice exposes the concept lattice for queries.
func (l *Logos) Lattice() *lattice.Lattice { return l.lattice }

// Registry exposes the node registry.
func (l *Logos) Registry() registry.Registry { return l.registry }

// Journal returns the attached journal, or nil.
func (l *Logos) Journal() *store.Store { return l.journal }

// Resolve returns the node a handle addresses. Any aspect, clause or
// annotation in raw is ignored.
func (l *Logos) Resolve(ctx context.Context, raw string) (node.Node, error) {
	return l.resolver.Resolve(ctx, raw)
}

// Identity returns the identity morphism.
func (l *Logos) Identity() compose.Morphism {
	return compose.Identity()
}

// ListHandles lists registered handles, optionally limited to one context.
func (l *Logos) ListHandles(context string) []string {
	if context == "" {
		return l.registry.ListHandles("")
	}
	return l.registry.ListHandles(context + ".")
}

// Reset clears the node cache, the lattice and (when it supports it) the
// registry. The journal is never cleared.
func (l *Logos) Reset() {
	if r, ok := l.registry.(interface{ Reset() }); ok {
		r.Reset()
	}
	l.resolver.ClearCache()
	l.lattice.Reset()
	l.seedStandardConcepts()
}

// parentExists lets concepts extend nodes registered outside the lattice.
func (l *Logos) parentExists(_ context.Context, handle string) (bool, error) {
	_, ok := l.registry.Get(handle)
	return ok, nil
}

// seedStandardConcepts registers a concept node for each standard parent
// so they can be resolved and listed like defined concepts.
func (l *Logos) seedStandardConcepts() {
	for _, h := range lattice.StandardParents() {
		p, err := path.Parse(h)
		if err != nil || p.Holon == "" {
			continue
		}
		lin, ok := l.lattice.Lineage(h)
		if !ok {
			continue
		}
		if err := l.registry.Register(h, l.conceptNode(lin, nil)); err != nil {
			l.logger.Warn("standard concept not registered", "handle", h, "error", err)
		}
	}
}

func (l *Logos) conceptNode(lin lattice.Lineage, spec *node.Spec) *node.Concept {
	return (&node.Concept{
		ConceptHandle: lin.Handle,
		Extends:       lin.Extends,
		Inherited:     lin.Affordances,
		Constraints:   lin.Constraints,
		Depth:         lin.Depth,
		Justification: lin.Justification,
		CreatedBy:     lin.CreatedBy,
		CreatedAt:     lin.CreatedAt,
		Spec:          spec,
	}).WithTable(l.table)
}
