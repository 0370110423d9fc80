// Package resolver maps handles to cached nodes.
//
// The cache is keyed by the exact "context.holon" handle; aspects, clauses
// and annotations never participate in the key. On a miss the resolver
// delegates to the pluggable ContextResolver registered for the handle's
// context. Context resolvers must return an explorable placeholder for
// unknown holons: an unknown holon is "not yet defined", while an unknown
// context is an error.
//
// Like the rest of the core the resolver is single-writer. Two concurrent
// misses on the same handle may both construct a node; the last write wins.
package resolver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/roach88/logos/internal/node"
	"github.com/roach88/logos/internal/path"
)

// DefaultSuggestionLimit is how many similar handles a PathNotFoundError lists.
const DefaultSuggestionLimit = 5

// ContextResolver resolves holons within one context.
// rest holds the remaining dot segments after the holon (the aspect, split).
type ContextResolver interface {
	Resolve(ctx context.Context, holon string, rest []string) (node.Node, error)
}

// ContextResolverFunc adapts a function to ContextResolver.
type ContextResolverFunc func(ctx context.Context, holon string, rest []string) (node.Node, error)

func (f ContextResolverFunc) Resolve(ctx context.Context, holon string, rest []string) (node.Node, error) {
	return f(ctx, holon, rest)
}

// Resolver resolves handles through per-context resolvers and caches nodes.
type Resolver struct {
	contexts    map[string]ContextResolver
	cache       map[string]node.Node
	suggestions int
	logger      *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithContextResolver registers cr for the named context. Only the five
// contexts are ever consulted; a resolver for any other name is ignored.
func WithContextResolver(name string, cr ContextResolver) Option {
	return func(r *Resolver) {
		r.contexts[name] = cr
	}
}

// WithContexts registers several context resolvers at once.
func WithContexts(crs map[string]ContextResolver) Option {
	return func(r *Resolver) {
		for name, cr := range crs {
			r.contexts[name] = cr
		}
	}
}

// WithSuggestionLimit sets how many similar handles errors list.
func WithSuggestionLimit(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.suggestions = n
		}
	}
}

// WithLogger sets the logger for cache activity.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a resolver with an empty cache.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		contexts:    make(map[string]ContextResolver),
		cache:       make(map[string]node.Node),
		suggestions: DefaultSuggestionLimit,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve parses raw and resolves its handle.
func (r *Resolver) Resolve(ctx context.Context, raw string) (node.Node, error) {
	p, err := path.Parse(raw)
	if err != nil {
		return nil, err
	}
	return r.ResolveParsed(ctx, p)
}

// ResolveParsed resolves an already parsed path.
// Repeated calls for the same handle return the identical node until the
// cache entry is cleared.
func (r *Resolver) ResolveParsed(ctx context.Context, p path.ParsedPath) (node.Node, error) {
	key := p.Handle()
	if n, ok := r.cache[key]; ok {
		r.logger.Debug("resolver cache hit", "handle", key)
		return n, nil
	}

	if !path.IsContext(p.Context) {
		return nil, r.notFound(p)
	}
	cr, ok := r.contexts[p.Context]
	if !ok {
		return nil, r.notFound(p)
	}

	var rest []string
	if p.Aspect != "" {
		rest = strings.Split(p.Aspect, ".")
	}
	n, err := cr.Resolve(ctx, p.Holon, rest)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", key, err)
	}
	if n == nil {
		return nil, fmt.Errorf("resolve %s: context %q returned no node", key, p.Context)
	}

	r.logger.Debug("resolver cache miss", "handle", key, "kind", fmt.Sprintf("%T", n))
	r.cache[key] = n
	return n, nil
}

// IsResolved reports whether handle ("context.holon") is cached.
func (r *Resolver) IsResolved(handle string) bool {
	_, ok := r.cache[handle]
	return ok
}

// ClearCache drops every cached node.
func (r *Resolver) ClearCache() {
	r.cache = make(map[string]node.Node)
}

// Invalidate drops the cached node for one handle.
func (r *Resolver) Invalidate(handle string) {
	delete(r.cache, handle)
}

// CachedHandles returns the cached handles, sorted.
func (r *Resolver) CachedHandles() []string {
	out := make([]string, 0, len(r.cache))
	for h := range r.cache {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// Contexts returns the contexts that have a resolver, sorted.
func (r *Resolver) Contexts() []string {
	out := make([]string, 0, len(r.contexts))
	for c := range r.contexts {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (r *Resolver) notFound(p path.ParsedPath) *PathNotFoundError {
	handle := p.Handle()
	var suggestions []string
	if len(r.cache) > 0 {
		suggestions = Similar(handle, r.CachedHandles(), r.suggestions)
	} else {
		suggestions = Similar(p.Context, path.Contexts, r.suggestions)
	}

	why := fmt.Sprintf("%q is not one of the contexts %s", p.Context, strings.Join(path.Contexts, ", "))
	if path.IsContext(p.Context) {
		why = fmt.Sprintf("no resolver is registered for context %q", p.Context)
	}

	e := &PathNotFoundError{
		Handle:      handle,
		Context:     p.Context,
		Suggestions: suggestions,
	}
	e.Why = why
	if len(suggestions) > 0 {
		e.Suggestion = "did you mean " + suggestions[0] + "?"
	}
	e.Related = suggestions
	return e
}
