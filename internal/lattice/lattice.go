// Package lattice keeps the concept inheritance DAG consistent.
//
// Lineages live in a flat handle → record map; edges are handle strings in
// each record's Extends (child → parent) and Subsumes (parent → child)
// lists. Lineages are append-only. The root concept and the standard
// parents below it are seeded into every lattice.
//
// Callers check a proposed position with CheckPosition before calling
// RegisterLineage. Like the rest of the core the lattice is single-writer;
// check-then-register is one logical unit.
package lattice

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sort"
	"time"
)

// Lineage is the inheritance record of one concept.
type Lineage struct {
	Handle        string    `json:"handle"`
	Extends       []string  `json:"extends"`
	Subsumes      []string  `json:"subsumes"`
	Affordances   []string  `json:"affordances"`
	Constraints   []string  `json:"constraints"`
	Depth         int       `json:"depth"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	Justification string    `json:"justification,omitempty"`
}

func (l *Lineage) clone() Lineage {
	out := *l
	out.Extends = append([]string(nil), l.Extends...)
	out.Subsumes = append([]string(nil), l.Subsumes...)
	out.Affordances = append([]string(nil), l.Affordances...)
	out.Constraints = append([]string(nil), l.Constraints...)
	return out
}

// ParentResolver reports whether a handle outside the lattice exists.
// Implementations must treat explorable placeholders as non-existent.
type ParentResolver interface {
	Exists(ctx context.Context, handle string) (bool, error)
}

// ParentResolverFunc adapts a function to ParentResolver.
type ParentResolverFunc func(ctx context.Context, handle string) (bool, error)

func (f ParentResolverFunc) Exists(ctx context.Context, handle string) (bool, error) {
	return f(ctx, handle)
}

// Lattice is the concept DAG.
type Lattice struct {
	lineages map[string]*Lineage
	declared map[string]declaration
	parents  ParentResolver
	now      func() time.Time
	logger   *slog.Logger
}

// declaration is what a concept declares itself, apart from what it
// inherits. Inherited sets are recomputed from it when parents change.
type declaration struct {
	affordances []string
	constraints []string
}

// Option configures a Lattice.
type Option func(*Lattice)

// WithParentResolver consults r for parents not in the lattice.
func WithParentResolver(r ParentResolver) Option {
	return func(l *Lattice) {
		l.parents = r
	}
}

// WithClock sets the time source for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(l *Lattice) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Lattice) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a lattice seeded with the standard parents.
func New(opts ...Option) *Lattice {
	l := &Lattice{
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.Reset()
	return l
}

// Reset drops every registered lineage and re-seeds the standard parents.
func (l *Lattice) Reset() {
	l.lineages = make(map[string]*Lineage, len(standardParents)+1)
	l.declared = make(map[string]declaration, len(standardParents)+1)
	created := l.now().UTC()

	root := &Lineage{Handle: Root, CreatedBy: "system", CreatedAt: created}
	l.lineages[Root] = root

	for _, h := range StandardParents()[1:] {
		sp := standardParents[h]
		l.lineages[h] = &Lineage{
			Handle:      h,
			Extends:     []string{Root},
			Affordances: sortedSet(sp.affordances),
			Constraints: sortedSet(sp.constraints),
			Depth:       1,
			CreatedBy:   "system",
			CreatedAt:   created,
		}
		l.declared[h] = declaration{affordances: sp.affordances, constraints: sp.constraints}
		root.Subsumes = append(root.Subsumes, h)
	}
	sort.Strings(root.Subsumes)
}

// Has reports whether handle has a lineage.
func (l *Lattice) Has(handle string) bool {
	_, ok := l.lineages[handle]
	return ok
}

// Lineage returns a copy of the lineage for handle.
func (l *Lattice) Lineage(handle string) (Lineage, bool) {
	lin, ok := l.lineages[handle]
	if !ok {
		return Lineage{}, false
	}
	return lin.clone(), true
}

// Handles returns every lineage handle, sorted.
func (l *Lattice) Handles() []string {
	out := make([]string, 0, len(l.lineages))
	for h := range l.lineages {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// Ancestors returns every handle reachable from handle over extends edges,
// nearest first. handle itself is not included.
func (l *Lattice) Ancestors(handle string) []string {
	return l.walk(handle, func(lin *Lineage) []string { return lin.Extends })
}

// Descendants returns every handle reachable from handle over subsumes
// edges, nearest first. handle itself is not included.
func (l *Lattice) Descendants(handle string) []string {
	return l.walk(handle, func(lin *Lineage) []string { return lin.Subsumes })
}

func (l *Lattice) walk(start string, next func(*Lineage) []string) []string {
	var out []string
	seen := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		lin, ok := l.lineages[cur]
		if !ok {
			continue
		}
		for _, n := range next(lin) {
			if seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
			queue = append(queue, n)
		}
	}
	return out
}

// RegisterOptions carries the optional parts of a new lineage.
type RegisterOptions struct {
	// Children are existing concepts that adopt the new concept as a parent.
	Children []string

	// Affordances and Constraints are declared by the concept itself and
	// added to what it inherits.
	Affordances []string
	Constraints []string

	CreatedBy     string
	Justification string
}

// RegisterLineage records a new concept below parents.
//
// Affordances are the union of the parents' affordances plus the declared
// ones; constraints are the intersection of the parents' constraints plus
// the declared ones; depth is one more than the deepest parent. Each
// parent gains a subsumes edge, and each child in opts.Children gains an
// extends edge to the new concept. Affordances, constraints and depth are
// then recomputed for every descendant of the new concept.
//
// RegisterLineage does not check consistency; call CheckPosition first.
func (l *Lattice) RegisterLineage(handle string, parents []string, opts RegisterOptions) (Lineage, error) {
	if _, exists := l.lineages[handle]; exists {
		return Lineage{}, &LineageError{Handle: handle, Message: "concept is already defined"}
	}
	if len(parents) == 0 {
		return Lineage{}, &LineageError{Handle: handle, Message: "a concept must extend at least one parent"}
	}

	lin := &Lineage{
		Handle:        handle,
		Extends:       sortedSet(parents),
		CreatedBy:     opts.CreatedBy,
		CreatedAt:     l.now().UTC(),
		Justification: opts.Justification,
	}
	l.declared[handle] = declaration{
		affordances: sortedSet(opts.Affordances),
		constraints: sortedSet(opts.Constraints),
	}
	l.inherit(lin)

	l.lineages[handle] = lin
	for _, p := range lin.Extends {
		if parent, ok := l.lineages[p]; ok {
			parent.Subsumes = sortedSet(append(parent.Subsumes, handle))
		}
	}

	for _, c := range sortedSet(opts.Children) {
		child, ok := l.lineages[c]
		if !ok || c == handle {
			continue
		}
		child.Extends = sortedSet(append(child.Extends, handle))
		lin.Subsumes = sortedSet(append(lin.Subsumes, c))
	}
	if len(lin.Subsumes) > 0 {
		l.propagate(handle)
	}

	l.logger.Info("lineage registered",
		"handle", handle,
		"extends", lin.Extends,
		"depth", lin.Depth,
		"affordances", len(lin.Affordances))

	return lin.clone(), nil
}

// inheritedAffordances is the union of the parents' affordances.
func (l *Lattice) inheritedAffordances(parents []string) []string {
	var out []string
	for _, p := range parents {
		if lin, ok := l.lineages[p]; ok {
			out = append(out, lin.Affordances...)
		}
	}
	return out
}

// inheritedConstraints is the intersection of the parents' constraints.
// Parents outside the lattice contribute no constraints and are skipped.
func (l *Lattice) inheritedConstraints(parents []string) []string {
	var out []string
	first := true
	for _, p := range parents {
		lin, ok := l.lineages[p]
		if !ok {
			continue
		}
		if first {
			out = append(out, lin.Constraints...)
			first = false
			continue
		}
		out = intersect(out, lin.Constraints)
	}
	return out
}

func (l *Lattice) depthBelow(parents []string) int {
	depth := 0
	for _, p := range parents {
		if lin, ok := l.lineages[p]; ok && lin.Depth > depth {
			depth = lin.Depth
		}
	}
	return depth + 1
}

// inherit sets the affordances, constraints and depth of lin from its
// parents and its own declaration.
func (l *Lattice) inherit(lin *Lineage) {
	d := l.declared[lin.Handle]
	lin.Affordances = sortedSet(append(l.inheritedAffordances(lin.Extends), d.affordances...))
	lin.Constraints = sortedSet(append(l.inheritedConstraints(lin.Extends), d.constraints...))
	lin.Depth = l.depthBelow(lin.Extends)
}

// propagate re-inherits every descendant of handle, revisiting a node
// whenever one of its parents changed.
func (l *Lattice) propagate(handle string) {
	queue := []string{handle}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range l.lineages[cur].Subsumes {
			child := l.lineages[c]
			before := child.clone()
			l.inherit(child)
			// Depth is bounded by the lattice size unless a cycle was forced in.
			if child.Depth > len(l.lineages) {
				continue
			}
			if child.Depth != before.Depth ||
				!slices.Equal(child.Affordances, before.Affordances) ||
				!slices.Equal(child.Constraints, before.Constraints) {
				queue = append(queue, c)
			}
		}
	}
}

func sortedSet(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, s := range b {
		set[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := set[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
