package logos

import (
	"context"

	"github.com/roach88/logos/internal/compiler"
	"github.com/roach88/logos/internal/errs"
	"github.com/roach88/logos/internal/gate"
	"github.com/roach88/logos/internal/lattice"
	"github.com/roach88/logos/internal/node"
	"github.com/roach88/logos/internal/path"
	"github.com/roach88/logos/internal/store"
)

// DefineRequest describes a new concept.
type DefineRequest struct {
	// Handle is "concept.<holon>".
	Handle string `json:"handle" yaml:"handle"`

	// Extends lists the parents; at least one is required.
	Extends []string `json:"extends" yaml:"extends"`

	// Subsumes lists existing concepts that adopt the new one as a parent.
	Subsumes []string `json:"subsumes,omitempty" yaml:"subsumes,omitempty"`

	Justification string `json:"justification,omitempty" yaml:"justification,omitempty"`

	// Spec is optional CUE source. Its properties become declared
	// affordances and its constraints declared constraints; its aspects
	// become invocable on the concept.
	Spec string `json:"spec,omitempty" yaml:"spec,omitempty"`

	// Affordances and Constraints are declared directly, in addition to
	// anything the spec declares.
	Affordances []string `json:"affordances,omitempty" yaml:"affordances,omitempty"`
	Constraints []string `json:"constraints,omitempty" yaml:"constraints,omitempty"`
}

// DefineConcept adds a concept to the lattice and registers its node.
//
// Checks run in order and the first failure is returned:
//
//  1. Extends is empty: LineageError
//  2. Handle is not a concept.<holon> handle: LineageError
//  3. observer may not "define" the handle: ObserverRequiredError or AffordanceError
//  4. Spec fails to compile: the compiler's error
//  5. the position is inconsistent: LineageError for missing parents or
//     children, LatticeError for cycles and affordance conflicts, including
//     conflicts an adopted child would inherit
//  6. Handle is already defined: LineageError
//
// On success the lineage is registered, the concept node (and the nodes
// of any adopted descendants) is registered and re-resolved on next use,
// and the definition is journaled.
func (l *Logos) DefineConcept(ctx context.Context, req DefineRequest, observer *node.ObserverMeta) (*node.Concept, error) {
	if len(req.Extends) == 0 {
		return nil, &lattice.LineageError{
			Sympathy: errs.Sympathy{
				Why:        "every concept sits below at least one parent in the lattice",
				Suggestion: "extend a standard parent such as concept.entity or concept.value",
				Related:    lattice.StandardParents()[1:],
			},
			Handle:  req.Handle,
			Message: "extends must not be empty",
		}
	}

	p, err := path.Parse(req.Handle)
	if err != nil {
		return nil, err
	}
	if p.Context != path.ContextConcept || p.Aspect != "" || len(p.Clauses) > 0 || len(p.Annotations) > 0 {
		return nil, &lattice.LineageError{
			Sympathy: errs.Sympathy{
				Why:        "concepts live in the concept context and are addressed by handle only",
				Suggestion: "use concept." + p.Holon,
			},
			Handle:  req.Handle,
			Message: "not a concept handle",
		}
	}
	handle := p.Handle()

	current, err := l.resolver.ResolveParsed(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := gate.RequireAffordance(current, node.AspectDefine, observer); err != nil {
		return nil, err
	}

	var spec *node.Spec
	affordances := append([]string(nil), req.Affordances...)
	constraints := append([]string(nil), req.Constraints...)
	if req.Spec != "" {
		spec, err = l.compileConceptSpec(ctx, handle, req.Spec)
		if err != nil {
			return nil, err
		}
		affordances = append(affordances, spec.Properties...)
		constraints = append(constraints, spec.Constraints...)
	}

	res, err := l.lattice.Check(ctx, lattice.Proposal{
		Handle:      handle,
		Parents:     req.Extends,
		Children:    req.Subsumes,
		Affordances: affordances,
	})
	if err != nil {
		return nil, err
	}
	if !res.Valid {
		return nil, res.Err(handle)
	}

	if l.lattice.Has(handle) {
		return nil, &lattice.LineageError{
			Sympathy: errs.Sympathy{
				Why:        "lineages are append-only",
				Suggestion: "choose a new handle or extend " + handle,
			},
			Handle:  handle,
			Message: "concept is already defined",
		}
	}

	lin, err := l.lattice.RegisterLineage(handle, req.Extends, lattice.RegisterOptions{
		Children:      req.Subsumes,
		Affordances:   affordances,
		Constraints:   constraints,
		CreatedBy:     observer.Name,
		Justification: req.Justification,
	})
	if err != nil {
		return nil, err
	}

	concept := l.conceptNode(lin, spec)
	if err := l.registry.Register(handle, concept); err != nil {
		return nil, err
	}
	l.resolver.Invalidate(handle)
	l.refreshDescendants(handle)

	if l.journal != nil {
		if _, err := l.journal.RecordLineage(context.WithoutCancel(ctx), store.Lineage{
			Handle:        lin.Handle,
			Extends:       lin.Extends,
			Depth:         lin.Depth,
			CreatedBy:     lin.CreatedBy,
			Justification: lin.Justification,
		}); err != nil {
			l.logger.Warn("lineage not journaled", "handle", handle, "error", err)
		}
	}

	return concept, nil
}

// compileConceptSpec compiles spec source for a concept. Unlike JIT
// resolution, a spec that fails to build is an error here: the caller
// supplied it explicitly.
func (l *Logos) compileConceptSpec(ctx context.Context, handle, source string) (*node.Spec, error) {
	n, err := l.compiler.Compile(ctx, compiler.Spec{Handle: handle, Source: source, Origin: handle + ".cue"})
	if err != nil {
		return nil, err
	}
	spec, ok := n.(*node.Spec)
	if !ok {
		return nil, &compiler.CompileError{Field: "spec", Message: "compiler did not produce a spec node"}
	}
	return spec, nil
}

// refreshDescendants re-registers concept nodes below handle whose lineage
// changed through adoption.
func (l *Logos) refreshDescendants(handle string) {
	for _, h := range l.lattice.Descendants(handle) {
		lin, ok := l.lattice.Lineage(h)
		if !ok {
			continue
		}
		var spec *node.Spec
		if existing, ok := l.registry.Get(h); ok {
			if c, ok := existing.(*node.Concept); ok {
				spec = c.Spec
			}
		}
		if err := l.registry.Register(h, l.conceptNode(lin, spec)); err != nil {
			l.logger.Warn("descendant not refreshed", "handle", h, "error", err)
			continue
		}
		l.resolver.Invalidate(h)
	}
}
