package node

import (
	"context"
	"time"
)

// Concept is the node registered for a concept defined through the lattice.
// Its affordances are the inherited lineage affordances plus those of an
// optional compiled spec.
type Concept struct {
	ConceptHandle string    `json:"handle"`
	Extends       []string  `json:"extends"`
	Inherited     []string  `json:"affordances"`
	Constraints   []string  `json:"constraints"`
	Depth         int       `json:"depth"`
	Justification string    `json:"justification,omitempty"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`

	// Spec is the compiled definition, when one was supplied.
	Spec *Spec `json:"spec,omitempty"`

	table AffordanceTable
}

// WithTable sets the archetype table. A nil table uses DefaultArchetypes.
func (c *Concept) WithTable(table AffordanceTable) *Concept {
	c.table = table
	return c
}

func (c *Concept) Handle() string { return c.ConceptHandle }

func (c *Concept) Affordances(meta ObserverMeta) []string {
	if c.Spec != nil {
		return DedupSorted(append(c.Spec.Affordances(meta), c.Inherited...))
	}
	table := c.table
	if table == nil {
		table = DefaultArchetypes
	}
	return table.For(meta.Archetype, c.Inherited...)
}

func (c *Concept) Manifest(_ context.Context, _ *ObserverMeta) (Renderable, error) {
	summary := c.ConceptHandle + " extends " + joinHandles(c.Extends)
	if c.Spec != nil && c.Spec.Purpose != "" {
		summary = c.Spec.Purpose
	}
	return Renderable{
		Handle:  c.ConceptHandle,
		Kind:    KindConcept,
		Summary: summary,
		Content: map[string]any{
			"extends":       c.Extends,
			"affordances":   c.Inherited,
			"constraints":   c.Constraints,
			"depth":         c.Depth,
			"justification": c.Justification,
			"created_by":    c.CreatedBy,
		},
	}, nil
}

func (c *Concept) Invoke(ctx context.Context, aspect string, observer *ObserverMeta, kwargs Kwargs) (any, error) {
	if aspect == AspectManifest {
		return c.Manifest(ctx, observer)
	}
	if c.Spec != nil {
		if _, declared := c.Spec.Aspects[aspect]; declared {
			return c.Spec.Invoke(ctx, aspect, observer, kwargs)
		}
	}
	if out, ok, err := respondBase(ctx, c, aspect, observer); ok {
		return out, err
	}
	if Contains(c.Inherited, aspect) {
		content := map[string]any{"aspect": aspect, "realized": true, "inherited": true}
		if in, ok := kwargs[InputKey]; ok {
			content[InputKey] = in
		}
		return Renderable{
			Handle:  c.ConceptHandle,
			Kind:    KindResponse,
			Summary: c.ConceptHandle + " affords " + aspect,
			Content: content,
		}, nil
	}
	return respondUnrealized(c.ConceptHandle, aspect, kwargs), nil
}

func joinHandles(hs []string) string {
	switch len(hs) {
	case 0:
		return "nothing"
	case 1:
		return hs[0]
	}
	out := hs[0]
	for _, h := range hs[1:] {
		out += ", " + h
	}
	return out
}

// DedupSorted returns a sorted copy of in without duplicates.
func DedupSorted(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return sortedCopy(out)
}
