package lattice

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// Violation names the first consistency rule a position breaks.
type Violation string

const (
	ViolationParentMissing      Violation = "parent_missing"
	ViolationChildMissing       Violation = "child_missing"
	ViolationCycle              Violation = "cycle"
	ViolationAffordanceConflict Violation = "affordance_conflict"
)

// ConsistencyResult is the outcome of a position check.
type ConsistencyResult struct {
	Valid                  bool      `json:"valid"`
	Reason                 string    `json:"reason"`
	Violation              Violation `json:"violation,omitempty"`
	ConflictingAffordances []string  `json:"conflicting_affordances,omitempty"`
	CyclePath              []string  `json:"cycle_path,omitempty"`
	MissingParents         []string  `json:"missing_parents,omitempty"`
	MissingChildren        []string  `json:"missing_children,omitempty"`

	// Descendant is the existing concept that would inherit the conflict,
	// when the conflict appears below the new concept rather than in it.
	Descendant string `json:"descendant,omitempty"`
}

// Proposal is a concept position to check.
type Proposal struct {
	Handle      string
	Parents     []string
	Children    []string
	Affordances []string
}

// CheckPosition checks whether handle can sit below parents and above
// children.
func (l *Lattice) CheckPosition(ctx context.Context, handle string, parents, children []string) (ConsistencyResult, error) {
	return l.Check(ctx, Proposal{Handle: handle, Parents: parents, Children: children})
}

// Check runs the consistency rules in a fixed order and reports the first
// violation:
//
//  1. every parent exists (all missing parents are listed), then every
//     child is a concept in the lattice
//  2. no cycle through the new handle, its parents or its children
//  3. no antagonistic pair among inherited and declared affordances, in the
//     new concept or in any adopted child or its descendants
//  4. constraints are satisfiable
//
// Constraint sets are plain intersections of names, which are always
// satisfiable, so rule 4 never fails.
//
// The error is non-nil only when the parent resolver fails.
func (l *Lattice) Check(ctx context.Context, p Proposal) (ConsistencyResult, error) {
	missing, err := l.missingParents(ctx, p.Parents)
	if err != nil {
		return ConsistencyResult{}, err
	}
	if len(missing) > 0 {
		return ConsistencyResult{
			Violation:      ViolationParentMissing,
			Reason:         "parents not found: " + strings.Join(missing, ", "),
			MissingParents: missing,
		}, nil
	}

	if missing := l.missingChildren(p.Children); len(missing) > 0 {
		return ConsistencyResult{
			Violation:       ViolationChildMissing,
			Reason:          "children not found: " + strings.Join(missing, ", "),
			MissingChildren: missing,
		}, nil
	}

	if cycle := l.findCycle(p.Handle, p.Parents, p.Children); len(cycle) > 0 {
		return ConsistencyResult{
			Violation: ViolationCycle,
			Reason:    "would create a cycle: " + strings.Join(cycle, " -> "),
			CyclePath: cycle,
		}, nil
	}

	affordances := sortedSet(append(l.inheritedAffordances(p.Parents), p.Affordances...))
	if conflict := conflicting(affordances); len(conflict) > 0 {
		return ConsistencyResult{
			Violation:              ViolationAffordanceConflict,
			Reason:                 "inherits antagonistic affordances: " + strings.Join(conflict, ", "),
			ConflictingAffordances: conflict,
		}, nil
	}
	if desc, conflict := l.descendantConflict(p.Children, affordances); len(conflict) > 0 {
		return ConsistencyResult{
			Violation:              ViolationAffordanceConflict,
			Reason:                 desc + " would inherit antagonistic affordances: " + strings.Join(conflict, ", "),
			ConflictingAffordances: conflict,
			Descendant:             desc,
		}, nil
	}

	return ConsistencyResult{Valid: true, Reason: "position is consistent"}, nil
}

// missingParents returns parents found neither in the lattice nor by the
// parent resolver, in request order.
func (l *Lattice) missingParents(ctx context.Context, parents []string) ([]string, error) {
	var missing []string
	for _, p := range parents {
		if _, ok := l.lineages[p]; ok {
			continue
		}
		if l.parents != nil {
			ok, err := l.parents.Exists(ctx, p)
			if err != nil {
				return nil, fmt.Errorf("check parent %s: %w", p, err)
			}
			if ok {
				continue
			}
		}
		if !slices.Contains(missing, p) {
			missing = append(missing, p)
		}
	}
	return missing, nil
}

// missingChildren returns children with no lineage, in request order.
// Only lattice concepts can gain an extends edge.
func (l *Lattice) missingChildren(children []string) []string {
	var missing []string
	for _, c := range children {
		if _, ok := l.lineages[c]; ok || slices.Contains(missing, c) {
			continue
		}
		missing = append(missing, c)
	}
	return missing
}

// descendantConflict finds the first adopted child, or descendant of one,
// whose affordances would conflict once it inherits added. Inheritance is
// a union, so each of them ends up with its current affordances plus added.
func (l *Lattice) descendantConflict(children, added []string) (string, []string) {
	var below []string
	for _, c := range sortedSet(children) {
		below = append(below, c)
		below = append(below, l.Descendants(c)...)
	}
	seen := make(map[string]bool, len(below))
	for _, h := range below {
		if seen[h] {
			continue
		}
		seen[h] = true
		lin, ok := l.lineages[h]
		if !ok {
			continue
		}
		if conflict := conflicting(sortedSet(append(slices.Clone(lin.Affordances), added...))); len(conflict) > 0 {
			return h, conflict
		}
	}
	return "", nil
}

// findCycle returns a cycle the proposed edges would close, or nil.
//
// The new concept adds edges handle → parent and child → handle. A cycle
// exists when handle is its own parent, or when handle or a child is
// reachable from a parent over existing extends edges.
func (l *Lattice) findCycle(handle string, parents, children []string) []string {
	for _, p := range parents {
		if p == handle {
			return []string{handle, handle}
		}
	}
	for _, c := range children {
		if c == handle {
			return []string{handle, handle}
		}
	}

	for _, p := range parents {
		if route := l.route(p, handle); route != nil {
			// handle -> p -> ... -> handle
			return append([]string{handle}, route...)
		}
		for _, c := range children {
			if route := l.route(p, c); route != nil {
				// c -> handle -> p -> ... -> c
				return append([]string{c, handle}, route...)
			}
		}
	}
	return nil
}

// route returns the extends path from start to target inclusive, or nil
// when target is not reachable. start == target yields [start].
func (l *Lattice) route(start, target string) []string {
	if start == target {
		return []string{start}
	}
	prev := map[string]string{start: ""}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		lin, ok := l.lineages[cur]
		if !ok {
			continue
		}
		for _, next := range lin.Extends {
			if _, seen := prev[next]; seen {
				continue
			}
			prev[next] = cur
			if next == target {
				var out []string
				for n := target; n != ""; n = prev[n] {
					out = append(out, n)
				}
				slices.Reverse(out)
				return out
			}
			queue = append(queue, next)
		}
	}
	return nil
}

// conflicting returns every affordance that belongs to an antagonistic
// pair fully present in affordances, sorted.
func conflicting(affordances []string) []string {
	var out []string
	for _, pair := range antagonisticPairs {
		if slices.Contains(affordances, pair[0]) && slices.Contains(affordances, pair[1]) {
			out = append(out, pair[0], pair[1])
		}
	}
	return sortedSet(out)
}
