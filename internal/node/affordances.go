package node

import (
	"slices"
	"sort"
)

// Base aspects available to every observer on every node.
const (
	AspectManifest    = "manifest"
	AspectWitness     = "witness"
	AspectAffordances = "affordances"
	AspectDefine      = "define"
)

// BaseAspects are offered to all archetypes.
var BaseAspects = []string{AspectManifest, AspectWitness, AspectAffordances}

// AffordanceTable maps archetypes to the extra aspects they may invoke.
type AffordanceTable map[string][]string

// DefaultArchetypes is the standard archetype table.
// Archetypes not listed receive only BaseAspects.
var DefaultArchetypes = AffordanceTable{
	"architect":   {"blueprint", "define", "measure", "renovate"},
	"developer":   {"build", "debug", "define", "deploy"},
	"scientist":   {"analyze", "hypothesize", "measure"},
	"philosopher": {"define", "dialectic", "refine"},
	"poet":        {"describe", "metaphorize"},
	"economist":   {"appraise", "forecast"},
	"admin":       {"define", "inspect", "reset"},
}

// For returns the sorted aspect set for an archetype: base aspects plus the
// archetype's extras plus any node-specific extras.
func (t AffordanceTable) For(archetype string, extras ...string) []string {
	set := make(map[string]struct{}, len(BaseAspects)+len(extras)+4)
	for _, a := range BaseAspects {
		set[a] = struct{}{}
	}
	for _, a := range t[archetype] {
		set[a] = struct{}{}
	}
	for _, a := range extras {
		set[a] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Contains reports whether aspect is in the list.
// Node implementations outside this package are not required to sort.
func Contains(aspects []string, aspect string) bool {
	return slices.Contains(aspects, aspect)
}
