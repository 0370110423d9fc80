package lattice

// Root is the root concept every lineage descends from.
const Root = "concept"

// standardParent is a built-in concept new concepts may extend.
type standardParent struct {
	affordances []string
	constraints []string
}

// standardParents are seeded into every lattice below Root.
var standardParents = map[string]standardParent{
	"concept.entity": {
		affordances: []string{"identity", "mutable"},
		constraints: []string{"unique_identity"},
	},
	"concept.process": {
		affordances: []string{"impure", "sequential"},
		constraints: []string{"terminates"},
	},
	"concept.value": {
		affordances: []string{"comparable", "immutable"},
		constraints: []string{"equality_by_value", "referential_transparency"},
	},
	"concept.state": {
		affordances: []string{"mutable", "observable"},
		constraints: []string{"single_writer"},
	},
	"concept.function": {
		affordances: []string{"deterministic", "pure"},
		constraints: []string{"referential_transparency", "terminates"},
	},
	"concept.effect": {
		affordances: []string{"async", "impure"},
		constraints: []string{"idempotent_retry"},
	},
	"concept.stream": {
		affordances: []string{"async", "iterable"},
		constraints: []string{"ordered"},
	},
	"concept.random": {
		affordances: []string{"impure", "stochastic"},
		constraints: []string{"seedable"},
	},
}

// StandardParents returns the built-in parent handles, root first.
func StandardParents() []string {
	return []string{
		Root,
		"concept.entity",
		"concept.process",
		"concept.value",
		"concept.state",
		"concept.function",
		"concept.effect",
		"concept.stream",
		"concept.random",
	}
}

// IsStandard reports whether handle is Root or a built-in parent.
func IsStandard(handle string) bool {
	if handle == Root {
		return true
	}
	_, ok := standardParents[handle]
	return ok
}

// antagonisticPairs are affordances no concept may hold together.
var antagonisticPairs = [][2]string{
	{"mutable", "immutable"},
	{"sync", "async"},
	{"pure", "impure"},
	{"deterministic", "stochastic"},
}
