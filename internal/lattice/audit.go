package lattice

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// CycleReport describes a cycle found in the extends graph.
type CycleReport struct {
	Path    []string `json:"path"` // e.g. ["concept.a", "concept.b", "concept.a"]
	Message string   `json:"message"`
}

// Audit scans the whole extends graph for cycles.
//
// CheckPosition keeps the lattice acyclic one position at a time; Audit is
// the global check for lattices built with RegisterLineage alone. It finds
// strongly connected components with Tarjan's algorithm and reports every
// component with more than one member, and every self-loop, as a cycle.
// An acyclic lattice returns an empty list.
func (l *Lattice) Audit() []CycleReport {
	graph := make(map[string][]string, len(l.lineages))
	for h, lin := range l.lineages {
		graph[h] = lin.Extends
	}

	reports := []CycleReport{}
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || (len(scc) == 1 && slices.Contains(graph[scc[0]], scc[0])) {
			reports = append(reports, cycleReport(scc, graph))
		}
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Path[0] < reports[j].Path[0]
	})
	return reports
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order so results are deterministic.
func tarjanSCC(graph map[string][]string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root: pop its component
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sort.Strings(scc)
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for n := range graph {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	for _, n := range nodes {
		if _, visited := indices[n]; !visited {
			strongConnect(n)
		}
	}
	return sccs
}

// cycleReport reports the shortest closed walk from the component's
// smallest member back to itself over extends edges inside the component.
func cycleReport(scc []string, graph map[string][]string) CycleReport {
	start := scc[0]
	if len(scc) == 1 {
		return CycleReport{
			Path:    []string{start, start},
			Message: fmt.Sprintf("concept extends itself: %s", start),
		}
	}

	members := make(map[string]bool, len(scc))
	for _, n := range scc {
		members[n] = true
	}

	// BFS from start; the first edge back into start closes the cycle.
	prev := map[string]string{start: ""}
	queue := []string{start}
	var last string
	for len(queue) > 0 && last == "" {
		cur := queue[0]
		queue = queue[1:]
		for _, w := range graph[cur] {
			if !members[w] {
				continue
			}
			if w == start {
				last = cur
				break
			}
			if _, seen := prev[w]; seen {
				continue
			}
			prev[w] = cur
			queue = append(queue, w)
		}
	}

	path := []string{start}
	for n := last; n != start && n != ""; n = prev[n] {
		path = append(path, n)
	}
	path = append(path, start)
	slices.Reverse(path[1 : len(path)-1])

	return CycleReport{
		Path:    path,
		Message: "cycle in concept lattice: " + strings.Join(path, " -> "),
	}
}
