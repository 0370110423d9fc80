// Package registry holds nodes registered by handle.
//
// The registry is the source of truth for defined holons; the resolver
// consults it before falling back to JIT compilation or placeholders.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/logos/internal/node"
)

// Registry is the lookup surface the resolver consumes.
type Registry interface {
	Get(handle string) (node.Node, bool)
	Register(handle string, n node.Node) error
	ListHandles(prefix string) []string
}

// Memory is an in-memory Registry.
//
// Like the rest of the core it is single-writer: callers serialize
// Register calls.
type Memory struct {
	nodes map[string]node.Node
}

// NewMemory creates an empty in-memory registry.
func NewMemory() *Memory {
	return &Memory{nodes: make(map[string]node.Node)}
}

// Get returns the node registered for handle.
func (m *Memory) Get(handle string) (node.Node, bool) {
	n, ok := m.nodes[handle]
	return n, ok
}

// Register stores n under handle, replacing any previous node.
// The handle must be "context.holon" and match n.Handle().
func (m *Memory) Register(handle string, n node.Node) error {
	if n == nil {
		return fmt.Errorf("register %s: nil node", handle)
	}
	ctx, holon, ok := strings.Cut(handle, ".")
	if !ok || ctx == "" || holon == "" {
		return fmt.Errorf("register %s: handle must be context.holon", handle)
	}
	if n.Handle() != handle {
		return fmt.Errorf("register %s: node answers to %s", handle, n.Handle())
	}
	m.nodes[handle] = n
	return nil
}

// ListHandles returns registered handles starting with prefix, sorted.
// An empty prefix lists everything.
func (m *Memory) ListHandles(prefix string) []string {
	out := make([]string, 0, len(m.nodes))
	for h := range m.nodes {
		if strings.HasPrefix(h, prefix) {
			out = append(out, h)
		}
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered nodes.
func (m *Memory) Len() int {
	return len(m.nodes)
}

// Reset removes every registered node.
func (m *Memory) Reset() {
	m.nodes = make(map[string]node.Node)
}
