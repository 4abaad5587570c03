package worktree

import (
	"sync"

	"github.com/alexanderramin/kurva/internal/domain"
)

// Expansion tracks which group rows of the grid are expanded. Each group is
// expanded by default the first time it is seen; later seeds leave the
// user's choice alone.
type Expansion struct {
	mu       sync.Mutex
	expanded map[string]bool
	seeded   map[string]bool
}

func NewExpansion() *Expansion {
	return &Expansion{
		expanded: make(map[string]bool),
		seeded:   make(map[string]bool),
	}
}

// Seed marks every not yet seen non-leaf node as expanded. It returns the
// number of newly seeded nodes.
func (e *Expansion) Seed(roots []*domain.WorkNode) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	added := 0
	Walk(roots, func(n *domain.WorkNode, _ int) {
		if n.IsLeaf() || e.seeded[n.ID] {
			return
		}
		e.seeded[n.ID] = true
		e.expanded[n.ID] = true
		added++
	})
	return added
}

func (e *Expansion) IsExpanded(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.expanded[id]
}

func (e *Expansion) SetExpanded(id string, expanded bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seeded[id] = true
	e.expanded[id] = expanded
}

// Visible returns the nodes shown when collapsed groups hide their subtree.
func (e *Expansion) Visible(roots []*domain.WorkNode) []*domain.WorkNode {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []*domain.WorkNode
	var walk func(n *domain.WorkNode)
	walk = func(n *domain.WorkNode) {
		out = append(out, n)
		if n.IsLeaf() || !e.expanded[n.ID] {
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return out
}
