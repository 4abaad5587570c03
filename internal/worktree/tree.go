// Package worktree assembles the klasifikasi tree from flat nodes and derives
// the pekerjaan leaves the schedule engine works with.
package worktree

import (
	"sort"

	"github.com/alexanderramin/kurva/internal/domain"
)

// Build links flat nodes into a forest ordered by OrderIndex then name.
// Nodes whose parent is missing become roots. The input nodes are copied;
// their Children fields are not modified.
func Build(nodes []*domain.WorkNode) []*domain.WorkNode {
	byID := make(map[string]*domain.WorkNode, len(nodes))
	copies := make([]*domain.WorkNode, 0, len(nodes))
	for _, n := range nodes {
		c := *n
		c.Children = nil
		byID[c.ID] = &c
		copies = append(copies, &c)
	}

	var roots []*domain.WorkNode
	for _, n := range copies {
		if n.ParentID != nil {
			if parent, ok := byID[*n.ParentID]; ok && parent != n {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}

	sortNodes(roots)
	return roots
}

func sortNodes(nodes []*domain.WorkNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].OrderIndex != nodes[j].OrderIndex {
			return nodes[i].OrderIndex < nodes[j].OrderIndex
		}
		return nodes[i].Name < nodes[j].Name
	})
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}

// Leaves walks the forest depth first and returns every pekerjaan leaf with
// its level and ancestor path.
func Leaves(roots []*domain.WorkNode) []domain.WorkItem {
	var items []domain.WorkItem
	var walk func(n *domain.WorkNode, path []string)
	walk = func(n *domain.WorkNode, path []string) {
		if n.IsLeaf() {
			items = append(items, domain.WorkItem{
				ID:       n.ID,
				Name:     n.Name,
				Volume:   n.Volume,
				Satuan:   n.Satuan,
				Level:    len(path),
				ParentID: n.ParentID,
				Path:     append([]string(nil), path...),
			})
			return
		}
		next := append(append([]string(nil), path...), n.Name)
		for _, c := range n.Children {
			walk(c, next)
		}
	}
	for _, r := range roots {
		walk(r, nil)
	}
	return items
}

// Walk visits every node depth first together with its depth.
func Walk(roots []*domain.WorkNode, fn func(n *domain.WorkNode, depth int)) {
	var walk func(n *domain.WorkNode, depth int)
	walk = func(n *domain.WorkNode, depth int) {
		fn(n, depth)
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	for _, r := range roots {
		walk(r, 0)
	}
}
