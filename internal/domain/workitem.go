package domain

import (
	"fmt"
	"time"
)

// WorkNode is one node of the klasifikasi -> sub-klasifikasi -> pekerjaan
// tree. Children is populated only by tree builders; repositories return flat
// nodes.
type WorkNode struct {
	ID         string
	ProjectID  string
	ParentID   *string
	Kind       NodeKind
	Name       string
	Volume     float64
	Satuan     string
	OrderIndex int
	Children   []*WorkNode
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsLeaf reports whether the node is a pekerjaan leaf that takes part in
// assignment math.
func (n *WorkNode) IsLeaf() bool {
	return n.Kind == NodePekerjaan
}

// Validate checks structural rules that do not need the rest of the tree.
func (n *WorkNode) Validate() error {
	if n.Name == "" {
		return fmt.Errorf("node name is required")
	}
	if !ValidNodeKinds[string(n.Kind)] {
		return fmt.Errorf("invalid node kind %q", n.Kind)
	}
	if n.Volume < 0 {
		return fmt.Errorf("volume must be non-negative, got %v", n.Volume)
	}
	if !n.IsLeaf() && n.Volume != 0 {
		return fmt.Errorf("only pekerjaan nodes carry volume (%s has %v)", n.Kind, n.Volume)
	}
	return nil
}

// WorkItem is the flattened view of a pekerjaan leaf used by the engine.
type WorkItem struct {
	ID       string
	Name     string
	Volume   float64
	Satuan   string
	Level    int
	ParentID *string
	// Path holds ancestor names, root first, excluding the item itself.
	Path []string
}

// CanonicalRecord is the durable, mode independent weekly representation of
// an assignment.
type CanonicalRecord struct {
	WorkItemID string  `validate:"required"`
	WeekNumber int     `validate:"min=1"`
	Proportion float64 `validate:"gte=0,lte=100"`
	Notes      string
}
