package worktree

import (
	"testing"

	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func sampleNodes() []*domain.WorkNode {
	return []*domain.WorkNode{
		{ID: "k1", Kind: domain.NodeKlasifikasi, Name: "Pekerjaan Persiapan", OrderIndex: 1},
		{ID: "k2", Kind: domain.NodeKlasifikasi, Name: "Pekerjaan Struktur", OrderIndex: 2},
		{ID: "s1", ParentID: ptr("k2"), Kind: domain.NodeSubKlasifikasi, Name: "Pondasi", OrderIndex: 1},
		{ID: "p3", ParentID: ptr("s1"), Kind: domain.NodePekerjaan, Name: "Bore pile", Volume: 40, OrderIndex: 1},
		{ID: "p1", ParentID: ptr("k1"), Kind: domain.NodePekerjaan, Name: "Pembersihan lahan", Volume: 500, OrderIndex: 1},
		{ID: "p2", ParentID: ptr("k1"), Kind: domain.NodePekerjaan, Name: "Bouwplank", Volume: 120, OrderIndex: 2},
	}
}

func TestBuildAndLeaves(t *testing.T) {
	roots := Build(sampleNodes())
	require.Len(t, roots, 2)
	assert.Equal(t, "k1", roots[0].ID)

	items := Leaves(roots)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"p1", "p2", "p3"}, []string{items[0].ID, items[1].ID, items[2].ID})
	assert.Equal(t, []string{"Pekerjaan Struktur", "Pondasi"}, items[2].Path)
	assert.Equal(t, 2, items[2].Level)
	assert.Equal(t, 40.0, items[2].Volume)
}

func TestBuild_OrphanBecomesRoot(t *testing.T) {
	roots := Build([]*domain.WorkNode{
		{ID: "p", ParentID: ptr("missing"), Kind: domain.NodePekerjaan, Name: "Orphan"},
	})
	require.Len(t, roots, 1)
	assert.Equal(t, "p", roots[0].ID)
}

func TestExpansion_SeedIsIdempotent(t *testing.T) {
	roots := Build(sampleNodes())
	e := NewExpansion()

	assert.Equal(t, 3, e.Seed(roots))
	assert.True(t, e.IsExpanded("k2"))
	assert.False(t, e.IsExpanded("p1"), "leaves are never expanded")

	e.SetExpanded("k2", false)
	assert.Equal(t, 0, e.Seed(roots))
	assert.False(t, e.IsExpanded("k2"), "seeding again must not reset a collapsed node")

	var ids []string
	for _, n := range e.Visible(roots) {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"k1", "p1", "p2", "k2"}, ids)
}
