package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/alexanderramin/kurva/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeService_CreateAndTree(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	svc := NewNodeService(e.repos.Nodes)

	project := testutil.NewTestProject("Gedung")
	require.NoError(t, e.repos.Projects.Create(ctx, project))

	group := &domain.WorkNode{ProjectID: project.ID, Kind: domain.NodeKlasifikasi, Name: "Struktur"}
	require.NoError(t, svc.Create(ctx, group))
	assert.NotEmpty(t, group.ID)

	sub := &domain.WorkNode{ProjectID: project.ID, ParentID: &group.ID, Kind: domain.NodeSubKlasifikasi, Name: "Beton"}
	require.NoError(t, svc.Create(ctx, sub))

	second := &domain.WorkNode{ProjectID: project.ID, ParentID: &sub.ID, Kind: domain.NodePekerjaan, Name: "Kolom", Volume: 12, OrderIndex: 1}
	first := &domain.WorkNode{ProjectID: project.ID, ParentID: &sub.ID, Kind: domain.NodePekerjaan, Name: "Sloof", Volume: 8, OrderIndex: 0}
	require.NoError(t, svc.Create(ctx, second))
	require.NoError(t, svc.Create(ctx, first))

	roots, err := svc.Tree(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	require.Len(t, roots[0].Children, 1)
	leaves := roots[0].Children[0].Children
	require.Len(t, leaves, 2)
	assert.Equal(t, "Sloof", leaves[0].Name)
	assert.Equal(t, "Kolom", leaves[1].Name)
}

func TestNodeService_RejectsInvalidParent(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	svc := NewNodeService(e.repos.Nodes)

	project := testutil.NewTestProject("Gedung")
	other := testutil.NewTestProject("Lain")
	require.NoError(t, e.repos.Projects.Create(ctx, project))
	require.NoError(t, e.repos.Projects.Create(ctx, other))

	leaf := testutil.NewTestNode(project.ID, "Galian")
	require.NoError(t, e.repos.Nodes.Create(ctx, leaf))
	foreign := testutil.NewTestNode(other.ID, "Asing", testutil.WithNodeKind(domain.NodeKlasifikasi))
	require.NoError(t, e.repos.Nodes.Create(ctx, foreign))

	err := svc.Create(ctx, &domain.WorkNode{ProjectID: project.ID, ParentID: &leaf.ID, Kind: domain.NodePekerjaan, Name: "Anak"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot have children")

	err = svc.Create(ctx, &domain.WorkNode{ProjectID: project.ID, ParentID: &foreign.ID, Kind: domain.NodePekerjaan, Name: "Anak"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "another project")

	missing := "missing"
	err = svc.Create(ctx, &domain.WorkNode{ProjectID: project.ID, ParentID: &missing, Kind: domain.NodePekerjaan, Name: "Anak"})
	require.Error(t, err)
}

func TestNodeService_RejectsVolumeOnGroup(t *testing.T) {
	e := setupEnv(t)
	svc := NewNodeService(e.repos.Nodes)

	err := svc.Create(context.Background(), &domain.WorkNode{ProjectID: "p", Kind: domain.NodeKlasifikasi, Name: "Berat", Volume: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only pekerjaan nodes carry volume")
}
