package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/alexanderramin/kurva/internal/repository"
	"github.com/alexanderramin/kurva/internal/worktree"
	"github.com/google/uuid"
)

type nodeService struct {
	nodes repository.WorkNodeRepo
}

func NewNodeService(nodes repository.WorkNodeRepo) NodeService {
	return &nodeService{nodes: nodes}
}

func (s *nodeService) Create(ctx context.Context, n *domain.WorkNode) error {
	if err := n.Validate(); err != nil {
		return err
	}
	if err := s.checkParent(ctx, n); err != nil {
		return err
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now
	return s.nodes.Create(ctx, n)
}

// checkParent enforces that a parent belongs to the same project and is a
// grouping node.
func (s *nodeService) checkParent(ctx context.Context, n *domain.WorkNode) error {
	if n.ParentID == nil {
		return nil
	}
	if *n.ParentID == n.ID {
		return fmt.Errorf("node cannot be its own parent")
	}
	parent, err := s.nodes.GetByID(ctx, *n.ParentID)
	if err != nil {
		return fmt.Errorf("loading parent: %w", err)
	}
	if parent.ProjectID != n.ProjectID {
		return fmt.Errorf("parent %q belongs to another project", parent.Name)
	}
	if parent.IsLeaf() {
		return fmt.Errorf("pekerjaan %q cannot have children", parent.Name)
	}
	return nil
}

func (s *nodeService) GetByID(ctx context.Context, id string) (*domain.WorkNode, error) {
	return s.nodes.GetByID(ctx, id)
}

func (s *nodeService) ListByProject(ctx context.Context, projectID string) ([]*domain.WorkNode, error) {
	return s.nodes.ListByProject(ctx, projectID)
}

func (s *nodeService) Tree(ctx context.Context, projectID string) ([]*domain.WorkNode, error) {
	nodes, err := s.nodes.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return worktree.Build(nodes), nil
}

func (s *nodeService) Update(ctx context.Context, n *domain.WorkNode) error {
	if err := n.Validate(); err != nil {
		return err
	}
	if err := s.checkParent(ctx, n); err != nil {
		return err
	}
	n.UpdatedAt = time.Now().UTC()
	return s.nodes.Update(ctx, n)
}

func (s *nodeService) Delete(ctx context.Context, id string) error {
	return s.nodes.Delete(ctx, id)
}
