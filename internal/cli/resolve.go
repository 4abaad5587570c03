package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/kurva/internal/domain"
)

func resolveProject(ctx context.Context, app *App, ref string) (*domain.Project, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, fmt.Errorf("project is required (use --project)")
	}
	return app.Projects.Resolve(ctx, strings.TrimSpace(ref))
}

// resolveNode matches ref against node IDs, unique ID prefixes, then
// case-insensitive names.
func resolveNode(nodes []*domain.WorkNode, ref string) (*domain.WorkNode, error) {
	for _, n := range nodes {
		if n.ID == ref {
			return n, nil
		}
	}

	var matches []*domain.WorkNode
	for _, n := range nodes {
		if strings.HasPrefix(n.ID, ref) {
			matches = append(matches, n)
		}
	}
	if len(matches) == 0 {
		for _, n := range nodes {
			if strings.EqualFold(n.Name, ref) {
				matches = append(matches, n)
			}
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("work item not found: %q", ref)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("work item %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// resolvePhase matches ref against the phase order number, then IDs and
// unique ID prefixes.
func resolvePhase(phases []domain.Phase, ref string) (domain.Phase, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		for _, p := range phases {
			if p.Urutan == n {
				return p, nil
			}
		}
		return domain.Phase{}, fmt.Errorf("no phase number %d", n)
	}

	var matches []domain.Phase
	for _, p := range phases {
		if p.ID == ref {
			return p, nil
		}
		if strings.HasPrefix(p.ID, ref) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return domain.Phase{}, fmt.Errorf("phase not found: %q", ref)
	case 1:
		return matches[0], nil
	default:
		return domain.Phase{}, fmt.Errorf("phase ID prefix %q is ambiguous (%d matches)", ref, len(matches))
	}
}
