package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/google/uuid"
)

var testShortIDCounter atomic.Int64

// Date parses a YYYY-MM-DD literal and panics on malformed input.
func Date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// Project options
type ProjectOption func(*domain.Project)

func WithStartDate(d time.Time) ProjectOption {
	return func(p *domain.Project) {
		p.StartDate = d
	}
}

func WithEndDate(d time.Time) ProjectOption {
	return func(p *domain.Project) {
		p.EndDate = &d
	}
}

func WithWeekEndDay(d time.Weekday) ProjectOption {
	return func(p *domain.Project) {
		p.WeekEndDay = d
	}
}

func WithDefaultScale(s domain.TimeScale) ProjectOption {
	return func(p *domain.Project) {
		p.DefaultScale = s
	}
}

func WithProjectStatus(s domain.ProjectStatus) ProjectOption {
	return func(p *domain.Project) {
		p.Status = s
	}
}

func WithShortID(id string) ProjectOption {
	return func(p *domain.Project) {
		p.ShortID = id
	}
}

func defaultShortID(name string) string {
	upper := strings.ToUpper(name)
	var letters []byte
	for i := 0; i < len(upper) && len(letters) < 3; i++ {
		if upper[i] >= 'A' && upper[i] <= 'Z' {
			letters = append(letters, upper[i])
		}
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	n := testShortIDCounter.Add(1)
	return fmt.Sprintf("%s%02d", string(letters), n)
}

// NewTestProject returns a project starting Monday 2025-01-06 whose weeks end
// on Saturday.
func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC().Truncate(time.Second)
	p := &domain.Project{
		ID:           uuid.New().String(),
		ShortID:      defaultShortID(name),
		Name:         name,
		StartDate:    Date("2025-01-06"),
		WeekEndDay:   domain.DefaultWeekEndDay,
		DefaultScale: domain.ScaleWeekly,
		Status:       domain.ProjectActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Phase options
type PhaseOption func(*domain.Phase)

func WithPhaseRange(start, end time.Time) PhaseOption {
	return func(p *domain.Phase) {
		p.StartDate = &start
		p.EndDate = &end
	}
}

func WithPhaseStart(start time.Time) PhaseOption {
	return func(p *domain.Phase) {
		p.StartDate = &start
		p.EndDate = nil
	}
}

func WithGeneration(mode domain.GenerationMode) PhaseOption {
	return func(p *domain.Phase) {
		p.IsAutoGenerated = mode != domain.GenerationNone
		p.GenerationMode = mode
	}
}

// NewTestPhase returns a manual phase with the given order.
func NewTestPhase(projectID string, urutan int, opts ...PhaseOption) *domain.Phase {
	now := time.Now().UTC().Truncate(time.Second)
	p := &domain.Phase{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Urutan:    urutan,
		Name:      fmt.Sprintf("Tahap %d", urutan),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WorkNode options
type NodeOption func(*domain.WorkNode)

func WithNodeKind(k domain.NodeKind) NodeOption {
	return func(n *domain.WorkNode) {
		n.Kind = k
		if k != domain.NodePekerjaan {
			n.Volume = 0
		}
	}
}

func WithParentID(id string) NodeOption {
	return func(n *domain.WorkNode) {
		n.ParentID = &id
	}
}

func WithVolume(v float64, satuan string) NodeOption {
	return func(n *domain.WorkNode) {
		n.Volume = v
		n.Satuan = satuan
	}
}

func WithOrderIndex(i int) NodeOption {
	return func(n *domain.WorkNode) {
		n.OrderIndex = i
	}
}

// NewTestNode returns a pekerjaan leaf with volume 1.
func NewTestNode(projectID, name string, opts ...NodeOption) *domain.WorkNode {
	now := time.Now().UTC().Truncate(time.Second)
	n := &domain.WorkNode{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Kind:      domain.NodePekerjaan,
		Name:      name,
		Volume:    1,
		Satuan:    "ls",
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}
