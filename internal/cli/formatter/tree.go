package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/alexanderramin/kurva/internal/worktree"
	"github.com/charmbracelet/lipgloss"
)

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

// RenderWorkTree renders the klasifikasi forest with box-drawing connectors.
// Pekerjaan leaves carry a right-aligned volume badge, followed by the planned
// share when planned has an entry for them. With a non-nil expansion only its
// visible nodes are drawn and a collapsed group reports how many nodes it
// hides.
func RenderWorkTree(roots []*domain.WorkNode, exp *worktree.Expansion, planned map[string]float64) string {
	if len(roots) == 0 {
		return ""
	}

	shown := func(*domain.WorkNode) bool { return true }
	if exp != nil {
		visible := make(map[string]bool)
		for _, n := range exp.Visible(roots) {
			visible[n.ID] = true
		}
		shown = func(n *domain.WorkNode) bool { return visible[n.ID] }
	}

	type line struct {
		content string
		badge   string
	}
	var lines []line
	maxWidth := 0

	var walk func(n *domain.WorkNode, prefix string, last, root bool)
	walk = func(n *domain.WorkNode, prefix string, last, root bool) {
		connector := ""
		childPrefix := prefix
		if !root {
			if last {
				connector = treeCorner
				childPrefix += treeBlank
			} else {
				connector = treeBranch
				childPrefix += treePipe
			}
		}

		var kids []*domain.WorkNode
		for _, c := range n.Children {
			if shown(c) {
				kids = append(kids, c)
			}
		}

		var title, badge string
		if n.IsLeaf() {
			title = StyleFg.Render(n.Name)
			badge = StyleBlue.Render(fmt.Sprintf("[ %s %s ]", formatVolume(n.Volume), n.Satuan))
			if pct, ok := planned[n.ID]; ok {
				badge += " " + PercentStyle(pct).Render(FormatPercent(pct))
			}
		} else {
			title = StyleBold.Render(n.Name) + " " + Dim(string(n.Kind))
			if hidden := countNodes(n.Children); len(kids) == 0 && hidden > 0 {
				title += " " + Dim(fmt.Sprintf("(+%d collapsed)", hidden))
			}
		}
		title = Dim(TruncIDPlain(n.ID)+" ") + title

		content := prefix + connector + title
		maxWidth = max(maxWidth, lipgloss.Width(content))
		lines = append(lines, line{content: content, badge: badge})

		for i, c := range kids {
			walk(c, childPrefix, i == len(kids)-1, false)
		}
	}
	for _, r := range roots {
		walk(r, "", true, true)
	}

	var b strings.Builder
	for _, l := range lines {
		if l.badge == "" {
			b.WriteString(l.content + "\n")
			continue
		}
		pad := max(maxWidth-lipgloss.Width(l.content), 0)
		b.WriteString(l.content + strings.Repeat(" ", pad) + "  " + l.badge + "\n")
	}
	return b.String()
}

func countNodes(nodes []*domain.WorkNode) int {
	n := 0
	worktree.Walk(nodes, func(*domain.WorkNode, int) { n++ })
	return n
}

// TruncIDPlain returns the first 8 characters of an ID without styling.
func TruncIDPlain(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatVolume(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	return s
}
