package formatter

import (
	"testing"

	"github.com/alexanderramin/kurva/internal/app"
	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/alexanderramin/kurva/internal/timescale"
	"github.com/stretchr/testify/assert"
)

func ganttWorkspace(t *testing.T) *app.Workspace {
	t.Helper()
	var phases []domain.Phase
	for i, s := range []string{"2025-01-06", "2025-01-12", "2025-01-19"} {
		start := date(s)
		end := start.AddDate(0, 0, 5)
		phases = append(phases, domain.Phase{
			ID: s, Urutan: i + 1, StartDate: &start, EndDate: &end,
			IsAutoGenerated: true, GenerationMode: domain.GenerationWeekly,
		})
	}
	return &app.Workspace{
		Project: &domain.Project{Name: "Gudang"},
		Phases:  phases,
		Model:   timescale.Generate(phases, domain.ScaleWeekly),
	}
}

func TestFormatDate(t *testing.T) {
	d := date("2025-04-30")
	assert.Equal(t, "2025-04-30", FormatDate(&d))
	assert.Contains(t, FormatDate(nil), "--")
}

func TestTruncIDPlain(t *testing.T) {
	assert.Equal(t, "12345678", TruncIDPlain("1234567890"))
	assert.Equal(t, "abc", TruncIDPlain("abc"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Galian", truncate("Galian", 10))
	assert.Equal(t, "Gal…", truncate("Galian tanah", 4))
}

func TestFormatVolume(t *testing.T) {
	assert.Equal(t, "12.5", formatVolume(12.5))
	assert.Equal(t, "8", formatVolume(8))
	assert.Equal(t, "0.33", formatVolume(1.0/3))
}
