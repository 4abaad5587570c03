package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/kurva/internal/cli/formatter"
	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

func kurvaHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// proportionForm asks for the share of an item's volume planned in one
// phase. value is pre-filled with the current proportion.
func proportionForm(itemName, phaseLabel string, value *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Proportion of %s in %s (%%)", itemName, phaseLabel)).
				Description("0-100, comma or dot decimals").
				Placeholder("25").
				Value(value).
				Validate(validateProportion),
		),
	).WithTheme(kurvaHuhTheme()).WithShowHelp(false)
}

func validateProportion(s string) error {
	_, err := parseProportionInput(s)
	return err
}

// parseProportionInput accepts "12.5", "12,5" and "12,5%".
func parseProportionInput(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0, fmt.Errorf("enter a percentage")
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || !domain.IsUsableNumber(v) {
		return 0, fmt.Errorf("enter a number")
	}
	if v < 0 || v > domain.MaxProportion {
		return 0, fmt.Errorf("must be between 0 and 100")
	}
	return v, nil
}
