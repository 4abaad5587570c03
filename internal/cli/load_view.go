package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/kurva/internal/app"
	"github.com/alexanderramin/kurva/internal/cli/formatter"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

type loadProgressMsg struct {
	done, total int
}

type loadDoneMsg struct {
	ws  *app.Workspace
	err error
}

var loadCancelKey = key.NewBinding(key.WithKeys("ctrl+c", "esc"))

// loadModel shows a spinner and a fetch counter while a schedule loads.
type loadModel struct {
	spinner spinner.Model
	title   string
	cancel  context.CancelFunc

	done, total int
	ws          *app.Workspace
	err         error
	finished    bool
}

func newLoadModel(title string, cancel context.CancelFunc) loadModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = formatter.StylePurple
	return loadModel{spinner: s, title: title, cancel: cancel}
}

func (m loadModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m loadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Cancelling still waits for the loader to report back.
		if key.Matches(msg, loadCancelKey) && m.cancel != nil {
			m.cancel()
		}
		return m, nil
	case loadProgressMsg:
		m.done, m.total = msg.done, msg.total
		return m, nil
	case loadDoneMsg:
		m.ws, m.err, m.finished = msg.ws, msg.err, true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m loadModel) View() string {
	if m.finished {
		return ""
	}
	counter := ""
	if m.total > 0 {
		counter = fmt.Sprintf(" %d/%d", m.done, m.total)
	}
	return fmt.Sprintf("  %s %s%s\n", m.spinner.View(), formatter.Dim(m.title), counter)
}

// openWorkspace loads a project's schedule grid. Interactive sessions get a
// spinner with the loader's progress on stderr.
func openWorkspace(cmd *cobra.Command, a *App, projectID string) (*app.Workspace, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if !a.interactive() {
		return a.Schedule.Open(ctx, projectID, nil)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newLoadModel("Loading schedule", cancel),
		tea.WithContext(ctx), tea.WithOutput(cmd.ErrOrStderr()))

	result := make(chan loadDoneMsg, 1)
	go func() {
		ws, err := a.Schedule.Open(ctx, projectID, func(done, total int) {
			p.Send(loadProgressMsg{done: done, total: total})
		})
		result <- loadDoneMsg{ws: ws, err: err}
		p.Send(loadDoneMsg{ws: ws, err: err})
	}()

	// Run stops on loadDoneMsg or when the context is cancelled; either way
	// the loader's own result is authoritative.
	_, _ = p.Run()
	res := <-result
	return res.ws, res.err
}
