package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/newsmesh/newsgraph/internal/service"
)

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// fileDoneMsg carries one batch event from the ingestion workers.
type fileDoneMsg service.BatchEvent

// batchDoneMsg signals the whole batch finished.
type batchDoneMsg struct {
	result *service.BatchResult
	err    error
}

// ingestModel is the bubbletea model for batch ingestion progress.
type ingestModel struct {
	events   <-chan tea.Msg
	progress progress.Model
	theme    Theme

	done     int
	total    int
	lastFile string
	errors   int

	result   *service.BatchResult
	err      error
	finished bool
	quitting bool
}

func newIngestModel(events <-chan tea.Msg) ingestModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)
	return ingestModel{
		events:   events,
		progress: prog,
		theme:    defaultTheme,
	}
}

// waitForEvent blocks on the worker channel.
func (m ingestModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func (m ingestModel) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent(), m.progress.Init())
}

func (m ingestModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case fileDoneMsg:
		m.done = msg.Done
		m.total = msg.Total
		m.lastFile = filepath.Base(msg.Path)
		if msg.Err != nil {
			m.errors++
		}
		return m, m.waitForEvent()

	case batchDoneMsg:
		m.finished = true
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m ingestModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m ingestModel) renderContent() string {
	if m.finished {
		return m.finalView()
	}

	if m.total == 0 {
		return "Scanning for article files...\n"
	}

	pct := float64(m.done) / float64(m.total)
	status := m.theme.statusStyle().Render("[ingesting]")
	progressBar := m.progress.ViewAs(pct)
	counts := fmt.Sprintf("%d/%d files", m.done, m.total)

	line := fmt.Sprintf("%s %s %s", status, progressBar, counts)
	if m.lastFile != "" {
		line += "  " + m.theme.hintStyle().Render(m.lastFile)
	}
	if m.errors > 0 {
		line += "  " + m.theme.errorStyle().Render(fmt.Sprintf("%d errors", m.errors))
	}
	return line + "\n"
}

func (m ingestModel) finalView() string {
	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Ingestion failed: %s\n", m.err))
	}
	if m.result == nil {
		return ""
	}
	return m.theme.completedStyle().Render("✓ Completed") + "\n"
}

// runIngestWithProgress runs the batch in a goroutine and feeds its events
// into the bubbletea display.
func runIngestWithProgress(ctx context.Context, engine *service.Engine, path string, opts service.BatchOptions) (*service.BatchResult, error) {
	events := make(chan tea.Msg, 64)
	opts.Progress = func(ev service.BatchEvent) {
		events <- fileDoneMsg(ev)
	}

	go func() {
		result, err := engine.IngestDirectory(ctx, path, opts)
		events <- batchDoneMsg{result: result, err: err}
	}()

	final, err := tea.NewProgram(newIngestModel(events)).Run()
	if err != nil {
		return nil, fmt.Errorf("progress display: %w", err)
	}

	m, ok := final.(ingestModel)
	if !ok || m.quitting {
		return nil, fmt.Errorf("ingestion interrupted")
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}
