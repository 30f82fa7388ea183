// Package tui is the terminal jobs board.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mrcoldpotato/talentflow-v2/internal/client"
	"github.com/mrcoldpotato/talentflow-v2/internal/models"
)

const requestTimeout = 10 * time.Second

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")).Padding(0, 0, 1, 0)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	rowStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	archivedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true)
	tagStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
)

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	Archive  key.Binding
	Reload   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.MoveUp, k.MoveDown, k.Archive, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.MoveUp, k.MoveDown},
		{k.Archive, k.Reload},
		{k.Help, k.Quit},
	}
}

var defaultKeys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	MoveUp:   key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
	MoveDown: key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
	Archive:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "archive/restore")),
	Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// StatusSetter archives and restores jobs.
type StatusSetter interface {
	SetJobStatus(ctx context.Context, id string, status models.JobStatus) (*models.Job, error)
}

type jobsLoadedMsg struct{ err error }

type reorderDoneMsg struct {
	title string
	err   error
}

type statusChangedMsg struct {
	job *models.Job
	err error
}

type Model struct {
	coord   *client.Coordinator
	status  StatusSetter
	keys    keyMap
	help    help.Model
	cursor  int
	notice  string
	failed  bool
	loading bool
}

func NewModel(coord *client.Coordinator, status StatusSetter) Model {
	return Model{
		coord:   coord,
		status:  status,
		keys:    defaultKeys,
		help:    help.New(),
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) load() tea.Cmd {
	coord := m.coord
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return jobsLoadedMsg{err: coord.Load(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case jobsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.setError("Could not load jobs: %v", msg.err)
		}
		m.clampCursor()
		return m, nil

	case reorderDoneMsg:
		if msg.err != nil {
			m.setError("Moving %q failed, list reloaded: %v", msg.title, msg.err)
		} else {
			m.setInfo("Moved %q", msg.title)
		}
		m.clampCursor()
		return m, nil

	case statusChangedMsg:
		if msg.err != nil {
			m.setError("Could not update job: %v", msg.err)
			return m, nil
		}
		m.setInfo("%q is now %s", msg.job.Title, msg.job.Status)
		return m, m.load()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	jobs := m.coord.Jobs()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(jobs)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.MoveUp):
		return m.move(m.cursor, m.cursor-1)
	case key.Matches(msg, m.keys.MoveDown):
		return m.move(m.cursor, m.cursor+1)
	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		m.notice = ""
		return m, m.load()
	case key.Matches(msg, m.keys.Archive):
		if len(jobs) == 0 {
			return m, nil
		}
		return m, m.toggleArchive(jobs[m.cursor])
	}
	return m, nil
}

// move shows the new order at once and commits it in the background.
func (m Model) move(from, to int) (tea.Model, tea.Cmd) {
	if to < 0 || to >= len(m.coord.Jobs()) {
		return m, nil
	}

	moved, err := m.coord.Apply(from, to)
	if err != nil {
		m.setError("Cannot move job: %v", err)
		return m, nil
	}
	m.cursor = to

	coord := m.coord
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return reorderDoneMsg{title: moved.Title, err: coord.Commit(ctx, moved.ID, from, to)}
	}
}

func (m Model) toggleArchive(job models.Job) tea.Cmd {
	next := models.JobArchived
	if job.Status == models.JobArchived {
		next = models.JobActive
	}
	setter := m.status
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		updated, err := setter.SetJobStatus(ctx, job.ID, next)
		return statusChangedMsg{job: updated, err: err}
	}
}

func (m *Model) clampCursor() {
	n := len(m.coord.Jobs())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) setError(format string, args ...any) {
	m.notice = fmt.Sprintf(format, args...)
	m.failed = true
}

func (m *Model) setInfo(format string, args ...any) {
	m.notice = fmt.Sprintf(format, args...)
	m.failed = false
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("TalentFlow jobs"))
	b.WriteString("\n")

	jobs := m.coord.Jobs()
	switch {
	case m.loading && len(jobs) == 0:
		b.WriteString(rowStyle.Render("Loading jobs..."))
		b.WriteString("\n")
	case len(jobs) == 0:
		b.WriteString(rowStyle.Render("No jobs yet."))
		b.WriteString("\n")
	}

	for i, job := range jobs {
		b.WriteString(m.renderRow(i, job))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.notice != "" {
		if m.failed {
			b.WriteString(errorStyle.Render(m.notice))
		} else {
			b.WriteString(infoStyle.Render(m.notice))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderRow(i int, job models.Job) string {
	pointer := "  "
	if i == m.cursor {
		pointer = cursorStyle.Render("> ")
	}

	style := rowStyle
	if job.Status == models.JobArchived {
		style = archivedStyle
	}
	line := style.Render(fmt.Sprintf("%3d  %s", job.Order, job.Title))
	if job.Status == models.JobArchived {
		line += archivedStyle.Render("  (archived)")
	}
	if len(job.Tags) > 0 {
		line += "  " + tagStyle.Render("#"+strings.Join(job.Tags, " #"))
	}
	return pointer + line
}
