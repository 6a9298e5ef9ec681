package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/swarmreport/swarmreport/pkg/types"
	"github.com/swarmreport/swarmreport/server/internal/view"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
)

// Source produces consistent snapshots. *view.View satisfies it.
type Source interface {
	Snapshot() view.Snapshot
}

type tickMsg time.Time

// Model is the bubbletea model of the terminal display.
type Model struct {
	src     Source
	refresh time.Duration

	snap     view.Snapshot
	selected int
	// selectedID keeps the cursor on the same reporter when others are
	// evicted ahead of it.
	selectedID string

	width, height int
	keys          keyMap
	help          help.Model
	styles        styles
}

// New creates a Model that redraws from src every refresh.
func New(src Source, refresh time.Duration) *Model {
	if refresh <= 0 {
		refresh = time.Second
	}
	return &Model{
		src:     src,
		refresh: refresh,
		keys:    defaultKeys(),
		help:    help.New(),
		styles:  newStyles(),
	}
}

// Run starts the display on the alternate screen and blocks until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, src Source, refresh time.Duration, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(New(src, refresh), opts...).Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// Init loads the first snapshot and schedules the first tick.
func (m *Model) Init() tea.Cmd {
	m.reload()
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles ticks, resizes and key presses.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.reload()
		return m, m.tick()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
		case key.Matches(msg, m.keys.Down):
			m.move(1)
		case key.Matches(msg, m.keys.Refresh):
			m.reload()
		}
	}
	return m, nil
}

// Selected returns the highlighted client, if any.
func (m *Model) Selected() (view.Client, bool) {
	return m.snap.At(m.selected)
}

func (m *Model) move(delta int) {
	n := len(m.snap.Clients)
	if n == 0 {
		return
	}
	m.selected = min(max(m.selected+delta, 0), n-1)
	m.selectedID = m.snap.Clients[m.selected].Identity
}

func (m *Model) reload() {
	m.snap = m.src.Snapshot()
	n := len(m.snap.Clients)

	if m.selectedID != "" {
		for i, c := range m.snap.Clients {
			if c.Identity == m.selectedID {
				m.selected = i
				return
			}
		}
	}
	m.selected = min(max(m.selected, 0), max(n-1, 0))
	if n > 0 {
		m.selectedID = m.snap.Clients[m.selected].Identity
	}
}

// --- rendering ---------------------------------------------------------------

// View renders the full screen.
func (m *Model) View() string {
	w, h := m.width, m.height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}

	leftW := w * 60 / 100
	rightW := w - leftW
	contentH := h - 1
	leftTop := contentH * 70 / 100
	rightTop := contentH * 60 / 100

	sel, ok := m.Selected()
	left := lipgloss.JoinVertical(lipgloss.Left,
		m.clientsPanel(leftW, leftTop),
		m.overviewPanel(leftW, contentH-leftTop),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.detailsPanel(sel, ok, rightW, rightTop),
		m.servicesPanel(sel, ok, rightW, contentH-rightTop),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, left, right),
		m.statusBar(w),
	)
}

// panel draws a bordered box of outer size w x h. Lines beyond the box are
// dropped and long lines are cut at the border.
func (m *Model) panel(title string, lines []string, w, h int) string {
	inner := max(h-2, 2)
	innerW := max(w-2, 4)
	clip := lipgloss.NewStyle().MaxWidth(innerW - 2)

	out := make([]string, 0, inner)
	out = append(out, clip.Render(m.styles.title.Render(title)))
	for _, l := range lines {
		if len(out) == inner {
			break
		}
		out = append(out, clip.Render(l))
	}
	return m.styles.panel.Width(innerW).Height(inner).Render(strings.Join(out, "\n"))
}

func (m *Model) clientsPanel(w, h int) string {
	clients := m.snap.Clients
	title := fmt.Sprintf("Clients (%d) - ↑↓/jk to navigate", len(clients))
	if len(clients) == 0 {
		return m.panel(title, []string{m.styles.dim.Render("No clients connected")}, w, h)
	}

	// Scroll so the selection stays visible.
	rows := max(h-3, 1)
	start := 0
	if m.selected >= rows {
		start = m.selected - rows + 1
	}

	s := m.styles
	lines := make([]string, 0, rows)
	for i := start; i < len(clients) && i < start+rows; i++ {
		c := clients[i]
		cpu := types.ParseCPUUsage(c.Report.CPUUsage)
		line := fmt.Sprintf("%s %s %s %s %s",
			s.class(c.Class).Render(icon(c.Class)),
			s.label.Render(fmt.Sprintf("%-15s", c.Report.Hostname)),
			s.value.Render(fmt.Sprintf("%15s", c.Report.IPAddress)),
			s.load(cpu).Render(fmt.Sprintf("CPU:%5.1f%%", cpu)),
			s.dim.Render(c.LastUpdated.UTC().Format("15:04:05")),
		)
		if i == m.selected {
			line = s.selected.Render("► ") + line
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return m.panel(title, lines, w, h)
}

func (m *Model) overviewPanel(w, h int) string {
	s := m.styles
	sum := m.snap.Summary
	lines := []string{
		s.label.Render("Status: ") +
			s.recent.Render(fmt.Sprintf("● %d ", sum.Recent)) +
			s.normal.Render(fmt.Sprintf("◐ %d ", sum.Normal)) +
			s.stale.Render(fmt.Sprintf("○ %d", sum.Stale)),
		s.label.Render("Avg CPU: ") + s.load(sum.AvgCPU).Render(fmt.Sprintf("%.1f%%", sum.AvgCPU)),
		s.label.Render("Services: ") + s.value.Render(fmt.Sprintf("%d/%d running", sum.ServicesRunning, sum.ServicesTotal)),
		s.label.Render("Updates: ") + s.value.Render(fmt.Sprintf("%d pending", sum.ServicesNeedingUpdate)),
	}
	return m.panel("Overview", lines, w, h)
}

func (m *Model) detailsPanel(c view.Client, ok bool, w, h int) string {
	if !ok {
		return m.panel("Client Details", []string{m.styles.dim.Render("No client selected")}, w, h)
	}
	s := m.styles
	cpu := types.ParseCPUUsage(c.Report.CPUUsage)
	field := func(label, v string, st lipgloss.Style) string {
		return s.label.Render(label+": ") + st.Render(v)
	}
	lines := []string{
		field("Hostname", c.Report.Hostname, s.value),
		field("IP Address", c.Report.IPAddress, s.value),
		field("Node ID", c.Report.NodeID, s.dim),
		field("Last Update", c.LastUpdated.UTC().Format("2006-01-02 15:04:05 UTC"), s.class(c.Class)),
		field("Status", fmt.Sprintf("%s (%ds ago)", c.Class, c.SecondsSinceUpdate), s.class(c.Class)),
		field("Memory", c.Report.MemoryUsage, s.recent),
		field("Disk", c.Report.DiskUsage, s.recent),
		s.label.Render("CPU: ") + m.gauge(cpu, max(w-18, 10)),
	}
	return m.panel("Client Details - "+c.Report.Hostname, lines, w, h)
}

// gauge renders a horizontal bar for a 0-100 percentage.
func (m *Model) gauge(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	filled = min(max(filled, 0), width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return m.styles.load(pct).Render(bar) + fmt.Sprintf(" %.1f%%", pct)
}

func (m *Model) servicesPanel(c view.Client, ok bool, w, h int) string {
	if !ok {
		return m.panel("Services", []string{m.styles.dim.Render("No client selected")}, w, h)
	}
	s := m.styles
	svcs := c.Report.Services
	title := fmt.Sprintf("Services - %s (%d total)", c.Report.Hostname, len(svcs))
	if len(svcs) == 0 {
		return m.panel(title, []string{s.dim.Render("No services running on this client")}, w, h)
	}

	lines := make([]string, 0, len(svcs))
	for _, svc := range svcs {
		st, mark := s.normal, "?"
		switch svc.State() {
		case types.ServiceRunning:
			st, mark = s.recent, "✓"
		case types.ServiceStopped:
			st, mark = s.stale, "✗"
		}
		line := st.Render(mark+" ") +
			fmt.Sprintf("%-25s", svc.Name) +
			st.Render(fmt.Sprintf("%-10s", svc.State()))
		if svc.NeedsUpdate {
			line += s.normal.Render(" (update available)")
		}
		lines = append(lines, line)
	}
	return m.panel(title, lines, w, h)
}

func (m *Model) statusBar(w int) string {
	s := m.styles
	sep := s.dim.Render(" | ")
	bar := s.title.Render("SwarmReport Sentinel") + sep +
		m.help.View(m.keys) + sep +
		s.value.Render(fmt.Sprintf("Clients: %d", len(m.snap.Clients))) + sep +
		s.dim.Render(m.snap.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	return s.statusBar.Width(w).Render(lipgloss.NewStyle().MaxWidth(w).Render(bar))
}
