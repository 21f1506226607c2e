// Package browse is the interactive terminal job browser: a scrollable list
// of stored jobs with a detail view, status shortcuts, and browser handoff.
package browse

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kwhitfield/jobradar/internal/model"
)

// Lines per job item in the list view (title + subtitle + blank separator).
const jobItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("39"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	jobTitleStyle = lipgloss.NewStyle().
			Bold(true)

	jobSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedJobTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedJobSubtitleStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("252")).
					Background(lipgloss.Color("24"))

	scoreHighStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	scoreLowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(14)

	detailValueStyle = lipgloss.NewStyle()

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// statusKeys maps detail-view shortcuts to job statuses.
var statusKeys = map[string]model.Status{
	"v": model.StatusReviewed,
	"a": model.StatusApplied,
	"i": model.StatusInterviewing,
	"x": model.StatusRejected,
}

type browseModel struct {
	store         model.JobStore
	jobs          []model.Job
	minMatchScore int

	cursor       int
	listViewport viewport.Model
	width        int
	height       int
	ready        bool

	view           viewState
	detailViewport viewport.Model
	statusMsg      string
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m browseModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		return m, nil
	case "enter":
		return m.openDetailView()
	}

	// Forward other keys (pgup/pgdn/home/end) to the list viewport.
	var cmd tea.Cmd
	m.listViewport, cmd = m.listViewport.Update(msg)
	return m, cmd
}

func (m browseModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if status, ok := statusKeys[msg.String()]; ok {
		m.setStatus(status)
		m.detailViewport.SetContent(m.renderDetail())
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		m.statusMsg = ""
		m.recalcContent()
		return m, nil
	case "o":
		openURL(m.jobs[m.cursor].URL)
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m *browseModel) setStatus(status model.Status) {
	job := &m.jobs[m.cursor]
	if err := m.store.UpdateStatus(job.ID, status); err != nil {
		m.statusMsg = fmt.Sprintf("update failed: %v", err)
		return
	}
	job.Status = status
	m.statusMsg = fmt.Sprintf("status set to %s", status)
}

func (m *browseModel) moveCursor(delta int) {
	if len(m.jobs) == 0 {
		return
	}
	m.cursor = clamp(m.cursor+delta, 0, len(m.jobs)-1)
	m.recalcContent()
	m.ensureCursorVisible()
}

func (m *browseModel) ensureCursorVisible() {
	cursorTop := m.cursor * jobItemHeight
	cursorBottom := cursorTop + jobItemHeight - 1

	if cursorTop < m.listViewport.YOffset {
		m.listViewport.SetYOffset(cursorTop)
	} else if cursorBottom >= m.listViewport.YOffset+m.listViewport.Height {
		m.listViewport.SetYOffset(cursorBottom - m.listViewport.Height + 1)
	}
}

func (m browseModel) openDetailView() (tea.Model, tea.Cmd) {
	if len(m.jobs) == 0 {
		return m, nil
	}
	m.view = viewDetail
	m.statusMsg = ""
	m.detailViewport = viewport.New(m.width-4, m.height-4)
	m.detailViewport.SetContent(m.renderDetail())
	return m, nil
}

func (m *browseModel) recalcLayout() {
	width := max(m.width-2, 20)
	// Header (1) + border (2) + status bar (1).
	height := max(m.height-4, 5)

	if !m.ready {
		m.listViewport = viewport.New(width, height)
		m.ready = true
	} else {
		m.listViewport.Width = width
		m.listViewport.Height = height
	}
	m.recalcContent()
}

func (m *browseModel) recalcContent() {
	m.listViewport.SetContent(m.renderJobs())
}

func (m browseModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m browseModel) viewList() string {
	header := headerStyle.Render(fmt.Sprintf(" Jobs (%d)", len(m.jobs)))
	pane := borderStyle.Width(m.listViewport.Width).Render(m.listViewport.View())
	statusBar := statusBarStyle.Width(m.width).Render(
		" ↑/↓/j/k cursor  Enter detail  q quit")
	return header + "\n" + pane + "\n" + statusBar
}

func (m browseModel) viewDetail() string {
	title := detailTitleStyle.Render("Job Details")
	content := borderStyle.Width(m.width - 2).Render(m.detailViewport.View())
	statusText := " o open URL  v/a/i/x set status  esc back  ↑/↓ scroll  q quit"
	if m.statusMsg != "" {
		statusText = " " + m.statusMsg + "  |" + statusText
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)
	return title + "\n" + content + "\n" + statusBar
}

func (m browseModel) renderJobs() string {
	if len(m.jobs) == 0 {
		return "  (no jobs — run a scrape first)"
	}

	var b strings.Builder
	for i, j := range m.jobs {
		selected := i == m.cursor

		titleSt := jobTitleStyle
		subtitleSt := jobSubtitleStyle
		prefix := "  "
		if selected {
			titleSt = selectedJobTitleStyle
			subtitleSt = selectedJobSubtitleStyle
			prefix = "> "
		}

		b.WriteString(prefix)
		b.WriteString(m.renderScore(j))
		b.WriteString(" ")
		b.WriteString(titleSt.Render(j.Title))
		b.WriteByte('\n')

		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("%s · %s · %s", j.Company, orDash(j.Location), j.Status)))
		b.WriteByte('\n')

		if i < len(m.jobs)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m browseModel) renderScore(j model.Job) string {
	if j.MatchScore == nil {
		return scoreLowStyle.Render("[ --]")
	}
	text := fmt.Sprintf("[%3d]", *j.MatchScore)
	if *j.MatchScore >= m.minMatchScore {
		return scoreHighStyle.Render(text)
	}
	return scoreLowStyle.Render(text)
}

func (m browseModel) renderDetail() string {
	j := m.jobs[m.cursor]
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(detailValueStyle.Render(value))
		b.WriteByte('\n')
	}

	addField("Title", j.Title)
	addField("Company", j.Company)
	addField("Location", j.Location)
	addField("Posted", j.PostedDate)
	addField("Status", string(j.Status))
	if j.MatchScore != nil {
		addField("Match score", fmt.Sprintf("%d/100", *j.MatchScore))
	}

	b.WriteByte('\n')
	addField("URL", j.URL)
	addField("Scraped", j.ScrapedAt.Format("2006-01-02 15:04"))

	wrapWidth := max(m.width-8, 20)
	divider := func(label string) string {
		fill := strings.Repeat("─", max(wrapWidth-len(label), 3))
		return dividerStyle.Render(label + fill)
	}

	if j.MatchReasoning != "" {
		b.WriteByte('\n')
		b.WriteString(divider("── Match Reasoning ") + "\n\n")
		b.WriteString(bodyStyle.Render(wordWrap(j.MatchReasoning, wrapWidth)) + "\n")
	}

	if j.Notes != "" {
		b.WriteByte('\n')
		b.WriteString(divider("── Notes ") + "\n\n")
		b.WriteString(bodyStyle.Render(wordWrap(j.Notes, wrapWidth)) + "\n")
	}

	if j.Description != "" {
		b.WriteByte('\n')
		b.WriteString(divider("── Description ") + "\n\n")
		b.WriteString(bodyStyle.Render(wordWrap(j.Description, wrapWidth)) + "\n")
	}

	if m.statusMsg != "" && strings.HasPrefix(m.statusMsg, "update failed") {
		b.WriteByte('\n')
		b.WriteString(errorStyle.Render("⚠ "+m.statusMsg) + "\n")
	}

	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// Run launches the interactive job browser over the given filter. Jobs are
// loaded once up front; status changes write through to the store.
func Run(store model.JobStore, filter model.ListFilter, minMatchScore int) error {
	jobs, err := store.ListFiltered(filter)
	if err != nil {
		return fmt.Errorf("loading jobs: %w", err)
	}

	m := browseModel{
		store:         store,
		jobs:          jobs,
		minMatchScore: minMatchScore,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
