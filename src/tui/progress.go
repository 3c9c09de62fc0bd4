package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var launcherLogo = []string{
	"╺┳╸┏━╸┏━┓┏━┓┏━┓┏━┓╻  ┏━┓┏━╸╻ ╻",
	" ┃ ┣╸ ┣┳┛┣━┫┗━┓┃ ┃┃  ┃ ┃┃╺┓┗┳┛",
	" ╹ ┗━╸╹┗╸╹ ╹┗━┛┗━┛┗━╸┗━┛┗━┛ ╹ ",
}

var logoGradientColors = []string{
	"#7DCEA0",
	"#52BE80",
	"#27AE60",
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ProgressMsg reports downloaded bytes.
type ProgressMsg struct {
	Written int64
	Total   int64
	Percent int
}

// DoneMsg ends the download view. Err is nil on success.
type DoneMsg struct {
	Path string
	Err  error
}

type SpinnerTickMsg time.Time

// DownloadModel shows the progress of one artifact download. Pressing
// ctrl+c or q calls cancel and waits for the DoneMsg of the aborted
// download.
type DownloadModel struct {
	title        string
	bar          progress.Model
	cancel       func()
	written      int64
	total        int64
	percent      int
	spinnerFrame int
	cancelling   bool
	done         bool
	path         string
	err          error
}

func NewDownloadModel(title string, cancel func()) DownloadModel {
	if cancel == nil {
		cancel = func() {}
	}
	return DownloadModel{
		title:  title,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		cancel: cancel,
	}
}

func SpinnerTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return SpinnerTickMsg(t)
	})
}

func (m DownloadModel) Init() tea.Cmd {
	return SpinnerTick()
}

func (m DownloadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !m.cancelling && !m.done {
				m.cancelling = true
				m.cancel()
			}
		}
	case ProgressMsg:
		m.written = msg.Written
		m.total = msg.Total
		m.percent = msg.Percent
	case DoneMsg:
		m.done = true
		m.path = msg.Path
		m.err = msg.Err
		if msg.Err == nil {
			m.percent = 100
		}
		return m, tea.Quit
	case SpinnerTickMsg:
		m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
		if !m.done {
			return m, SpinnerTick()
		}
	}
	return m, nil
}

// Err returns the download error once the model is done.
func (m DownloadModel) Err() error {
	return m.err
}

func (m DownloadModel) View() string {
	var logoLines []string
	for i, line := range launcherLogo {
		style := lipgloss.NewStyle().
			Foreground(lipgloss.Color(logoGradientColors[i%len(logoGradientColors)])).
			Bold(true)
		logoLines = append(logoLines, style.Render(line))
	}
	logo := strings.Join(logoLines, "\n")

	if m.done {
		if m.err != nil {
			failed := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
			return lipgloss.JoinVertical(lipgloss.Center, logo, "", failed.Render("✗ "+m.err.Error()), "")
		}
		ok := lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
		return lipgloss.JoinVertical(lipgloss.Center, logo, "", ok.Render("✓ Downloaded "+m.path), "")
	}

	spinner := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Render(spinnerFrames[m.spinnerFrame])
	status := fmt.Sprintf("%s %s", spinner, m.title)
	switch {
	case m.cancelling:
		status = fmt.Sprintf("%s Cancelling %s...", spinner, m.title)
	case m.total > 0:
		status = fmt.Sprintf("%s %s (%s/%s, %d%%)", spinner, m.title,
			humanize.IBytes(uint64(m.written)), humanize.IBytes(uint64(m.total)), m.percent)
	}

	return lipgloss.JoinVertical(lipgloss.Center, logo, "", status, m.bar.ViewAs(float64(m.percent)/100), "")
}
