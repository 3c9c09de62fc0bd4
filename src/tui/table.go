package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"terasology-launcher/src/version"
)

const (
	buildWidth     = 14
	omegaWidth     = 7
	statusWidth    = 8
	installedWidth = 4
	displayWidth   = 18
	minChangeWidth = 10
	columnGap      = " "
)

// RenderVersionTable renders a version list as a bordered table no wider
// than width. Change logs are cut to their first entry.
func RenderVersionTable(title string, records []version.Record, width int, styles *StyleConfig) string {
	if styles == nil {
		styles = DefaultStyles()
	}

	fixed := buildWidth + omegaWidth + statusWidth + installedWidth + displayWidth + 5*len(columnGap)
	changeWidth := width - fixed - 4 // border and padding
	if changeWidth < minChangeWidth {
		changeWidth = minChangeWidth
	}

	row := func(cells ...string) string {
		widths := []int{buildWidth, omegaWidth, statusWidth, installedWidth, displayWidth, changeWidth}
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = TruncateAndPad(c, widths[i], true)
		}
		return strings.TrimRight(strings.Join(parts, columnGap), " ")
	}

	lines := []string{styles.HeaderStyle().Render(row("BUILD", "OMEGA", "STATUS", "INST", "VERSION", "CHANGES"))}
	if len(records) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(styles.Muted).Render("no versions known"))
	}
	for _, rec := range records {
		line := row(buildCell(rec), omegaCell(rec), statusCell(rec), installedCell(rec), displayCell(rec), changeCell(rec))
		lines = append(lines, lipgloss.NewStyle().Foreground(rowColor(rec, styles)).Render(line))
	}

	table := styles.TableStyle().Render(strings.Join(lines, "\n"))
	if title == "" {
		return table
	}
	return lipgloss.JoinVertical(lipgloss.Left, styles.TitleStyle().Render(title), table)
}

// RenderVersionDetail renders everything known about one record, with the
// change log wrapped to width.
func RenderVersionDetail(rec version.Record, width int, styles *StyleConfig) string {
	if styles == nil {
		styles = DefaultStyles()
	}
	label := styles.HeaderStyle()

	var b strings.Builder
	field := func(name, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "%s %s\n", label.Render(TruncateAndPad(name, 12, false)), value)
	}

	field("Line", rec.Line)
	field("Build", buildCell(rec))
	field("Omega", omegaCell(rec))
	field("Status", statusCell(rec))
	field("Installed", rec.InstallationPath)
	if rec.Info != nil {
		field("Version", rec.Info.DisplayVersion)
		field("Engine", rec.Info.EngineVersion)
		field("Built", rec.Info.DateTime)
		field("Commit", rec.Info.GitCommit)
	}

	b.WriteString(label.Render("Changes"))
	b.WriteString("\n")
	for _, entry := range rec.ChangeLog {
		for i, line := range strings.Split(Wrap(entry, width-4), "\n") {
			prefix := "  "
			if i == 0 {
				prefix = "- "
			}
			b.WriteString(prefix + line + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func buildCell(rec version.Record) string {
	n, ok := rec.Number()
	switch {
	case rec.Latest && ok:
		return fmt.Sprintf("latest (#%d)", n)
	case rec.Latest:
		return "latest"
	default:
		return "#" + strconv.Itoa(n)
	}
}

func omegaCell(rec version.Record) string {
	if rec.CompanionBuildNumber == nil {
		return "-"
	}
	return "#" + strconv.Itoa(*rec.CompanionBuildNumber)
}

func statusCell(rec version.Record) string {
	switch {
	case rec.Successful == nil:
		return "unknown"
	case *rec.Successful:
		return "ok"
	default:
		return "failed"
	}
}

func installedCell(rec version.Record) string {
	if rec.IsInstalled() {
		return "✓"
	}
	return ""
}

func displayCell(rec version.Record) string {
	if rec.Info == nil {
		return ""
	}
	return rec.Info.DisplayVersion
}

func changeCell(rec version.Record) string {
	if len(rec.ChangeLog) == 0 {
		return ""
	}
	first := rec.ChangeLog[0]
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	if len(rec.ChangeLog) > 1 {
		first = fmt.Sprintf("%s (+%d)", first, len(rec.ChangeLog)-1)
	}
	return first
}

func rowColor(rec version.Record, styles *StyleConfig) lipgloss.Color {
	switch {
	case rec.Latest:
		return styles.Latest
	case rec.IsInstalled():
		return styles.Installed
	case rec.Successful != nil && !*rec.Successful:
		return styles.Failed
	default:
		return styles.Muted
	}
}
