package views

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type AppData struct {
	Header       string
	LeftPane     string
	RightPane    string
	StatusLine   string
	Footer       string
	Notification string
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	warningBadge  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dangerBadge   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	criticalBadge = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	staleBadge    = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
)

func RenderApp(data AppData) string {
	left := panelStyle.Width(62).Render(data.LeftPane)
	right := panelStyle.Width(54).Render(data.RightPane)
	row := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	status := statusStyle.Render(data.StatusLine)
	if strings.Contains(strings.ToLower(data.StatusLine), "error") {
		status = errorStyle.Render(data.StatusLine)
	}

	lines := []string{
		headerStyle.Render(data.Header),
		row,
		status,
	}
	if data.Notification != "" {
		lines = append(lines, panelStyle.Render(data.Notification))
	}
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}

// SeverityBadge renders the escalation marker shown next to overdue tasks.
func SeverityBadge(severity string, daysOverdue int) string {
	switch severity {
	case "warning":
		return warningBadge.Render(badgeText(daysOverdue))
	case "danger":
		return dangerBadge.Render(badgeText(daysOverdue))
	case "critical":
		return criticalBadge.Render(badgeText(daysOverdue))
	case "stale":
		return staleBadge.Render("stale " + badgeText(daysOverdue))
	default:
		return ""
	}
}

func badgeText(days int) string {
	return strconv.Itoa(days) + "d over"
}
