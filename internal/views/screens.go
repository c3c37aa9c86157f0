package views

import (
	"fmt"
	"strings"
)

type BatchItemData struct {
	ID          string
	Title       string
	Source      string
	TaskType    string
	ContactName string
	CadenceName string
	DueDate     string
	Severity    string
	DaysOverdue int
	Selected    bool
	AtCursor    bool
}

type BatchSectionData struct {
	Title     string
	Count     int
	Hidden    bool
	Collapsed bool
	Items     []BatchItemData
}

type BatchPanelData struct {
	Sections      []BatchSectionData
	SelectedCount int
}

type ToolbarData struct {
	TaskType      string
	DateRange     string
	Toggles       []string
	SelectedCount int
}

type DetailData struct {
	Title       string
	Source      string
	TaskType    string
	ContactName string
	CadenceName string
	DueDate     string
	Status      string
	Severity    string
	DaysOverdue int
	NotesView   string
}

type CompleteDialogData struct {
	Active      bool
	TargetCount int
	NotesView   string
	ErrorText   string
}

type QuickAddData struct {
	Active    bool
	InputView string
}

type PaletteData struct {
	Active    bool
	InputView string
}

type HelpPanelData struct {
	Bindings []string
}

func RenderBatchPanel(data BatchPanelData) string {
	var b strings.Builder
	b.WriteString("batch tasks:\n")
	b.WriteString("actions: [j/k]move [space]select [x]section [u]clear [c]complete [t]triage [d]dismiss\n")
	for _, section := range data.Sections {
		renderBatchSection(&b, section)
	}
	if data.SelectedCount > 0 {
		fmt.Fprintf(&b, "\nselected: %d task(s)", data.SelectedCount)
	}
	return strings.TrimSpace(b.String())
}

func renderBatchSection(b *strings.Builder, section BatchSectionData) {
	if section.Hidden {
		fmt.Fprintf(b, "\n%s (%d) [hidden]\n", section.Title, section.Count)
		return
	}
	fmt.Fprintf(b, "\n%s (%d)\n", section.Title, section.Count)
	if section.Collapsed {
		b.WriteString("  ...\n")
		return
	}
	if len(section.Items) == 0 {
		b.WriteString("  (none)\n")
		return
	}
	for _, item := range section.Items {
		cursor := "  "
		if item.AtCursor {
			cursor = "> "
		}
		check := "[ ]"
		if item.Selected {
			check = "[x]"
		}
		line := fmt.Sprintf("%s%s %s", cursor, check, item.Title)
		if item.ContactName != "" {
			line += " · " + item.ContactName
		}
		if item.CadenceName != "" {
			line += " · " + item.CadenceName
		}
		if item.TaskType != "" {
			line += fmt.Sprintf(" (%s)", item.TaskType)
		}
		if badge := SeverityBadge(item.Severity, item.DaysOverdue); badge != "" {
			line += " " + badge
		}
		b.WriteString(line + "\n")
	}
}

func RenderToolbar(data ToolbarData) string {
	var b strings.Builder
	b.WriteString("filters:\n")
	fmt.Fprintf(&b, "  type: %s [f]\n", data.TaskType)
	fmt.Fprintf(&b, "  range: %s [r]\n", data.DateRange)
	fmt.Fprintf(&b, "  sections: %s [1-5]\n", strings.Join(data.Toggles, " "))
	return strings.TrimSpace(b.String())
}

func RenderDetailPanel(data DetailData) string {
	if data.Title == "" {
		return "details:\n  (no task selected)"
	}
	var b strings.Builder
	b.WriteString("details:\n")
	fmt.Fprintf(&b, "  %s\n", data.Title)
	fmt.Fprintf(&b, "  source: %s  status: %s\n", data.Source, data.Status)
	if data.TaskType != "" {
		fmt.Fprintf(&b, "  type: %s\n", data.TaskType)
	}
	if data.ContactName != "" {
		fmt.Fprintf(&b, "  contact: %s\n", data.ContactName)
	}
	if data.CadenceName != "" {
		fmt.Fprintf(&b, "  cadence: %s\n", data.CadenceName)
	}
	fmt.Fprintf(&b, "  due: %s", data.DueDate)
	if badge := SeverityBadge(data.Severity, data.DaysOverdue); badge != "" {
		b.WriteString(" " + badge)
	}
	b.WriteString("\n")
	if data.NotesView != "" {
		b.WriteString("  notes:\n")
		b.WriteString(data.NotesView + "\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderCompleteDialog(data CompleteDialogData) string {
	if !data.Active {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "complete %d task(s), notes required:\n", data.TargetCount)
	b.WriteString(data.NotesView + "\n")
	if data.ErrorText != "" {
		b.WriteString(errorStyle.Render(data.ErrorText) + "\n")
	}
	b.WriteString("[enter]submit [esc]cancel")
	return b.String()
}

func RenderQuickAdd(data QuickAddData) string {
	if !data.Active {
		return ""
	}
	return "quick add (due today):\n" + data.InputView + "\n[enter]save [esc]cancel"
}

func RenderPalette(data PaletteData) string {
	if !data.Active {
		return ""
	}
	return "command:\n" + data.InputView + "\n(/complete <notes> /triage /dismiss /add <title> /filter <type> /range <preset> /refresh)"
}

func RenderHelpPanel(data HelpPanelData) string {
	var b strings.Builder
	b.WriteString("help:\n")
	for _, binding := range data.Bindings {
		b.WriteString("  " + binding + "\n")
	}
	return strings.TrimSpace(b.String())
}
