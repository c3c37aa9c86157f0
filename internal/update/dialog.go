package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) handleDialogKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.dialog = CompleteDialogState{}
		m.notesArea.Blur()
		m.Status = StatusBar{Text: "completion cancelled"}
		return m, nil
	case "enter":
		notes := strings.TrimSpace(m.notesArea.Value())
		if notes == "" {
			// Validation happens here, before anything touches the store.
			m.dialog.Err = "notes are required to complete a task"
			return m, nil
		}
		targets := m.dialog.Targets
		m.dialog = CompleteDialogState{}
		m.notesArea.Blur()
		m.Status = StatusBar{Text: fmt.Sprintf("completing %d task(s)...", len(targets))}
		return m, m.completeCmd(targets, notes)
	}
	var cmd tea.Cmd
	m.notesArea, cmd = m.notesArea.Update(msg)
	m.dialog.Err = ""
	return m, cmd
}

func (m Model) handleQuickAddKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.quickAdd.Active = false
		m.quickAddInput.Blur()
		m.Status = StatusBar{Text: "quick add cancelled"}
		return m, nil
	case "enter":
		title := strings.TrimSpace(m.quickAddInput.Value())
		if title == "" {
			m.Status = StatusBar{Text: "a title is required", IsError: true}
			return m, nil
		}
		m.quickAdd.Active = false
		m.quickAddInput.Blur()
		m.quickAddInput.SetValue("")
		return m, m.quickAddCmd(title)
	}
	var cmd tea.Cmd
	m.quickAddInput, cmd = m.quickAddInput.Update(msg)
	return m, cmd
}
