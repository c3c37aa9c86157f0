package update

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fieldcrm/triaged/internal/commands"
	"github.com/fieldcrm/triaged/internal/triage"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.palette.Active = false
		m.commandInput.Blur()
		m.commandInput.SetValue("")
		return m, nil
	case "enter":
		input := m.commandInput.Value()
		m.palette.Active = false
		m.commandInput.Blur()
		m.commandInput.SetValue("")
		return m.runPaletteCommand(input)
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	return m, cmd
}

func (m Model) runPaletteCommand(input string) (Model, tea.Cmd) {
	cmd, err := commands.Parse(input)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var next tea.Cmd
	handlers := commands.Handlers{
		Complete: func(a commands.CompleteArgs) (commands.Result, error) {
			refs := m.transitionTargets()
			if len(refs) == 0 {
				return commands.Result{}, errors.New("no tasks selected")
			}
			next = m.completeCmd(refs, a.Notes)
			return commands.Result{Message: fmt.Sprintf("completing %d task(s)...", len(refs))}, nil
		},
		Triage: func() (commands.Result, error) {
			refs := m.transitionTargets()
			if len(refs) == 0 {
				return commands.Result{}, errors.New("no tasks selected")
			}
			next = m.triageCmd(refs)
			return commands.Result{Message: fmt.Sprintf("triaging %d task(s)...", len(refs))}, nil
		},
		Dismiss: func() (commands.Result, error) {
			refs := m.transitionTargets()
			if len(refs) == 0 {
				return commands.Result{}, errors.New("no tasks selected")
			}
			next = m.dismissCmd(refs)
			return commands.Result{Message: fmt.Sprintf("dismissing %d task(s)...", len(refs))}, nil
		},
		Add: func(a commands.AddArgs) (commands.Result, error) {
			next = m.quickAddCmd(a.Title)
			return commands.Result{Message: "adding task..."}, nil
		},
		Filter: func(a commands.FilterArgs) (commands.Result, error) {
			return commands.Result{Message: "filtering by " + a.TaskType}, nil
		},
		Range: func(a commands.RangeArgs) (commands.Result, error) {
			return commands.Result{Message: "date range " + a.Preset}, nil
		},
		Refresh: func() (commands.Result, error) {
			return commands.Result{Message: "refreshing..."}, nil
		},
	}

	result, err := commands.Execute(cmd, handlers)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	// Filter, range, and refresh need the updated model, not just a Cmd.
	switch cmd.Type {
	case commands.TypeFilter:
		m, next = m.setFilters(m.Filters.WithTaskType(cmd.Filter.TaskType))
	case commands.TypeRange:
		m, next = m.setFilters(m.Filters.WithDateRange(triage.DateRange(cmd.Range.Preset)))
	case commands.TypeRefresh:
		m.Loading = true
		next = m.fetchCmd()
	}

	if strings.TrimSpace(result.Message) != "" {
		m.Status = StatusBar{Text: result.Message}
	}
	return m, next
}
