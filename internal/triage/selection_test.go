package triage

import (
	"testing"
	"time"

	"github.com/fieldcrm/triaged/internal/model"
)

func sectionTasks(source model.TaskSource, ids ...string) []model.UnifiedTask {
	out := make([]model.UnifiedTask, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.UnifiedTask{
			ID:      id,
			Source:  source,
			Title:   "task " + id,
			Status:  model.StatusPending,
			DueDate: time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		})
	}
	return out
}

func TestToggleSectionSelectsMissingThenDeselectsAll(t *testing.T) {
	sel := NewSelection()
	section := sectionTasks(model.SourceManual, "a", "b", "c")

	sel.Toggle(section[0].Ref())
	if sel.Count() != 1 {
		t.Fatalf("count after single toggle = %d", sel.Count())
	}

	// First toggle fills in the rest of the section.
	sel.ToggleSection(section)
	if sel.Count() != 3 {
		t.Fatalf("count after section toggle = %d, want 3", sel.Count())
	}
	for _, task := range section {
		if !sel.Has(task.Ref()) {
			t.Fatalf("task %s missing from selection", task.ID)
		}
	}

	// Second toggle returns to empty.
	sel.ToggleSection(section)
	if sel.Count() != 0 {
		t.Fatalf("count after double section toggle = %d, want 0", sel.Count())
	}
}

func TestToggleSectionLeavesOtherSectionsAlone(t *testing.T) {
	sel := NewSelection()
	overdue := sectionTasks(model.SourceManual, "a", "b")
	upcoming := sectionTasks(model.SourceCadence, "x")

	sel.Toggle(upcoming[0].Ref())
	sel.ToggleSection(overdue)
	if sel.Count() != 3 {
		t.Fatalf("count = %d, want 3", sel.Count())
	}

	sel.ToggleSection(overdue)
	if sel.Count() != 1 || !sel.Has(upcoming[0].Ref()) {
		t.Fatalf("other section selection was disturbed: count=%d", sel.Count())
	}
}

func TestSelectionDistinguishesSources(t *testing.T) {
	sel := NewSelection()
	manual := model.TaskRef{ID: "42", Source: model.SourceManual}
	cadence := model.TaskRef{ID: "42", Source: model.SourceCadence}

	sel.Toggle(manual)
	if sel.Has(cadence) {
		t.Fatal("same id in a different source must not be selected")
	}
	sel.Toggle(cadence)
	if sel.Count() != 2 {
		t.Fatalf("count = %d, want 2", sel.Count())
	}
}

func TestSelectionResolveDropsStaleRefs(t *testing.T) {
	sel := NewSelection()
	visible := sectionTasks(model.SourceManual, "a", "b")

	sel.Toggle(visible[0].Ref())
	sel.Toggle(model.TaskRef{ID: "gone", Source: model.SourceManual})

	resolved := sel.Resolve(visible)
	if len(resolved) != 1 || resolved[0].ID != "a" {
		t.Fatalf("resolved = %+v", resolved)
	}
}

func TestSelectionClear(t *testing.T) {
	sel := NewSelection()
	sel.Toggle(model.TaskRef{ID: "a", Source: model.SourceManual})
	sel.Clear()
	if sel.Count() != 0 {
		t.Fatalf("count after clear = %d", sel.Count())
	}
}
