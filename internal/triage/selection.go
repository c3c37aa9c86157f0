package triage

import "github.com/fieldcrm/triaged/internal/model"

// Selection is a set of task references. Membership is by (id, source)
// pair equality, never by object identity, because the task list is
// replaced wholesale on every re-fetch.
type Selection struct {
	members map[model.TaskRef]struct{}
}

func NewSelection() *Selection {
	return &Selection{members: make(map[model.TaskRef]struct{})}
}

func (s *Selection) Has(ref model.TaskRef) bool {
	_, ok := s.members[ref]
	return ok
}

func (s *Selection) Toggle(ref model.TaskRef) {
	if s.Has(ref) {
		delete(s.members, ref)
		return
	}
	s.members[ref] = struct{}{}
}

// ToggleSection toggles an entire section at once: if every task in the
// section is already selected the whole section is deselected, otherwise
// the missing tasks are added. Other sections' selections are untouched.
func (s *Selection) ToggleSection(tasks []model.UnifiedTask) {
	if len(tasks) == 0 {
		return
	}
	all := true
	for _, task := range tasks {
		if !s.Has(task.Ref()) {
			all = false
			break
		}
	}
	for _, task := range tasks {
		if all {
			delete(s.members, task.Ref())
		} else {
			s.members[task.Ref()] = struct{}{}
		}
	}
}

func (s *Selection) Clear() {
	s.members = make(map[model.TaskRef]struct{})
}

func (s *Selection) Count() int {
	return len(s.members)
}

// Refs returns the selected references in unspecified order.
func (s *Selection) Refs() []model.TaskRef {
	out := make([]model.TaskRef, 0, len(s.members))
	for ref := range s.members {
		out = append(out, ref)
	}
	return out
}

// Resolve maps the selection back onto the current visible list, dropping
// references whose task is no longer visible. The full task is always
// re-resolved from the list; the selection itself carries no task data.
func (s *Selection) Resolve(visible []model.UnifiedTask) []model.UnifiedTask {
	out := make([]model.UnifiedTask, 0, len(s.members))
	for _, task := range visible {
		if s.Has(task.Ref()) {
			out = append(out, task)
		}
	}
	return out
}
