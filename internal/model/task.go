package model

import "slices"

type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Completed   bool     `json:"completed"`
	Deadline    *Date    `json:"deadline,omitempty"`
	DocumentIDs []string `json:"documentIds,omitempty"`
}

type NewTask struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Deadline  *Date  `json:"deadline,omitempty"`
}

// TaskPatch represents a partial update.
// nil pointer => "no change"; ClearDeadline drops the deadline.
type TaskPatch struct {
	Title         *string   `json:"title,omitempty"`
	Completed     *bool     `json:"completed,omitempty"`
	Deadline      *Date     `json:"deadline,omitempty"`
	ClearDeadline bool      `json:"clearDeadline,omitempty"`
	DocumentIDs   *[]string `json:"documentIds,omitempty"`
}

func (t Task) HasDeadline() bool {
	return t.Deadline != nil
}

func (t Task) HasDocument(id string) bool {
	return slices.Contains(t.DocumentIDs, id)
}

// AddDocument appends id unless it is empty or already attached.
func (t *Task) AddDocument(id string) bool {
	if id == "" || t.HasDocument(id) {
		return false
	}
	t.DocumentIDs = append(t.DocumentIDs, id)
	return true
}

func (t *Task) RemoveDocument(id string) bool {
	if !t.HasDocument(id) {
		return false
	}
	out := make([]string, 0, len(t.DocumentIDs))
	for _, did := range t.DocumentIDs {
		if did != id {
			out = append(out, did)
		}
	}
	t.DocumentIDs = out
	return true
}

func (t *Task) Apply(p TaskPatch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.ClearDeadline {
		t.Deadline = nil
	} else if p.Deadline != nil {
		d := *p.Deadline
		t.Deadline = &d
	}
	if p.DocumentIDs != nil {
		t.DocumentIDs = nil
		for _, id := range *p.DocumentIDs {
			t.AddDocument(id)
		}
	}
}

func (t Task) Clone() Task {
	if t.Deadline != nil {
		d := *t.Deadline
		t.Deadline = &d
	}
	if t.DocumentIDs != nil {
		t.DocumentIDs = slices.Clone(t.DocumentIDs)
	}
	return t
}
