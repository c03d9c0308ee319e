package models

import "time"

// Task is a single entry on the task list.
type Task struct {
	ID        int64      `json:"id"`
	Task      string     `json:"task"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	t.DueDate = copyTime(t.DueDate)
	return t
}

// copyTime returns an independent copy of t in UTC, the zone every backend
// stores due dates in.
func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	due := t.UTC()
	return &due
}

// NewTask is the payload accepted when creating a task.
type NewTask struct {
	Task    string     `json:"task"`
	DueDate *time.Time `json:"dueDate"`
}

func (n NewTask) Validate() error {
	if n.Task == "" {
		return &ValidationError{Field: "task", Reason: "must be a non-empty string"}
	}
	return nil
}

// Record builds the stored form of n under the given id.
func (n NewTask) Record(id int64) Task {
	return Task{ID: id, Task: n.Task, DueDate: copyTime(n.DueDate)}
}

// TaskPatch carries the fields of a partial update. Only fields present in
// the decoded payload are applied.
type TaskPatch struct {
	Task      Field[string]     `json:"task"`
	Completed Field[bool]       `json:"completed"`
	DueDate   Field[*time.Time] `json:"dueDate"`
}

func (p TaskPatch) Validate() error {
	if p.Task.Set && p.Task.Value == "" {
		return &ValidationError{Field: "task", Reason: "must be a non-empty string"}
	}
	if p.Completed.Set && p.Completed.Null {
		return &ValidationError{Field: "completed", Reason: "must be a boolean"}
	}
	return nil
}

func (p TaskPatch) IsEmpty() bool {
	return len(p.Assignments()) == 0
}

// Assignments lists the column updates for the present fields, in column order.
func (p TaskPatch) Assignments() []Assignment {
	var out []Assignment
	out = appendIfSet(out, "task", p.Task)
	out = appendIfSet(out, "completed", p.Completed)
	out = appendIfSet(out, "due_date", p.DueDate)
	return out
}

// Apply merges the present fields into t.
func (p TaskPatch) Apply(t *Task) {
	if p.Task.Set {
		t.Task = p.Task.Value
	}
	if p.Completed.Set {
		t.Completed = p.Completed.Value
	}
	if p.DueDate.Set {
		t.DueDate = copyTime(p.DueDate.Value)
	}
}
