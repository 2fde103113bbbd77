package models

// Character limits for user-entered text
const (
	TaskTextLimit = 70
	NoteTextLimit = 50
)

// Task represents a tracked unit of work
type Task struct {
	ID       int64  `json:"id"`
	Text     string `json:"text"`
	Approved bool   `json:"approved"`
}

// Note represents a sub-item attached to a task
type Note struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// AllCompleted reports whether every note is completed (true for none)
func AllCompleted(notes []Note) bool {
	for _, n := range notes {
		if !n.Completed {
			return false
		}
	}
	return true
}
