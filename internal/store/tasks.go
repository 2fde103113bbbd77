package store

import (
	"fmt"

	"github.com/tgienger/ptn/internal/models"
)

// TaskUpdate holds the task fields to replace; nil fields are left as is
type TaskUpdate struct {
	Text     *string
	Approved *bool
}

// AddTask appends a new unapproved task
func (s *Store) AddTask(text string) (models.Task, error) {
	if err := checkTaskText(text); err != nil {
		s.logger.Debug("add task rejected", "error", err)
		return models.Task{}, err
	}

	t := models.Task{ID: s.nextID(), Text: text}
	s.tasks = append(s.tasks, t)
	s.commit()
	return t, nil
}

// UpdateTask replaces the given fields of a task. Setting Approved to
// true is subject to the same check as ApproveTask.
func (s *Store) UpdateTask(id int64, upd TaskUpdate) error {
	i := s.taskIndex(id)
	if i < 0 {
		return fmt.Errorf("update task %d: %w", id, ErrNotFound)
	}

	t := s.tasks[i]
	if upd.Text != nil {
		if err := checkTaskText(*upd.Text); err != nil {
			s.logger.Debug("update task rejected", "task_id", id, "error", err)
			return fmt.Errorf("update task %d: %w", id, err)
		}
		t.Text = *upd.Text
	}
	if upd.Approved != nil {
		if *upd.Approved && !t.Approved && !models.AllCompleted(s.notes[id]) {
			s.logger.Debug("update task rejected", "task_id", id, "error", ErrApprovalBlocked)
			return fmt.Errorf("update task %d: %w", id, ErrApprovalBlocked)
		}
		t.Approved = *upd.Approved
	}

	s.tasks[i] = t
	s.commit()
	return nil
}

// DeleteTask removes a task together with its notes
func (s *Store) DeleteTask(id int64) error {
	i := s.taskIndex(id)
	if i < 0 {
		return fmt.Errorf("delete task %d: %w", id, ErrNotFound)
	}

	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	delete(s.notes, id)
	s.commit()
	return nil
}

// ApproveTask toggles approval. Approving requires every note of the
// task to be completed; revoking is always allowed.
func (s *Store) ApproveTask(id int64) error {
	t, ok := s.Task(id)
	if !ok {
		return fmt.Errorf("approve task %d: %w", id, ErrNotFound)
	}
	approved := !t.Approved
	return s.UpdateTask(id, TaskUpdate{Approved: &approved})
}
