package store

import (
	"fmt"

	"github.com/tgienger/ptn/internal/models"
)

// AddNote appends an incomplete note to a task. An approved task loses
// its approval since it now has an incomplete note.
func (s *Store) AddNote(taskID int64, text string) (models.Note, error) {
	if err := checkNoteText(text); err != nil {
		s.logger.Debug("add note rejected", "task_id", taskID, "error", err)
		return models.Note{}, err
	}
	i := s.taskIndex(taskID)
	if i < 0 {
		return models.Note{}, fmt.Errorf("add note to task %d: %w", taskID, ErrNotFound)
	}

	n := models.Note{ID: s.nextID(), Text: text}
	s.notes[taskID] = append(s.notes[taskID], n)
	s.tasks[i].Approved = false
	s.commit()
	return n, nil
}

// UpdateNote replaces the text of a note, leaving its completion as is
func (s *Store) UpdateNote(taskID, noteID int64, text string) error {
	j := s.noteIndex(taskID, noteID)
	if j < 0 {
		return fmt.Errorf("update note %d of task %d: %w", noteID, taskID, ErrNotFound)
	}
	if err := checkNoteText(text); err != nil {
		s.logger.Debug("update note rejected", "task_id", taskID, "note_id", noteID, "error", err)
		return fmt.Errorf("update note %d: %w", noteID, err)
	}

	s.notes[taskID][j].Text = text
	s.commit()
	return nil
}

// ToggleNoteCompletion flips the completion of a note. Reopening a note
// of an approved task revokes the approval.
func (s *Store) ToggleNoteCompletion(taskID, noteID int64) error {
	j := s.noteIndex(taskID, noteID)
	if j < 0 {
		return fmt.Errorf("toggle note %d of task %d: %w", noteID, taskID, ErrNotFound)
	}

	n := &s.notes[taskID][j]
	n.Completed = !n.Completed
	if !n.Completed {
		if i := s.taskIndex(taskID); i >= 0 {
			s.tasks[i].Approved = false
		}
	}
	s.commit()
	return nil
}
