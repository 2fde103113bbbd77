// Package store holds the in-memory task and note state.
//
// The Store is a plain structure with methods. It is not safe for
// concurrent use; the UI event loop is its only caller. Every accepted
// mutation hands a full snapshot to the configured Saver after the
// in-memory change is complete.
package store

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/tgienger/ptn/internal/models"
)

// Snapshot is a deep copy of the store contents
type Snapshot struct {
	Tasks []models.Task
	Notes map[int64][]models.Note
}

// Saver receives a snapshot after each accepted mutation
type Saver interface {
	Save(Snapshot)
}

// Option configures a Store
type Option func(*Store)

// WithSaver sets the snapshot receiver
func WithSaver(s Saver) Option {
	return func(st *Store) { st.saver = s }
}

// WithLogger sets the logger used for rejected mutations
func WithLogger(l *slog.Logger) Option {
	return func(st *Store) { st.logger = l }
}

// WithClock overrides the time source used for id generation
func WithClock(now func() time.Time) Option {
	return func(st *Store) { st.now = now }
}

// Store owns the canonical tasks and notes
type Store struct {
	tasks  []models.Task
	notes  map[int64][]models.Note
	lastID int64

	saver  Saver
	logger *slog.Logger
	now    func() time.Time
}

// New creates an empty store
func New(opts ...Option) *Store {
	s := &Store{
		notes:  make(map[int64][]models.Note),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore replaces the store contents with previously saved state.
// Entries without an id, with a repeated id or with invalid text are
// dropped, as are note lists for unknown tasks. A task that is approved
// while holding incomplete notes is restored unapproved. Restore does
// not trigger a save.
func (s *Store) Restore(tasks []models.Task, notes map[int64][]models.Note) {
	s.tasks = make([]models.Task, 0, len(tasks))
	s.notes = make(map[int64][]models.Note)
	s.lastID = 0

	seen := make(map[int64]bool, len(tasks))
	for _, t := range tasks {
		switch {
		case t.ID <= 0:
			s.logger.Warn("dropping task without id")
			continue
		case seen[t.ID]:
			s.logger.Warn("dropping duplicate task", "task_id", t.ID)
			continue
		case checkTaskText(t.Text) != nil:
			s.logger.Warn("dropping task with invalid text", "task_id", t.ID)
			continue
		}
		seen[t.ID] = true
		s.tasks = append(s.tasks, t)
		s.observeID(t.ID)
	}

	noteIDs := make(map[int64]bool)
	for taskID, list := range notes {
		if !seen[taskID] {
			s.logger.Warn("dropping notes for unknown task", "task_id", taskID, "count", len(list))
			continue
		}
		kept := make([]models.Note, 0, len(list))
		for _, n := range list {
			if n.ID <= 0 || noteIDs[n.ID] || checkNoteText(n.Text) != nil {
				s.logger.Warn("dropping invalid note", "task_id", taskID, "note_id", n.ID)
				continue
			}
			noteIDs[n.ID] = true
			kept = append(kept, n)
			s.observeID(n.ID)
		}
		if len(kept) > 0 {
			s.notes[taskID] = kept
		}
	}

	for i := range s.tasks {
		t := &s.tasks[i]
		if t.Approved && !models.AllCompleted(s.notes[t.ID]) {
			s.logger.Warn("restoring task unapproved, notes incomplete", "task_id", t.ID)
			t.Approved = false
		}
	}
}

func (s *Store) observeID(id int64) {
	if id > s.lastID {
		s.lastID = id
	}
}

// nextID returns a creation-time derived id strictly greater than any
// id handed out or restored so far
func (s *Store) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *Store) taskIndex(id int64) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) noteIndex(taskID, noteID int64) int {
	for i, n := range s.notes[taskID] {
		if n.ID == noteID {
			return i
		}
	}
	return -1
}

// commit hands the current state to the saver
func (s *Store) commit() {
	if s.saver == nil {
		return
	}
	s.saver.Save(s.Snapshot())
}

// Snapshot returns a deep copy of the current state
func (s *Store) Snapshot() Snapshot {
	return Snapshot{Tasks: s.Tasks(), Notes: s.NotesByTask()}
}

// Tasks returns all tasks in insertion order
func (s *Store) Tasks() []models.Task {
	return append([]models.Task{}, s.tasks...)
}

// Task returns the task with the given id
func (s *Store) Task(id int64) (models.Task, bool) {
	i := s.taskIndex(id)
	if i < 0 {
		return models.Task{}, false
	}
	return s.tasks[i], true
}

// Notes returns the notes of a task in insertion order
func (s *Store) Notes(taskID int64) []models.Note {
	return append([]models.Note{}, s.notes[taskID]...)
}

// NotesByTask returns a copy of the task id to notes mapping
func (s *Store) NotesByTask() map[int64][]models.Note {
	out := make(map[int64][]models.Note, len(s.notes))
	for id, list := range s.notes {
		out[id] = append([]models.Note{}, list...)
	}
	return out
}

// CanApprove reports whether the task could be approved now
func (s *Store) CanApprove(taskID int64) bool {
	return s.taskIndex(taskID) >= 0 && models.AllCompleted(s.notes[taskID])
}

// Progress returns the fraction of completed notes, 0 when there are none
func (s *Store) Progress(taskID int64) float64 {
	list := s.notes[taskID]
	if len(list) == 0 {
		return 0
	}
	done := 0
	for _, n := range list {
		if n.Completed {
			done++
		}
	}
	return float64(done) / float64(len(list))
}

// Search returns tasks whose text, or any of whose notes' text, contains
// query case-insensitively. An empty query matches every task; whitespace
// is matched literally.
func (s *Store) Search(query string) []models.Task {
	if query == "" {
		return s.Tasks()
	}
	q := strings.ToLower(query)

	var out []models.Task
	for _, t := range s.tasks {
		if s.matches(t, q) {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) matches(t models.Task, q string) bool {
	if strings.Contains(strings.ToLower(t.Text), q) {
		return true
	}
	for _, n := range s.notes[t.ID] {
		if strings.Contains(strings.ToLower(n.Text), q) {
			return true
		}
	}
	return false
}
