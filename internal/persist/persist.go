// Package persist maps store state to and from a key-value medium.
//
// State is kept as two independent JSON values: the ordered task list
// under KeyTasks and the task id to notes mapping under KeyNotes. A blob
// that is missing or cannot be decoded loads as empty.
package persist

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/tgienger/ptn/internal/models"
	"github.com/tgienger/ptn/internal/store"
)

// Keys the two blobs are stored under
const (
	KeyTasks = "tasks"
	KeyNotes = "notes"
)

// Medium is a durable string key-value store. Get returns "" and no
// error for a missing key.
type Medium interface {
	Get(key string) (string, error)
	Put(key, value string) error
}

// Load reads saved state from m. It never fails: unreadable or malformed
// blobs are logged and replaced by empty containers, and a stored null
// loads as empty too. Entries that decode but do not form valid tasks or
// notes are left for store.Restore to drop.
func Load(m Medium, logger *slog.Logger) ([]models.Task, map[int64][]models.Note) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var tasks []models.Task
	if err := decode(m, KeyTasks, &tasks); err != nil {
		logger.Warn("discarding saved tasks", "error", err)
		tasks = nil
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	var notes map[int64][]models.Note
	if err := decode(m, KeyNotes, &notes); err != nil {
		logger.Warn("discarding saved notes", "error", err)
		notes = nil
	}
	if notes == nil {
		notes = map[int64][]models.Note{}
	}

	return tasks, notes
}

func decode(m Medium, key string, v any) error {
	raw, err := m.Get(key)
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Save writes tasks then notes to m
func Save(m Medium, tasks []models.Task, notes map[int64][]models.Note) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	if notes == nil {
		notes = map[int64][]models.Note{}
	}

	tasksJSON, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode %s: %w", KeyTasks, err)
	}
	notesJSON, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("encode %s: %w", KeyNotes, err)
	}

	if err := m.Put(KeyTasks, string(tasksJSON)); err != nil {
		return fmt.Errorf("write %s: %w", KeyTasks, err)
	}
	if err := m.Put(KeyNotes, string(notesJSON)); err != nil {
		return fmt.Errorf("write %s: %w", KeyNotes, err)
	}
	return nil
}

// Bridge saves store snapshots to a medium. Write failures are logged
// and dropped; the session keeps running on in-memory state.
type Bridge struct {
	medium Medium
	logger *slog.Logger
}

// NewBridge creates a Bridge writing to m
func NewBridge(m Medium, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Bridge{medium: m, logger: logger}
}

// Save implements store.Saver
func (b *Bridge) Save(s store.Snapshot) {
	if err := Save(b.medium, s.Tasks, s.Notes); err != nil {
		b.logger.Warn("saving state failed", "error", err)
	}
}

// Load reads saved state from the bridge's medium
func (b *Bridge) Load() ([]models.Task, map[int64][]models.Note) {
	return Load(b.medium, b.logger)
}
