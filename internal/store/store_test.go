package store

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/ptn/internal/models"
)

// frozenClock always returns the same instant so ids must come from the counter
func frozenClock() time.Time {
	return time.UnixMilli(1_700_000_000_000)
}

type recordingSaver struct {
	snapshots []Snapshot
}

func (r *recordingSaver) Save(s Snapshot) { r.snapshots = append(r.snapshots, s) }

func newTestStore(t *testing.T) (*Store, *recordingSaver) {
	t.Helper()
	rec := &recordingSaver{}
	return New(WithSaver(rec), WithClock(frozenClock)), rec
}

func TestAddTask(t *testing.T) {
	s, rec := newTestStore(t)

	task, err := s.AddTask("Check vitals")
	require.NoError(t, err)
	assert.Equal(t, "Check vitals", task.Text)
	assert.False(t, task.Approved)
	assert.Len(t, s.Tasks(), 1)
	assert.Len(t, rec.snapshots, 1)
}

func TestAddTaskRejectsInvalidText(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"blank", "   \t"},
		{"too long", strings.Repeat("a", models.TaskTextLimit+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rec := newTestStore(t)
			_, err := s.AddTask(tt.text)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Empty(t, s.Tasks())
			assert.Empty(t, rec.snapshots)
		})
	}
}

func TestTextLimitCountsRunes(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.AddTask(strings.Repeat("é", models.TaskTextLimit))
	assert.NoError(t, err)

	task, err := s.AddTask("Give meds")
	require.NoError(t, err)
	_, err = s.AddNote(task.ID, strings.Repeat("ü", models.NoteTextLimit))
	assert.NoError(t, err)
	_, err = s.AddNote(task.ID, strings.Repeat("ü", models.NoteTextLimit+1))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestIDsAreUniqueUnderFrozenClock(t *testing.T) {
	s, _ := newTestStore(t)

	seen := map[int64]bool{}
	var last int64
	for i := 0; i < 5; i++ {
		task, err := s.AddTask("task")
		require.NoError(t, err)
		note, err := s.AddNote(task.ID, "note")
		require.NoError(t, err)

		for _, id := range []int64{task.ID, note.ID} {
			assert.False(t, seen[id], "id %d reused", id)
			assert.Greater(t, id, last)
			seen[id] = true
			last = id
		}
	}
}

func TestIDsFollowClock(t *testing.T) {
	now := time.UnixMilli(5_000)
	s := New(WithClock(func() time.Time { return now }))

	first, err := s.AddTask("first")
	require.NoError(t, err)
	assert.Equal(t, int64(5_000), first.ID)

	now = time.UnixMilli(9_000)
	second, err := s.AddTask("second")
	require.NoError(t, err)
	assert.Equal(t, int64(9_000), second.ID)
}

func TestUpdateTask(t *testing.T) {
	s, rec := newTestStore(t)
	task, _ := s.AddTask("Check vitals")

	text := "Check vitals at 8am"
	require.NoError(t, s.UpdateTask(task.ID, TaskUpdate{Text: &text}))
	got, ok := s.Task(task.ID)
	require.True(t, ok)
	assert.Equal(t, text, got.Text)
	assert.Len(t, rec.snapshots, 2)

	blank := "  "
	assert.ErrorIs(t, s.UpdateTask(task.ID, TaskUpdate{Text: &blank}), ErrValidation)
	long := strings.Repeat("x", models.TaskTextLimit+1)
	assert.ErrorIs(t, s.UpdateTask(task.ID, TaskUpdate{Text: &long}), ErrValidation)
	got, _ = s.Task(task.ID)
	assert.Equal(t, text, got.Text)

	assert.ErrorIs(t, s.UpdateTask(42, TaskUpdate{Text: &text}), ErrNotFound)
	assert.Len(t, rec.snapshots, 2)
}

func TestUpdateTaskCannotBypassApproval(t *testing.T) {
	s, _ := newTestStore(t)
	task, _ := s.AddTask("Give meds")
	_, _ = s.AddNote(task.ID, "dose A")

	approved := true
	text := "Give meds now"
	err := s.UpdateTask(task.ID, TaskUpdate{Text: &text, Approved: &approved})
	assert.ErrorIs(t, err, ErrApprovalBlocked)

	got, _ := s.Task(task.ID)
	assert.False(t, got.Approved)
	assert.Equal(t, "Give meds", got.Text, "rejected update must not apply partially")
}

func TestDeleteTaskCascades(t *testing.T) {
	s, _ := newTestStore(t)
	keep, _ := s.AddTask("Check vitals")
	gone, _ := s.AddTask("Give meds")
	_, _ = s.AddNote(gone.ID, "dose A")

	require.NoError(t, s.DeleteTask(gone.ID))

	assert.Equal(t, []models.Task{keep}, s.Tasks())
	assert.NotContains(t, s.NotesByTask(), gone.ID)
	assert.Empty(t, s.Search("dose"))
	assert.Empty(t, s.Search("meds"))

	assert.ErrorIs(t, s.DeleteTask(gone.ID), ErrNotFound)
}

func TestApproveTaskWithoutNotes(t *testing.T) {
	s, _ := newTestStore(t)
	task, _ := s.AddTask("Check vitals")

	require.NoError(t, s.ApproveTask(task.ID))
	got, _ := s.Task(task.ID)
	assert.True(t, got.Approved)

	require.NoError(t, s.ApproveTask(task.ID))
	got, _ = s.Task(task.ID)
	assert.False(t, got.Approved)
}

func TestApproveTaskRequiresCompletedNotes(t *testing.T) {
	s, rec := newTestStore(t)
	task, _ := s.AddTask("Give meds")
	note, _ := s.AddNote(task.ID, "dose A")
	saves := len(rec.snapshots)

	assert.ErrorIs(t, s.ApproveTask(task.ID), ErrApprovalBlocked)
	got, _ := s.Task(task.ID)
	assert.False(t, got.Approved)
	assert.False(t, s.CanApprove(task.ID))
	assert.Len(t, rec.snapshots, saves)

	require.NoError(t, s.ToggleNoteCompletion(task.ID, note.ID))
	assert.True(t, s.CanApprove(task.ID))
	require.NoError(t, s.ApproveTask(task.ID))
	got, _ = s.Task(task.ID)
	assert.True(t, got.Approved)

	assert.ErrorIs(t, s.ApproveTask(99), ErrNotFound)
}

func TestNoteChangesRevokeApproval(t *testing.T) {
	s, _ := newTestStore(t)
	task, _ := s.AddTask("Give meds")
	note, _ := s.AddNote(task.ID, "dose A")
	require.NoError(t, s.ToggleNoteCompletion(task.ID, note.ID))
	require.NoError(t, s.ApproveTask(task.ID))

	require.NoError(t, s.ToggleNoteCompletion(task.ID, note.ID))
	got, _ := s.Task(task.ID)
	assert.False(t, got.Approved)

	require.NoError(t, s.ToggleNoteCompletion(task.ID, note.ID))
	require.NoError(t, s.ApproveTask(task.ID))
	_, err := s.AddNote(task.ID, "dose B")
	require.NoError(t, err)
	got, _ = s.Task(task.ID)
	assert.False(t, got.Approved)
}

func TestAddNote(t *testing.T) {
	s, _ := newTestStore(t)
	task, _ := s.AddTask("Give meds")

	first, err := s.AddNote(task.ID, "dose A")
	require.NoError(t, err)
	second, err := s.AddNote(task.ID, "dose B")
	require.NoError(t, err)

	notes := s.Notes(task.ID)
	require.Len(t, notes, 2)
	assert.Equal(t, first, notes[0])
	assert.Equal(t, second, notes[1])
	assert.False(t, notes[0].Completed)

	_, err = s.AddNote(task.ID, " ")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.AddNote(12345, "orphan")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, s.Notes(task.ID), 2)
	assert.NotContains(t, s.NotesByTask(), int64(12345))
}

func TestUpdateNote(t *testing.T) {
	s, _ := newTestStore(t)
	task, _ := s.AddTask("Give meds")
	note, _ := s.AddNote(task.ID, "dose A")
	require.NoError(t, s.ToggleNoteCompletion(task.ID, note.ID))

	require.NoError(t, s.UpdateNote(task.ID, note.ID, "dose A 5mg"))
	got := s.Notes(task.ID)[0]
	assert.Equal(t, "dose A 5mg", got.Text)
	assert.True(t, got.Completed)

	assert.ErrorIs(t, s.UpdateNote(task.ID, note.ID, ""), ErrValidation)
	assert.ErrorIs(t, s.UpdateNote(task.ID, note.ID, strings.Repeat("n", models.NoteTextLimit+1)), ErrValidation)
	assert.ErrorIs(t, s.UpdateNote(task.ID, 7, "x"), ErrNotFound)
	assert.ErrorIs(t, s.UpdateNote(7, note.ID, "x"), ErrNotFound)
	assert.Equal(t, "dose A 5mg", s.Notes(task.ID)[0].Text)
}

func TestToggleNoteCompletionTwiceRestores(t *testing.T) {
	s, _ := newTestStore(t)
	task, _ := s.AddTask("Give meds")
	note, _ := s.AddNote(task.ID, "dose A")

	require.NoError(t, s.ToggleNoteCompletion(task.ID, note.ID))
	assert.True(t, s.Notes(task.ID)[0].Completed)
	require.NoError(t, s.ToggleNoteCompletion(task.ID, note.ID))
	assert.False(t, s.Notes(task.ID)[0].Completed)

	assert.ErrorIs(t, s.ToggleNoteCompletion(task.ID, 1), ErrNotFound)
}

func TestSearch(t *testing.T) {
	s, _ := newTestStore(t)
	vitals, _ := s.AddTask("Check vitals")
	meds, _ := s.AddTask("Give meds")
	_, _ = s.AddNote(meds.ID, "dose A")

	assert.Equal(t, []models.Task{meds}, s.Search("dose"))
	assert.Equal(t, []models.Task{meds}, s.Search("DOSE"))
	assert.Equal(t, []models.Task{vitals}, s.Search("Vitals"))
	assert.Equal(t, []models.Task{vitals, meds}, s.Search(""))
	assert.Empty(t, s.Search("  "))
	assert.Equal(t, []models.Task{meds}, s.Search("e A"))
	assert.Empty(t, s.Search("bandage"))
}

func TestProgress(t *testing.T) {
	s, _ := newTestStore(t)
	task, _ := s.AddTask("Give meds")
	assert.Zero(t, s.Progress(task.ID))

	a, _ := s.AddNote(task.ID, "dose A")
	_, _ = s.AddNote(task.ID, "dose B")
	require.NoError(t, s.ToggleNoteCompletion(task.ID, a.ID))
	assert.InDelta(t, 0.5, s.Progress(task.ID), 1e-9)
}

func TestReturnedCollectionsAreCopies(t *testing.T) {
	s, _ := newTestStore(t)
	task, _ := s.AddTask("Give meds")
	_, _ = s.AddNote(task.ID, "dose A")

	tasks := s.Tasks()
	tasks[0].Approved = true
	notes := s.NotesByTask()
	notes[task.ID][0].Completed = true

	got, _ := s.Task(task.ID)
	assert.False(t, got.Approved)
	assert.False(t, s.Notes(task.ID)[0].Completed)
}

func TestSnapshotFollowsMutation(t *testing.T) {
	s, rec := newTestStore(t)
	task, _ := s.AddTask("Give meds")
	note, _ := s.AddNote(task.ID, "dose A")
	require.NoError(t, s.ToggleNoteCompletion(task.ID, note.ID))

	require.Len(t, rec.snapshots, 3)
	last := rec.snapshots[2]
	assert.Equal(t, s.Tasks(), last.Tasks)
	assert.True(t, last.Notes[task.ID][0].Completed)
}

func TestRestore(t *testing.T) {
	s, rec := newTestStore(t)
	s.Restore(
		[]models.Task{
			{ID: 10, Text: "Check vitals", Approved: true},
			{ID: 20, Text: "Give meds", Approved: true},
			{ID: 10, Text: "duplicate"},
		},
		map[int64][]models.Note{
			20: {{ID: 21, Text: "dose A"}},
			99: {{ID: 500, Text: "orphan"}},
		},
	)

	assert.Empty(t, rec.snapshots)
	tasks := s.Tasks()
	require.Len(t, tasks, 2)
	assert.True(t, tasks[0].Approved)
	assert.False(t, tasks[1].Approved)
	assert.NotContains(t, s.NotesByTask(), int64(99))

	task, err := s.AddTask("next")
	require.NoError(t, err)
	assert.Greater(t, task.ID, int64(21))
}

func TestRestoreDropsInvalidEntries(t *testing.T) {
	s, _ := newTestStore(t)
	s.Restore(
		[]models.Task{
			{},
			{ID: 10, Text: "   "},
			{ID: 11, Text: strings.Repeat("x", models.TaskTextLimit+1)},
			{ID: 20, Text: "Give meds", Approved: true},
		},
		map[int64][]models.Note{
			20: {
				{Text: "no id", Completed: true},
				{ID: 21, Text: "", Completed: true},
				{ID: 22, Text: "dose A", Completed: true},
				{ID: 22, Text: "repeated id"},
			},
		},
	)

	tasks := s.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, int64(20), tasks[0].ID)
	assert.True(t, tasks[0].Approved)
	assert.Equal(t, []models.Note{{ID: 22, Text: "dose A", Completed: true}}, s.Notes(20))
}
