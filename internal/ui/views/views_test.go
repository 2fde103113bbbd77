package views

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/ptn/internal/store"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

func send(m tea.Model, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

func TestPlainStripsControlSequences(t *testing.T) {
	assert.Equal(t, "dose A", Plain("\x1b[31mdose A\x1b[0m"))
	assert.Equal(t, "a b", Plain("a\nb"))
	assert.Equal(t, "<b>bold</b>", Plain("<b>bold</b>"))
}

func TestCharCountUsesRunes(t *testing.T) {
	assert.Equal(t, "3/50", charCount("äöü", 50))
}

func TestStatusFor(t *testing.T) {
	assert.Empty(t, statusFor(nil, 70))
	assert.Empty(t, statusFor(store.ErrNotFound, 70))
	assert.Contains(t, statusFor(store.ErrValidation, 70), "1-70")
	assert.NotEmpty(t, statusFor(store.ErrApprovalBlocked, 70))
}

func TestTaskListCreateTask(t *testing.T) {
	st := store.New()
	v := NewTaskListView(st)
	send(v, tea.WindowSizeMsg{Width: 100, Height: 40})

	send(v, runes("n"), runes("Check vitals"), enter)

	require.Len(t, st.Tasks(), 1)
	assert.Equal(t, "Check vitals", st.Tasks()[0].Text)
	assert.False(t, v.editing)
	assert.Contains(t, v.View(), "Check vitals")
}

func TestTaskListKeepsInputOnRejectedText(t *testing.T) {
	st := store.New()
	v := NewTaskListView(st)

	send(v, runes("n"), runes("   "), enter)

	assert.Empty(t, st.Tasks())
	assert.True(t, v.editing)
	assert.Equal(t, "   ", v.editText.Value())
	assert.NotEmpty(t, v.status)
}

func TestTaskListEditTask(t *testing.T) {
	st := store.New()
	task, _ := st.AddTask("Check vitals")
	v := NewTaskListView(st)

	send(v, runes("e"), runes(" now"), enter)

	got, _ := st.Task(task.ID)
	assert.Equal(t, "Check vitals now", got.Text)
}

func TestTaskListSearchMatchesNotes(t *testing.T) {
	st := store.New()
	_, _ = st.AddTask("Check vitals")
	meds, _ := st.AddTask("Give meds")
	_, _ = st.AddNote(meds.ID, "dose A")
	v := NewTaskListView(st)
	require.Len(t, v.Tasks(), 2)

	send(v, runes("/"), runes("dose"))

	require.Len(t, v.Tasks(), 1)
	assert.Equal(t, meds.ID, v.Tasks()[0].ID)

	send(v, enter, esc)
	assert.Empty(t, v.Query())
	assert.Len(t, v.Tasks(), 2)
}

func TestTaskListApproveBlocked(t *testing.T) {
	st := store.New()
	task, _ := st.AddTask("Give meds")
	_, _ = st.AddNote(task.ID, "dose A")
	v := NewTaskListView(st)

	send(v, runes("a"))

	got, _ := st.Task(task.ID)
	assert.False(t, got.Approved)
	assert.NotEmpty(t, v.status)
}

func TestTaskListDeleteConfirm(t *testing.T) {
	st := store.New()
	_, _ = st.AddTask("Check vitals")
	v := NewTaskListView(st)

	send(v, runes("d"), runes("n"))
	assert.Len(t, st.Tasks(), 1)

	send(v, runes("d"), runes("y"))
	assert.Empty(t, st.Tasks())
	assert.Empty(t, v.Tasks())
}

func TestTaskListEnterOpensNotes(t *testing.T) {
	st := store.New()
	task, _ := st.AddTask("Check vitals")
	v := NewTaskListView(st)

	cmd := send(v, enter)
	require.NotNil(t, cmd)
	assert.Equal(t, SelectedTask{TaskID: task.ID}, cmd())
}

func TestNoteListApprovalFlow(t *testing.T) {
	st := store.New()
	task, _ := st.AddTask("Give meds")
	v := NewNoteListView(st, task.ID)
	send(v, tea.WindowSizeMsg{Width: 100, Height: 40})

	send(v, runes("n"), runes("dose A"), enter)
	notes := st.Notes(task.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, "dose A", notes[0].Text)

	send(v, runes("a"))
	got, _ := st.Task(task.ID)
	assert.False(t, got.Approved)
	assert.NotEmpty(t, v.status)

	send(v, space, runes("a"))
	got, _ = st.Task(task.ID)
	assert.True(t, got.Approved)
	assert.True(t, st.Notes(task.ID)[0].Completed)
	assert.Contains(t, v.View(), "approved")
}

func TestNoteListEditNote(t *testing.T) {
	st := store.New()
	task, _ := st.AddTask("Give meds")
	_, _ = st.AddNote(task.ID, "dose A")
	v := NewNoteListView(st, task.ID)

	send(v, runes("e"), runes("!"), enter)
	assert.Equal(t, "dose A!", st.Notes(task.ID)[0].Text)

	send(v, runes("e"), runes(strings.Repeat("x", 10)), esc)
	assert.Equal(t, "dose A!", st.Notes(task.ID)[0].Text)
}

func TestNoteListRendersNoteAsPlainText(t *testing.T) {
	st := store.New()
	task, _ := st.AddTask("Give meds")
	_, _ = st.AddNote(task.ID, "\x1b[2Jdose A")
	v := NewNoteListView(st, task.ID)
	send(v, tea.WindowSizeMsg{Width: 100, Height: 40})

	out := v.View()
	assert.Contains(t, out, "dose A")
	assert.NotContains(t, out, "\x1b[2J")
}

func TestNoteListDeleteTaskGoesBack(t *testing.T) {
	st := store.New()
	task, _ := st.AddTask("Give meds")
	v := NewNoteListView(st, task.ID)

	cmd := send(v, runes("d"), runes("y"))
	require.NotNil(t, cmd)
	assert.Equal(t, BackToTasks{}, cmd())
	assert.Empty(t, st.Tasks())
}
