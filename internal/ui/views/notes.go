package views

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/ptn/internal/models"
	"github.com/tgienger/ptn/internal/store"
	"github.com/tgienger/ptn/internal/ui/keys"
	"github.com/tgienger/ptn/internal/ui/styles"
)

type noteItem struct {
	note models.Note
}

func (i noteItem) Title() string       { return i.note.Text }
func (i noteItem) Description() string { return "" }
func (i noteItem) FilterValue() string { return i.note.Text }

type noteDelegate struct {
	styles *styles.Styles
	width  int
}

func (d noteDelegate) Height() int                               { return 1 }
func (d noteDelegate) Spacing() int                              { return 0 }
func (d noteDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d noteDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	n, ok := item.(noteItem)
	if !ok {
		return
	}

	width := max(d.width-4, 20)

	box := "[ ]"
	textStyle := d.styles.Note
	if n.note.Completed {
		box = "[x]"
		textStyle = d.styles.NoteDone
	}

	rowStyle := d.styles.ListItem.Width(width)
	if index == m.Index() {
		rowStyle = d.styles.ListSelected.Width(width)
	}

	fmt.Fprint(w, rowStyle.Render(fmt.Sprintf("%d. %s %s", index+1, box, textStyle.Render(Plain(n.note.Text)))))
}

// BackToTasks signals to go back to the task list
type BackToTasks struct{}

// NoteListView shows one task with its notes
type NoteListView struct {
	store    *store.Store
	taskID   int64
	task     models.Task
	list     list.Model
	delegate *noteDelegate
	progress progress.Model
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int

	// Note creation/editing
	editing    bool
	editNoteID int64 // 0 when adding a new note
	noteInput  textinput.Model

	confirmingDelete bool
	status           string

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

// NewNoteListView creates the notes view for a task
func NewNoteListView(st *store.Store, taskID int64) *NoteListView {
	s := styles.NewStyles()

	noteInput := textinput.New()
	noteInput.Placeholder = "Add note"
	noteInput.CharLimit = models.NoteTextLimit

	delegate := &noteDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	v := &NoteListView{
		store:     st,
		taskID:    taskID,
		list:      l,
		delegate:  delegate,
		progress:  progress.New(progress.WithSolidFill(string(styles.Current.Primary)), progress.WithoutPercentage()),
		styles:    s,
		keys:      keys.DefaultKeyMap(),
		noteInput: noteInput,
	}
	v.refresh()
	return v
}

// Init initializes the view
func (v *NoteListView) Init() tea.Cmd {
	return nil
}

// refresh re-reads the task and its notes from the store
func (v *NoteListView) refresh() {
	if t, ok := v.store.Task(v.taskID); ok {
		v.task = t
	}

	notes := v.store.Notes(v.taskID)
	items := make([]list.Item, len(notes))
	for i, n := range notes {
		items[i] = noteItem{note: n}
	}
	idx := v.list.Index()
	v.list.SetItems(items)
	if len(items) > 0 {
		v.list.Select(clamp(idx, 0, len(items)-1))
	}
}

func (v *NoteListView) selected() (models.Note, bool) {
	item, ok := v.list.SelectedItem().(noteItem)
	if !ok {
		return models.Note{}, false
	}
	return item.note, true
}

// Update handles messages
func (v *NoteListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, max(msg.Height-14, 3))
		v.progress.Width = clamp(contentWidth-8, 10, 60)
		return v, nil

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.editing {
			return v.updateEditing(msg)
		}

		v.status = ""
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *NoteListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToTasks{} }

	case key.Matches(msg, v.keys.Up):
		v.list.CursorUp()
		return v, nil

	case key.Matches(msg, v.keys.Down):
		v.list.CursorDown()
		return v, nil

	case key.Matches(msg, v.keys.Toggle), key.Matches(msg, v.keys.Enter):
		if n, ok := v.selected(); ok {
			_ = v.store.ToggleNoteCompletion(v.taskID, n.ID)
			v.refresh()
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.editing = true
		v.editNoteID = 0
		v.noteInput.Reset()
		v.noteInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit):
		if n, ok := v.selected(); ok {
			v.editing = true
			v.editNoteID = n.ID
			v.noteInput.SetValue(n.Text)
			v.noteInput.CursorEnd()
			v.noteInput.Focus()
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Approve):
		v.status = statusFor(v.store.ApproveTask(v.taskID), models.NoteTextLimit)
		v.refresh()
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		v.confirmingDelete = true
		return v, nil

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

func (v *NoteListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		_ = v.store.DeleteTask(v.taskID)
		return v, func() tea.Msg { return BackToTasks{} }
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *NoteListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		v.noteInput.Blur()
		v.status = ""
		return v, nil

	case key.Matches(msg, v.keys.Save), key.Matches(msg, v.keys.Enter):
		v.saveNote()
		return v, nil
	}

	var cmd tea.Cmd
	v.noteInput, cmd = v.noteInput.Update(msg)
	return v, cmd
}

// saveNote adds or updates the note being edited. A rejected note keeps
// the input open with the user's text.
func (v *NoteListView) saveNote() {
	text := v.noteInput.Value()

	var err error
	if v.editNoteID == 0 {
		_, err = v.store.AddNote(v.taskID, text)
	} else {
		err = v.store.UpdateNote(v.taskID, v.editNoteID, text)
	}

	if msg := statusFor(err, models.NoteTextLimit); msg != "" {
		v.status = msg
		return
	}

	wasNew := v.editNoteID == 0
	v.editing = false
	v.noteInput.Blur()
	v.noteInput.Reset()
	v.refresh()
	if wasNew && err == nil {
		v.list.Select(len(v.list.Items()) - 1)
	}
}

// View renders the view
func (v *NoteListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	title := s.Title.Render(Plain(v.task.Text))
	if v.task.Approved {
		title += " " + s.TaskApproved.Render("✓ approved")
	}

	pct := v.store.Progress(v.taskID)
	v.progress.FullColor = string(styles.Current.Primary)
	if pct >= 1 {
		v.progress.FullColor = string(styles.Current.Success)
	}
	bar := v.progress.ViewAs(pct)

	notes := v.list.Items()
	done := 0
	for _, item := range notes {
		if item.(noteItem).note.Completed {
			done++
		}
	}
	summary := s.TitleMuted.Render(fmt.Sprintf("%d/%d notes done", done, len(notes)))

	approveLabel := " Approve "
	if v.task.Approved {
		approveLabel = " Unapprove "
	}
	approveBtn := s.ButtonPrimary.Render(approveLabel)
	if !v.task.Approved && !v.store.CanApprove(v.taskID) {
		approveBtn = s.Button.Foreground(styles.Current.ForegroundDim).Render(approveLabel)
	}

	var body string
	if len(notes) == 0 {
		body = s.TitleMuted.Render("No notes. Press 'n' to add one.")
	} else {
		body = v.list.View()
	}

	rows := []string{title, bar, summary, approveBtn, "", body, ""}

	if v.editing {
		label := "New note:"
		if v.editNoteID != 0 {
			label = "Edit note:"
		}
		inputWidth := clamp(contentWidth-6, 20, models.NoteTextLimit+4)
		rows = append(rows,
			label,
			s.InputFocused.Width(inputWidth).Render(v.noteInput.View()),
			s.TitleMuted.Render(charCount(v.noteInput.Value(), models.NoteTextLimit)+" • Enter: save • Esc: cancel"),
		)
	}

	if v.status != "" {
		rows = append(rows, s.StatusBarError.Render(v.status))
	}
	rows = append(rows, v.renderHelp())

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return styles.CenterView(content, v.width, v.height)
}

func (v *NoteListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 60 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s done • %s new • %s edit • %s approve • %s del task • %s back",
			v.styles.HelpKey.Render("space"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("a"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("esc"),
		),
	)
}

func (v *NoteListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("space") + "  toggle note done",
		s.HelpKey.Render("n") + "      new note",
		s.HelpKey.Render("e") + "      edit note",
		s.HelpKey.Render("a") + "      approve / unapprove task",
		s.HelpKey.Render("d") + "      delete task",
		s.HelpKey.Render("esc") + "    back to tasks",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.FilterBar.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *NoteListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render("This will also delete all notes of this task."),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
