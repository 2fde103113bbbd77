package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/ptn/internal/models"
	"github.com/tgienger/ptn/internal/store"
	"github.com/tgienger/ptn/internal/ui/keys"
	"github.com/tgienger/ptn/internal/ui/styles"
)

// FocusArea represents which part of the UI has focus
type FocusArea int

const (
	FocusSearchInput FocusArea = iota
	FocusTaskList
)

// SelectedTask signals that a task's notes should be opened
type SelectedTask struct {
	TaskID int64
}

// TaskListView shows the tasks matching the current search
type TaskListView struct {
	store  *store.Store
	tasks  []models.Task
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	// UI state
	focus       FocusArea
	cursor      int
	scrollY     int
	searchInput textinput.Model

	// Task creation/editing
	editing    bool
	editingNew bool
	editTaskID int64
	editText   textinput.Model

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   int64
	deleteTargetName string

	// Last rejected operation, shown until the next key press
	status string

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

// NewTaskListView creates a new task list view
func NewTaskListView(st *store.Store) *TaskListView {
	s := styles.NewStyles()

	search := textinput.New()
	search.Placeholder = "Search tasks and notes..."
	search.CharLimit = 100

	editText := textinput.New()
	editText.Placeholder = "Task"
	editText.CharLimit = models.TaskTextLimit

	v := &TaskListView{
		store:       st,
		styles:      s,
		keys:        keys.DefaultKeyMap(),
		focus:       FocusTaskList,
		searchInput: search,
		editText:    editText,
	}
	v.refresh()
	return v
}

// Init initializes the view
func (v *TaskListView) Init() tea.Cmd {
	return nil
}

// Tasks returns the tasks currently listed
func (v *TaskListView) Tasks() []models.Task {
	return v.tasks
}

// Query returns the current search text
func (v *TaskListView) Query() string {
	return v.searchInput.Value()
}

// refresh re-reads the filtered task list from the store
func (v *TaskListView) refresh() {
	v.tasks = v.store.Search(v.searchInput.Value())
	if v.cursor >= len(v.tasks) {
		v.cursor = max(0, len(v.tasks)-1)
	}
	v.ensureVisible()
}

// Refresh re-reads the store, e.g. after returning from the notes view
func (v *TaskListView) Refresh() {
	v.refresh()
}

// Update handles messages
func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ensureVisible()
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

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle search input typing first - don't process hotkeys while typing
	if v.focus == FocusSearchInput {
		switch {
		case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Tab):
			v.searchInput.Blur()
			v.focus = FocusTaskList
			return v, nil
		default:
			var cmd tea.Cmd
			v.searchInput, cmd = v.searchInput.Update(msg)
			v.cursor = 0
			v.scrollY = 0
			v.refresh()
			return v, cmd
		}
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		// Clear an active search
		if v.searchInput.Value() != "" {
			v.searchInput.Reset()
			v.refresh()
		}
		return v, nil

	case key.Matches(msg, v.keys.Tab), key.Matches(msg, v.keys.Search):
		v.focus = FocusSearchInput
		v.searchInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.tasks)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if task, ok := v.selected(); ok {
			return v, func() tea.Msg { return SelectedTask{TaskID: task.ID} }
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.startNewTask()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit):
		if task, ok := v.selected(); ok {
			v.startEditTask(task)
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Approve):
		if task, ok := v.selected(); ok {
			v.status = statusFor(v.store.ApproveTask(task.ID), models.TaskTextLimit)
			v.refresh()
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if task, ok := v.selected(); ok {
			v.confirmingDelete = true
			v.deleteTargetID = task.ID
			v.deleteTargetName = task.Text
		}
		return v, nil

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

func (v *TaskListView) selected() (models.Task, bool) {
	if v.cursor < 0 || v.cursor >= len(v.tasks) {
		return models.Task{}, false
	}
	return v.tasks[v.cursor], true
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		_ = v.store.DeleteTask(v.deleteTargetID)
		v.confirmingDelete = false
		v.refresh()
		return v, nil
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *TaskListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		v.editText.Blur()
		v.status = ""
		return v, nil

	case key.Matches(msg, v.keys.Save), key.Matches(msg, v.keys.Enter):
		return v, v.saveTask()
	}

	var cmd tea.Cmd
	v.editText, cmd = v.editText.Update(msg)
	return v, cmd
}

func (v *TaskListView) ensureVisible() {
	// Each task item is 1 line + 1 margin = 2 lines
	availableHeight := v.height - 10
	if availableHeight < 2 {
		availableHeight = 2
	}
	visibleItems := availableHeight / 2
	if visibleItems < 1 {
		visibleItems = 1
	}

	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visibleItems {
		v.scrollY = v.cursor - visibleItems + 1
	}
}

func (v *TaskListView) startNewTask() {
	v.editing = true
	v.editingNew = true
	v.editTaskID = 0
	v.status = ""
	v.editText.Reset()
	v.editText.Focus()
}

func (v *TaskListView) startEditTask(task models.Task) {
	v.editing = true
	v.editingNew = false
	v.editTaskID = task.ID
	v.status = ""
	v.editText.SetValue(task.Text)
	v.editText.CursorEnd()
	v.editText.Focus()
}

// saveTask submits the form. On rejection the form stays open with the
// user's text so it can be corrected.
func (v *TaskListView) saveTask() tea.Cmd {
	text := v.editText.Value()

	var err error
	if v.editingNew {
		var task models.Task
		task, err = v.store.AddTask(text)
		if err == nil {
			v.searchInput.Reset()
			v.refresh()
			for i, t := range v.tasks {
				if t.ID == task.ID {
					v.cursor = i
				}
			}
		}
	} else {
		err = v.store.UpdateTask(v.editTaskID, store.TaskUpdate{Text: &text})
	}

	if err != nil && statusFor(err, models.TaskTextLimit) != "" {
		v.status = statusFor(err, models.TaskTextLimit)
		return nil
	}

	v.editing = false
	v.editText.Blur()
	v.status = ""
	v.refresh()
	return nil
}

// View renders the view
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if v.editing {
		return v.renderEditForm()
	}

	var b strings.Builder

	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")

	b.WriteString(v.renderTaskList())

	b.WriteString("\n")
	if v.status != "" {
		b.WriteString(v.styles.StatusBarError.Render(v.status))
		b.WriteString("\n")
	}
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	searchStyle := s.Input
	if v.focus == FocusSearchInput {
		searchStyle = s.InputFocused
	}
	searchWidth := clamp(contentWidth-8, 10, 40)
	searchBox := searchStyle.Width(searchWidth).Render(v.searchInput.View())

	approved := 0
	for _, t := range v.tasks {
		if t.Approved {
			approved++
		}
	}
	counts := s.TaskCount.Render(fmt.Sprintf("%d tasks • %d approved", len(v.tasks), approved))

	title := s.Title.Render("Patient Tasks")
	return lipgloss.JoinVertical(lipgloss.Left, title, searchBox, counts)
}

func (v *TaskListView) renderTaskList() string {
	s := v.styles

	if len(v.tasks) == 0 {
		if v.searchInput.Value() != "" {
			return s.TitleMuted.Render("No tasks match the search.")
		}
		return s.TitleMuted.Render("No tasks. Press 'n' to create one.")
	}

	availableHeight := v.height - 10
	if availableHeight < 2 {
		availableHeight = 2
	}
	visibleItems := max(availableHeight/2, 1)

	var items []string
	endIdx := min(v.scrollY+visibleItems, len(v.tasks))

	for i := v.scrollY; i < endIdx; i++ {
		task := v.tasks[i]
		items = append(items, v.renderTaskItem(task, i == v.cursor && v.focus == FocusTaskList))
	}

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TaskListView) renderTaskItem(task models.Task, selected bool) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)

	notes := v.store.Notes(task.ID)
	done := 0
	for _, n := range notes {
		if n.Completed {
			done++
		}
	}

	mark := "○"
	if task.Approved {
		mark = s.TaskApproved.Render("✓")
	}
	line := fmt.Sprintf("%s %s  %s", mark, Plain(task.Text),
		s.TitleMuted.Render(fmt.Sprintf("(%d/%d)", done, len(notes))))

	itemStyle := s.ListItem.Width(width)
	if selected {
		itemStyle = s.ListSelected.Width(width)
	}
	return itemStyle.Render(line) + "\n"
}

func (v *TaskListView) renderEditForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	formTitle := "New Task"
	if !v.editingNew {
		formTitle = "Edit Task"
	}

	inputWidth := clamp(contentWidth-6, 20, models.TaskTextLimit+4)

	rows := []string{
		s.Title.Render(formTitle),
		"",
		s.InputFocused.Width(inputWidth).Render(v.editText.View()),
		s.TitleMuted.Render(charCount(v.editText.Value(), models.TaskTextLimit)),
		"",
	}
	if v.status != "" {
		rows = append(rows, s.StatusBarError.Render(v.status), "")
	}
	rows = append(rows, s.TitleMuted.Render("Enter/Ctrl+S: save • Esc: cancel"))

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 60 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s notes • %s new • %s edit • %s approve • %s del • %s search • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("a"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("/"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("↵") + "      open notes",
		s.HelpKey.Render("n") + "      new task",
		s.HelpKey.Render("e") + "      edit task",
		s.HelpKey.Render("a") + "      approve / unapprove",
		s.HelpKey.Render("d") + "      delete task",
		s.HelpKey.Render("/") + "      search tasks and notes",
		s.HelpKey.Render("esc") + "    clear search",
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

func (v *TaskListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("\"%s\" and all its notes will be removed.", Plain(v.deleteTargetName))),
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
