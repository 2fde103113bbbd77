package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/ptn/internal/store"
	"github.com/tgienger/ptn/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewTasks View = iota
	ViewNotes
)

type App struct {
	store       *store.Store
	currentView View
	taskList    *views.TaskListView
	noteList    *views.NoteListView
	width       int
	height      int
}

// Creates a new application
func NewApp(st *store.Store) *App {
	return &App{
		store:       st,
		currentView: ViewTasks,
		taskList:    views.NewTaskListView(st),
	}
}

func (a *App) Init() tea.Cmd {
	return a.taskList.Init()
}

func (a *App) openTask(taskID int64) tea.Cmd {
	a.currentView = ViewNotes
	a.noteList = views.NewNoteListView(a.store, taskID)

	// Initialize note list with window size
	return tea.Batch(
		a.noteList.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Always update task list size since it persists
		a.taskList.Update(msg)

	case views.SelectedTask:
		return a, a.openTask(msg.TaskID)

	case views.BackToTasks:
		a.currentView = ViewTasks
		a.noteList = nil
		a.taskList.Refresh()
		return a, nil
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewTasks:
		_, cmd = a.taskList.Update(msg)
	case ViewNotes:
		if a.noteList != nil {
			_, cmd = a.noteList.Update(msg)
		}
	}

	return a, cmd
}

func (a *App) View() string {
	switch a.currentView {
	case ViewNotes:
		if a.noteList != nil {
			return a.noteList.View()
		}
	}
	return a.taskList.View()
}
