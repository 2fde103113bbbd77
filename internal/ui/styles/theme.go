package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is a named color scheme. Only the roles the views draw with are
// listed.
type Theme struct {
	Name string

	Background    lipgloss.Color
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color
	Primary       lipgloss.Color

	// Status colors: approved tasks, open-note counters, errors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Selection   lipgloss.Color
}

// TokyoNight is the default color theme
var TokyoNight = Theme{
	Name:          "Tokyo Night",
	Background:    "#1a1b26",
	Foreground:    "#c0caf5",
	ForegroundDim: "#565f89",
	Primary:       "#7aa2f7",
	Success:       "#9ece6a",
	Warning:       "#e0af68",
	Error:         "#f7768e",
	Border:        "#3b4261",
	BorderFocus:   "#7aa2f7",
	Selection:     "#33467c",
}

// Gruvbox is a warm, higher-contrast alternative
var Gruvbox = Theme{
	Name:          "Gruvbox",
	Background:    "#282828",
	Foreground:    "#ebdbb2",
	ForegroundDim: "#928374",
	Primary:       "#83a598",
	Success:       "#b8bb26",
	Warning:       "#fabd2f",
	Error:         "#fb4934",
	Border:        "#504945",
	BorderFocus:   "#83a598",
	Selection:     "#3c3836",
}

// Themes maps config names to themes
var Themes = map[string]Theme{
	"tokyo-night": TokyoNight,
	"gruvbox":     Gruvbox,
}

// Current holds the active theme
var Current = TokyoNight

// Use makes the named theme current. Unknown names keep the current theme.
func Use(name string) bool {
	t, ok := Themes[name]
	if ok {
		Current = t
	}
	return ok
}

// MaxWidth caps the content width at a classic terminal width
const MaxWidth = 80

// ContentWidth returns the smaller of the terminal width and MaxWidth
func ContentWidth(terminalWidth int) int {
	return min(terminalWidth, MaxWidth)
}

// CenterView centers content horizontally on terminals wider than MaxWidth
func CenterView(content string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= MaxWidth {
		return content
	}
	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Center, lipgloss.Top, content)
}

// Styles holds the pre-computed styles for the task and note views
type Styles struct {
	Title      lipgloss.Style
	TitleMuted lipgloss.Style

	ListItem     lipgloss.Style
	ListSelected lipgloss.Style

	// FilterBar frames the search input and popups
	FilterBar lipgloss.Style

	Button        lipgloss.Style
	ButtonPrimary lipgloss.Style

	TaskApproved lipgloss.Style
	TaskCount    lipgloss.Style
	Note         lipgloss.Style
	NoteDone     lipgloss.Style

	Input        lipgloss.Style
	InputFocused lipgloss.Style

	Help    lipgloss.Style
	HelpKey lipgloss.Style

	StatusBarError lipgloss.Style
}

// NewStyles builds styles from the current theme
func NewStyles() *Styles {
	t := Current
	text := lipgloss.NewStyle().Foreground(t.Foreground)
	boxed := text.Border(lipgloss.RoundedBorder()).BorderForeground(t.Border)

	return &Styles{
		Title:      lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		TitleMuted: lipgloss.NewStyle().Foreground(t.ForegroundDim),

		ListItem: text.Padding(0, 2),
		ListSelected: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Padding(0, 2).
			Bold(true),

		FilterBar: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border),

		Button: boxed.Padding(0, 2),
		ButtonPrimary: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Primary).
			Padding(0, 2).
			Bold(true),

		TaskApproved: lipgloss.NewStyle().Foreground(t.Success).Bold(true),
		TaskCount:    lipgloss.NewStyle().Foreground(t.Warning),
		Note:         text,
		NoteDone:     lipgloss.NewStyle().Foreground(t.ForegroundDim).Strikethrough(true),

		Input:        boxed.Padding(0, 1),
		InputFocused: boxed.BorderForeground(t.BorderFocus).Padding(0, 1),

		Help:    lipgloss.NewStyle().Foreground(t.ForegroundDim).Padding(1, 2),
		HelpKey: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),

		StatusBarError: lipgloss.NewStyle().Foreground(t.Error).Padding(0, 1),
	}
}
