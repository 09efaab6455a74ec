package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	ColorPurple      = lipgloss.Color("#7D56F4")
	ColorGreen       = lipgloss.Color("#25A065")
	ColorRed         = lipgloss.Color("#E05252")
	ColorYellow      = lipgloss.Color("#E5C07B")
	ColorGray        = lipgloss.Color("#626262")
	ColorWhite       = lipgloss.Color("#FFFFFF")
	ColorOffWhite    = lipgloss.Color("#D0D0D0")
	ColorSelectionBg = lipgloss.Color("#2D3B4D")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPurple)

	SummaryStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			Background(ColorSelectionBg)

	CompleteStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	PendingStyle = lipgloss.NewStyle().
			Foreground(ColorOffWhite)

	DepStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	StatusOKStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	StatusErrStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	ReplyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	InputPromptStyle = lipgloss.NewStyle().
				Foreground(ColorPurple).
				Bold(true)
)

// PriorityStyles maps a priority name to its list color.
var PriorityStyles = map[string]lipgloss.Style{
	"High":   lipgloss.NewStyle().Bold(true).Foreground(ColorRed),
	"Medium": lipgloss.NewStyle().Foreground(ColorYellow),
	"Low":    lipgloss.NewStyle().Foreground(ColorGray),
}

// Status icons
const (
	IconComplete = "✓"
	IconPending  = "○"
)
