package tui

import (
	"fmt"
	"strings"

	"github.com/mwestre/wayline/pkg/graph"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("wayline"))
	b.WriteString("  ")
	b.WriteString(SummaryStyle.Render(m.summaryLine()))
	b.WriteString("\n\n")

	if m.showHelp {
		b.WriteString(m.helpView())
		return b.String()
	}

	if len(m.order) == 0 {
		b.WriteString(SummaryStyle.Render("  no goals yet — press i and describe what you want to do"))
		b.WriteString("\n")
	} else {
		for i, name := range m.order {
			b.WriteString(m.renderGoalLine(i, name))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")

	if m.reply != "" {
		b.WriteString(ReplyStyle.Render("› " + m.reply))
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		style := StatusOKStyle
		if m.statusErr {
			style = StatusErrStyle
		}
		b.WriteString(style.Render(m.statusMsg))
		b.WriteString("\n")
	}

	if m.inputFocused {
		b.WriteString(InputPromptStyle.Render("> "))
		b.WriteString(m.input.View())
	} else {
		b.WriteString(FooterStyle.Render(m.keys.ShortHelp()))
	}
	b.WriteString("\n")

	return b.String()
}

// summaryLine is the one-line digest in the header.
func (m Model) summaryLine() string {
	s := m.graph.Summary()
	return fmt.Sprintf("%d/%d done · %d high · %d medium · %d low",
		s.Completed, s.Total,
		s.ByPriority[graph.PriorityHigh],
		s.ByPriority[graph.PriorityMedium],
		s.ByPriority[graph.PriorityLow])
}

// renderGoalLine renders one goal in execution order, with its
// dependencies as a dim suffix.
func (m Model) renderGoalLine(i int, name string) string {
	goal, err := m.graph.Get(name)
	if err != nil {
		return ""
	}

	icon := IconPending
	nameStyle := PendingStyle
	if goal.Completed {
		icon = IconComplete
		nameStyle = CompleteStyle
	}

	prio := PriorityStyles[string(goal.Priority)].Render(string(goal.Priority))

	line := fmt.Sprintf("  %s %s  %s", icon, nameStyle.Render(goal.Name), prio)
	if len(goal.Dependencies) > 0 {
		line += DepStyle.Render("  ← " + strings.Join(goal.Dependencies, ", "))
	}

	if i == m.cursor && !m.inputFocused {
		return SelectedStyle.Render(line)
	}
	return line
}

func (m Model) helpView() string {
	rows := [][]string{
		{"↑/k ↓/j", "Move through the goal list"},
		{"i or /", "Describe goals in plain text; they are extracted and merged"},
		{"enter", "Send the description"},
		{"esc", "Leave the input (abandons an in-flight request)"},
		{"space", "Toggle complete/incomplete"},
		{"d", "Delete the selected goal"},
		{"R", "Reload the store from disk"},
		{"?", "Toggle this help"},
		{"q", "Quit"},
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("  %-10s %s\n", r[0], r[1]))
	}
	return b.String()
}
