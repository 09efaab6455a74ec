// Package tui is the interactive front end. It only calls exported
// core APIs; all graph mutation happens on the update loop, so the
// store keeps its single-writer guarantee while model requests run in
// the background.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mwestre/wayline/pkg/extract"
	"github.com/mwestre/wayline/pkg/graph"
)

// FileChangedMsg is sent when the file watcher sees an external edit
// of the store file.
type FileChangedMsg struct{}

// extractDoneMsg delivers a finished model request back to the update
// loop. seq identifies the request so an abandoned one is discarded
// without touching the store.
type extractDoneMsg struct {
	raw string
	err error
	seq int
}

// Model is the Bubble Tea model for the goal planner.
type Model struct {
	graph     *graph.Graph
	merger    *extract.Merger
	storePath string
	timeout   time.Duration
	keys      KeyMap

	width  int
	height int

	// Goal list in dependency order.
	order  []string
	cursor int

	// Prompt input for free-form goal text.
	input        textinput.Model
	inputFocused bool

	// In-flight model request; seq discards stale results.
	busy bool
	seq  int

	// Last merge/chat outcome shown under the list.
	statusMsg string
	statusErr bool
	reply     string

	showHelp bool
}

// NewModel creates the TUI model around an already-loaded graph.
func NewModel(g *graph.Graph, client extract.Client, storePath string, timeout time.Duration) Model {
	ti := textinput.New()
	ti.Placeholder = "describe your goals…"
	ti.CharLimit = 500

	m := Model{
		graph: g,
		merger: &extract.Merger{
			Graph:     g,
			Client:    client,
			StorePath: storePath,
		},
		storePath: storePath,
		timeout:   timeout,
		keys:      DefaultKeyMap(),
		input:     ti,
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4
		return m, tea.ClearScreen

	case FileChangedMsg:
		m.reloadFromDisk()
		return m, nil

	case extractDoneMsg:
		return m.handleExtractDone(msg)

	case tea.KeyMsg:
		if m.inputFocused {
			return m.handleInputKey(msg)
		}
		return m.handleListKey(msg)
	}

	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.CancelInput):
		m.input.Blur()
		m.inputFocused = false
		if m.busy {
			// Abandon the in-flight request; its result is discarded
			// when it lands and the store is never touched.
			m.seq++
			m.busy = false
			m.setStatus("request abandoned", false)
		}
		return m, nil

	case msg.Type == tea.KeyEnter:
		text := strings.TrimSpace(m.input.Value())
		if text == "" || m.busy {
			return m, nil
		}
		m.busy = true
		m.seq++
		m.setStatus("thinking…", false)
		m.input.SetValue("")
		return m, m.requestExtraction(text, m.seq)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.order)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.FocusInput):
		m.inputFocused = true
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.ToggleDone):
		m.toggleSelected()
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		m.deleteSelected()
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		m.reloadFromDisk()
		return m, nil
	}

	return m, nil
}

// requestExtraction runs only the model call off the update loop. The
// parse/apply half runs back on the loop in handleExtractDone, so the
// graph is mutated from a single goroutine.
func (m *Model) requestExtraction(text string, seq int) tea.Cmd {
	client := m.merger.Client
	fileContext := m.merger.FileContext
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		raw, err := client.ExtractGoals(ctx, text, fileContext)
		return extractDoneMsg{raw: raw, err: err, seq: seq}
	}
}

func (m Model) handleExtractDone(msg extractDoneMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.seq {
		return m, nil // abandoned request
	}
	m.busy = false

	if msg.err != nil {
		m.setStatus(msg.err.Error(), true)
		return m, nil
	}

	res, err := m.merger.ApplyResponse(msg.raw)
	if err != nil {
		var perr *extract.ParseError
		if errors.As(err, &perr) {
			m.setStatus("could not understand the model's answer", true)
		} else {
			m.setStatus(err.Error(), true)
		}
		return m, nil
	}

	m.reply = res.Reply
	m.setStatus(describeResult(res), res.SaveErr != nil)
	m.refresh()
	return m, nil
}

// describeResult renders a MergeResult as one status line: what was
// applied, what was skipped and why, and whether the save failed.
func describeResult(res extract.MergeResult) string {
	if res.Reply != "" {
		return ""
	}

	var parts []string
	if len(res.Applied) > 0 {
		parts = append(parts, fmt.Sprintf("applied %s", strings.Join(res.Applied, ", ")))
	}
	for _, s := range res.Skipped {
		parts = append(parts, fmt.Sprintf("skipped %s (%s)", s.Name, s.Reason))
	}
	if len(parts) == 0 {
		parts = append(parts, "no goals found")
	}
	if res.SaveErr != nil {
		parts = append(parts, "changes not saved: "+res.SaveErr.Error())
	}
	return strings.Join(parts, "; ")
}

func (m *Model) toggleSelected() {
	name, ok := m.selected()
	if !ok {
		return
	}
	goal, err := m.graph.Get(name)
	if err != nil {
		return
	}
	goal.Completed = !goal.Completed
	if _, err := m.graph.AddOrUpdate(goal); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.persist()
	m.refresh()
}

func (m *Model) deleteSelected() {
	name, ok := m.selected()
	if !ok {
		return
	}
	if err := m.graph.Remove(name); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.persist()
	m.refresh()
	m.setStatus("deleted "+name, false)
}

func (m *Model) persist() {
	if err := graph.Save(m.graph, m.storePath); err != nil {
		m.setStatus("changes not saved: "+err.Error(), true)
	}
}

func (m *Model) reloadFromDisk() {
	g, err := graph.Load(m.storePath)
	if err != nil {
		m.setStatus("reload failed: "+err.Error(), true)
		return
	}
	m.graph = g
	m.merger.Graph = g
	m.refresh()
}

func (m *Model) refresh() {
	order, err := m.graph.TopologicalOrder()
	if err != nil {
		// The store never admits cycles; reaching this means the file
		// was corrupted out from under us.
		m.setStatus(err.Error(), true)
		return
	}
	m.order = order
	if m.cursor >= len(m.order) {
		m.cursor = len(m.order) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) selected() (string, bool) {
	if len(m.order) == 0 || m.cursor >= len(m.order) {
		return "", false
	}
	return m.order[m.cursor], true
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusErr = isErr
}
