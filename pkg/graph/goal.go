package graph

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Priority is the urgency level of a goal.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// ParsePriority validates a priority string. Only the three recognized
// values are accepted; anything else is a validation error, never a
// silent coercion. An empty string maps to the default (Medium).
func ParsePriority(s string) (Priority, error) {
	switch Priority(strings.TrimSpace(s)) {
	case "":
		return PriorityMedium, nil
	case PriorityHigh:
		return PriorityHigh, nil
	case PriorityMedium:
		return PriorityMedium, nil
	case PriorityLow:
		return PriorityLow, nil
	default:
		return "", fmt.Errorf("%w: priority %q (want High, Medium, or Low)", ErrValidation, s)
	}
}

// Goal represents one user objective in the graph.
type Goal struct {
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Priority     Priority  `json:"priority"`
	Dependencies []string  `json:"dependencies"`
	Completed    bool      `json:"completed"`
	CreatedAt    time.Time `json:"created_at"`

	// extra holds unrecognized fields from a loaded store file so they
	// survive a save (forward compatibility). Never interpreted.
	extra map[string]json.RawMessage
}

// normalize trims the name and dependency names and fills defaults.
// Returns a validation error for an empty name or bad priority.
func (g *Goal) normalize() error {
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		return fmt.Errorf("%w: goal name must be non-empty", ErrValidation)
	}

	p, err := ParsePriority(string(g.Priority))
	if err != nil {
		return err
	}
	g.Priority = p

	// Dedupe dependencies, preserving a stable sorted order.
	seen := make(map[string]bool, len(g.Dependencies))
	deps := make([]string, 0, len(g.Dependencies))
	for _, d := range g.Dependencies {
		d = strings.TrimSpace(d)
		if d == "" {
			return fmt.Errorf("%w: goal %q has an empty dependency name", ErrValidation, g.Name)
		}
		if d == g.Name {
			return fmt.Errorf("%w: goal %q cannot depend on itself", ErrValidation, g.Name)
		}
		if !seen[d] {
			seen[d] = true
			deps = append(deps, d)
		}
	}
	sort.Strings(deps)
	g.Dependencies = deps
	return nil
}

// clone returns a deep copy so callers never share mutable state with
// the store.
func (g *Goal) clone() Goal {
	out := *g
	out.Dependencies = append([]string(nil), g.Dependencies...)
	if g.extra != nil {
		out.extra = make(map[string]json.RawMessage, len(g.extra))
		for k, v := range g.extra {
			out.extra[k] = v
		}
	}
	return out
}
