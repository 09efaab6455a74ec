package graph

import (
	"fmt"
	"sort"
	"time"
)

// Graph is the authoritative store of goals and their dependency edges.
// It owns every Goal exclusively; all accessors hand out copies. The
// dependency relation is kept acyclic and referentially intact on every
// mutation — an operation that would break either invariant is rejected
// before anything is changed.
//
// Graph is not safe for concurrent use. It is designed for a single
// logical writer driven by discrete user actions.
type Graph struct {
	goals map[string]*Goal
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{goals: make(map[string]*Goal)}
}

// Len returns the number of goals in the graph.
func (g *Graph) Len() int {
	return len(g.goals)
}

// Get returns a copy of the named goal, or ErrNotFound.
func (g *Graph) Get(name string) (Goal, error) {
	goal, ok := g.goals[name]
	if !ok {
		return Goal{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return goal.clone(), nil
}

// Has reports whether a goal with the given name exists.
func (g *Graph) Has(name string) bool {
	_, ok := g.goals[name]
	return ok
}

// Goals returns copies of every goal, sorted by name.
func (g *Graph) Goals() []Goal {
	out := make([]Goal, 0, len(g.goals))
	for _, goal := range g.goals {
		out = append(out, goal.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AddOrUpdate inserts a new goal or updates the existing goal with the
// same name. On update the dependency set is replaced wholesale and
// CreatedAt is kept from the existing goal. The new dependency set is
// validated before anything is committed: every referenced name must
// already exist (ErrUnknownDependency) and no edge may make the goal
// reachable from one of its own dependencies (ErrCycle). On rejection
// the graph is left exactly as it was.
//
// Returns a snapshot of the goal as stored.
func (g *Graph) AddOrUpdate(goal Goal) (Goal, error) {
	if err := goal.normalize(); err != nil {
		return Goal{}, err
	}

	for _, dep := range goal.Dependencies {
		if _, ok := g.goals[dep]; !ok {
			return Goal{}, fmt.Errorf("%w: %q (referenced by %q)", ErrUnknownDependency, dep, goal.Name)
		}
	}
	for _, dep := range goal.Dependencies {
		if g.reaches(dep, goal.Name) {
			return Goal{}, fmt.Errorf("%w: %q -> %q closes a loop", ErrCycle, goal.Name, dep)
		}
	}

	existing, ok := g.goals[goal.Name]
	if ok {
		goal.CreatedAt = existing.CreatedAt
		goal.extra = existing.extra
	} else if goal.CreatedAt.IsZero() {
		goal.CreatedAt = time.Now()
	}

	stored := goal.clone()
	g.goals[goal.Name] = &stored
	return stored.clone(), nil
}

// Remove deletes a goal and detaches it from every other goal's
// dependency set, so no dangling reference survives. ErrNotFound if the
// name is absent.
func (g *Graph) Remove(name string) error {
	if _, ok := g.goals[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	delete(g.goals, name)

	for _, goal := range g.goals {
		deps := goal.Dependencies[:0]
		for _, d := range goal.Dependencies {
			if d != name {
				deps = append(deps, d)
			}
		}
		goal.Dependencies = deps
	}
	return nil
}

// Clear discards every goal.
func (g *Graph) Clear() {
	g.goals = make(map[string]*Goal)
}

// Dependencies returns the sorted names the given goal depends on.
func (g *Graph) Dependencies(name string) ([]string, error) {
	goal, ok := g.goals[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return append([]string(nil), goal.Dependencies...), nil
}

// Dependents returns the sorted names of goals that depend on the given
// goal.
func (g *Graph) Dependents(name string) ([]string, error) {
	if _, ok := g.goals[name]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	var out []string
	for _, goal := range g.goals {
		for _, d := range goal.Dependencies {
			if d == name {
				out = append(out, goal.Name)
				break
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// reaches reports whether target is reachable from start by following
// dependency edges. Depth-first, bounded by the number of goals.
func (g *Graph) reaches(start, target string) bool {
	if start == target {
		return true
	}
	visited := make(map[string]bool, len(g.goals))
	stack := []string{start}
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[name] {
			continue
		}
		visited[name] = true
		goal, ok := g.goals[name]
		if !ok {
			continue
		}
		for _, d := range goal.Dependencies {
			if d == target {
				return true
			}
			stack = append(stack, d)
		}
	}
	return false
}

// TopologicalOrder returns every goal name with dependencies strictly
// before their dependents. Ties between simultaneously-ready goals are
// broken by ascending name, so the order is deterministic for a given
// graph. A cycle here means the store's own invariant was broken, so it
// is reported as ErrCycle rather than masked.
func (g *Graph) TopologicalOrder() ([]string, error) {
	indegree := make(map[string]int, len(g.goals))
	dependents := make(map[string][]string, len(g.goals))
	for name, goal := range g.goals {
		indegree[name] = len(goal.Dependencies)
		for _, d := range goal.Dependencies {
			dependents[d] = append(dependents[d], name)
		}
	}

	var ready []string
	for name, deg := range indegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.goals))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		var freed []string
		for _, dep := range dependents[name] {
			indegree[dep]--
			if indegree[dep] == 0 {
				freed = append(freed, dep)
			}
		}
		if len(freed) > 0 {
			ready = append(ready, freed...)
			sort.Strings(ready)
		}
	}

	if len(order) != len(g.goals) {
		return nil, fmt.Errorf("%w: internal invariant violated, %d of %d goals unorderable",
			ErrCycle, len(g.goals)-len(order), len(g.goals))
	}
	return order, nil
}

// Summary is a read-only digest of the graph for UI consumption.
type Summary struct {
	Total      int
	Completed  int
	ByPriority map[Priority]int

	// Roots have no dependents; Leaves have no dependencies. Sorted.
	Roots  []string
	Leaves []string
}

// CompletionRatio returns completed/total, or 0 for an empty graph.
func (s Summary) CompletionRatio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Total)
}

// Summary computes the digest. Pure; no mutation.
func (g *Graph) Summary() Summary {
	s := Summary{
		Total:      len(g.goals),
		ByPriority: map[Priority]int{PriorityHigh: 0, PriorityMedium: 0, PriorityLow: 0},
	}

	hasDependent := make(map[string]bool, len(g.goals))
	for _, goal := range g.goals {
		for _, d := range goal.Dependencies {
			hasDependent[d] = true
		}
	}

	for name, goal := range g.goals {
		s.ByPriority[goal.Priority]++
		if goal.Completed {
			s.Completed++
		}
		if !hasDependent[name] {
			s.Roots = append(s.Roots, name)
		}
		if len(goal.Dependencies) == 0 {
			s.Leaves = append(s.Leaves, name)
		}
	}
	sort.Strings(s.Roots)
	sort.Strings(s.Leaves)
	return s
}

// Edge is one labeled dependency relation: From depends on To.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Description is a render-ready picture of the graph. Layout and
// drawing are entirely the consumer's business.
type Description struct {
	Nodes []string `json:"nodes"`
	Edges []Edge   `json:"edges"`
}

// ExportDescription returns the node and edge lists, both sorted for
// reproducible output. Pure; no mutation.
func (g *Graph) ExportDescription() Description {
	d := Description{Nodes: make([]string, 0, len(g.goals))}
	for name, goal := range g.goals {
		d.Nodes = append(d.Nodes, name)
		for _, dep := range goal.Dependencies {
			d.Edges = append(d.Edges, Edge{From: name, To: dep})
		}
	}
	sort.Strings(d.Nodes)
	sort.Slice(d.Edges, func(i, j int) bool {
		if d.Edges[i].From != d.Edges[j].From {
			return d.Edges[i].From < d.Edges[j].From
		}
		return d.Edges[i].To < d.Edges[j].To
	})
	return d
}
