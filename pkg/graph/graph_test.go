package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addGoal(t *testing.T, g *Graph, name string, deps ...string) Goal {
	t.Helper()
	goal, err := g.AddOrUpdate(Goal{Name: name, Dependencies: deps})
	require.NoError(t, err)
	return goal
}

// checkInvariants verifies acyclicity and referential integrity, the
// two properties the store promises after every operation.
func checkInvariants(t *testing.T, g *Graph) {
	t.Helper()
	_, err := g.TopologicalOrder()
	require.NoError(t, err)
	for _, goal := range g.Goals() {
		for _, d := range goal.Dependencies {
			assert.True(t, g.Has(d), "goal %q has dangling dependency %q", goal.Name, d)
		}
	}
}

func TestAddOrUpdateInsert(t *testing.T) {
	g := New()

	goal, err := g.AddOrUpdate(Goal{Name: "Learn Guitar", Description: "practice daily"})
	require.NoError(t, err)
	assert.Equal(t, "Learn Guitar", goal.Name)
	assert.Equal(t, PriorityMedium, goal.Priority)
	assert.False(t, goal.Completed)
	assert.False(t, goal.CreatedAt.IsZero())
	assert.Equal(t, 1, g.Len())
	checkInvariants(t, g)
}

func TestAddOrUpdateRejectsEmptyName(t *testing.T) {
	g := New()

	_, err := g.AddOrUpdate(Goal{Name: "   "})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 0, g.Len())
}

func TestAddOrUpdateRejectsBadPriority(t *testing.T) {
	g := New()

	_, err := g.AddOrUpdate(Goal{Name: "a", Priority: "Urgent"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddOrUpdateUpdatesExisting(t *testing.T) {
	g := New()
	first := addGoal(t, g, "a")

	updated, err := g.AddOrUpdate(Goal{Name: "a", Description: "new text", Priority: PriorityHigh, Completed: true})
	require.NoError(t, err)
	assert.Equal(t, "new text", updated.Description)
	assert.Equal(t, PriorityHigh, updated.Priority)
	assert.True(t, updated.Completed)
	assert.Equal(t, first.CreatedAt, updated.CreatedAt, "created_at is immutable")
	assert.Equal(t, 1, g.Len(), "update must not duplicate the node")
}

func TestAddOrUpdateUnknownDependency(t *testing.T) {
	g := New()
	addGoal(t, g, "a")

	_, err := g.AddOrUpdate(Goal{Name: "b", Dependencies: []string{"missing"}})
	assert.ErrorIs(t, err, ErrUnknownDependency)
	assert.False(t, g.Has("b"), "rejected goal must not be inserted")
	checkInvariants(t, g)
}

func TestAddOrUpdateRejectsSelfDependency(t *testing.T) {
	g := New()
	addGoal(t, g, "a")

	_, err := g.AddOrUpdate(Goal{Name: "a", Dependencies: []string{"a"}})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddOrUpdateRejectsCycle(t *testing.T) {
	g := New()
	addGoal(t, g, "a")
	addGoal(t, g, "b", "a")

	// a -> b would close the loop a -> b -> a.
	_, err := g.AddOrUpdate(Goal{Name: "a", Dependencies: []string{"b"}})
	assert.ErrorIs(t, err, ErrCycle)

	// The rejected update must leave the old state fully intact.
	a, err := g.Get("a")
	require.NoError(t, err)
	assert.Empty(t, a.Dependencies, "no partial edge may be committed")
	checkInvariants(t, g)
}

func TestAddOrUpdateRejectsTransitiveCycle(t *testing.T) {
	g := New()
	addGoal(t, g, "a")
	addGoal(t, g, "b", "a")
	addGoal(t, g, "c", "b")

	_, err := g.AddOrUpdate(Goal{Name: "a", Dependencies: []string{"c"}})
	assert.ErrorIs(t, err, ErrCycle)
	checkInvariants(t, g)
}

func TestUpdateReplacesDependencySetWholesale(t *testing.T) {
	g := New()
	addGoal(t, g, "a")
	addGoal(t, g, "b")
	addGoal(t, g, "c", "a", "b")

	updated, err := g.AddOrUpdate(Goal{Name: "c", Dependencies: []string{"b"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, updated.Dependencies)
}

func TestRemove(t *testing.T) {
	g := New()
	addGoal(t, g, "a")
	addGoal(t, g, "b", "a")

	require.NoError(t, g.Remove("a"))
	assert.False(t, g.Has("a"))

	// b's edge to a must be detached, not left dangling.
	b, err := g.Get("b")
	require.NoError(t, err)
	assert.Empty(t, b.Dependencies)
	checkInvariants(t, g)
}

func TestRemoveNotFound(t *testing.T) {
	g := New()
	err := g.Remove("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClear(t *testing.T) {
	g := New()
	addGoal(t, g, "a")
	addGoal(t, g, "b")

	g.Clear()
	assert.Equal(t, 0, g.Len())
}

func TestTopologicalOrder(t *testing.T) {
	g := New()
	addGoal(t, g, "buy-guitar")
	addGoal(t, g, "learn-guitar", "buy-guitar")
	addGoal(t, g, "join-band", "learn-guitar")

	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"buy-guitar", "learn-guitar", "join-band"}, order)
}

func TestTopologicalOrderDeterministicTieBreak(t *testing.T) {
	g := New()
	addGoal(t, g, "zeta")
	addGoal(t, g, "alpha")
	addGoal(t, g, "mid", "alpha")

	// alpha and zeta are ready simultaneously; ascending name wins.
	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, order)

	// Same graph, same order, every time.
	for i := 0; i < 5; i++ {
		again, err := g.TopologicalOrder()
		require.NoError(t, err)
		assert.Equal(t, order, again)
	}
}

func TestTopologicalOrderEmpty(t *testing.T) {
	g := New()
	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	assert.Empty(t, order)
}

func TestGetReturnsCopy(t *testing.T) {
	g := New()
	addGoal(t, g, "dep")
	addGoal(t, g, "a", "dep")

	goal, err := g.Get("a")
	require.NoError(t, err)
	goal.Dependencies[0] = "mutated"

	fresh, err := g.Get("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"dep"}, fresh.Dependencies, "callers must not share mutable state with the store")
}

func TestSummary(t *testing.T) {
	g := New()
	_, err := g.AddOrUpdate(Goal{Name: "a", Priority: PriorityHigh, Completed: true})
	require.NoError(t, err)
	_, err = g.AddOrUpdate(Goal{Name: "b", Priority: PriorityLow})
	require.NoError(t, err)
	_, err = g.AddOrUpdate(Goal{Name: "c", Dependencies: []string{"a"}})
	require.NoError(t, err)

	s := g.Summary()
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.Completed)
	assert.Equal(t, 1, s.ByPriority[PriorityHigh])
	assert.Equal(t, 1, s.ByPriority[PriorityMedium])
	assert.Equal(t, 1, s.ByPriority[PriorityLow])
	assert.Equal(t, []string{"b", "c"}, s.Roots)
	assert.Equal(t, []string{"a", "b"}, s.Leaves)
	assert.InDelta(t, 1.0/3.0, s.CompletionRatio(), 1e-9)
}

func TestSummaryEmpty(t *testing.T) {
	s := New().Summary()
	assert.Equal(t, 0, s.Total)
	assert.Zero(t, s.CompletionRatio())
}

func TestExportDescription(t *testing.T) {
	g := New()
	addGoal(t, g, "a")
	addGoal(t, g, "b", "a")
	addGoal(t, g, "c", "a", "b")

	d := g.ExportDescription()
	assert.Equal(t, []string{"a", "b", "c"}, d.Nodes)
	assert.Equal(t, []Edge{
		{From: "b", To: "a"},
		{From: "c", To: "a"},
		{From: "c", To: "b"},
	}, d.Edges)
}

func TestInvariantsHoldAcrossMixedOperations(t *testing.T) {
	g := New()
	addGoal(t, g, "a")
	addGoal(t, g, "b", "a")
	addGoal(t, g, "c", "b")
	checkInvariants(t, g)

	require.NoError(t, g.Remove("b"))
	checkInvariants(t, g)

	addGoal(t, g, "d", "a", "c")
	checkInvariants(t, g)

	_, err := g.AddOrUpdate(Goal{Name: "a", Dependencies: []string{"d"}})
	assert.ErrorIs(t, err, ErrCycle)
	checkInvariants(t, g)
}
