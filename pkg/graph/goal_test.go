package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in      string
		want    Priority
		wantErr bool
	}{
		{"High", PriorityHigh, false},
		{"Medium", PriorityMedium, false},
		{"Low", PriorityLow, false},
		{"", PriorityMedium, false},
		{"  Low  ", PriorityLow, false},
		{"Urgent", "", true},
		{"high", "", true}, // case-sensitive, never coerced
		{"medium", "", true},
	}

	for _, tt := range tests {
		got, err := ParsePriority(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrValidation, "input %q", tt.in)
		} else {
			require.NoError(t, err, "input %q", tt.in)
			assert.Equal(t, tt.want, got, "input %q", tt.in)
		}
	}
}

func TestGoalNameIsTrimmed(t *testing.T) {
	g := New()
	goal, err := g.AddOrUpdate(Goal{Name: "  Learn Go  "})
	require.NoError(t, err)
	assert.Equal(t, "Learn Go", goal.Name)
}

func TestGoalNamesAreCaseSensitive(t *testing.T) {
	g := New()
	addGoal(t, g, "read")
	addGoal(t, g, "Read")
	assert.Equal(t, 2, g.Len())
}

func TestDependenciesDedupedAndSorted(t *testing.T) {
	g := New()
	addGoal(t, g, "b")
	addGoal(t, g, "a")

	goal, err := g.AddOrUpdate(Goal{Name: "c", Dependencies: []string{"b", "a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, goal.Dependencies)
}

func TestEmptyDependencyNameRejected(t *testing.T) {
	g := New()
	addGoal(t, g, "a")

	_, err := g.AddOrUpdate(Goal{Name: "b", Dependencies: []string{"a", "  "}})
	assert.ErrorIs(t, err, ErrValidation)
}
