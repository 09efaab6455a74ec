package graph

import "errors"

// Sentinel errors for the store. Callers distinguish failure classes
// with errors.Is; messages wrapped around them carry the specifics.
var (
	// ErrValidation marks a bad field value (empty name, unknown priority).
	ErrValidation = errors.New("validation failed")

	// ErrUnknownDependency marks a dependency edge pointing at a name
	// that does not exist in the store.
	ErrUnknownDependency = errors.New("unknown dependency")

	// ErrCycle marks an edge set that would make a goal (transitively)
	// depend on itself.
	ErrCycle = errors.New("dependency cycle detected")

	// ErrNotFound marks an operation on a goal name absent from the store.
	ErrNotFound = errors.New("goal not found")

	// ErrCorrupt marks a store file that exists but cannot be decoded
	// or violates graph invariants. The file is never overwritten.
	ErrCorrupt = errors.New("store file is corrupt")
)
