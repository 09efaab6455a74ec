package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// storeDocument is the on-disk shape: one record per goal.
type storeDocument struct {
	Goals []goalRecord `json:"goals"`
}

// goalRecord wraps Goal so unrecognized fields survive a load/save
// round trip without being interpreted.
type goalRecord struct {
	Goal
}

var knownGoalFields = map[string]bool{
	"name":         true,
	"description":  true,
	"priority":     true,
	"dependencies": true,
	"completed":    true,
	"created_at":   true,
}

func (r *goalRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	type plain Goal
	var g plain
	if err := json.Unmarshal(data, &g); err != nil {
		return err
	}
	r.Goal = Goal(g)

	for k, v := range fields {
		if knownGoalFields[k] {
			continue
		}
		if r.extra == nil {
			r.extra = make(map[string]json.RawMessage)
		}
		r.extra[k] = v
	}
	return nil
}

func (r goalRecord) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, 6+len(r.extra))
	for k, v := range r.extra {
		fields[k] = v
	}

	put := func(key string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		fields[key] = raw
		return nil
	}
	if err := put("name", r.Name); err != nil {
		return nil, err
	}
	if err := put("description", r.Description); err != nil {
		return nil, err
	}
	if err := put("priority", r.Priority); err != nil {
		return nil, err
	}
	if err := put("dependencies", r.Dependencies); err != nil {
		return nil, err
	}
	if err := put("completed", r.Completed); err != nil {
		return nil, err
	}
	if err := put("created_at", r.CreatedAt.Format(time.RFC3339)); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

// Load reads a graph from path. A missing file is a first run and
// yields an empty graph. A file that exists but cannot be decoded, or
// that violates graph invariants (duplicate names, dangling edges,
// cycles), yields ErrCorrupt — the file itself is left untouched so
// nothing is lost.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading store %s: %w", path, err)
	}

	var doc storeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}

	g := New()
	for i := range doc.Goals {
		goal := doc.Goals[i].Goal
		if err := goal.normalize(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
		}
		if _, ok := g.goals[goal.Name]; ok {
			return nil, fmt.Errorf("%w: %s: duplicate goal %q", ErrCorrupt, path, goal.Name)
		}
		if goal.CreatedAt.IsZero() {
			goal.CreatedAt = time.Now()
		}
		stored := goal
		g.goals[goal.Name] = &stored
	}

	// A hand-edited file can smuggle in edges the store would have
	// rejected; re-check both invariants before trusting it.
	for _, goal := range g.goals {
		for _, d := range goal.Dependencies {
			if _, ok := g.goals[d]; !ok {
				return nil, fmt.Errorf("%w: %s: goal %q depends on unknown %q",
					ErrCorrupt, path, goal.Name, d)
			}
		}
	}
	if _, err := g.TopologicalOrder(); err != nil {
		return nil, fmt.Errorf("%w: %s: stored graph is cyclic", ErrCorrupt, path)
	}

	return g, nil
}

// Save writes the full graph to path atomically: the document is
// written to a temporary file in the same directory and renamed over
// the target, so a crash mid-write never corrupts the previous good
// state. Errors are always surfaced to the caller.
func Save(g *Graph, path string) error {
	doc := storeDocument{Goals: make([]goalRecord, 0, len(g.goals))}
	for _, goal := range g.Goals() {
		doc.Goals = append(doc.Goals, goalRecord{Goal: goal})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".goals-*.json")
	if err != nil {
		return fmt.Errorf("creating temp store file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing store: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting store permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing store: %w", err)
	}
	return nil
}
