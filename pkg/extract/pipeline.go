package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mwestre/wayline/pkg/graph"
)

// Skipped is one candidate record that did not make it into the store,
// with a human-readable reason.
type Skipped struct {
	Name   string
	Reason string
}

// MergeResult reports the outcome of one extraction batch. Expected
// per-record failures land in Skipped; they never abort the batch.
type MergeResult struct {
	// Applied lists goal names committed to the store, in apply order.
	Applied []string

	// Skipped lists rejected records and why.
	Skipped []Skipped

	// Reply holds the model's conversational answer when it chose not
	// to emit goals at all.
	Reply string

	// SaveErr is non-nil when the batch applied but persisting it
	// failed. The in-memory graph is still valid; the caller must
	// report the changes as not saved.
	SaveErr error
}

// Merger validates model output and applies it to a goal graph as a
// best-effort ordered batch.
type Merger struct {
	Graph  *graph.Graph
	Client Client

	// StorePath, when set, is saved to after any batch that applied at
	// least one record.
	StorePath string

	// FileContext is optional supporting text sent along with every
	// extraction request.
	FileContext string
}

// MergeFromText runs the full pipeline: ask the model, parse, validate
// each record independently, resolve dependencies, apply in dependency
// order, persist. Only collaborator failures (ErrUnavailable) and a
// wholly unreadable payload (*ParseError) come back as errors; every
// expected validation failure is reported inside the result.
func (m *Merger) MergeFromText(ctx context.Context, text string) (MergeResult, error) {
	raw, err := m.Client.ExtractGoals(ctx, text, m.FileContext)
	if err != nil {
		return MergeResult{}, err
	}
	return m.ApplyResponse(raw)
}

// ApplyResponse runs the parse/validate/apply half of the pipeline on
// an already-fetched model response. Callers that issue the model
// request themselves (to keep the store mutation on a single thread)
// use this directly.
func (m *Merger) ApplyResponse(raw string) (MergeResult, error) {
	payload, ok := locateJSON(raw)
	if !ok {
		// Nothing JSON-shaped: the model answered conversationally.
		return MergeResult{Reply: strings.TrimSpace(raw)}, nil
	}

	records, err := decodeRecords(payload, raw)
	if err != nil {
		return MergeResult{}, err
	}

	var res MergeResult
	candidates := m.validateRecords(records, &res)
	m.applyBatch(candidates, &res)

	if len(res.Applied) > 0 && m.StorePath != "" {
		if err := graph.Save(m.Graph, m.StorePath); err != nil {
			slog.Error("saving store after merge failed", "path", m.StorePath, "error", err)
			res.SaveErr = err
		}
	}
	return res, nil
}

// validateRecords screens each record on its own: schema shape,
// required name, priority enum, duplicate names within the batch, and
// dependency references that exist neither in the batch nor the store.
// Failures become Skipped entries; survivors come back as candidates.
func (m *Merger) validateRecords(records []json.RawMessage, res *MergeResult) []candidate {
	var parsed []candidate
	inBatch := make(map[string]bool, len(records))

	for i, rec := range records {
		var c candidate
		if err := json.Unmarshal(rec, &c); err != nil {
			res.Skipped = append(res.Skipped, Skipped{
				Name:   fmt.Sprintf("record %d", i+1),
				Reason: fmt.Sprintf("malformed record: %v", err),
			})
			continue
		}
		c.Name = strings.TrimSpace(c.Name)
		if deps := c.deps(); deps != nil {
			for i := range *deps {
				(*deps)[i] = strings.TrimSpace((*deps)[i])
			}
		}
		if c.Name == "" {
			res.Skipped = append(res.Skipped, Skipped{
				Name:   fmt.Sprintf("record %d", i+1),
				Reason: "missing required field: name",
			})
			continue
		}
		if inBatch[c.Name] {
			res.Skipped = append(res.Skipped, Skipped{
				Name:   c.Name,
				Reason: "duplicate name within the same batch",
			})
			continue
		}
		if _, err := graph.ParsePriority(c.Priority); err != nil {
			res.Skipped = append(res.Skipped, Skipped{Name: c.Name, Reason: err.Error()})
			continue
		}
		inBatch[c.Name] = true
		parsed = append(parsed, c)
	}

	// Dependency references must resolve against the batch or the
	// existing store; a dangling name rejects the record loudly rather
	// than silently dropping the edge.
	var out []candidate
	for _, c := range parsed {
		unknown := ""
		if deps := c.deps(); deps != nil {
			for _, d := range *deps {
				if d != "" && !inBatch[d] && !m.Graph.Has(d) {
					unknown = d
					break
				}
			}
		}
		if unknown != "" {
			res.Skipped = append(res.Skipped, Skipped{
				Name:   c.Name,
				Reason: fmt.Sprintf("unknown dependency %q", unknown),
			})
			continue
		}
		out = append(out, c)
	}
	return out
}

// applyBatch inserts candidates dependency-first and records residual
// store rejections (cycles, dependencies lost to earlier skips) as
// Skipped entries.
func (m *Merger) applyBatch(candidates []candidate, res *MergeResult) {
	for _, c := range orderCandidates(candidates) {
		goal := m.buildGoal(c)
		if _, err := m.Graph.AddOrUpdate(goal); err != nil {
			res.Skipped = append(res.Skipped, Skipped{Name: c.Name, Reason: err.Error()})
			continue
		}
		res.Applied = append(res.Applied, c.Name)
	}
}

// buildGoal turns a candidate into the Goal handed to the store. For an
// existing goal, only fields the model actually supplied are changed;
// a supplied dependency list replaces the old set wholesale.
func (m *Merger) buildGoal(c candidate) graph.Goal {
	goal, err := m.Graph.Get(c.Name)
	if err != nil {
		goal = graph.Goal{Name: c.Name, Priority: graph.PriorityMedium}
	}

	if c.Description != nil {
		goal.Description = *c.Description
	}
	if c.Priority != "" {
		p, _ := graph.ParsePriority(c.Priority) // validated earlier
		goal.Priority = p
	}
	if deps := c.deps(); deps != nil {
		goal.Dependencies = append([]string(nil), *deps...)
	}
	if c.Completed != nil {
		goal.Completed = *c.Completed
	}
	return goal
}

// orderCandidates topologically pre-sorts the batch by its internal
// dependency edges (dependencies before dependents), ascending name on
// ties. Candidates stuck in a batch-local cycle are appended in name
// order and left for the store to reject individually.
func orderCandidates(candidates []candidate) []candidate {
	byName := make(map[string]candidate, len(candidates))
	indegree := make(map[string]int, len(candidates))
	dependents := make(map[string][]string, len(candidates))

	for _, c := range candidates {
		byName[c.Name] = c
		indegree[c.Name] = 0
	}
	for _, c := range candidates {
		if deps := c.deps(); deps != nil {
			for _, d := range *deps {
				if _, inBatch := byName[d]; inBatch && d != c.Name {
					indegree[c.Name]++
					dependents[d] = append(dependents[d], c.Name)
				}
			}
		}
	}

	var ready []string
	for name, deg := range indegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	ordered := make([]candidate, 0, len(candidates))
	placed := make(map[string]bool, len(candidates))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		ordered = append(ordered, byName[name])
		placed[name] = true

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

	// Leftovers are in a cycle within the batch itself.
	var stuck []string
	for name := range byName {
		if !placed[name] {
			stuck = append(stuck, name)
		}
	}
	sort.Strings(stuck)
	for _, name := range stuck {
		ordered = append(ordered, byName[name])
	}
	return ordered
}
