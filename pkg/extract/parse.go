package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// candidate is one goal record as the model emitted it. Pointer fields
// distinguish "absent" from "explicitly empty" so a merge into an
// existing goal only touches what the model actually said.
type candidate struct {
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	Priority     string    `json:"priority"`
	Dependencies *[]string `json:"dependencies"`
	DependsOn    *[]string `json:"depends_on"`
	Completed    *bool     `json:"completed"`
}

// deps returns the declared dependency list, treating depends_on as an
// alias of dependencies. nil means the field was absent entirely.
func (c *candidate) deps() *[]string {
	if c.Dependencies != nil {
		return c.Dependencies
	}
	return c.DependsOn
}

// locateJSON finds the goal payload inside a model response, which may
// be fenced, prefixed with chatter, or wrapped in {"goals": [...]}.
// Returns ok=false when the response contains nothing JSON-shaped at
// all — that is a conversational reply, not a parse failure.
func locateJSON(raw string) (string, bool) {
	s := raw
	if i := strings.Index(s, "```"); i != -1 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j != -1 {
			s = s[:j]
		}
	}

	objStart := strings.Index(s, "{")
	arrStart := strings.Index(s, "[")

	switch {
	case objStart != -1 && (arrStart == -1 || objStart < arrStart):
		end := strings.LastIndex(s, "}")
		if end <= objStart {
			return "", false
		}
		return s[objStart : end+1], true
	case arrStart != -1:
		end := strings.LastIndex(s, "]")
		if end <= arrStart {
			return "", false
		}
		return s[arrStart : end+1], true
	default:
		return "", false
	}
}

// decodeRecords parses the located JSON into raw per-record messages.
// Accepts either a bare array of goal objects or an object with a
// "goals" array. A payload that decodes as neither is a *ParseError.
func decodeRecords(payload, raw string) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(payload)

	if strings.HasPrefix(trimmed, "[") {
		var records []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &records); err != nil {
			return nil, &ParseError{Raw: raw, Err: err}
		}
		return records, nil
	}

	var wrapper struct {
		Goals *[]json.RawMessage `json:"goals"`
	}
	if err := json.Unmarshal([]byte(trimmed), &wrapper); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	if wrapper.Goals == nil {
		return nil, &ParseError{Raw: raw, Err: fmt.Errorf(`object has no "goals" array`)}
	}
	return *wrapper.Goals, nil
}
