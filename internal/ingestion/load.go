// Package ingestion reads jobs, candidate pools, run snapshots and tradeoff
// overrides from YAML or JSON files.
package ingestion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/candidate-matcher/internal/parsing"
	"github.com/jonathan/candidate-matcher/internal/schemas"
	"github.com/jonathan/candidate-matcher/internal/tradeoffs"
	"github.com/jonathan/candidate-matcher/internal/types"
	schemafiles "github.com/jonathan/candidate-matcher/schemas"
)

// ReadDocument reads a YAML or JSON file and returns it as JSON. The format is
// taken from the extension (.json, .yaml, .yml) or, failing that, from the
// first non-whitespace byte.
func ReadDocument(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := ToJSON(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// ToJSON converts YAML or JSON input to JSON. ext is a format hint; empty means
// detect from content. Timestamps must be RFC 3339.
func ToJSON(data []byte, ext string) ([]byte, error) {
	ext = strings.ToLower(ext)
	trimmed := bytes.TrimSpace(data)

	if ext == ".json" || (ext != ".yaml" && ext != ".yml" && len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')) {
		if !json.Valid(trimmed) {
			return nil, fmt.Errorf("invalid JSON")
		}
		return trimmed, nil
	}

	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if v == nil {
		return nil, fmt.Errorf("document is empty")
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("YAML document cannot be represented as JSON: %w", err)
	}
	return out, nil
}

// LoadJob reads and validates a job requisition.
func LoadJob(path string) (*types.Job, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}

	var job types.Job
	if err := decodeStrict(doc, &job); err != nil {
		return nil, fmt.Errorf("failed to decode job %s: %w", path, err)
	}
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job %s: %w", path, err)
	}
	return &job, nil
}

type poolFile struct {
	Candidates []types.PoolEntry `json:"candidates"`
}

// LoadPool reads a candidate pool. The file is either a list of entries or an
// object with a "candidates" list. Each entry carries a candidate with an
// optional job link and outreach count. Candidate IDs must be unique; skill
// names are normalized on load.
func LoadPool(path string) ([]types.PoolEntry, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}

	var entries []types.PoolEntry
	if isList(doc) {
		err = decodeStrict(doc, &entries)
	} else {
		var f poolFile
		err = decodeStrict(doc, &f)
		entries = f.Candidates
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode candidate pool %s: %w", path, err)
	}

	seen := make(map[string]bool, len(entries))
	for i := range entries {
		c := &entries[i].Candidate
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("invalid candidate at index %d in %s: %w", i, path, err)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("duplicate candidate id %q in %s", c.ID, path)
		}
		seen[c.ID] = true
		c.Skills = parsing.NormalizeCandidateSkills(c.Skills)
	}

	if entries == nil {
		entries = make([]types.PoolEntry, 0)
	}
	return entries, nil
}

type snapshotFile struct {
	Runs []types.WatchdogSnapshot `json:"runs"`
}

// LoadSnapshots reads agent run snapshots in file order. The file is either a
// list or an object with a "runs" list.
func LoadSnapshots(path string) ([]types.WatchdogSnapshot, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}

	var runs []types.WatchdogSnapshot
	if isList(doc) {
		err = decodeStrict(doc, &runs)
	} else {
		var f snapshotFile
		err = decodeStrict(doc, &f)
		runs = f.Runs
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshots %s: %w", path, err)
	}

	for i, r := range runs {
		if r.Status != types.RunSuccess && r.Status != types.RunFailed {
			return nil, fmt.Errorf("invalid status %q for run at index %d in %s", r.Status, i, path)
		}
		if r.DurationMs < 0 {
			return nil, fmt.Errorf("negative duration for run at index %d in %s", i, path)
		}
	}

	if runs == nil {
		runs = make([]types.WatchdogSnapshot, 0)
	}
	return runs, nil
}

// LoadTradeoffs reads tradeoff overrides and checks them against the embedded
// tradeoffs schema. Schema violations are returned as *schemas.ValidationError.
func LoadTradeoffs(path string) (*tradeoffs.Overrides, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	if err := schemas.ValidateEmbedded(schemafiles.Tradeoffs, doc); err != nil {
		return nil, err
	}

	var o tradeoffs.Overrides
	if err := json.Unmarshal(doc, &o); err != nil {
		return nil, fmt.Errorf("failed to decode tradeoffs %s: %w", path, err)
	}
	return &o, nil
}

func isList(doc []byte) bool {
	trimmed := bytes.TrimSpace(doc)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func decodeStrict(doc []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
