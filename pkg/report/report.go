// Package report writes the sentinel state of a pipeline as JSON.
//
// A report is a snapshot: it lists every step of the graph in insertion
// order with its dependencies and on-disk status, plus summary counts.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/cavspipes/pipegen/pkg/core"
	"github.com/cavspipes/pipegen/pkg/pipeline"
	"github.com/cavspipes/pipegen/pkg/workspace"
)

// Version is the report schema version.
const Version = "1.0.0"

// Index is the report file.
type Index struct {
	Version     string      `json:"version"`
	Pipeline    string      `json:"pipeline"`
	MakeFile    string      `json:"makeFile,omitempty"`
	GeneratedAt time.Time   `json:"generatedAt"`
	Pipegen     RunnerInfo  `json:"pipegen"`
	Summary     Summary     `json:"summary"`
	Steps       []StepEntry `json:"steps"`
}

// RunnerInfo contains pipegen information.
type RunnerInfo struct {
	Version string `json:"version"`
}

// Summary contains aggregated counts.
type Summary struct {
	Total   int `json:"total"`
	Done    int `json:"done"`
	Stale   int `json:"stale"`
	Missing int `json:"missing"`
}

// StepEntry is one step and its sentinel state.
type StepEntry struct {
	Index        int        `json:"index"` // Position in the make file
	Target       string     `json:"target"`
	Dependencies []string   `json:"dependencies"`
	Marker       bool       `json:"marker,omitempty"`
	Status       string     `json:"status"`
	ModTime      *time.Time `json:"modTime,omitempty"`
}

// Options describes where a report comes from.
type Options struct {
	Pipeline string
	MakeFile string
	Version  string
	Now      time.Time // Zero means time.Now()
}

// Build combines the graph with the sentinel states from pipeline.Inspect.
func Build(g *pipeline.Graph, states []pipeline.SentinelState, opts Options) *Index {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	idx := &Index{
		Version:     Version,
		Pipeline:    opts.Pipeline,
		MakeFile:    opts.MakeFile,
		GeneratedAt: now.UTC(),
		Pipegen:     RunnerInfo{Version: opts.Version},
		Steps:       make([]StepEntry, 0, g.Len()),
	}

	steps := g.Steps()
	for i, s := range steps {
		entry := StepEntry{
			Index:        i,
			Target:       s.Target,
			Dependencies: append([]string{}, s.Dependencies...),
			Marker:       s.Marker,
			Status:       core.StatusMissing.String(),
		}
		if i < len(states) && states[i].Target == s.Target {
			entry.Status = states[i].Status.String()
			if !states[i].ModTime.IsZero() {
				mt := states[i].ModTime.UTC()
				entry.ModTime = &mt
			}
		}
		idx.Steps = append(idx.Steps, entry)
	}
	idx.Summary = computeSummary(idx.Steps)
	return idx
}

// computeSummary calculates summary from step statuses.
func computeSummary(steps []StepEntry) Summary {
	var s Summary
	for _, e := range steps {
		s.Total++
		switch e.Status {
		case core.StatusDone.String():
			s.Done++
		case core.StatusStale.String():
			s.Stale++
		default:
			s.Missing++
		}
	}
	return s
}

// Pending returns the targets make would run again, in order.
func (idx *Index) Pending() []string {
	var out []string
	for _, e := range idx.Steps {
		if e.Status != core.StatusDone.String() {
			out = append(out, e.Target)
		}
	}
	return out
}

// WriteJSON writes the report to path atomically.
func WriteJSON(path string, idx *Index) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	data = append(data, '\n')
	if err := workspace.WriteFileAtomic(path, data, 0o644); err != nil {
		return core.ErrWriteScript.WithMessage("failed to write status report").
			WithDetails(map[string]interface{}{"path": path}).WithCause(err)
	}
	return nil
}

// ReadJSON loads a report written by WriteJSON.
func ReadJSON(path string) (*Index, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided report path
	if err != nil {
		return nil, err
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", path, err)
	}
	return &idx, nil
}
