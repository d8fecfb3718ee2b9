// Package report collects resolution outcomes and writes them as a
// JSON report for the surrounding test-reporting layer.
package report

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/devicelab-dev/locator-resolver/pkg/core"
)

// Version is the report schema version.
const Version = "1.0.0"

// Outcome values for a resolution record.
const (
	OutcomeResolved       = "resolved"
	OutcomeNotResolved    = "not_resolved"
	OutcomeInfrastructure = "infrastructure"
	OutcomeTimeout        = "timeout"
)

// Resolution is one recorded Resolve call.
type Resolution struct {
	SemanticID string         `json:"semanticId"`
	PageKey    string         `json:"pageKey"`
	Outcome    string         `json:"outcome"`
	Locator    *core.Locator  `json:"locator,omitempty"`
	Attempts   []core.Attempt `json:"attempts"`
	DurationMs int64          `json:"durationMs"`
	Timestamp  time.Time      `json:"timestamp"`
}

// FromCache reports whether the call was served by the cache.
func (r Resolution) FromCache() bool {
	return len(r.Attempts) > 0 &&
		r.Attempts[0].Strategy == "cache" &&
		r.Attempts[0].Outcome == core.OutcomeResolved
}

// Summary aggregates recorded resolutions.
type Summary struct {
	Total     int `json:"total"`
	Resolved  int `json:"resolved"`
	Failed    int `json:"failed"`
	CacheHits int `json:"cacheHits"`
	ChainRuns int `json:"chainRuns"`
	Faulted   int `json:"faulted"`
}

// Recorder accumulates resolutions across concurrent sessions.
type Recorder struct {
	mu          sync.Mutex
	resolutions []Resolution
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends one resolution.
func (r *Recorder) Record(res Resolution) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolutions = append(r.resolutions, res)
}

// Resolutions returns a snapshot of everything recorded so far.
func (r *Recorder) Resolutions() []Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Resolution, len(r.resolutions))
	copy(out, r.resolutions)
	return out
}

// Summary computes aggregate counts.
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	var s Summary
	for _, res := range r.resolutions {
		s.Total++
		switch res.Outcome {
		case OutcomeResolved:
			s.Resolved++
			if res.FromCache() {
				s.CacheHits++
			} else {
				s.ChainRuns++
			}
		case OutcomeInfrastructure:
			s.Failed++
			s.Faulted++
		default:
			s.Failed++
		}
	}
	return s
}

// document is the on-disk report layout.
type document struct {
	Version     string       `json:"version"`
	GeneratedAt time.Time    `json:"generatedAt"`
	Summary     Summary      `json:"summary"`
	Resolutions []Resolution `json:"resolutions"`
}

// Write writes resolutions.json into dir, creating it if needed.
func (r *Recorder) Write(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	doc := document{
		Version:     Version,
		GeneratedAt: time.Now(),
		Summary:     r.Summary(),
		Resolutions: r.Resolutions(),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "resolutions.json"), data, 0644)
}

// Outcome classifies a Resolve result for recording.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeResolved
	case core.IsInfrastructure(err):
		return OutcomeInfrastructure
	case errors.Is(err, core.ErrResolveTimeout):
		return OutcomeTimeout
	default:
		return OutcomeNotResolved
	}
}
