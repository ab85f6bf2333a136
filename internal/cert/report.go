package cert

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Phase names as they appear in reports.
const (
	PhaseSignIn = "sign-in"
	PhaseLaunch = "launch"
	PhaseInput  = "input"
)

// PhaseStatus classifies one phase outcome. A skipped phase is never counted
// as passed.
type PhaseStatus string

const (
	StatusPass    PhaseStatus = "pass"
	StatusFail    PhaseStatus = "fail"
	StatusSkipped PhaseStatus = "skipped"
)

// PhaseResult holds the outcome of a single certification phase.
type PhaseResult struct {
	Name        string      `json:"name"`
	Status      PhaseStatus `json:"status"`
	DurationMS  int64       `json:"duration_ms"`
	Beacons     []string    `json:"beacons,omitempty"`
	ContentType string      `json:"content_type,omitempty"`
	Missing     []string    `json:"missing,omitempty"`
	Error       string      `json:"error,omitempty"`
	LastLines   []string    `json:"last_lines,omitempty"`
}

// Report is the JSON output schema for a certification run.
type Report struct {
	RunID           string        `json:"run_id"`
	Device          string        `json:"device"`
	AppID           string        `json:"app_id"`
	StartedAt       time.Time     `json:"started_at"`
	EndedAt         time.Time     `json:"ended_at"`
	DurationSeconds float64       `json:"duration_s"`
	Phases          []PhaseResult `json:"phases"`
	Verdict         string        `json:"verdict"`
}

func newReport(cfg Config) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Device:    cfg.Device,
		AppID:     cfg.AppID,
		StartedAt: time.Now(),
	}
}

func (r *Report) finalize() {
	r.EndedAt = time.Now()
	r.DurationSeconds = r.EndedAt.Sub(r.StartedAt).Seconds()
	r.Verdict = "PASS"
	for _, p := range r.Phases {
		if p.Status != StatusPass {
			r.Verdict = "FAIL"
		}
	}
}

// Write marshals the report to path, creating parent directories as needed.
func (r *Report) Write(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
