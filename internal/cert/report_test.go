package cert

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportVerdict(t *testing.T) {
	tests := []struct {
		name    string
		phases  []PhaseResult
		verdict string
	}{
		{
			name:    "all pass",
			phases:  []PhaseResult{{Status: StatusPass}, {Status: StatusPass}},
			verdict: "PASS",
		},
		{
			name:    "one fail",
			phases:  []PhaseResult{{Status: StatusPass}, {Status: StatusFail}},
			verdict: "FAIL",
		},
		{
			name:    "skipped is not a pass",
			phases:  []PhaseResult{{Status: StatusPass}, {Status: StatusSkipped}},
			verdict: "FAIL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := newReport(Config{Device: "10.0.0.5", AppID: "dev"})
			rep.Phases = tt.phases
			rep.finalize()
			assert.Equal(t, tt.verdict, rep.Verdict)
			assert.False(t, rep.EndedAt.IsZero())
		})
	}
}

func TestReportWrite(t *testing.T) {
	rep := newReport(Config{Device: "10.0.0.5", AppID: "dev"})
	rep.Phases = []PhaseResult{{Name: PhaseLaunch, Status: StatusPass, ContentType: "VOD"}}
	rep.finalize()

	path := filepath.Join(t.TempDir(), "out", "report.json")
	require.NoError(t, rep.Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, rep.RunID, decoded.RunID)
	assert.Equal(t, "PASS", decoded.Verdict)
	require.Len(t, decoded.Phases, 1)
	assert.Equal(t, "VOD", decoded.Phases[0].ContentType)
}
