package rasp

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Per-kind step costs in seconds for the duration estimate.
const (
	costLaunch  = 3.0
	costPress   = 0.1
	costPerChar = 0.05
	defaultGap  = 1.0
)

// CheckResult is the outcome of a static script check.
type CheckResult struct {
	Valid            bool
	Errors           []string
	StepCount        int
	EstimatedSeconds int
}

// CheckFile validates a script file without executing it. Only unreadable
// files return an error; every script problem lands in the result.
func CheckFile(path string) (CheckResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CheckResult{}, err
	}
	return Check(data), nil
}

// Check statically validates script bytes. Unlike the strict Load path it
// collects every problem instead of stopping at the first, so script authors
// get one complete report.
func Check(data []byte) CheckResult {
	var doc struct {
		Params yaml.Node `yaml:"params"`
		Steps  yaml.Node `yaml:"steps"`
	}
	var res CheckResult
	if err := yaml.Unmarshal(data, &doc); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("not parseable as YAML: %v", err))
		return res
	}

	gap := defaultGap
	if doc.Params.Kind != 0 {
		gap = checkParams(&doc.Params, &res)
	}

	total := 0.0
	switch {
	case doc.Steps.Kind == 0:
		res.Errors = append(res.Errors, "steps missing")
	case doc.Steps.Kind != yaml.SequenceNode:
		res.Errors = append(res.Errors, "steps must be a sequence")
	default:
		res.StepCount = len(doc.Steps.Content)
		for i, n := range doc.Steps.Content {
			total += checkStep(i+1, n, &res)
		}
	}
	if res.StepCount > 1 {
		total += gap * float64(res.StepCount-1)
	}
	res.EstimatedSeconds = int(math.Ceil(total))
	res.Valid = len(res.Errors) == 0
	return res
}

// checkParams validates the params block and returns the inter-step gap to
// use for the estimate.
func checkParams(node *yaml.Node, res *CheckResult) float64 {
	gap := defaultGap
	if node.Kind != yaml.MappingNode {
		res.Errors = append(res.Errors, "params must be a mapping")
		return gap
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if node.Content[i].Decode(&key) != nil {
			continue
		}
		value := node.Content[i+1]
		switch key {
		case "rasp_version":
			var v float64
			if value.Decode(&v) != nil {
				res.Errors = append(res.Errors, "params: rasp_version must be numeric")
			}
		case "default_keypress_wait":
			var v float64
			if value.Decode(&v) != nil {
				res.Errors = append(res.Errors, "params: default_keypress_wait must be numeric")
			} else {
				gap = v
			}
		case "channels":
			var m map[string]string
			if value.Decode(&m) != nil {
				res.Errors = append(res.Errors, "params: channels must be a name-to-app-id mapping")
			}
		}
	}
	return gap
}

// checkStep validates one step record and returns its estimated cost.
func checkStep(n int, node *yaml.Node, res *CheckResult) float64 {
	fail := func(format string, args ...any) float64 {
		res.Errors = append(res.Errors, fmt.Sprintf("step %d: ", n)+fmt.Sprintf(format, args...))
		return 0
	}

	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return fail("must be a record with exactly one key")
	}
	var key string
	if node.Content[0].Decode(&key) != nil {
		return fail("step key must be a string")
	}
	value := node.Content[1]

	switch Kind(key) {
	case KindLaunch:
		var v string
		if value.Decode(&v) != nil || v == "" {
			return fail("launch value must be a non-empty string")
		}
		return costLaunch
	case KindPress:
		var v string
		if value.Decode(&v) != nil || v == "" {
			return fail("press value must be a non-empty string")
		}
		if !KnownKey(v) && !singleAlnum(v) {
			return fail("press value %q is not a known key or single character", v)
		}
		return costPress
	case KindText:
		var v string
		if value.Decode(&v) != nil || v == "" {
			return fail("text value must be a non-empty string")
		}
		return costPerChar * float64(len(v))
	case KindPause:
		var sec float64
		if value.Decode(&sec) != nil {
			return fail("pause value must be a number")
		}
		if sec < 0 {
			return fail("pause value must not be negative")
		}
		return sec
	default:
		return fail("unknown step kind %q", key)
	}
}

func singleAlnum(s string) bool {
	if len(s) != 1 {
		return false
	}
	c := s[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
