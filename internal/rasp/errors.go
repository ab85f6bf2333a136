package rasp

import (
	"errors"
	"fmt"
)

// ErrScript is the sentinel for errors.Is checks on any script failure:
// malformed file, unknown step kind, or missing secret.
var ErrScript = errors.New("rasp: script error")

// ScriptError describes why a script could not be parsed or executed.
type ScriptError struct {
	Step   int // 1-based step number, 0 for script-level problems
	Reason string
}

func (e *ScriptError) Error() string {
	if e.Step > 0 {
		return fmt.Sprintf("rasp: step %d: %s", e.Step, e.Reason)
	}
	return "rasp: " + e.Reason
}

func (e *ScriptError) Unwrap() error {
	return ErrScript
}
