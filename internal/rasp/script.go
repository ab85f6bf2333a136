// Package rasp loads, validates and executes RASP automation scripts: ordered
// UI-automation steps used to drive a sign-in flow before certification tests.
package rasp

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Kind enumerates the closed set of step variants.
type Kind string

const (
	KindLaunch Kind = "launch"
	KindPress  Kind = "press"
	KindText   Kind = "text"
	KindPause  Kind = "pause"
)

// Params holds the script-level settings.
type Params struct {
	Version   float64           `yaml:"rasp_version"`
	StepDelay float64           `yaml:"default_keypress_wait"` // seconds between steps
	Channels  map[string]string `yaml:"channels"`              // script name -> device app id
}

// stepDelay returns the inter-step delay, defaulting to one second.
func (p Params) stepDelay() time.Duration {
	if p.StepDelay <= 0 {
		return time.Second
	}
	return time.Duration(p.StepDelay * float64(time.Second))
}

// Step is one parsed automation step. Exactly one variant applies, selected
// by Kind: Launch/Press/Text carry Value, Pause carries Seconds.
type Step struct {
	Kind    Kind
	Value   string
	Seconds float64
}

// UnmarshalYAML parses the single-key step record form, e.g. `- press: ok`.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return &ScriptError{Reason: "each step must be a record with exactly one key"}
	}
	var key string
	if err := node.Content[0].Decode(&key); err != nil {
		return &ScriptError{Reason: fmt.Sprintf("invalid step key: %v", err)}
	}
	value := node.Content[1]

	switch Kind(key) {
	case KindLaunch, KindPress, KindText:
		var v string
		if err := value.Decode(&v); err != nil {
			return &ScriptError{Reason: fmt.Sprintf("%s value must be a string: %v", key, err)}
		}
		s.Kind, s.Value = Kind(key), v
	case KindPause:
		var sec float64
		if err := value.Decode(&sec); err != nil {
			return &ScriptError{Reason: fmt.Sprintf("pause value must be a number: %v", err)}
		}
		if sec < 0 {
			return &ScriptError{Reason: "pause value must not be negative"}
		}
		s.Kind, s.Seconds = KindPause, sec
	default:
		return &ScriptError{Reason: fmt.Sprintf("unknown step kind %q", key)}
	}
	return nil
}

// Script is a parsed automation script. Immutable after Load.
type Script struct {
	Params Params `yaml:"params"`
	Steps  []Step `yaml:"steps"`
}

// Load reads and strictly parses a script file. Any structural problem is a
// *ScriptError.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse strictly decodes script bytes.
func Parse(data []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		var se *ScriptError
		if errors.As(err, &se) {
			return nil, se
		}
		return nil, &ScriptError{Reason: fmt.Sprintf("parse failed: %v", err)}
	}
	if len(s.Steps) == 0 {
		return nil, &ScriptError{Reason: "script has no steps"}
	}
	return &s, nil
}
