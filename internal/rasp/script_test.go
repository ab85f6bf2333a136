package rasp

import (
	"errors"
	"testing"
)

func TestParseScript(t *testing.T) {
	data := []byte(`
params:
  rasp_version: 1
  default_keypress_wait: 2
  channels:
    myapp: "12345"
steps:
  - launch: myapp
  - pause: 3
  - press: ok
  - text: "hello"
`)
	s, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if s.Params.Version != 1 {
		t.Errorf("Version = %v, want 1", s.Params.Version)
	}
	if s.Params.Channels["myapp"] != "12345" {
		t.Errorf("Channels[myapp] = %q, want 12345", s.Params.Channels["myapp"])
	}

	want := []Step{
		{Kind: KindLaunch, Value: "myapp"},
		{Kind: KindPause, Seconds: 3},
		{Kind: KindPress, Value: "ok"},
		{Kind: KindText, Value: "hello"},
	}
	if len(s.Steps) != len(want) {
		t.Fatalf("got %d steps, want %d", len(s.Steps), len(want))
	}
	for i, w := range want {
		if s.Steps[i] != w {
			t.Errorf("Steps[%d] = %+v, want %+v", i, s.Steps[i], w)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "unknown step kind",
			data: "steps:\n  - wait: 3\n",
		},
		{
			name: "multi-key step",
			data: "steps:\n  - press: ok\n    text: hi\n",
		},
		{
			name: "pause not numeric",
			data: "steps:\n  - pause: soon\n",
		},
		{
			name: "negative pause",
			data: "steps:\n  - pause: -1\n",
		},
		{
			name: "no steps",
			data: "params:\n  rasp_version: 1\n",
		},
		{
			name: "not yaml",
			data: "steps: [unclosed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("expected parse error")
			}
			if !errors.Is(err, ErrScript) {
				t.Errorf("error = %v, want ErrScript", err)
			}
		})
	}
}

func TestStepDelayDefault(t *testing.T) {
	p := Params{}
	if got := p.stepDelay().Seconds(); got != 1 {
		t.Errorf("stepDelay() = %vs, want 1s default", got)
	}
	p.StepDelay = 0.5
	if got := p.stepDelay().Seconds(); got != 0.5 {
		t.Errorf("stepDelay() = %vs, want 0.5s", got)
	}
}

func TestResolveKey(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"ok", "Select"},
		{"OK", "Select"},
		{" home ", "Home"},
		{"fastforward", "Fwd"},
		{"PowerOff", "PowerOff"}, // unknown tokens pass through
	}
	for _, tt := range tests {
		if got := ResolveKey(tt.token); got != tt.want {
			t.Errorf("ResolveKey(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestSecretName(t *testing.T) {
	tests := []struct {
		value string
		want  string
		ok    bool
	}{
		{"script-login", "RASP_LOGIN", true},
		{"script-password", "RASP_PASSWORD", true},
		{"script-pin-code", "RASP_PIN_CODE", true},
		{"plain text", "", false},
	}
	for _, tt := range tests {
		got, ok := secretName(tt.value)
		if got != tt.want || ok != tt.ok {
			t.Errorf("secretName(%q) = %q, %v; want %q, %v", tt.value, got, ok, tt.want, tt.ok)
		}
	}
}
