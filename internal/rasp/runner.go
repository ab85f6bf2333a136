package rasp

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// typeDelay is the per-character delay during script text entry.
const typeDelay = 50 * time.Millisecond

// Device is the control surface a script drives.
type Device interface {
	LaunchApp(ctx context.Context, appID string) error
	Keypress(ctx context.Context, key string) error
	TypeText(ctx context.Context, text string, delay time.Duration) error
}

// Runner executes a script strictly sequentially: no branching, no retries.
// The first failing step aborts the whole script.
type Runner struct {
	dev     Device
	secrets SecretSource
	log     zerolog.Logger
}

func NewRunner(dev Device, secrets SecretSource, logger zerolog.Logger) *Runner {
	return &Runner{dev: dev, secrets: secrets, log: logger}
}

// Run executes all steps. The configured inter-step delay applies between
// consecutive steps, never after the final one.
func (r *Runner) Run(ctx context.Context, s *Script) error {
	for i, step := range s.Steps {
		if i > 0 {
			if err := sleep(ctx, s.Params.stepDelay()); err != nil {
				return err
			}
		}
		r.log.Debug().Int("step", i+1).Str("kind", string(step.Kind)).Msg("executing step")
		if err := r.step(ctx, s, i+1, step); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) step(ctx context.Context, s *Script, n int, step Step) error {
	switch step.Kind {
	case KindLaunch:
		appID := step.Value
		if mapped, ok := s.Params.Channels[step.Value]; ok {
			appID = mapped
		}
		return r.dev.LaunchApp(ctx, appID)
	case KindPress:
		return r.dev.Keypress(ctx, ResolveKey(step.Value))
	case KindText:
		text := step.Value
		if name, ok := secretName(text); ok {
			v, found := r.secrets.Lookup(name)
			if !found {
				return &ScriptError{Step: n, Reason: "missing secret " + name}
			}
			text = v
		}
		return r.dev.TypeText(ctx, text, typeDelay)
	case KindPause:
		return sleep(ctx, time.Duration(step.Seconds*float64(time.Second)))
	default:
		return &ScriptError{Step: n, Reason: fmt.Sprintf("unknown step kind %q", step.Kind)}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
