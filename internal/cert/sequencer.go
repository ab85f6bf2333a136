// Package cert orchestrates a certification run: optional scripted sign-in,
// a deep-link launch test, and a deep-link input test, each judged by beacon
// waits against a fresh baseline.
package cert

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/avalas/dlcert/internal/beacon"
	"github.com/avalas/dlcert/internal/ecp"
	"github.com/avalas/dlcert/internal/rasp"
)

// homeSettle is how long the app gets to reach a stopped state after the
// Home keypress during input-test warm-up.
const homeSettle = 2 * time.Second

// warmUpCap bounds the warm-up launch wait regardless of the configured
// timeout.
const warmUpCap = 30 * time.Second

// Config selects what a run certifies.
type Config struct {
	Device        string // device host, for reporting
	AppID         string
	ContentID     string
	MediaType     string
	Timeout       time.Duration // per-phase beacon deadline
	ExtraCategory beacon.Category
	ScriptPath    string // optional sign-in script; empty skips the phase
	SkipLaunch    bool
	SkipInput     bool
}

// mediaRequiresVideo reports whether the media type must produce playback
// beacons to pass.
func (c Config) mediaRequiresVideo() bool {
	return c.MediaType == "movie" || c.MediaType == "episode"
}

func (c Config) params() ecp.ContentParams {
	return ecp.ContentParams{ContentID: c.ContentID, MediaType: c.MediaType}
}

// Controller is the device control surface the sequencer drives. *ecp.Client
// satisfies it.
type Controller interface {
	Launch(ctx context.Context, appID string, params ecp.ContentParams) error
	LaunchApp(ctx context.Context, appID string) error
	Input(ctx context.Context, params ecp.ContentParams) error
	Keypress(ctx context.Context, key string) error
	TypeText(ctx context.Context, text string, delay time.Duration) error
}

// Sequencer runs the certification phases in order, resetting the beacon
// baseline before each so no phase can be satisfied by a predecessor's
// beacons.
type Sequencer struct {
	cfg     Config
	ctrl    Controller
	mon     *beacon.Monitor
	stream  *beacon.Stream // nil when the caller owns the event connection
	secrets rasp.SecretSource
	log     zerolog.Logger
}

func New(cfg Config, ctrl Controller, mon *beacon.Monitor, stream *beacon.Stream, secrets rasp.SecretSource, logger zerolog.Logger) *Sequencer {
	return &Sequencer{
		cfg:     cfg,
		ctrl:    ctrl,
		mon:     mon,
		stream:  stream,
		secrets: secrets,
		log:     logger,
	}
}

// Run executes the configured phases. The returned error is non-nil only for
// run-level aborts (event stream loss, sign-in script failure, launch command
// not accepted); individual phase failures live in the report.
func (s *Sequencer) Run(ctx context.Context) (*Report, error) {
	rep := newReport(s.cfg)
	if s.cfg.ExtraCategory != "" {
		s.mon.Watch(s.cfg.ExtraCategory)
	}

	if s.stream == nil {
		err := s.phases(ctx, rep)
		rep.finalize()
		return rep, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.stream.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		return s.phases(gctx, rep)
	})
	err := g.Wait()
	rep.finalize()
	return rep, err
}

func (s *Sequencer) phases(ctx context.Context, rep *Report) error {
	signedIn := false

	if s.cfg.ScriptPath != "" {
		pr, err := s.signIn(ctx)
		rep.Phases = append(rep.Phases, pr)
		if err != nil {
			// A script failure leaves the app in an unknown state; nothing
			// after it is trustworthy.
			return err
		}
		signedIn = true
	}

	if !s.cfg.SkipLaunch {
		pr, err := s.launchTest(ctx)
		rep.Phases = append(rep.Phases, pr)
		if err != nil {
			return err
		}
	}

	if !s.cfg.SkipInput {
		rep.Phases = append(rep.Phases, s.inputTest(ctx, signedIn))
	}
	return nil
}

func (s *Sequencer) signIn(ctx context.Context) (PhaseResult, error) {
	start := time.Now()
	s.mon.Reset()
	s.log.Info().Str("script", s.cfg.ScriptPath).Msg("sign-in phase")

	script, err := rasp.Load(s.cfg.ScriptPath)
	if err != nil {
		return failResult(PhaseSignIn, start, err, s.mon), err
	}
	runner := rasp.NewRunner(s.ctrl, s.secrets, s.log)
	if err := runner.Run(ctx, script); err != nil {
		return failResult(PhaseSignIn, start, err, s.mon), err
	}
	return PhaseResult{
		Name:       PhaseSignIn,
		Status:     StatusPass,
		DurationMS: time.Since(start).Milliseconds(),
	}, nil
}

func (s *Sequencer) launchTest(ctx context.Context) (PhaseResult, error) {
	start := time.Now()
	s.mon.Reset()
	base := s.mon.Snapshot()
	s.log.Info().Str("app_id", s.cfg.AppID).Str("media_type", s.cfg.MediaType).Msg("launch test phase")

	if err := s.ctrl.Launch(ctx, s.cfg.AppID, s.cfg.params()); err != nil {
		err = fmt.Errorf("launch command not accepted, app may not be installed: %w", err)
		return failResult(PhaseLaunch, start, err, s.mon), err
	}

	out := beacon.WaitSmart(ctx, s.mon, beacon.SmartSpec{
		RequireLaunch: true,
		RequireVideo:  s.cfg.mediaRequiresVideo(),
		Extra:         s.cfg.ExtraCategory,
	}, base, s.cfg.Timeout)
	return outcomeResult(PhaseLaunch, out, s.mon), nil
}

func (s *Sequencer) inputTest(ctx context.Context, signedIn bool) PhaseResult {
	start := time.Now()

	// Without a sign-in phase the app is not known to be running; force a
	// clean stopped state and warm it up with a plain launch. If signed in,
	// the app is still running from the sign-in flow.
	if !signedIn {
		if err := s.warmUp(ctx); err != nil {
			s.log.Warn().Err(err).Msg("input test warm-up failed, skipping phase")
			return PhaseResult{
				Name:       PhaseInput,
				Status:     StatusSkipped,
				DurationMS: time.Since(start).Milliseconds(),
				Error:      fmt.Sprintf("warm-up failed: %v", err),
				LastLines:  s.mon.RecentLines(),
			}
		}
	}

	s.mon.Reset()
	base := s.mon.Snapshot()
	s.log.Info().Str("content_id", s.cfg.ContentID).Msg("input test phase")

	if err := s.ctrl.Input(ctx, s.cfg.params()); err != nil {
		return failResult(PhaseInput, start, err, s.mon)
	}

	// The app is already running: AppLaunchComplete is never required here.
	out := beacon.WaitSmart(ctx, s.mon, beacon.SmartSpec{
		RequireVideo: s.cfg.mediaRequiresVideo(),
		Extra:        s.cfg.ExtraCategory,
	}, base, s.cfg.Timeout)
	return outcomeResult(PhaseInput, out, s.mon)
}

func (s *Sequencer) warmUp(ctx context.Context) error {
	if err := s.ctrl.Keypress(ctx, "Home"); err != nil {
		return err
	}
	if err := sleep(ctx, homeSettle); err != nil {
		return err
	}

	s.mon.Reset()
	base := s.mon.Snapshot()
	if err := s.ctrl.LaunchApp(ctx, s.cfg.AppID); err != nil {
		return err
	}

	timeout := s.cfg.Timeout
	if timeout > warmUpCap {
		timeout = warmUpCap
	}
	out := beacon.WaitExact(ctx, s.mon, []beacon.Category{beacon.AppLaunchComplete}, base, timeout)
	if !out.Passed {
		return out.Err
	}
	return nil
}

func failResult(name string, start time.Time, err error, mon *beacon.Monitor) PhaseResult {
	return PhaseResult{
		Name:       name,
		Status:     StatusFail,
		DurationMS: time.Since(start).Milliseconds(),
		Error:      err.Error(),
		LastLines:  mon.RecentLines(),
	}
}

func outcomeResult(name string, out beacon.Outcome, mon *beacon.Monitor) PhaseResult {
	pr := PhaseResult{
		Name:        name,
		DurationMS:  out.Elapsed.Milliseconds(),
		ContentType: out.ContentType,
		Missing:     out.Missing,
	}
	for _, c := range out.Found {
		pr.Beacons = append(pr.Beacons, string(c))
	}
	if out.Passed {
		pr.Status = StatusPass
		return pr
	}
	pr.Status = StatusFail
	if out.Err != nil {
		pr.Error = out.Err.Error()
	}
	pr.LastLines = mon.RecentLines()
	return pr
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
