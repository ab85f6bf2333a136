package beacon

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	// PollInterval is how often wait loops re-check monitor state. Timeouts
	// are cooperative: checked once per tick, never mid-request.
	PollInterval = 500 * time.Millisecond

	// GracePeriod is the post-completion stabilization window in exact mode.
	// Further beacon arrivals during grace neither cancel nor extend it.
	GracePeriod = 2000 * time.Millisecond
)

// Outcome is the result of one wait, created per test phase.
type Outcome struct {
	Passed      bool
	Elapsed     time.Duration
	Found       []Category // concrete categories observed, in arrival order
	ContentType string     // "VOD", "Live" or ""
	Missing     []string
	Err         error
}

// TimeoutError reports a wait deadline elapsing with conditions still unmet.
type TimeoutError struct {
	Missing []string
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("beacon wait timed out after %s: missing %s",
		e.Elapsed.Round(time.Millisecond), strings.Join(e.Missing, ", "))
}

// WaitExact polls until every required category is fresh relative to base,
// then holds for the grace period before signalling success. A grace window
// entered before the deadline always runs to completion, even when it
// outlives the deadline. The deadline elapsing with categories still missing
// yields a failed Outcome naming them.
func WaitExact(ctx context.Context, mon *Monitor, required []Category, base Baseline, timeout time.Duration) Outcome {
	start := time.Now()
	deadline := start.Add(timeout)
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	var graceEnd time.Time
	for {
		now := time.Now()
		if graceEnd.IsZero() && allFresh(mon, required, base) {
			graceEnd = now.Add(GracePeriod)
		}
		if !graceEnd.IsZero() && !now.Before(graceEnd) {
			return Outcome{
				Passed:  true,
				Elapsed: time.Since(start),
				Found:   mon.FreshSince(base),
			}
		}
		if graceEnd.IsZero() && now.After(deadline) {
			missing := missingNames(mon, required, base)
			return Outcome{
				Elapsed: time.Since(start),
				Found:   mon.FreshSince(base),
				Missing: missing,
				Err:     &TimeoutError{Missing: missing, Elapsed: time.Since(start)},
			}
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return Outcome{Elapsed: time.Since(start), Found: mon.FreshSince(base), Err: ctx.Err()}
		}
	}
}

// SmartSpec describes the logical conditions of a smart wait.
type SmartSpec struct {
	RequireLaunch bool     // AppLaunchComplete must be fresh
	RequireVideo  bool     // a VOD or Live Initiate+Complete pair must be fresh
	Extra         Category // optional additional category
}

// WaitSmart polls until all requested conditions hold simultaneously. Video
// content is disambiguated per tick: the VOD pair is checked before the Live
// pair, and the first fully satisfied pair fixes the content type for the
// remainder of the wait. No grace period applies in smart mode.
func WaitSmart(ctx context.Context, mon *Monitor, spec SmartSpec, base Baseline, timeout time.Duration) Outcome {
	start := time.Now()
	deadline := start.Add(timeout)
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	contentType := ""
	for {
		launchOK := !spec.RequireLaunch || mon.Fresh(AppLaunchComplete, base)
		if spec.RequireVideo && contentType == "" {
			switch {
			case mon.Fresh(VODStartInitiate, base) && mon.Fresh(VODStartComplete, base):
				contentType = "VOD"
			case mon.Fresh(LiveStartInitiate, base) && mon.Fresh(LiveStartComplete, base):
				contentType = "Live"
			}
		}
		videoOK := !spec.RequireVideo || contentType != ""
		extraOK := spec.Extra == "" || mon.Fresh(spec.Extra, base)

		if launchOK && videoOK && extraOK {
			return Outcome{
				Passed:      true,
				Elapsed:     time.Since(start),
				Found:       mon.FreshSince(base),
				ContentType: contentType,
			}
		}
		if time.Now().After(deadline) {
			var missing []string
			if !launchOK {
				missing = append(missing, "app launch beacon")
			}
			if !videoOK {
				missing = append(missing, "video playback beacons")
			}
			if !extraOK {
				missing = append(missing, "beacon "+string(spec.Extra))
			}
			return Outcome{
				Elapsed:     time.Since(start),
				Found:       mon.FreshSince(base),
				ContentType: contentType,
				Missing:     missing,
				Err:         &TimeoutError{Missing: missing, Elapsed: time.Since(start)},
			}
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return Outcome{Elapsed: time.Since(start), Found: mon.FreshSince(base), ContentType: contentType, Err: ctx.Err()}
		}
	}
}

func allFresh(mon *Monitor, required []Category, base Baseline) bool {
	for _, c := range required {
		if !mon.Fresh(c, base) {
			return false
		}
	}
	return true
}

func missingNames(mon *Monitor, required []Category, base Baseline) []string {
	var missing []string
	for _, c := range required {
		if !mon.Fresh(c, base) {
			missing = append(missing, string(c))
		}
	}
	return missing
}
