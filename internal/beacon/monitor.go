// Package beacon parses the device's newline-delimited debug event stream
// into a set of certification beacons, and coordinates waits against that set.
package beacon

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Category identifies one beacon kind from the fixed certification vocabulary.
// Callers may watch additional custom categories.
type Category string

const (
	AppLaunchComplete Category = "AppLaunchComplete"
	AppDialogInitiate Category = "AppDialogInitiate"
	VODStartInitiate  Category = "VODStartInitiate"
	VODStartComplete  Category = "VODStartComplete"
	LiveStartInitiate Category = "LiveStartInitiate"
	LiveStartComplete Category = "LiveStartComplete"
)

// DefaultEventPort is the device debug log port carrying beacon lines.
const DefaultEventPort = "8085"

// recentLines is how many raw lines are kept for failure diagnostics.
const recentLines = 25

var (
	durationRe = regexp.MustCompile(`Duration\((\d+) ms\)`)
	timeBaseRe = regexp.MustCompile(`TimeBase\((\d+) ms\)`)
)

// Baseline is a snapshot of observation sequence numbers, used to tell
// beacons of the current test phase from stale ones. A category is fresh
// relative to a baseline only if it was observed strictly after the snapshot.
type Baseline map[Category]uint64

// Monitor accumulates beacons from the event stream. A single reader
// goroutine appends via OnData; waits poll through Fresh/FreshSince.
type Monitor struct {
	mu      sync.Mutex
	seq     uint64
	seen    map[Category]uint64 // category -> sequence of last observation
	timings map[Category]*int64 // category -> most recent timing in ms, nil if the line carried none
	extra   []Category
	recent  []string
	log     zerolog.Logger
}

func NewMonitor(logger zerolog.Logger) *Monitor {
	return &Monitor{
		seen:    make(map[Category]uint64),
		timings: make(map[Category]*int64),
		log:     logger,
	}
}

// Watch adds a custom category to the scan vocabulary.
func (m *Monitor) Watch(c Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.extra = append(m.extra, c)
}

// OnData processes one complete record from the event stream.
//
// Extraction rules: AppLaunchComplete is recorded only when the record also
// carries a Duration field, otherwise the line is noise. Initiate categories
// extract TimeBase, Complete/Dialog categories extract Duration where
// present. Repeat sightings overwrite the timing and bump the sequence.
func (m *Monitor) OnData(line string) {
	if line == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.recent = append(m.recent, line)
	if len(m.recent) > recentLines {
		m.recent = m.recent[1:]
	}

	if contains(line, AppLaunchComplete) {
		if d, ok := extract(durationRe, line); ok {
			m.record(AppLaunchComplete, &d)
		} else {
			observeNoise()
			m.log.Debug().Str("line", line).Msg("launch beacon without duration ignored")
		}
	}
	for _, c := range []Category{VODStartInitiate, LiveStartInitiate} {
		if contains(line, c) {
			m.record(c, maybeExtract(timeBaseRe, line))
		}
	}
	for _, c := range []Category{VODStartComplete, LiveStartComplete, AppDialogInitiate} {
		if contains(line, c) {
			m.record(c, maybeExtract(durationRe, line))
		}
	}
	for _, c := range m.extra {
		if contains(line, c) {
			m.record(c, maybeExtract(durationRe, line))
		}
	}
}

func (m *Monitor) record(c Category, timing *int64) {
	m.seq++
	m.seen[c] = m.seq
	m.timings[c] = timing
	observeBeacon(string(c))

	ev := m.log.Debug().Str("category", string(c))
	if timing != nil {
		ev = ev.Int64("timing_ms", *timing)
	}
	ev.Msg("beacon observed")
}

// Snapshot returns an immutable baseline for later freshness comparison.
func (m *Monitor) Snapshot() Baseline {
	m.mu.Lock()
	defer m.mu.Unlock()
	base := make(Baseline, len(m.seen))
	for c, s := range m.seen {
		base[c] = s
	}
	return base
}

// Reset clears the received set and timing map. Used between test phases;
// the diagnostic line buffer survives.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = make(map[Category]uint64)
	m.timings = make(map[Category]*int64)
}

// Fresh reports whether c has been observed strictly after the baseline was
// snapshotted.
func (m *Monitor) Fresh(c Category, base Baseline) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.freshLocked(c, base)
}

func (m *Monitor) freshLocked(c Category, base Baseline) bool {
	cur, ok := m.seen[c]
	if !ok {
		return false
	}
	prev, inBase := base[c]
	return !inBase || cur > prev
}

// FreshSince returns all categories fresh relative to base, in observation
// order.
func (m *Monitor) FreshSince(base Baseline) []Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	type obs struct {
		c Category
		s uint64
	}
	var found []obs
	for c := range m.seen {
		if m.freshLocked(c, base) {
			found = append(found, obs{c, m.seen[c]})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].s < found[j].s })
	out := make([]Category, len(found))
	for i, f := range found {
		out[i] = f.c
	}
	return out
}

// Timing returns the most recent timing value for c, if one was extracted.
func (m *Monitor) Timing(c Category) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.timings[c]
	if !ok || t == nil {
		return 0, false
	}
	return *t, true
}

// RecentLines returns a copy of the last raw event lines for diagnostics.
func (m *Monitor) RecentLines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.recent))
	copy(out, m.recent)
	return out
}

func contains(line string, c Category) bool {
	return strings.Contains(line, string(c))
}

func extract(re *regexp.Regexp, line string) (int64, bool) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func maybeExtract(re *regexp.Regexp, line string) *int64 {
	if v, ok := extract(re, line); ok {
		return &v
	}
	return nil
}
