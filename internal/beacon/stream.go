package beacon

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/rs/zerolog"
)

// ErrStream is the sentinel for event-stream connection failures.
var ErrStream = errors.New("beacon: event stream failure")

// StreamError wraps a connection-level failure with the peer address.
type StreamError struct {
	Addr string
	Err  error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("beacon: event stream %s: %v", e.Addr, e.Err)
}

func (e *StreamError) Unwrap() error {
	return ErrStream
}

// Stream owns the persistent connection to the device debug log port and
// feeds complete lines to a Monitor. The device emits newline-delimited
// records, but TCP may split or merge them; the scanner reassembles lines
// so OnData always sees whole records.
type Stream struct {
	addr string
	mon  *Monitor
	log  zerolog.Logger
	dial net.Dialer
}

func NewStream(addr string, mon *Monitor, logger zerolog.Logger) *Stream {
	return &Stream{addr: addr, mon: mon, log: logger}
}

// Run connects and reads until ctx is cancelled. Any dial failure, read
// failure, or device-side close ends the run with a *StreamError; callers
// treat that as fatal for the whole certification run.
func (s *Stream) Run(ctx context.Context) error {
	conn, err := s.dial.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return &StreamError{Addr: s.addr, Err: err}
	}
	s.log.Info().Str("stream_addr", s.addr).Msg("event stream connected")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		conn.Close()
	}()

	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 64*1024), 256*1024)
	for sc.Scan() {
		s.mon.OnData(sc.Text())
	}
	if ctx.Err() != nil {
		return nil
	}
	if err := sc.Err(); err != nil {
		return &StreamError{Addr: s.addr, Err: err}
	}
	// The device closed the log stream mid-run.
	return &StreamError{Addr: s.addr, Err: io.EOF}
}
