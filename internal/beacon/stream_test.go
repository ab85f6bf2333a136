package beacon

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeDevice listens on a loopback port and writes raw bytes to the first
// connection it accepts.
type fakeDevice struct {
	ln    net.Listener
	conns chan net.Conn
}

func newFakeDevice(t *testing.T) *fakeDevice {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	d := &fakeDevice{ln: ln, conns: make(chan net.Conn, 1)}
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		d.conns <- conn
	}()
	t.Cleanup(func() { ln.Close() })
	return d
}

func (d *fakeDevice) addr() string { return d.ln.Addr().String() }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestStreamReassemblesSplitLines(t *testing.T) {
	dev := newFakeDevice(t)
	mon := testMonitor()
	s := NewStream(dev.addr(), mon, zerolog.New(io.Discard))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()

	conn := <-dev.conns
	// One record split across two writes, then two records in one write.
	if _, err := conn.Write([]byte("AppLaunchComplete Dura")); err != nil {
		t.Fatalf("write: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, err := conn.Write([]byte("tion(2000 ms)\nVODStartInitiate TimeBase(5 ms)\nVODStartComplete Duration(9 ms)\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	waitFor(t, func() bool {
		return mon.Fresh(AppLaunchComplete, nil) &&
			mon.Fresh(VODStartInitiate, nil) &&
			mon.Fresh(VODStartComplete, nil)
	})

	if v, ok := mon.Timing(AppLaunchComplete); !ok || v != 2000 {
		t.Errorf("Timing(AppLaunchComplete) = %d, %v; want 2000", v, ok)
	}

	cancel()
	if err := <-errc; err != nil {
		t.Errorf("Run() after cancel = %v, want nil", err)
	}
}

func TestStreamDeviceCloseIsError(t *testing.T) {
	dev := newFakeDevice(t)
	mon := testMonitor()
	s := NewStream(dev.addr(), mon, zerolog.New(io.Discard))

	errc := make(chan error, 1)
	go func() { errc <- s.Run(context.Background()) }()

	conn := <-dev.conns
	conn.Close()

	select {
	case err := <-errc:
		if !errors.Is(err, ErrStream) {
			t.Errorf("Run() = %v, want ErrStream", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after device close")
	}
}

func TestStreamDialFailure(t *testing.T) {
	mon := testMonitor()
	// Port from a closed listener: nothing is listening there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	s := NewStream(addr, mon, zerolog.New(io.Discard))
	if err := s.Run(context.Background()); !errors.Is(err, ErrStream) {
		t.Errorf("Run() = %v, want ErrStream", err)
	}
}
