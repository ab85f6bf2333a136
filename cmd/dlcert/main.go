// dlcert drives a streaming device's control protocol and watches its debug
// event stream to certify that an installed application implements
// deep-linking correctly.
//
// Exit codes:
//   - 0: All configured phases passed
//   - 1: A phase failed or the run aborted
//   - 2: Usage error (missing required flag)
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/avalas/dlcert/internal/beacon"
	"github.com/avalas/dlcert/internal/cert"
	"github.com/avalas/dlcert/internal/ecp"
	"github.com/avalas/dlcert/internal/log"
	"github.com/avalas/dlcert/internal/rasp"
)

var Version = "dev"

func main() {
	var (
		device      string
		appID       string
		contentID   string
		mediaType   string
		timeout     time.Duration
		script      string
		extraBeacon string
		skipLaunch  bool
		skipInput   bool
		reportPath  string
		controlPort string
		eventPort   string
		showVersion bool
	)

	flag.StringVar(&device, "device", "", "device IP address or hostname (required)")
	flag.StringVar(&appID, "app", "", "application id under test (required)")
	flag.StringVar(&contentID, "content-id", "", "deep-link content id")
	flag.StringVar(&mediaType, "media-type", "", "deep-link media type (movie, episode, ...)")
	flag.DurationVar(&timeout, "timeout", 60*time.Second, "per-phase beacon deadline")
	flag.StringVar(&script, "script", "", "optional RASP sign-in script to run first")
	flag.StringVar(&extraBeacon, "extra-beacon", "", "additional beacon category required in every phase")
	flag.BoolVar(&skipLaunch, "skip-launch", false, "skip the deep-link launch test")
	flag.BoolVar(&skipInput, "skip-input", false, "skip the deep-link input test")
	flag.StringVar(&reportPath, "report", "", "write the JSON report to this path")
	flag.StringVar(&controlPort, "control-port", "8060", "device control channel port")
	flag.StringVar(&eventPort, "event-port", beacon.DefaultEventPort, "device event stream port")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(Version)
		os.Exit(0)
	}

	if device == "" || appID == "" {
		fmt.Fprintln(os.Stderr, "Error: --device and --app are required")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  dlcert -device 192.168.1.40 -app dev -content-id 1234 -media-type movie")
		os.Exit(2)
	}

	log.Configure(log.Config{})
	logger := log.WithComponent("main")

	mon := beacon.NewMonitor(log.WithComponent("beacon"))
	stream := beacon.NewStream(net.JoinHostPort(device, eventPort), mon, log.WithComponent("stream"))
	client := ecp.New("http://"+net.JoinHostPort(device, controlPort), log.WithComponent("ecp"))

	cfg := cert.Config{
		Device:        device,
		AppID:         appID,
		ContentID:     contentID,
		MediaType:     mediaType,
		Timeout:       timeout,
		ExtraCategory: beacon.Category(extraBeacon),
		ScriptPath:    script,
		SkipLaunch:    skipLaunch,
		SkipInput:     skipInput,
	}
	seq := cert.New(cfg, client, mon, stream, rasp.EnvSecrets{}, log.WithComponent("cert"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("dlcert %s\n", Version)
	fmt.Printf("Device: %s  App: %s\n", device, appID)

	rep, err := seq.Run(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("run aborted")
	}

	printSummary(os.Stdout, rep)

	if reportPath != "" {
		if werr := rep.Write(reportPath); werr != nil {
			fmt.Fprintf(os.Stderr, "Failed to write report: %v\n", werr)
			os.Exit(1)
		}
		fmt.Printf("Report written to %s\n", reportPath)
	}

	if err != nil || rep.Verdict != "PASS" {
		os.Exit(1)
	}
}

func printSummary(w io.Writer, rep *cert.Report) {
	fmt.Fprintln(w)
	for _, p := range rep.Phases {
		line := fmt.Sprintf("  %-8s %-8s %6dms", p.Name, strings.ToUpper(string(p.Status)), p.DurationMS)
		if p.ContentType != "" {
			line += "  content=" + p.ContentType
		}
		fmt.Fprintln(w, line)
		if p.Error != "" {
			fmt.Fprintf(w, "           %s\n", p.Error)
		}
		if len(p.Missing) > 0 {
			fmt.Fprintf(w, "           missing: %s\n", strings.Join(p.Missing, ", "))
		}
	}
	fmt.Fprintf(w, "\nVerdict: %s (run %s, %.1fs)\n", rep.Verdict, rep.RunID, rep.DurationSeconds)
}
