// rasp-check is a CLI tool to validate RASP automation scripts offline.
//
// Usage:
//
//	rasp-check -f signin.yaml
//	rasp-check --file signin.yaml
//
// Exit codes:
//   - 0: Script is valid
//   - 1: Script is invalid (parse or validation error)
//   - 2: Usage error (missing required flag)
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/avalas/dlcert/internal/rasp"
)

var Version = "dev"

func main() {
	var file string
	var showVersion bool

	flag.StringVar(&file, "file", "", "path to RASP script file")
	flag.StringVar(&file, "f", "", "path to RASP script file (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(Version)
		os.Exit(0)
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "Error: --file is required")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  rasp-check -f signin.yaml")
		fmt.Fprintln(os.Stderr, "  rasp-check --file signin.yaml")
		os.Exit(2)
	}

	res, err := rasp.CheckFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot read %s:\n", file)
		fmt.Fprintf(os.Stderr, "  %v\n", err)
		os.Exit(1)
	}

	if !res.Valid {
		fmt.Fprintf(os.Stderr, "Validation errors in %s:\n", file)
		for _, e := range res.Errors {
			fmt.Fprintf(os.Stderr, "  %s\n", e)
		}
		os.Exit(1)
	}

	fmt.Printf("✓ %s is valid\n", file)
	fmt.Printf("  steps: %d, estimated duration: %ds\n", res.StepCount, res.EstimatedSeconds)
}
