package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Version information - set via ldflags during build
var (
	version   = "1.0.0-dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// streams are the process's standard files, swapped out in tests.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	std := streams{in: stdin, out: stdout, err: stderr}
	if len(args) == 0 {
		printHelp(stdout)
		return exitFailure
	}
	switch args[0] {
	case "--version", "-v", "version":
		printVersion(stdout)
		return exitOK
	case "--help", "-h", "help":
		printHelp(stdout)
		return exitOK
	case "plan":
		return runCommand(runPlanCommand, args[1:], std)
	case "chat":
		return runCommand(runChatCommand, args[1:], std)
	case "health":
		return runCommand(runHealthCommand, args[1:], std)
	case "errors":
		return runCommand(runErrorsCommand, args[1:], std)
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", args[0])
		printHelp(stderr)
		return exitFailure
	}
}

func runCommand(handler func([]string, streams) error, args []string, std streams) int {
	if err := handler(args, std); err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			fmt.Fprintf(std.err, "Error: %s\n", msg)
		}
		return exitCodeForError(err)
	}
	return exitOK
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, `tripdesk - travel assistant client

Usage:
  tripdesk plan --from CITY --to CITY --depart YYYY-MM-DD [--return YYYY-MM-DD] [--budget N] [--currency CODE]
  tripdesk chat
  tripdesk health
  tripdesk errors [-n N]
  tripdesk version

Common flags:
  --config PATH   load configuration from PATH instead of the default locations
  --url URL       backend base URL (overrides api.base_url)
  --events        write lifecycle events as JSON lines on stderr
  --no-color      disable colour output

Environment:
  TRIPDESK_BASE_URL, TRIPDESK_CURRENCY, TRIPDESK_TIMEOUT, TRIPDESK_RATE_LIMIT,
  TRIPDESK_LOG_DIR, TRIPDESK_LOG_LEVEL, TRIPDESK_ORDERED_CHAT,
  TRIPDESK_NETWORK_LOGS, TRIPDESK_TRACING

Exit codes: 0 ok, 1 usage or runtime error, 2 configuration error.
`)
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "tripdesk %s\n", version)
	if commit != "unknown" {
		fmt.Fprintf(w, "  Commit:     %s\n", commit)
	}
	if buildDate != "unknown" {
		fmt.Fprintf(w, "  Built:      %s\n", buildDate)
	}
	fmt.Fprintf(w, "  Go version: %s\n", runtime.Version())
}
