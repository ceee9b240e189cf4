package main

import (
	"errors"
	"os"

	"github.com/odvcencio/tripdesk/pkg/logging"
	"github.com/odvcencio/tripdesk/pkg/paths"
	"github.com/odvcencio/tripdesk/pkg/render"
	"github.com/odvcencio/tripdesk/pkg/terminal"
)

const defaultErrorCount = 20

// runErrorsCommand prints the most recent entries of the shared error log.
func runErrorsCommand(args []string, std streams) error {
	var (
		flags commonFlags
		count int
	)
	fs := newFlagSet("errors", std.err)
	flags.register(fs)
	fs.IntVar(&count, "n", defaultErrorCount, "Number of entries to show")
	if help, err := parseFlags(fs, args); err != nil || help {
		return err
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	out := terminal.NewWithOutput(std.out, colorEnabled(std.out, flags.noColor))

	events, err := logging.ReadRecentEvents(paths.ErrorLogPath(cfg.Logging.Dir), count)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			out.Dim("No errors logged.")
			return nil
		}
		return withExitCode(err, exitFailure)
	}
	if len(events) == 0 {
		out.Dim("No errors logged.")
		return nil
	}

	for _, ev := range events {
		line := ev.Timestamp.Format("2006-01-02 15:04:05") + " " + ev.EventType
		if code, ok := ev.Details["code"].(string); ok && code != "" {
			line += " [" + code + "]"
		}
		if ev.Message != "" {
			line += ": " + render.Sanitize(ev.Message)
		}
		if ev.Level == logging.LevelError {
			out.Error("%s", line)
		} else {
			out.Warn("%s", line)
		}
	}
	return nil
}
