package main

import (
	"context"
	"fmt"

	"github.com/odvcencio/tripdesk/pkg/logging"
)

func runHealthCommand(args []string, std streams) error {
	var flags commonFlags
	fs := newFlagSet("health", std.err)
	flags.register(fs)
	if help, err := parseFlags(fs, args); err != nil || help {
		return err
	}

	a, err := newApp(flags, "health", std)
	if err != nil {
		return err
	}
	defer a.Close()

	status, err := a.client.Health(context.Background())
	if err != nil {
		_ = a.logger.Warn(logging.CategoryNetwork, "health.failed", err.Error(), nil)
		return withExitCode(err, exitFailure)
	}
	if !status.Healthy() {
		return withExitCode(fmt.Errorf("backend %s reported status %q", a.client.BaseURL(), status.Status), exitFailure)
	}

	msg := fmt.Sprintf("%s is %s", a.client.BaseURL(), status.Status)
	if status.Version != "" {
		msg += " (version " + status.Version + ")"
	}
	a.out.Success("%s", msg)
	return nil
}
