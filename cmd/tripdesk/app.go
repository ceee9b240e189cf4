package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/odvcencio/tripdesk/pkg/api"
	"github.com/odvcencio/tripdesk/pkg/config"
	"github.com/odvcencio/tripdesk/pkg/logging"
	"github.com/odvcencio/tripdesk/pkg/paths"
	"github.com/odvcencio/tripdesk/pkg/session"
	"github.com/odvcencio/tripdesk/pkg/telemetry"
	"github.com/odvcencio/tripdesk/pkg/terminal"
)

const shutdownTimeout = 5 * time.Second

// commonFlags are accepted by every subcommand that talks to the backend.
type commonFlags struct {
	configPath string
	baseURL    string
	events     bool
	noColor    bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "Path to a config file (default: ~/.tripdesk and ./.tripdesk)")
	fs.StringVar(&c.baseURL, "url", "", "Backend base URL")
	fs.BoolVar(&c.events, "events", false, "Write lifecycle events as JSON lines on stderr")
	fs.BoolVar(&c.noColor, "no-color", false, "Disable colour output")
}

// app is the wiring shared by the subcommands.
type app struct {
	cfg       *config.Config
	sessionID string
	logger    *logging.Logger
	client    *api.Client
	hub       *telemetry.Hub
	tracer    *telemetry.TracerProvider
	out       *terminal.Writer
	errOut    *terminal.Writer
}

func loadConfig(flags commonFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if strings.TrimSpace(flags.configPath) != "" {
		cfg, err = config.LoadFromPath(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, withExitCode(err, exitConfig)
	}
	if url := strings.TrimSpace(flags.baseURL); url != "" {
		cfg.API.BaseURL = strings.TrimRight(url, "/")
		if err := cfg.Validate(); err != nil {
			return nil, withExitCode(err, exitConfig)
		}
	}
	return cfg, nil
}

// newApp loads configuration and builds the shared services. The session id
// is derived from sessionBase, or chat.session_prefix when it is empty.
func newApp(flags commonFlags, sessionBase string, std streams) (*app, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	if sessionBase == "" {
		sessionBase = cfg.Chat.SessionPrefix
	}

	a := &app{
		cfg:       cfg,
		sessionID: session.GenerateSessionID(sessionBase),
		hub:       telemetry.NewHub(),
		out:       terminal.NewWithOutput(std.out, colorEnabled(std.out, flags.noColor)),
		errOut:    terminal.NewWithOutput(std.err, colorEnabled(std.err, flags.noColor)),
	}

	logger, err := logging.NewLogger(cfg.Logging.Dir, a.sessionID)
	if err != nil {
		// Logs are best effort; the commands work without them.
		a.errOut.Warn("session logging disabled: %v", err)
	} else {
		logger.SetMinLevel(logging.ParseLevel(cfg.Logging.Level))
		a.logger = logger
	}

	if cfg.Telemetry.Tracing {
		tp, err := telemetry.NewTracerProvider("tripdesk", version, std.err)
		if err != nil {
			a.errOut.Warn("tracing disabled: %v", err)
		} else {
			a.tracer = tp
		}
	}

	opts := []api.Option{
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(a.logger),
	}
	if cfg.API.RateLimit > 0 {
		opts = append(opts, api.WithRateLimit(cfg.API.RateLimit, cfg.API.Burst))
	}
	if cfg.API.NetworkLogs {
		opts = append(opts, api.WithNetworkLog(paths.NetworkLogPath(cfg.Logging.Dir)))
	}
	a.client = api.NewClient(cfg.API.BaseURL, opts...)

	_ = a.logger.Info(logging.CategoryConfig, "config.loaded", "configuration loaded", map[string]any{
		"base_url":     cfg.API.BaseURL,
		"timeout":      cfg.API.Timeout.String(),
		"rate_limit":   cfg.API.RateLimit,
		"network_logs": cfg.API.NetworkLogs,
		"ordered_chat": cfg.Chat.OrderedRendering,
	})
	return a, nil
}

func (a *app) Close() {
	a.hub.Close()
	_ = a.client.Close()
	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = a.tracer.Shutdown(ctx)
	}
	_ = a.logger.Close()
}

// streamEvents writes every hub event to w as one JSON line until the hub
// closes. Subscription happens at call time, before the first publication.
func streamEvents(hub *telemetry.Hub, w io.Writer) func() error {
	events, unsubscribe := hub.Subscribe()
	return func() error {
		defer unsubscribe()
		enc := json.NewEncoder(w)
		for ev := range events {
			if err := enc.Encode(ev); err != nil {
				return err
			}
		}
		return nil
	}
}

func colorEnabled(w io.Writer, disabled bool) bool {
	if disabled {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return terminal.IsTerminal(f)
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) (bool, error) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return true, nil
		}
		return false, withExitCode(err, exitFailure)
	}
	if fs.NArg() > 0 {
		return false, withExitCode(errUnexpectedArgs(fs.Args()), exitFailure)
	}
	return false, nil
}

func errUnexpectedArgs(args []string) error {
	return fmt.Errorf("unexpected arguments: %s", strings.Join(args, " "))
}
