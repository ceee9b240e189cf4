package main

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/odvcencio/tripdesk/pkg/chat"
	"github.com/odvcencio/tripdesk/pkg/logging"
	"github.com/odvcencio/tripdesk/pkg/terminal"
)

func parseChatFlags(args []string, std streams) (commonFlags, bool, error) {
	var flags commonFlags
	fs := newFlagSet("chat", std.err)
	flags.register(fs)
	help, err := parseFlags(fs, args)
	return flags, help, err
}

func runChatCommand(args []string, std streams) error {
	flags, help, err := parseChatFlags(args, std)
	if err != nil || help {
		return err
	}

	a, err := newApp(flags, "", std)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	input := &terminal.LineInput{}
	controller := chat.NewController(a.client, terminal.NewTranscript(a.out), terminal.NewTyping(a.out), input, chat.Options{
		WelcomeMessage:  a.cfg.Chat.WelcomeMessage,
		FailureFallback: a.cfg.Chat.FailureFallback,
		SessionPrefix:   a.cfg.Chat.SessionPrefix,
		Ordered:         a.cfg.Chat.OrderedRendering,
		NewSessionID:    func() string { return a.sessionID },
		Logger:          a.logger,
		Hub:             a.hub,
	})

	g, gctx := errgroup.WithContext(ctx)
	if flags.events {
		g.Go(streamEvents(a.hub, std.err))
	}

	controller.InitSession()
	if isInteractive(std.in) {
		a.out.Dim("Type a message and press Enter. :q to quit.")
	}

	// Stdin reads cannot be interrupted, so the reader lives outside the group.
	lines := make(chan string)
	go readLines(std.in, lines)

	g.Go(func() error {
		defer a.hub.Close()
		for {
			select {
			case <-gctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					return nil
				}
				if isQuit(line) {
					return nil
				}
				input.Set(line)
				controller.OnKeyPress(gctx, chat.KeyEnter)
			}
		}
	})

	err = g.Wait()
	_ = a.logger.Info(logging.CategorySession, "session.closed", "chat session closed", map[string]any{
		"messages": len(controller.Messages()),
	})
	return err
}

func readLines(r io.Reader, out chan<- string) {
	defer close(out)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		out <- scanner.Text()
	}
}

func isQuit(line string) bool {
	switch strings.TrimSpace(line) {
	case ":q", ":quit", "/quit":
		return true
	}
	return false
}

func isInteractive(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
