// Package chat drives a conversational session with the travel assistant.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/odvcencio/tripdesk/pkg/api"
	"github.com/odvcencio/tripdesk/pkg/config"
	tderrors "github.com/odvcencio/tripdesk/pkg/errors"
	"github.com/odvcencio/tripdesk/pkg/logging"
	"github.com/odvcencio/tripdesk/pkg/render"
	"github.com/odvcencio/tripdesk/pkg/session"
	"github.com/odvcencio/tripdesk/pkg/telemetry"
)

// Options tunes a Controller. Zero values take the config defaults.
type Options struct {
	WelcomeMessage  string
	FailureFallback string
	SessionPrefix   string
	// Ordered buffers replies and appends them in send order instead of arrival order.
	Ordered      bool
	NewSessionID session.Generator
	Logger       *logging.Logger
	Hub          *telemetry.Hub
}

// Controller owns one chat session. Its methods may be called from any
// goroutine; view mutations are serialized and never overlap a request.
type Controller struct {
	chatter    Chatter
	transcript Transcript
	typing     TypingIndicator
	input      InputControl
	opts       Options

	mu        sync.Mutex
	sessionID string
	createdAt time.Time
	messages  []render.Message
	pending   int
	showing   bool
	seq       *sequencer
}

// NewController wires a controller to its views.
func NewController(chatter Chatter, transcript Transcript, typing TypingIndicator, input InputControl, opts Options) *Controller {
	if strings.TrimSpace(opts.WelcomeMessage) == "" {
		opts.WelcomeMessage = config.DefaultWelcomeMessage
	}
	if strings.TrimSpace(opts.FailureFallback) == "" {
		opts.FailureFallback = config.DefaultChatFallback
	}
	if strings.TrimSpace(opts.SessionPrefix) == "" {
		opts.SessionPrefix = config.DefaultSessionPrefix
	}
	if opts.NewSessionID == nil {
		opts.NewSessionID = session.NewGenerator(opts.SessionPrefix)
	}
	return &Controller{
		chatter:    chatter,
		transcript: transcript,
		typing:     typing,
		input:      input,
		opts:       opts,
		seq:        newSequencer(),
	}
}

// InitSession generates the session id and appends the welcome message. It
// makes no request. Later calls return the existing id and change nothing.
func (c *Controller) InitSession() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessionID != "" {
		return c.sessionID
	}
	c.startSessionLocked()
	c.appendLocked(render.Message{Role: render.RoleAssistant, Content: c.opts.WelcomeMessage})
	return c.sessionID
}

// SessionID returns the current session id, or "" before InitSession.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// CreatedAt is when the session id was generated.
func (c *Controller) CreatedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.createdAt
}

// Messages returns a copy of the transcript.
func (c *Controller) Messages() []render.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]render.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// OnSendClick sends the current input value.
func (c *Controller) OnSendClick(ctx context.Context) {
	c.send(ctx, "", true)
}

// OnKeyPress sends the current input value when key is Enter and reports
// whether the key was handled.
func (c *Controller) OnKeyPress(ctx context.Context, key string) bool {
	if key != KeyEnter {
		return false
	}
	c.send(ctx, "", true)
	return true
}

// SendMessage sends text. Whitespace-only text is ignored. Failures are
// rendered as error messages in the transcript, never returned.
func (c *Controller) SendMessage(ctx context.Context, text string) {
	c.send(ctx, text, false)
}

func (c *Controller) send(ctx context.Context, text string, fromInput bool) {
	c.mu.Lock()
	if fromInput {
		text = c.input.Value()
	}
	text = strings.TrimSpace(text)
	if text == "" {
		c.mu.Unlock()
		return
	}
	if c.sessionID == "" {
		c.startSessionLocked()
	}
	c.appendLocked(render.Message{Role: render.RoleUser, Content: text})
	c.input.Clear()
	c.showTypingLocked()
	c.pending++
	ticket := c.seq.next()
	sessionID := c.sessionID
	c.mu.Unlock()

	c.opts.Hub.Publish(telemetry.Event{
		Type:      telemetry.EventChatSent,
		SessionID: sessionID,
		Data:      map[string]any{"seq": ticket},
	})
	_ = c.opts.Logger.Info(logging.CategoryChat, "chat.sent", "", map[string]any{"seq": ticket, "chars": len(text)})

	resp, err := c.chatter.Chat(ctx, api.ChatRequest{Query: text, SessionID: sessionID})
	if err == nil {
		err = resp.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending--
	c.hideTypingLocked()

	reply := c.replyFor(resp, err)
	c.report(sessionID, ticket, reply, err)

	if c.opts.Ordered {
		for _, msg := range c.seq.complete(ticket, reply) {
			c.appendLocked(msg)
		}
	} else {
		c.seq.skip(ticket)
		c.appendLocked(reply)
	}

	if c.pending > 0 {
		c.showTypingLocked()
	}
}

// replyFor builds the transcript entry for a settled send. err is the call
// error, or the business failure reported by resp.
func (c *Controller) replyFor(resp *api.ChatResponse, err error) render.Message {
	if err != nil {
		return render.Message{Role: render.RoleError, Content: tderrors.UserMessage(err, c.opts.FailureFallback)}
	}
	return render.Message{Role: render.RoleAssistant, Content: resp.Content, Agent: strings.TrimSpace(resp.Agent)}
}

func (c *Controller) report(sessionID string, ticket uint64, reply render.Message, err error) {
	if err == nil {
		c.opts.Hub.Publish(telemetry.Event{
			Type:      telemetry.EventChatReplied,
			SessionID: sessionID,
			Data:      map[string]any{"seq": ticket, "agent": reply.Agent},
		})
		_ = c.opts.Logger.Info(logging.CategoryChat, "chat.replied", "", map[string]any{"seq": ticket, "agent": reply.Agent})
		return
	}
	c.opts.Hub.Publish(telemetry.Event{
		Type:      telemetry.EventChatFailed,
		SessionID: sessionID,
		Message:   reply.Content,
		Data:      map[string]any{"seq": ticket},
	})
	_ = c.opts.Logger.Error(logging.CategoryChat, "chat.failed", err.Error(), map[string]any{
		"seq":  ticket,
		"code": string(tderrors.GetCode(err)),
	})
}

func (c *Controller) startSessionLocked() {
	c.sessionID = c.opts.NewSessionID()
	c.createdAt = time.Now()
	if ts, ok := session.CreatedAt(c.sessionID); ok {
		c.createdAt = ts
	}
	c.opts.Hub.Publish(telemetry.Event{Type: telemetry.EventSessionStarted, SessionID: c.sessionID})
	_ = c.opts.Logger.Info(logging.CategorySession, "session.started", "", map[string]any{"session_id": c.sessionID})
}

func (c *Controller) appendLocked(msg render.Message) {
	c.messages = append(c.messages, msg)
	c.transcript.Append(render.ChatMessage(msg))
	c.transcript.ScrollToLatest()
}

func (c *Controller) showTypingLocked() {
	if c.showing {
		return
	}
	c.showing = true
	c.typing.ShowTyping()
}

func (c *Controller) hideTypingLocked() {
	if !c.showing {
		return
	}
	c.showing = false
	c.typing.HideTyping()
}
