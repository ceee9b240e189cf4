package main

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/tripdesk/pkg/api"
	"github.com/odvcencio/tripdesk/pkg/api/apitest"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var tripdeskEnv = []string{
	"TRIPDESK_BASE_URL",
	"TRIPDESK_CURRENCY",
	"TRIPDESK_TIMEOUT",
	"TRIPDESK_RATE_LIMIT",
	"TRIPDESK_LOG_DIR",
	"TRIPDESK_LOG_LEVEL",
	"TRIPDESK_ORDERED_CHAT",
	"TRIPDESK_NETWORK_LOGS",
	"TRIPDESK_TRACING",
}

// isolate points config and logs at temporary directories.
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range tripdeskEnv {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("HOME", t.TempDir())
	logDir := t.TempDir()
	t.Setenv("TRIPDESK_LOG_DIR", logDir)
	return logDir
}

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr syncBuffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestVersion(t *testing.T) {
	res := runCLI(t, "", "version")
	assert.Equal(t, exitOK, res.code)
	assert.Contains(t, res.stdout, "tripdesk "+version)
}

func TestUnknownCommand(t *testing.T) {
	res := runCLI(t, "", "book")
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, `unknown command "book"`)
}

func TestNoArgsPrintsHelp(t *testing.T) {
	res := runCLI(t, "")
	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stdout, "Usage:")
}

func TestPlanSuccess(t *testing.T) {
	isolate(t)
	backend := apitest.NewBackend(t)

	res := runCLI(t, "", "plan", "--url", backend.URL(), "--no-color",
		"--from", "NYC", "--to", "LAX", "--depart", "2024-06-01")

	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Trip Summary")
	assert.Contains(t, res.stdout, "NYC")
	assert.Contains(t, res.stdout, "LAX")
	assert.Contains(t, res.stdout, "USD 450.00")
	assert.NotContains(t, res.stdout, "Return Date")

	reqs := backend.TripRequests()
	require.Len(t, reqs, 1)
	assert.Nil(t, reqs[0].ReturnDate)
	assert.Nil(t, reqs[0].Budget)
	assert.Equal(t, "USD", reqs[0].Currency)
}

func TestPlanSendsOptionalFields(t *testing.T) {
	isolate(t)
	backend := apitest.NewBackend(t)

	res := runCLI(t, "", "plan", "--url", backend.URL(), "--no-color",
		"--from", "Paris", "--to", "Rome", "--depart", "2024-07-10",
		"--return", "2024-07-20", "--budget", "1234.5", "--currency", "EUR")

	require.Equal(t, exitOK, res.code, res.stderr)
	reqs := backend.TripRequests()
	require.Len(t, reqs, 1)
	require.NotNil(t, reqs[0].ReturnDate)
	assert.Equal(t, "2024-07-20", *reqs[0].ReturnDate)
	require.NotNil(t, reqs[0].Budget)
	assert.Equal(t, 1234.5, *reqs[0].Budget)
	assert.Equal(t, "EUR", reqs[0].Currency)
	assert.Contains(t, res.stdout, "Return Date")
}

func TestPlanBusinessFailure(t *testing.T) {
	isolate(t)
	backend := apitest.NewBackend(t)
	backend.OnPlanTrip(func(api.TripRequest) (int, any) {
		return http.StatusOK, api.TripResponse{Status: api.StatusError, Message: "No flights available"}
	})

	res := runCLI(t, "", "plan", "--url", backend.URL(), "--no-color",
		"--from", "NYC", "--to", "LAX", "--depart", "2024-06-01")

	assert.Equal(t, exitFailure, res.code)
	assert.Equal(t, 1, strings.Count(res.stderr, "Error: No flights available"))
	assert.NotContains(t, res.stdout, "Trip Summary")
}

func TestPlanTransportFailureUsesFallback(t *testing.T) {
	isolate(t)
	backend := apitest.NewBackend(t)
	backend.OnPlanTrip(func(api.TripRequest) (int, any) {
		return http.StatusInternalServerError, apitest.Raw("boom")
	})

	res := runCLI(t, "", "plan", "--url", backend.URL(), "--no-color",
		"--from", "NYC", "--to", "LAX", "--depart", "2024-06-01")

	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "Error: Failed to plan trip")
}

func TestPlanMissingFieldsSendsNothing(t *testing.T) {
	isolate(t)
	backend := apitest.NewBackend(t)

	res := runCLI(t, "", "plan", "--url", backend.URL(), "--from", "NYC")

	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "--from, --to and --depart are required")
	assert.Empty(t, backend.TripRequests())
}

func TestPlanInvalidBudget(t *testing.T) {
	isolate(t)
	backend := apitest.NewBackend(t)

	res := runCLI(t, "", "plan", "--url", backend.URL(), "--no-color",
		"--from", "NYC", "--to", "LAX", "--depart", "2024-06-01", "--budget", "lots")

	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "INVALID_INPUT")
	assert.Empty(t, backend.TripRequests())
}

func TestPlanEvents(t *testing.T) {
	isolate(t)
	backend := apitest.NewBackend(t)

	res := runCLI(t, "", "plan", "--url", backend.URL(), "--no-color", "--events",
		"--from", "NYC", "--to", "LAX", "--depart", "2024-06-01")

	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stderr, `"type":"trip.submitted"`)
	assert.Contains(t, res.stderr, `"type":"trip.planned"`)
}

func TestPlanUnknownFlag(t *testing.T) {
	isolate(t)
	res := runCLI(t, "", "plan", "--destination", "LAX")
	assert.Equal(t, exitFailure, res.code)
}

func TestConfigErrorsExitTwo(t *testing.T) {
	t.Run("bad env", func(t *testing.T) {
		isolate(t)
		t.Setenv("TRIPDESK_TIMEOUT", "soon")
		res := runCLI(t, "", "health")
		assert.Equal(t, exitConfig, res.code)
	})

	t.Run("missing file", func(t *testing.T) {
		isolate(t)
		res := runCLI(t, "", "health", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Equal(t, exitConfig, res.code)
		assert.Contains(t, res.stderr, "CONFIG_LOAD")
	})

	t.Run("bad url", func(t *testing.T) {
		isolate(t)
		res := runCLI(t, "", "health", "--url", "not a url")
		assert.Equal(t, exitConfig, res.code)
	})
}

func TestChatSession(t *testing.T) {
	logDir := isolate(t)
	backend := apitest.NewBackend(t)
	backend.OnChat(func(req api.ChatRequest) (int, any) {
		if req.Query == "Weather in Paris?" {
			return http.StatusOK, api.ChatResponse{Status: api.StatusSuccess, Content: "Sunny, 22°C", Agent: "WeatherAgent"}
		}
		return http.StatusOK, api.ChatResponse{Status: api.StatusError, Message: "Agent unavailable"}
	})

	res := runCLI(t, "Weather in Paris?\n   \nBook it\n:q\nnever sent\n",
		"chat", "--url", backend.URL(), "--no-color")

	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "assistant ›")
	assert.Contains(t, res.stdout, "you › Weather in Paris?")
	assert.Contains(t, res.stdout, "assistant › [WeatherAgent] Sunny, 22°C")
	assert.Contains(t, res.stdout, "error: Agent unavailable")

	reqs := backend.ChatRequests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "Weather in Paris?", reqs[0].Query)
	assert.Equal(t, "Book it", reqs[1].Query)
	assert.Equal(t, reqs[0].SessionID, reqs[1].SessionID)
	assert.True(t, strings.HasPrefix(reqs[0].SessionID, "chat-"))

	sessionLog := filepath.Join(logDir, "sessions", reqs[0].SessionID+".jsonl")
	assert.FileExists(t, sessionLog)
}

func TestChatEvents(t *testing.T) {
	isolate(t)
	backend := apitest.NewBackend(t)

	res := runCLI(t, "hello\n", "chat", "--url", backend.URL(), "--no-color", "--events")

	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "You said: hello")
	assert.Contains(t, res.stderr, `"type":"session.started"`)
	assert.Contains(t, res.stderr, `"type":"chat.sent"`)
	assert.Contains(t, res.stderr, `"type":"chat.replied"`)
}

func TestHealth(t *testing.T) {
	isolate(t)
	backend := apitest.NewBackend(t)

	res := runCLI(t, "", "health", "--url", backend.URL(), "--no-color")

	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "is healthy (version 1.0.0)")
}

func TestHealthUnreachable(t *testing.T) {
	isolate(t)
	backend := apitest.NewBackend(t)
	url := backend.URL()
	backend.Server.Close()

	res := runCLI(t, "", "health", "--url", url, "--no-color")

	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "TRANSPORT")
}

func TestErrorsShowsRecentFailures(t *testing.T) {
	isolate(t)
	backend := apitest.NewBackend(t)
	backend.OnPlanTrip(func(api.TripRequest) (int, any) {
		return http.StatusOK, api.TripResponse{Status: api.StatusError, Message: "No flights available"}
	})

	empty := runCLI(t, "", "errors", "--no-color")
	require.Equal(t, exitOK, empty.code, empty.stderr)
	assert.Contains(t, empty.stdout, "No errors logged.")

	plan := runCLI(t, "", "plan", "--url", backend.URL(), "--no-color",
		"--from", "NYC", "--to", "LAX", "--depart", "2024-06-01")
	require.Equal(t, exitFailure, plan.code)

	res := runCLI(t, "", "errors", "--no-color", "-n", "5")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "error: ")
	assert.Contains(t, res.stdout, "trip.failed [BUSINESS]")
}

func TestExitCodeForError(t *testing.T) {
	assert.Equal(t, exitOK, exitCodeForError(nil))
	assert.Equal(t, exitFailure, exitCodeForError(assert.AnError))
	assert.Equal(t, exitConfig, exitCodeForError(withExitCode(assert.AnError, exitConfig)))
	assert.Equal(t, exitFailure, exitCodeForError(errSilent))
	assert.Nil(t, withExitCode(nil, exitConfig))
}
