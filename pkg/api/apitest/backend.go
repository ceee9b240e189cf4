// Package apitest runs an in-process fake of the travel-assistant backend.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/odvcencio/tripdesk/pkg/api"
)

// Raw is written to the response verbatim instead of being JSON-encoded.
type Raw string

// TripHandler answers a plan-trip request with a status code and body.
type TripHandler func(api.TripRequest) (int, any)

// ChatHandler answers a chat request with a status code and body.
type ChatHandler func(api.ChatRequest) (int, any)

// Backend records every request it receives.
type Backend struct {
	Server *httptest.Server

	mu           sync.Mutex
	trip         TripHandler
	chat         ChatHandler
	tripRequests []api.TripRequest
	chatRequests []api.ChatRequest
	headers      []http.Header
}

// NewBackend starts a backend that plans every trip at 450 in the requested
// currency and echoes chat queries. The server closes with the test.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		trip: func(req api.TripRequest) (int, any) {
			return http.StatusOK, api.TripResponse{
				Status: api.StatusSuccess,
				Data: &api.TripData{
					Request:       req,
					Currency:      req.Currency,
					EstimatedCost: 450,
				},
			}
		},
		chat: func(req api.ChatRequest) (int, any) {
			return http.StatusOK, api.ChatResponse{
				Status:  api.StatusSuccess,
				Content: "You said: " + req.Query,
				Agent:   "ConversationAgent",
			}
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post(api.PathPlanTrip, b.handlePlanTrip)
	r.Post(api.PathChat, b.handleChat)
	r.Get(api.PathHealth, func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		writeBody(w, http.StatusOK, api.HealthStatus{Status: "healthy", Version: "1.0.0"})
	})

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the backend root.
func (b *Backend) URL() string {
	return b.Server.URL
}

// OnPlanTrip replaces the plan-trip handler.
func (b *Backend) OnPlanTrip(h TripHandler) {
	b.mu.Lock()
	b.trip = h
	b.mu.Unlock()
}

// OnChat replaces the chat handler.
func (b *Backend) OnChat(h ChatHandler) {
	b.mu.Lock()
	b.chat = h
	b.mu.Unlock()
}

// TripRequests returns the decoded plan-trip bodies received so far.
func (b *Backend) TripRequests() []api.TripRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]api.TripRequest(nil), b.tripRequests...)
}

// ChatRequests returns the decoded chat bodies received so far.
func (b *Backend) ChatRequests() []api.ChatRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]api.ChatRequest(nil), b.chatRequests...)
}

// Headers returns the headers of every request, in arrival order.
func (b *Backend) Headers() []http.Header {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]http.Header(nil), b.headers...)
}

func (b *Backend) record(r *http.Request) {
	b.mu.Lock()
	b.headers = append(b.headers, r.Header.Clone())
	b.mu.Unlock()
}

func (b *Backend) handlePlanTrip(w http.ResponseWriter, r *http.Request) {
	b.record(r)
	var req api.TripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBody(w, http.StatusBadRequest, map[string]string{"status": api.StatusError, "message": "invalid JSON"})
		return
	}
	b.mu.Lock()
	b.tripRequests = append(b.tripRequests, req)
	h := b.trip
	b.mu.Unlock()

	status, body := h(req)
	writeBody(w, status, body)
}

func (b *Backend) handleChat(w http.ResponseWriter, r *http.Request) {
	b.record(r)
	var req api.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBody(w, http.StatusBadRequest, map[string]string{"status": api.StatusError, "message": "invalid JSON"})
		return
	}
	b.mu.Lock()
	b.chatRequests = append(b.chatRequests, req)
	h := b.chat
	b.mu.Unlock()

	status, body := h(req)
	writeBody(w, status, body)
}

func writeBody(w http.ResponseWriter, status int, body any) {
	if raw, ok := body.(Raw); ok {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(raw))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
