package api

import (
	"strings"

	tderrors "github.com/odvcencio/tripdesk/pkg/errors"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Endpoint paths on the travel-assistant backend.
const (
	PathPlanTrip = "/api/plan-trip"
	PathChat     = "/api/chat"
	PathHealth   = "/health"
)

// TripRequest is the body of a plan-trip call. Absent optional fields encode as null.
type TripRequest struct {
	DepartureCity string   `json:"departure_city"`
	ArrivalCity   string   `json:"arrival_city"`
	DepartureDate string   `json:"departure_date"`
	ReturnDate    *string  `json:"return_date"`
	Budget        *float64 `json:"budget"`
	Currency      string   `json:"currency"`
}

// TripData is the success payload of a plan-trip call.
type TripData struct {
	Request       TripRequest `json:"request"`
	Currency      string      `json:"currency"`
	EstimatedCost float64     `json:"estimated_cost"`
}

// TripResponse is the decoded plan-trip reply.
type TripResponse struct {
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
	Data    *TripData `json:"data,omitempty"`
}

// Succeeded reports whether the backend planned the trip and returned data.
func (r *TripResponse) Succeeded() bool {
	return r != nil && r.Status == StatusSuccess && r.Data != nil
}

// Err returns nil for a planned trip, otherwise a BUSINESS error whose user
// message is the reply's message.
func (r *TripResponse) Err() error {
	if r.Succeeded() {
		return nil
	}
	if r == nil {
		return businessError(PathPlanTrip, "", "")
	}
	return businessError(PathPlanTrip, r.Status, r.Message)
}

// ChatRequest is the body of a chat call.
type ChatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

// ChatResponse is the decoded chat reply.
//
// Older backends send the reply text as "response" and failures as "error";
// Normalize folds those into Content and Message.
type ChatResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Content string `json:"content,omitempty"`
	Agent   string `json:"agent,omitempty"`

	LegacyResponse string `json:"response,omitempty"`
	LegacyError    string `json:"error,omitempty"`
}

// Normalize fills Content and Message from the legacy fields when empty.
func (r *ChatResponse) Normalize() {
	if r == nil {
		return
	}
	if strings.TrimSpace(r.Content) == "" {
		r.Content = r.LegacyResponse
	}
	if strings.TrimSpace(r.Message) == "" {
		r.Message = r.LegacyError
	}
	r.LegacyResponse = ""
	r.LegacyError = ""
}

// Succeeded reports whether the assistant answered.
func (r *ChatResponse) Succeeded() bool {
	return r != nil && r.Status == StatusSuccess
}

// Err returns nil for an answered chat, otherwise a BUSINESS error whose user
// message is the reply's message.
func (r *ChatResponse) Err() error {
	if r.Succeeded() {
		return nil
	}
	if r == nil {
		return businessError(PathChat, "", "")
	}
	return businessError(PathChat, r.Status, r.Message)
}

// HealthStatus is the reply of the health probe.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// Healthy reports whether the backend declared itself healthy.
func (h *HealthStatus) Healthy() bool {
	return h != nil && (h.Status == "healthy" || h.Status == "ok" || h.Status == StatusSuccess)
}

func businessError(endpoint, status, message string) error {
	return tderrors.New(tderrors.ErrCodeBusiness, "backend reported failure").
		WithContext("endpoint", endpoint).
		WithContext("status", status).
		WithUserMessage(message)
}
