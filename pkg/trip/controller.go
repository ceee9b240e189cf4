// Package trip drives the trip-planning form: one submission, one request,
// and a guaranteed restore of the submit affordance.
package trip

import (
	"context"
	"strings"
	"sync"

	"github.com/odvcencio/tripdesk/pkg/config"
	tderrors "github.com/odvcencio/tripdesk/pkg/errors"
	"github.com/odvcencio/tripdesk/pkg/logging"
	"github.com/odvcencio/tripdesk/pkg/render"
	"github.com/odvcencio/tripdesk/pkg/telemetry"
)

// SubmitControl is the form's submit button.
type SubmitControl interface {
	Label() string
	SetLabel(label string)
	SetEnabled(enabled bool)
}

// SummaryView receives the rendered summary and reveals itself.
type SummaryView interface {
	ShowSummary(rows []render.SummaryRow)
}

// Notifier posts a user-facing notice without blocking.
type Notifier interface {
	Notify(message string)
}

// Options tunes a Controller. Zero values take the config defaults.
type Options struct {
	DefaultCurrency string
	BusyLabel       string
	FailureFallback string
	Logger          *logging.Logger
	Hub             *telemetry.Hub
}

// Controller owns the trip form lifecycle.
type Controller struct {
	planner  Planner
	submit   SubmitControl
	summary  SummaryView
	notifier Notifier
	opts     Options

	mu        sync.Mutex
	inflight  int
	idleLabel string
}

// NewController wires a controller to its views.
func NewController(planner Planner, submit SubmitControl, summary SummaryView, notifier Notifier, opts Options) *Controller {
	if strings.TrimSpace(opts.DefaultCurrency) == "" {
		opts.DefaultCurrency = config.DefaultCurrency
	}
	if strings.TrimSpace(opts.BusyLabel) == "" {
		opts.BusyLabel = config.DefaultBusyLabel
	}
	if strings.TrimSpace(opts.FailureFallback) == "" {
		opts.FailureFallback = config.DefaultTripFallback
	}
	return &Controller{
		planner:  planner,
		submit:   submit,
		summary:  summary,
		notifier: notifier,
		opts:     opts,
	}
}

// SubmitTrip plans one trip. It returns an error only when values are not
// Ready or the budget is not a number; in that case nothing is sent and the
// views are untouched. Request failures are surfaced as exactly one notice.
func (c *Controller) SubmitTrip(ctx context.Context, values FormValues) error {
	req, err := values.Request(c.opts.DefaultCurrency)
	if err != nil {
		_ = c.opts.Logger.Warn(logging.CategoryTrip, "trip.invalid", err.Error(), nil)
		return err
	}

	c.begin()
	defer c.end()

	c.opts.Hub.Publish(telemetry.Event{
		Type: telemetry.EventTripSubmitted,
		Data: map[string]any{"from": req.DepartureCity, "to": req.ArrivalCity, "currency": req.Currency},
	})
	_ = c.opts.Logger.Info(logging.CategoryTrip, "trip.submitted", "", map[string]any{
		"from":     req.DepartureCity,
		"to":       req.ArrivalCity,
		"depart":   req.DepartureDate,
		"currency": req.Currency,
	})

	resp, err := c.planner.PlanTrip(ctx, req)
	if err == nil {
		err = resp.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err == nil {
		c.summary.ShowSummary(render.TripSummary(resp))
		c.opts.Hub.Publish(telemetry.Event{
			Type: telemetry.EventTripPlanned,
			Data: map[string]any{"currency": resp.Data.Currency, "estimated_cost": resp.Data.EstimatedCost},
		})
		_ = c.opts.Logger.Info(logging.CategoryTrip, "trip.planned", "", map[string]any{
			"currency":       resp.Data.Currency,
			"estimated_cost": resp.Data.EstimatedCost,
		})
		return nil
	}

	// Transport and decode errors carry no user message, so they show the fallback.
	msg := tderrors.UserMessage(err, c.opts.FailureFallback)
	c.notifier.Notify("Error: " + msg)
	c.opts.Hub.Publish(telemetry.Event{Type: telemetry.EventTripFailed, Message: msg})
	_ = c.opts.Logger.Error(logging.CategoryTrip, "trip.failed", err.Error(), map[string]any{
		"code": string(tderrors.GetCode(err)),
	})
	return nil
}

// begin disables the control for the first in-flight submission and remembers
// the label to restore.
func (c *Controller) begin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight == 0 {
		c.idleLabel = c.submit.Label()
		c.submit.SetEnabled(false)
		c.submit.SetLabel(c.opts.BusyLabel)
	}
	c.inflight++
}

// end restores the control once no submission is in flight.
func (c *Controller) end() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	if c.inflight == 0 {
		c.submit.SetLabel(c.idleLabel)
		c.submit.SetEnabled(true)
	}
}
