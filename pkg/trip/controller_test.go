package trip

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/odvcencio/tripdesk/pkg/api"
	tderrors "github.com/odvcencio/tripdesk/pkg/errors"
	"github.com/odvcencio/tripdesk/pkg/logging"
	"github.com/odvcencio/tripdesk/pkg/render"
	"github.com/odvcencio/tripdesk/pkg/telemetry"
)

type fakeButton struct {
	mu      sync.Mutex
	label   string
	enabled bool
	history []string
}

func newFakeButton() *fakeButton {
	return &fakeButton{label: "Plan Trip", enabled: true}
}

func (b *fakeButton) Label() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.label
}

func (b *fakeButton) SetLabel(label string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.label = label
	b.history = append(b.history, "label:"+label)
}

func (b *fakeButton) SetEnabled(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled = enabled
	if enabled {
		b.history = append(b.history, "enabled")
	} else {
		b.history = append(b.history, "disabled")
	}
}

func (b *fakeButton) state() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.label, b.enabled
}

type fakeSummary struct {
	shown [][]render.SummaryRow
}

func (s *fakeSummary) ShowSummary(rows []render.SummaryRow) {
	s.shown = append(s.shown, rows)
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *fakeNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

type harness struct {
	planner  *MockPlanner
	button   *fakeButton
	summary  *fakeSummary
	notifier *fakeNotifier
	ctrl     *Controller
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{
		planner:  NewMockPlanner(gomock.NewController(t)),
		button:   newFakeButton(),
		summary:  &fakeSummary{},
		notifier: &fakeNotifier{},
	}
	h.ctrl = NewController(h.planner, h.button, h.summary, h.notifier, opts)
	return h
}

var nycToLax = FormValues{
	DepartureCity: "NYC",
	ArrivalCity:   "LAX",
	DepartureDate: "2024-06-01",
	Currency:      "USD",
}

func TestSubmitTripRendersSummary(t *testing.T) {
	h := newHarness(t, Options{})

	want := api.TripRequest{DepartureCity: "NYC", ArrivalCity: "LAX", DepartureDate: "2024-06-01", Currency: "USD"}
	h.planner.EXPECT().PlanTrip(gomock.Any(), want).Return(&api.TripResponse{
		Status: api.StatusSuccess,
		Data:   &api.TripData{Request: want, Currency: "USD", EstimatedCost: 450},
	}, nil)

	require.NoError(t, h.ctrl.SubmitTrip(context.Background(), nycToLax))

	require.Len(t, h.summary.shown, 1)
	rows := h.summary.shown[0]
	require.Len(t, rows, 4)
	for _, row := range rows {
		assert.NotEqual(t, render.LabelReturnDate, row.Label)
	}
	assert.Equal(t, render.SummaryRow{Label: render.LabelEstimatedCost, Value: "USD 450.00"}, rows[3])
	assert.Empty(t, h.notifier.messages)

	assert.Equal(t, []string{"disabled", "label:Planning...", "label:Plan Trip", "enabled"}, h.button.history)
}

func TestSubmitTripRestoresControlWhenPlannerFails(t *testing.T) {
	h := newHarness(t, Options{})

	h.planner.EXPECT().PlanTrip(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, api.TripRequest) (*api.TripResponse, error) {
			label, enabled := h.button.state()
			assert.False(t, enabled, "control must be disabled while the request is in flight")
			assert.Equal(t, "Planning...", label)
			return nil, tderrors.Wrap(errors.New("connection refused"), tderrors.ErrCodeTransport, "request failed")
		})

	require.NoError(t, h.ctrl.SubmitTrip(context.Background(), nycToLax))

	label, enabled := h.button.state()
	assert.True(t, enabled)
	assert.Equal(t, "Plan Trip", label)
	assert.Equal(t, []string{"Error: Failed to plan trip"}, h.notifier.messages)
	assert.Empty(t, h.summary.shown)
}

func TestSubmitTripBusinessFailure(t *testing.T) {
	tests := []struct {
		name string
		resp *api.TripResponse
		want string
	}{
		{name: "with message", resp: &api.TripResponse{Status: api.StatusError, Message: "No flights available"}, want: "Error: No flights available"},
		{name: "without message", resp: &api.TripResponse{Status: api.StatusError}, want: "Error: Failed to plan trip"},
		{name: "success without data", resp: &api.TripResponse{Status: api.StatusSuccess}, want: "Error: Failed to plan trip"},
		{name: "unknown status", resp: &api.TripResponse{Status: "pending", Message: "queued"}, want: "Error: queued"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, Options{})
			h.planner.EXPECT().PlanTrip(gomock.Any(), gomock.Any()).Return(tt.resp, nil)

			require.NoError(t, h.ctrl.SubmitTrip(context.Background(), nycToLax))

			assert.Equal(t, []string{tt.want}, h.notifier.messages)
			assert.Empty(t, h.summary.shown)
			_, enabled := h.button.state()
			assert.True(t, enabled)
		})
	}
}

func TestSubmitTripCustomFallbackAndDefaultCurrency(t *testing.T) {
	h := newHarness(t, Options{DefaultCurrency: "EUR", FailureFallback: "Trip planner unavailable", BusyLabel: "Working"})

	h.planner.EXPECT().PlanTrip(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req api.TripRequest) (*api.TripResponse, error) {
			assert.Equal(t, "EUR", req.Currency)
			label, _ := h.button.state()
			assert.Equal(t, "Working", label)
			return nil, errors.New("boom")
		})

	values := nycToLax
	values.Currency = ""
	require.NoError(t, h.ctrl.SubmitTrip(context.Background(), values))
	assert.Equal(t, []string{"Error: Trip planner unavailable"}, h.notifier.messages)
}

func TestSubmitTripInvalidInputSendsNothing(t *testing.T) {
	h := newHarness(t, Options{})

	err := h.ctrl.SubmitTrip(context.Background(), FormValues{DepartureCity: "NYC"})
	require.Error(t, err)
	assert.True(t, tderrors.IsCode(err, tderrors.ErrCodeInvalidInput))
	assert.Empty(t, h.button.history)
	assert.Empty(t, h.notifier.messages)
}

func TestSubmitTripPublishesEvents(t *testing.T) {
	hub := telemetry.NewHub()
	defer hub.Close()
	events, unsub := hub.Subscribe()
	defer unsub()

	h := newHarness(t, Options{Hub: hub})
	h.planner.EXPECT().PlanTrip(gomock.Any(), gomock.Any()).Return(&api.TripResponse{Status: api.StatusError, Message: "No hotels"}, nil)

	require.NoError(t, h.ctrl.SubmitTrip(context.Background(), nycToLax))

	first := <-events
	second := <-events
	assert.Equal(t, telemetry.EventTripSubmitted, first.Type)
	assert.Equal(t, telemetry.EventTripFailed, second.Type)
	assert.Equal(t, "No hotels", second.Message)
}

func TestSubmitTripLogsFailure(t *testing.T) {
	dir := t.TempDir()
	logger, err := logging.NewLogger(dir, "trip-test")
	require.NoError(t, err)
	defer logger.Close()

	h := newHarness(t, Options{Logger: logger})
	h.planner.EXPECT().PlanTrip(gomock.Any(), gomock.Any()).Return(nil, tderrors.New(tderrors.ErrCodeDecode, "response is not JSON"))

	require.NoError(t, h.ctrl.SubmitTrip(context.Background(), nycToLax))

	events, err := logging.ReadRecentEvents(filepath.Join(dir, "errors.jsonl"), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "trip.failed", events[0].EventType)
	assert.Equal(t, "DECODE", events[0].Details["code"])
}

func TestSubmitTripLogsBusinessFailure(t *testing.T) {
	dir := t.TempDir()
	logger, err := logging.NewLogger(dir, "trip-business")
	require.NoError(t, err)
	defer logger.Close()

	h := newHarness(t, Options{Logger: logger})
	h.planner.EXPECT().PlanTrip(gomock.Any(), gomock.Any()).
		Return(&api.TripResponse{Status: api.StatusError, Message: "No flights available"}, nil)

	require.NoError(t, h.ctrl.SubmitTrip(context.Background(), nycToLax))

	events, err := logging.ReadRecentEvents(filepath.Join(dir, "errors.jsonl"), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "BUSINESS", events[0].Details["code"])
	assert.Contains(t, events[0].Message, "status: error")
}

func TestOverlappingSubmissionsRestoreOriginalLabel(t *testing.T) {
	h := newHarness(t, Options{})

	started := make(chan struct{}, 2)
	release := make(chan struct{})
	h.planner.EXPECT().PlanTrip(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(
		func(context.Context, api.TripRequest) (*api.TripResponse, error) {
			started <- struct{}{}
			<-release
			return nil, errors.New("down")
		})

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.ctrl.SubmitTrip(context.Background(), nycToLax)
		}()
	}
	<-started
	<-started

	label, enabled := h.button.state()
	assert.Equal(t, "Planning...", label)
	assert.False(t, enabled)

	close(release)
	wg.Wait()

	label, enabled = h.button.state()
	assert.Equal(t, "Plan Trip", label)
	assert.True(t, enabled)
	assert.Len(t, h.notifier.messages, 2, "one notice per failed submission")
}
