package trip

//go:generate mockgen -source=planner.go -destination=mock_planner_test.go -package=trip

import (
	"context"

	"github.com/odvcencio/tripdesk/pkg/api"
)

// Planner issues the plan-trip request. *api.Client satisfies it.
type Planner interface {
	PlanTrip(ctx context.Context, req api.TripRequest) (*api.TripResponse, error)
}
