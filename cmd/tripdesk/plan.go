package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/odvcencio/tripdesk/pkg/terminal"
	"github.com/odvcencio/tripdesk/pkg/trip"
	"github.com/odvcencio/tripdesk/pkg/ui/toast"
)

const submitLabel = "Plan Trip"

var errMissingTripFields = errors.New("--from, --to and --depart are required")

type planFlags struct {
	common commonFlags
	form   trip.FormValues
}

func parsePlanFlags(args []string, std streams) (planFlags, bool, error) {
	var pf planFlags
	fs := newFlagSet("plan", std.err)
	pf.common.register(fs)
	fs.StringVar(&pf.form.DepartureCity, "from", "", "Departure city (required)")
	fs.StringVar(&pf.form.ArrivalCity, "to", "", "Arrival city (required)")
	fs.StringVar(&pf.form.DepartureDate, "depart", "", "Departure date, YYYY-MM-DD (required)")
	fs.StringVar(&pf.form.ReturnDate, "return", "", "Return date, YYYY-MM-DD")
	fs.StringVar(&pf.form.Budget, "budget", "", "Budget amount")
	fs.StringVar(&pf.form.Currency, "currency", "", "Currency code (default: trip.default_currency)")
	help, err := parseFlags(fs, args)
	return pf, help, err
}

func runPlanCommand(args []string, std streams) error {
	pf, help, err := parsePlanFlags(args, std)
	if err != nil || help {
		return err
	}
	// The submit affordance stays disabled until the form is complete.
	if !pf.form.Ready() {
		return withExitCode(errMissingTripFields, exitFailure)
	}

	a, err := newApp(pf.common, "plan", std)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var g errgroup.Group
	if pf.common.events {
		g.Go(streamEvents(a.hub, std.err))
	}

	notices := toast.NewManager(toast.DefaultMaxNotice)
	defer notices.Close()
	terminal.AttachNotices(a.errOut, notices)

	submit := terminal.NewButton(a.out, submitLabel)
	summary := terminal.NewSummaryPanel(a.out)
	controller := trip.NewController(a.client, submit, summary, notices, trip.Options{
		DefaultCurrency: a.cfg.Trip.DefaultCurrency,
		BusyLabel:       a.cfg.Trip.BusyLabel,
		FailureFallback: a.cfg.Trip.FailureFallback,
		Logger:          a.logger,
		Hub:             a.hub,
	})

	submitErr := controller.SubmitTrip(ctx, pf.form)

	a.hub.Close()
	if err := g.Wait(); err != nil {
		a.errOut.Warn("event stream: %v", err)
	}

	if submitErr != nil {
		return withExitCode(submitErr, exitFailure)
	}
	if summary.Rows() == nil {
		// The notice printer already showed the failure.
		return errSilent
	}
	return nil
}
