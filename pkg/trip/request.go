package trip

import (
	"math"
	"strconv"
	"strings"

	"github.com/odvcencio/tripdesk/pkg/api"
	tderrors "github.com/odvcencio/tripdesk/pkg/errors"
)

// FormValues is the raw content of the trip form. Every field is text as typed.
type FormValues struct {
	DepartureCity string
	ArrivalCity   string
	DepartureDate string
	ReturnDate    string
	Budget        string
	Currency      string
}

// Ready reports whether the required fields are filled. Front ends keep the
// submit affordance disabled until it is.
func (v FormValues) Ready() bool {
	return len(v.missing()) == 0
}

func (v FormValues) missing() []string {
	var out []string
	if strings.TrimSpace(v.DepartureCity) == "" {
		out = append(out, "departure_city")
	}
	if strings.TrimSpace(v.ArrivalCity) == "" {
		out = append(out, "arrival_city")
	}
	if strings.TrimSpace(v.DepartureDate) == "" {
		out = append(out, "departure_date")
	}
	return out
}

// Request builds the wire request. Blank optional fields become absent. The
// currency is sent as selected; an empty selection falls back to defaultCurrency.
func (v FormValues) Request(defaultCurrency string) (api.TripRequest, error) {
	if missing := v.missing(); len(missing) > 0 {
		return api.TripRequest{}, tderrors.New(tderrors.ErrCodeInvalidInput, "required fields are empty").
			WithContext("fields", strings.Join(missing, ","))
	}

	req := api.TripRequest{
		DepartureCity: strings.TrimSpace(v.DepartureCity),
		ArrivalCity:   strings.TrimSpace(v.ArrivalCity),
		DepartureDate: strings.TrimSpace(v.DepartureDate),
		Currency:      v.Currency,
	}
	if strings.TrimSpace(req.Currency) == "" {
		req.Currency = defaultCurrency
	}
	if rd := strings.TrimSpace(v.ReturnDate); rd != "" {
		req.ReturnDate = &rd
	}
	if raw := strings.TrimSpace(v.Budget); raw != "" {
		budget, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(budget) || math.IsInf(budget, 0) || budget < 0 {
			return api.TripRequest{}, tderrors.New(tderrors.ErrCodeInvalidInput, "budget must be a non-negative number").
				WithContext("budget", raw)
		}
		req.Budget = &budget
	}
	return req, nil
}
