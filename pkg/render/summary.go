// Package render maps backend payloads to view-ready structures.
package render

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/odvcencio/tripdesk/pkg/api"
)

// Summary row labels, in display order.
const (
	LabelFrom          = "From"
	LabelTo            = "To"
	LabelDepartureDate = "Departure Date"
	LabelReturnDate    = "Return Date"
	LabelEstimatedCost = "Estimated Cost"
)

// SummaryRow is one label/value line of the trip summary.
type SummaryRow struct {
	Label string
	Value string
}

// TripSummary returns the rows for a successful plan-trip reply: From, To,
// Departure Date, Return Date when the echo carries one, Estimated Cost.
// It returns nil when resp holds no plan.
func TripSummary(resp *api.TripResponse) []SummaryRow {
	if !resp.Succeeded() {
		return nil
	}
	req := resp.Data.Request
	rows := []SummaryRow{
		{Label: LabelFrom, Value: req.DepartureCity},
		{Label: LabelTo, Value: req.ArrivalCity},
		{Label: LabelDepartureDate, Value: req.DepartureDate},
	}
	if req.ReturnDate != nil && strings.TrimSpace(*req.ReturnDate) != "" {
		rows = append(rows, SummaryRow{Label: LabelReturnDate, Value: *req.ReturnDate})
	}
	rows = append(rows, SummaryRow{
		Label: LabelEstimatedCost,
		Value: FormatCost(resp.Data.Currency, resp.Data.EstimatedCost),
	})
	return rows
}

// FormatCost renders an amount with exactly two decimals after its currency.
func FormatCost(currency string, amount float64) string {
	return currency + " " + fixed2(amount)
}

// fixed2 rounds the exact binary value of v to two decimals, ties away from
// zero: 0.125 gives "0.13", while 1.005 (stored as 1.00499...) gives "1.00".
func fixed2(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}

	scaled := new(big.Float).SetPrec(128).SetFloat64(math.Abs(v))
	scaled.Mul(scaled, big.NewFloat(100))
	cents, _ := scaled.Int(nil)
	frac := new(big.Float).SetPrec(128).Sub(scaled, new(big.Float).SetInt(cents))
	if frac.Cmp(big.NewFloat(0.5)) >= 0 {
		cents.Add(cents, big.NewInt(1))
	}

	digits := cents.String()
	if len(digits) < 3 {
		digits = strings.Repeat("0", 3-len(digits)) + digits
	}
	out := digits[:len(digits)-2] + "." + digits[len(digits)-2:]
	if v < 0 {
		out = "-" + out
	}
	return out
}
