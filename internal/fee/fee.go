package fee

import (
	"time"

	"github.com/shopspring/decimal"

	"launcx-order-api/internal/utils/timeutil"
)

// Calculate returns the platform fee for a gross amount:
//
//	round(gross * pct / 100, 3 dp, half-up) + flat
//
// All inputs and the result are decimals; float money math is not allowed
// anywhere on this path.
func Calculate(gross, pct, flat decimal.Decimal) decimal.Decimal {
	// decimal.Round is half-up, which is what the fee law requires.
	pctAmt := gross.Mul(pct).Div(decimal.NewFromInt(100)).Round(3)
	return pctAmt.Add(flat)
}

// Rates is one weekday/weekend rate pair from a PartnerClient.
type Rates struct {
	Percent        decimal.Decimal
	Flat           decimal.Decimal
	WeekendPercent decimal.Decimal
	WeekendFlat    decimal.Decimal
}

// For picks the applicable pair for t and computes the fee.
func (r Rates) For(gross decimal.Decimal, t time.Time, overrides OverrideSet) decimal.Decimal {
	if IsJakartaWeekend(t, overrides) {
		return Calculate(gross, r.WeekendPercent, r.WeekendFlat)
	}
	return Calculate(gross, r.Percent, r.Flat)
}

// OverrideSet is the manually configured set of dates (Jakarta YYYY-MM-DD)
// treated as weekend regardless of weekday. Owned by whoever loads settings;
// passed explicitly, never read from package state.
type OverrideSet map[string]struct{}

// IsJakartaWeekend reports whether t falls on the business weekend. Friday
// and Saturday are weekend in this business, plus any override date.
func IsJakartaWeekend(t time.Time, overrides OverrideSet) bool {
	local := t.In(timeutil.JakartaLoc())
	if overrides != nil {
		if _, ok := overrides[local.Format("2006-01-02")]; ok {
			return true
		}
	}
	wd := local.Weekday()
	return wd == time.Friday || wd == time.Saturday
}
