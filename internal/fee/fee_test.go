package fee

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCalculate(t *testing.T) {
	cases := []struct {
		gross, pct, flat, want string
	}{
		{"1000000", "1.05", "0", "10500"},
		{"1000000", "1.05", "1500", "12000"},
		{"10000", "0", "2500", "2500"},
		{"333", "1", "0", "3.33"},
		// half-up at the third decimal
		{"100", "0.0155", "0", "0.016"},
		{"100", "0.0154", "0", "0.015"},
	}
	for _, c := range cases {
		got := Calculate(dec(c.gross), dec(c.pct), dec(c.flat))
		if !got.Equal(dec(c.want)) {
			t.Errorf("Calculate(%s, %s%%, %s) = %s, want %s", c.gross, c.pct, c.flat, got, c.want)
		}
	}
}

func TestIsJakartaWeekend(t *testing.T) {
	// 2025-06-06 is a Friday, 2025-06-04 a Wednesday (Jakarta).
	jakarta := time.FixedZone("WIB", 7*3600)
	friday := time.Date(2025, 6, 6, 10, 0, 0, 0, jakarta)
	saturday := time.Date(2025, 6, 7, 10, 0, 0, 0, jakarta)
	sunday := time.Date(2025, 6, 8, 10, 0, 0, 0, jakarta)
	wednesday := time.Date(2025, 6, 4, 10, 0, 0, 0, jakarta)

	if !IsJakartaWeekend(friday, nil) {
		t.Error("friday should be weekend")
	}
	if !IsJakartaWeekend(saturday, nil) {
		t.Error("saturday should be weekend")
	}
	if IsJakartaWeekend(sunday, nil) {
		t.Error("sunday should not be weekend")
	}
	if IsJakartaWeekend(wednesday, nil) {
		t.Error("wednesday should not be weekend")
	}

	// A holiday override turns any weekday into weekend.
	tuesday := time.Date(2025, 6, 3, 10, 0, 0, 0, jakarta)
	overrides := OverrideSet{"2025-06-03": {}}
	if !IsJakartaWeekend(tuesday, overrides) {
		t.Error("overridden tuesday should be weekend")
	}
	if IsJakartaWeekend(wednesday, overrides) {
		t.Error("plain wednesday should stay weekday despite other overrides")
	}
}

func TestRatesFor(t *testing.T) {
	r := Rates{
		Percent:        dec("1"),
		Flat:           dec("100"),
		WeekendPercent: dec("2"),
		WeekendFlat:    dec("200"),
	}
	jakarta := time.FixedZone("WIB", 7*3600)
	wednesday := time.Date(2025, 6, 4, 10, 0, 0, 0, jakarta)
	friday := time.Date(2025, 6, 6, 10, 0, 0, 0, jakarta)

	if got := r.For(dec("10000"), wednesday, nil); !got.Equal(dec("200")) {
		t.Errorf("weekday fee = %s, want 200", got)
	}
	if got := r.For(dec("10000"), friday, nil); !got.Equal(dec("400")) {
		t.Errorf("weekend fee = %s, want 400", got)
	}
}
