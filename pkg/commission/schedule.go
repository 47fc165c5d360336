// Package commission fans commission out to the ancestors of an investor and
// repairs credits whose wallet payment failed.
package commission

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Schedule holds the commission rate per level; index 0 is level 1, the
// direct referrer. Rates past the schedule's depth are zero.
type Schedule struct {
	rates []decimal.Decimal
}

// DefaultSchedule returns the reference 5% / 3% / 1% schedule.
func DefaultSchedule() Schedule {
	s, err := NewSchedule(
		decimal.RequireFromString("0.05"),
		decimal.RequireFromString("0.03"),
		decimal.RequireFromString("0.01"),
	)
	if err != nil {
		panic(err)
	}
	return s
}

// NewSchedule validates that level 1 pays a positive rate and that rates never
// increase with distance.
func NewSchedule(rates ...decimal.Decimal) (Schedule, error) {
	if len(rates) == 0 {
		return Schedule{}, fmt.Errorf("commission schedule is empty")
	}
	if !rates[0].IsPositive() {
		return Schedule{}, fmt.Errorf("level 1 rate must be positive, got %s", rates[0])
	}
	for i := 1; i < len(rates); i++ {
		if rates[i].IsNegative() {
			return Schedule{}, fmt.Errorf("level %d rate is negative", i+1)
		}
		if rates[i].GreaterThan(rates[i-1]) {
			return Schedule{}, fmt.Errorf("level %d rate %s exceeds level %d rate %s", i+1, rates[i], i, rates[i-1])
		}
	}
	return Schedule{rates: append([]decimal.Decimal(nil), rates...)}, nil
}

// ParseSchedule builds a Schedule from decimal strings.
func ParseSchedule(rates []string) (Schedule, error) {
	parsed := make([]decimal.Decimal, 0, len(rates))
	for _, r := range rates {
		d, err := decimal.NewFromString(r)
		if err != nil {
			return Schedule{}, fmt.Errorf("invalid commission rate %q: %w", r, err)
		}
		parsed = append(parsed, d)
	}
	return NewSchedule(parsed...)
}

// Depth is the number of ancestor levels that earn commission.
func (s Schedule) Depth() int {
	return len(s.rates)
}

// Rate returns the rate for a 1-indexed level.
func (s Schedule) Rate(level int) decimal.Decimal {
	if level < 1 || level > len(s.rates) {
		return decimal.Zero
	}
	return s.rates[level-1]
}

// Total is the sum of every level's rate; no investment pays out more than
// amount times Total.
func (s Schedule) Total() decimal.Decimal {
	total := decimal.Zero
	for _, r := range s.rates {
		total = total.Add(r)
	}
	return total
}
