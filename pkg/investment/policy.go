package investment

import (
	"math/rand/v2"
	"sync"

	"github.com/chris/referral-investments/pkg/models"
	"github.com/shopspring/decimal"
)

// ReturnPolicy chooses the realized return rate of a maturing investment. The
// ledger refuses any rate outside the investment's band.
type ReturnPolicy interface {
	RealizedRate(inv models.Investment) decimal.Decimal
}

// FixedPolicy pays a configured rate per profile, falling back to the band
// minimum for profiles it does not list.
type FixedPolicy struct {
	Rates map[models.InvestmentProfile]decimal.Decimal
}

func (p FixedPolicy) RealizedRate(inv models.Investment) decimal.Decimal {
	if rate, ok := p.Rates[inv.Profile]; ok {
		return rate
	}
	return inv.MinReturnRate
}

// BandPolicy draws a rate uniformly within the band, rounded down to
// Precision decimal places.
type BandPolicy struct {
	Precision int32

	mu  sync.Mutex
	rng *rand.Rand
}

// NewBandPolicy creates a BandPolicy seeded from seed.
func NewBandPolicy(seed uint64) *BandPolicy {
	return &BandPolicy{
		Precision: 4,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (p *BandPolicy) RealizedRate(inv models.Investment) decimal.Decimal {
	p.mu.Lock()
	u := p.rng.Float64()
	p.mu.Unlock()

	spread := inv.MaxReturnRate.Sub(inv.MinReturnRate)
	rate := inv.MinReturnRate.Add(spread.Mul(decimal.NewFromFloat(u))).RoundFloor(p.Precision)
	if rate.LessThan(inv.MinReturnRate) {
		return inv.MinReturnRate
	}
	return rate
}
