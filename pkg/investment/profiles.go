// Package investment owns the investment lifecycle: profile bands, lock-in,
// activation, maturity and withdrawal.
package investment

import (
	"fmt"
	"io"
	"sort"

	"github.com/chris/referral-investments/pkg/models"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// SupportedLockIns lists every lock-in period, in months, a profile may offer.
var SupportedLockIns = []int{1, 3, 6, 12}

// Band is the return range for one profile and lock-in period.
type Band struct {
	Min decimal.Decimal `yaml:"min"`
	Max decimal.Decimal `yaml:"max"`
}

// Contains reports whether rate lies within the band, bounds included.
func (b Band) Contains(rate decimal.Decimal) bool {
	return rate.GreaterThanOrEqual(b.Min) && rate.LessThanOrEqual(b.Max)
}

// Profile is one investment tier.
type Profile struct {
	Name      models.InvestmentProfile `yaml:"name"`
	MinAmount decimal.Decimal          `yaml:"min_amount"`
	// Bands is keyed by lock-in months.
	Bands map[int]Band `yaml:"bands"`
}

// Catalog is the ordered set of profiles. The upper bound of a profile's
// amount range is the next profile's minimum; the top profile is unbounded.
type Catalog struct {
	profiles []Profile
}

// DefaultCatalog returns the reference profile table.
func DefaultCatalog() *Catalog {
	band := func(min, max string) Band {
		return Band{Min: decimal.RequireFromString(min), Max: decimal.RequireFromString(max)}
	}
	c, err := NewCatalog([]Profile{
		{
			Name:      models.BRONZE,
			MinAmount: decimal.NewFromInt(100),
			Bands:     map[int]Band{1: band("0.01", "0.02"), 3: band("0.03", "0.05"), 6: band("0.06", "0.09")},
		},
		{
			Name:      models.SILVER,
			MinAmount: decimal.NewFromInt(5000),
			Bands:     map[int]Band{1: band("0.015", "0.025"), 3: band("0.04", "0.06"), 6: band("0.07", "0.10"), 12: band("0.12", "0.16")},
		},
		{
			Name:      models.GOLD,
			MinAmount: decimal.NewFromInt(25000),
			Bands:     map[int]Band{3: band("0.05", "0.07"), 6: band("0.08", "0.11"), 12: band("0.15", "0.20")},
		},
		{
			Name:      models.DIAMOND,
			MinAmount: decimal.NewFromInt(100000),
			Bands:     map[int]Band{6: band("0.10", "0.13"), 12: band("0.18", "0.24")},
		},
	})
	if err != nil {
		panic(err)
	}
	return c
}

// NewCatalog validates profiles and orders them by minimum amount.
func NewCatalog(profiles []Profile) (*Catalog, error) {
	if len(profiles) == 0 {
		return nil, fmt.Errorf("profile catalog is empty")
	}
	sorted := append([]Profile(nil), profiles...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinAmount.LessThan(sorted[j].MinAmount)
	})

	seen := make(map[models.InvestmentProfile]bool)
	for i, p := range sorted {
		if seen[p.Name] {
			return nil, fmt.Errorf("profile %s defined twice", p.Name)
		}
		seen[p.Name] = true
		if !p.MinAmount.IsPositive() {
			return nil, fmt.Errorf("profile %s: minimum amount must be positive", p.Name)
		}
		if i > 0 && p.MinAmount.Equal(sorted[i-1].MinAmount) {
			return nil, fmt.Errorf("profiles %s and %s share a minimum amount", sorted[i-1].Name, p.Name)
		}
		if len(p.Bands) == 0 {
			return nil, fmt.Errorf("profile %s offers no lock-in period", p.Name)
		}
		for months, b := range p.Bands {
			if !supportedLockIn(months) {
				return nil, fmt.Errorf("profile %s: lock-in of %d months: %w", p.Name, months, models.ErrInvalidLockIn)
			}
			if b.Min.IsNegative() || b.Min.GreaterThan(b.Max) {
				return nil, fmt.Errorf("profile %s: band %s..%s for %d months is inverted", p.Name, b.Min, b.Max, months)
			}
		}
	}
	return &Catalog{profiles: sorted}, nil
}

// LoadCatalog reads a YAML profile table of the form:
//
//	profiles:
//	  - name: BRONZE
//	    min_amount: 100
//	    bands:
//	      1: {min: 0.01, max: 0.02}
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var doc struct {
		Profiles []Profile `yaml:"profiles"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode profile catalog: %w", err)
	}
	return NewCatalog(doc.Profiles)
}

func supportedLockIn(months int) bool {
	for _, m := range SupportedLockIns {
		if m == months {
			return true
		}
	}
	return false
}

// Profiles returns the profiles in ascending order.
func (c *Catalog) Profiles() []Profile {
	return append([]Profile(nil), c.profiles...)
}

// Band validates amount and lock-in for a profile and returns the return band.
func (c *Catalog) Band(profile models.InvestmentProfile, amount decimal.Decimal, lockInMonths int) (Band, error) {
	for i, p := range c.profiles {
		if p.Name != profile {
			continue
		}
		if amount.LessThan(p.MinAmount) {
			return Band{}, fmt.Errorf("%s requires at least %s: %w", profile, p.MinAmount, models.ErrAmountOutOfRange)
		}
		if i+1 < len(c.profiles) && !amount.LessThan(c.profiles[i+1].MinAmount) {
			return Band{}, fmt.Errorf("%s accepts less than %s: %w", profile, c.profiles[i+1].MinAmount, models.ErrAmountOutOfRange)
		}
		b, ok := p.Bands[lockInMonths]
		if !ok {
			return Band{}, fmt.Errorf("%s does not offer %d months: %w", profile, lockInMonths, models.ErrInvalidLockIn)
		}
		return b, nil
	}
	return Band{}, fmt.Errorf("profile %q: %w", profile, models.ErrUnknownProfile)
}
