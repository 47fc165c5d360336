// Package exchange serves display-only currency conversion rates. Rates never
// touch ledger arithmetic; every balance is held in credit units.
package exchange

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/chris/referral-investments/pkg/models"
	"github.com/shopspring/decimal"
)

// Provider returns the number of currency units per credit unit.
type Provider interface {
	RateOf(ctx context.Context, currencyCode string) (decimal.Decimal, error)
}

// Static is a Provider backed by a fixed table, typically loaded from config.
type Static struct {
	mu    sync.RWMutex
	rates map[string]decimal.Decimal
}

// NewStatic creates a Static provider. Codes are normalised to upper case and
// every rate must be positive.
func NewStatic(rates map[string]decimal.Decimal) (*Static, error) {
	s := &Static{rates: make(map[string]decimal.Decimal, len(rates))}
	for code, rate := range rates {
		if err := s.Set(code, rate); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ParseRates parses "CODE:rate" pairs such as "USD:1,EUR:0.92".
func ParseRates(pairs []string) (map[string]decimal.Decimal, error) {
	rates := make(map[string]decimal.Decimal, len(pairs))
	for _, pair := range pairs {
		code, raw, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			return nil, fmt.Errorf("exchange rate %q: expected CODE:rate", pair)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("exchange rate %q: %w", pair, err)
		}
		rates[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	return rates, nil
}

// Set replaces the rate for code.
func (s *Static) Set(code string, rate decimal.Decimal) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return fmt.Errorf("empty currency code: %w", models.ErrInvalidRequest)
	}
	if !rate.IsPositive() {
		return fmt.Errorf("rate for %s must be positive: %w", code, models.ErrInvalidAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[code] = rate
	return nil
}

// RateOf returns the rate for currencyCode, or models.ErrNotFound.
func (s *Static) RateOf(_ context.Context, currencyCode string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rate, ok := s.rates[strings.ToUpper(currencyCode)]
	if !ok {
		return decimal.Zero, fmt.Errorf("currency %s: %w", currencyCode, models.ErrNotFound)
	}
	return rate, nil
}

// Codes lists the known currency codes in order.
func (s *Static) Codes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	codes := make([]string, 0, len(s.rates))
	for code := range s.rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
