// Package currency maintains a locally simulated foreign-exchange board.
//
// Rates start from a fixed USD-relative table and drift on a small bounded
// random walk each time Advance is called. Like the weather simulation this
// is decorative data: no real provider is consulted and the core never reads
// these values.
package currency

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
)

// Trend marks which way a rate moved on the last advance.
type Trend int

const (
	TrendNeutral Trend = iota
	TrendUp
	TrendDown
)

// String returns the display label for a trend.
func (t Trend) String() string {
	switch t {
	case TrendUp:
		return "up"
	case TrendDown:
		return "down"
	default:
		return "neutral"
	}
}

// baseRates is the starting table, quoted as units per 1 USD.
var baseRates = map[string]float64{
	"USD": 1.0,
	"EUR": 0.92,
	"GBP": 0.79,
	"JPY": 148.0,
	"AZN": 1.70,
	"TRY": 34.0,
	"CNY": 7.10,
	"KRW": 1330.0,
	"INR": 83.5,
	"AED": 3.67,
	"THB": 34.5,
	"SGD": 1.34,
	"AUD": 1.49,
	"NZD": 1.64,
	"CAD": 1.36,
	"MXN": 18.2,
	"BRL": 5.55,
	"ZAR": 17.9,
	"EGP": 48.5,
	"RUB": 92.0,
}

// Market is a drifting snapshot of the rate table. Safe for concurrent use.
type Market struct {
	mu     sync.RWMutex
	rates  map[string]float64
	trends map[string]Trend
}

// NewMarket returns a market seeded with the base rate table.
func NewMarket() *Market {
	rates := make(map[string]float64, len(baseRates))
	for code, rate := range baseRates {
		rates[code] = rate
	}
	return &Market{rates: rates, trends: make(map[string]Trend, len(baseRates))}
}

// Advance applies one random-walk step of at most +/-0.1% to every non-USD
// rate and records the direction each one moved.
func (m *Market) Advance() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for code, rate := range m.rates {
		if code == "USD" {
			continue
		}
		change := (rand.Float64() - 0.5) * 0.002
		next := rate * (1 + change)
		switch {
		case next > rate:
			m.trends[code] = TrendUp
		case next < rate:
			m.trends[code] = TrendDown
		default:
			m.trends[code] = TrendNeutral
		}
		m.rates[code] = next
	}
}

// Rate returns the current USD-relative rate for a currency code.
func (m *Market) Rate(code string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rate, ok := m.rates[code]
	if !ok {
		return 0, fmt.Errorf("unknown currency %q", code)
	}
	return rate, nil
}

// Trend returns the last movement direction for a currency code.
func (m *Market) Trend(code string) Trend {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trends[code]
}

// Convert translates an amount between two currencies via USD.
func (m *Market) Convert(amount float64, from, to string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fromRate, ok := m.rates[from]
	if !ok {
		return 0, fmt.Errorf("unknown currency %q", from)
	}
	toRate, ok := m.rates[to]
	if !ok {
		return 0, fmt.Errorf("unknown currency %q", to)
	}
	return amount / fromRate * toRate, nil
}

// Codes lists every quoted currency, sorted.
func (m *Market) Codes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	codes := make([]string, 0, len(m.rates))
	for code := range m.rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
