package tax

import (
	"math"
	"sort"

	"github.com/deductfinder/backend/internal/model"
)

// exchangeRates expresses every supported currency relative to USD = 1.0.
// Static rates: the engine is deterministic, live quoting is a caller
// concern.
var exchangeRates = map[model.Currency]float64{
	model.CurrencyUSD: 1.0,
	model.CurrencyEUR: 0.92,
	model.CurrencyGBP: 0.79,
	model.CurrencyCAD: 1.36,
	model.CurrencyAUD: 1.53,
	model.CurrencyJPY: 149.50,
	model.CurrencyCNY: 7.24,
	model.CurrencyINR: 83.12,
}

// Converter normalizes amounts between supported currencies using the
// static rate table. It performs no rounding; callers round only at
// presentation and export boundaries.
type Converter struct {
	rates map[model.Currency]float64
}

// NewConverter returns a converter over the built-in rate table.
func NewConverter() *Converter {
	return &Converter{rates: exchangeRates}
}

// Supported returns the supported currency codes in sorted order.
func (c *Converter) Supported() []model.Currency {
	out := make([]model.Currency, 0, len(c.rates))
	for code := range c.rates {
		out = append(out, code)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Supports reports whether a currency code exists in the rate table.
func (c *Converter) Supports(code model.Currency) bool {
	_, ok := c.rates[code]
	return ok
}

// Convert converts amount from one currency to another by dividing by the
// source rate and multiplying by the target rate. An unknown code is a
// configuration error, not a default.
func (c *Converter) Convert(amount float64, from, to model.Currency) (float64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return 0, newError(ErrInvalidAmount, "amount must be finite and non-negative, got %v", amount)
	}
	fromRate, ok := c.rates[from]
	if !ok {
		return 0, newError(ErrUnsupportedCurrency, "unsupported currency %q", from)
	}
	toRate, ok := c.rates[to]
	if !ok {
		return 0, newError(ErrUnsupportedCurrency, "unsupported currency %q", to)
	}
	return amount / fromRate * toRate, nil
}
