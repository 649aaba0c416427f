package tax

import (
	"math"
	"testing"

	"github.com/deductfinder/backend/internal/model"
)

func TestConvertIdentity(t *testing.T) {
	conv := NewConverter()
	for _, code := range conv.Supported() {
		got, err := conv.Convert(123.45, code, code)
		if err != nil {
			t.Fatalf("Convert(%s -> %s): %v", code, code, err)
		}
		if got != 123.45 {
			t.Errorf("Convert(%s -> %s) = %v, want 123.45", code, code, got)
		}
	}
}

func TestConvertKnownRates(t *testing.T) {
	conv := NewConverter()
	tests := []struct {
		name   string
		amount float64
		from   model.Currency
		to     model.Currency
		want   float64
	}{
		{"USD to EUR", 100, model.CurrencyUSD, model.CurrencyEUR, 92},
		{"EUR to USD", 92, model.CurrencyEUR, model.CurrencyUSD, 100},
		{"USD to AUD", 100, model.CurrencyUSD, model.CurrencyAUD, 153},
		{"GBP to USD", 79, model.CurrencyGBP, model.CurrencyUSD, 100},
		{"zero amount", 0, model.CurrencyJPY, model.CurrencyINR, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := conv.Convert(tt.amount, tt.from, tt.to)
			if err != nil {
				t.Fatalf("Convert: %v", err)
			}
			if !almostEqual(got, tt.want) {
				t.Errorf("Convert(%v, %s, %s) = %v, want %v", tt.amount, tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestConvertRoundTrip(t *testing.T) {
	conv := NewConverter()
	codes := conv.Supported()
	for _, from := range codes {
		for _, to := range codes {
			forward, err := conv.Convert(250, from, to)
			if err != nil {
				t.Fatalf("Convert(%s -> %s): %v", from, to, err)
			}
			back, err := conv.Convert(forward, to, from)
			if err != nil {
				t.Fatalf("Convert(%s -> %s): %v", to, from, err)
			}
			if math.Abs(back-250) > 1e-9 {
				t.Errorf("round trip %s -> %s -> %s: got %v, want 250", from, to, from, back)
			}
		}
	}
}

func TestConvertErrors(t *testing.T) {
	conv := NewConverter()
	tests := []struct {
		name     string
		amount   float64
		from     model.Currency
		to       model.Currency
		wantCode ErrorCode
	}{
		{"unknown source", 100, "XYZ", model.CurrencyUSD, ErrUnsupportedCurrency},
		{"unknown target", 100, model.CurrencyUSD, "XYZ", ErrUnsupportedCurrency},
		{"negative amount", -5, model.CurrencyUSD, model.CurrencyEUR, ErrInvalidAmount},
		{"NaN amount", math.NaN(), model.CurrencyUSD, model.CurrencyEUR, ErrInvalidAmount},
		{"infinite amount", math.Inf(1), model.CurrencyUSD, model.CurrencyEUR, ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := conv.Convert(tt.amount, tt.from, tt.to)
			if err == nil {
				t.Fatal("expected error")
			}
			if !IsCode(err, tt.wantCode) {
				t.Errorf("error code = %q, want %q (err: %v)", CodeOf(err), tt.wantCode, err)
			}
		})
	}
}

func TestSupports(t *testing.T) {
	conv := NewConverter()
	if !conv.Supports(model.CurrencyUSD) {
		t.Error("USD must be supported")
	}
	if conv.Supports("BTC") {
		t.Error("BTC must not be supported")
	}
}
