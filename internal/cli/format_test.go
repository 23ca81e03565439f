package cli

import (
	"testing"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name      string
		amount    string
		wantMinor int64
	}{
		{"whole amount", "1000", 100000},
		{"fractional amount", "1234.56", 123456},
		{"zero", "0", 0},
		{"rounds half up", "0.005", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatAmount(decimal.RequireFromString(tt.amount))
			want := money.New(tt.wantMinor, DefaultCurrency).Display()
			if got != want {
				t.Errorf("FormatAmount(%s) = %q, want %q", tt.amount, got, want)
			}
		})
	}
}

func TestFormatAmountIn_UnknownCurrencyFallsBack(t *testing.T) {
	got := FormatAmountIn(decimal.NewFromInt(5), "XXX-NOT-REAL")
	want := FormatAmount(decimal.NewFromInt(5))
	if got != want {
		t.Errorf("FormatAmountIn fallback = %q, want %q", got, want)
	}
}
