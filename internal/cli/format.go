package cli

import (
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the ISO 4217 code amounts are displayed in.
const DefaultCurrency = "KES"

// FormatAmount renders a decimal amount in the default display currency.
func FormatAmount(amount decimal.Decimal) string {
	return FormatAmountIn(amount, DefaultCurrency)
}

// FormatAmountIn renders a decimal amount with the given currency's symbol
// and grouping. Unknown currency codes fall back to the default.
func FormatAmountIn(amount decimal.Decimal, code string) string {
	currency := money.GetCurrency(code)
	if currency == nil {
		currency = money.GetCurrency(DefaultCurrency)
	}
	factor := decimal.NewFromFloat(math.Pow10(currency.Fraction))
	minor := amount.Mul(factor).Round(0).IntPart()
	return money.New(minor, currency.Code).Display()
}
