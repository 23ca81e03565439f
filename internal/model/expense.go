package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a business expense entry.
type Expense struct {
	Date        time.Time
	ID          string
	Type        string
	Description string
	Amount      decimal.Decimal
}
