package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod indicates how a payment was made.
type PaymentMethod string

const (
	// MethodCash is a cash payment.
	MethodCash PaymentMethod = "Cash"
	// MethodBankTransfer is a bank transfer.
	MethodBankTransfer PaymentMethod = "Bank Transfer"
	// MethodCheck is a check payment.
	MethodCheck PaymentMethod = "Check"
	// MethodMobileMoney is a mobile money payment.
	MethodMobileMoney PaymentMethod = "Mobile Money"
)

// PaymentMethods lists the accepted payment methods.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{MethodCash, MethodBankTransfer, MethodCheck, MethodMobileMoney}
}

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m PaymentMethod) bool {
	for _, known := range PaymentMethods() {
		if m == known {
			return true
		}
	}
	return false
}

// Payment is an immutable history record of one accepted payment. It captures
// the client's pending balance before and after the payment was applied, so
// the history doubles as an audit trail of balance movement. Records are
// append-only and never mutated or deleted.
type Payment struct {
	Timestamp        time.Time
	ID               string
	ClientID         string
	ClientName       string
	Notes            string
	Stage            StageName
	Method           PaymentMethod
	Amount           decimal.Decimal
	PreviousBalance  decimal.Decimal
	ResultingBalance decimal.Decimal
}
