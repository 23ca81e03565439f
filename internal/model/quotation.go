package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuotationVATPercent is the VAT rate applied to every quotation.
var QuotationVATPercent = decimal.NewFromInt(16)

// QuotationItem is one row on a quotation.
type QuotationItem struct {
	Item        string
	Description string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
}

// Amount returns quantity times unit cost for the row.
func (q QuotationItem) Amount() decimal.Decimal {
	return q.Quantity.Mul(q.UnitCost)
}

// Quotation is a priced offer prepared for a prospective client.
type Quotation struct {
	CreatedAt    time.Time
	ID           string
	Recipient    string
	Signatory    string
	PaymentTerms string
	Items        []QuotationItem
}

// Subtotal returns the sum of all row amounts before VAT.
func (q *Quotation) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range q.Items {
		sum = sum.Add(item.Amount())
	}
	return sum
}

// VATAmount returns the VAT portion of the quotation.
func (q *Quotation) VATAmount() decimal.Decimal {
	return q.Subtotal().Mul(QuotationVATPercent).Div(decimal.NewFromInt(100))
}

// TotalWithVAT returns subtotal plus VAT.
func (q *Quotation) TotalWithVAT() decimal.Decimal {
	return q.Subtotal().Add(q.VATAmount())
}
