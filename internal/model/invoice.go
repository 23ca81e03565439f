package model

import (
	"regexp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceNumberSeed is the first number issued when no invoices exist yet.
const InvoiceNumberSeed = 300

// InvoiceNumberPrefix prefixes every invoice number.
const InvoiceNumberPrefix = "LR"

var invoiceNumberPattern = regexp.MustCompile(`^LR(\d+)$`)

// LineItem is one billable row on an invoice.
type LineItem struct {
	Description string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
}

// Amount returns quantity times rate for the line.
func (i LineItem) Amount() decimal.Decimal {
	return i.Quantity.Mul(i.Rate)
}

// Invoice is a bill issued to a client. The Number is unique; saving an
// invoice under an existing number replaces the earlier version.
type Invoice struct {
	Date       time.Time
	DueDate    time.Time
	CreatedAt  time.Time
	ID         string
	Number     string
	From       string
	To         string
	Notes      string
	Items      []LineItem
	TaxPercent decimal.Decimal
}

// Subtotal returns the sum of all line amounts before tax.
func (inv *Invoice) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range inv.Items {
		sum = sum.Add(item.Amount())
	}
	return sum
}

// TaxAmount returns the tax portion of the invoice total.
func (inv *Invoice) TaxAmount() decimal.Decimal {
	return inv.Subtotal().Mul(inv.TaxPercent).Div(decimal.NewFromInt(100))
}

// Total returns subtotal plus tax.
func (inv *Invoice) Total() decimal.Decimal {
	return inv.Subtotal().Add(inv.TaxAmount())
}

// ParseInvoiceNumber extracts the numeric part of an invoice number.
// Returns false for numbers that don't match the LR<digits> form.
func ParseInvoiceNumber(number string) (int, bool) {
	m := invoiceNumberPattern.FindStringSubmatch(number)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// NextInvoiceNumber returns the number to issue after the given existing
// numbers: one past the highest recognized number, or the seed when none
// parse. Unrecognized numbers are ignored rather than treated as errors.
func NextInvoiceNumber(existing []string) string {
	highest := -1
	for _, number := range existing {
		if n, ok := ParseInvoiceNumber(number); ok && n > highest {
			highest = n
		}
	}
	if highest < 0 {
		return InvoiceNumberPrefix + strconv.Itoa(InvoiceNumberSeed)
	}
	return InvoiceNumberPrefix + strconv.Itoa(highest+1)
}
