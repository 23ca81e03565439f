// Package storage provides the SQLite persistence layer for the application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mkinyua/landbook/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidClient      = errors.New("invalid client")
	ErrInvalidPayment     = errors.New("invalid payment")
	ErrInvalidInvoice     = errors.New("invalid invoice")
	ErrInvalidQuotation   = errors.New("invalid quotation")
	ErrInvalidAppointment = errors.New("invalid appointment")
	ErrInvalidExpense     = errors.New("invalid expense")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateClient(client *model.Client) error {
	if client == nil {
		return fmt.Errorf("%w: client", ErrNilParameter)
	}
	if client.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidClient)
	}
	if strings.TrimSpace(client.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidClient)
	}
	if strings.TrimSpace(client.LRNo) == "" {
		return fmt.Errorf("%w: missing LR number", ErrInvalidClient)
	}
	for name, stage := range client.Stages {
		if stage.Total.IsNegative() {
			return fmt.Errorf("%w: stage %s has negative total", ErrInvalidClient, name)
		}
		if stage.Paid.IsNegative() {
			return fmt.Errorf("%w: stage %s has negative paid amount", ErrInvalidClient, name)
		}
		if stage.Paid.GreaterThan(stage.Total) {
			return fmt.Errorf("%w: stage %s paid exceeds total", ErrInvalidClient, name)
		}
	}
	return nil
}

func validatePayment(payment *model.Payment) error {
	if payment == nil {
		return fmt.Errorf("%w: payment", ErrNilParameter)
	}
	if payment.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidPayment)
	}
	if payment.ClientID == "" {
		return fmt.Errorf("%w: missing client ID", ErrInvalidPayment)
	}
	if payment.Stage == "" {
		return fmt.Errorf("%w: missing stage", ErrInvalidPayment)
	}
	if !payment.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidPayment)
	}
	if payment.Timestamp.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidPayment)
	}
	return nil
}

func validateInvoice(invoice *model.Invoice) error {
	if invoice == nil {
		return fmt.Errorf("%w: invoice", ErrNilParameter)
	}
	if _, ok := model.ParseInvoiceNumber(invoice.Number); !ok {
		return fmt.Errorf("%w: malformed number %q", ErrInvalidInvoice, invoice.Number)
	}
	for i, item := range invoice.Items {
		if strings.TrimSpace(item.Description) == "" {
			return fmt.Errorf("%w: item %d missing description", ErrInvalidInvoice, i)
		}
	}
	return nil
}

func validateQuotation(quotation *model.Quotation) error {
	if quotation == nil {
		return fmt.Errorf("%w: quotation", ErrNilParameter)
	}
	if quotation.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidQuotation)
	}
	if strings.TrimSpace(quotation.Recipient) == "" {
		return fmt.Errorf("%w: missing recipient", ErrInvalidQuotation)
	}
	return nil
}

func validateAppointment(appointment *model.Appointment) error {
	if appointment == nil {
		return fmt.Errorf("%w: appointment", ErrNilParameter)
	}
	if appointment.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidAppointment)
	}
	if strings.TrimSpace(appointment.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidAppointment)
	}
	if appointment.StartTime.IsZero() {
		return fmt.Errorf("%w: missing start time", ErrInvalidAppointment)
	}
	return nil
}

func validateExpense(expense *model.Expense) error {
	if expense == nil {
		return fmt.Errorf("%w: expense", ErrNilParameter)
	}
	if expense.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidExpense)
	}
	if strings.TrimSpace(expense.Type) == "" {
		return fmt.Errorf("%w: missing type", ErrInvalidExpense)
	}
	if !expense.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidExpense)
	}
	return nil
}
