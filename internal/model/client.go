// Package model defines the core domain types shared across the application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StageName identifies one of the fixed payment stages a client moves through.
type StageName string

const (
	// StageDownpayment is the initial deposit on a plot.
	StageDownpayment StageName = "Downpayment"
	// StageCountyApprovals covers county approval fees.
	StageCountyApprovals StageName = "CountyApprovals"
	// StageLandApprovals covers land control board approvals.
	StageLandApprovals StageName = "LandApprovals"
	// StageTitlePayments covers title deed transfer payments.
	StageTitlePayments StageName = "TitlePayments"
)

// DefaultStages is the canonical stage order used when no custom list is configured.
func DefaultStages() []StageName {
	return []StageName{
		StageDownpayment,
		StageCountyApprovals,
		StageLandApprovals,
		StageTitlePayments,
	}
}

// Stage tracks what a client owes and has paid for one payment stage.
// Paid only ever grows, and never past Total.
type Stage struct {
	LastUpdated time.Time
	Total       decimal.Decimal
	Paid        decimal.Decimal
	IsPaid      bool
}

// Remaining returns the unpaid portion of the stage.
func (s Stage) Remaining() decimal.Decimal {
	return s.Total.Sub(s.Paid)
}

// Client is a land-sale client with per-stage payment balances.
type Client struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	Stages    map[StageName]Stage
	ID        string
	Name      string
	LRNo      string
	Version   int64
}

// PendingBalance recomputes the client's total outstanding balance from the
// stage data. The balance is always derived, never stored independently, so
// it cannot drift from the stages.
func (c *Client) PendingBalance() decimal.Decimal {
	total := decimal.Zero
	for _, stage := range c.Stages {
		total = total.Add(stage.Remaining())
	}
	return total
}
