package ledger

import (
	"fmt"

	"github.com/mkinyua/landbook/internal/model"
	"github.com/shopspring/decimal"
)

// ValidationError reports malformed input to a ledger operation. It is always
// recoverable: the caller corrects the input and retries.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// OverpaymentError reports a payment that exceeds the remaining balance of its
// stage. Remaining carries the actual outstanding amount so the caller can
// retry with a corrected value.
type OverpaymentError struct {
	Stage     model.StageName
	Requested decimal.Decimal
	Remaining decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment of %s exceeds remaining balance of %s for stage %s",
		e.Requested, e.Remaining, e.Stage)
}
