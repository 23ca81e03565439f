package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestClient_PendingBalance(t *testing.T) {
	tests := []struct {
		name   string
		stages map[StageName]Stage
		want   string
	}{
		{
			name:   "no stages",
			stages: map[StageName]Stage{},
			want:   "0",
		},
		{
			name: "nothing paid",
			stages: map[StageName]Stage{
				StageDownpayment:     {Total: decimal.NewFromInt(1000), Paid: decimal.Zero},
				StageTitlePayments:   {Total: decimal.NewFromInt(5000), Paid: decimal.Zero},
				StageLandApprovals:   {Total: decimal.Zero, Paid: decimal.Zero},
				StageCountyApprovals: {Total: decimal.NewFromInt(250), Paid: decimal.Zero},
			},
			want: "6250",
		},
		{
			name: "partially paid",
			stages: map[StageName]Stage{
				StageDownpayment:   {Total: decimal.NewFromInt(1000), Paid: decimal.NewFromInt(400)},
				StageTitlePayments: {Total: decimal.NewFromInt(5000), Paid: decimal.NewFromInt(5000), IsPaid: true},
			},
			want: "600",
		},
		{
			name: "fully paid",
			stages: map[StageName]Stage{
				StageDownpayment: {Total: decimal.NewFromInt(1000), Paid: decimal.NewFromInt(1000), IsPaid: true},
			},
			want: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{Stages: tt.stages}
			want, err := decimal.NewFromString(tt.want)
			if err != nil {
				t.Fatalf("bad want value %q: %v", tt.want, err)
			}
			if got := c.PendingBalance(); !got.Equal(want) {
				t.Errorf("PendingBalance() = %s, want %s", got, want)
			}
		})
	}
}

func TestStage_Remaining(t *testing.T) {
	s := Stage{Total: decimal.NewFromInt(1000), Paid: decimal.NewFromInt(400)}
	if got := s.Remaining(); !got.Equal(decimal.NewFromInt(600)) {
		t.Errorf("Remaining() = %s, want 600", got)
	}
}

func TestValidPaymentMethod(t *testing.T) {
	for _, m := range PaymentMethods() {
		if !ValidPaymentMethod(m) {
			t.Errorf("ValidPaymentMethod(%q) = false, want true", m)
		}
	}
	if ValidPaymentMethod("Barter") {
		t.Error("ValidPaymentMethod(Barter) = true, want false")
	}
}
