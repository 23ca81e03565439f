package main

import (
	"testing"

	"github.com/mkinyua/landbook/internal/ledger"
	"github.com/mkinyua/landbook/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLineItem(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    model.LineItem
		wantErr bool
	}{
		{
			name: "valid item",
			raw:  "Plot transfer:1:50000",
			want: model.LineItem{
				Description: "Plot transfer",
				Quantity:    decimal.NewFromInt(1),
				Rate:        decimal.NewFromInt(50000),
			},
		},
		{
			name: "whitespace trimmed",
			raw:  " Survey fees : 2 : 1500.50 ",
			want: model.LineItem{
				Description: "Survey fees",
				Quantity:    decimal.NewFromInt(2),
				Rate:        decimal.RequireFromString("1500.50"),
			},
		},
		{
			name:    "missing parts",
			raw:     "Plot transfer:1",
			wantErr: true,
		},
		{
			name:    "bad quantity",
			raw:     "Plot transfer:one:50000",
			wantErr: true,
		},
		{
			name:    "bad rate",
			raw:     "Plot transfer:1:lots",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLineItem(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Description, got.Description)
			assert.True(t, tt.want.Quantity.Equal(got.Quantity))
			assert.True(t, tt.want.Rate.Equal(got.Rate))
		})
	}
}

func TestParseQuotationItem(t *testing.T) {
	got, err := parseQuotationItem("Plot 12:Eighth acre:1:100000")
	require.NoError(t, err)
	assert.Equal(t, "Plot 12", got.Item)
	assert.Equal(t, "Eighth acre", got.Description)
	assert.True(t, got.Amount().Equal(decimal.NewFromInt(100000)))

	_, err = parseQuotationItem("Plot 12:Eighth acre:1")
	assert.Error(t, err)
}

func TestParseStage(t *testing.T) {
	engine := ledger.New(nil, ledger.DefaultConfig())

	stage, err := parseStage(engine, "downpayment")
	require.NoError(t, err)
	assert.Equal(t, model.StageDownpayment, stage)

	_, err = parseStage(engine, "Closing Costs")
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	amount, err := parseAmount("1234.56")
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("1234.56")))

	_, err = parseAmount("not-a-number")
	assert.Error(t, err)
}
