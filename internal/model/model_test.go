package model

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextReceiptNumber(t *testing.T) {
	tests := []struct {
		name    string
		last    string
		want    string
		wantErr bool
	}{
		{name: "no receipts yet", last: "", want: "B001-00001"},
		{name: "increment", last: "B001-00001", want: "B001-00002"},
		{name: "keeps padding", last: "B001-00099", want: "B001-00100"},
		{name: "series rollover", last: "B001-99999", want: "B002-00001"},
		{name: "other series", last: "F010-00007", want: "F010-00008"},
		{name: "missing dash", last: "B00100001", wantErr: true},
		{name: "short sequence", last: "B001-1", wantErr: true},
		{name: "letters in sequence", last: "B001-0000A", wantErr: true},
		{name: "exhausted", last: "B999-99999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextReceiptNumber(tt.last)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeTotals(t *testing.T) {
	lines := []OrderLine{
		{Quantity: 2, UnitPrice: decimal.RequireFromString("100.00"), Subtotal: LineSubtotal(2, decimal.RequireFromString("100.00"))},
	}

	totals := ComputeTotals(lines)

	assert.Equal(t, "200.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "36.00", totals.Tax.StringFixed(2))
	assert.Equal(t, "236.00", totals.Total.StringFixed(2))
}

func TestComputeTotals_RoundsTaxOnce(t *testing.T) {
	price := decimal.RequireFromString("3.33")
	lines := []OrderLine{
		{Quantity: 1, UnitPrice: price, Subtotal: LineSubtotal(1, price)},
		{Quantity: 2, UnitPrice: price, Subtotal: LineSubtotal(2, price)},
	}

	totals := ComputeTotals(lines)

	// 9.99 * 0.18 = 1.7982
	assert.Equal(t, "9.99", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "1.80", totals.Tax.StringFixed(2))
	assert.True(t, totals.Total.Equal(totals.Subtotal.Add(totals.Tax)))
}

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		ok   bool
	}{
		{OrderRegistered, OrderConfirmed, true},
		{OrderConfirmed, OrderDelivered, true},
		{OrderRegistered, OrderVoided, true},
		{OrderConfirmed, OrderVoided, true},
		{OrderRegistered, OrderDelivered, false},
		{OrderVoided, OrderConfirmed, false},
		{OrderDelivered, OrderVoided, false},
		{OrderConfirmed, OrderRegistered, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to))
		})
	}

	assert.True(t, OrderVoided.Terminal())
	assert.True(t, OrderDelivered.Terminal())
	assert.False(t, OrderRegistered.Terminal())
}

func TestInsufficientStockError_Unwraps(t *testing.T) {
	var err error = &InsufficientStockError{ProductID: 7, Available: 2, Requested: 3}

	assert.True(t, errors.Is(err, ErrInsufficientStock))

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, int64(2), stockErr.Available)
}
