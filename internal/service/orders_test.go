package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roberto3101/sistema-control/internal/model"
	"github.com/roberto3101/sistema-control/internal/repository"
)

func TestPlaceOrder_ComputesTotalsAndDecrementsStock(t *testing.T) {
	f := newFixture(t)
	productID := f.product(t, "P-100", "100.00", 10)

	orderID := f.placeOrder(t, LineInput{ProductID: productID, Quantity: 2})

	order, err := f.orders.GetOrder(context.Background(), orderID)
	require.NoError(t, err)

	assert.Equal(t, "200.00", order.Subtotal.StringFixed(2))
	assert.Equal(t, "36.00", order.Tax.StringFixed(2))
	assert.Equal(t, "236.00", order.Total.StringFixed(2))
	assert.Equal(t, model.OrderRegistered, order.Status)
	require.Len(t, order.Lines, 1)
	assert.True(t, order.Lines[0].UnitPrice.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, int64(8), f.stock(t, productID))
}

func TestPlaceOrder_IgnoresClientSubtotal(t *testing.T) {
	f := newFixture(t)
	productID := f.product(t, "P-1", "12.50", 10)
	wrong := decimal.RequireFromString("1.00")

	orderID := f.placeOrder(t, LineInput{ProductID: productID, Quantity: 2, Subtotal: &wrong})

	order, err := f.orders.GetOrder(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, "25.00", order.Lines[0].Subtotal.StringFixed(2))
	assert.Equal(t, "25.00", order.Subtotal.StringFixed(2))
}

func TestPlaceOrder_ShortageRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	plenty := f.product(t, "P-1", "5.00", 10)
	scarce := f.product(t, "P-2", "5.00", 1)

	_, err := f.orders.PlaceOrder(context.Background(), PlaceOrderInput{
		ClientID: f.clientID,
		SellerID: f.sellerID,
		Lines: []LineInput{
			{ProductID: plenty, Quantity: 4},
			{ProductID: scarce, Quantity: 2},
		},
	})

	var stockErr *model.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, scarce, stockErr.ProductID)
	assert.Equal(t, int64(1), stockErr.Available)

	assert.Equal(t, int64(10), f.stock(t, plenty))
	assert.Equal(t, int64(1), f.stock(t, scarce))

	orders, err := f.orders.ListOrders(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestPlaceOrder_RetryAfterFailureHasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	productID := f.product(t, "P-1", "10.00", 3)

	in := PlaceOrderInput{
		ClientID: f.clientID,
		SellerID: f.sellerID,
		Lines:    []LineInput{{ProductID: productID, Quantity: 5}},
	}

	for range 3 {
		_, err := f.orders.PlaceOrder(context.Background(), in)
		require.ErrorIs(t, err, model.ErrInsufficientStock)
	}
	assert.Equal(t, int64(3), f.stock(t, productID))

	_, err := f.catalog.Replenish(context.Background(), productID, 2)
	require.NoError(t, err)

	_, err = f.orders.PlaceOrder(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.stock(t, productID))
}

func TestPlaceOrder_MergesRepeatedProducts(t *testing.T) {
	f := newFixture(t)
	productID := f.product(t, "P-1", "3.33", 3)

	_, err := f.orders.PlaceOrder(context.Background(), PlaceOrderInput{
		ClientID: f.clientID,
		SellerID: f.sellerID,
		Lines: []LineInput{
			{ProductID: productID, Quantity: 2},
			{ProductID: productID, Quantity: 2},
		},
	})
	require.ErrorIs(t, err, model.ErrInsufficientStock)
	assert.Equal(t, int64(3), f.stock(t, productID))
}

func TestPlaceOrder_ConcurrentOrdersNeverOversell(t *testing.T) {
	f := newFixture(t)
	productID := f.product(t, "P-1", "10.00", 5)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.orders.PlaceOrder(context.Background(), PlaceOrderInput{
				ClientID: f.clientID,
				SellerID: f.sellerID,
				Lines:    []LineInput{{ProductID: productID, Quantity: 3}},
			})
		}(i)
	}
	wg.Wait()

	var succeeded, short int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, model.ErrInsufficientStock):
			short++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, short)
	assert.Equal(t, int64(2), f.stock(t, productID))
}

func TestPlaceOrder_Validation(t *testing.T) {
	f := newFixture(t)
	productID := f.product(t, "P-1", "10.00", 5)
	otherClient := f.client(t, "Minimarket Lima")

	visitID, err := f.catalog.CreateVisit(context.Background(), VisitInput{
		SellerID:    f.sellerID,
		ClientID:    otherClient,
		ScheduledAt: mustTime(t, "2026-10-01T10:00:00Z"),
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   PlaceOrderInput
		want error
	}{
		{
			name: "no lines",
			in:   PlaceOrderInput{ClientID: f.clientID, SellerID: f.sellerID},
			want: model.ErrValidation,
		},
		{
			name: "zero quantity",
			in:   PlaceOrderInput{ClientID: f.clientID, SellerID: f.sellerID, Lines: []LineInput{{ProductID: productID}}},
			want: model.ErrValidation,
		},
		{
			name: "unknown client",
			in:   PlaceOrderInput{ClientID: 9999, SellerID: f.sellerID, Lines: []LineInput{{ProductID: productID, Quantity: 1}}},
			want: model.ErrNotFound,
		},
		{
			name: "unknown product",
			in:   PlaceOrderInput{ClientID: f.clientID, SellerID: f.sellerID, Lines: []LineInput{{ProductID: 9999, Quantity: 1}}},
			want: model.ErrNotFound,
		},
		{
			name: "assistant cannot sell",
			in:   PlaceOrderInput{ClientID: f.clientID, SellerID: f.clerkID, Lines: []LineInput{{ProductID: productID, Quantity: 1}}},
			want: model.ErrValidation,
		},
		{
			name: "visit of another client",
			in: PlaceOrderInput{
				ClientID: f.clientID, SellerID: f.sellerID, VisitID: &visitID,
				Lines: []LineInput{{ProductID: productID, Quantity: 1}},
			},
			want: model.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orders.PlaceOrder(context.Background(), tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}

	assert.Equal(t, int64(5), f.stock(t, productID))
}

func TestChangeStatus_Transitions(t *testing.T) {
	f := newFixture(t)
	productID := f.product(t, "P-1", "10.00", 5)
	orderID := f.placeOrder(t, LineInput{ProductID: productID, Quantity: 1})
	ctx := context.Background()

	err := f.orders.ChangeStatus(ctx, orderID, model.OrderDelivered)
	var trErr *model.InvalidTransitionError
	require.ErrorAs(t, err, &trErr)
	assert.Equal(t, "registrado", trErr.From)

	require.NoError(t, f.orders.ChangeStatus(ctx, orderID, model.OrderConfirmed))
	require.NoError(t, f.orders.ChangeStatus(ctx, orderID, model.OrderDelivered))
	require.ErrorIs(t, f.orders.ChangeStatus(ctx, orderID, model.OrderVoided), model.ErrInvalidTransition)

	require.ErrorIs(t, f.orders.ChangeStatus(ctx, orderID, "perdido"), model.ErrValidation)
	require.ErrorIs(t, f.orders.ChangeStatus(ctx, 9999, model.OrderConfirmed), model.ErrNotFound)
}

func TestChangeStatus_VoidRestocks(t *testing.T) {
	f := newFixture(t)
	productID := f.product(t, "P-1", "10.00", 5)
	orderID := f.placeOrder(t,
		LineInput{ProductID: productID, Quantity: 2},
		LineInput{ProductID: productID, Quantity: 1},
	)
	require.Equal(t, int64(2), f.stock(t, productID))

	require.NoError(t, f.orders.ChangeStatus(context.Background(), orderID, model.OrderVoided))
	assert.Equal(t, int64(5), f.stock(t, productID))
}

func TestChangeStatus_VoidRefusedWhileReceiptActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.product(t, "P-1", "10.00", 5)
	orderID := f.placeOrder(t, LineInput{ProductID: productID, Quantity: 2})

	receiptID, err := f.receipts.GenerateFromOrder(ctx, orderID, f.clerkID)
	require.NoError(t, err)

	require.ErrorIs(t, f.orders.ChangeStatus(ctx, orderID, model.OrderVoided), model.ErrInvalidState)
	assert.Equal(t, int64(3), f.stock(t, productID))

	require.NoError(t, f.receipts.Void(ctx, receiptID, "error de digitación", f.adminID))
	require.NoError(t, f.orders.ChangeStatus(ctx, orderID, model.OrderVoided))
	assert.Equal(t, int64(5), f.stock(t, productID))
}

func TestListOrdersBySeller(t *testing.T) {
	f := newFixture(t)
	productID := f.product(t, "P-1", "10.00", 10)
	f.placeOrder(t, LineInput{ProductID: productID, Quantity: 1})

	mine, err := f.orders.ListOrdersBySeller(context.Background(), f.sellerID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	others, err := f.orders.ListOrdersBySeller(context.Background(), f.seller2ID)
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestCheckAvailability(t *testing.T) {
	f := newFixture(t)
	productID := f.product(t, "P-1", "10.00", 4)

	got, err := f.guard.CheckAvailability(context.Background(), productID, 4)
	require.NoError(t, err)
	assert.Equal(t, model.Availability{Available: true, CurrentStock: 4}, got)

	got, err = f.guard.CheckAvailability(context.Background(), productID, 5)
	require.NoError(t, err)
	assert.False(t, got.Available)

	_, err = f.guard.CheckAvailability(context.Background(), 9999, 1)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestDecrementStock_AbortsEnclosingTransaction(t *testing.T) {
	f := newFixture(t)
	productID := f.product(t, "P-1", "10.00", 2)

	err := f.store.WithinTx(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		if err := f.guard.DecrementStock(ctx, tx, productID, 2); err != nil {
			return err
		}
		return f.guard.DecrementStock(ctx, tx, productID, 1)
	})
	require.ErrorIs(t, err, model.ErrInsufficientStock)
	assert.Equal(t, int64(2), f.stock(t, productID))
}
