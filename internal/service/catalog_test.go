package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roberto3101/sistema-control/internal/model"
)

func TestCreateProduct_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.CreateProduct(ctx, ProductInput{Name: "Sin código", UnitPrice: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, model.ErrValidation)

	_, err = f.catalog.CreateProduct(ctx, ProductInput{Code: "P-1", Name: "Negativo", UnitPrice: decimal.NewFromInt(-1)})
	require.ErrorIs(t, err, model.ErrValidation)

	f.product(t, "P-1", "1.00", 1)
	_, err = f.catalog.CreateProduct(ctx, ProductInput{Code: "p-1", Name: "Repetido", UnitPrice: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, model.ErrProductExists)
}

func TestListLowStockAndReplenish(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	low := f.product(t, "P-1", "1.00", 1)
	f.product(t, "P-2", "1.00", 50)

	products, err := f.catalog.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, low, products[0].ID)

	stock, err := f.catalog.Replenish(ctx, low, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stock)

	products, err = f.catalog.ListLowStock(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	_, err = f.catalog.Replenish(ctx, low, 0)
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestCreateClient_ValidatesDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.CreateClient(ctx, ClientInput{BusinessName: "Bodega", Document: "20131312956"})
	require.ErrorIs(t, err, model.ErrValidation)

	id, err := f.catalog.CreateClient(ctx, ClientInput{BusinessName: " Bodega Norte ", Document: "20131312955"})
	require.NoError(t, err)

	c, err := f.catalog.GetClient(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Bodega Norte", c.BusinessName)
	assert.Equal(t, model.RecordActive, c.Status)
}
