package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/roberto3101/sistema-control/internal/model"
	"github.com/roberto3101/sistema-control/internal/repository"
)

// fixture собирает сервисы поверх хранилища в памяти с продавцами, клиентом и товарами.
type fixture struct {
	store *repository.MemoryRepository

	guard       *InventoryGuard
	orders      *OrderManager
	receipts    *ReceiptIssuer
	assignments *AssignmentManager
	accounts    *AccountService
	catalog     *CatalogService

	adminID   int64
	sellerID  int64
	seller2ID int64
	clerkID   int64
	clientID  int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := repository.NewMemoryRepository(time.Second)
	logger := zap.NewNop()
	guard := NewInventoryGuard(store, logger)

	f := &fixture{
		store:       store,
		guard:       guard,
		orders:      NewOrderManager(store, guard, logger),
		receipts:    NewReceiptIssuer(store, logger),
		assignments: NewAssignmentManager(store, logger),
		accounts:    NewAccountService(store, logger),
		catalog:     NewCatalogService(store, guard, logger),
	}
	f.accounts.bcryptCost = 4

	f.adminID = f.user(t, "Admin", "admin@sc.pe", model.RoleAdmin)
	f.sellerID = f.user(t, "Ana Vendedora", "ana@sc.pe", model.RoleSeller)
	f.seller2ID = f.user(t, "Luis Vendedor", "luis@sc.pe", model.RoleSeller)
	f.clerkID = f.user(t, "Auxiliar", "aux@sc.pe", model.RoleAssistant)
	f.clientID = f.client(t, "Bodega San Juan")

	return f
}

func (f *fixture) user(t *testing.T, name, email string, role model.Role) int64 {
	t.Helper()
	id, err := f.accounts.Register(context.Background(), RegisterInput{
		FullName: name,
		Email:    email,
		Password: "secreto123",
		Role:     role,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) client(t *testing.T, name string) int64 {
	t.Helper()
	id, err := f.catalog.CreateClient(context.Background(), ClientInput{BusinessName: name, Document: "45781236"})
	require.NoError(t, err)
	return id
}

func (f *fixture) product(t *testing.T, code, price string, stock int64) int64 {
	t.Helper()
	id, err := f.catalog.CreateProduct(context.Background(), ProductInput{
		Code:         code,
		Name:         "Producto " + code,
		UnitPrice:    decimal.RequireFromString(price),
		InitialStock: stock,
		MinimumStock: 1,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) stock(t *testing.T, productID int64) int64 {
	t.Helper()
	p, err := f.store.GetProduct(context.Background(), productID)
	require.NoError(t, err)
	return p.CurrentStock
}

func (f *fixture) placeOrder(t *testing.T, lines ...LineInput) int64 {
	t.Helper()
	id, err := f.orders.PlaceOrder(context.Background(), PlaceOrderInput{
		ClientID: f.clientID,
		SellerID: f.sellerID,
		Lines:    lines,
	})
	require.NoError(t, err)
	return id
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}
