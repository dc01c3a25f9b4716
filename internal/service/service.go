// Package service реализует бизнес-логику системы: заказы, остатки, чеки и закрепление клиентов.
package service

import (
	"context"
	"errors"

	"github.com/roberto3101/sistema-control/internal/model"
	"github.com/roberto3101/sistema-control/internal/repository"
)

// Store описывает контракт хранилища, используемый сервисами.
// Многошаговые изменения выполняются только через WithinTx.
type Store interface {
	WithinTx(ctx context.Context, fn repository.TxFunc) error

	CreateUser(ctx context.Context, u *model.User) (int64, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)

	CreateClient(ctx context.Context, c *model.Client) (int64, error)
	GetClient(ctx context.Context, id int64) (*model.Client, error)
	ListUnassignedClients(ctx context.Context) ([]model.Client, error)

	CreateProduct(ctx context.Context, p *model.Product) (int64, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	ListLowStockProducts(ctx context.Context) ([]model.Product, error)

	CreateVisit(ctx context.Context, v *model.Visit) (int64, error)

	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	ListOrders(ctx context.Context, f repository.OrderFilter) ([]model.Order, error)

	GetReceipt(ctx context.Context, id int64) (*model.Receipt, error)
	ListReceipts(ctx context.Context) ([]model.Receipt, error)

	ActiveAssignmentForClient(ctx context.Context, clientID int64) (*model.Assignment, error)
	ListActiveAssignments(ctx context.Context) ([]model.Assignment, error)
	ListSellerWorkload(ctx context.Context) ([]model.SellerWorkload, error)
}

// activeSeller проверяет, что пользователь существует и может вести клиентов.
func activeSeller(ctx context.Context, tx repository.Tx, sellerID int64) (*model.User, error) {
	u, err := tx.GetUser(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if u.Role != model.RoleSeller || u.Status != model.UserStatusActive {
		return nil, model.Validationf("user %d is not an active seller", sellerID)
	}
	return u, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}
