package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roberto3101/sistema-control/internal/model"
	"github.com/roberto3101/sistema-control/internal/repository"
)

// InventoryGuard следит за тем, чтобы остаток товара никогда не уходил в минус.
type InventoryGuard struct {
	store  Store
	logger *zap.Logger
}

// NewInventoryGuard создаёт контролёр остатков.
func NewInventoryGuard(store Store, logger *zap.Logger) *InventoryGuard {
	return &InventoryGuard{store: store, logger: logger}
}

// CheckAvailability сообщает, хватает ли остатка на requested единиц.
// Проверка выполняется без блокировок и ничего не резервирует.
func (g *InventoryGuard) CheckAvailability(ctx context.Context, productID, requested int64) (model.Availability, error) {
	if requested <= 0 {
		return model.Availability{}, model.Validationf("requested quantity must be positive")
	}

	p, err := g.store.GetProduct(ctx, productID)
	if err != nil {
		return model.Availability{}, fmt.Errorf("check availability: %w", err)
	}

	return model.Availability{
		Available:    p.CurrentStock >= requested,
		CurrentStock: p.CurrentStock,
	}, nil
}

// DecrementStock блокирует строку товара в транзакции tx и списывает qty единиц.
// При нехватке возвращает *model.InsufficientStockError, и вызывающая транзакция откатывается.
func (g *InventoryGuard) DecrementStock(ctx context.Context, tx repository.Tx, productID, qty int64) error {
	if qty <= 0 {
		return model.Validationf("quantity must be positive")
	}

	p, err := tx.LockProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("lock product: %w", err)
	}

	if p.CurrentStock < qty {
		return &model.InsufficientStockError{ProductID: productID, Available: p.CurrentStock, Requested: qty}
	}

	if err := tx.AdjustStock(ctx, productID, -qty); err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	if p.CurrentStock-qty <= p.MinimumStock {
		g.logger.Info("product reached minimum stock",
			zap.Int64("product_id", productID),
			zap.Int64("stock", p.CurrentStock-qty),
			zap.Int64("minimum", p.MinimumStock),
		)
	}

	return nil
}

// RestoreStock возвращает qty единиц на остаток в транзакции tx.
func (g *InventoryGuard) RestoreStock(ctx context.Context, tx repository.Tx, productID, qty int64) error {
	if qty <= 0 {
		return model.Validationf("quantity must be positive")
	}

	if _, err := tx.LockProduct(ctx, productID); err != nil {
		return fmt.Errorf("lock product: %w", err)
	}

	if err := tx.AdjustStock(ctx, productID, qty); err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}

	return nil
}
