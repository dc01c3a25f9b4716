package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/roberto3101/sistema-control/internal/model"
	"github.com/roberto3101/sistema-control/internal/repository"
)

// LineInput: позиция нового заказа. Subtotal от клиента необязателен и служит только для сверки.
type LineInput struct {
	ProductID int64
	Quantity  int64
	Subtotal  *decimal.Decimal
}

// PlaceOrderInput: данные нового заказа.
type PlaceOrderInput struct {
	ClientID int64
	SellerID int64
	VisitID  *int64
	Lines    []LineInput
	Notes    string
}

// OrderManager оформляет заказы и ведёт их статусы.
type OrderManager struct {
	store  Store
	guard  *InventoryGuard
	logger *zap.Logger
}

// NewOrderManager создаёт менеджер заказов.
func NewOrderManager(store Store, guard *InventoryGuard, logger *zap.Logger) *OrderManager {
	return &OrderManager{store: store, guard: guard, logger: logger}
}

func (in PlaceOrderInput) validate() error {
	if in.ClientID <= 0 {
		return model.Validationf("client id must be positive")
	}
	if in.SellerID <= 0 {
		return model.Validationf("seller id must be positive")
	}
	if in.VisitID != nil && *in.VisitID <= 0 {
		return model.Validationf("visit id must be positive")
	}
	if len(in.Lines) == 0 {
		return model.Validationf("order must have at least one line")
	}
	for i, l := range in.Lines {
		if l.ProductID <= 0 {
			return model.Validationf("line %d: product id must be positive", i+1)
		}
		if l.Quantity <= 0 {
			return model.Validationf("line %d: quantity must be positive", i+1)
		}
	}
	return nil
}

// PlaceOrder атомарно оформляет заказ: проверяет клиента и продавца, фиксирует цены,
// сохраняет заголовок и позиции и списывает остатки. Любая ошибка откатывает всё целиком.
func (m *OrderManager) PlaceOrder(ctx context.Context, in PlaceOrderInput) (int64, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}

	// Количество по каждому товару; блокировки берутся по возрастанию id.
	demand := make(map[int64]int64, len(in.Lines))
	for _, l := range in.Lines {
		demand[l.ProductID] += l.Quantity
	}
	productIDs := make([]int64, 0, len(demand))
	for id := range demand {
		productIDs = append(productIDs, id)
	}
	slices.Sort(productIDs)

	var orderID int64

	err := m.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := m.checkParties(ctx, tx, in); err != nil {
			return err
		}

		prices := make(map[int64]decimal.Decimal, len(productIDs))
		for _, id := range productIDs {
			p, err := tx.LockProduct(ctx, id)
			if err != nil {
				return fmt.Errorf("lock product: %w", err)
			}
			if p.Status != model.RecordActive {
				return model.Validationf("product %d is inactive", id)
			}
			prices[id] = p.UnitPrice
		}

		lines := make([]model.OrderLine, len(in.Lines))
		for i, l := range in.Lines {
			subtotal := model.LineSubtotal(l.Quantity, prices[l.ProductID])
			if l.Subtotal != nil && !l.Subtotal.Equal(subtotal) {
				m.logger.Warn("client line subtotal ignored",
					zap.Int64("product_id", l.ProductID),
					zap.String("submitted", l.Subtotal.StringFixed(2)),
					zap.String("computed", subtotal.StringFixed(2)),
				)
			}
			lines[i] = model.OrderLine{
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				UnitPrice: prices[l.ProductID],
				Subtotal:  subtotal,
			}
		}

		totals := model.ComputeTotals(lines)
		order := &model.Order{
			ClientID: in.ClientID,
			SellerID: in.SellerID,
			VisitID:  in.VisitID,
			Subtotal: totals.Subtotal,
			Tax:      totals.Tax,
			Total:    totals.Total,
			Notes:    strings.TrimSpace(in.Notes),
			Status:   model.OrderRegistered,
		}

		id, err := tx.InsertOrder(ctx, order)
		if err != nil {
			return err
		}

		for i := range lines {
			if _, err := tx.InsertOrderLine(ctx, id, i+1, &lines[i]); err != nil {
				return err
			}
		}

		for _, productID := range productIDs {
			if err := m.guard.DecrementStock(ctx, tx, productID, demand[productID]); err != nil {
				return err
			}
		}

		orderID = id
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("place order: %w", err)
	}

	m.logger.Info("order placed",
		zap.Int64("order_id", orderID),
		zap.Int64("client_id", in.ClientID),
		zap.Int64("seller_id", in.SellerID),
	)

	return orderID, nil
}

func (m *OrderManager) checkParties(ctx context.Context, tx repository.Tx, in PlaceOrderInput) error {
	client, err := tx.LockClient(ctx, in.ClientID)
	if err != nil {
		return err
	}
	if client.Status != model.RecordActive {
		return model.Validationf("client %d is inactive", in.ClientID)
	}

	seller, err := tx.GetUser(ctx, in.SellerID)
	if err != nil {
		return err
	}
	if seller.Role != model.RoleSeller && seller.Role != model.RoleAdmin {
		return model.Validationf("user %d cannot place orders", in.SellerID)
	}
	if seller.Status != model.UserStatusActive {
		return model.Validationf("user %d is not active", in.SellerID)
	}

	if in.VisitID != nil {
		visit, err := tx.GetVisit(ctx, *in.VisitID)
		if err != nil {
			return err
		}
		if visit.ClientID != in.ClientID {
			return model.Validationf("visit %d belongs to another client", *in.VisitID)
		}
	}

	return nil
}

// ChangeStatus переводит заказ в статус target по таблице переходов.
// При аннулировании остатки позиций возвращаются на склад.
func (m *OrderManager) ChangeStatus(ctx context.Context, orderID int64, target model.OrderStatus) error {
	if !target.Valid() {
		return model.Validationf("unknown order status %q", target)
	}

	err := m.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}

		if !order.Status.CanTransitionTo(target) {
			return &model.InvalidTransitionError{Entity: "order", From: string(order.Status), To: string(target)}
		}

		if target == model.OrderVoided {
			if err := m.restock(ctx, tx, order); err != nil {
				return err
			}
		}

		return tx.SetOrderStatus(ctx, orderID, target)
	})
	if err != nil {
		return fmt.Errorf("change order status: %w", err)
	}

	m.logger.Info("order status changed", zap.Int64("order_id", orderID), zap.String("status", string(target)))
	return nil
}

func (m *OrderManager) restock(ctx context.Context, tx repository.Tx, order *model.Order) error {
	receipt, err := tx.ActiveReceiptForOrder(ctx, order.ID)
	switch {
	case err == nil:
		return fmt.Errorf("%w: order %d has receipt %s", model.ErrInvalidState, order.ID, receipt.Number)
	case !isNotFound(err):
		return err
	}

	returned := make(map[int64]int64, len(order.Lines))
	for _, l := range order.Lines {
		returned[l.ProductID] += l.Quantity
	}
	productIDs := make([]int64, 0, len(returned))
	for id := range returned {
		productIDs = append(productIDs, id)
	}
	slices.Sort(productIDs)

	for _, id := range productIDs {
		if err := m.guard.RestoreStock(ctx, tx, id, returned[id]); err != nil {
			return err
		}
	}
	return nil
}

// GetOrder возвращает заказ с позициями.
func (m *OrderManager) GetOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	return m.store.GetOrder(ctx, orderID)
}

// ListOrders возвращает заказы, при необходимости отфильтрованные по статусу.
func (m *OrderManager) ListOrders(ctx context.Context, status *model.OrderStatus) ([]model.Order, error) {
	return m.store.ListOrders(ctx, repository.OrderFilter{Status: status})
}

// ListOrdersBySeller возвращает заказы продавца.
func (m *OrderManager) ListOrdersBySeller(ctx context.Context, sellerID int64) ([]model.Order, error) {
	return m.store.ListOrders(ctx, repository.OrderFilter{SellerID: &sellerID})
}
