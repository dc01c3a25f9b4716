package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/roberto3101/sistema-control/internal/model"
	"github.com/roberto3101/sistema-control/internal/repository"
)

// receiptNumberRetries: сколько раз повторяется транзакция при коллизии номера чека.
const receiptNumberRetries = 2

// ReceiptIssuer выписывает чеки по заказам и ведёт их жизненный цикл.
type ReceiptIssuer struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewReceiptIssuer создаёт сервис чеков.
func NewReceiptIssuer(store Store, logger *zap.Logger) *ReceiptIssuer {
	return &ReceiptIssuer{store: store, logger: logger, now: time.Now}
}

// GenerateFromOrder выписывает чек по заказу в статусе registrada.
// Номер выделяется в той же транзакции, что и вставка чека.
func (ri *ReceiptIssuer) GenerateFromOrder(ctx context.Context, orderID, clerkID int64) (int64, error) {
	var (
		receiptID int64
		number    string
		err       error
	)

	for attempt := 0; attempt <= receiptNumberRetries; attempt++ {
		receiptID, number, err = ri.generate(ctx, orderID, clerkID)
		if !errors.Is(err, model.ErrReceiptNumberConflict) {
			break
		}
		ri.logger.Warn("receipt number collision, retrying",
			zap.Int64("order_id", orderID),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	if err != nil {
		return 0, fmt.Errorf("generate receipt: %w", err)
	}

	ri.logger.Info("receipt generated",
		zap.Int64("receipt_id", receiptID),
		zap.String("number", number),
		zap.Int64("order_id", orderID),
	)

	return receiptID, nil
}

func (ri *ReceiptIssuer) generate(ctx context.Context, orderID, clerkID int64) (int64, string, error) {
	var (
		receiptID int64
		number    string
	)

	err := ri.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == model.OrderVoided {
			return fmt.Errorf("%w: order %d is voided", model.ErrInvalidState, orderID)
		}

		existing, err := tx.ActiveReceiptForOrder(ctx, orderID)
		if err == nil {
			return fmt.Errorf("%w: order %d has receipt %s", model.ErrDuplicateReceipt, orderID, existing.Number)
		}
		if !isNotFound(err) {
			return err
		}

		if _, err := tx.GetUser(ctx, clerkID); err != nil {
			return err
		}

		number, err = tx.NextReceiptNumber(ctx)
		if err != nil {
			return err
		}

		receiptID, err = tx.InsertReceipt(ctx, &model.Receipt{
			Number:   number,
			OrderID:  order.ID,
			SellerID: order.SellerID,
			ClientID: order.ClientID,
			Subtotal: order.Subtotal,
			Tax:      order.Tax,
			Total:    order.Total,
			Status:   model.ReceiptRegistered,
			ClerkID:  clerkID,
		})
		return err
	})

	return receiptID, number, err
}

// Issue переводит чек из registrada в emitida.
func (ri *ReceiptIssuer) Issue(ctx context.Context, receiptID int64) error {
	err := ri.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		r, err := tx.LockReceipt(ctx, receiptID)
		if err != nil {
			return err
		}

		switch r.Status {
		case model.ReceiptIssued:
			return fmt.Errorf("%w: %s", model.ErrAlreadyIssued, r.Number)
		case model.ReceiptVoided:
			return fmt.Errorf("%w: receipt %s is voided", model.ErrInvalidState, r.Number)
		}

		return tx.MarkReceiptIssued(ctx, receiptID, ri.now())
	})
	if err != nil {
		return fmt.Errorf("issue receipt: %w", err)
	}
	return nil
}

// Void аннулирует чек, сохраняя причину, время и автора. Чек не удаляется.
func (ri *ReceiptIssuer) Void(ctx context.Context, receiptID int64, reason string, actorID int64) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return model.Validationf("void reason is required")
	}

	err := ri.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		r, err := tx.LockReceipt(ctx, receiptID)
		if err != nil {
			return err
		}
		if r.Status == model.ReceiptVoided {
			return fmt.Errorf("%w: receipt %s is already voided", model.ErrInvalidState, r.Number)
		}

		return tx.MarkReceiptVoided(ctx, receiptID, reason, actorID, ri.now())
	})
	if err != nil {
		return fmt.Errorf("void receipt: %w", err)
	}

	ri.logger.Info("receipt voided", zap.Int64("receipt_id", receiptID), zap.Int64("actor_id", actorID))
	return nil
}

// GetReceipt возвращает чек.
func (ri *ReceiptIssuer) GetReceipt(ctx context.Context, receiptID int64) (*model.Receipt, error) {
	return ri.store.GetReceipt(ctx, receiptID)
}

// ListReceipts возвращает все чеки.
func (ri *ReceiptIssuer) ListReceipts(ctx context.Context) ([]model.Receipt, error) {
	return ri.store.ListReceipts(ctx)
}
