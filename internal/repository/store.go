// Package repository содержит хранилища данных системы: PostgreSQL и in-memory.
package repository

import (
	"context"
	"time"

	"github.com/roberto3101/sistema-control/internal/model"
)

// DefaultTxTimeout ограничивает длительность одной транзакции, если не задано иное.
const DefaultTxTimeout = 5 * time.Second

// TxFunc: тело транзакции. Ошибка приводит к откату всех изменений.
type TxFunc func(ctx context.Context, tx Tx) error

// Tx: операции, выполняемые внутри одной транзакции хранилища.
// Методы Lock* блокируют строку до конца транзакции.
// Отсутствующие сущности возвращаются как model.ErrNotFound.
type Tx interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
	LockUserByEmail(ctx context.Context, email string) (*model.User, error)
	SetLoginState(ctx context.Context, userID int64, failedAttempts int, status model.UserStatus) error

	LockClient(ctx context.Context, id int64) (*model.Client, error)
	GetVisit(ctx context.Context, id int64) (*model.Visit, error)

	LockProduct(ctx context.Context, id int64) (*model.Product, error)
	AdjustStock(ctx context.Context, productID, delta int64) error

	InsertOrder(ctx context.Context, o *model.Order) (int64, error)
	InsertOrderLine(ctx context.Context, orderID int64, lineNo int, l *model.OrderLine) (int64, error)
	LockOrder(ctx context.Context, id int64) (*model.Order, error)
	SetOrderStatus(ctx context.Context, id int64, status model.OrderStatus) error

	// NextReceiptNumber сериализует выдачу номеров до конца транзакции.
	NextReceiptNumber(ctx context.Context) (string, error)
	ActiveReceiptForOrder(ctx context.Context, orderID int64) (*model.Receipt, error)
	InsertReceipt(ctx context.Context, r *model.Receipt) (int64, error)
	LockReceipt(ctx context.Context, id int64) (*model.Receipt, error)
	MarkReceiptIssued(ctx context.Context, id int64, at time.Time) error
	MarkReceiptVoided(ctx context.Context, id int64, reason string, actorID int64, at time.Time) error

	ActiveAssignmentForClient(ctx context.Context, clientID int64) (*model.Assignment, error)
	PurgeInactiveAssignments(ctx context.Context, sellerID, clientID int64) error
	InsertAssignment(ctx context.Context, a *model.Assignment) (int64, error)
	LockAssignment(ctx context.Context, id int64) (*model.Assignment, error)
	DeleteAssignment(ctx context.Context, id int64) error
	SetAssignmentStatus(ctx context.Context, id int64, status model.AssignmentStatus) error
}

// OrderFilter ограничивает выборку заказов.
type OrderFilter struct {
	SellerID *int64
	Status   *model.OrderStatus
}

func (f OrderFilter) match(o *model.Order) bool {
	if f.SellerID != nil && o.SellerID != *f.SellerID {
		return false
	}
	if f.Status != nil && o.Status != *f.Status {
		return false
	}
	return true
}
