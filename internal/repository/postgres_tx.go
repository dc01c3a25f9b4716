package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/roberto3101/sistema-control/internal/model"
)

// receiptsLockKey передаётся в pg_advisory_xact_lock при выдаче номера чека.
const receiptsLockKey = "receipts.number"

// pgTx реализует Tx поверх открытой транзакции pgx.
type pgTx struct {
	tx pgx.Tx
}

var _ Tx = (*pgTx)(nil)

func (t *pgTx) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return getUser(ctx, t.tx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (t *pgTx) LockUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return getUser(ctx, t.tx, `SELECT `+userColumns+` FROM users WHERE email = $1 FOR UPDATE`, email)
}

func (t *pgTx) SetLoginState(ctx context.Context, userID int64, failedAttempts int, status model.UserStatus) error {
	return t.execOne(ctx, "user", userID,
		`UPDATE users SET failed_attempts = $1, status = $2 WHERE id = $3`,
		failedAttempts, string(status), userID,
	)
}

func (t *pgTx) LockClient(ctx context.Context, id int64) (*model.Client, error) {
	return getClient(ctx, t.tx, id, true)
}

func (t *pgTx) GetVisit(ctx context.Context, id int64) (*model.Visit, error) {
	return getVisit(ctx, t.tx, id)
}

func (t *pgTx) LockProduct(ctx context.Context, id int64) (*model.Product, error) {
	return getProduct(ctx, t.tx, id, true)
}

// AdjustStock меняет остаток на delta. Уход в минус отклоняется ограничением products_stock_non_negative.
func (t *pgTx) AdjustStock(ctx context.Context, productID, delta int64) error {
	var stock int64
	err := t.tx.QueryRow(ctx,
		`UPDATE products SET current_stock = current_stock + $1 WHERE id = $2 RETURNING current_stock`,
		delta, productID,
	).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.NotFoundf("product %d", productID)
		}
		return fmt.Errorf("adjust stock: %w", classify(err))
	}
	return nil
}

func (t *pgTx) InsertOrder(ctx context.Context, o *model.Order) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO orders (client_id, seller_id, visit_id, subtotal, tax, total, notes, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		o.ClientID, o.SellerID, o.VisitID, o.Subtotal, o.Tax, o.Total, o.Notes, string(o.Status),
	).Scan(&id, &o.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", classify(err))
	}
	return id, nil
}

func (t *pgTx) InsertOrderLine(ctx context.Context, orderID int64, lineNo int, l *model.OrderLine) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO order_lines (order_id, line_no, product_id, quantity, unit_price, subtotal)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		orderID, lineNo, l.ProductID, l.Quantity, l.UnitPrice, l.Subtotal,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert order line: %w", classify(err))
	}
	return id, nil
}

func (t *pgTx) LockOrder(ctx context.Context, id int64) (*model.Order, error) {
	return getOrder(ctx, t.tx, id, true)
}

func (t *pgTx) SetOrderStatus(ctx context.Context, id int64, status model.OrderStatus) error {
	return t.execOne(ctx, "order", id, `UPDATE orders SET status = $1 WHERE id = $2`, string(status), id)
}

// NextReceiptNumber берёт транзакционную advisory-блокировку и возвращает номер после наибольшего выданного.
// Блокировка снимается при COMMIT или ROLLBACK, поэтому две транзакции не получат один номер.
func (t *pgTx) NextReceiptNumber(ctx context.Context) (string, error) {
	if _, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, receiptsLockKey); err != nil {
		return "", fmt.Errorf("lock receipt numbering: %w", err)
	}

	var last string
	err := t.tx.QueryRow(ctx, `SELECT number FROM receipts ORDER BY number DESC LIMIT 1`).Scan(&last)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("select last receipt number: %w", err)
	}

	return model.NextReceiptNumber(last)
}

func (t *pgTx) ActiveReceiptForOrder(ctx context.Context, orderID int64) (*model.Receipt, error) {
	rc, err := scanReceipt(t.tx.QueryRow(ctx,
		`SELECT `+receiptColumns+` FROM receipts WHERE order_id = $1 AND status <> $2`,
		orderID, string(model.ReceiptVoided),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NotFoundf("active receipt for order %d", orderID)
		}
		return nil, fmt.Errorf("get active receipt: %w", err)
	}
	return rc, nil
}

func (t *pgTx) InsertReceipt(ctx context.Context, r *model.Receipt) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO receipts (number, order_id, seller_id, client_id, subtotal, tax, total, status, clerk_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, registered_at`,
		r.Number, r.OrderID, r.SellerID, r.ClientID, r.Subtotal, r.Tax, r.Total, string(r.Status), r.ClerkID,
	).Scan(&id, &r.RegisteredAt)
	if err != nil {
		return 0, fmt.Errorf("insert receipt: %w", classify(err))
	}
	return id, nil
}

func (t *pgTx) LockReceipt(ctx context.Context, id int64) (*model.Receipt, error) {
	return getReceipt(ctx, t.tx, id, true)
}

func (t *pgTx) MarkReceiptIssued(ctx context.Context, id int64, at time.Time) error {
	return t.execOne(ctx, "receipt", id,
		`UPDATE receipts SET status = $1, issued_at = $2 WHERE id = $3`,
		string(model.ReceiptIssued), at, id,
	)
}

func (t *pgTx) MarkReceiptVoided(ctx context.Context, id int64, reason string, actorID int64, at time.Time) error {
	return t.execOne(ctx, "receipt", id,
		`UPDATE receipts SET status = $1, void_reason = $2, voided_by = $3, voided_at = $4 WHERE id = $5`,
		string(model.ReceiptVoided), reason, actorID, at, id,
	)
}

func (t *pgTx) ActiveAssignmentForClient(ctx context.Context, clientID int64) (*model.Assignment, error) {
	return activeAssignmentForClient(ctx, t.tx, clientID)
}

// PurgeInactiveAssignments удаляет прежние неактивные записи той же пары продавец-клиент.
func (t *pgTx) PurgeInactiveAssignments(ctx context.Context, sellerID, clientID int64) error {
	_, err := t.tx.Exec(ctx,
		`DELETE FROM assignments WHERE seller_id = $1 AND client_id = $2 AND status = $3`,
		sellerID, clientID, string(model.AssignmentInactive),
	)
	if err != nil {
		return fmt.Errorf("purge inactive assignments: %w", err)
	}
	return nil
}

func (t *pgTx) InsertAssignment(ctx context.Context, a *model.Assignment) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO assignments (client_id, seller_id, status) VALUES ($1, $2, $3) RETURNING id, assigned_at`,
		a.ClientID, a.SellerID, string(a.Status),
	).Scan(&id, &a.AssignedAt)
	if err != nil {
		return 0, fmt.Errorf("insert assignment: %w", classify(err))
	}
	return id, nil
}

func (t *pgTx) LockAssignment(ctx context.Context, id int64) (*model.Assignment, error) {
	a, err := scanAssignment(t.tx.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE id = $1 FOR UPDATE`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NotFoundf("assignment %d", id)
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

func (t *pgTx) DeleteAssignment(ctx context.Context, id int64) error {
	return t.execOne(ctx, "assignment", id, `DELETE FROM assignments WHERE id = $1`, id)
}

func (t *pgTx) SetAssignmentStatus(ctx context.Context, id int64, status model.AssignmentStatus) error {
	return t.execOne(ctx, "assignment", id,
		`UPDATE assignments SET status = $1 WHERE id = $2`, string(status), id,
	)
}

// execOne выполняет запрос, который должен затронуть ровно одну строку.
func (t *pgTx) execOne(ctx context.Context, entity string, id int64, sql string, args ...any) error {
	tag, err := t.tx.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", entity, classify(err))
	}
	if tag.RowsAffected() == 0 {
		return model.NotFoundf("%s %d", entity, id)
	}
	return nil
}
