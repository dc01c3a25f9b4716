package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/roberto3101/sistema-control/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// querier реализуют и *pgxpool.Pool, и pgx.Tx, поэтому чтения используются в обоих контекстах.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository предоставляет доступ к хранилищу данных в PostgreSQL.
type PostgresRepository struct {
	pool        *pgxpool.Pool
	txTimeout   time.Duration
	retryDelays []time.Duration
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string, txTimeout time.Duration) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if txTimeout <= 0 {
		txTimeout = DefaultTxTimeout
	}

	r := &PostgresRepository{
		pool:        pool,
		txTimeout:   txTimeout,
		retryDelays: []time.Duration{50 * time.Millisecond, 150 * time.Millisecond, 400 * time.Millisecond},
	}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// Ping проверяет доступность БД.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// WithinTx выполняет fn в одной транзакции READ COMMITTED с ограничением по времени.
// Конфликты сериализации и взаимоблокировки повторяются, истечение времени возвращается как model.ErrTransactionTimeout.
func (r *PostgresRepository) WithinTx(ctx context.Context, fn TxFunc) error {
	return r.withRetry(ctx, func() error {
		txCtx, cancel := context.WithTimeout(ctx, r.txTimeout)
		defer cancel()

		err := r.runTx(txCtx, fn)
		if err != nil && ctx.Err() == nil && errors.Is(txCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s: %v", model.ErrTransactionTimeout, r.txTimeout, err)
		}
		return err
	})
}

func (r *PostgresRepository) runTx(ctx context.Context, fn TxFunc) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &pgTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", classify(err))
	}

	return nil
}

func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error

	for i := 0; i <= len(r.retryDelays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		// Если ошибка контекста: выходим сразу
		if errors.Is(err, context.Canceled) || errors.Is(err, model.ErrTransactionTimeout) || ctx.Err() != nil {
			return err
		}

		if i == len(r.retryDelays) {
			break
		}

		var pgErr *pgconn.PgError
		retryable := errors.As(err, &pgErr) &&
			(pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected)

		if !retryable && !isConnectionError(err) {
			break
		}

		timer := time.NewTimer(r.retryDelays[i])
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}

	return err
}

// isConnectionError сообщает, что запрос не дошёл до сервера или соединение было потеряно.
func isConnectionError(err error) bool {
	if pgconn.SafeToRetry(err) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgerrcode.IsConnectionException(pgErr.Code)
}

// classify переводит ошибки ограничений PostgreSQL в доменные ошибки.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		switch pgErr.ConstraintName {
		case "receipts_number_key":
			return fmt.Errorf("%w: %s", model.ErrReceiptNumberConflict, pgErr.Detail)
		case "receipts_one_active_per_order":
			return fmt.Errorf("%w: %s", model.ErrDuplicateReceipt, pgErr.Detail)
		case "assignments_one_active_per_client":
			return fmt.Errorf("%w: %s", model.ErrAlreadyAssigned, pgErr.Detail)
		case "users_email_key":
			return fmt.Errorf("%w: %s", model.ErrUserExists, pgErr.Detail)
		case "products_code_key":
			return fmt.Errorf("%w: %s", model.ErrProductExists, pgErr.Detail)
		}
	case pgerrcode.CheckViolation:
		if pgErr.ConstraintName == "products_stock_non_negative" {
			return fmt.Errorf("%w: %s", model.ErrInsufficientStock, pgErr.Message)
		}
		return fmt.Errorf("%w: %s", model.ErrValidation, pgErr.Message)
	case pgerrcode.ForeignKeyViolation:
		return fmt.Errorf("%w: %s", model.ErrNotFound, pgErr.Detail)
	}

	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

// ─── Пользователи ─────────────────────────────────────────────────────────────

const userColumns = `id, full_name, email, password_hash, role, status, failed_attempts, created_at`

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u      model.User
		role   string
		status string
	)
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &role, &status, &u.FailedAttempts, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	u.Status = model.UserStatus(status)
	return &u, nil
}

func getUser(ctx context.Context, q querier, query string, arg any) (*model.User, error) {
	u, err := scanUser(q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NotFoundf("user %v", arg)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// CreateUser создаёт нового пользователя.
func (r *PostgresRepository) CreateUser(ctx context.Context, u *model.User) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (full_name, email, password_hash, role, status) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		u.FullName, u.Email, u.PasswordHash, string(u.Role), string(u.Status),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", classify(err))
	}
	return id, nil
}

// GetUser возвращает пользователя по идентификатору.
func (r *PostgresRepository) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return getUser(ctx, r.pool, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// ─── Клиенты ──────────────────────────────────────────────────────────────────

const clientColumns = `id, business_name, contact_name, document, phone, address, district, status, created_at`

func scanClient(row rowScanner) (*model.Client, error) {
	var (
		c      model.Client
		status string
	)
	if err := row.Scan(&c.ID, &c.BusinessName, &c.ContactName, &c.Document, &c.Phone, &c.Address, &c.District, &status, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Status = model.RecordStatus(status)
	return &c, nil
}

func getClient(ctx context.Context, q querier, id int64, lock bool) (*model.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	c, err := scanClient(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NotFoundf("client %d", id)
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

// CreateClient создаёт клиента.
func (r *PostgresRepository) CreateClient(ctx context.Context, c *model.Client) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO clients (business_name, contact_name, document, phone, address, district, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		c.BusinessName, c.ContactName, c.Document, c.Phone, c.Address, c.District, string(c.Status),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create client: %w", classify(err))
	}
	return id, nil
}

// GetClient возвращает клиента по идентификатору.
func (r *PostgresRepository) GetClient(ctx context.Context, id int64) (*model.Client, error) {
	return getClient(ctx, r.pool, id, false)
}

// ListUnassignedClients возвращает активных клиентов без активного продавца.
func (r *PostgresRepository) ListUnassignedClients(ctx context.Context) ([]model.Client, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+clientColumns+`
		 FROM clients c
		 WHERE c.status = $1
		   AND NOT EXISTS (
		       SELECT 1 FROM assignments a WHERE a.client_id = c.id AND a.status = $2
		   )
		 ORDER BY c.business_name`,
		string(model.RecordActive), string(model.AssignmentActive),
	)
	if err != nil {
		return nil, fmt.Errorf("select unassigned clients: %w", err)
	}
	defer rows.Close()

	var res []model.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		res = append(res, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// ─── Товары ───────────────────────────────────────────────────────────────────

const productColumns = `id, code, name, description, unit_price, current_stock, minimum_stock, unit, status, created_at`

func scanProduct(row rowScanner) (*model.Product, error) {
	var (
		p      model.Product
		status string
	)
	if err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.UnitPrice, &p.CurrentStock, &p.MinimumStock, &p.Unit, &status, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Status = model.RecordStatus(status)
	return &p, nil
}

func getProduct(ctx context.Context, q querier, id int64, lock bool) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	p, err := scanProduct(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NotFoundf("product %d", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) queryProducts(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var res []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		res = append(res, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// CreateProduct создаёт товар.
func (r *PostgresRepository) CreateProduct(ctx context.Context, p *model.Product) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (code, name, description, unit_price, current_stock, minimum_stock, unit, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		p.Code, p.Name, p.Description, p.UnitPrice, p.CurrentStock, p.MinimumStock, p.Unit, string(p.Status),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create product: %w", classify(err))
	}
	return id, nil
}

// GetProduct возвращает товар без блокировки.
func (r *PostgresRepository) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return getProduct(ctx, r.pool, id, false)
}

// ListProducts возвращает активные товары.
func (r *PostgresRepository) ListProducts(ctx context.Context) ([]model.Product, error) {
	return r.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE status = $1 ORDER BY name`,
		string(model.RecordActive),
	)
}

// ListLowStockProducts возвращает активные товары, остаток которых не выше минимального.
func (r *PostgresRepository) ListLowStockProducts(ctx context.Context) ([]model.Product, error) {
	return r.queryProducts(ctx,
		`SELECT `+productColumns+`
		 FROM products
		 WHERE status = $1 AND current_stock <= minimum_stock
		 ORDER BY current_stock`,
		string(model.RecordActive),
	)
}

// ─── Визиты ───────────────────────────────────────────────────────────────────

func getVisit(ctx context.Context, q querier, id int64) (*model.Visit, error) {
	var (
		v      model.Visit
		status string
	)
	err := q.QueryRow(ctx,
		`SELECT id, seller_id, client_id, scheduled_at, kind, status, notes, result FROM visits WHERE id = $1`,
		id,
	).Scan(&v.ID, &v.SellerID, &v.ClientID, &v.ScheduledAt, &v.Kind, &status, &v.Notes, &v.Result)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NotFoundf("visit %d", id)
		}
		return nil, fmt.Errorf("get visit: %w", err)
	}
	v.Status = model.VisitStatus(status)
	return &v, nil
}

// CreateVisit сохраняет визит продавца.
func (r *PostgresRepository) CreateVisit(ctx context.Context, v *model.Visit) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO visits (seller_id, client_id, scheduled_at, kind, status, notes, result)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		v.SellerID, v.ClientID, v.ScheduledAt, v.Kind, string(v.Status), v.Notes, v.Result,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create visit: %w", classify(err))
	}
	return id, nil
}

// ─── Заказы ───────────────────────────────────────────────────────────────────

const orderColumns = `id, client_id, seller_id, visit_id, subtotal, tax, total, notes, status, created_at`

func scanOrder(row rowScanner) (*model.Order, error) {
	var (
		o      model.Order
		status string
	)
	if err := row.Scan(&o.ID, &o.ClientID, &o.SellerID, &o.VisitID, &o.Subtotal, &o.Tax, &o.Total, &o.Notes, &status, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.Status = model.OrderStatus(status)
	return &o, nil
}

func getOrder(ctx context.Context, q querier, id int64, lock bool) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	o, err := scanOrder(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NotFoundf("order %d", id)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	lines, err := getOrderLines(ctx, q, id)
	if err != nil {
		return nil, err
	}
	o.Lines = lines

	return o, nil
}

func getOrderLines(ctx context.Context, q querier, orderID int64) ([]model.OrderLine, error) {
	rows, err := q.Query(ctx,
		`SELECT id, order_id, product_id, quantity, unit_price, subtotal
		 FROM order_lines
		 WHERE order_id = $1
		 ORDER BY line_no`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("select order lines: %w", err)
	}
	defer rows.Close()

	var lines []model.OrderLine
	for rows.Next() {
		var l model.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return lines, nil
}

// GetOrder возвращает заказ вместе с позициями.
func (r *PostgresRepository) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	return getOrder(ctx, r.pool, id, false)
}

// ListOrders возвращает заголовки заказов, новые сначала.
func (r *PostgresRepository) ListOrders(ctx context.Context, f OrderFilter) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1 = 1`
	var args []any

	if f.SellerID != nil {
		args = append(args, *f.SellerID)
		query += fmt.Sprintf(" AND seller_id = $%d", len(args))
	}
	if f.Status != nil {
		args = append(args, string(*f.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

// ─── Чеки ─────────────────────────────────────────────────────────────────────

const receiptColumns = `id, number, order_id, seller_id, client_id, subtotal, tax, total, status, clerk_id,
	void_reason, voided_at, voided_by, registered_at, issued_at`

func scanReceipt(row rowScanner) (*model.Receipt, error) {
	var (
		rc     model.Receipt
		status string
	)
	if err := row.Scan(&rc.ID, &rc.Number, &rc.OrderID, &rc.SellerID, &rc.ClientID, &rc.Subtotal, &rc.Tax, &rc.Total,
		&status, &rc.ClerkID, &rc.VoidReason, &rc.VoidedAt, &rc.VoidedBy, &rc.RegisteredAt, &rc.IssuedAt); err != nil {
		return nil, err
	}
	rc.Status = model.ReceiptStatus(status)
	return &rc, nil
}

func getReceipt(ctx context.Context, q querier, id int64, lock bool) (*model.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	rc, err := scanReceipt(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NotFoundf("receipt %d", id)
		}
		return nil, fmt.Errorf("get receipt: %w", err)
	}
	return rc, nil
}

// GetReceipt возвращает чек по идентификатору.
func (r *PostgresRepository) GetReceipt(ctx context.Context, id int64) (*model.Receipt, error) {
	return getReceipt(ctx, r.pool, id, false)
}

// ListReceipts возвращает все чеки, новые сначала.
func (r *PostgresRepository) ListReceipts(ctx context.Context) ([]model.Receipt, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+receiptColumns+` FROM receipts ORDER BY registered_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("select receipts: %w", err)
	}
	defer rows.Close()

	var res []model.Receipt
	for rows.Next() {
		rc, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		res = append(res, *rc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// ─── Закрепления ──────────────────────────────────────────────────────────────

const assignmentColumns = `id, client_id, seller_id, status, assigned_at`

func scanAssignment(row rowScanner) (*model.Assignment, error) {
	var (
		a      model.Assignment
		status string
	)
	if err := row.Scan(&a.ID, &a.ClientID, &a.SellerID, &status, &a.AssignedAt); err != nil {
		return nil, err
	}
	a.Status = model.AssignmentStatus(status)
	return &a, nil
}

func activeAssignmentForClient(ctx context.Context, q querier, clientID int64) (*model.Assignment, error) {
	a, err := scanAssignment(q.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE client_id = $1 AND status = $2`,
		clientID, string(model.AssignmentActive),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NotFoundf("active assignment for client %d", clientID)
		}
		return nil, fmt.Errorf("get active assignment: %w", err)
	}
	return a, nil
}

// ActiveAssignmentForClient возвращает активное закрепление клиента.
func (r *PostgresRepository) ActiveAssignmentForClient(ctx context.Context, clientID int64) (*model.Assignment, error) {
	return activeAssignmentForClient(ctx, r.pool, clientID)
}

// ListActiveAssignments возвращает все активные закрепления.
func (r *PostgresRepository) ListActiveAssignments(ctx context.Context) ([]model.Assignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE status = $1 ORDER BY assigned_at DESC, id DESC`,
		string(model.AssignmentActive),
	)
	if err != nil {
		return nil, fmt.Errorf("select assignments: %w", err)
	}
	defer rows.Close()

	var res []model.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		res = append(res, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// ListSellerWorkload возвращает активных продавцов с числом клиентов, наименее загруженные первыми.
func (r *PostgresRepository) ListSellerWorkload(ctx context.Context) ([]model.SellerWorkload, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.full_name, u.email, COUNT(a.id)
		 FROM users u
		 LEFT JOIN assignments a ON a.seller_id = u.id AND a.status = $1
		 WHERE u.role = $2 AND u.status = $3
		 GROUP BY u.id, u.full_name, u.email
		 ORDER BY COUNT(a.id), u.full_name`,
		string(model.AssignmentActive), string(model.RoleSeller), string(model.UserStatusActive),
	)
	if err != nil {
		return nil, fmt.Errorf("select seller workload: %w", err)
	}
	defer rows.Close()

	var res []model.SellerWorkload
	for rows.Next() {
		var w model.SellerWorkload
		if err := rows.Scan(&w.SellerID, &w.FullName, &w.Email, &w.TotalClients); err != nil {
			return nil, fmt.Errorf("scan seller workload: %w", err)
		}
		res = append(res, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}
