package repository

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/roberto3101/sistema-control/internal/model"
)

// MemoryRepository хранит данные в памяти. Используется в тестах и в режиме разработки без БД.
// Транзакция выполняется под общей блокировкой и откатывается восстановлением снимка.
type MemoryRepository struct {
	mu        sync.RWMutex
	txTimeout time.Duration
	now       func() time.Time
	data      memoryData
}

type memoryData struct {
	seq         int64
	users       map[int64]model.User
	clients     map[int64]model.Client
	products    map[int64]model.Product
	visits      map[int64]model.Visit
	orders      map[int64]model.Order
	orderLines  map[int64][]model.OrderLine
	receipts    map[int64]model.Receipt
	assignments map[int64]model.Assignment
}

// NewMemoryRepository создаёт пустое хранилище в памяти.
func NewMemoryRepository(txTimeout time.Duration) *MemoryRepository {
	if txTimeout <= 0 {
		txTimeout = DefaultTxTimeout
	}
	return &MemoryRepository{
		txTimeout: txTimeout,
		now:       time.Now,
		data: memoryData{
			users:       make(map[int64]model.User),
			clients:     make(map[int64]model.Client),
			products:    make(map[int64]model.Product),
			visits:      make(map[int64]model.Visit),
			orders:      make(map[int64]model.Order),
			orderLines:  make(map[int64][]model.OrderLine),
			receipts:    make(map[int64]model.Receipt),
			assignments: make(map[int64]model.Assignment),
		},
	}
}

func (d memoryData) clone() memoryData {
	lines := make(map[int64][]model.OrderLine, len(d.orderLines))
	for id, l := range d.orderLines {
		lines[id] = slices.Clone(l)
	}
	return memoryData{
		seq:         d.seq,
		users:       maps.Clone(d.users),
		clients:     maps.Clone(d.clients),
		products:    maps.Clone(d.products),
		visits:      maps.Clone(d.visits),
		orders:      maps.Clone(d.orders),
		orderLines:  lines,
		receipts:    maps.Clone(d.receipts),
		assignments: maps.Clone(d.assignments),
	}
}

func (d *memoryData) nextID() int64 {
	d.seq++
	return d.seq
}

// Close ничего не делает.
func (m *MemoryRepository) Close() error {
	return nil
}

// Ping всегда успешен.
func (m *MemoryRepository) Ping(context.Context) error {
	return nil
}

// WithinTx выполняет fn атомарно: при ошибке или истечении времени все изменения отменяются.
func (m *MemoryRepository) WithinTx(ctx context.Context, fn TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	txCtx, cancel := context.WithTimeout(ctx, m.txTimeout)
	defer cancel()

	snapshot := m.data.clone()
	defer func() {
		if p := recover(); p != nil {
			m.data = snapshot
			panic(p)
		}
	}()

	err := fn(txCtx, &memoryTx{repo: m})
	if err == nil {
		err = txCtx.Err()
	}
	if err != nil {
		m.data = snapshot
		if ctx.Err() == nil && errors.Is(txCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s: %v", model.ErrTransactionTimeout, m.txTimeout, err)
		}
		return err
	}

	return nil
}

// ─── Чтения и справочники ─────────────────────────────────────────────────────

// CreateUser создаёт пользователя.
func (m *MemoryRepository) CreateUser(_ context.Context, u *model.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.data.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return 0, fmt.Errorf("create user: %w: %s", model.ErrUserExists, u.Email)
		}
	}

	stored := *u
	stored.ID = m.data.nextID()
	stored.CreatedAt = m.now()
	m.data.users[stored.ID] = stored
	return stored.ID, nil
}

// GetUser возвращает пользователя по идентификатору.
func (m *MemoryRepository) GetUser(_ context.Context, id int64) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.user(id)
}

// CreateClient создаёт клиента.
func (m *MemoryRepository) CreateClient(_ context.Context, c *model.Client) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *c
	stored.ID = m.data.nextID()
	stored.CreatedAt = m.now()
	m.data.clients[stored.ID] = stored
	return stored.ID, nil
}

// GetClient возвращает клиента по идентификатору.
func (m *MemoryRepository) GetClient(_ context.Context, id int64) (*model.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.client(id)
}

// ListUnassignedClients возвращает активных клиентов без активного продавца.
func (m *MemoryRepository) ListUnassignedClients(context.Context) ([]model.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	assigned := make(map[int64]bool)
	for _, a := range m.data.assignments {
		if a.Status == model.AssignmentActive {
			assigned[a.ClientID] = true
		}
	}

	var res []model.Client
	for _, c := range m.data.clients {
		if c.Status == model.RecordActive && !assigned[c.ID] {
			res = append(res, c)
		}
	}
	slices.SortFunc(res, func(a, b model.Client) int { return strings.Compare(a.BusinessName, b.BusinessName) })
	return res, nil
}

// CreateProduct создаёт товар.
func (m *MemoryRepository) CreateProduct(_ context.Context, p *model.Product) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.CurrentStock < 0 {
		return 0, fmt.Errorf("create product: %w", model.ErrInsufficientStock)
	}
	for _, existing := range m.data.products {
		if existing.Code == p.Code {
			return 0, fmt.Errorf("create product: %w: %s", model.ErrProductExists, p.Code)
		}
	}

	stored := *p
	stored.ID = m.data.nextID()
	stored.CreatedAt = m.now()
	m.data.products[stored.ID] = stored
	return stored.ID, nil
}

// GetProduct возвращает товар.
func (m *MemoryRepository) GetProduct(_ context.Context, id int64) (*model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.product(id)
}

// ListProducts возвращает активные товары по имени.
func (m *MemoryRepository) ListProducts(context.Context) ([]model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := m.data.filterProducts(func(p model.Product) bool { return p.Status == model.RecordActive })
	slices.SortFunc(res, func(a, b model.Product) int { return strings.Compare(a.Name, b.Name) })
	return res, nil
}

// ListLowStockProducts возвращает активные товары с остатком не выше минимального.
func (m *MemoryRepository) ListLowStockProducts(context.Context) ([]model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := m.data.filterProducts(func(p model.Product) bool { return p.Status == model.RecordActive && p.LowStock() })
	slices.SortFunc(res, func(a, b model.Product) int { return int(a.CurrentStock - b.CurrentStock) })
	return res, nil
}

// CreateVisit сохраняет визит.
func (m *MemoryRepository) CreateVisit(_ context.Context, v *model.Visit) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.data.user(v.SellerID); err != nil {
		return 0, fmt.Errorf("create visit: %w", err)
	}
	if _, err := m.data.client(v.ClientID); err != nil {
		return 0, fmt.Errorf("create visit: %w", err)
	}

	stored := *v
	stored.ID = m.data.nextID()
	m.data.visits[stored.ID] = stored
	return stored.ID, nil
}

// GetOrder возвращает заказ с позициями.
func (m *MemoryRepository) GetOrder(_ context.Context, id int64) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.order(id)
}

// ListOrders возвращает заказы без позиций, новые сначала.
func (m *MemoryRepository) ListOrders(_ context.Context, f OrderFilter) ([]model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var res []model.Order
	for _, o := range m.data.orders {
		if f.match(&o) {
			res = append(res, o)
		}
	}
	slices.SortFunc(res, func(a, b model.Order) int { return int(b.ID - a.ID) })
	return res, nil
}

// GetReceipt возвращает чек.
func (m *MemoryRepository) GetReceipt(_ context.Context, id int64) (*model.Receipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.receipt(id)
}

// ListReceipts возвращает чеки, новые сначала.
func (m *MemoryRepository) ListReceipts(context.Context) ([]model.Receipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := slices.Collect(maps.Values(m.data.receipts))
	slices.SortFunc(res, func(a, b model.Receipt) int { return int(b.ID - a.ID) })
	return res, nil
}

// ActiveAssignmentForClient возвращает активное закрепление клиента.
func (m *MemoryRepository) ActiveAssignmentForClient(_ context.Context, clientID int64) (*model.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.activeAssignment(clientID)
}

// ListActiveAssignments возвращает активные закрепления, новые сначала.
func (m *MemoryRepository) ListActiveAssignments(context.Context) ([]model.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var res []model.Assignment
	for _, a := range m.data.assignments {
		if a.Status == model.AssignmentActive {
			res = append(res, a)
		}
	}
	slices.SortFunc(res, func(a, b model.Assignment) int { return int(b.ID - a.ID) })
	return res, nil
}

// ListSellerWorkload возвращает активных продавцов с числом клиентов, наименее загруженные первыми.
func (m *MemoryRepository) ListSellerWorkload(context.Context) ([]model.SellerWorkload, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[int64]int)
	for _, a := range m.data.assignments {
		if a.Status == model.AssignmentActive {
			counts[a.SellerID]++
		}
	}

	var res []model.SellerWorkload
	for _, u := range m.data.users {
		if u.Role != model.RoleSeller || u.Status != model.UserStatusActive {
			continue
		}
		res = append(res, model.SellerWorkload{
			SellerID:     u.ID,
			FullName:     u.FullName,
			Email:        u.Email,
			TotalClients: counts[u.ID],
		})
	}
	slices.SortFunc(res, func(a, b model.SellerWorkload) int {
		if a.TotalClients != b.TotalClients {
			return a.TotalClients - b.TotalClients
		}
		return strings.Compare(a.FullName, b.FullName)
	})
	return res, nil
}

// ─── Общие выборки по данным ──────────────────────────────────────────────────

func (d *memoryData) user(id int64) (*model.User, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, model.NotFoundf("user %d", id)
	}
	return &u, nil
}

func (d *memoryData) client(id int64) (*model.Client, error) {
	c, ok := d.clients[id]
	if !ok {
		return nil, model.NotFoundf("client %d", id)
	}
	return &c, nil
}

func (d *memoryData) product(id int64) (*model.Product, error) {
	p, ok := d.products[id]
	if !ok {
		return nil, model.NotFoundf("product %d", id)
	}
	return &p, nil
}

func (d *memoryData) filterProducts(keep func(model.Product) bool) []model.Product {
	var res []model.Product
	for _, p := range d.products {
		if keep(p) {
			res = append(res, p)
		}
	}
	return res
}

func (d *memoryData) order(id int64) (*model.Order, error) {
	o, ok := d.orders[id]
	if !ok {
		return nil, model.NotFoundf("order %d", id)
	}
	o.Lines = slices.Clone(d.orderLines[id])
	return &o, nil
}

func (d *memoryData) receipt(id int64) (*model.Receipt, error) {
	r, ok := d.receipts[id]
	if !ok {
		return nil, model.NotFoundf("receipt %d", id)
	}
	return &r, nil
}

func (d *memoryData) activeAssignment(clientID int64) (*model.Assignment, error) {
	for _, a := range d.assignments {
		if a.ClientID == clientID && a.Status == model.AssignmentActive {
			return &a, nil
		}
	}
	return nil, model.NotFoundf("active assignment for client %d", clientID)
}

// ─── Транзакция ───────────────────────────────────────────────────────────────

// memoryTx работает с данными напрямую: вызывающий WithinTx уже держит блокировку.
type memoryTx struct {
	repo *MemoryRepository
}

var _ Tx = (*memoryTx)(nil)

func (t *memoryTx) d() *memoryData {
	return &t.repo.data
}

func (t *memoryTx) GetUser(_ context.Context, id int64) (*model.User, error) {
	return t.d().user(id)
}

func (t *memoryTx) LockUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range t.d().users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, model.NotFoundf("user %s", email)
}

func (t *memoryTx) SetLoginState(_ context.Context, userID int64, failedAttempts int, status model.UserStatus) error {
	u, ok := t.d().users[userID]
	if !ok {
		return model.NotFoundf("user %d", userID)
	}
	u.FailedAttempts = failedAttempts
	u.Status = status
	t.d().users[userID] = u
	return nil
}

func (t *memoryTx) LockClient(_ context.Context, id int64) (*model.Client, error) {
	return t.d().client(id)
}

func (t *memoryTx) GetVisit(_ context.Context, id int64) (*model.Visit, error) {
	v, ok := t.d().visits[id]
	if !ok {
		return nil, model.NotFoundf("visit %d", id)
	}
	return &v, nil
}

func (t *memoryTx) LockProduct(_ context.Context, id int64) (*model.Product, error) {
	return t.d().product(id)
}

func (t *memoryTx) AdjustStock(_ context.Context, productID, delta int64) error {
	p, ok := t.d().products[productID]
	if !ok {
		return model.NotFoundf("product %d", productID)
	}
	if p.CurrentStock+delta < 0 {
		return &model.InsufficientStockError{ProductID: productID, Available: p.CurrentStock, Requested: -delta}
	}
	p.CurrentStock += delta
	t.d().products[productID] = p
	return nil
}

func (t *memoryTx) InsertOrder(_ context.Context, o *model.Order) (int64, error) {
	d := t.d()
	if _, ok := d.clients[o.ClientID]; !ok {
		return 0, fmt.Errorf("insert order: %w", model.NotFoundf("client %d", o.ClientID))
	}
	if _, ok := d.users[o.SellerID]; !ok {
		return 0, fmt.Errorf("insert order: %w", model.NotFoundf("user %d", o.SellerID))
	}
	if o.VisitID != nil {
		if _, ok := d.visits[*o.VisitID]; !ok {
			return 0, fmt.Errorf("insert order: %w", model.NotFoundf("visit %d", *o.VisitID))
		}
	}
	if !o.Total.Equal(o.Subtotal.Add(o.Tax)) {
		return 0, fmt.Errorf("insert order: %w", model.Validationf("total does not match subtotal + tax"))
	}

	o.CreatedAt = t.repo.now()
	stored := *o
	stored.ID = d.nextID()
	stored.Lines = nil
	d.orders[stored.ID] = stored
	return stored.ID, nil
}

func (t *memoryTx) InsertOrderLine(_ context.Context, orderID int64, lineNo int, l *model.OrderLine) (int64, error) {
	d := t.d()
	if _, ok := d.orders[orderID]; !ok {
		return 0, fmt.Errorf("insert order line: %w", model.NotFoundf("order %d", orderID))
	}
	if _, ok := d.products[l.ProductID]; !ok {
		return 0, fmt.Errorf("insert order line: %w", model.NotFoundf("product %d", l.ProductID))
	}
	if l.Quantity <= 0 {
		return 0, fmt.Errorf("insert order line: %w", model.Validationf("quantity must be positive"))
	}
	if lineNo != len(d.orderLines[orderID])+1 {
		return 0, fmt.Errorf("insert order line: %w", model.Validationf("line %d out of order", lineNo))
	}

	stored := *l
	stored.ID = d.nextID()
	stored.OrderID = orderID
	d.orderLines[orderID] = append(d.orderLines[orderID], stored)
	return stored.ID, nil
}

func (t *memoryTx) LockOrder(_ context.Context, id int64) (*model.Order, error) {
	return t.d().order(id)
}

func (t *memoryTx) SetOrderStatus(_ context.Context, id int64, status model.OrderStatus) error {
	o, ok := t.d().orders[id]
	if !ok {
		return model.NotFoundf("order %d", id)
	}
	o.Status = status
	t.d().orders[id] = o
	return nil
}

func (t *memoryTx) NextReceiptNumber(context.Context) (string, error) {
	var last string
	for _, r := range t.d().receipts {
		if r.Number > last {
			last = r.Number
		}
	}
	return model.NextReceiptNumber(last)
}

func (t *memoryTx) ActiveReceiptForOrder(_ context.Context, orderID int64) (*model.Receipt, error) {
	for _, r := range t.d().receipts {
		if r.OrderID == orderID && r.Status != model.ReceiptVoided {
			return &r, nil
		}
	}
	return nil, model.NotFoundf("active receipt for order %d", orderID)
}

func (t *memoryTx) InsertReceipt(_ context.Context, r *model.Receipt) (int64, error) {
	d := t.d()
	if _, ok := d.orders[r.OrderID]; !ok {
		return 0, fmt.Errorf("insert receipt: %w", model.NotFoundf("order %d", r.OrderID))
	}
	for _, existing := range d.receipts {
		if existing.Number == r.Number {
			return 0, fmt.Errorf("insert receipt: %w: %s", model.ErrReceiptNumberConflict, r.Number)
		}
		if existing.OrderID == r.OrderID && existing.Status != model.ReceiptVoided {
			return 0, fmt.Errorf("insert receipt: %w: order %d", model.ErrDuplicateReceipt, r.OrderID)
		}
	}

	r.RegisteredAt = t.repo.now()
	stored := *r
	stored.ID = d.nextID()
	d.receipts[stored.ID] = stored
	return stored.ID, nil
}

func (t *memoryTx) LockReceipt(_ context.Context, id int64) (*model.Receipt, error) {
	return t.d().receipt(id)
}

func (t *memoryTx) MarkReceiptIssued(_ context.Context, id int64, at time.Time) error {
	r, ok := t.d().receipts[id]
	if !ok {
		return model.NotFoundf("receipt %d", id)
	}
	r.Status = model.ReceiptIssued
	r.IssuedAt = &at
	t.d().receipts[id] = r
	return nil
}

func (t *memoryTx) MarkReceiptVoided(_ context.Context, id int64, reason string, actorID int64, at time.Time) error {
	r, ok := t.d().receipts[id]
	if !ok {
		return model.NotFoundf("receipt %d", id)
	}
	r.Status = model.ReceiptVoided
	r.VoidReason = reason
	r.VoidedBy = &actorID
	r.VoidedAt = &at
	t.d().receipts[id] = r
	return nil
}

func (t *memoryTx) ActiveAssignmentForClient(_ context.Context, clientID int64) (*model.Assignment, error) {
	return t.d().activeAssignment(clientID)
}

func (t *memoryTx) PurgeInactiveAssignments(_ context.Context, sellerID, clientID int64) error {
	for id, a := range t.d().assignments {
		if a.SellerID == sellerID && a.ClientID == clientID && a.Status == model.AssignmentInactive {
			delete(t.d().assignments, id)
		}
	}
	return nil
}

func (t *memoryTx) InsertAssignment(_ context.Context, a *model.Assignment) (int64, error) {
	d := t.d()
	if _, ok := d.clients[a.ClientID]; !ok {
		return 0, fmt.Errorf("insert assignment: %w", model.NotFoundf("client %d", a.ClientID))
	}
	if _, ok := d.users[a.SellerID]; !ok {
		return 0, fmt.Errorf("insert assignment: %w", model.NotFoundf("user %d", a.SellerID))
	}
	if a.Status == model.AssignmentActive {
		if _, err := d.activeAssignment(a.ClientID); err == nil {
			return 0, fmt.Errorf("insert assignment: %w: client %d", model.ErrAlreadyAssigned, a.ClientID)
		}
	}

	a.AssignedAt = t.repo.now()
	stored := *a
	stored.ID = d.nextID()
	d.assignments[stored.ID] = stored
	return stored.ID, nil
}

func (t *memoryTx) LockAssignment(_ context.Context, id int64) (*model.Assignment, error) {
	a, ok := t.d().assignments[id]
	if !ok {
		return nil, model.NotFoundf("assignment %d", id)
	}
	return &a, nil
}

func (t *memoryTx) DeleteAssignment(_ context.Context, id int64) error {
	if _, ok := t.d().assignments[id]; !ok {
		return model.NotFoundf("assignment %d", id)
	}
	delete(t.d().assignments, id)
	return nil
}

func (t *memoryTx) SetAssignmentStatus(_ context.Context, id int64, status model.AssignmentStatus) error {
	a, ok := t.d().assignments[id]
	if !ok {
		return model.NotFoundf("assignment %d", id)
	}
	if status == model.AssignmentActive && a.Status != model.AssignmentActive {
		if _, err := t.d().activeAssignment(a.ClientID); err == nil {
			return fmt.Errorf("%w: client %d", model.ErrAlreadyAssigned, a.ClientID)
		}
	}
	a.Status = status
	t.d().assignments[id] = a
	return nil
}
