// Package handler содержит HTTP-обработчики REST API системы.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/roberto3101/sistema-control/internal/middleware"
	"github.com/roberto3101/sistema-control/internal/model"
	"github.com/roberto3101/sistema-control/internal/service"
)

// Accounts: вход и учётные записи.
type Accounts interface {
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	Register(ctx context.Context, in service.RegisterInput) (int64, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
}

// Catalog: товары, клиенты и визиты.
type Catalog interface {
	CreateProduct(ctx context.Context, in service.ProductInput) (int64, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	ListLowStock(ctx context.Context) ([]model.Product, error)
	Replenish(ctx context.Context, productID, qty int64) (int64, error)
	CreateClient(ctx context.Context, in service.ClientInput) (int64, error)
	GetClient(ctx context.Context, id int64) (*model.Client, error)
	CreateVisit(ctx context.Context, in service.VisitInput) (int64, error)
}

// Inventory: предварительная проверка остатков.
type Inventory interface {
	CheckAvailability(ctx context.Context, productID, requested int64) (model.Availability, error)
}

// Orders: оформление заказов и смена статусов.
type Orders interface {
	PlaceOrder(ctx context.Context, in service.PlaceOrderInput) (int64, error)
	ChangeStatus(ctx context.Context, orderID int64, target model.OrderStatus) error
	GetOrder(ctx context.Context, orderID int64) (*model.Order, error)
	ListOrders(ctx context.Context, status *model.OrderStatus) ([]model.Order, error)
	ListOrdersBySeller(ctx context.Context, sellerID int64) ([]model.Order, error)
}

// Receipts: выписка, выдача и аннулирование чеков.
type Receipts interface {
	GenerateFromOrder(ctx context.Context, orderID, clerkID int64) (int64, error)
	Issue(ctx context.Context, receiptID int64) error
	Void(ctx context.Context, receiptID int64, reason string, actorID int64) error
	GetReceipt(ctx context.Context, receiptID int64) (*model.Receipt, error)
	ListReceipts(ctx context.Context) ([]model.Receipt, error)
}

// Assignments: закрепление клиентов за продавцами.
type Assignments interface {
	Assign(ctx context.Context, sellerID, clientID int64) (int64, error)
	Reassign(ctx context.Context, assignmentID, newSellerID int64) (int64, error)
	Unassign(ctx context.Context, assignmentID int64) error
	ListActiveAssignments(ctx context.Context) ([]model.Assignment, error)
	ListUnassignedClients(ctx context.Context) ([]model.Client, error)
	ListSellerWorkload(ctx context.Context) ([]model.SellerWorkload, error)
}

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services объединяет зависимости обработчиков.
type Services struct {
	Accounts    Accounts
	Catalog     Catalog
	Inventory   Inventory
	Orders      Orders
	Receipts    Receipts
	Assignments Assignments
	Health      Pinger
}

// Handler реализует HTTP-обработчики API.
type Handler struct {
	svc            Services
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	allowedOrigins []string
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(svc Services, logger *zap.Logger, auth *middleware.AuthMiddleware, allowedOrigins []string) *Handler {
	return &Handler{
		svc:            svc,
		logger:         logger,
		authMiddleware: auth,
		allowedOrigins: allowedOrigins,
	}
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: status < http.StatusBadRequest, Message: message, Data: data}); err != nil {
		h.logger.Error("encode response error", zap.Error(err))
	}
}

// writeError отображает доменную ошибку в HTTP-статус.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)

	var data any
	var stockErr *model.InsufficientStockError
	if errors.As(err, &stockErr) {
		data = map[string]int64{
			"id_producto":         stockErr.ProductID,
			"stock_disponible":    stockErr.Available,
			"cantidad_solicitada": stockErr.Requested,
		}
	}

	message := err.Error()
	switch status {
	case http.StatusInternalServerError:
		h.logger.Error("request failed", zap.Error(err), zap.String("path", r.URL.Path))
		message = http.StatusText(status)
	case http.StatusServiceUnavailable:
		w.Header().Set("Retry-After", "1")
	}

	h.writeJSON(w, status, message, data)
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrAccountLocked), errors.Is(err, model.ErrAccountInactive):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInsufficientStock),
		errors.Is(err, model.ErrDuplicateReceipt),
		errors.Is(err, model.ErrReceiptNumberConflict),
		errors.Is(err, model.ErrAlreadyAssigned),
		errors.Is(err, model.ErrAlreadyIssued),
		errors.Is(err, model.ErrUserExists),
		errors.Is(err, model.ErrProductExists):
		return http.StatusConflict
	case errors.Is(err, model.ErrInvalidState), errors.Is(err, model.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	case model.IsRetryable(err):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeJSON(w, http.StatusBadRequest, "invalid JSON body", nil)
		return false
	}
	return true
}

func (h *Handler) idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeJSON(w, http.StatusBadRequest, "invalid id", nil)
		return 0, false
	}
	return id, true
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (middleware.Principal, bool) {
	p, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized), nil)
	}
	return p, ok
}

// Health сообщает о доступности сервиса и хранилища.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.svc.Health != nil {
		if err := h.svc.Health.Ping(r.Context()); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			h.writeJSON(w, http.StatusServiceUnavailable, "storage unavailable", nil)
			return
		}
	}
	h.writeJSON(w, http.StatusOK, "", map[string]string{"status": "ok"})
}
