package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/roberto3101/sistema-control/internal/model"
	"github.com/roberto3101/sistema-control/internal/service"
)

type orderLineRequest struct {
	ProductID int64            `json:"id_producto"`
	Quantity  int64            `json:"cantidad"`
	Subtotal  *decimal.Decimal `json:"subtotal"`
}

type orderRequest struct {
	ClientID int64              `json:"id_cliente"`
	VisitID  *int64             `json:"id_visita"`
	Notes    string             `json:"observaciones"`
	Lines    []orderLineRequest `json:"productos"`
}

// PlaceOrder оформляет заказ от имени текущего пользователя.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req orderRequest
	if !h.decode(w, r, &req) {
		return
	}

	in := service.PlaceOrderInput{
		ClientID: req.ClientID,
		SellerID: p.UserID,
		VisitID:  req.VisitID,
		Notes:    req.Notes,
		Lines:    make([]service.LineInput, 0, len(req.Lines)),
	}
	for _, l := range req.Lines {
		in.Lines = append(in.Lines, service.LineInput(l))
	}

	id, err := h.svc.Orders.PlaceOrder(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	order, err := h.svc.Orders.GetOrder(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, "order placed", map[string]any{"pedido": newOrderResponse(order)})
}

// ListOrders возвращает заказы; параметр estado фильтрует по статусу.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var status *model.OrderStatus
	if s := r.URL.Query().Get("estado"); s != "" {
		st := model.OrderStatus(s)
		if !st.Valid() {
			h.writeJSON(w, http.StatusBadRequest, "unknown order status", nil)
			return
		}
		status = &st
	}

	orders, err := h.svc.Orders.ListOrders(r.Context(), status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "", map[string]any{"pedidos": newOrderList(orders)})
}

// MyOrders возвращает заказы текущего продавца.
func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	orders, err := h.svc.Orders.ListOrdersBySeller(r.Context(), p.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "", map[string]any{"pedidos": newOrderList(orders)})
}

// GetOrder возвращает заказ с позициями.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}

	order, err := h.svc.Orders.GetOrder(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "", map[string]any{"pedido": newOrderResponse(order)})
}

type statusRequest struct {
	Status model.OrderStatus `json:"estado"`
}

// ChangeOrderStatus меняет статус заказа.
func (h *Handler) ChangeOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}

	var req statusRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.svc.Orders.ChangeStatus(r.Context(), id, req.Status); err != nil {
		h.writeError(w, r, err)
		return
	}

	order, err := h.svc.Orders.GetOrder(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "order status updated", map[string]any{"pedido": newOrderResponse(order)})
}
