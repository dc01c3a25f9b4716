package handler

import (
	"net/http"
)

type generateReceiptRequest struct {
	OrderID int64 `json:"id_pedido"`
}

// GenerateReceipt выписывает чек по заказу; текущий пользователь записывается как оформивший.
func (h *Handler) GenerateReceipt(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req generateReceiptRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.OrderID <= 0 {
		h.writeJSON(w, http.StatusBadRequest, "id_pedido is required", nil)
		return
	}

	id, err := h.svc.Receipts.GenerateFromOrder(r.Context(), req.OrderID, p.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.respondReceipt(w, r, http.StatusCreated, "receipt generated", id)
}

// IssueReceipt выдаёт чек клиенту.
func (h *Handler) IssueReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.Receipts.Issue(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.respondReceipt(w, r, http.StatusOK, "receipt issued", id)
}

type voidReceiptRequest struct {
	Reason string `json:"motivo_anulacion"`
}

// VoidReceipt аннулирует чек с указанием причины.
func (h *Handler) VoidReceipt(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	id, ok := h.idParam(w, r)
	if !ok {
		return
	}

	var req voidReceiptRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.svc.Receipts.Void(r.Context(), id, req.Reason, p.UserID); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.respondReceipt(w, r, http.StatusOK, "receipt voided", id)
}

// GetReceipt возвращает чек по id.
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	h.respondReceipt(w, r, http.StatusOK, "", id)
}

// ListReceipts возвращает все чеки.
func (h *Handler) ListReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := h.svc.Receipts.ListReceipts(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res := make([]receiptResponse, 0, len(receipts))
	for i := range receipts {
		res = append(res, newReceiptResponse(&receipts[i]))
	}
	h.writeJSON(w, http.StatusOK, "", map[string]any{"boletas": res})
}

func (h *Handler) respondReceipt(w http.ResponseWriter, r *http.Request, status int, message string, id int64) {
	receipt, err := h.svc.Receipts.GetReceipt(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, status, message, map[string]any{"boleta": newReceiptResponse(receipt)})
}
