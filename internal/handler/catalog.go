package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/roberto3101/sistema-control/internal/model"
	"github.com/roberto3101/sistema-control/internal/service"
)

// ListProducts возвращает активные товары.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Catalog.ListProducts(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "", map[string]any{"productos": newProductList(products)})
}

// ListLowStock возвращает товары с остатком не выше минимального.
func (h *Handler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Catalog.ListLowStock(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "", map[string]any{"productos": newProductList(products)})
}

// GetProduct возвращает товар по id.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}

	p, err := h.svc.Catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "", map[string]any{"producto": newProductResponse(p)})
}

type quantityRequest struct {
	Quantity int64 `json:"cantidad"`
}

// CheckStock сообщает, хватает ли остатка на запрошенное количество.
func (h *Handler) CheckStock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}

	var req quantityRequest
	if !h.decode(w, r, &req) {
		return
	}

	availability, err := h.svc.Inventory.CheckAvailability(r.Context(), id, req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "", availability)
}

type productRequest struct {
	Code         string          `json:"codigo"`
	Name         string          `json:"nombre"`
	Description  string          `json:"descripcion"`
	UnitPrice    decimal.Decimal `json:"precio_unitario"`
	CurrentStock int64           `json:"stock_actual"`
	MinimumStock int64           `json:"stock_minimo"`
	Unit         string          `json:"unidad_medida"`
}

// CreateProduct добавляет товар в каталог.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !h.decode(w, r, &req) {
		return
	}

	id, err := h.svc.Catalog.CreateProduct(r.Context(), service.ProductInput{
		Code:         req.Code,
		Name:         req.Name,
		Description:  req.Description,
		UnitPrice:    req.UnitPrice,
		InitialStock: req.CurrentStock,
		MinimumStock: req.MinimumStock,
		Unit:         req.Unit,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	p, err := h.svc.Catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, "product created", map[string]any{"producto": newProductResponse(p)})
}

// ReplenishStock пополняет остаток товара.
func (h *Handler) ReplenishStock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}

	var req quantityRequest
	if !h.decode(w, r, &req) {
		return
	}

	stock, err := h.svc.Catalog.Replenish(r.Context(), id, req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "stock updated", map[string]int64{"id_producto": id, "stock_actual": stock})
}

type clientRequest struct {
	BusinessName string `json:"nombre_negocio"`
	ContactName  string `json:"nombre_contacto"`
	Document     string `json:"documento"`
	Phone        string `json:"telefono"`
	Address      string `json:"direccion"`
	District     string `json:"distrito"`
}

// CreateClient регистрирует клиента.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if !h.decode(w, r, &req) {
		return
	}

	id, err := h.svc.Catalog.CreateClient(r.Context(), service.ClientInput(req))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	c, err := h.svc.Catalog.GetClient(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, "client created", map[string]any{"cliente": c})
}

// GetClient возвращает клиента по id.
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}

	c, err := h.svc.Catalog.GetClient(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "", map[string]any{"cliente": c})
}

type visitRequest struct {
	SellerID    int64     `json:"id_vendedor"`
	ClientID    int64     `json:"id_cliente"`
	ScheduledAt time.Time `json:"fecha_visita"`
	Kind        string    `json:"tipo_visita"`
	Notes       string    `json:"observaciones"`
}

// CreateVisit планирует визит. Продавец планирует только свои визиты.
func (h *Handler) CreateVisit(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req visitRequest
	if !h.decode(w, r, &req) {
		return
	}

	sellerID := p.UserID
	if p.Role == model.RoleAdmin && req.SellerID > 0 {
		sellerID = req.SellerID
	}

	id, err := h.svc.Catalog.CreateVisit(r.Context(), service.VisitInput{
		SellerID:    sellerID,
		ClientID:    req.ClientID,
		ScheduledAt: req.ScheduledAt,
		Kind:        req.Kind,
		Notes:       req.Notes,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, "visit scheduled", map[string]int64{"id_visita": id})
}
