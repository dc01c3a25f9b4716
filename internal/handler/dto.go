package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/roberto3101/sistema-control/internal/model"
)

// Денежные суммы отдаются строкой с двумя знаками, как их ожидает фронтенд.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type userResponse struct {
	ID     int64            `json:"id"`
	Name   string           `json:"nombre"`
	Email  string           `json:"email"`
	Role   model.Role       `json:"rol"`
	Status model.UserStatus `json:"estado"`
}

func newUserResponse(u *model.User) userResponse {
	return userResponse{ID: u.ID, Name: u.FullName, Email: u.Email, Role: u.Role, Status: u.Status}
}

type productResponse struct {
	ID           int64              `json:"id_producto"`
	Code         string             `json:"codigo"`
	Name         string             `json:"nombre"`
	Description  string             `json:"descripcion"`
	UnitPrice    string             `json:"precio_unitario"`
	CurrentStock int64              `json:"stock_actual"`
	MinimumStock int64              `json:"stock_minimo"`
	Unit         string             `json:"unidad_medida"`
	Status       model.RecordStatus `json:"estado"`
	LowStock     bool               `json:"stock_bajo"`
	CreatedAt    time.Time          `json:"fecha_registro"`
}

func newProductResponse(p *model.Product) productResponse {
	return productResponse{
		ID:           p.ID,
		Code:         p.Code,
		Name:         p.Name,
		Description:  p.Description,
		UnitPrice:    money(p.UnitPrice),
		CurrentStock: p.CurrentStock,
		MinimumStock: p.MinimumStock,
		Unit:         p.Unit,
		Status:       p.Status,
		LowStock:     p.LowStock(),
		CreatedAt:    p.CreatedAt,
	}
}

func newProductList(products []model.Product) []productResponse {
	res := make([]productResponse, 0, len(products))
	for i := range products {
		res = append(res, newProductResponse(&products[i]))
	}
	return res
}

type orderLineResponse struct {
	ID        int64  `json:"id_detalle"`
	ProductID int64  `json:"id_producto"`
	Quantity  int64  `json:"cantidad"`
	UnitPrice string `json:"precio_unitario"`
	Subtotal  string `json:"subtotal"`
}

type orderResponse struct {
	ID        int64               `json:"id_pedido"`
	ClientID  int64               `json:"id_cliente"`
	SellerID  int64               `json:"id_vendedor"`
	VisitID   *int64              `json:"id_visita"`
	Subtotal  string              `json:"subtotal"`
	Tax       string              `json:"igv"`
	Total     string              `json:"total"`
	Notes     string              `json:"observaciones"`
	Status    model.OrderStatus   `json:"estado"`
	CreatedAt time.Time           `json:"fecha_pedido"`
	Lines     []orderLineResponse `json:"detalles,omitempty"`
}

func newOrderResponse(o *model.Order) orderResponse {
	res := orderResponse{
		ID:        o.ID,
		ClientID:  o.ClientID,
		SellerID:  o.SellerID,
		VisitID:   o.VisitID,
		Subtotal:  money(o.Subtotal),
		Tax:       money(o.Tax),
		Total:     money(o.Total),
		Notes:     o.Notes,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
	}
	for _, l := range o.Lines {
		res.Lines = append(res.Lines, orderLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: money(l.UnitPrice),
			Subtotal:  money(l.Subtotal),
		})
	}
	return res
}

func newOrderList(orders []model.Order) []orderResponse {
	res := make([]orderResponse, 0, len(orders))
	for i := range orders {
		res = append(res, newOrderResponse(&orders[i]))
	}
	return res
}

type receiptResponse struct {
	ID           int64               `json:"id_boleta"`
	Number       string              `json:"numero_boleta"`
	OrderID      int64               `json:"id_pedido"`
	SellerID     int64               `json:"id_vendedor"`
	ClientID     int64               `json:"id_cliente"`
	Subtotal     string              `json:"subtotal"`
	Tax          string              `json:"igv"`
	Total        string              `json:"total"`
	Status       model.ReceiptStatus `json:"estado"`
	ClerkID      int64               `json:"id_auxiliar"`
	VoidReason   string              `json:"motivo_anulacion,omitempty"`
	VoidedAt     *time.Time          `json:"fecha_anulacion,omitempty"`
	VoidedBy     *int64              `json:"anulado_por,omitempty"`
	RegisteredAt time.Time           `json:"fecha_registro"`
	IssuedAt     *time.Time          `json:"fecha_emision,omitempty"`
}

func newReceiptResponse(r *model.Receipt) receiptResponse {
	return receiptResponse{
		ID:           r.ID,
		Number:       r.Number,
		OrderID:      r.OrderID,
		SellerID:     r.SellerID,
		ClientID:     r.ClientID,
		Subtotal:     money(r.Subtotal),
		Tax:          money(r.Tax),
		Total:        money(r.Total),
		Status:       r.Status,
		ClerkID:      r.ClerkID,
		VoidReason:   r.VoidReason,
		VoidedAt:     r.VoidedAt,
		VoidedBy:     r.VoidedBy,
		RegisteredAt: r.RegisteredAt,
		IssuedAt:     r.IssuedAt,
	}
}

type assignmentResponse struct {
	ID         int64                  `json:"id_asignacion"`
	ClientID   int64                  `json:"id_cliente"`
	SellerID   int64                  `json:"id_vendedor"`
	Status     model.AssignmentStatus `json:"estado"`
	AssignedAt time.Time              `json:"fecha_asignacion"`
}

func newAssignmentList(assignments []model.Assignment) []assignmentResponse {
	res := make([]assignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		res = append(res, assignmentResponse{
			ID:         a.ID,
			ClientID:   a.ClientID,
			SellerID:   a.SellerID,
			Status:     a.Status,
			AssignedAt: a.AssignedAt,
		})
	}
	return res
}
