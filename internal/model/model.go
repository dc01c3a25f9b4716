// Package model содержит доменные сущности системы управления продажами.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role описывает роль пользователя системы.
type Role string

const (
	RoleAdmin     Role = "administrador"
	RoleSeller    Role = "vendedor"
	RoleAssistant Role = "auxiliar_administrativo"
)

// Valid сообщает, относится ли роль к известным системе.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSeller, RoleAssistant:
		return true
	}
	return false
}

// UserStatus описывает состояние учётной записи.
type UserStatus string

const (
	UserStatusActive   UserStatus = "activo"
	UserStatusInactive UserStatus = "inactivo"
	UserStatusLocked   UserStatus = "bloqueado"
)

// User представляет пользователя системы: администратора, продавца или помощника.
type User struct {
	ID             int64
	FullName       string
	Email          string
	PasswordHash   []byte
	Role           Role
	Status         UserStatus
	FailedAttempts int
	CreatedAt      time.Time
}

// RecordStatus описывает состояние справочных записей (клиенты, товары).
type RecordStatus string

const (
	RecordActive   RecordStatus = "activo"
	RecordInactive RecordStatus = "inactivo"
)

// Client представляет клиента (торговую точку).
type Client struct {
	ID           int64        `json:"id_cliente"`
	BusinessName string       `json:"nombre_negocio"`
	ContactName  string       `json:"nombre_contacto"`
	Document     string       `json:"documento"`
	Phone        string       `json:"telefono"`
	Address      string       `json:"direccion"`
	District     string       `json:"distrito"`
	Status       RecordStatus `json:"estado"`
	CreatedAt    time.Time    `json:"fecha_registro"`
}

// Product представляет товар каталога с текущим остатком.
type Product struct {
	ID           int64           `json:"id_producto"`
	Code         string          `json:"codigo"`
	Name         string          `json:"nombre"`
	Description  string          `json:"descripcion"`
	UnitPrice    decimal.Decimal `json:"precio_unitario"`
	CurrentStock int64           `json:"stock_actual"`
	MinimumStock int64           `json:"stock_minimo"`
	Unit         string          `json:"unidad_medida"`
	Status       RecordStatus    `json:"estado"`
	CreatedAt    time.Time       `json:"fecha_registro"`
}

// LowStock сообщает, опустился ли остаток до минимального порога.
func (p Product) LowStock() bool {
	return p.CurrentStock <= p.MinimumStock
}

// VisitStatus описывает состояние визита продавца.
type VisitStatus string

const (
	VisitScheduled VisitStatus = "programada"
	VisitDone      VisitStatus = "realizada"
	VisitCanceled  VisitStatus = "cancelada"
)

// Visit описывает визит продавца к клиенту.
type Visit struct {
	ID          int64       `json:"id_visita"`
	SellerID    int64       `json:"id_vendedor"`
	ClientID    int64       `json:"id_cliente"`
	ScheduledAt time.Time   `json:"fecha_visita"`
	Kind        string      `json:"tipo_visita"`
	Status      VisitStatus `json:"estado"`
	Notes       string      `json:"observaciones"`
	Result      string      `json:"resultado"`
}

// Order описывает заказ клиента вместе с позициями.
type Order struct {
	ID        int64
	ClientID  int64
	SellerID  int64
	VisitID   *int64
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
	Notes     string
	Status    OrderStatus
	CreatedAt time.Time
	Lines     []OrderLine
}

// OrderLine описывает позицию заказа. UnitPrice фиксируется на момент оформления.
type OrderLine struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int64
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// Receipt описывает товарный чек (boleta), выписанный по заказу.
type Receipt struct {
	ID           int64
	Number       string
	OrderID      int64
	SellerID     int64
	ClientID     int64
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal
	Status       ReceiptStatus
	ClerkID      int64
	VoidReason   string
	VoidedAt     *time.Time
	VoidedBy     *int64
	RegisteredAt time.Time
	IssuedAt     *time.Time
}

// Assignment связывает клиента с обслуживающим его продавцом.
type Assignment struct {
	ID         int64
	ClientID   int64
	SellerID   int64
	Status     AssignmentStatus
	AssignedAt time.Time
}

// SellerWorkload содержит число активных клиентов продавца.
type SellerWorkload struct {
	SellerID     int64  `json:"id_usuario"`
	FullName     string `json:"nombre_completo"`
	Email        string `json:"email"`
	TotalClients int    `json:"total_clientes"`
}

// Availability: результат предварительной проверки остатка.
type Availability struct {
	Available    bool  `json:"disponible"`
	CurrentStock int64 `json:"stock_actual"`
}
