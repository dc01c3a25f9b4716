package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/roberto3101/sistema-control/internal/model"
	"github.com/roberto3101/sistema-control/internal/repository"
	"github.com/roberto3101/sistema-control/internal/validation"
)

// ProductInput: данные нового товара.
type ProductInput struct {
	Code         string
	Name         string
	Description  string
	UnitPrice    decimal.Decimal
	InitialStock int64
	MinimumStock int64
	Unit         string
}

// ClientInput: данные нового клиента.
type ClientInput struct {
	BusinessName string
	ContactName  string
	Document     string
	Phone        string
	Address      string
	District     string
}

// VisitInput: данные планируемого визита.
type VisitInput struct {
	SellerID    int64
	ClientID    int64
	ScheduledAt time.Time
	Kind        string
	Notes       string
}

// CatalogService ведёт справочники: товары, клиентов и визиты.
type CatalogService struct {
	store  Store
	guard  *InventoryGuard
	logger *zap.Logger
}

// NewCatalogService создаёт сервис справочников.
func NewCatalogService(store Store, guard *InventoryGuard, logger *zap.Logger) *CatalogService {
	return &CatalogService{store: store, guard: guard, logger: logger}
}

// CreateProduct добавляет товар в каталог.
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (int64, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	name := strings.TrimSpace(in.Name)
	switch {
	case code == "":
		return 0, model.Validationf("product code is required")
	case name == "":
		return 0, model.Validationf("product name is required")
	case in.UnitPrice.IsNegative():
		return 0, model.Validationf("unit price must not be negative")
	case in.InitialStock < 0 || in.MinimumStock < 0:
		return 0, model.Validationf("stock must not be negative")
	}

	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = "unidad"
	}

	return s.store.CreateProduct(ctx, &model.Product{
		Code:         code,
		Name:         name,
		Description:  strings.TrimSpace(in.Description),
		UnitPrice:    in.UnitPrice.Round(2),
		CurrentStock: in.InitialStock,
		MinimumStock: in.MinimumStock,
		Unit:         unit,
		Status:       model.RecordActive,
	})
}

// GetProduct возвращает товар.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return s.store.GetProduct(ctx, id)
}

// ListProducts возвращает активные товары.
func (s *CatalogService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.store.ListProducts(ctx)
}

// ListLowStock возвращает товары, остаток которых не выше минимального.
func (s *CatalogService) ListLowStock(ctx context.Context) ([]model.Product, error) {
	return s.store.ListLowStockProducts(ctx)
}

// Replenish пополняет остаток товара и возвращает новый остаток.
func (s *CatalogService) Replenish(ctx context.Context, productID, qty int64) (int64, error) {
	var stock int64

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := s.guard.RestoreStock(ctx, tx, productID, qty); err != nil {
			return err
		}
		p, err := tx.LockProduct(ctx, productID)
		if err != nil {
			return err
		}
		stock = p.CurrentStock
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("replenish stock: %w", err)
	}

	s.logger.Info("stock replenished", zap.Int64("product_id", productID), zap.Int64("stock", stock))
	return stock, nil
}

// CreateClient регистрирует клиента. Документ должен быть корректным DNI или RUC.
func (s *CatalogService) CreateClient(ctx context.Context, in ClientInput) (int64, error) {
	name := strings.TrimSpace(in.BusinessName)
	if name == "" {
		return 0, model.Validationf("business name is required")
	}
	doc := strings.TrimSpace(in.Document)
	if doc != "" && !validation.IsValidDocument(doc) {
		return 0, model.Validationf("invalid document %q", in.Document)
	}

	return s.store.CreateClient(ctx, &model.Client{
		BusinessName: name,
		ContactName:  strings.TrimSpace(in.ContactName),
		Document:     doc,
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		District:     strings.TrimSpace(in.District),
		Status:       model.RecordActive,
	})
}

// GetClient возвращает клиента.
func (s *CatalogService) GetClient(ctx context.Context, id int64) (*model.Client, error) {
	return s.store.GetClient(ctx, id)
}

// CreateVisit планирует визит продавца к клиенту.
func (s *CatalogService) CreateVisit(ctx context.Context, in VisitInput) (int64, error) {
	if in.SellerID <= 0 || in.ClientID <= 0 {
		return 0, model.Validationf("seller and client are required")
	}
	if in.ScheduledAt.IsZero() {
		return 0, model.Validationf("visit date is required")
	}

	kind := strings.TrimSpace(in.Kind)
	if kind == "" {
		kind = "presencial"
	}

	return s.store.CreateVisit(ctx, &model.Visit{
		SellerID:    in.SellerID,
		ClientID:    in.ClientID,
		ScheduledAt: in.ScheduledAt,
		Kind:        kind,
		Status:      model.VisitScheduled,
		Notes:       strings.TrimSpace(in.Notes),
	})
}
