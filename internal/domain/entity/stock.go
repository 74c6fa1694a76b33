package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// WarehouseStock es el stock actual de una variante en un almacén (StockAlmacen).
// Único por (VariantID, WarehouseID); Quantity nunca es negativo.
type WarehouseStock struct {
	CompanyID   string
	VariantID   string
	WarehouseID string
	Quantity    decimal.Decimal
	Version     int
	UpdatedAt   time.Time
}

func (s *WarehouseStock) TenantID() string { return s.CompanyID }
