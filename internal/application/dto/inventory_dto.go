package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest body para POST /api/inventory/adjustments.
// Delta positivo suma, negativo resta. ReferenceID opcional hace el ajuste idempotente.
type AdjustStockRequest struct {
	VariantID   string          `json:"id_variante" validate:"required,uuid"`
	WarehouseID string          `json:"id_almacen" validate:"required,uuid"`
	Delta       decimal.Decimal `json:"delta" validate:"decimal_nonzero"`
	ReferenceID string          `json:"referencia,omitempty" validate:"omitempty,max=100"`
	Note        string          `json:"nota,omitempty" validate:"max=500"`
}

// TransferStockRequest body para POST /api/inventory/transfers.
type TransferStockRequest struct {
	VariantID       string          `json:"id_variante" validate:"required,uuid"`
	FromWarehouseID string          `json:"id_almacen_origen" validate:"required,uuid"`
	ToWarehouseID   string          `json:"id_almacen_destino" validate:"required,uuid,nefield=FromWarehouseID"`
	Quantity        decimal.Decimal `json:"cantidad" validate:"decimal_positive"`
	ReferenceID     string          `json:"referencia,omitempty" validate:"omitempty,max=100"`
	Note            string          `json:"nota,omitempty" validate:"max=500"`
}

// MovementResponse movimiento del ledger. Applied=false si era una repetición ya aplicada.
type MovementResponse struct {
	ID             string          `json:"id"`
	VariantID      string          `json:"id_variante"`
	WarehouseID    string          `json:"id_almacen"`
	Reason         string          `json:"motivo"`
	ReferenceID    string          `json:"referencia"`
	Delta          decimal.Decimal `json:"delta"`
	QuantityBefore decimal.Decimal `json:"cantidad_anterior"`
	QuantityAfter  decimal.Decimal `json:"cantidad_posterior"`
	Applied        bool            `json:"aplicado"`
	CreatedAt      time.Time       `json:"created_at"`
}

// TransferResponse salida de una transferencia entre almacenes.
type TransferResponse struct {
	TransferID string           `json:"id_transferencia"`
	Out        MovementResponse `json:"salida"`
	In         MovementResponse `json:"entrada"`
}

// StockLevelResponse stock de una variante en un almacén.
type StockLevelResponse struct {
	VariantID   string          `json:"id_variante"`
	WarehouseID string          `json:"id_almacen"`
	Quantity    decimal.Decimal `json:"stock_actual"`
	UpdatedAt   time.Time       `json:"updated_at,omitempty"`
}

// LowStockItem variante por debajo de su stock mínimo.
type LowStockItem struct {
	VariantID   string          `json:"id_variante"`
	SKU         string          `json:"sku"`
	ProductName string          `json:"nombre_producto"`
	VariantName string          `json:"nombre_variante"`
	WarehouseID string          `json:"id_almacen,omitempty"`
	Quantity    decimal.Decimal `json:"stock_actual"`
	MinStock    decimal.Decimal `json:"stock_minimo"`
	Missing     decimal.Decimal `json:"faltante"`
}
