package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Motivos de movimiento del ledger de stock.
const (
	ReasonPurchaseReceipt  = "PurchaseReceipt"
	ReasonOrderFulfillment = "OrderFulfillment"
	ReasonManualAdjustment = "ManualAdjustment"
	ReasonReversal         = "Reversal"
)

// ValidReason indica si r es un motivo de movimiento soportado.
func ValidReason(r string) bool {
	switch r {
	case ReasonPurchaseReceipt, ReasonOrderFulfillment, ReasonManualAdjustment, ReasonReversal:
		return true
	}
	return false
}

// StockMovement registro inmutable de un movimiento aplicado a StockAlmacen.
// (CompanyID, Reason, ReferenceID) identifica el movimiento para idempotencia.
type StockMovement struct {
	ID             string
	CompanyID      string
	VariantID      string
	WarehouseID    string
	Reason         string
	ReferenceID    string
	Delta          decimal.Decimal
	QuantityBefore decimal.Decimal
	QuantityAfter  decimal.Decimal
	UserID         string
	Note           string
	CreatedAt      time.Time
}

func (m *StockMovement) TenantID() string { return m.CompanyID }
