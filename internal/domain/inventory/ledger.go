package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
)

// ApplyDelta calcula la nueva cantidad de un StockAlmacen.
// Rechaza deltas nulos y cualquier resultado negativo; en ese caso current no cambia.
func ApplyDelta(variantID, warehouseID string, current, delta decimal.Decimal) (decimal.Decimal, error) {
	if delta.IsZero() {
		return current, domain.NewValidation("delta", "debe ser distinto de cero")
	}
	next := current.Add(delta)
	if delta.IsNegative() && next.IsNegative() {
		return current, &domain.InsufficientStockError{
			VariantID:   variantID,
			WarehouseID: warehouseID,
			Available:   current,
			Requested:   delta.Neg(),
		}
	}
	return next, nil
}

// StockKey identifica una fila de StockAlmacen.
type StockKey struct {
	VariantID   string
	WarehouseID string
}

// Less define el orden de bloqueo de filas: variante y luego almacén.
// Bloquear siempre en este orden evita deadlocks entre documentos con líneas cruzadas.
func (k StockKey) Less(o StockKey) bool {
	if k.VariantID != o.VariantID {
		return k.VariantID < o.VariantID
	}
	return k.WarehouseID < o.WarehouseID
}
