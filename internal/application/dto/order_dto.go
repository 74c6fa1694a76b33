package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest línea de un pedido. Details vacío se completa con la foto del catálogo.
type OrderLineRequest struct {
	VariantID string          `json:"id_variante" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"cantidad" validate:"decimal_positive"`
	UnitPrice decimal.Decimal `json:"precio_unitario" validate:"decimal_nonnegative"`
	Details   json.RawMessage `json:"detalles_producto,omitempty"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	WarehouseID  string             `json:"id_almacen_origen" validate:"required,uuid"`
	CustomerName string             `json:"cliente,omitempty" validate:"max=200"`
	CurrencyCode string             `json:"divisa" validate:"required,len=3"`
	Notes        string             `json:"notas,omitempty" validate:"max=1000"`
	Lines        []OrderLineRequest `json:"detalles" validate:"required,min=1,dive"`
}

// OrderLineResponse línea de pedido.
type OrderLineResponse struct {
	ID        string          `json:"id"`
	VariantID string          `json:"id_variante"`
	Quantity  decimal.Decimal `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio_unitario"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Details   json.RawMessage `json:"detalles_producto,omitempty"`
}

// OrderResponse salida de un pedido.
type OrderResponse struct {
	ID           string              `json:"id"`
	WarehouseID  string              `json:"id_almacen_origen"`
	UserID       string              `json:"id_usuario"`
	CustomerName string              `json:"cliente,omitempty"`
	Status       string              `json:"estado"`
	CurrencyCode string              `json:"divisa"`
	Total        decimal.Decimal     `json:"total"`
	TotalMatches bool                `json:"total_consistente"`
	Notes        string              `json:"notas,omitempty"`
	CompletedAt  *time.Time          `json:"fecha_completado,omitempty"`
	CancelledAt  *time.Time          `json:"fecha_cancelacion,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	Lines        []OrderLineResponse `json:"detalles"`
}
