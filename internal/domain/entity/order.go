package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un pedido.
const (
	OrderStatusPending   = "Pendiente"
	OrderStatusCompleted = "Completado"
	OrderStatusCancelled = "Cancelado"
)

// Order cabecera de un pedido de venta (Pedido). Total = Σ Lines[i].Subtotal.
type Order struct {
	ID           string
	CompanyID    string
	WarehouseID  string // id_almacen_origen
	UserID       string
	CustomerName string
	Status       string
	CurrencyCode string
	Total        decimal.Decimal
	Notes        string
	CompletedAt  *time.Time
	CancelledAt  *time.Time
	Lines        []OrderLine
	Timestamps
}

func (o *Order) TenantID() string { return o.CompanyID }

// OrderLine línea de pedido (DetallePedido). Details guarda una foto del producto al momento de la venta.
type OrderLine struct {
	ID        string
	OrderID   string
	CompanyID string
	VariantID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	Details   json.RawMessage
}
