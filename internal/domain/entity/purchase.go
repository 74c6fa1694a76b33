package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una compra.
const (
	PurchaseStatusPending   = "Pendiente"
	PurchaseStatusReceived  = "Recibido"
	PurchaseStatusCancelled = "Cancelado"
)

// Métodos de pago aceptados en compras.
const (
	PaymentCash     = "Efectivo"
	PaymentTransfer = "Transferencia"
	PaymentCard     = "Tarjeta"
	PaymentCredit   = "Credito"
)

// ValidPaymentMethod indica si m es un método de pago soportado.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentTransfer, PaymentCard, PaymentCredit:
		return true
	}
	return false
}

// Purchase cabecera de una compra (Compra). Total = Σ Lines[i].Subtotal.
type Purchase struct {
	ID            string
	CompanyID     string
	SupplierID    string
	WarehouseID   string // id_almacen_destino
	UserID        string
	Status        string
	PaymentMethod string
	CurrencyCode  string
	Total         decimal.Decimal
	Notes         string
	ReceivedAt    *time.Time
	CancelledAt   *time.Time
	Lines         []PurchaseLine
	Timestamps
}

func (p *Purchase) TenantID() string { return p.CompanyID }

// PurchaseLine línea de compra (DetalleCompra). UnitCost es el costo histórico congelado.
type PurchaseLine struct {
	ID         string
	PurchaseID string
	CompanyID  string
	VariantID  string
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal // precio_costo_historico
	Subtotal   decimal.Decimal
}
