package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseLineRequest línea de una compra.
type PurchaseLineRequest struct {
	VariantID string          `json:"id_variante" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"cantidad" validate:"decimal_positive"`
	UnitCost  decimal.Decimal `json:"precio_costo_historico" validate:"decimal_nonnegative"`
}

// CreatePurchaseRequest body para POST /api/purchases.
type CreatePurchaseRequest struct {
	SupplierID    string                `json:"id_proveedor" validate:"required,uuid"`
	WarehouseID   string                `json:"id_almacen_destino" validate:"required,uuid"`
	PaymentMethod string                `json:"metodo_pago" validate:"required,oneof=Efectivo Transferencia Tarjeta Credito"`
	CurrencyCode  string                `json:"divisa" validate:"required,len=3"`
	Notes         string                `json:"notas,omitempty" validate:"max=1000"`
	Lines         []PurchaseLineRequest `json:"detalles" validate:"required,min=1,dive"`
}

// PurchaseLineResponse línea de compra.
type PurchaseLineResponse struct {
	ID        string          `json:"id"`
	VariantID string          `json:"id_variante"`
	Quantity  decimal.Decimal `json:"cantidad"`
	UnitCost  decimal.Decimal `json:"precio_costo_historico"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// PurchaseResponse salida de una compra.
type PurchaseResponse struct {
	ID            string                 `json:"id"`
	SupplierID    string                 `json:"id_proveedor"`
	WarehouseID   string                 `json:"id_almacen_destino"`
	UserID        string                 `json:"id_usuario"`
	Status        string                 `json:"estado"`
	PaymentMethod string                 `json:"metodo_pago"`
	CurrencyCode  string                 `json:"divisa"`
	Total         decimal.Decimal        `json:"total"`
	TotalMatches  bool                   `json:"total_consistente"`
	Notes         string                 `json:"notas,omitempty"`
	ReceivedAt    *time.Time             `json:"fecha_recepcion,omitempty"`
	CancelledAt   *time.Time             `json:"fecha_cancelacion,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	Lines         []PurchaseLineResponse `json:"detalles"`
}

// PurchaseDocument datos para imprimir una orden de compra.
type PurchaseDocument struct {
	CompanyName   string
	CompanyTaxID  string
	PurchaseID    string
	Status        string
	Date          time.Time
	SupplierName  string
	SupplierTaxID string
	CreditDays    int
	WarehouseName string
	PaymentMethod string
	CurrencyCode  string
	Notes         string
	Lines         []PurchaseDocumentLine
	Total         decimal.Decimal
}

// PurchaseDocumentLine línea impresa de la orden de compra.
type PurchaseDocumentLine struct {
	SKU         string
	Description string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	Subtotal    decimal.Decimal
}
