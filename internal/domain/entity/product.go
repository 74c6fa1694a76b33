package entity

import "github.com/shopspring/decimal"

// Product representa un producto del catálogo. El stock se lleva por ProductVariant.
type Product struct {
	ID            string
	CompanyID     string
	SubcategoryID string
	Name          string
	Description   string
	Price         decimal.Decimal // precio de venta de referencia
	CurrencyCode  string          // divisa de Price
	Timestamps
}

func (p *Product) TenantID() string { return p.CompanyID }

// ProductVariant es la unidad vendible (talla, color…) contra la que se registra el stock.
type ProductVariant struct {
	ID        string
	CompanyID string
	ProductID string
	SKU       string // único por empresa
	Name      string
	Price     decimal.Decimal // cero = usa el precio del producto
	MinStock  decimal.Decimal // stock_minimo: umbral de reorden
	AvgCost   decimal.Decimal // costo promedio ponderado (informativo)
	Timestamps
}

func (v *ProductVariant) TenantID() string { return v.CompanyID }
