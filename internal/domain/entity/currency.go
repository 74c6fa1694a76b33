package entity

import "github.com/shopspring/decimal"

// Currency divisa ISO 4217 habilitada para una empresa (Divisa).
type Currency struct {
	ID        string
	CompanyID string
	Code      string // USD, GTQ, …
	Name      string
	Symbol    string
	Timestamps
}

func (c *Currency) TenantID() string { return c.CompanyID }

// ExchangeRate tasa direccional FromCode -> ToCode (TasaCambio). No se asume simétrica.
// Se conserva el historial: la tasa vigente es la fila más reciente no eliminada.
type ExchangeRate struct {
	ID        string
	CompanyID string
	FromCode  string
	ToCode    string
	Rate      decimal.Decimal
	Timestamps
}

func (r *ExchangeRate) TenantID() string { return r.CompanyID }
