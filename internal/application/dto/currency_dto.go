package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCurrencyRequest body para POST /api/currencies.
type CreateCurrencyRequest struct {
	Code   string `json:"codigo" validate:"required,len=3,uppercase,alpha"`
	Name   string `json:"nombre" validate:"required,max=60"`
	Symbol string `json:"simbolo" validate:"required,max=5"`
}

// CurrencyResponse salida de una divisa.
type CurrencyResponse struct {
	ID     string `json:"id"`
	Code   string `json:"codigo"`
	Name   string `json:"nombre"`
	Symbol string `json:"simbolo"`
}

// UpsertRateRequest body para PUT /api/exchange-rates. La tasa es direccional: 1 origen = tasa destino.
type UpsertRateRequest struct {
	From string          `json:"divisa_origen" validate:"required,len=3,uppercase"`
	To   string          `json:"divisa_destino" validate:"required,len=3,uppercase,nefield=From"`
	Rate decimal.Decimal `json:"tasa" validate:"decimal_positive"`
}

// RateResponse salida de una tasa de cambio.
type RateResponse struct {
	ID        string          `json:"id"`
	From      string          `json:"divisa_origen"`
	To        string          `json:"divisa_destino"`
	Rate      decimal.Decimal `json:"tasa"`
	CreatedAt time.Time       `json:"created_at"`
}

// ConvertRequest query de GET /api/exchange-rates/convert.
type ConvertRequest struct {
	Amount decimal.Decimal `query:"monto"`
	From   string          `query:"origen" validate:"required,len=3"`
	To     string          `query:"destino" validate:"required,len=3"`
}

// ConvertResponse resultado de una conversión.
type ConvertResponse struct {
	Amount    decimal.Decimal `json:"monto"`
	From      string          `json:"origen"`
	To        string          `json:"destino"`
	Rate      decimal.Decimal `json:"tasa"`
	Converted decimal.Decimal `json:"convertido"`
}

// BaseCurrencyRequest body para PUT /api/settings/base-currency.
type BaseCurrencyRequest struct {
	Code string `json:"codigo" validate:"required,len=3,uppercase"`
}

// BaseCurrencyResponse configuración global de la empresa.
type BaseCurrencyResponse struct {
	Code string `json:"codigo"`
}
