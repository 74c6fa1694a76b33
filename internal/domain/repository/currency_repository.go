package repository

import (
	"context"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
)

// CurrencyRepository persiste Divisa.
type CurrencyRepository interface {
	Create(ctx context.Context, currency *entity.Currency) error
	GetByCode(ctx context.Context, companyID, code string) (*entity.Currency, error)
	ListByCompany(ctx context.Context, companyID string, opts ListOptions) ([]*entity.Currency, error)
	SoftDelete(ctx context.Context, id string) error
}

// ExchangeRateRepository persiste TasaCambio.
type ExchangeRateRepository interface {
	Create(ctx context.Context, rate *entity.ExchangeRate) error
	// GetByID devuelve la tasa no eliminada con ese ID, o (nil, nil).
	GetByID(ctx context.Context, id string) (*entity.ExchangeRate, error)
	// Latest devuelve la fila más reciente no eliminada para el par, o (nil, nil).
	Latest(ctx context.Context, companyID, from, to string) (*entity.ExchangeRate, error)
	ListByCompany(ctx context.Context, companyID string, opts ListOptions) ([]*entity.ExchangeRate, error)
	SoftDelete(ctx context.Context, id string) error
}
