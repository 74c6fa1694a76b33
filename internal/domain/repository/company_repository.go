package repository

import (
	"context"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// GetByID devuelve (nil, nil) si la empresa no existe o está eliminada.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	GetByTaxID(ctx context.Context, taxID string) (*entity.Company, error)
	Update(ctx context.Context, company *entity.Company) error
	List(ctx context.Context, opts ListOptions) ([]*entity.Company, error)
	SoftDelete(ctx context.Context, id string) error
}

// GlobalConfigRepository persiste ConfiguracionGlobal (una por empresa).
type GlobalConfigRepository interface {
	GetByCompany(ctx context.Context, companyID string) (*entity.GlobalConfig, error)
	Upsert(ctx context.Context, cfg *entity.GlobalConfig) error
}
