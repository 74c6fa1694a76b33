package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
)

// ProductFilter criterios opcionales para listar productos.
type ProductFilter struct {
	SubcategoryID string
	Search        string
}

// ProductRepository define el puerto de persistencia para Product y ProductVariant (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	ListByCompany(ctx context.Context, companyID string, filter ProductFilter, opts ListOptions) ([]*entity.Product, error)
	// SoftDelete marca el producto y sus variantes como eliminados.
	SoftDelete(ctx context.Context, id string) error

	CreateVariant(ctx context.Context, variant *entity.ProductVariant) error
	GetVariant(ctx context.Context, id string) (*entity.ProductVariant, error)
	GetVariantBySKU(ctx context.Context, companyID, sku string) (*entity.ProductVariant, error)
	UpdateVariant(ctx context.Context, variant *entity.ProductVariant) error
	UpdateVariantCost(ctx context.Context, variantID string, cost decimal.Decimal) error
	ListVariants(ctx context.Context, productID string, opts ListOptions) ([]*entity.ProductVariant, error)
	SoftDeleteVariant(ctx context.Context, id string) error
}
