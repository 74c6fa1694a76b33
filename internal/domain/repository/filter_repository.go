package repository

import (
	"context"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
)

// FilterRepository persiste Filtro, OpcionFiltro y ProductoDetalleFiltro.
type FilterRepository interface {
	Create(ctx context.Context, filter *entity.Filter) error
	GetByID(ctx context.Context, id string) (*entity.Filter, error)
	Update(ctx context.Context, filter *entity.Filter) error
	ListBySubcategory(ctx context.Context, subcategoryID string, opts ListOptions) ([]*entity.Filter, error)
	// SoftDeleteCascade elimina el filtro, sus opciones y los vínculos producto-opción.
	SoftDeleteCascade(ctx context.Context, id string) error

	CreateOption(ctx context.Context, option *entity.FilterOption) error
	GetOption(ctx context.Context, id string) (*entity.FilterOption, error)
	ListOptions(ctx context.Context, filterID string, opts ListOptions) ([]*entity.FilterOption, error)
	SoftDeleteOption(ctx context.Context, id string) error

	GetProductDetail(ctx context.Context, productID, optionID string) (*entity.ProductFilterDetail, error)
	AttachOption(ctx context.Context, detail *entity.ProductFilterDetail) error
	DetachOption(ctx context.Context, productID, optionID string) error
	ListProductOptions(ctx context.Context, productID string) ([]*entity.FilterOption, error)
}
