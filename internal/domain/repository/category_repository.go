package repository

import (
	"context"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
)

// CategoryRepository persiste categorías y subcategorías.
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	ListByCompany(ctx context.Context, companyID string, opts ListOptions) ([]*entity.Category, error)
	SoftDelete(ctx context.Context, id string) error

	CreateSubcategory(ctx context.Context, sub *entity.Subcategory) error
	GetSubcategory(ctx context.Context, id string) (*entity.Subcategory, error)
	UpdateSubcategory(ctx context.Context, sub *entity.Subcategory) error
	ListSubcategories(ctx context.Context, categoryID string, opts ListOptions) ([]*entity.Subcategory, error)
	SoftDeleteSubcategory(ctx context.Context, id string) error
}
