// Package catalog administra categorías, productos, variantes y el sistema de atributos tipados.
package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/dto"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/tenant"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
)

// Service casos de uso del catálogo.
type Service struct {
	registry   *tenant.Registry
	categories repository.CategoryRepository
	products   repository.ProductRepository
	filters    repository.FilterRepository
	currencies repository.CurrencyRepository
}

// NewService construye el servicio de catálogo.
func NewService(
	registry *tenant.Registry,
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	filters repository.FilterRepository,
	currencies repository.CurrencyRepository,
) *Service {
	return &Service{registry: registry, categories: categories, products: products, filters: filters, currencies: currencies}
}

// CreateCategory crea una categoría.
func (s *Service) CreateCategory(ctx context.Context, companyID string, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	if _, err := s.registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidation("nombre", "requerido")
	}
	c := &entity.Category{ID: uuid.New().String(), CompanyID: companyID, Name: name, Description: in.Description}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return toCategoryResponse(c), nil
}

// UpdateCategory actualiza nombre y descripción.
func (s *Service) UpdateCategory(ctx context.Context, companyID, id string, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	c, err := s.category(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		c.Name = name
	}
	c.Description = in.Description
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	return toCategoryResponse(c), nil
}

// DeleteCategory elimina lógicamente la categoría.
func (s *Service) DeleteCategory(ctx context.Context, companyID, id string) error {
	if _, err := s.category(ctx, companyID, id); err != nil {
		return err
	}
	return s.categories.SoftDelete(ctx, id)
}

// ListCategories categorías de la empresa.
func (s *Service) ListCategories(ctx context.Context, companyID string, opts repository.ListOptions) ([]dto.CategoryResponse, error) {
	if _, err := s.registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	list, err := s.categories.ListByCompany(ctx, companyID, opts.Normalize())
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toCategoryResponse(c))
	}
	return out, nil
}

// CreateSubcategory crea una subcategoría bajo una categoría de la misma empresa.
func (s *Service) CreateSubcategory(ctx context.Context, companyID, categoryID string, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	if _, err := s.category(ctx, companyID, categoryID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidation("nombre", "requerido")
	}
	sub := &entity.Subcategory{
		ID: uuid.New().String(), CompanyID: companyID, CategoryID: categoryID,
		Name: name, Description: in.Description,
	}
	if err := s.categories.CreateSubcategory(ctx, sub); err != nil {
		return nil, err
	}
	return toSubcategoryResponse(sub), nil
}

// UpdateSubcategory actualiza nombre y descripción.
func (s *Service) UpdateSubcategory(ctx context.Context, companyID, id string, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	sub, err := s.subcategory(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		sub.Name = name
	}
	sub.Description = in.Description
	if err := s.categories.UpdateSubcategory(ctx, sub); err != nil {
		return nil, err
	}
	return toSubcategoryResponse(sub), nil
}

// DeleteSubcategory elimina lógicamente la subcategoría.
func (s *Service) DeleteSubcategory(ctx context.Context, companyID, id string) error {
	if _, err := s.subcategory(ctx, companyID, id); err != nil {
		return err
	}
	return s.categories.SoftDeleteSubcategory(ctx, id)
}

// ListSubcategories subcategorías de una categoría.
func (s *Service) ListSubcategories(ctx context.Context, companyID, categoryID string, opts repository.ListOptions) ([]dto.CategoryResponse, error) {
	if _, err := s.category(ctx, companyID, categoryID); err != nil {
		return nil, err
	}
	list, err := s.categories.ListSubcategories(ctx, categoryID, opts.Normalize())
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, sub := range list {
		out = append(out, *toSubcategoryResponse(sub))
	}
	return out, nil
}

func (s *Service) category(ctx context.Context, companyID, id string) (*entity.Category, error) {
	if _, err := s.registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tenant.Ensure(companyID, tenant.Item("categoría", id, c)); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) subcategory(ctx context.Context, companyID, id string) (*entity.Subcategory, error) {
	if _, err := s.registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	sub, err := s.categories.GetSubcategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tenant.Ensure(companyID, tenant.Item("subcategoría", id, sub)); err != nil {
		return nil, err
	}
	return sub, nil
}

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description, CreatedAt: c.CreatedAt, DeletedAt: c.DeletedAt}
}

func toSubcategoryResponse(s *entity.Subcategory) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		ID: s.ID, CategoryID: s.CategoryID, Name: s.Name, Description: s.Description,
		CreatedAt: s.CreatedAt, DeletedAt: s.DeletedAt,
	}
}
