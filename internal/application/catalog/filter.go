package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/dto"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/tenant"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	catalogrules "github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/catalog"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
)

// CreateFilter define un atributo tipado para una subcategoría.
func (s *Service) CreateFilter(ctx context.Context, companyID, subcategoryID string, in dto.FilterRequest) (*dto.FilterResponse, error) {
	if _, err := s.subcategory(ctx, companyID, subcategoryID); err != nil {
		return nil, err
	}
	f := &entity.Filter{
		ID:            uuid.New().String(),
		CompanyID:     companyID,
		SubcategoryID: subcategoryID,
		Name:          strings.TrimSpace(in.Name),
		DataType:      in.DataType,
		AllowedValues: trimAll(in.AllowedValues),
	}
	if err := catalogrules.ValidateFilter(f); err != nil {
		return nil, err
	}
	if err := s.filters.Create(ctx, f); err != nil {
		return nil, err
	}
	return toFilterResponse(f), nil
}

// UpdateFilter cambia nombre, tipo o valores permitidos.
// No se puede cambiar el tipo ni retirar un valor Lista mientras existan opciones que lo usen.
func (s *Service) UpdateFilter(ctx context.Context, companyID, id string, in dto.FilterRequest) (*dto.FilterResponse, error) {
	f, err := s.filter(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	options, err := s.filters.ListOptions(ctx, id, repository.ListOptions{Limit: 100})
	if err != nil {
		return nil, err
	}
	next := *f
	next.Name = strings.TrimSpace(in.Name)
	next.DataType = in.DataType
	next.AllowedValues = trimAll(in.AllowedValues)
	if err := catalogrules.ValidateFilter(&next); err != nil {
		return nil, err
	}
	if len(options) > 0 && next.DataType != f.DataType {
		return nil, fmt.Errorf("el filtro tiene opciones, no se puede cambiar su tipo: %w", domain.ErrConflict)
	}
	if next.DataType == entity.FilterTypeList {
		for _, o := range options {
			if _, err := catalogrules.NormalizeOptionValue(&next, o.Value); err != nil {
				return nil, fmt.Errorf("la opción %q sigue en uso: %w", o.Value, domain.ErrConflict)
			}
		}
	}
	if err := s.filters.Update(ctx, &next); err != nil {
		return nil, err
	}
	return toFilterResponse(&next), nil
}

// DeleteFilter elimina el filtro con sus opciones y asignaciones a productos.
func (s *Service) DeleteFilter(ctx context.Context, companyID, id string) error {
	if _, err := s.filter(ctx, companyID, id); err != nil {
		return err
	}
	return s.filters.SoftDeleteCascade(ctx, id)
}

// ListFilters filtros de una subcategoría.
func (s *Service) ListFilters(ctx context.Context, companyID, subcategoryID string, opts repository.ListOptions) ([]dto.FilterResponse, error) {
	if _, err := s.subcategory(ctx, companyID, subcategoryID); err != nil {
		return nil, err
	}
	list, err := s.filters.ListBySubcategory(ctx, subcategoryID, opts.Normalize())
	if err != nil {
		return nil, err
	}
	out := make([]dto.FilterResponse, 0, len(list))
	for _, f := range list {
		out = append(out, *toFilterResponse(f))
	}
	return out, nil
}

// CreateOption agrega un valor al filtro, validado según su tipo_dato.
func (s *Service) CreateOption(ctx context.Context, companyID, filterID string, in dto.FilterOptionRequest) (*dto.FilterOptionResponse, error) {
	f, err := s.filter(ctx, companyID, filterID)
	if err != nil {
		return nil, err
	}
	value, err := catalogrules.NormalizeOptionValue(f, in.Value)
	if err != nil {
		return nil, err
	}
	o := &entity.FilterOption{ID: uuid.New().String(), CompanyID: companyID, FilterID: filterID, Value: value}
	if err := s.filters.CreateOption(ctx, o); err != nil {
		return nil, err
	}
	return toOptionResponse(o), nil
}

// DeleteOption elimina la opción y sus asignaciones.
func (s *Service) DeleteOption(ctx context.Context, companyID, optionID string) error {
	if _, err := s.option(ctx, companyID, optionID); err != nil {
		return err
	}
	return s.filters.SoftDeleteOption(ctx, optionID)
}

// ListOptions opciones de un filtro.
func (s *Service) ListOptions(ctx context.Context, companyID, filterID string, opts repository.ListOptions) ([]dto.FilterOptionResponse, error) {
	if _, err := s.filter(ctx, companyID, filterID); err != nil {
		return nil, err
	}
	list, err := s.filters.ListOptions(ctx, filterID, opts.Normalize())
	if err != nil {
		return nil, err
	}
	out := make([]dto.FilterOptionResponse, 0, len(list))
	for _, o := range list {
		out = append(out, *toOptionResponse(o))
	}
	return out, nil
}

// AttachOption asigna una opción a un producto. El filtro debe pertenecer a la subcategoría del producto.
// Asignar dos veces la misma opción no hace nada.
func (s *Service) AttachOption(ctx context.Context, companyID, productID, optionID string) error {
	p, err := s.product(ctx, companyID, productID)
	if err != nil {
		return err
	}
	o, err := s.option(ctx, companyID, optionID)
	if err != nil {
		return err
	}
	f, err := s.filter(ctx, companyID, o.FilterID)
	if err != nil {
		return err
	}
	if f.SubcategoryID != p.SubcategoryID {
		return domain.NewValidation("id_opcion", "el filtro no pertenece a la subcategoría del producto")
	}
	existing, err := s.filters.GetProductDetail(ctx, productID, optionID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return s.filters.AttachOption(ctx, &entity.ProductFilterDetail{
		ID: uuid.New().String(), CompanyID: companyID, ProductID: productID, OptionID: optionID,
	})
}

// DetachOption quita la opción del producto.
func (s *Service) DetachOption(ctx context.Context, companyID, productID, optionID string) error {
	if _, err := s.product(ctx, companyID, productID); err != nil {
		return err
	}
	existing, err := s.filters.GetProductDetail(ctx, productID, optionID)
	if err != nil {
		return err
	}
	if err := tenant.Ensure(companyID, tenant.Item("opción de producto", optionID, existing)); err != nil {
		return err
	}
	return s.filters.DetachOption(ctx, productID, optionID)
}

func (s *Service) filter(ctx context.Context, companyID, id string) (*entity.Filter, error) {
	if _, err := s.registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	f, err := s.filters.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tenant.Ensure(companyID, tenant.Item("filtro", id, f)); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) option(ctx context.Context, companyID, id string) (*entity.FilterOption, error) {
	o, err := s.filters.GetOption(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tenant.Ensure(companyID, tenant.Item("opción de filtro", id, o)); err != nil {
		return nil, err
	}
	return o, nil
}

func trimAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}

func toFilterResponse(f *entity.Filter) *dto.FilterResponse {
	return &dto.FilterResponse{
		ID: f.ID, SubcategoryID: f.SubcategoryID, Name: f.Name,
		DataType: f.DataType, AllowedValues: f.AllowedValues,
	}
}

func toOptionResponse(o *entity.FilterOption) *dto.FilterOptionResponse {
	return &dto.FilterOptionResponse{ID: o.ID, FilterID: o.FilterID, Value: o.Value}
}
