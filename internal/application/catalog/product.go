package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/dto"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/tenant"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/valuation"
)

// CreateProduct crea un producto en una subcategoría de la empresa.
func (s *Service) CreateProduct(ctx context.Context, companyID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if _, err := s.subcategory(ctx, companyID, in.SubcategoryID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidation("nombre", "requerido")
	}
	if err := checkPrice("precio_venta", in.Price); err != nil {
		return nil, err
	}
	code, err := s.currency(ctx, companyID, in.CurrencyCode)
	if err != nil {
		return nil, err
	}
	p := &entity.Product{
		ID:            uuid.New().String(),
		CompanyID:     companyID,
		SubcategoryID: in.SubcategoryID,
		Name:          name,
		Description:   in.Description,
		Price:         in.Price,
		CurrencyCode:  code,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// GetProduct devuelve el producto con variantes y opciones de filtro asignadas.
func (s *Service) GetProduct(ctx context.Context, companyID, id string) (*dto.ProductResponse, error) {
	p, err := s.product(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	resp := toProductResponse(p)
	variants, err := s.products.ListVariants(ctx, id, repository.ListOptions{Limit: 100})
	if err != nil {
		return nil, err
	}
	for _, v := range variants {
		resp.Variants = append(resp.Variants, *toVariantResponse(v))
	}
	options, err := s.filters.ListProductOptions(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, o := range options {
		resp.Options = append(resp.Options, *toOptionResponse(o))
	}
	return resp, nil
}

// UpdateProduct actualiza los campos enviados.
func (s *Service) UpdateProduct(ctx context.Context, companyID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.product(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if in.SubcategoryID != nil && *in.SubcategoryID != p.SubcategoryID {
		if _, err := s.subcategory(ctx, companyID, *in.SubcategoryID); err != nil {
			return nil, err
		}
		p.SubcategoryID = *in.SubcategoryID
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.NewValidation("nombre", "requerido")
		}
		p.Name = name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		if err := checkPrice("precio_venta", *in.Price); err != nil {
			return nil, err
		}
		p.Price = *in.Price
	}
	if in.CurrencyCode != nil {
		code, err := s.currency(ctx, companyID, *in.CurrencyCode)
		if err != nil {
			return nil, err
		}
		p.CurrencyCode = code
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// DeleteProduct elimina lógicamente el producto y sus variantes.
func (s *Service) DeleteProduct(ctx context.Context, companyID, id string) error {
	if _, err := s.product(ctx, companyID, id); err != nil {
		return err
	}
	return s.products.SoftDelete(ctx, id)
}

// ListProducts lista productos con filtros opcionales.
func (s *Service) ListProducts(ctx context.Context, companyID string, q dto.ProductListQuery) ([]dto.ProductResponse, error) {
	if _, err := s.registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	opts := repository.ListOptions{Limit: q.Limit, Offset: q.Offset, IncludeDeleted: q.IncludeDeleted}.Normalize()
	list, err := s.products.ListByCompany(ctx, companyID, repository.ProductFilter{
		SubcategoryID: q.SubcategoryID,
		Search:        q.Search,
	}, opts)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *toProductResponse(p))
	}
	return out, nil
}

// CreateVariant agrega una variante; el SKU es único por empresa.
func (s *Service) CreateVariant(ctx context.Context, companyID, productID string, in dto.VariantRequest) (*dto.VariantResponse, error) {
	if _, err := s.product(ctx, companyID, productID); err != nil {
		return nil, err
	}
	v := &entity.ProductVariant{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		ProductID: productID,
	}
	if err := applyVariant(v, in); err != nil {
		return nil, err
	}
	existing, err := s.products.GetVariantBySKU(ctx, companyID, v.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if err := s.products.CreateVariant(ctx, v); err != nil {
		return nil, err
	}
	return toVariantResponse(v), nil
}

// UpdateVariant actualiza la variante. El costo promedio solo cambia al recibir compras.
func (s *Service) UpdateVariant(ctx context.Context, companyID, id string, in dto.VariantRequest) (*dto.VariantResponse, error) {
	v, err := s.variant(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := applyVariant(v, in); err != nil {
		return nil, err
	}
	existing, err := s.products.GetVariantBySKU(ctx, companyID, v.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != v.ID {
		return nil, domain.ErrDuplicate
	}
	if err := s.products.UpdateVariant(ctx, v); err != nil {
		return nil, err
	}
	return toVariantResponse(v), nil
}

// DeleteVariant elimina lógicamente la variante. Su historial de stock se conserva.
func (s *Service) DeleteVariant(ctx context.Context, companyID, id string) error {
	if _, err := s.variant(ctx, companyID, id); err != nil {
		return err
	}
	return s.products.SoftDeleteVariant(ctx, id)
}

// ListVariants variantes de un producto.
func (s *Service) ListVariants(ctx context.Context, companyID, productID string, opts repository.ListOptions) ([]dto.VariantResponse, error) {
	if _, err := s.product(ctx, companyID, productID); err != nil {
		return nil, err
	}
	list, err := s.products.ListVariants(ctx, productID, opts.Normalize())
	if err != nil {
		return nil, err
	}
	out := make([]dto.VariantResponse, 0, len(list))
	for _, v := range list {
		out = append(out, *toVariantResponse(v))
	}
	return out, nil
}

func applyVariant(v *entity.ProductVariant, in dto.VariantRequest) error {
	sku := strings.TrimSpace(in.SKU)
	if sku == "" {
		return domain.NewValidation("sku", "requerido")
	}
	if err := checkPrice("precio", in.Price); err != nil {
		return err
	}
	if in.MinStock.IsNegative() {
		return domain.NewValidation("stock_minimo", "no puede ser negativo")
	}
	v.SKU = sku
	v.Name = strings.TrimSpace(in.Name)
	v.Price = in.Price
	v.MinStock = in.MinStock
	return nil
}

func checkPrice(field string, price decimal.Decimal) error {
	if price.IsNegative() {
		return domain.NewValidation(field, "no puede ser negativo")
	}
	return valuation.CheckPrecision(field, price)
}

func (s *Service) currency(ctx context.Context, companyID, code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	c, err := s.currencies.GetByCode(ctx, companyID, code)
	if err != nil {
		return "", err
	}
	if c == nil {
		return "", domain.NewNotFound("divisa", code)
	}
	return c.Code, nil
}

func (s *Service) product(ctx context.Context, companyID, id string) (*entity.Product, error) {
	if _, err := s.registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tenant.Ensure(companyID, tenant.Item("producto", id, p)); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) variant(ctx context.Context, companyID, id string) (*entity.ProductVariant, error) {
	if _, err := s.registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	v, err := s.products.GetVariant(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tenant.Ensure(companyID, tenant.Item("variante", id, v)); err != nil {
		return nil, err
	}
	return v, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:            p.ID,
		SubcategoryID: p.SubcategoryID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		CurrencyCode:  p.CurrencyCode,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		DeletedAt:     p.DeletedAt,
	}
}

func toVariantResponse(v *entity.ProductVariant) *dto.VariantResponse {
	return &dto.VariantResponse{
		ID: v.ID, ProductID: v.ProductID, SKU: v.SKU, Name: v.Name,
		Price: v.Price, MinStock: v.MinStock, AvgCost: v.AvgCost,
	}
}
