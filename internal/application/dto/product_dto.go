package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryRequest body para crear/actualizar categorías y subcategorías.
type CategoryRequest struct {
	Name        string `json:"nombre" validate:"required,min=1,max=120"`
	Description string `json:"descripcion" validate:"max=500"`
}

// CategoryResponse salida de categoría o subcategoría.
type CategoryResponse struct {
	ID          string     `json:"id"`
	CategoryID  string     `json:"id_categoria,omitempty"`
	Name        string     `json:"nombre"`
	Description string     `json:"descripcion"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SubcategoryID string          `json:"id_subcategoria" validate:"required,uuid"`
	Name          string          `json:"nombre" validate:"required,min=1,max=200"`
	Description   string          `json:"descripcion"`
	Price         decimal.Decimal `json:"precio_venta" validate:"decimal_nonnegative"`
	CurrencyCode  string          `json:"divisa" validate:"required,len=3"`
}

// UpdateProductRequest entrada para actualizar un producto (campos opcionales).
type UpdateProductRequest struct {
	SubcategoryID *string          `json:"id_subcategoria" validate:"omitempty,uuid"`
	Name          *string          `json:"nombre" validate:"omitempty,min=1,max=200"`
	Description   *string          `json:"descripcion"`
	Price         *decimal.Decimal `json:"precio_venta"`
	CurrencyCode  *string          `json:"divisa" validate:"omitempty,len=3"`
}

// ProductResponse salida de un producto con sus variantes y opciones de filtro.
type ProductResponse struct {
	ID            string                 `json:"id"`
	SubcategoryID string                 `json:"id_subcategoria"`
	Name          string                 `json:"nombre"`
	Description   string                 `json:"descripcion"`
	Price         decimal.Decimal        `json:"precio_venta"`
	CurrencyCode  string                 `json:"divisa"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
	DeletedAt     *time.Time             `json:"deleted_at,omitempty"`
	Variants      []VariantResponse      `json:"variantes,omitempty"`
	Options       []FilterOptionResponse `json:"opciones,omitempty"`
}

// VariantRequest entrada para crear/actualizar una variante.
type VariantRequest struct {
	SKU      string          `json:"sku" validate:"required,min=1,max=100"`
	Name     string          `json:"nombre" validate:"required,min=1,max=200"`
	Price    decimal.Decimal `json:"precio" validate:"decimal_nonnegative"`
	MinStock decimal.Decimal `json:"stock_minimo" validate:"decimal_nonnegative"`
}

// VariantResponse salida de una variante.
type VariantResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"id_producto"`
	SKU       string          `json:"sku"`
	Name      string          `json:"nombre"`
	Price     decimal.Decimal `json:"precio"`
	MinStock  decimal.Decimal `json:"stock_minimo"`
	AvgCost   decimal.Decimal `json:"costo_promedio"`
}

// FilterRequest entrada para crear/actualizar un filtro.
type FilterRequest struct {
	Name          string   `json:"nombre" validate:"required,max=120"`
	DataType      string   `json:"tipo_dato" validate:"required,oneof=Texto Numérico Lista"`
	AllowedValues []string `json:"valores_permitidos,omitempty" validate:"omitempty,dive,required,max=120"`
}

// FilterResponse salida de un filtro.
type FilterResponse struct {
	ID            string   `json:"id"`
	SubcategoryID string   `json:"id_subcategoria"`
	Name          string   `json:"nombre"`
	DataType      string   `json:"tipo_dato"`
	AllowedValues []string `json:"valores_permitidos,omitempty"`
}

// FilterOptionRequest entrada para crear una opción de filtro.
type FilterOptionRequest struct {
	Value string `json:"valor" validate:"required,max=120"`
}

// FilterOptionResponse salida de una opción.
type FilterOptionResponse struct {
	ID       string `json:"id"`
	FilterID string `json:"id_filtro"`
	Value    string `json:"valor"`
}

// ProductListQuery filtros de GET /api/products.
type ProductListQuery struct {
	SubcategoryID  string `query:"id_subcategoria"`
	Search         string `query:"q"`
	IncludeDeleted bool   `query:"incluir_eliminados"`
	PageRequest
}
