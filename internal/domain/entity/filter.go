package entity

// Tipos de dato de un Filtro.
const (
	FilterTypeText    = "Texto"
	FilterTypeNumeric = "Numérico"
	FilterTypeList    = "Lista"
)

// Filter define un atributo tipado de una subcategoría (Filtro).
// AllowedValues solo aplica a FilterTypeList: es el conjunto cerrado de valores válidos.
type Filter struct {
	ID            string
	CompanyID     string
	SubcategoryID string
	Name          string
	DataType      string
	AllowedValues []string
	Timestamps
}

func (f *Filter) TenantID() string { return f.CompanyID }

// FilterOption es un valor permitido de un Filtro (OpcionFiltro).
type FilterOption struct {
	ID        string
	CompanyID string
	FilterID  string
	Value     string
	Timestamps
}

func (o *FilterOption) TenantID() string { return o.CompanyID }

// ProductFilterDetail vincula un producto con una opción elegida (ProductoDetalleFiltro).
type ProductFilterDetail struct {
	ID        string
	CompanyID string
	ProductID string
	OptionID  string
	Timestamps
}

func (d *ProductFilterDetail) TenantID() string { return d.CompanyID }
