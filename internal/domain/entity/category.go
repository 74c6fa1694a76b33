package entity

// Category agrupa subcategorías de productos.
type Category struct {
	ID          string
	CompanyID   string
	Name        string
	Description string
	Timestamps
}

func (c *Category) TenantID() string { return c.CompanyID }

// Subcategory pertenece a una Category; define los filtros aplicables a sus productos.
type Subcategory struct {
	ID          string
	CompanyID   string
	CategoryID  string
	Name        string
	Description string
	Timestamps
}

func (s *Subcategory) TenantID() string { return s.CompanyID }
