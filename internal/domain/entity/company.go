package entity

// Company representa una empresa (tenant). Es dueña, de forma transitiva, de todo lo demás.
type Company struct {
	ID      string
	Name    string
	TaxID   string // NIT / número de registro tributario
	Address string
	Phone   string
	Email   string
	Timestamps
}

// TenantID de una empresa es su propio ID.
func (c *Company) TenantID() string { return c.ID }

// GlobalConfig fija la divisa base de una empresa (ConfiguracionGlobal).
type GlobalConfig struct {
	ID               string
	CompanyID        string
	BaseCurrencyCode string
	Timestamps
}

func (g *GlobalConfig) TenantID() string { return g.CompanyID }
