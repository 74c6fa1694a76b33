package entity

// Supplier representa un proveedor (Proveedor). CreditDays es el plazo de pago (dias_credito).
type Supplier struct {
	ID          string
	CompanyID   string
	Name        string
	TaxID       string
	ContactName string
	Phone       string
	Email       string
	Address     string
	CreditDays  int
	Timestamps
}

func (s *Supplier) TenantID() string { return s.CompanyID }
