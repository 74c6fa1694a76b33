package entity

// Warehouse representa un almacén (físico o lógico) de una empresa.
// IsPrimary no es único por empresa en el esquema; se conserva tal cual.
type Warehouse struct {
	ID        string
	CompanyID string
	Name      string
	Address   string
	IsPrimary bool
	Timestamps
}

func (w *Warehouse) TenantID() string { return w.CompanyID }
