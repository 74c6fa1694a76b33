package dto

import "time"

// SupplierRequest entrada para crear/actualizar un proveedor.
// dias_credito se guarda tal cual, incluso si es negativo.
type SupplierRequest struct {
	Name        string `json:"nombre" validate:"required,min=1,max=200"`
	TaxID       string `json:"nit" validate:"max=20"`
	ContactName string `json:"contacto" validate:"max=200"`
	Phone       string `json:"telefono" validate:"max=30"`
	Email       string `json:"correo" validate:"omitempty,email"`
	Address     string `json:"direccion"`
	CreditDays  int    `json:"dias_credito"`
}

// SupplierResponse salida de un proveedor.
type SupplierResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"nombre"`
	TaxID       string    `json:"nit"`
	ContactName string    `json:"contacto"`
	Phone       string    `json:"telefono"`
	Email       string    `json:"correo"`
	Address     string    `json:"direccion"`
	CreditDays  int       `json:"dias_credito"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
