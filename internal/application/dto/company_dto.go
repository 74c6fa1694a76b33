package dto

import "time"

// CreateCompanyRequest entrada para crear una empresa.
type CreateCompanyRequest struct {
	Name    string `json:"nombre" validate:"required,min=1,max=200"`
	TaxID   string `json:"nit" validate:"required,min=1,max=20"`
	Address string `json:"direccion"`
	Phone   string `json:"telefono"`
	Email   string `json:"correo" validate:"omitempty,email"`
}

// UpdateCompanyRequest entrada para actualizar una empresa (campos opcionales).
type UpdateCompanyRequest struct {
	Name    *string `json:"nombre" validate:"omitempty,min=1,max=200"`
	Address *string `json:"direccion"`
	Phone   *string `json:"telefono"`
	Email   *string `json:"correo" validate:"omitempty,email"`
}

// CompanyResponse salida de una empresa.
type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"nombre"`
	TaxID     string    `json:"nit"`
	Address   string    `json:"direccion"`
	Phone     string    `json:"telefono"`
	Email     string    `json:"correo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyListResponse lista paginada de empresas.
type CompanyListResponse struct {
	Items []CompanyResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
