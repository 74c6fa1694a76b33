package dto

import "time"

// CreateWarehouseRequest entrada para crear un almacén.
type CreateWarehouseRequest struct {
	Name      string `json:"nombre" validate:"required,min=1,max=200"`
	Address   string `json:"direccion"`
	IsPrimary bool   `json:"es_principal"`
}

// UpdateWarehouseRequest entrada para actualizar un almacén.
type UpdateWarehouseRequest struct {
	Name      *string `json:"nombre" validate:"omitempty,min=1,max=200"`
	Address   *string `json:"direccion"`
	IsPrimary *bool   `json:"es_principal"`
}

// WarehouseResponse salida de un almacén.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"nombre"`
	Address   string    `json:"direccion"`
	IsPrimary bool      `json:"es_principal"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WarehouseListResponse lista paginada de almacenes.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
