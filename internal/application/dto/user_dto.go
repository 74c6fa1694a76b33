package dto

import "time"

// CreateUserRequest entrada para crear un usuario dentro de la empresa del administrador.
type CreateUserRequest struct {
	Email    string `json:"correo" validate:"required,email"`
	Password string `json:"clave" validate:"required,min=8"`
	Name     string `json:"nombre" validate:"required,min=1,max=200"`
	Role     string `json:"rol" validate:"required,oneof=Administrador Vendedor SuperAdministrador"`
}

// UpdateUserRequest entrada para actualizar un usuario.
type UpdateUserRequest struct {
	Name   *string `json:"nombre" validate:"omitempty,min=1,max=200"`
	Role   *string `json:"rol" validate:"omitempty,oneof=Administrador Vendedor SuperAdministrador"`
	Active *bool   `json:"activo"`
}

// RegisterRequest entrada para registro (auth): correo, clave, empresa.
type RegisterRequest struct {
	Email     string `json:"correo" validate:"required,email"`
	Password  string `json:"clave" validate:"required,min=8"`
	CompanyID string `json:"id_empresa" validate:"required,uuid"`
	Name      string `json:"nombre" validate:"omitempty,max=200"`
	Role      string `json:"rol" validate:"omitempty,oneof=Administrador Vendedor SuperAdministrador"`
}

// UserResponse salida de un usuario (sin clave).
type UserResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"id_empresa"`
	Email     string    `json:"correo"`
	Name      string    `json:"nombre"`
	Role      string    `json:"rol"`
	Active    bool      `json:"activo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"correo" validate:"required,email"`
	Password string `json:"clave" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"usuario"`
}
