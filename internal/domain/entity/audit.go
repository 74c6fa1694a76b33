package entity

import "time"

// Timestamps campos de auditoría comunes a toda entidad primaria.
// DeletedAt != nil indica borrado lógico: la fila se conserva para historial.
type Timestamps struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsDeleted indica si la entidad fue eliminada lógicamente.
func (t Timestamps) IsDeleted() bool { return t.DeletedAt != nil }

// TenantOwned lo implementa toda entidad que pertenece a una empresa (id_empresa).
type TenantOwned interface {
	TenantID() string
}
