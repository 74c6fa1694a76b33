package repository

// ListOptions paginación y alcance de los listados.
// IncludeDeleted permite consultar filas con borrado lógico (uso de auditoría).
type ListOptions struct {
	Limit          int
	Offset         int
	IncludeDeleted bool
}

// Normalize aplica límites por defecto.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = 20
	}
	if o.Limit > 100 {
		o.Limit = 100
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
