package entity

// Roles válidos para User.
const (
	RoleAdministrador      = "Administrador"
	RoleVendedor           = "Vendedor"
	RoleSuperAdministrador = "SuperAdministrador"
)

// ValidRole indica si r es uno de los roles soportados.
func ValidRole(r string) bool {
	switch r {
	case RoleAdministrador, RoleVendedor, RoleSuperAdministrador:
		return true
	}
	return false
}

// User representa un usuario del sistema (pertenece a una Company). El email es único en todo el sistema.
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string // bcrypt
	Name         string
	Role         string
	Active       bool
	Timestamps
}

func (u *User) TenantID() string { return u.CompanyID }
