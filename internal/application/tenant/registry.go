// Package tenant resuelve el contexto de empresa de cada operación y verifica
// que las entidades referenciadas pertenezcan a ella.
package tenant

import (
	"context"
	"fmt"
	"reflect"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
)

// Registry resuelve y valida el tenant (empresa) de las operaciones.
type Registry struct {
	companies repository.CompanyRepository
}

// NewRegistry construye el registro de tenants.
func NewRegistry(companies repository.CompanyRepository) *Registry {
	return &Registry{companies: companies}
}

// Resolve devuelve la empresa activa con ese ID o NotFoundError si no existe o fue eliminada.
func (r *Registry) Resolve(ctx context.Context, companyID string) (*entity.Company, error) {
	if companyID == "" {
		return nil, domain.ErrUnauthorized
	}
	company, err := r.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("resolver empresa: %w", err)
	}
	if company == nil || company.IsDeleted() {
		return nil, domain.NewNotFound("empresa", companyID)
	}
	return company, nil
}

// Owned entidad con nombre e ID, usada para mensajes de error.
type Owned struct {
	Entity string
	ID     string
	Owner  entity.TenantOwned
}

// Ensure verifica que todas las entidades pertenezcan a companyID.
// Una entidad nil se reporta como NotFoundError; una ajena como CrossTenantError.
func Ensure(companyID string, items ...Owned) error {
	for _, it := range items {
		if isNil(it.Owner) {
			return domain.NewNotFound(it.Entity, it.ID)
		}
		if it.Owner.TenantID() != companyID {
			return &domain.CrossTenantError{Entity: it.Entity, ID: it.ID}
		}
	}
	return nil
}

// Item atajo para construir un Owned.
func Item(entityName, id string, owner entity.TenantOwned) Owned {
	return Owned{Entity: entityName, ID: id, Owner: owner}
}

// isNil detecta punteros nil envueltos en la interfaz.
func isNil(o entity.TenantOwned) bool {
	if o == nil {
		return true
	}
	v := reflect.ValueOf(o)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
