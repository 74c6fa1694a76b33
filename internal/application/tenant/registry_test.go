package tenant_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/tenant"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
)

type companyRepoStub struct {
	repository.CompanyRepository
	companies map[string]*entity.Company
}

func (s *companyRepoStub) GetByID(_ context.Context, id string) (*entity.Company, error) {
	return s.companies[id], nil
}

func TestResolve(t *testing.T) {
	deleted := time.Now()
	repo := &companyRepoStub{companies: map[string]*entity.Company{
		"e1": {ID: "e1", Name: "Activa"},
		"e2": {ID: "e2", Name: "Eliminada", Timestamps: entity.Timestamps{DeletedAt: &deleted}},
	}}
	reg := tenant.NewRegistry(repo)

	c, err := reg.Resolve(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "Activa", c.Name)

	_, err = reg.Resolve(context.Background(), "e2")
	assert.ErrorIs(t, err, domain.ErrNotFound, "empresa eliminada no debe resolverse")

	_, err = reg.Resolve(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = reg.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestEnsure(t *testing.T) {
	own := &entity.Warehouse{ID: "a1", CompanyID: "e1"}
	other := &entity.ProductVariant{ID: "v9", CompanyID: "e2"}
	var missing *entity.Supplier

	assert.NoError(t, tenant.Ensure("e1", tenant.Item("almacén", "a1", own)))

	err := tenant.Ensure("e1", tenant.Item("almacén", "a1", own), tenant.Item("variante", "v9", other))
	assert.ErrorIs(t, err, domain.ErrCrossTenantAccess)
	var cte *domain.CrossTenantError
	require.ErrorAs(t, err, &cte)
	assert.Equal(t, "v9", cte.ID)

	err = tenant.Ensure("e1", tenant.Item("proveedor", "p1", missing))
	assert.ErrorIs(t, err, domain.ErrNotFound, "puntero nil debe reportarse como no encontrado")
}
