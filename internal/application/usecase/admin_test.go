package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/dto"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/tenant"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/usecase"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/testutil/memstore"
)

func TestCompany_NITUnico(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewCompanyUseCase(memstore.New().Companies())

	c, err := uc.Create(ctx, dto.CreateCompanyRequest{Name: "Nexus", TaxID: "0614-123"})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)

	_, err = uc.Create(ctx, dto.CreateCompanyRequest{Name: "Otra", TaxID: "0614-123"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(ctx, dto.CreateCompanyRequest{Name: " ", TaxID: "x"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCompany_UpdateYDelete(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	uc := usecase.NewCompanyUseCase(store.Companies())
	a := store.SeedTenant("A")

	name := "Nexus S.A."
	got, err := uc.Update(ctx, a.Company.ID, dto.UpdateCompanyRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	assert.Equal(t, a.Company.TaxID, got.TaxID, "el NIT no cambia")

	require.NoError(t, uc.Delete(ctx, a.Company.ID))
	_, err = uc.GetByID(ctx, a.Company.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = tenant.NewRegistry(store.Companies()).Resolve(ctx, a.Company.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "empresa eliminada deja de resolverse")
}

func TestWarehouse_CRUDYAislamiento(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	uc := usecase.NewWarehouseUseCase(tenant.NewRegistry(store.Companies()), store.Warehouses())
	a, b := store.SeedTenant("A"), store.SeedTenant("B")

	// Segundo principal: se permite.
	w, err := uc.Create(ctx, a.Company.ID, dto.CreateWarehouseRequest{Name: "Norte", IsPrimary: true})
	require.NoError(t, err)
	assert.True(t, w.IsPrimary)
	n, err := store.Warehouses().CountPrimary(ctx, a.Company.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = uc.GetByID(ctx, b.Company.ID, w.ID)
	assert.ErrorIs(t, err, domain.ErrCrossTenantAccess)

	addr := "Km 5"
	got, err := uc.Update(ctx, a.Company.ID, w.ID, dto.UpdateWarehouseRequest{Address: &addr})
	require.NoError(t, err)
	assert.Equal(t, addr, got.Address)

	list, err := uc.List(ctx, a.Company.ID, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 3)

	require.NoError(t, uc.Delete(ctx, a.Company.ID, w.ID))
	_, err = uc.GetByID(ctx, a.Company.ID, w.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSupplier_DiasCreditoNegativosSeConservan(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	uc := usecase.NewSupplierUseCase(tenant.NewRegistry(store.Companies()), store.Suppliers())
	a, b := store.SeedTenant("A"), store.SeedTenant("B")

	s, err := uc.Create(ctx, a.Company.ID, dto.SupplierRequest{Name: "Textiles SA", CreditDays: -5})
	require.NoError(t, err)
	assert.Equal(t, -5, s.CreditDays)

	_, err = uc.Create(ctx, a.Company.ID, dto.SupplierRequest{Name: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = uc.Delete(ctx, b.Company.ID, s.ID)
	assert.ErrorIs(t, err, domain.ErrCrossTenantAccess)

	list, err := uc.List(ctx, a.Company.ID, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestUser_EmailUnicoGlobal(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	uc := usecase.NewUserUseCase(tenant.NewRegistry(store.Companies()), store.Users())
	a, b := store.SeedTenant("A"), store.SeedTenant("B")

	u, err := uc.Create(ctx, a.Company.ID, dto.CreateUserRequest{
		Email: "Ventas@Nexus.test", Password: "secreta123", Name: "Ventas", Role: "Vendedor",
	})
	require.NoError(t, err)
	assert.Equal(t, "ventas@nexus.test", u.Email)
	assert.True(t, u.Active)

	_, err = uc.Create(ctx, b.Company.ID, dto.CreateUserRequest{
		Email: "ventas@nexus.test", Password: "secreta123", Name: "Otro", Role: "Vendedor",
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists, "el email es único entre empresas")

	_, err = uc.Create(ctx, a.Company.ID, dto.CreateUserRequest{
		Email: "x@nexus.test", Password: "secreta123", Name: "X", Role: "bodeguero",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	inactive := false
	got, err := uc.Update(ctx, a.Company.ID, u.ID, dto.UpdateUserRequest{Active: &inactive})
	require.NoError(t, err)
	assert.False(t, got.Active)

	_, err = uc.GetByID(ctx, b.Company.ID, u.ID)
	assert.ErrorIs(t, err, domain.ErrCrossTenantAccess)
}
