package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/dto"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/tenant"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/testutil/memstore"
)

type countingObserver struct {
	mu        sync.Mutex
	applied   map[string]int
	replayed  int
	conflicts int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{applied: map[string]int{}}
}

func (o *countingObserver) MovementApplied(reason string) {
	o.mu.Lock()
	o.applied[reason]++
	o.mu.Unlock()
}

func (o *countingObserver) MovementReplayed(string) {
	o.mu.Lock()
	o.replayed++
	o.mu.Unlock()
}

func (o *countingObserver) ConflictRetried() {
	o.mu.Lock()
	o.conflicts++
	o.mu.Unlock()
}

type fakeExporter struct {
	warehouse string
	rows      int
}

func (f *fakeExporter) ExportStock(name string, items []repository.StockLevelItem) ([]byte, error) {
	f.warehouse = name
	f.rows = len(items)
	return []byte("xlsx"), nil
}

type fixture struct {
	store    *memstore.Store
	ledger   *Ledger
	service  *StockService
	observer *countingObserver
	exporter *fakeExporter
	a        *memstore.Tenant
	b        *memstore.Tenant
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	obs := newCountingObserver()
	exp := &fakeExporter{}
	registry := tenant.NewRegistry(store.Companies())
	ledger := NewLedger(store, registry, store.Products(), store.Warehouses(), WithObserver(obs))
	svc := NewStockService(ledger, registry, store.Stock(), store.Movements(), store.StockReport(),
		store.Products(), store.Warehouses(), exp)
	return &fixture{
		store: store, ledger: ledger, service: svc, observer: obs, exporter: exp,
		a: store.SeedTenant("A"), b: store.SeedTenant("B"),
	}
}

func (f *fixture) level(t *testing.T, tn *memstore.Tenant, variantID, warehouseID string) decimal.Decimal {
	t.Helper()
	lvl, err := f.service.GetStockLevel(context.Background(), tn.Company.ID, variantID, warehouseID)
	require.NoError(t, err)
	return lvl.Quantity
}

func (f *fixture) adjust(t *testing.T, delta string) *dto.MovementResponse {
	t.Helper()
	res, err := f.service.AdjustStock(context.Background(), f.a.Company.ID, f.a.User.ID, dto.AdjustStockRequest{
		VariantID: f.a.Variant.ID, WarehouseID: f.a.Warehouse.ID, Delta: decimal.RequireFromString(delta),
	})
	require.NoError(t, err)
	return res
}

func TestGetStockLevel_SinFilaDevuelveCero(t *testing.T) {
	f := newFixture(t)
	assert.True(t, f.level(t, f.a, f.a.Variant.ID, f.a.Warehouse.ID).IsZero(), "sin movimientos el stock debe ser cero")
}

func TestAdjustStock_StockIgualASumaDeMovimientos(t *testing.T) {
	f := newFixture(t)
	for _, d := range []string{"10", "-3", "2.5", "-4.5"} {
		f.adjust(t, d)
	}

	sum := decimal.Zero
	for _, m := range f.store.AllMovements() {
		sum = sum.Add(m.Delta)
	}
	stock := f.level(t, f.a, f.a.Variant.ID, f.a.Warehouse.ID)
	assert.True(t, stock.Equal(decimal.NewFromInt(5)), "stock esperado 5, obtenido %s", stock)
	assert.True(t, stock.Equal(sum), "el stock debe ser la suma de los deltas")
	assert.Equal(t, 4, f.observer.applied[entity.ReasonManualAdjustment])
}

func TestAdjustStock_RegistraCantidadAnteriorYPosterior(t *testing.T) {
	f := newFixture(t)
	f.adjust(t, "8")
	res := f.adjust(t, "-3")
	assert.True(t, res.QuantityBefore.Equal(decimal.NewFromInt(8)))
	assert.True(t, res.QuantityAfter.Equal(decimal.NewFromInt(5)))
	assert.True(t, res.Applied)
}

func TestAdjustStock_StockInsuficienteNoModificaNada(t *testing.T) {
	f := newFixture(t)
	f.adjust(t, "2")

	_, err := f.service.AdjustStock(context.Background(), f.a.Company.ID, f.a.User.ID, dto.AdjustStockRequest{
		VariantID: f.a.Variant.ID, WarehouseID: f.a.Warehouse.ID, Delta: decimal.NewFromInt(-3),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	var shortage *domain.InsufficientStockError
	require.True(t, errors.As(err, &shortage))
	assert.True(t, shortage.Available.Equal(decimal.NewFromInt(2)))
	assert.True(t, shortage.Requested.Equal(decimal.NewFromInt(3)))

	assert.True(t, f.level(t, f.a, f.a.Variant.ID, f.a.Warehouse.ID).Equal(decimal.NewFromInt(2)), "el stock no debe cambiar")
	assert.Len(t, f.store.AllMovements(), 1, "no debe registrarse movimiento fallido")
}

func TestAdjustStock_DeltaCeroEsValidacion(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.AdjustStock(context.Background(), f.a.Company.ID, f.a.User.ID, dto.AdjustStockRequest{
		VariantID: f.a.Variant.ID, WarehouseID: f.a.Warehouse.ID, Delta: decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAdjustStock_DeltaConMasDeCuatroDecimales(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.AdjustStock(context.Background(), f.a.Company.ID, f.a.User.ID, dto.AdjustStockRequest{
		VariantID: f.a.Variant.ID, WarehouseID: f.a.Warehouse.ID, Delta: decimal.RequireFromString("0.00001"),
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "delta", ve.Field)
	assert.Empty(t, f.store.AllMovements())

	res, err := f.service.AdjustStock(context.Background(), f.a.Company.ID, f.a.User.ID, dto.AdjustStockRequest{
		VariantID: f.a.Variant.ID, WarehouseID: f.a.Warehouse.ID, Delta: decimal.RequireFromString("1.2500"),
	})
	require.NoError(t, err)
	assert.True(t, res.QuantityAfter.Equal(decimal.RequireFromString("1.25")))
}

func TestApplyMovement_RepeticionNoDuplica(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := MovementInput{
		CompanyID: f.a.Company.ID, VariantID: f.a.Variant.ID, WarehouseID: f.a.Warehouse.ID,
		Delta: decimal.NewFromInt(7), Reason: entity.ReasonPurchaseReceipt, ReferenceID: "linea-1",
	}
	first, err := f.ledger.ApplyMovement(ctx, in)
	require.NoError(t, err)
	second, err := f.ledger.ApplyMovement(ctx, in)
	require.NoError(t, err)

	assert.True(t, first.Applied)
	assert.False(t, second.Applied, "la repetición no debe aplicarse")
	assert.Equal(t, first.Movement.ID, second.Movement.ID)
	assert.True(t, f.level(t, f.a, f.a.Variant.ID, f.a.Warehouse.ID).Equal(decimal.NewFromInt(7)))
	assert.Equal(t, 1, f.observer.replayed)
}

func TestApplyMovement_ReferenciaReusadaConOtroDeltaEsConflicto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := MovementInput{
		CompanyID: f.a.Company.ID, VariantID: f.a.Variant.ID, WarehouseID: f.a.Warehouse.ID,
		Delta: decimal.NewFromInt(7), Reason: entity.ReasonPurchaseReceipt, ReferenceID: "linea-1",
	}
	_, err := f.ledger.ApplyMovement(ctx, in)
	require.NoError(t, err)
	in.Delta = decimal.NewFromInt(9)
	_, err = f.ledger.ApplyMovement(ctx, in)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestApplyMovement_OtraEmpresa(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.ApplyMovement(context.Background(), MovementInput{
		CompanyID: f.a.Company.ID, VariantID: f.b.Variant.ID, WarehouseID: f.a.Warehouse.ID,
		Delta: decimal.NewFromInt(1), Reason: entity.ReasonManualAdjustment, ReferenceID: "x",
	})
	assert.ErrorIs(t, err, domain.ErrCrossTenantAccess)

	_, err = f.ledger.ApplyMovement(context.Background(), MovementInput{
		CompanyID: f.a.Company.ID, VariantID: f.a.Variant.ID, WarehouseID: f.b.Warehouse.ID,
		Delta: decimal.NewFromInt(1), Reason: entity.ReasonManualAdjustment, ReferenceID: "y",
	})
	assert.ErrorIs(t, err, domain.ErrCrossTenantAccess)
	assert.Empty(t, f.store.AllMovements())
}

func TestApplyMovement_MotivoDesconocido(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.ApplyMovement(context.Background(), MovementInput{
		CompanyID: f.a.Company.ID, VariantID: f.a.Variant.ID, WarehouseID: f.a.Warehouse.ID,
		Delta: decimal.NewFromInt(1), Reason: "Regalo", ReferenceID: "x",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRun_ReintentaConflictosHastaElLimite(t *testing.T) {
	f := newFixture(t)
	f.store.FailNextCommits(2)
	f.adjust(t, "4")
	assert.Equal(t, 3, f.store.Attempts(), "dos conflictos y un intento exitoso")
	assert.Equal(t, 2, f.observer.conflicts)
	assert.True(t, f.level(t, f.a, f.a.Variant.ID, f.a.Warehouse.ID).Equal(decimal.NewFromInt(4)))
}

func TestRun_AgotaReintentos(t *testing.T) {
	f := newFixture(t)
	f.store.FailNextCommits(DefaultMaxAttempts)
	_, err := f.service.AdjustStock(context.Background(), f.a.Company.ID, f.a.User.ID, dto.AdjustStockRequest{
		VariantID: f.a.Variant.ID, WarehouseID: f.a.Warehouse.ID, Delta: decimal.NewFromInt(4),
	})
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.Equal(t, DefaultMaxAttempts, f.store.Attempts())
	assert.True(t, f.level(t, f.a, f.a.Variant.ID, f.a.Warehouse.ID).IsZero(), "sin commit el stock no cambia")
}

func TestRun_NoReintentaOtrosErrores(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("boom")
	err := f.ledger.Run(context.Background(), func(context.Context, repository.TxRepos) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, f.store.Attempts())
}

func TestApplyMovement_ConcurrenciaNuncaQuedaNegativo(t *testing.T) {
	f := newFixture(t)
	f.adjust(t, "10")

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, short := 0, 0
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.AdjustStock(context.Background(), f.a.Company.ID, f.a.User.ID, dto.AdjustStockRequest{
				VariantID: f.a.Variant.ID, WarehouseID: f.a.Warehouse.ID, Delta: decimal.NewFromInt(-1),
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, domain.ErrInsufficientStock) {
				short++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok, "solo 10 salidas caben en el stock")
	assert.Equal(t, 15, short)
	assert.True(t, f.level(t, f.a, f.a.Variant.ID, f.a.Warehouse.ID).IsZero())
}

func TestTransferStock(t *testing.T) {
	f := newFixture(t)
	f.adjust(t, "10")
	ctx := context.Background()

	res, err := f.service.TransferStock(ctx, f.a.Company.ID, f.a.User.ID, dto.TransferStockRequest{
		VariantID: f.a.Variant.ID, FromWarehouseID: f.a.Warehouse.ID, ToWarehouseID: f.a.Warehouse2.ID,
		Quantity: decimal.NewFromInt(4),
	})
	require.NoError(t, err)
	assert.True(t, res.Out.Delta.Equal(decimal.NewFromInt(-4)))
	assert.True(t, res.In.Delta.Equal(decimal.NewFromInt(4)))
	assert.True(t, f.level(t, f.a, f.a.Variant.ID, f.a.Warehouse.ID).Equal(decimal.NewFromInt(6)))
	assert.True(t, f.level(t, f.a, f.a.Variant.ID, f.a.Warehouse2.ID).Equal(decimal.NewFromInt(4)))
}

func TestTransferStock_FaltanteNoMueveNada(t *testing.T) {
	f := newFixture(t)
	f.adjust(t, "3")
	_, err := f.service.TransferStock(context.Background(), f.a.Company.ID, f.a.User.ID, dto.TransferStockRequest{
		VariantID: f.a.Variant.ID, FromWarehouseID: f.a.Warehouse.ID, ToWarehouseID: f.a.Warehouse2.ID,
		Quantity: decimal.NewFromInt(5),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.level(t, f.a, f.a.Variant.ID, f.a.Warehouse.ID).Equal(decimal.NewFromInt(3)))
	assert.True(t, f.level(t, f.a, f.a.Variant.ID, f.a.Warehouse2.ID).IsZero())
}

func TestTransferStock_CantidadConMasDeCuatroDecimales(t *testing.T) {
	f := newFixture(t)
	f.adjust(t, "10")
	_, err := f.service.TransferStock(context.Background(), f.a.Company.ID, f.a.User.ID, dto.TransferStockRequest{
		VariantID: f.a.Variant.ID, FromWarehouseID: f.a.Warehouse.ID, ToWarehouseID: f.a.Warehouse2.ID,
		Quantity: decimal.RequireFromString("1.00001"),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.True(t, f.level(t, f.a, f.a.Variant.ID, f.a.Warehouse.ID).Equal(decimal.NewFromInt(10)))
}

func TestTransferStock_MismoAlmacen(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.TransferStock(context.Background(), f.a.Company.ID, f.a.User.ID, dto.TransferStockRequest{
		VariantID: f.a.Variant.ID, FromWarehouseID: f.a.Warehouse.ID, ToWarehouseID: f.a.Warehouse.ID,
		Quantity: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLowStock(t *testing.T) {
	f := newFixture(t)
	f.adjust(t, "2") // stock_minimo de la variante sembrada es 5

	items, err := f.service.LowStock(context.Background(), f.a.Company.ID, f.a.Warehouse.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, f.a.Variant.SKU, items[0].SKU)
	assert.True(t, items[0].Missing.Equal(decimal.NewFromInt(3)))

	f.adjust(t, "10")
	items, err = f.service.LowStock(context.Background(), f.a.Company.ID, "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListMovements_OtraEmpresa(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.ListMovements(context.Background(), f.a.Company.ID, f.b.Variant.ID, nil, nil, repository.ListOptions{})
	assert.ErrorIs(t, err, domain.ErrCrossTenantAccess)
}

func TestExportStockXLSX(t *testing.T) {
	f := newFixture(t)
	f.adjust(t, "3")
	data, err := f.service.ExportStockXLSX(context.Background(), f.a.Company.ID, f.a.Warehouse.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("xlsx"), data)
	assert.Equal(t, f.a.Warehouse.Name, f.exporter.warehouse)
	assert.Equal(t, 1, f.exporter.rows)
}
