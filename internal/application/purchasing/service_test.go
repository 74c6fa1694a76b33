package purchasing

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/dto"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/inventory"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/tenant"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/testutil/memstore"
)

type recordingObserver struct{ transitions []string }

func (o *recordingObserver) DocumentTransition(kind, status string) {
	o.transitions = append(o.transitions, kind+":"+status)
}

type fakePDF struct{ doc dto.PurchaseDocument }

func (f *fakePDF) RenderPurchaseOrder(doc dto.PurchaseDocument) ([]byte, error) {
	f.doc = doc
	return []byte("%PDF"), nil
}

type env struct {
	store *memstore.Store
	svc   *Service
	obs   *recordingObserver
	pdf   *fakePDF
	a, b  *memstore.Tenant
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memstore.New()
	registry := tenant.NewRegistry(store.Companies())
	ledger := inventory.NewLedger(store, registry, store.Products(), store.Warehouses())
	obs := &recordingObserver{}
	pdf := &fakePDF{}
	svc := NewService(Deps{
		Ledger: ledger, Registry: registry, Companies: store.Companies(), Suppliers: store.Suppliers(),
		Warehouses: store.Warehouses(), Products: store.Products(), Currencies: store.Currencies(),
		Purchases: store.Purchases(), PDF: pdf, Observer: obs,
	})
	return &env{store: store, svc: svc, obs: obs, pdf: pdf, a: store.SeedTenant("A"), b: store.SeedTenant("B")}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (e *env) stock(t *testing.T, variantID, warehouseID string) decimal.Decimal {
	t.Helper()
	st, err := e.store.Stock().Get(context.Background(), e.a.Company.ID, variantID, warehouseID)
	require.NoError(t, err)
	return st.Quantity
}

func (e *env) request(lines ...dto.PurchaseLineRequest) dto.CreatePurchaseRequest {
	return dto.CreatePurchaseRequest{
		SupplierID:    e.a.Supplier.ID,
		WarehouseID:   e.a.Warehouse.ID,
		PaymentMethod: entity.PaymentTransfer,
		CurrencyCode:  "USD",
		Lines:         lines,
	}
}

func TestRecepcionDeCompraConDosLineas(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	productA := e.a.Variant
	productB := e.store.AddVariant(e.a, "B-001")
	e.store.SetStock(e.a.Company.ID, productB.ID, e.a.Warehouse.ID, decimal.NewFromInt(20))

	p, err := e.svc.CreatePurchase(ctx, e.a.Company.ID, e.a.User.ID, e.request(
		dto.PurchaseLineRequest{VariantID: productA.ID, Quantity: dec("10"), UnitCost: dec("5.00")},
		dto.PurchaseLineRequest{VariantID: productB.ID, Quantity: dec("3"), UnitCost: dec("12.50")},
	))
	require.NoError(t, err)
	assert.Equal(t, "87.50", p.Total.StringFixed(2), "10 × 5.00 + 3 × 12.50")
	assert.Equal(t, entity.PurchaseStatusPending, p.Status)
	assert.True(t, p.TotalMatches)
	assert.True(t, e.stock(t, productA.ID, e.a.Warehouse.ID).IsZero(), "crear no mueve stock")

	r, err := e.svc.ReceivePurchase(ctx, e.a.Company.ID, e.a.User.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusReceived, r.Status)
	require.NotNil(t, r.ReceivedAt)

	assert.True(t, e.stock(t, productA.ID, e.a.Warehouse.ID).Equal(decimal.NewFromInt(10)))
	assert.True(t, e.stock(t, productB.ID, e.a.Warehouse.ID).Equal(decimal.NewFromInt(23)))

	movs := e.store.AllMovements()
	require.Len(t, movs, 2)
	for _, m := range movs {
		assert.Equal(t, entity.ReasonPurchaseReceipt, m.Reason)
	}
	assert.Equal(t, []string{"compra:Pendiente", "compra:Recibido"}, e.obs.transitions)
}

func TestRecepcionActualizaCostoPromedio(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p, err := e.svc.CreatePurchase(ctx, e.a.Company.ID, e.a.User.ID, e.request(
		dto.PurchaseLineRequest{VariantID: e.a.Variant.ID, Quantity: dec("10"), UnitCost: dec("4.00")},
	))
	require.NoError(t, err)
	_, err = e.svc.ReceivePurchase(ctx, e.a.Company.ID, e.a.User.ID, p.ID)
	require.NoError(t, err)

	p2, err := e.svc.CreatePurchase(ctx, e.a.Company.ID, e.a.User.ID, e.request(
		dto.PurchaseLineRequest{VariantID: e.a.Variant.ID, Quantity: dec("10"), UnitCost: dec("6.00")},
	))
	require.NoError(t, err)
	_, err = e.svc.ReceivePurchase(ctx, e.a.Company.ID, e.a.User.ID, p2.ID)
	require.NoError(t, err)

	v, err := e.store.Products().GetVariant(ctx, e.a.Variant.ID)
	require.NoError(t, err)
	assert.True(t, v.AvgCost.Equal(dec("5")), "promedio ponderado esperado 5, obtenido %s", v.AvgCost)
}

func TestCancelarCompraPendienteNoGeneraMovimientos(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p, err := e.svc.CreatePurchase(ctx, e.a.Company.ID, e.a.User.ID, e.request(
		dto.PurchaseLineRequest{VariantID: e.a.Variant.ID, Quantity: dec("4"), UnitCost: dec("1.00")},
	))
	require.NoError(t, err)

	c, err := e.svc.CancelPurchase(ctx, e.a.Company.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusCancelled, c.Status)
	assert.Empty(t, e.store.AllMovements(), "cancelar nunca toca el ledger")

	_, err = e.svc.ReceivePurchase(ctx, e.a.Company.ID, e.a.User.ID, p.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "una compra cancelada no se recibe")
	assert.Empty(t, e.store.AllMovements())
}

func TestRecibirDosVecesEsTransicionInvalida(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p, err := e.svc.CreatePurchase(ctx, e.a.Company.ID, e.a.User.ID, e.request(
		dto.PurchaseLineRequest{VariantID: e.a.Variant.ID, Quantity: dec("4"), UnitCost: dec("1.00")},
	))
	require.NoError(t, err)
	_, err = e.svc.ReceivePurchase(ctx, e.a.Company.ID, e.a.User.ID, p.ID)
	require.NoError(t, err)

	_, err = e.svc.ReceivePurchase(ctx, e.a.Company.ID, e.a.User.ID, p.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = e.svc.CancelPurchase(ctx, e.a.Company.ID, p.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.True(t, e.stock(t, e.a.Variant.ID, e.a.Warehouse.ID).Equal(decimal.NewFromInt(4)), "el stock se suma una sola vez")
}

func TestRecepcionConConflictosReintentaSinDuplicar(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p, err := e.svc.CreatePurchase(ctx, e.a.Company.ID, e.a.User.ID, e.request(
		dto.PurchaseLineRequest{VariantID: e.a.Variant.ID, Quantity: dec("4"), UnitCost: dec("1.00")},
	))
	require.NoError(t, err)

	e.store.FailNextCommits(2)
	_, err = e.svc.ReceivePurchase(ctx, e.a.Company.ID, e.a.User.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, e.stock(t, e.a.Variant.ID, e.a.Warehouse.ID).Equal(decimal.NewFromInt(4)))
	assert.Len(t, e.store.AllMovements(), 1)
}

func TestCrearCompra_Validaciones(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	line := dto.PurchaseLineRequest{VariantID: e.a.Variant.ID, Quantity: dec("1"), UnitCost: dec("1.00")}

	cases := []struct {
		name   string
		mutate func(r *dto.CreatePurchaseRequest)
		want   error
	}{
		{"sin líneas", func(r *dto.CreatePurchaseRequest) { r.Lines = nil }, domain.ErrValidation},
		{"cantidad cero", func(r *dto.CreatePurchaseRequest) { r.Lines[0].Quantity = decimal.Zero }, domain.ErrValidation},
		{"costo negativo", func(r *dto.CreatePurchaseRequest) { r.Lines[0].UnitCost = dec("-1") }, domain.ErrValidation},
		{"cantidad con cinco decimales", func(r *dto.CreatePurchaseRequest) { r.Lines[0].Quantity = dec("2.12345") }, domain.ErrValidation},
		{"costo con tres decimales", func(r *dto.CreatePurchaseRequest) { r.Lines[0].UnitCost = dec("1.005") }, domain.ErrValidation},
		{"método de pago", func(r *dto.CreatePurchaseRequest) { r.PaymentMethod = "Trueque" }, domain.ErrValidation},
		{"divisa no registrada", func(r *dto.CreatePurchaseRequest) { r.CurrencyCode = "JPY" }, domain.ErrNotFound},
		{"proveedor de otra empresa", func(r *dto.CreatePurchaseRequest) { r.SupplierID = e.b.Supplier.ID }, domain.ErrCrossTenantAccess},
		{"almacén de otra empresa", func(r *dto.CreatePurchaseRequest) { r.WarehouseID = e.b.Warehouse.ID }, domain.ErrCrossTenantAccess},
		{"variante de otra empresa", func(r *dto.CreatePurchaseRequest) { r.Lines[0].VariantID = e.b.Variant.ID }, domain.ErrCrossTenantAccess},
		{"proveedor inexistente", func(r *dto.CreatePurchaseRequest) { r.SupplierID = "no-existe" }, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := e.request(line)
			tc.mutate(&req)
			_, err := e.svc.CreatePurchase(ctx, e.a.Company.ID, e.a.User.ID, req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	list, err := e.svc.ListPurchases(ctx, e.a.Company.ID, "", repository.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, list, "ninguna compra inválida se persiste")
}

func TestCompraDeOtraEmpresa(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p, err := e.svc.CreatePurchase(ctx, e.a.Company.ID, e.a.User.ID, e.request(
		dto.PurchaseLineRequest{VariantID: e.a.Variant.ID, Quantity: dec("1"), UnitCost: dec("1.00")},
	))
	require.NoError(t, err)

	_, err = e.svc.GetPurchase(ctx, e.b.Company.ID, p.ID)
	assert.ErrorIs(t, err, domain.ErrCrossTenantAccess)
	_, err = e.svc.ReceivePurchase(ctx, e.b.Company.ID, e.b.User.ID, p.ID)
	assert.ErrorIs(t, err, domain.ErrCrossTenantAccess)
	assert.Empty(t, e.store.AllMovements())
}

func TestListarComprasPorEstado(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	line := dto.PurchaseLineRequest{VariantID: e.a.Variant.ID, Quantity: dec("1"), UnitCost: dec("1.00")}
	p1, err := e.svc.CreatePurchase(ctx, e.a.Company.ID, e.a.User.ID, e.request(line))
	require.NoError(t, err)
	_, err = e.svc.CreatePurchase(ctx, e.a.Company.ID, e.a.User.ID, e.request(line))
	require.NoError(t, err)
	_, err = e.svc.CancelPurchase(ctx, e.a.Company.ID, p1.ID)
	require.NoError(t, err)

	pend, err := e.svc.ListPurchases(ctx, e.a.Company.ID, entity.PurchaseStatusPending, repository.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, pend, 1)
	_, err = e.svc.ListPurchases(ctx, e.a.Company.ID, "Perdido", repository.ListOptions{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPurchasePDF(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p, err := e.svc.CreatePurchase(ctx, e.a.Company.ID, e.a.User.ID, e.request(
		dto.PurchaseLineRequest{VariantID: e.a.Variant.ID, Quantity: dec("2"), UnitCost: dec("3.25")},
	))
	require.NoError(t, err)

	out, err := e.svc.PurchasePDF(ctx, e.a.Company.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), out)
	assert.Equal(t, e.a.Supplier.Name, e.pdf.doc.SupplierName)
	assert.Equal(t, e.a.Warehouse.Name, e.pdf.doc.WarehouseName)
	require.Len(t, e.pdf.doc.Lines, 1)
	assert.Equal(t, e.a.Variant.SKU, e.pdf.doc.Lines[0].SKU)
	assert.Equal(t, "6.50", e.pdf.doc.Total.StringFixed(2))
}
