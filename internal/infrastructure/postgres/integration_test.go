//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/dto"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/inventory"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/purchasing"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/tenant"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/infrastructure/postgres"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/pkg/config"
)

type fixture struct {
	pool      *pgxpool.Pool
	registry  *tenant.Registry
	ledger    *inventory.Ledger
	company   *entity.Company
	warehouse *entity.Warehouse
	supplier  *entity.Supplier
	variantA  *entity.ProductVariant
	variantB  *entity.ProductVariant
	userID    string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("nexus_test"),
		tcPostgres.WithUsername("nexus"),
		tcPostgres.WithPassword("nexus"),
		testcontainers.WithWaitStrategy(tcPostgres.BasicWaitStrategies()...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	url, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	n, err := postgres.Migrate(ctx, pool, "../../../migrations")
	require.NoError(t, err)
	require.Positive(t, n)

	f := &fixture{pool: pool}
	companies := postgres.NewCompanyRepository(pool)
	f.registry = tenant.NewRegistry(companies)
	products := postgres.NewProductRepository(pool)
	warehouses := postgres.NewWarehouseRepository(pool)
	f.ledger = inventory.NewLedger(postgres.NewTxRunner(pool, 2*time.Second), f.registry, products, warehouses,
		inventory.WithMaxAttempts(5))

	f.company = &entity.Company{ID: uuid.NewString(), Name: "Nexus", TaxID: "0614-010101"}
	require.NoError(t, companies.Create(ctx, f.company))
	require.NoError(t, postgres.NewCurrencyRepository(pool).Create(ctx, &entity.Currency{
		ID: uuid.NewString(), CompanyID: f.company.ID, Code: "USD", Name: "Dólar", Symbol: "$",
	}))
	f.warehouse = &entity.Warehouse{ID: uuid.NewString(), CompanyID: f.company.ID, Name: "Central", IsPrimary: true}
	require.NoError(t, warehouses.Create(ctx, f.warehouse))
	f.supplier = &entity.Supplier{ID: uuid.NewString(), CompanyID: f.company.ID, Name: "Textiles", CreditDays: 30}
	require.NoError(t, postgres.NewSupplierRepository(pool).Create(ctx, f.supplier))

	user := &entity.User{ID: uuid.NewString(), CompanyID: f.company.ID, Email: "admin@nexus.test", PasswordHash: "x",
		Name: "Admin", Role: entity.RoleAdministrador, Active: true}
	require.NoError(t, postgres.NewUserRepository(pool).Create(ctx, user))
	f.userID = user.ID

	categories := postgres.NewCategoryRepository(pool)
	cat := &entity.Category{ID: uuid.NewString(), CompanyID: f.company.ID, Name: "Ropa"}
	require.NoError(t, categories.Create(ctx, cat))
	sub := &entity.Subcategory{ID: uuid.NewString(), CompanyID: f.company.ID, CategoryID: cat.ID, Name: "Camisas"}
	require.NoError(t, categories.CreateSubcategory(ctx, sub))
	prod := &entity.Product{ID: uuid.NewString(), CompanyID: f.company.ID, SubcategoryID: sub.ID, Name: "Camisa",
		Price: decimal.RequireFromString("25.00"), CurrencyCode: "USD"}
	require.NoError(t, products.Create(ctx, prod))
	f.variantA = &entity.ProductVariant{ID: uuid.NewString(), CompanyID: f.company.ID, ProductID: prod.ID, SKU: "A-1", MinStock: decimal.NewFromInt(5)}
	f.variantB = &entity.ProductVariant{ID: uuid.NewString(), CompanyID: f.company.ID, ProductID: prod.ID, SKU: "B-1"}
	require.NoError(t, products.CreateVariant(ctx, f.variantA))
	require.NoError(t, products.CreateVariant(ctx, f.variantB))
	return f
}

func (f *fixture) level(t *testing.T, variantID string) decimal.Decimal {
	t.Helper()
	s, err := postgres.NewStockRepository(f.pool).Get(context.Background(), f.company.ID, variantID, f.warehouse.ID)
	require.NoError(t, err)
	return s.Quantity
}

func TestIntegration_RecepcionDeCompra(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.ledger.ApplyMovement(ctx, inventory.MovementInput{
		CompanyID: f.company.ID, VariantID: f.variantB.ID, WarehouseID: f.warehouse.ID,
		Delta: decimal.NewFromInt(20), Reason: entity.ReasonManualAdjustment, ReferenceID: "inicial", UserID: f.userID,
	})
	require.NoError(t, err)

	svc := purchasing.NewService(purchasing.Deps{
		Ledger: f.ledger, Registry: f.registry,
		Companies:  postgres.NewCompanyRepository(f.pool),
		Suppliers:  postgres.NewSupplierRepository(f.pool),
		Warehouses: postgres.NewWarehouseRepository(f.pool),
		Products:   postgres.NewProductRepository(f.pool),
		Currencies: postgres.NewCurrencyRepository(f.pool),
		Purchases:  postgres.NewPurchaseRepository(f.pool),
	})
	p, err := svc.CreatePurchase(ctx, f.company.ID, f.userID, dto.CreatePurchaseRequest{
		SupplierID: f.supplier.ID, WarehouseID: f.warehouse.ID, PaymentMethod: entity.PaymentCredit, CurrencyCode: "USD",
		Lines: []dto.PurchaseLineRequest{
			{VariantID: f.variantA.ID, Quantity: decimal.NewFromInt(10), UnitCost: decimal.RequireFromString("5.00")},
			{VariantID: f.variantB.ID, Quantity: decimal.NewFromInt(3), UnitCost: decimal.RequireFromString("12.50")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "87.50", p.Total.StringFixed(2))

	got, err := svc.ReceivePurchase(ctx, f.company.ID, f.userID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusReceived, got.Status)
	assert.Equal(t, "10", f.level(t, f.variantA.ID).String())
	assert.Equal(t, "23", f.level(t, f.variantB.ID).String())

	_, err = svc.ReceivePurchase(ctx, f.company.ID, f.userID, p.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "recibir dos veces no duplica stock")
	assert.Equal(t, "23", f.level(t, f.variantB.ID).String())

	low, err := postgres.NewStockReportRepository(f.pool).BelowMinimum(ctx, f.company.ID, "")
	require.NoError(t, err)
	assert.Empty(t, low, "A tiene 10 con mínimo 5")
}

func TestIntegration_SalidasConcurrentesNoDejanNegativo(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.ledger.ApplyMovement(ctx, inventory.MovementInput{
		CompanyID: f.company.ID, VariantID: f.variantA.ID, WarehouseID: f.warehouse.ID,
		Delta: decimal.NewFromInt(10), Reason: entity.ReasonManualAdjustment, ReferenceID: "inicial",
	})
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.ApplyMovement(ctx, inventory.MovementInput{
				CompanyID: f.company.ID, VariantID: f.variantA.ID, WarehouseID: f.warehouse.ID,
				Delta: decimal.NewFromInt(-1), Reason: entity.ReasonManualAdjustment, ReferenceID: uuid.NewString(),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				fail++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, ok)
	assert.Equal(t, 15, fail)
	assert.True(t, f.level(t, f.variantA.ID).IsZero())

	movs, err := postgres.NewStockMovementRepository(f.pool).ListByVariant(ctx, f.company.ID, f.variantA.ID, nil, nil, domainList())
	require.NoError(t, err)
	assert.Len(t, movs, 11, "entrada inicial + 10 salidas")
}

func domainList() repository.ListOptions { return repository.ListOptions{Limit: 100} }

func TestIntegration_EliminarTasaVuelveALaAnterior(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	currencies := postgres.NewCurrencyRepository(f.pool)
	require.NoError(t, currencies.Create(ctx, &entity.Currency{
		ID: uuid.NewString(), CompanyID: f.company.ID, Code: "GTQ", Name: "Quetzal", Symbol: "Q",
	}))
	rates := postgres.NewExchangeRateRepository(f.pool)
	vieja := &entity.ExchangeRate{ID: uuid.NewString(), CompanyID: f.company.ID, FromCode: "USD", ToCode: "GTQ", Rate: decimal.RequireFromString("7.80")}
	nueva := &entity.ExchangeRate{ID: uuid.NewString(), CompanyID: f.company.ID, FromCode: "USD", ToCode: "GTQ", Rate: decimal.RequireFromString("7.90")}
	require.NoError(t, rates.Create(ctx, vieja))
	require.NoError(t, rates.Create(ctx, nueva))
	assert.True(t, nueva.CreatedAt.After(vieja.CreatedAt))

	got, err := rates.GetByID(ctx, nueva.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Rate.Equal(nueva.Rate))

	require.NoError(t, rates.SoftDelete(ctx, nueva.ID))
	got, err = rates.GetByID(ctx, nueva.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	latest, err := rates.Latest(ctx, f.company.ID, "USD", "GTQ")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, vieja.ID, latest.ID)
}
