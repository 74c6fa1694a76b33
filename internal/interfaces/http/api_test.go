package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/auth"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/catalog"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/currency"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/inventory"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/purchasing"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/sales"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/tenant"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/usecase"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/infrastructure/excel"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/infrastructure/metrics"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/infrastructure/pdf"
	apphttp "github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/interfaces/http"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/testutil/memstore"
	pkgjwt "github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/pkg/jwt"
)

type apiEnv struct {
	app   *fiber.App
	store *memstore.Store
	a, b  *memstore.Tenant
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	store := memstore.New()
	registry := tenant.NewRegistry(store.Companies())
	collector := metrics.NewCollector(prometheus.NewRegistry())
	ledger := inventory.NewLedger(store, registry, store.Products(), store.Warehouses(), inventory.WithObserver(collector))

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC: auth.NewAuthUseCase(store.Users(), registry, auth.JWTConfig{
			Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
		}),
		CompanyUC:   usecase.NewCompanyUseCase(store.Companies()),
		WarehouseUC: usecase.NewWarehouseUseCase(registry, store.Warehouses()),
		SupplierUC:  usecase.NewSupplierUseCase(registry, store.Suppliers()),
		UserUC:      usecase.NewUserUseCase(registry, store.Users()),
		Registry:    registry,
		Catalog:     catalog.NewService(registry, store.Categories(), store.Products(), store.Filters(), store.Currencies()),
		Currency:    currency.NewService(registry, store.Currencies(), store.ExchangeRates(), store.Configs(), nil),
		Stock: inventory.NewStockService(ledger, registry, store.Stock(), store.Movements(), store.StockReport(),
			store.Products(), store.Warehouses(), excel.NewStockExporter()),
		Purchasing: purchasing.NewService(purchasing.Deps{
			Ledger: ledger, Registry: registry, Companies: store.Companies(), Suppliers: store.Suppliers(),
			Warehouses: store.Warehouses(), Products: store.Products(), Currencies: store.Currencies(),
			Purchases: store.Purchases(), PDF: pdf.NewMarotoPDFGenerator(), Observer: collector,
		}),
		Sales: sales.NewService(sales.Deps{
			Ledger: ledger, Registry: registry, Warehouses: store.Warehouses(), Products: store.Products(),
			Currencies: store.Currencies(), Orders: store.Orders(), Observer: collector,
		}),
		JWTSecret: testJWTSecret,
	})
	return &apiEnv{app: app, store: store, a: store.SeedTenant("A"), b: store.SeedTenant("B")}
}

func (e *apiEnv) token(t *testing.T, tn *memstore.Tenant, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, tn.User.ID, tn.Company.ID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (e *apiEnv) do(t *testing.T, method, path, auth string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decodeMap(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m), string(raw))
	return m
}

func decField(t *testing.T, m map[string]any, key string) decimal.Decimal {
	t.Helper()
	var s string
	switch v := m[key].(type) {
	case string:
		s = v
	case float64:
		s = decimal.NewFromFloat(v).String()
	default:
		t.Fatalf("campo %s ausente: %v", key, m)
	}
	return decimal.RequireFromString(s)
}

func TestAPI_CompraCrearRecibirYRepetir(t *testing.T) {
	e := newAPI(t)
	admin := e.token(t, e.a, "Administrador")
	b := e.store.AddVariant(e.a, "B-001")
	e.store.SetStock(e.a.Company.ID, b.ID, e.a.Warehouse.ID, decimal.NewFromInt(20))

	resp, raw := e.do(t, http.MethodPost, "/api/purchases", admin, map[string]any{
		"id_proveedor":       e.a.Supplier.ID,
		"id_almacen_destino": e.a.Warehouse.ID,
		"metodo_pago":        "Credito",
		"divisa":             "USD",
		"detalles": []map[string]any{
			{"id_variante": e.a.Variant.ID, "cantidad": "10", "precio_costo_historico": "5.00"},
			{"id_variante": b.ID, "cantidad": "3", "precio_costo_historico": "12.50"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	purchase := decodeMap(t, raw)
	assert.True(t, decField(t, purchase, "total").Equal(decimal.RequireFromString("87.50")))
	assert.Equal(t, "Pendiente", purchase["estado"])
	id := purchase["id"].(string)

	resp, raw = e.do(t, http.MethodPost, "/api/purchases/"+id+"/receive", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "Recibido", decodeMap(t, raw)["estado"])

	resp, raw = e.do(t, http.MethodGet, "/api/inventory/stock?variante_id="+b.ID+"&almacen_id="+e.a.Warehouse.ID, admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decField(t, decodeMap(t, raw), "stock_actual").Equal(decimal.NewFromInt(23)))

	resp, raw = e.do(t, http.MethodPost, "/api/purchases/"+id+"/receive", admin, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_STATE", decodeMap(t, raw)["code"])

	resp, raw = e.do(t, http.MethodGet, "/api/purchases/"+id+"/pdf", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestAPI_AjusteSinStock_409(t *testing.T) {
	e := newAPI(t)
	resp, raw := e.do(t, http.MethodPost, "/api/inventory/adjustments", e.token(t, e.a, "Administrador"), map[string]any{
		"id_variante": e.a.Variant.ID,
		"id_almacen":  e.a.Warehouse.ID,
		"delta":       "-1",
		"referencia":  "conteo-1",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", decodeMap(t, raw)["code"])
}

func TestAPI_AjusteRepetidoDevuelve200(t *testing.T) {
	e := newAPI(t)
	admin := e.token(t, e.a, "Administrador")
	body := map[string]any{"id_variante": e.a.Variant.ID, "id_almacen": e.a.Warehouse.ID, "delta": "4", "referencia": "conteo-7"}

	resp, _ := e.do(t, http.MethodPost, "/api/inventory/adjustments", admin, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, raw := e.do(t, http.MethodPost, "/api/inventory/adjustments", admin, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decodeMap(t, raw)["aplicado"])
}

func TestAPI_AccesoAOtraEmpresa_403(t *testing.T) {
	e := newAPI(t)
	resp, raw := e.do(t, http.MethodGet, "/api/warehouses/"+e.b.Warehouse.ID, e.token(t, e.a, "Administrador"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "CROSS_TENANT", decodeMap(t, raw)["code"])
}

func TestAPI_ValidacionDeLineas_400(t *testing.T) {
	e := newAPI(t)
	resp, raw := e.do(t, http.MethodPost, "/api/orders", e.token(t, e.a, "Vendedor"), map[string]any{
		"id_almacen_origen": e.a.Warehouse.ID,
		"divisa":            "USD",
		"detalles":          []map[string]any{{"id_variante": e.a.Variant.ID, "cantidad": "0", "precio_unitario": "10"}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeMap(t, raw)
	assert.Equal(t, "VALIDATION", body["code"])
	assert.Contains(t, body["message"], "cantidad")
}

func TestAPI_PedidoSinStockQuedaPendiente(t *testing.T) {
	e := newAPI(t)
	seller := e.token(t, e.a, "Vendedor")
	resp, raw := e.do(t, http.MethodPost, "/api/orders", seller, map[string]any{
		"id_almacen_origen": e.a.Warehouse.ID,
		"divisa":            "USD",
		"detalles":          []map[string]any{{"id_variante": e.a.Variant.ID, "cantidad": "2", "precio_unitario": "25.00"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	id := decodeMap(t, raw)["id"].(string)

	resp, raw = e.do(t, http.MethodPost, "/api/orders/"+id+"/fulfill", seller, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", decodeMap(t, raw)["code"])

	_, raw = e.do(t, http.MethodGet, "/api/orders/"+id, seller, nil)
	assert.Equal(t, "Pendiente", decodeMap(t, raw)["estado"])
}

func (e *apiEnv) registerCurrency(t *testing.T, tn *memstore.Tenant, code string) {
	t.Helper()
	resp, raw := e.do(t, http.MethodPost, "/api/currencies", e.token(t, tn, "Administrador"), map[string]any{
		"codigo": code, "nombre": code, "simbolo": "Q",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
}

func (e *apiEnv) upsertRate(t *testing.T, tn *memstore.Tenant, from, to, rate string) string {
	t.Helper()
	resp, raw := e.do(t, http.MethodPut, "/api/exchange-rates", e.token(t, tn, "Administrador"), map[string]any{
		"divisa_origen": from, "divisa_destino": to, "tasa": rate,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	return decodeMap(t, raw)["id"].(string)
}

func TestAPI_ConversionSinTasa_422(t *testing.T) {
	e := newAPI(t)
	e.registerCurrency(t, e.a, "GTQ")
	resp, raw := e.do(t, http.MethodGet, "/api/exchange-rates/convert?monto=10&origen=USD&destino=GTQ", e.token(t, e.a, "Vendedor"), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "NO_EXCHANGE_RATE", decodeMap(t, raw)["code"])
}

func TestAPI_ConversionConDivisaNoRegistrada_404(t *testing.T) {
	e := newAPI(t)
	resp, _ := e.do(t, http.MethodGet, "/api/exchange-rates/convert?monto=10&origen=USD&destino=GTQ", e.token(t, e.a, "Vendedor"), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_EliminarTasaVuelveALaAnterior(t *testing.T) {
	e := newAPI(t)
	e.registerCurrency(t, e.a, "GTQ")
	e.upsertRate(t, e.a, "USD", "GTQ", "7.80")
	id := e.upsertRate(t, e.a, "USD", "GTQ", "7.90")
	convert := "/api/exchange-rates/convert?monto=100&origen=USD&destino=GTQ"

	resp, raw := e.do(t, http.MethodGet, convert, e.token(t, e.a, "Vendedor"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.True(t, decField(t, decodeMap(t, raw), "convertido").Equal(decimal.NewFromInt(790)))

	resp, _ = e.do(t, http.MethodDelete, "/api/exchange-rates/"+id, e.token(t, e.a, "Vendedor"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "solo administradores")

	resp, _ = e.do(t, http.MethodDelete, "/api/exchange-rates/"+id, e.token(t, e.b, "Administrador"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "tasa de otra empresa")

	resp, _ = e.do(t, http.MethodDelete, "/api/exchange-rates/"+id, e.token(t, e.a, "Administrador"), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, raw = e.do(t, http.MethodGet, convert, e.token(t, e.a, "Vendedor"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.True(t, decField(t, decodeMap(t, raw), "convertido").Equal(decimal.NewFromInt(780)))

	resp, _ = e.do(t, http.MethodDelete, "/api/exchange-rates/"+id, e.token(t, e.a, "Administrador"), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "ya eliminada")
}

func TestAPI_VendedorNoAjustaStock(t *testing.T) {
	e := newAPI(t)
	resp, _ := e.do(t, http.MethodPost, "/api/inventory/adjustments", e.token(t, e.a, "Vendedor"), map[string]any{
		"id_variante": e.a.Variant.ID, "id_almacen": e.a.Warehouse.ID, "delta": "1",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_EmpresaEliminadaBloqueaToken(t *testing.T) {
	e := newAPI(t)
	require.NoError(t, e.store.Companies().SoftDelete(context.Background(), e.b.Company.ID))
	resp, raw := e.do(t, http.MethodGet, "/api/warehouses", e.token(t, e.b, "Administrador"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "TENANT_DISABLED", decodeMap(t, raw)["code"])
}

func TestAPI_LoginYRegistro(t *testing.T) {
	e := newAPI(t)
	resp, raw := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"correo": "ana@nexus.test", "clave": "secreta123", "id_empresa": e.a.Company.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	assert.Equal(t, "Vendedor", decodeMap(t, raw)["rol"])

	resp, raw = e.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"correo": "ANA@nexus.test", "clave": "secreta123"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.NotEmpty(t, decodeMap(t, raw)["token"])

	resp, _ = e.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"correo": "ana@nexus.test", "clave": "otra-clave"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"correo": "root@nexus.test", "clave": "secreta123", "id_empresa": e.a.Company.ID, "rol": "SuperAdministrador",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "el registro público no crea SuperAdministradores")
}

func TestAPI_ExportarStockExcel(t *testing.T) {
	e := newAPI(t)
	e.store.SetStock(e.a.Company.ID, e.a.Variant.ID, e.a.Warehouse.ID, decimal.NewFromInt(3))
	resp, raw := e.do(t, http.MethodGet, "/api/inventory/export?almacen_id="+e.a.Warehouse.ID, e.token(t, e.a, "Administrador"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")
	assert.True(t, bytes.HasPrefix(raw, []byte("PK")), "xlsx es un zip")
}

func TestHealth(t *testing.T) {
	app := fiber.New()
	app.Get("/health", apphttp.Health("nexus", map[string]apphttp.Pinger{
		"db":    func(context.Context) error { return nil },
		"redis": func(context.Context) error { return assert.AnError },
	}))
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "error", body["checks"].(map[string]any)["redis"])
}
