package currency

import (
	"context"
	"testing"
	"time"

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

type cacheEntry struct {
	rate    decimal.Decimal
	version time.Time
	gone    bool
}

// mapCache replica la semántica versionada de la caché Redis.
type mapCache struct {
	data        map[string]cacheEntry
	hits        int
	invalidated int
}

func newMapCache() *mapCache { return &mapCache{data: map[string]cacheEntry{}} }

func (c *mapCache) key(companyID, from, to string) string { return companyID + ":" + from + ":" + to }

func (c *mapCache) Get(_ context.Context, companyID, from, to string) (decimal.Decimal, bool, error) {
	e, ok := c.data[c.key(companyID, from, to)]
	if !ok || e.gone {
		return decimal.Zero, false, nil
	}
	c.hits++
	return e.rate, true, nil
}

func (c *mapCache) put(k string, e cacheEntry) {
	if cur, ok := c.data[k]; ok && (cur.version.After(e.version) || (cur.gone && !e.version.After(cur.version))) {
		return
	}
	c.data[k] = e
}

func (c *mapCache) Set(_ context.Context, companyID, from, to string, rate decimal.Decimal, version time.Time) error {
	c.put(c.key(companyID, from, to), cacheEntry{rate: rate, version: version})
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, companyID, from, to string, version time.Time) error {
	c.invalidated++
	c.put(c.key(companyID, from, to), cacheEntry{version: version, gone: true})
	return nil
}

func newTestService(t *testing.T) (*Service, *mapCache, *memstore.Tenant, *memstore.Tenant) {
	t.Helper()
	store := memstore.New()
	cache := newMapCache()
	svc := NewService(tenant.NewRegistry(store.Companies()), store.Currencies(), store.ExchangeRates(), store.Configs(), cache)
	a, b := store.SeedTenant("A"), store.SeedTenant("B")
	ctx := context.Background()
	for _, tn := range []*memstore.Tenant{a, b} {
		for _, code := range []string{"GTQ", "EUR"} { // USD ya viene sembrada
			_, err := svc.CreateCurrency(ctx, tn.Company.ID, dto.CreateCurrencyRequest{Code: code, Name: code, Symbol: "$"})
			require.NoError(t, err)
		}
	}
	return svc, cache, a, b
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestConvert_UsaTasaDirecta(t *testing.T) {
	svc, _, a, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.UpsertRate(ctx, a.Company.ID, dto.UpsertRateRequest{From: "USD", To: "GTQ", Rate: dec("7.80")})
	require.NoError(t, err)

	res, err := svc.Convert(ctx, a.Company.ID, dec("100"), "USD", "GTQ")
	require.NoError(t, err)
	assert.Equal(t, "780", res.Converted.String(), "100 USD a 7.80 deben ser 780.00 GTQ")
}

func TestConvert_SinTasaInversaNiEncadenada(t *testing.T) {
	svc, _, a, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.UpsertRate(ctx, a.Company.ID, dto.UpsertRateRequest{From: "USD", To: "GTQ", Rate: dec("7.80")})
	require.NoError(t, err)
	_, err = svc.UpsertRate(ctx, a.Company.ID, dto.UpsertRateRequest{From: "GTQ", To: "EUR", Rate: dec("0.12")})
	require.NoError(t, err)

	_, err = svc.Convert(ctx, a.Company.ID, dec("100"), "GTQ", "USD")
	assert.ErrorIs(t, err, domain.ErrNoExchangeRate, "no se invierte la tasa")

	_, err = svc.Convert(ctx, a.Company.ID, dec("100"), "USD", "EUR")
	var noRate *domain.NoExchangeRateError
	require.ErrorAs(t, err, &noRate, "no se encadenan tasas")
	assert.Equal(t, "USD", noRate.From)
	assert.Equal(t, "EUR", noRate.To)
}

func TestConvert_MismaDivisa(t *testing.T) {
	svc, _, a, _ := newTestService(t)
	res, err := svc.Convert(context.Background(), a.Company.ID, dec("10.005"), "usd", "USD")
	require.NoError(t, err)
	assert.Equal(t, "10.01", res.Converted.StringFixed(2))
}

func TestConvert_IdaYVueltaDentroDeUnCentavo(t *testing.T) {
	svc, _, a, _ := newTestService(t)
	ctx := context.Background()
	r := dec("7.83")
	_, err := svc.UpsertRate(ctx, a.Company.ID, dto.UpsertRateRequest{From: "USD", To: "GTQ", Rate: r})
	require.NoError(t, err)
	_, err = svc.UpsertRate(ctx, a.Company.ID, dto.UpsertRateRequest{From: "GTQ", To: "USD", Rate: decimal.NewFromInt(1).DivRound(r, 6)})
	require.NoError(t, err)

	for _, amount := range []string{"1.00", "19.99", "123.45", "1000.01"} {
		there, err := svc.Convert(ctx, a.Company.ID, dec(amount), "USD", "GTQ")
		require.NoError(t, err)
		back, err := svc.Convert(ctx, a.Company.ID, there.Converted, "GTQ", "USD")
		require.NoError(t, err)
		diff := back.Converted.Sub(dec(amount)).Abs()
		assert.True(t, diff.LessThanOrEqual(dec("0.01")), "ida y vuelta de %s difiere %s", amount, diff)
	}
}

func TestUpsertRate_ReemplazaTasaVigenteYActualizaCache(t *testing.T) {
	svc, cache, a, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.UpsertRate(ctx, a.Company.ID, dto.UpsertRateRequest{From: "USD", To: "GTQ", Rate: dec("7.80")})
	require.NoError(t, err)
	_, err = svc.Convert(ctx, a.Company.ID, dec("1"), "USD", "GTQ")
	require.NoError(t, err)
	_, err = svc.Convert(ctx, a.Company.ID, dec("1"), "USD", "GTQ")
	require.NoError(t, err)
	assert.Equal(t, 2, cache.hits, "la tasa registrada se sirve desde caché")

	_, err = svc.UpsertRate(ctx, a.Company.ID, dto.UpsertRateRequest{From: "USD", To: "GTQ", Rate: dec("7.90")})
	require.NoError(t, err)
	res, err := svc.Convert(ctx, a.Company.ID, dec("100"), "USD", "GTQ")
	require.NoError(t, err)
	assert.Equal(t, "790", res.Converted.String())
	assert.Equal(t, 3, cache.hits, "la tasa nueva se escribe en caché al registrarla")

	rates, err := svc.ListRates(ctx, a.Company.ID, repositoryAll())
	require.NoError(t, err)
	assert.Len(t, rates, 2, "se conserva el historial")
}

func TestUpsertRate_Validaciones(t *testing.T) {
	svc, _, a, _ := newTestService(t)
	ctx := context.Background()
	cases := []struct {
		name string
		in   dto.UpsertRateRequest
		want error
	}{
		{"tasa cero", dto.UpsertRateRequest{From: "USD", To: "GTQ", Rate: decimal.Zero}, domain.ErrValidation},
		{"tasa negativa", dto.UpsertRateRequest{From: "USD", To: "GTQ", Rate: dec("-1")}, domain.ErrValidation},
		{"misma divisa", dto.UpsertRateRequest{From: "USD", To: "USD", Rate: dec("1")}, domain.ErrValidation},
		{"divisa no registrada", dto.UpsertRateRequest{From: "USD", To: "MXN", Rate: dec("17")}, domain.ErrNotFound},
		{"código inválido", dto.UpsertRateRequest{From: "US", To: "GTQ", Rate: dec("1")}, domain.ErrValidation},
		{"tasa con siete decimales", dto.UpsertRateRequest{From: "USD", To: "GTQ", Rate: dec("7.8300001")}, domain.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.UpsertRate(ctx, a.Company.ID, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestTasasAisladasPorEmpresa(t *testing.T) {
	svc, _, a, b := newTestService(t)
	ctx := context.Background()
	_, err := svc.UpsertRate(ctx, a.Company.ID, dto.UpsertRateRequest{From: "USD", To: "GTQ", Rate: dec("7.80")})
	require.NoError(t, err)
	_, err = svc.Convert(ctx, b.Company.ID, dec("1"), "USD", "GTQ")
	assert.ErrorIs(t, err, domain.ErrNoExchangeRate, "la tasa de A no aplica a B")
}

func TestToBaseCurrency(t *testing.T) {
	svc, _, a, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.ToBaseCurrency(ctx, a.Company.ID, dec("1"), "USD")
	assert.ErrorIs(t, err, domain.ErrNotFound, "sin configuración global")

	_, err = svc.SetBaseCurrency(ctx, a.Company.ID, dto.BaseCurrencyRequest{Code: "GTQ"})
	require.NoError(t, err)
	_, err = svc.UpsertRate(ctx, a.Company.ID, dto.UpsertRateRequest{From: "USD", To: "GTQ", Rate: dec("7.75")})
	require.NoError(t, err)

	res, err := svc.ToBaseCurrency(ctx, a.Company.ID, dec("2"), "USD")
	require.NoError(t, err)
	assert.Equal(t, "GTQ", res.To)
	assert.Equal(t, "15.5", res.Converted.String())
}

func repositoryAll() repository.ListOptions { return repository.ListOptions{Limit: 100} }

// racingRates registra una tasa nueva entre la lectura de la base y el guardado en caché.
type racingRates struct {
	repository.ExchangeRateRepository
	between func()
}

func (r *racingRates) Latest(ctx context.Context, companyID, from, to string) (*entity.ExchangeRate, error) {
	row, err := r.ExchangeRateRepository.Latest(ctx, companyID, from, to)
	if hook := r.between; hook != nil {
		r.between = nil
		hook()
	}
	return row, err
}

func TestLookupRate_LecturaLentaNoPisaTasaNueva(t *testing.T) {
	store := memstore.New()
	cache := newMapCache()
	rates := &racingRates{ExchangeRateRepository: store.ExchangeRates()}
	svc := NewService(tenant.NewRegistry(store.Companies()), store.Currencies(), rates, store.Configs(), cache)
	a := store.SeedTenant("A")
	ctx := context.Background()
	_, err := svc.CreateCurrency(ctx, a.Company.ID, dto.CreateCurrencyRequest{Code: "GTQ", Name: "Quetzal", Symbol: "Q"})
	require.NoError(t, err)
	_, err = svc.UpsertRate(ctx, a.Company.ID, dto.UpsertRateRequest{From: "USD", To: "GTQ", Rate: dec("7.80")})
	require.NoError(t, err)
	delete(cache.data, cache.key(a.Company.ID, "USD", "GTQ"))

	rates.between = func() {
		_, err := svc.UpsertRate(ctx, a.Company.ID, dto.UpsertRateRequest{From: "USD", To: "GTQ", Rate: dec("7.90")})
		require.NoError(t, err)
	}
	res, err := svc.Convert(ctx, a.Company.ID, dec("100"), "USD", "GTQ")
	require.NoError(t, err)
	assert.Equal(t, "780", res.Converted.String(), "la conversión en vuelo usa la fila que leyó")

	res, err = svc.Convert(ctx, a.Company.ID, dec("100"), "USD", "GTQ")
	require.NoError(t, err)
	assert.Equal(t, "790", res.Converted.String(), "la caché conserva la tasa más reciente")
}

func TestDeleteRate_VuelveALaTasaAnterior(t *testing.T) {
	svc, cache, a, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.UpsertRate(ctx, a.Company.ID, dto.UpsertRateRequest{From: "USD", To: "GTQ", Rate: dec("7.80")})
	require.NoError(t, err)
	latest, err := svc.UpsertRate(ctx, a.Company.ID, dto.UpsertRateRequest{From: "USD", To: "GTQ", Rate: dec("7.90")})
	require.NoError(t, err)
	res, err := svc.Convert(ctx, a.Company.ID, dec("100"), "USD", "GTQ")
	require.NoError(t, err)
	require.Equal(t, "790", res.Converted.String())

	require.NoError(t, svc.DeleteRate(ctx, a.Company.ID, latest.ID))
	assert.Equal(t, 1, cache.invalidated)

	res, err = svc.Convert(ctx, a.Company.ID, dec("100"), "USD", "GTQ")
	require.NoError(t, err)
	assert.Equal(t, "780", res.Converted.String(), "la tasa eliminada no se sirve desde caché")

	err = svc.DeleteRate(ctx, a.Company.ID, latest.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteRate_UnicaTasaDejaElParSinTasa(t *testing.T) {
	svc, _, a, _ := newTestService(t)
	ctx := context.Background()
	r, err := svc.UpsertRate(ctx, a.Company.ID, dto.UpsertRateRequest{From: "USD", To: "EUR", Rate: dec("0.92")})
	require.NoError(t, err)
	_, err = svc.Convert(ctx, a.Company.ID, dec("1"), "USD", "EUR")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRate(ctx, a.Company.ID, r.ID))
	_, err = svc.Convert(ctx, a.Company.ID, dec("1"), "USD", "EUR")
	assert.ErrorIs(t, err, domain.ErrNoExchangeRate)
}

func TestDeleteRate_OtraEmpresa(t *testing.T) {
	svc, _, a, b := newTestService(t)
	ctx := context.Background()
	r, err := svc.UpsertRate(ctx, a.Company.ID, dto.UpsertRateRequest{From: "USD", To: "GTQ", Rate: dec("7.80")})
	require.NoError(t, err)

	err = svc.DeleteRate(ctx, b.Company.ID, r.ID)
	var cross *domain.CrossTenantError
	assert.ErrorAs(t, err, &cross)

	res, err := svc.Convert(ctx, a.Company.ID, dec("1"), "USD", "GTQ")
	require.NoError(t, err)
	assert.Equal(t, "7.8", res.Converted.String(), "la tasa sigue vigente para su empresa")
}

func TestConvert_DivisaEliminadaNoConvierte(t *testing.T) {
	svc, cache, a, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.UpsertRate(ctx, a.Company.ID, dto.UpsertRateRequest{From: "USD", To: "GTQ", Rate: dec("7.80")})
	require.NoError(t, err)
	_, err = svc.Convert(ctx, a.Company.ID, dec("1"), "USD", "GTQ")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCurrency(ctx, a.Company.ID, "GTQ"))
	hits := cache.hits
	for _, pair := range [][2]string{{"USD", "GTQ"}, {"GTQ", "USD"}} {
		_, err = svc.Convert(ctx, a.Company.ID, dec("1"), pair[0], pair[1])
		assert.ErrorIs(t, err, domain.ErrNotFound, "%s -> %s", pair[0], pair[1])
	}
	assert.Equal(t, hits, cache.hits, "la tasa en caché no llega a consultarse")

	_, err = svc.Convert(ctx, a.Company.ID, dec("1"), "USD", "MXN")
	assert.ErrorIs(t, err, domain.ErrNotFound, "divisa nunca registrada")
}
