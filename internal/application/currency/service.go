// Package currency mantiene divisas y tasas de cambio por empresa y convierte montos entre ellas.
package currency

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/dto"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/tenant"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/valuation"
)

var isoCode = regexp.MustCompile(`^[A-Z]{3}$`)

// RateCache caché de la tasa vigente por (empresa, origen, destino). version es el created_at
// de la fila: Set no reemplaza una entrada más reciente e Invalidate bloquea su propia versión.
type RateCache interface {
	Get(ctx context.Context, companyID, from, to string) (decimal.Decimal, bool, error)
	Set(ctx context.Context, companyID, from, to string, rate decimal.Decimal, version time.Time) error
	Invalidate(ctx context.Context, companyID, from, to string, version time.Time) error
}

// Service casos de uso de divisas, tasas y conversión.
type Service struct {
	registry   *tenant.Registry
	currencies repository.CurrencyRepository
	rates      repository.ExchangeRateRepository
	configs    repository.GlobalConfigRepository
	cache      RateCache
}

// NewService construye el servicio. cache puede ser nil.
func NewService(
	registry *tenant.Registry,
	currencies repository.CurrencyRepository,
	rates repository.ExchangeRateRepository,
	configs repository.GlobalConfigRepository,
	cache RateCache,
) *Service {
	return &Service{registry: registry, currencies: currencies, rates: rates, configs: configs, cache: cache}
}

func normalizeCode(field, code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !isoCode.MatchString(code) {
		return "", domain.NewValidation(field, "código ISO 4217 inválido")
	}
	return code, nil
}

// CreateCurrency registra una divisa para la empresa.
func (s *Service) CreateCurrency(ctx context.Context, companyID string, in dto.CreateCurrencyRequest) (*dto.CurrencyResponse, error) {
	if _, err := s.registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	code, err := normalizeCode("codigo", in.Code)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.NewValidation("nombre", "requerido")
	}
	c := &entity.Currency{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Code:      code,
		Name:      strings.TrimSpace(in.Name),
		Symbol:    strings.TrimSpace(in.Symbol),
	}
	if err := s.currencies.Create(ctx, c); err != nil {
		return nil, err
	}
	return toCurrencyResponse(c), nil
}

// ListCurrencies divisas de la empresa.
func (s *Service) ListCurrencies(ctx context.Context, companyID string, opts repository.ListOptions) ([]dto.CurrencyResponse, error) {
	if _, err := s.registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	list, err := s.currencies.ListByCompany(ctx, companyID, opts.Normalize())
	if err != nil {
		return nil, err
	}
	out := make([]dto.CurrencyResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toCurrencyResponse(c))
	}
	return out, nil
}

// DeleteCurrency elimina lógicamente una divisa por código.
func (s *Service) DeleteCurrency(ctx context.Context, companyID, code string) error {
	c, err := s.requireCurrency(ctx, companyID, "codigo", code)
	if err != nil {
		return err
	}
	return s.currencies.SoftDelete(ctx, c.ID)
}

func (s *Service) requireCurrency(ctx context.Context, companyID, field, code string) (*entity.Currency, error) {
	code, err := normalizeCode(field, code)
	if err != nil {
		return nil, err
	}
	c, err := s.currencies.GetByCode(ctx, companyID, code)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NewNotFound("divisa", code)
	}
	return c, nil
}

// UpsertRate registra la tasa vigente origen -> destino. Las tasas anteriores quedan como historial.
func (s *Service) UpsertRate(ctx context.Context, companyID string, in dto.UpsertRateRequest) (*dto.RateResponse, error) {
	if _, err := s.registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	from, err := s.requireCurrency(ctx, companyID, "divisa_origen", in.From)
	if err != nil {
		return nil, err
	}
	to, err := s.requireCurrency(ctx, companyID, "divisa_destino", in.To)
	if err != nil {
		return nil, err
	}
	if from.Code == to.Code {
		return nil, domain.NewValidation("divisa_destino", "debe ser distinta de la divisa origen")
	}
	if !in.Rate.IsPositive() {
		return nil, domain.NewValidation("tasa", "debe ser mayor que cero")
	}
	if err := valuation.CheckRateScale("tasa", in.Rate); err != nil {
		return nil, err
	}
	rate := &entity.ExchangeRate{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		FromCode:  from.Code,
		ToCode:    to.Code,
		Rate:      in.Rate,
	}
	if err := s.rates.Create(ctx, rate); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, companyID, from.Code, to.Code, rate.Rate, rate.CreatedAt); err != nil {
			log.Warn().Err(err).Str("empresa", companyID).Msg("no se pudo actualizar caché de tasa")
		}
	}
	log.Info().Str("empresa", companyID).Str("origen", from.Code).Str("destino", to.Code).
		Str("tasa", rate.Rate.String()).Msg("tasa de cambio actualizada")
	return toRateResponse(rate), nil
}

// ListRates historial de tasas de la empresa.
func (s *Service) ListRates(ctx context.Context, companyID string, opts repository.ListOptions) ([]dto.RateResponse, error) {
	if _, err := s.registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	list, err := s.rates.ListByCompany(ctx, companyID, opts.Normalize())
	if err != nil {
		return nil, err
	}
	out := make([]dto.RateResponse, 0, len(list))
	for _, r := range list {
		out = append(out, *toRateResponse(r))
	}
	return out, nil
}

// DeleteRate elimina lógicamente una tasa. Si era la vigente, vuelve a regir la anterior del par.
func (s *Service) DeleteRate(ctx context.Context, companyID, id string) error {
	if _, err := s.registry.Resolve(ctx, companyID); err != nil {
		return err
	}
	row, err := s.rates.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := tenant.Ensure(companyID, tenant.Item("tasa de cambio", id, row)); err != nil {
		return err
	}
	if err := s.rates.SoftDelete(ctx, row.ID); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, companyID, row.FromCode, row.ToCode, row.CreatedAt); err != nil {
			log.Warn().Err(err).Str("empresa", companyID).Msg("no se pudo invalidar caché de tasa")
		}
	}
	log.Info().Str("empresa", companyID).Str("tasa_id", row.ID).Str("origen", row.FromCode).
		Str("destino", row.ToCode).Msg("tasa de cambio eliminada")
	return nil
}

// LookupRate devuelve la tasa vigente origen -> destino. No invierte ni encadena tasas.
func (s *Service) LookupRate(ctx context.Context, companyID, from, to string) (decimal.Decimal, error) {
	if s.cache != nil {
		rate, ok, err := s.cache.Get(ctx, companyID, from, to)
		if err != nil {
			log.Warn().Err(err).Msg("caché de tasas no disponible")
		} else if ok {
			return rate, nil
		}
	}
	row, err := s.rates.Latest(ctx, companyID, from, to)
	if err != nil {
		return decimal.Zero, fmt.Errorf("buscar tasa: %w", err)
	}
	if row == nil {
		return decimal.Zero, &domain.NoExchangeRateError{From: from, To: to}
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, companyID, from, to, row.Rate, row.CreatedAt); err != nil {
			log.Warn().Err(err).Msg("no se pudo guardar tasa en caché")
		}
	}
	return row.Rate, nil
}

// Convert convierte amount de from a to con la tasa vigente, redondeado a 2 decimales (half-up).
// Misma divisa devuelve el monto redondeado sin consultar tasas. Ambas divisas deben seguir
// registradas: las tasas de una divisa eliminada no se usan.
func (s *Service) Convert(ctx context.Context, companyID string, amount decimal.Decimal, from, to string) (*dto.ConvertResponse, error) {
	if _, err := s.registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	fromCode, err := normalizeCode("origen", from)
	if err != nil {
		return nil, err
	}
	toCode, err := normalizeCode("destino", to)
	if err != nil {
		return nil, err
	}
	resp := &dto.ConvertResponse{Amount: amount, From: fromCode, To: toCode}
	if fromCode == toCode {
		resp.Rate = decimal.NewFromInt(1)
		resp.Converted = valuation.Round(amount)
		return resp, nil
	}
	if _, err := s.requireCurrency(ctx, companyID, "origen", fromCode); err != nil {
		return nil, err
	}
	if _, err := s.requireCurrency(ctx, companyID, "destino", toCode); err != nil {
		return nil, err
	}
	rate, err := s.LookupRate(ctx, companyID, fromCode, toCode)
	if err != nil {
		return nil, err
	}
	resp.Rate = rate
	resp.Converted = valuation.Convert(amount, rate)
	return resp, nil
}

// ToBaseCurrency convierte a la divisa base de la configuración global.
func (s *Service) ToBaseCurrency(ctx context.Context, companyID string, amount decimal.Decimal, from string) (*dto.ConvertResponse, error) {
	base, err := s.GetBaseCurrency(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return s.Convert(ctx, companyID, amount, from, base.Code)
}

// GetBaseCurrency divisa base de la empresa.
func (s *Service) GetBaseCurrency(ctx context.Context, companyID string) (*dto.BaseCurrencyResponse, error) {
	if _, err := s.registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	cfg, err := s.configs.GetByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if cfg == nil || cfg.BaseCurrencyCode == "" {
		return nil, domain.NewNotFound("configuración global", companyID)
	}
	return &dto.BaseCurrencyResponse{Code: cfg.BaseCurrencyCode}, nil
}

// SetBaseCurrency fija la divisa base; la divisa debe estar registrada.
func (s *Service) SetBaseCurrency(ctx context.Context, companyID string, in dto.BaseCurrencyRequest) (*dto.BaseCurrencyResponse, error) {
	if _, err := s.registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	c, err := s.requireCurrency(ctx, companyID, "codigo", in.Code)
	if err != nil {
		return nil, err
	}
	cfg := &entity.GlobalConfig{ID: uuid.New().String(), CompanyID: companyID, BaseCurrencyCode: c.Code}
	if err := s.configs.Upsert(ctx, cfg); err != nil {
		return nil, err
	}
	return &dto.BaseCurrencyResponse{Code: c.Code}, nil
}

func toCurrencyResponse(c *entity.Currency) *dto.CurrencyResponse {
	return &dto.CurrencyResponse{ID: c.ID, Code: c.Code, Name: c.Name, Symbol: c.Symbol}
}

func toRateResponse(r *entity.ExchangeRate) *dto.RateResponse {
	return &dto.RateResponse{ID: r.ID, From: r.FromCode, To: r.ToCode, Rate: r.Rate, CreatedAt: r.CreatedAt}
}
