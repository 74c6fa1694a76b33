package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
)

var (
	_ repository.CurrencyRepository     = (*CurrencyRepo)(nil)
	_ repository.ExchangeRateRepository = (*ExchangeRateRepo)(nil)
)

// CurrencyRepo persiste divisas.
type CurrencyRepo struct {
	q Querier
}

// NewCurrencyRepository construye el adaptador.
func NewCurrencyRepository(q Querier) *CurrencyRepo {
	return &CurrencyRepo{q: q}
}

const currencyColumns = `id, id_empresa, codigo, nombre, simbolo, created_at, updated_at, deleted_at`

func (r *CurrencyRepo) Create(ctx context.Context, c *entity.Currency) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO divisas (id, id_empresa, codigo, nombre, simbolo) VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		c.ID, c.CompanyID, c.Code, c.Name, c.Symbol,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return mapError("insert currency", err)
}

// GetByCode divisa activa de la empresa con ese código ISO.
func (r *CurrencyRepo) GetByCode(ctx context.Context, companyID, code string) (*entity.Currency, error) {
	c, err := scanCurrency(r.q.QueryRow(ctx, `SELECT `+currencyColumns+` FROM divisas
		WHERE id_empresa = $1 AND codigo = $2 AND deleted_at IS NULL`, companyID, code))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, mapError("get currency", err)
	}
	return c, nil
}

func (r *CurrencyRepo) ListByCompany(ctx context.Context, companyID string, opts repository.ListOptions) ([]*entity.Currency, error) {
	sql, args, err := scopeList(
		psql.Select(currencyColumns).From("divisas").Where(squirrel.Eq{"id_empresa": companyID}).OrderBy("codigo"),
		"divisas", opts.Normalize(),
	).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError("list currencies", err)
	}
	defer rows.Close()
	var list []*entity.Currency
	for rows.Next() {
		c, err := scanCurrency(rows)
		if err != nil {
			return nil, mapError("scan currency", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *CurrencyRepo) SoftDelete(ctx context.Context, id string) error {
	return softDeleteRow(ctx, r.q, "divisas", "divisa", id)
}

func scanCurrency(row rowScanner) (*entity.Currency, error) {
	var c entity.Currency
	err := row.Scan(&c.ID, &c.CompanyID, &c.Code, &c.Name, &c.Symbol, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ExchangeRateRepo persiste tasas_cambio. Cada upsert es una fila nueva.
type ExchangeRateRepo struct {
	q Querier
}

// NewExchangeRateRepository construye el adaptador.
func NewExchangeRateRepository(q Querier) *ExchangeRateRepo {
	return &ExchangeRateRepo{q: q}
}

const rateColumns = `id, id_empresa, divisa_origen, divisa_destino, tasa, created_at, updated_at, deleted_at`

// Create inserta una tasa. created_at usa clock_timestamp para ordenar varias tasas de una misma transacción.
func (r *ExchangeRateRepo) Create(ctx context.Context, rate *entity.ExchangeRate) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO tasas_cambio (id, id_empresa, divisa_origen, divisa_destino, tasa, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, clock_timestamp(), clock_timestamp())
		RETURNING created_at, updated_at`,
		rate.ID, rate.CompanyID, rate.FromCode, rate.ToCode, rate.Rate,
	).Scan(&rate.CreatedAt, &rate.UpdatedAt)
	return mapError("insert exchange rate", err)
}

func (r *ExchangeRateRepo) GetByID(ctx context.Context, id string) (*entity.ExchangeRate, error) {
	rate, err := scanRate(r.q.QueryRow(ctx, `SELECT `+rateColumns+` FROM tasas_cambio
		WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, mapError("get exchange rate", err)
	}
	return rate, nil
}

// Latest tasa vigente del par dirigido (from -> to).
func (r *ExchangeRateRepo) Latest(ctx context.Context, companyID, from, to string) (*entity.ExchangeRate, error) {
	rate, err := scanRate(r.q.QueryRow(ctx, `SELECT `+rateColumns+` FROM tasas_cambio
		WHERE id_empresa = $1 AND divisa_origen = $2 AND divisa_destino = $3 AND deleted_at IS NULL
		ORDER BY created_at DESC LIMIT 1`, companyID, from, to))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, mapError("latest exchange rate", err)
	}
	return rate, nil
}

// ListByCompany historial de tasas, más recientes primero.
func (r *ExchangeRateRepo) ListByCompany(ctx context.Context, companyID string, opts repository.ListOptions) ([]*entity.ExchangeRate, error) {
	sql, args, err := scopeList(
		psql.Select(rateColumns).From("tasas_cambio").Where(squirrel.Eq{"id_empresa": companyID}).OrderBy("created_at DESC"),
		"tasas_cambio", opts.Normalize(),
	).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError("list exchange rates", err)
	}
	defer rows.Close()
	var list []*entity.ExchangeRate
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, mapError("scan exchange rate", err)
		}
		list = append(list, rate)
	}
	return list, rows.Err()
}

func (r *ExchangeRateRepo) SoftDelete(ctx context.Context, id string) error {
	return softDeleteRow(ctx, r.q, "tasas_cambio", "tasa de cambio", id)
}

func scanRate(row rowScanner) (*entity.ExchangeRate, error) {
	var rate entity.ExchangeRate
	err := row.Scan(&rate.ID, &rate.CompanyID, &rate.FromCode, &rate.ToCode, &rate.Rate,
		&rate.CreatedAt, &rate.UpdatedAt, &rate.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &rate, nil
}
