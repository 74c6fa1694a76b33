package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
)

var (
	_ repository.CompanyRepository      = (*CompanyRepo)(nil)
	_ repository.GlobalConfigRepository = (*GlobalConfigRepo)(nil)
)

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL.
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador de persistencia para empresas.
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

const companyColumns = `id, nombre, nit, direccion, telefono, correo, created_at, updated_at, deleted_at`

// Create persiste una nueva empresa.
func (r *CompanyRepo) Create(ctx context.Context, c *entity.Company) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO empresas (id, nombre, nit, direccion, telefono, correo)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		c.ID, c.Name, c.TaxID, c.Address, c.Phone, c.Email,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return mapError("insert company", err)
}

// GetByID obtiene una empresa activa por ID.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+companyColumns+` FROM empresas WHERE id = $1 AND deleted_at IS NULL`, id)
}

// GetByTaxID obtiene una empresa activa por NIT.
func (r *CompanyRepo) GetByTaxID(ctx context.Context, taxID string) (*entity.Company, error) {
	return r.getOne(ctx, `SELECT `+companyColumns+` FROM empresas WHERE nit = $1 AND deleted_at IS NULL`, taxID)
}

func (r *CompanyRepo) getOne(ctx context.Context, query string, arg string) (*entity.Company, error) {
	c, err := scanCompany(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, mapError("get company", err)
	}
	return c, nil
}

// Update actualiza los datos de contacto.
func (r *CompanyRepo) Update(ctx context.Context, c *entity.Company) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE empresas SET nombre = $2, direccion = $3, telefono = $4, correo = $5, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`,
		c.ID, c.Name, c.Address, c.Phone, c.Email)
	if err != nil {
		return mapError("update company", err)
	}
	return notFoundIfNone(tag, "empresa", c.ID)
}

// List lista empresas con paginación.
func (r *CompanyRepo) List(ctx context.Context, opts repository.ListOptions) ([]*entity.Company, error) {
	sql, args, err := scopeList(psql.Select(companyColumns).From("empresas").OrderBy("nombre"), "empresas", opts.Normalize()).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError("list companies", err)
	}
	defer rows.Close()
	var list []*entity.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, mapError("scan company", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// SoftDelete marca la empresa como eliminada.
func (r *CompanyRepo) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE empresas SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return mapError("delete company", err)
	}
	return notFoundIfNone(tag, "empresa", id)
}

func scanCompany(row rowScanner) (*entity.Company, error) {
	var c entity.Company
	err := row.Scan(&c.ID, &c.Name, &c.TaxID, &c.Address, &c.Phone, &c.Email, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GlobalConfigRepo persiste configuracion_global.
type GlobalConfigRepo struct {
	q Querier
}

// NewGlobalConfigRepository construye el adaptador.
func NewGlobalConfigRepository(q Querier) *GlobalConfigRepo {
	return &GlobalConfigRepo{q: q}
}

// GetByCompany devuelve la configuración de la empresa o (nil, nil).
func (r *GlobalConfigRepo) GetByCompany(ctx context.Context, companyID string) (*entity.GlobalConfig, error) {
	var g entity.GlobalConfig
	err := r.q.QueryRow(ctx, `
		SELECT id, id_empresa, codigo_divisa_base, created_at, updated_at
		FROM configuracion_global WHERE id_empresa = $1 AND deleted_at IS NULL`, companyID,
	).Scan(&g.ID, &g.CompanyID, &g.BaseCurrencyCode, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, mapError("get config", err)
	}
	return &g, nil
}

// Upsert crea o reemplaza la divisa base.
func (r *GlobalConfigRepo) Upsert(ctx context.Context, cfg *entity.GlobalConfig) error {
	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO configuracion_global (id, id_empresa, codigo_divisa_base)
		VALUES ($1, $2, $3)
		ON CONFLICT (id_empresa) DO UPDATE
			SET codigo_divisa_base = EXCLUDED.codigo_divisa_base, updated_at = now(), deleted_at = NULL
		RETURNING id, created_at, updated_at`,
		cfg.ID, cfg.CompanyID, cfg.BaseCurrencyCode,
	).Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt)
	return mapError("upsert config", err)
}
