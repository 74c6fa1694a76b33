package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
)

var _ repository.FilterRepository = (*FilterRepo)(nil)

// FilterRepo persiste filtros, opciones y vínculos producto-opción.
type FilterRepo struct {
	q Querier
}

// NewFilterRepository construye el adaptador.
func NewFilterRepository(q Querier) *FilterRepo {
	return &FilterRepo{q: q}
}

const (
	filterColumns = `id, id_empresa, id_subcategoria, nombre, tipo_dato, valores_permitidos, created_at, updated_at, deleted_at`
	optionColumns = `o.id, o.id_empresa, o.id_filtro, o.valor, o.created_at, o.updated_at, o.deleted_at`
)

func (r *FilterRepo) Create(ctx context.Context, f *entity.Filter) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO filtros (id, id_empresa, id_subcategoria, nombre, tipo_dato, valores_permitidos)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		f.ID, f.CompanyID, f.SubcategoryID, f.Name, f.DataType, allowed(f.AllowedValues),
	).Scan(&f.CreatedAt, &f.UpdatedAt)
	return mapError("insert filter", err)
}

func (r *FilterRepo) GetByID(ctx context.Context, id string) (*entity.Filter, error) {
	if !validID(id) {
		return nil, nil
	}
	f, err := scanFilter(r.q.QueryRow(ctx, `SELECT `+filterColumns+` FROM filtros WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, mapError("get filter", err)
	}
	return f, nil
}

func (r *FilterRepo) Update(ctx context.Context, f *entity.Filter) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE filtros SET nombre = $2, tipo_dato = $3, valores_permitidos = $4, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`,
		f.ID, f.Name, f.DataType, allowed(f.AllowedValues))
	if err != nil {
		return mapError("update filter", err)
	}
	return notFoundIfNone(tag, "filtro", f.ID)
}

func (r *FilterRepo) ListBySubcategory(ctx context.Context, subcategoryID string, opts repository.ListOptions) ([]*entity.Filter, error) {
	sql, args, err := scopeList(
		psql.Select(filterColumns).From("filtros").Where(squirrel.Eq{"id_subcategoria": subcategoryID}).OrderBy("nombre"),
		"filtros", opts.Normalize(),
	).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError("list filters", err)
	}
	defer rows.Close()
	var list []*entity.Filter
	for rows.Next() {
		f, err := scanFilter(rows)
		if err != nil {
			return nil, mapError("scan filter", err)
		}
		list = append(list, f)
	}
	return list, rows.Err()
}

// SoftDeleteCascade elimina el filtro, sus opciones y los vínculos a productos en una sola sentencia.
func (r *FilterRepo) SoftDeleteCascade(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.NewNotFound("filtro", id)
	}
	var n int
	err := r.q.QueryRow(ctx, `
		WITH f AS (
			UPDATE filtros SET deleted_at = now(), updated_at = now()
			WHERE id = $1 AND deleted_at IS NULL RETURNING id
		), o AS (
			UPDATE opciones_filtro SET deleted_at = now(), updated_at = now()
			WHERE id_filtro IN (SELECT id FROM f) AND deleted_at IS NULL RETURNING id
		), d AS (
			UPDATE producto_detalle_filtro SET deleted_at = now(), updated_at = now()
			WHERE id_opcion IN (SELECT id FROM o) AND deleted_at IS NULL
		)
		SELECT count(*) FROM f`, id).Scan(&n)
	if err != nil {
		return mapError("delete filter", err)
	}
	if n == 0 {
		return domain.NewNotFound("filtro", id)
	}
	return nil
}

func (r *FilterRepo) CreateOption(ctx context.Context, o *entity.FilterOption) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO opciones_filtro (id, id_empresa, id_filtro, valor) VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		o.ID, o.CompanyID, o.FilterID, o.Value,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	return mapError("insert filter option", err)
}

func (r *FilterRepo) GetOption(ctx context.Context, id string) (*entity.FilterOption, error) {
	if !validID(id) {
		return nil, nil
	}
	o, err := scanOption(r.q.QueryRow(ctx, `SELECT `+optionColumns+` FROM opciones_filtro o WHERE o.id = $1 AND o.deleted_at IS NULL`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, mapError("get filter option", err)
	}
	return o, nil
}

func (r *FilterRepo) ListOptions(ctx context.Context, filterID string, opts repository.ListOptions) ([]*entity.FilterOption, error) {
	return r.selectOptions(ctx, scopeList(
		psql.Select(optionColumns).From("opciones_filtro o").Where(squirrel.Eq{"o.id_filtro": filterID}).OrderBy("o.valor"),
		"o", opts.Normalize(),
	))
}

func (r *FilterRepo) SoftDeleteOption(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.NewNotFound("opción de filtro", id)
	}
	var n int
	err := r.q.QueryRow(ctx, `
		WITH o AS (
			UPDATE opciones_filtro SET deleted_at = now(), updated_at = now()
			WHERE id = $1 AND deleted_at IS NULL RETURNING id
		), d AS (
			UPDATE producto_detalle_filtro SET deleted_at = now(), updated_at = now()
			WHERE id_opcion IN (SELECT id FROM o) AND deleted_at IS NULL
		)
		SELECT count(*) FROM o`, id).Scan(&n)
	if err != nil {
		return mapError("delete filter option", err)
	}
	if n == 0 {
		return domain.NewNotFound("opción de filtro", id)
	}
	return nil
}

func (r *FilterRepo) GetProductDetail(ctx context.Context, productID, optionID string) (*entity.ProductFilterDetail, error) {
	var d entity.ProductFilterDetail
	err := r.q.QueryRow(ctx, `
		SELECT id, id_empresa, id_producto, id_opcion, created_at, updated_at, deleted_at
		FROM producto_detalle_filtro WHERE id_producto = $1 AND id_opcion = $2 AND deleted_at IS NULL`,
		productID, optionID,
	).Scan(&d.ID, &d.CompanyID, &d.ProductID, &d.OptionID, &d.CreatedAt, &d.UpdatedAt, &d.DeletedAt)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, mapError("get product detail", err)
	}
	return &d, nil
}

func (r *FilterRepo) AttachOption(ctx context.Context, d *entity.ProductFilterDetail) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO producto_detalle_filtro (id, id_empresa, id_producto, id_opcion) VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		d.ID, d.CompanyID, d.ProductID, d.OptionID,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	return mapError("attach option", err)
}

func (r *FilterRepo) DetachOption(ctx context.Context, productID, optionID string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE producto_detalle_filtro SET deleted_at = now(), updated_at = now()
		WHERE id_producto = $1 AND id_opcion = $2 AND deleted_at IS NULL`, productID, optionID)
	if err != nil {
		return mapError("detach option", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("opción de producto", optionID)
	}
	return nil
}

// ListProductOptions opciones vigentes elegidas para un producto.
func (r *FilterRepo) ListProductOptions(ctx context.Context, productID string) ([]*entity.FilterOption, error) {
	return r.selectOptions(ctx, psql.Select(optionColumns).
		From("opciones_filtro o").
		Join("producto_detalle_filtro d ON d.id_opcion = o.id").
		Where(squirrel.Eq{"d.id_producto": productID, "d.deleted_at": nil, "o.deleted_at": nil}).
		OrderBy("o.valor"))
}

func (r *FilterRepo) selectOptions(ctx context.Context, q squirrel.SelectBuilder) ([]*entity.FilterOption, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError("list filter options", err)
	}
	defer rows.Close()
	var list []*entity.FilterOption
	for rows.Next() {
		o, err := scanOption(rows)
		if err != nil {
			return nil, mapError("scan filter option", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func scanFilter(row rowScanner) (*entity.Filter, error) {
	var f entity.Filter
	err := row.Scan(&f.ID, &f.CompanyID, &f.SubcategoryID, &f.Name, &f.DataType, &f.AllowedValues,
		&f.CreatedAt, &f.UpdatedAt, &f.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func scanOption(row rowScanner) (*entity.FilterOption, error) {
	var o entity.FilterOption
	err := row.Scan(&o.ID, &o.CompanyID, &o.FilterID, &o.Value, &o.CreatedAt, &o.UpdatedAt, &o.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// allowed evita enviar NULL a una columna TEXT[] NOT NULL.
func allowed(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
