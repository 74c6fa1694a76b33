package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo implementación del puerto WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para almacenes.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

const warehouseColumns = `id, id_empresa, nombre, direccion, es_principal, created_at, updated_at, deleted_at`

// Create persiste un nuevo almacén.
func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO almacenes (id, id_empresa, nombre, direccion, es_principal)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		w.ID, w.CompanyID, w.Name, w.Address, w.IsPrimary,
	).Scan(&w.CreatedAt, &w.UpdatedAt)
	return mapError("insert warehouse", err)
}

// GetByID obtiene un almacén activo por ID.
func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	if !validID(id) {
		return nil, nil
	}
	w, err := scanWarehouse(r.q.QueryRow(ctx, `SELECT `+warehouseColumns+` FROM almacenes WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, mapError("get warehouse", err)
	}
	return w, nil
}

// Update actualiza un almacén.
func (r *WarehouseRepo) Update(ctx context.Context, w *entity.Warehouse) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE almacenes SET nombre = $2, direccion = $3, es_principal = $4, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`,
		w.ID, w.Name, w.Address, w.IsPrimary)
	if err != nil {
		return mapError("update warehouse", err)
	}
	return notFoundIfNone(tag, "almacén", w.ID)
}

// ListByCompany almacenes de una empresa, principales primero.
func (r *WarehouseRepo) ListByCompany(ctx context.Context, companyID string, opts repository.ListOptions) ([]*entity.Warehouse, error) {
	sql, args, err := scopeList(
		psql.Select(warehouseColumns).From("almacenes").Where(squirrel.Eq{"id_empresa": companyID}).OrderBy("es_principal DESC", "nombre"),
		"almacenes", opts.Normalize(),
	).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError("list warehouses", err)
	}
	defer rows.Close()
	var list []*entity.Warehouse
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, mapError("scan warehouse", err)
		}
		list = append(list, w)
	}
	return list, rows.Err()
}

// CountPrimary cuántos almacenes activos de la empresa están marcados como principales.
func (r *WarehouseRepo) CountPrimary(ctx context.Context, companyID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT count(*) FROM almacenes
		WHERE id_empresa = $1 AND es_principal AND deleted_at IS NULL`, companyID).Scan(&n)
	if err != nil {
		return 0, mapError("count primary warehouses", err)
	}
	return n, nil
}

// SoftDelete marca el almacén como eliminado.
func (r *WarehouseRepo) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE almacenes SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return mapError("delete warehouse", err)
	}
	return notFoundIfNone(tag, "almacén", id)
}

func scanWarehouse(row rowScanner) (*entity.Warehouse, error) {
	var w entity.Warehouse
	err := row.Scan(&w.ID, &w.CompanyID, &w.Name, &w.Address, &w.IsPrimary, &w.CreatedAt, &w.UpdatedAt, &w.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}
