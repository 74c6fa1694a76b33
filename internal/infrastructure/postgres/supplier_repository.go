package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
)

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo persiste proveedores.
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador.
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

const supplierColumns = `id, id_empresa, nombre, nit, contacto, telefono, correo, direccion, dias_credito,
	created_at, updated_at, deleted_at`

func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO proveedores (id, id_empresa, nombre, nit, contacto, telefono, correo, direccion, dias_credito)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		s.ID, s.CompanyID, s.Name, s.TaxID, s.ContactName, s.Phone, s.Email, s.Address, s.CreditDays,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	return mapError("insert supplier", err)
}

func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	if !validID(id) {
		return nil, nil
	}
	s, err := scanSupplier(r.q.QueryRow(ctx, `SELECT `+supplierColumns+` FROM proveedores WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, mapError("get supplier", err)
	}
	return s, nil
}

func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE proveedores SET nombre = $2, nit = $3, contacto = $4, telefono = $5, correo = $6,
			direccion = $7, dias_credito = $8, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`,
		s.ID, s.Name, s.TaxID, s.ContactName, s.Phone, s.Email, s.Address, s.CreditDays)
	if err != nil {
		return mapError("update supplier", err)
	}
	return notFoundIfNone(tag, "proveedor", s.ID)
}

func (r *SupplierRepo) ListByCompany(ctx context.Context, companyID string, opts repository.ListOptions) ([]*entity.Supplier, error) {
	sql, args, err := scopeList(
		psql.Select(supplierColumns).From("proveedores").Where(squirrel.Eq{"id_empresa": companyID}).OrderBy("nombre"),
		"proveedores", opts.Normalize(),
	).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError("list suppliers", err)
	}
	defer rows.Close()
	var list []*entity.Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, mapError("scan supplier", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *SupplierRepo) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE proveedores SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return mapError("delete supplier", err)
	}
	return notFoundIfNone(tag, "proveedor", id)
}

func scanSupplier(row rowScanner) (*entity.Supplier, error) {
	var s entity.Supplier
	err := row.Scan(&s.ID, &s.CompanyID, &s.Name, &s.TaxID, &s.ContactName, &s.Phone, &s.Email, &s.Address,
		&s.CreditDays, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
