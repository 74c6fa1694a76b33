package postgres

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const (
	productColumns = `id, id_empresa, id_subcategoria, nombre, descripcion, precio_venta, codigo_divisa,
		created_at, updated_at, deleted_at`
	variantColumns = `id, id_empresa, id_producto, sku, nombre, precio, stock_minimo, costo_promedio,
		created_at, updated_at, deleted_at`
)

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO productos (id, id_empresa, id_subcategoria, nombre, descripcion, precio_venta, codigo_divisa)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		p.ID, p.CompanyID, p.SubcategoryID, p.Name, p.Description, p.Price, p.CurrencyCode,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return mapError("insert product", err)
}

// GetByID obtiene un producto activo por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if !validID(id) {
		return nil, nil
	}
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM productos WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, mapError("get product", err)
	}
	return p, nil
}

// Update actualiza los datos del producto.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE productos SET id_subcategoria = $2, nombre = $3, descripcion = $4, precio_venta = $5,
			codigo_divisa = $6, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`,
		p.ID, p.SubcategoryID, p.Name, p.Description, p.Price, p.CurrencyCode)
	if err != nil {
		return mapError("update product", err)
	}
	return notFoundIfNone(tag, "producto", p.ID)
}

// ListByCompany lista productos con filtros opcionales de subcategoría y nombre.
func (r *ProductRepo) ListByCompany(ctx context.Context, companyID string, f repository.ProductFilter, opts repository.ListOptions) ([]*entity.Product, error) {
	q := psql.Select(productColumns).From("productos").Where(squirrel.Eq{"id_empresa": companyID}).OrderBy("nombre")
	if f.SubcategoryID != "" {
		q = q.Where(squirrel.Eq{"id_subcategoria": f.SubcategoryID})
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q = q.Where(squirrel.ILike{"nombre": "%" + s + "%"})
	}
	sql, args, err := scopeList(q, "productos", opts.Normalize()).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError("list products", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, mapError("scan product", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// SoftDelete marca el producto y sus variantes como eliminados.
func (r *ProductRepo) SoftDelete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.NewNotFound("producto", id)
	}
	var n int
	err := r.q.QueryRow(ctx, `
		WITH p AS (
			UPDATE productos SET deleted_at = now(), updated_at = now()
			WHERE id = $1 AND deleted_at IS NULL RETURNING id
		), v AS (
			UPDATE producto_variantes SET deleted_at = now(), updated_at = now()
			WHERE id_producto IN (SELECT id FROM p) AND deleted_at IS NULL
		)
		SELECT count(*) FROM p`, id).Scan(&n)
	if err != nil {
		return mapError("delete product", err)
	}
	if n == 0 {
		return domain.NewNotFound("producto", id)
	}
	return nil
}

// CreateVariant persiste una variante. SKU repetido en la empresa => domain.ErrDuplicate.
func (r *ProductRepo) CreateVariant(ctx context.Context, v *entity.ProductVariant) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO producto_variantes (id, id_empresa, id_producto, sku, nombre, precio, stock_minimo, costo_promedio)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		v.ID, v.CompanyID, v.ProductID, v.SKU, v.Name, v.Price, v.MinStock, v.AvgCost,
	).Scan(&v.CreatedAt, &v.UpdatedAt)
	return mapError("insert variant", err)
}

// GetVariant obtiene una variante activa.
func (r *ProductRepo) GetVariant(ctx context.Context, id string) (*entity.ProductVariant, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getVariant(ctx, `SELECT `+variantColumns+` FROM producto_variantes WHERE id = $1 AND deleted_at IS NULL`, id)
}

// GetVariantBySKU obtiene la variante activa con ese SKU en la empresa.
func (r *ProductRepo) GetVariantBySKU(ctx context.Context, companyID, sku string) (*entity.ProductVariant, error) {
	return r.getVariant(ctx, `SELECT `+variantColumns+` FROM producto_variantes
		WHERE id_empresa = $1 AND sku = $2 AND deleted_at IS NULL`, companyID, sku)
}

func (r *ProductRepo) getVariant(ctx context.Context, query string, args ...any) (*entity.ProductVariant, error) {
	v, err := scanVariant(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, mapError("get variant", err)
	}
	return v, nil
}

// UpdateVariant actualiza sku, nombre, precio y stock mínimo. El costo promedio no se toca aquí.
func (r *ProductRepo) UpdateVariant(ctx context.Context, v *entity.ProductVariant) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE producto_variantes SET sku = $2, nombre = $3, precio = $4, stock_minimo = $5, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`,
		v.ID, v.SKU, v.Name, v.Price, v.MinStock)
	if err != nil {
		return mapError("update variant", err)
	}
	return notFoundIfNone(tag, "variante", v.ID)
}

// UpdateVariantCost fija el costo promedio ponderado.
func (r *ProductRepo) UpdateVariantCost(ctx context.Context, variantID string, cost decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE producto_variantes SET costo_promedio = $2, updated_at = now() WHERE id = $1`, variantID, cost)
	if err != nil {
		return mapError("update variant cost", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("variante", variantID)
	}
	return nil
}

// ListVariants variantes de un producto ordenadas por SKU.
func (r *ProductRepo) ListVariants(ctx context.Context, productID string, opts repository.ListOptions) ([]*entity.ProductVariant, error) {
	sql, args, err := scopeList(
		psql.Select(variantColumns).From("producto_variantes").Where(squirrel.Eq{"id_producto": productID}).OrderBy("sku"),
		"producto_variantes", opts.Normalize(),
	).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError("list variants", err)
	}
	defer rows.Close()
	var list []*entity.ProductVariant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, mapError("scan variant", err)
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

// SoftDeleteVariant marca una variante como eliminada. Su stock y movimientos se conservan.
func (r *ProductRepo) SoftDeleteVariant(ctx context.Context, id string) error {
	return softDeleteRow(ctx, r.q, "producto_variantes", "variante", id)
}

func scanProduct(row rowScanner) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.CompanyID, &p.SubcategoryID, &p.Name, &p.Description, &p.Price, &p.CurrencyCode,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanVariant(row rowScanner) (*entity.ProductVariant, error) {
	var v entity.ProductVariant
	err := row.Scan(&v.ID, &v.CompanyID, &v.ProductID, &v.SKU, &v.Name, &v.Price, &v.MinStock, &v.AvgCost,
		&v.CreatedAt, &v.UpdatedAt, &v.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
