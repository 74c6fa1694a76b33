package postgres

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
)

var (
	_ repository.StockRepository         = (*StockRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
	_ repository.StockReportRepository   = (*StockReportRepo)(nil)
)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de una variante en un almacén (cero si no hay fila).
func (r *StockRepo) Get(ctx context.Context, companyID, variantID, warehouseID string) (*entity.WarehouseStock, error) {
	query := `
		SELECT id_empresa, id_variante, id_almacen, stock_actual, version, updated_at
		FROM stock_almacen WHERE id_variante = $1 AND id_almacen = $2`
	s, err := r.scan(ctx, query, variantID, warehouseID)
	if err != nil {
		if noRows(err) {
			return &entity.WarehouseStock{CompanyID: companyID, VariantID: variantID, WarehouseID: warehouseID, Quantity: decimal.Zero}, nil
		}
		return nil, mapError("get stock", err)
	}
	return s, nil
}

// GetForUpdate crea la fila si no existe y la bloquea (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, companyID, variantID, warehouseID string) (*entity.WarehouseStock, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_almacen (id_empresa, id_variante, id_almacen, stock_actual, version, updated_at)
		VALUES ($1, $2, $3, 0, 0, now())
		ON CONFLICT (id_variante, id_almacen) DO NOTHING`,
		companyID, variantID, warehouseID)
	if err != nil {
		return nil, mapError("ensure stock row", err)
	}
	query := `
		SELECT id_empresa, id_variante, id_almacen, stock_actual, version, updated_at
		FROM stock_almacen WHERE id_variante = $1 AND id_almacen = $2
		FOR UPDATE`
	s, err := r.scan(ctx, query, variantID, warehouseID)
	if err != nil {
		return nil, mapError("get stock for update", err)
	}
	return s, nil
}

// Save escribe la cantidad si la versión no cambió desde la lectura.
func (r *StockRepo) Save(ctx context.Context, stock *entity.WarehouseStock) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_almacen SET stock_actual = $1, version = version + 1, updated_at = now()
		WHERE id_variante = $2 AND id_almacen = $3 AND version = $4`,
		stock.Quantity, stock.VariantID, stock.WarehouseID, stock.Version)
	if err != nil {
		return mapError("save stock", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrencyConflict
	}
	stock.Version++
	return nil
}

func (r *StockRepo) scan(ctx context.Context, query string, args ...any) (*entity.WarehouseStock, error) {
	var s entity.WarehouseStock
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&s.CompanyID, &s.VariantID, &s.WarehouseID, &s.Quantity, &s.Version, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// StockMovementRepo persiste movimientos_stock.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, id_empresa, id_variante, id_almacen, motivo, id_referencia, delta,
	cantidad_antes, cantidad_despues, COALESCE(id_usuario::text, ''), nota, created_at`

// Create inserta un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO movimientos_stock (id, id_empresa, id_variante, id_almacen, motivo, id_referencia, delta,
			cantidad_antes, cantidad_despues, id_usuario, nota, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, '')::uuid, $11, $12)`,
		m.ID, m.CompanyID, m.VariantID, m.WarehouseID, m.Reason, m.ReferenceID, m.Delta,
		m.QuantityBefore, m.QuantityAfter, m.UserID, m.Note, m.CreatedAt)
	return mapError("insert movement", err)
}

// FindByReference busca el movimiento de una clave de idempotencia.
func (r *StockMovementRepo) FindByReference(ctx context.Context, companyID, reason, referenceID string) (*entity.StockMovement, error) {
	row := r.q.QueryRow(ctx, `SELECT `+movementColumns+`
		FROM movimientos_stock WHERE id_empresa = $1 AND motivo = $2 AND id_referencia = $3`,
		companyID, reason, referenceID)
	m, err := scanMovement(row)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, mapError("find movement", err)
	}
	return m, nil
}

// ListByVariant historial de una variante, más reciente primero.
func (r *StockMovementRepo) ListByVariant(ctx context.Context, companyID, variantID string, from, to *time.Time, opts repository.ListOptions) ([]*entity.StockMovement, error) {
	opts = opts.Normalize()
	q := psql.Select(movementColumns).From("movimientos_stock").
		Where(squirrel.Eq{"id_empresa": companyID, "id_variante": variantID}).
		OrderBy("created_at DESC").
		Limit(uint64(opts.Limit)).Offset(uint64(opts.Offset))
	if from != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *from})
	}
	if to != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *to})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError("list movements", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, mapError("scan movement", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovement(row rowScanner) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := row.Scan(&m.ID, &m.CompanyID, &m.VariantID, &m.WarehouseID, &m.Reason, &m.ReferenceID, &m.Delta,
		&m.QuantityBefore, &m.QuantityAfter, &m.UserID, &m.Note, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// StockReportRepo consultas de lectura sobre stock_almacen con datos de catálogo.
type StockReportRepo struct {
	q Querier
}

// NewStockReportRepository construye el adaptador de reportes.
func NewStockReportRepository(q Querier) *StockReportRepo {
	return &StockReportRepo{q: q}
}

func (r *StockReportRepo) base() squirrel.SelectBuilder {
	return psql.Select(
		"v.id AS id_variante", "v.sku", "p.nombre AS nombre_producto", "v.nombre AS nombre_variante",
		"s.id_almacen", "s.stock_actual", "v.stock_minimo", "s.updated_at",
	).
		From("stock_almacen s").
		Join("producto_variantes v ON v.id = s.id_variante").
		Join("productos p ON p.id = v.id_producto").
		Where("v.deleted_at IS NULL")
}

// ListByWarehouse stock de un almacén ordenado por SKU.
func (r *StockReportRepo) ListByWarehouse(ctx context.Context, companyID, warehouseID string, opts repository.ListOptions) ([]repository.StockLevelItem, error) {
	opts = opts.Normalize()
	sql, args, err := r.base().
		Where(squirrel.Eq{"s.id_empresa": companyID, "s.id_almacen": warehouseID}).
		OrderBy("v.sku").
		Limit(uint64(opts.Limit)).Offset(uint64(opts.Offset)).
		ToSql()
	if err != nil {
		return nil, err
	}
	var items []repository.StockLevelItem
	if err := pgxscan.Select(ctx, r.q, &items, sql, args...); err != nil {
		return nil, mapError("list stock", err)
	}
	return items, nil
}

// BelowMinimum variantes bajo stock_minimo. Sin almacén se compara el stock total de la empresa.
// Una variante sin fila en stock_almacen cuenta con cantidad cero.
func (r *StockReportRepo) BelowMinimum(ctx context.Context, companyID, warehouseID string) ([]repository.StockLevelItem, error) {
	join := "stock_almacen s ON s.id_variante = v.id"
	var joinArgs []any
	if warehouseID != "" {
		join += " AND s.id_almacen = ?"
		joinArgs = append(joinArgs, warehouseID)
	}
	sql, args, err := psql.Select(
		"v.id AS id_variante", "v.sku", "p.nombre AS nombre_producto", "v.nombre AS nombre_variante",
	).
		Column(squirrel.Alias(squirrel.Expr("?::text", warehouseID), "id_almacen")).
		Columns(
			"COALESCE(SUM(s.stock_actual), 0) AS stock_actual", "v.stock_minimo",
			"COALESCE(MAX(s.updated_at), v.updated_at) AS updated_at",
		).
		From("producto_variantes v").
		Join("productos p ON p.id = v.id_producto").
		LeftJoin(join, joinArgs...).
		Where(squirrel.Eq{"v.id_empresa": companyID}).
		Where("v.deleted_at IS NULL AND v.stock_minimo > 0").
		GroupBy("v.id", "v.sku", "p.nombre", "v.nombre", "v.stock_minimo", "v.updated_at").
		Having("COALESCE(SUM(s.stock_actual), 0) < v.stock_minimo").
		OrderBy("v.sku").
		ToSql()
	if err != nil {
		return nil, err
	}
	var items []repository.StockLevelItem
	if err := pgxscan.Select(ctx, r.q, &items, sql, args...); err != nil {
		return nil, mapError("low stock", err)
	}
	return items, nil
}
