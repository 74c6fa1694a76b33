package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
)

var (
	_ repository.PurchaseRepository = (*PurchaseRepo)(nil)
	_ repository.OrderRepository    = (*OrderRepo)(nil)
)

// PurchaseRepo persiste compras y sus líneas.
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

const purchaseColumns = `id, id_empresa, id_proveedor, id_almacen_destino, COALESCE(id_usuario::text, ''), estado,
	metodo_pago, codigo_divisa, total, notas, fecha_recepcion, fecha_cancelacion, created_at, updated_at, deleted_at`

// Create inserta cabecera y líneas. Llamar dentro de una transacción.
func (r *PurchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO compras (id, id_empresa, id_proveedor, id_almacen_destino, id_usuario, estado, metodo_pago,
			codigo_divisa, total, notas)
		VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		p.ID, p.CompanyID, p.SupplierID, p.WarehouseID, p.UserID, p.Status, p.PaymentMethod,
		p.CurrencyCode, p.Total, p.Notes,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return mapError("insert purchase", err)
	}
	for i, l := range p.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO detalle_compras (id, id_compra, linea, id_empresa, id_variante, cantidad, precio_costo_historico, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			l.ID, p.ID, i+1, p.CompanyID, l.VariantID, l.Quantity, l.UnitCost, l.Subtotal)
		if err != nil {
			return mapError("insert purchase line", err)
		}
	}
	return nil
}

// GetByID carga cabecera y líneas.
func (r *PurchaseRepo) GetByID(ctx context.Context, id string) (*entity.Purchase, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate igual que GetByID pero bloquea la cabecera hasta el fin de la transacción.
func (r *PurchaseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *PurchaseRepo) get(ctx context.Context, id, lock string) (*entity.Purchase, error) {
	if !validID(id) {
		return nil, nil
	}
	p, err := scanPurchase(r.q.QueryRow(ctx, `SELECT `+purchaseColumns+` FROM compras WHERE id = $1 AND deleted_at IS NULL`+lock, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, mapError("get purchase", err)
	}
	if err := r.loadLines(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PurchaseRepo) loadLines(ctx context.Context, p *entity.Purchase) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, id_compra, id_empresa, id_variante, cantidad, precio_costo_historico, subtotal
		FROM detalle_compras WHERE id_compra = $1 ORDER BY linea`, p.ID)
	if err != nil {
		return mapError("get purchase lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.PurchaseLine
		if err := rows.Scan(&l.ID, &l.PurchaseID, &l.CompanyID, &l.VariantID, &l.Quantity, &l.UnitCost, &l.Subtotal); err != nil {
			return mapError("scan purchase line", err)
		}
		p.Lines = append(p.Lines, l)
	}
	return rows.Err()
}

// UpdateStatus persiste estado y fechas de transición.
func (r *PurchaseRepo) UpdateStatus(ctx context.Context, p *entity.Purchase) error {
	err := r.q.QueryRow(ctx, `
		UPDATE compras SET estado = $2, fecha_recepcion = $3, fecha_cancelacion = $4, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`,
		p.ID, p.Status, p.ReceivedAt, p.CancelledAt,
	).Scan(&p.UpdatedAt)
	if noRows(err) {
		return notFoundPurchase(p.ID)
	}
	return mapError("update purchase", err)
}

// ListByCompany compras de la empresa, más recientes primero. status vacío = todas.
func (r *PurchaseRepo) ListByCompany(ctx context.Context, companyID, status string, opts repository.ListOptions) ([]*entity.Purchase, error) {
	q := psql.Select(purchaseColumns).From("compras").Where(squirrel.Eq{"id_empresa": companyID}).OrderBy("created_at DESC")
	if status != "" {
		q = q.Where(squirrel.Eq{"estado": status})
	}
	sql, args, err := scopeList(q, "compras", opts.Normalize()).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError("list purchases", err)
	}
	var list []*entity.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			rows.Close()
			return nil, mapError("scan purchase", err)
		}
		list = append(list, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapError("list purchases", err)
	}
	for _, p := range list {
		if err := r.loadLines(ctx, p); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func scanPurchase(row rowScanner) (*entity.Purchase, error) {
	var p entity.Purchase
	err := row.Scan(&p.ID, &p.CompanyID, &p.SupplierID, &p.WarehouseID, &p.UserID, &p.Status, &p.PaymentMethod,
		&p.CurrencyCode, &p.Total, &p.Notes, &p.ReceivedAt, &p.CancelledAt, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// OrderRepo persiste pedidos y sus líneas.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, id_empresa, id_almacen_origen, COALESCE(id_usuario::text, ''), cliente, estado, codigo_divisa,
	total, notas, fecha_completado, fecha_cancelacion, created_at, updated_at, deleted_at`

// Create inserta cabecera y líneas. Llamar dentro de una transacción.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO pedidos (id, id_empresa, id_almacen_origen, id_usuario, cliente, estado, codigo_divisa, total, notas)
		VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		o.ID, o.CompanyID, o.WarehouseID, o.UserID, o.CustomerName, o.Status, o.CurrencyCode, o.Total, o.Notes,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return mapError("insert order", err)
	}
	for i, l := range o.Lines {
		var details any
		if len(l.Details) > 0 {
			details = []byte(l.Details)
		}
		_, err := r.q.Exec(ctx, `
			INSERT INTO detalle_pedidos (id, id_pedido, linea, id_empresa, id_variante, cantidad, precio_unitario, subtotal, detalles)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			l.ID, o.ID, i+1, o.CompanyID, l.VariantID, l.Quantity, l.UnitPrice, l.Subtotal, details)
		if err != nil {
			return mapError("insert order line", err)
		}
	}
	return nil
}

// GetByID carga cabecera y líneas.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate igual que GetByID pero bloquea la cabecera.
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *OrderRepo) get(ctx context.Context, id, lock string) (*entity.Order, error) {
	if !validID(id) {
		return nil, nil
	}
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM pedidos WHERE id = $1 AND deleted_at IS NULL`+lock, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, mapError("get order", err)
	}
	if err := r.loadLines(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepo) loadLines(ctx context.Context, o *entity.Order) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, id_pedido, id_empresa, id_variante, cantidad, precio_unitario, subtotal, detalles
		FROM detalle_pedidos WHERE id_pedido = $1 ORDER BY linea`, o.ID)
	if err != nil {
		return mapError("get order lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			l       entity.OrderLine
			details []byte
		)
		if err := rows.Scan(&l.ID, &l.OrderID, &l.CompanyID, &l.VariantID, &l.Quantity, &l.UnitPrice, &l.Subtotal, &details); err != nil {
			return mapError("scan order line", err)
		}
		l.Details = details
		o.Lines = append(o.Lines, l)
	}
	return rows.Err()
}

// UpdateStatus persiste estado y fechas de transición.
func (r *OrderRepo) UpdateStatus(ctx context.Context, o *entity.Order) error {
	err := r.q.QueryRow(ctx, `
		UPDATE pedidos SET estado = $2, fecha_completado = $3, fecha_cancelacion = $4, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`,
		o.ID, o.Status, o.CompletedAt, o.CancelledAt,
	).Scan(&o.UpdatedAt)
	if noRows(err) {
		return notFoundOrder(o.ID)
	}
	return mapError("update order", err)
}

// ListByCompany pedidos de la empresa, más recientes primero. status vacío = todos.
func (r *OrderRepo) ListByCompany(ctx context.Context, companyID, status string, opts repository.ListOptions) ([]*entity.Order, error) {
	q := psql.Select(orderColumns).From("pedidos").Where(squirrel.Eq{"id_empresa": companyID}).OrderBy("created_at DESC")
	if status != "" {
		q = q.Where(squirrel.Eq{"estado": status})
	}
	sql, args, err := scopeList(q, "pedidos", opts.Normalize()).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError("list orders", err)
	}
	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, mapError("scan order", err)
		}
		list = append(list, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapError("list orders", err)
	}
	for _, o := range list {
		if err := r.loadLines(ctx, o); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func scanOrder(row rowScanner) (*entity.Order, error) {
	var o entity.Order
	err := row.Scan(&o.ID, &o.CompanyID, &o.WarehouseID, &o.UserID, &o.CustomerName, &o.Status, &o.CurrencyCode,
		&o.Total, &o.Notes, &o.CompletedAt, &o.CancelledAt, &o.CreatedAt, &o.UpdatedAt, &o.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
