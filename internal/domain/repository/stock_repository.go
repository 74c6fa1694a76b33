package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar StockAlmacen.
// Las mutaciones solo ocurren dentro de una transacción del ledger.
type StockRepository interface {
	// Get devuelve el stock actual (cantidad cero si no existe fila).
	Get(ctx context.Context, companyID, variantID, warehouseID string) (*entity.WarehouseStock, error)
	// GetForUpdate asegura que la fila exista y la bloquea (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, companyID, variantID, warehouseID string) (*entity.WarehouseStock, error)
	// Save persiste la cantidad con chequeo de versión; 0 filas afectadas => ErrConcurrencyConflict.
	Save(ctx context.Context, stock *entity.WarehouseStock) error
}

// StockMovementRepository persiste el historial del ledger.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// FindByReference devuelve (nil, nil) si no hay movimiento con esa clave de idempotencia.
	FindByReference(ctx context.Context, companyID, reason, referenceID string) (*entity.StockMovement, error)
	ListByVariant(ctx context.Context, companyID, variantID string, from, to *time.Time, opts ListOptions) ([]*entity.StockMovement, error)
}

// StockLevelItem fila de lectura del stock por almacén con datos de catálogo.
type StockLevelItem struct {
	VariantID   string          `db:"id_variante"`
	SKU         string          `db:"sku"`
	ProductName string          `db:"nombre_producto"`
	VariantName string          `db:"nombre_variante"`
	WarehouseID string          `db:"id_almacen"`
	Quantity    decimal.Decimal `db:"stock_actual"`
	MinStock    decimal.Decimal `db:"stock_minimo"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// StockReportRepository consultas de lectura (no bloquean escrituras).
type StockReportRepository interface {
	ListByWarehouse(ctx context.Context, companyID, warehouseID string, opts ListOptions) ([]StockLevelItem, error)
	// BelowMinimum variantes cuyo stock es menor que stock_minimo. warehouseID vacío = stock agregado.
	BelowMinimum(ctx context.Context, companyID, warehouseID string) ([]StockLevelItem, error)
}
