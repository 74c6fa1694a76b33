package inventory

import (
	"context"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; ningún cambio parcial queda visible.
// Los conflictos de bloqueo se reportan envolviendo domain.ErrConcurrencyConflict.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepos) error) error
}

// Observer recibe eventos del ledger (métricas). Puede ser nil.
type Observer interface {
	MovementApplied(reason string)
	MovementReplayed(reason string)
	ConflictRetried()
}

// StockExporter serializa el listado de stock (ej. a Excel).
type StockExporter interface {
	ExportStock(warehouseName string, items []repository.StockLevelItem) ([]byte, error)
}

type noopObserver struct{}

func (noopObserver) MovementApplied(string)  {}
func (noopObserver) MovementReplayed(string) {}
func (noopObserver) ConflictRetried()        {}
