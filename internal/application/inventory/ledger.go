package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/tenant"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/inventory"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/valuation"
)

// DefaultMaxAttempts reintentos ante conflictos de bloqueo antes de devolver ErrConcurrencyConflict.
const DefaultMaxAttempts = 3

// Ledger es el único componente que modifica stock_actual.
// Cada movimiento se aplica con la fila StockAlmacen bloqueada (SELECT FOR UPDATE) y
// deja un registro en movimientos_stock que hace idempotente la operación por referencia.
type Ledger struct {
	txRunner      TxRunner
	registry      *tenant.Registry
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	maxAttempts   int
	observer      Observer
	now           func() time.Time
}

// LedgerOption configura el Ledger.
type LedgerOption func(*Ledger)

// WithMaxAttempts fija el número máximo de intentos por transacción.
func WithMaxAttempts(n int) LedgerOption {
	return func(l *Ledger) {
		if n > 0 {
			l.maxAttempts = n
		}
	}
}

// WithObserver registra un observador (métricas).
func WithObserver(o Observer) LedgerOption {
	return func(l *Ledger) {
		if o != nil {
			l.observer = o
		}
	}
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

// NewLedger construye el ledger de stock.
func NewLedger(
	txRunner TxRunner,
	registry *tenant.Registry,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	opts ...LedgerOption,
) *Ledger {
	l := &Ledger{
		txRunner:      txRunner,
		registry:      registry,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		maxAttempts:   DefaultMaxAttempts,
		observer:      noopObserver{},
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// MovementInput datos de un movimiento de stock.
// ReferenceID liga el movimiento con su origen (línea de compra/pedido) y es la clave de idempotencia.
type MovementInput struct {
	CompanyID   string
	VariantID   string
	WarehouseID string
	Delta       decimal.Decimal
	Reason      string
	ReferenceID string
	UserID      string
	Note        string
}

func (in MovementInput) key() inventory.StockKey {
	return inventory.StockKey{VariantID: in.VariantID, WarehouseID: in.WarehouseID}
}

// MovementResult resultado de aplicar un movimiento. Applied=false indica una repetición ya aplicada.
type MovementResult struct {
	Movement *entity.StockMovement
	Applied  bool
}

func validateMovement(in MovementInput) error {
	if in.VariantID == "" {
		return domain.NewValidation("id_variante", "requerido")
	}
	if in.WarehouseID == "" {
		return domain.NewValidation("id_almacen", "requerido")
	}
	if !entity.ValidReason(in.Reason) {
		return domain.NewValidation("motivo", "desconocido")
	}
	if in.ReferenceID == "" {
		return domain.NewValidation("referencia", "requerida")
	}
	if in.Delta.IsZero() {
		return domain.NewValidation("delta", "debe ser distinto de cero")
	}
	return valuation.CheckQuantityScale("delta", in.Delta)
}

// ApplyMovement valida tenant, variante y almacén y aplica el movimiento en su propia transacción.
func (l *Ledger) ApplyMovement(ctx context.Context, in MovementInput) (*MovementResult, error) {
	if err := validateMovement(in); err != nil {
		return nil, err
	}
	if err := l.checkOwnership(ctx, in.CompanyID, in.VariantID, in.WarehouseID); err != nil {
		return nil, err
	}
	var res *MovementResult
	err := l.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		r, err := l.ApplyInTx(ctx, repos, in)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.report(res)
	return res, nil
}

// ApplyInTx aplica un movimiento usando los repositorios de la transacción del caller.
// No valida pertenencia al tenant: el caller ya lo hizo.
func (l *Ledger) ApplyInTx(ctx context.Context, repos repository.TxRepos, in MovementInput) (*MovementResult, error) {
	if err := validateMovement(in); err != nil {
		return nil, err
	}
	// Bloquea la fila primero: las repeticiones de la misma referencia quedan serializadas.
	stock, err := repos.Stock.GetForUpdate(ctx, in.CompanyID, in.VariantID, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	existing, err := repos.Movements.FindByReference(ctx, in.CompanyID, in.Reason, in.ReferenceID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.VariantID != in.VariantID || existing.WarehouseID != in.WarehouseID || !existing.Delta.Equal(in.Delta) {
			return nil, fmt.Errorf("referencia %s ya usada con otro movimiento: %w", in.ReferenceID, domain.ErrConflict)
		}
		return &MovementResult{Movement: existing, Applied: false}, nil
	}

	before := stock.Quantity
	next, err := inventory.ApplyDelta(in.VariantID, in.WarehouseID, before, in.Delta)
	if err != nil {
		return nil, err
	}
	now := l.now()
	stock.Quantity = next
	stock.UpdatedAt = now
	if err := repos.Stock.Save(ctx, stock); err != nil {
		return nil, err
	}
	mov := &entity.StockMovement{
		ID:             uuid.New().String(),
		CompanyID:      in.CompanyID,
		VariantID:      in.VariantID,
		WarehouseID:    in.WarehouseID,
		Reason:         in.Reason,
		ReferenceID:    in.ReferenceID,
		Delta:          in.Delta,
		QuantityBefore: before,
		QuantityAfter:  next,
		UserID:         in.UserID,
		Note:           in.Note,
		CreatedAt:      now,
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return &MovementResult{Movement: mov, Applied: true}, nil
}

// ApplyBatchInTx aplica varios movimientos en orden de bloqueo (variante, almacén).
// Los resultados se devuelven en el orden original de inputs.
func (l *Ledger) ApplyBatchInTx(ctx context.Context, repos repository.TxRepos, inputs []MovementInput) ([]*MovementResult, error) {
	order := make([]int, len(inputs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return inputs[order[a]].key().Less(inputs[order[b]].key())
	})
	results := make([]*MovementResult, len(inputs))
	for _, i := range order {
		r, err := l.ApplyInTx(ctx, repos, inputs[i])
		if err != nil {
			return nil, err
		}
		results[i] = r
	}
	return results, nil
}

// Run ejecuta fn en una transacción y la reintenta ante conflictos de bloqueo,
// hasta maxAttempts. Cualquier otro error se devuelve de inmediato.
func (l *Ledger) Run(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepos) error) error {
	var err error
	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		err = l.txRunner.Run(ctx, fn)
		if err == nil || !errors.Is(err, domain.ErrConcurrencyConflict) {
			return err
		}
		l.observer.ConflictRetried()
		log.Warn().Err(err).Int("intento", attempt).Msg("conflicto de concurrencia en ledger")
		if attempt == l.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt*attempt) * 10 * time.Millisecond):
		}
	}
	return fmt.Errorf("ledger: %d intentos: %w", l.maxAttempts, err)
}

// Report registra métricas y log de movimientos ya confirmados.
func (l *Ledger) Report(results ...*MovementResult) {
	l.report(results...)
}

func (l *Ledger) report(results ...*MovementResult) {
	for _, r := range results {
		if r == nil || r.Movement == nil {
			continue
		}
		m := r.Movement
		if !r.Applied {
			l.observer.MovementReplayed(m.Reason)
			continue
		}
		l.observer.MovementApplied(m.Reason)
		log.Info().
			Str("empresa", m.CompanyID).
			Str("motivo", m.Reason).
			Str("referencia", m.ReferenceID).
			Str("variante", m.VariantID).
			Str("almacen", m.WarehouseID).
			Str("delta", m.Delta.String()).
			Msg("movimiento de stock aplicado")
	}
}

// checkOwnership verifica que variante y almacén existan y sean de la empresa.
func (l *Ledger) checkOwnership(ctx context.Context, companyID, variantID, warehouseID string) error {
	if _, err := l.registry.Resolve(ctx, companyID); err != nil {
		return err
	}
	variant, err := l.productRepo.GetVariant(ctx, variantID)
	if err != nil {
		return err
	}
	wh, err := l.warehouseRepo.GetByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	return tenant.Ensure(companyID,
		tenant.Item("variante", variantID, variant),
		tenant.Item("almacén", warehouseID, wh),
	)
}
