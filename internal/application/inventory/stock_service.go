package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/dto"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/tenant"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/valuation"
)

// StockService casos de uso de stock sobre el Ledger: ajustes, transferencias y consultas.
type StockService struct {
	ledger        *Ledger
	registry      *tenant.Registry
	stockRepo     repository.StockRepository
	movementRepo  repository.StockMovementRepository
	reportRepo    repository.StockReportRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	exporter      StockExporter
}

// NewStockService construye el servicio. exporter puede ser nil (exportación deshabilitada).
func NewStockService(
	ledger *Ledger,
	registry *tenant.Registry,
	stockRepo repository.StockRepository,
	movementRepo repository.StockMovementRepository,
	reportRepo repository.StockReportRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	exporter StockExporter,
) *StockService {
	return &StockService{
		ledger:        ledger,
		registry:      registry,
		stockRepo:     stockRepo,
		movementRepo:  movementRepo,
		reportRepo:    reportRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		exporter:      exporter,
	}
}

// AdjustStock registra un ajuste manual (delta positivo o negativo).
// Si no se envía referencia se genera una nueva, por lo que el ajuste no es idempotente entre llamadas.
func (s *StockService) AdjustStock(ctx context.Context, companyID, userID string, in dto.AdjustStockRequest) (*dto.MovementResponse, error) {
	ref := in.ReferenceID
	if ref == "" {
		ref = uuid.New().String()
	}
	res, err := s.ledger.ApplyMovement(ctx, MovementInput{
		CompanyID:   companyID,
		VariantID:   in.VariantID,
		WarehouseID: in.WarehouseID,
		Delta:       in.Delta,
		Reason:      entity.ReasonManualAdjustment,
		ReferenceID: ref,
		UserID:      userID,
		Note:        in.Note,
	})
	if err != nil {
		return nil, err
	}
	return toMovementResponse(res), nil
}

// TransferStock mueve cantidad entre dos almacenes de la empresa en una sola transacción:
// salida del origen y entrada al destino, o ninguna.
func (s *StockService) TransferStock(ctx context.Context, companyID, userID string, in dto.TransferStockRequest) (*dto.TransferResponse, error) {
	if in.FromWarehouseID == in.ToWarehouseID {
		return nil, domain.NewValidation("id_almacen_destino", "debe ser distinto del origen")
	}
	if !in.Quantity.IsPositive() {
		return nil, domain.NewValidation("cantidad", "debe ser mayor que cero")
	}
	if err := valuation.CheckQuantityScale("cantidad", in.Quantity); err != nil {
		return nil, err
	}
	if err := s.ledger.checkOwnership(ctx, companyID, in.VariantID, in.FromWarehouseID); err != nil {
		return nil, err
	}
	to, err := s.warehouseRepo.GetByID(ctx, in.ToWarehouseID)
	if err != nil {
		return nil, err
	}
	if err := tenant.Ensure(companyID, tenant.Item("almacén", in.ToWarehouseID, to)); err != nil {
		return nil, err
	}

	transferID := in.ReferenceID
	if transferID == "" {
		transferID = uuid.New().String()
	}
	note := in.Note
	if note == "" {
		note = fmt.Sprintf("transferencia %s", transferID)
	}
	inputs := []MovementInput{
		{
			CompanyID: companyID, VariantID: in.VariantID, WarehouseID: in.FromWarehouseID,
			Delta: in.Quantity.Neg(), Reason: entity.ReasonManualAdjustment,
			ReferenceID: transferID + ":salida", UserID: userID, Note: note,
		},
		{
			CompanyID: companyID, VariantID: in.VariantID, WarehouseID: in.ToWarehouseID,
			Delta: in.Quantity, Reason: entity.ReasonManualAdjustment,
			ReferenceID: transferID + ":entrada", UserID: userID, Note: note,
		},
	}
	var results []*MovementResult
	err = s.ledger.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		r, err := s.ledger.ApplyBatchInTx(ctx, repos, inputs)
		if err != nil {
			return err
		}
		results = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.ledger.Report(results...)
	return &dto.TransferResponse{
		TransferID: transferID,
		Out:        *toMovementResponse(results[0]),
		In:         *toMovementResponse(results[1]),
	}, nil
}

// GetStockLevel devuelve el stock actual de la variante en el almacén (cero si nunca hubo movimientos).
func (s *StockService) GetStockLevel(ctx context.Context, companyID, variantID, warehouseID string) (*dto.StockLevelResponse, error) {
	if variantID == "" || warehouseID == "" {
		return nil, domain.NewValidation("variante_id/almacen_id", "requeridos")
	}
	if err := s.ledger.checkOwnership(ctx, companyID, variantID, warehouseID); err != nil {
		return nil, err
	}
	st, err := s.stockRepo.Get(ctx, companyID, variantID, warehouseID)
	if err != nil {
		return nil, err
	}
	resp := &dto.StockLevelResponse{VariantID: variantID, WarehouseID: warehouseID, Quantity: decimal.Zero}
	if st != nil {
		resp.Quantity = st.Quantity
		resp.UpdatedAt = st.UpdatedAt
	}
	return resp, nil
}

// ListStockByWarehouse lista el stock de todas las variantes en un almacén.
func (s *StockService) ListStockByWarehouse(ctx context.Context, companyID, warehouseID string, opts repository.ListOptions) ([]repository.StockLevelItem, error) {
	if err := s.checkWarehouse(ctx, companyID, warehouseID); err != nil {
		return nil, err
	}
	return s.reportRepo.ListByWarehouse(ctx, companyID, warehouseID, opts.Normalize())
}

// LowStock variantes bajo stock_minimo. Sin almacén se compara el stock agregado de la empresa.
func (s *StockService) LowStock(ctx context.Context, companyID, warehouseID string) ([]dto.LowStockItem, error) {
	if warehouseID != "" {
		if err := s.checkWarehouse(ctx, companyID, warehouseID); err != nil {
			return nil, err
		}
	} else if _, err := s.registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	items, err := s.reportRepo.BelowMinimum(ctx, companyID, warehouseID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LowStockItem, 0, len(items))
	for _, it := range items {
		missing := it.MinStock.Sub(it.Quantity)
		if !missing.IsPositive() {
			continue
		}
		out = append(out, dto.LowStockItem{
			VariantID:   it.VariantID,
			SKU:         it.SKU,
			ProductName: it.ProductName,
			VariantName: it.VariantName,
			WarehouseID: it.WarehouseID,
			Quantity:    it.Quantity,
			MinStock:    it.MinStock,
			Missing:     missing,
		})
	}
	return out, nil
}

// ListMovements historial del ledger para una variante (auditoría).
func (s *StockService) ListMovements(ctx context.Context, companyID, variantID string, from, to *time.Time, opts repository.ListOptions) ([]dto.MovementResponse, error) {
	if _, err := s.registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	variant, err := s.productRepo.GetVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if err := tenant.Ensure(companyID, tenant.Item("variante", variantID, variant)); err != nil {
		return nil, err
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, domain.NewValidation("desde", "posterior a hasta")
	}
	movs, err := s.movementRepo.ListByVariant(ctx, companyID, variantID, from, to, opts.Normalize())
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, *toMovementResponse(&MovementResult{Movement: m, Applied: true}))
	}
	return out, nil
}

// ExportStockXLSX genera el libro Excel con el stock del almacén.
func (s *StockService) ExportStockXLSX(ctx context.Context, companyID, warehouseID string) ([]byte, error) {
	if s.exporter == nil {
		return nil, fmt.Errorf("exportación no configurada")
	}
	wh, err := s.warehouseRepo.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if err := tenant.Ensure(companyID, tenant.Item("almacén", warehouseID, wh)); err != nil {
		return nil, err
	}
	var all []repository.StockLevelItem
	opts := repository.ListOptions{Limit: 100}
	for {
		page, err := s.reportRepo.ListByWarehouse(ctx, companyID, warehouseID, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < opts.Limit {
			break
		}
		opts.Offset += opts.Limit
	}
	data, err := s.exporter.ExportStock(wh.Name, all)
	if err != nil {
		return nil, fmt.Errorf("exportar stock: %w", err)
	}
	log.Info().Str("empresa", companyID).Str("almacen", warehouseID).Int("filas", len(all)).Msg("stock exportado")
	return data, nil
}

func (s *StockService) checkWarehouse(ctx context.Context, companyID, warehouseID string) error {
	if _, err := s.registry.Resolve(ctx, companyID); err != nil {
		return err
	}
	wh, err := s.warehouseRepo.GetByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	return tenant.Ensure(companyID, tenant.Item("almacén", warehouseID, wh))
}

func toMovementResponse(r *MovementResult) *dto.MovementResponse {
	m := r.Movement
	return &dto.MovementResponse{
		ID:             m.ID,
		VariantID:      m.VariantID,
		WarehouseID:    m.WarehouseID,
		Reason:         m.Reason,
		ReferenceID:    m.ReferenceID,
		Delta:          m.Delta,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		Applied:        r.Applied,
		CreatedAt:      m.CreatedAt,
	}
}
