// Package purchasing gestiona el ciclo de vida de las compras: Pendiente -> Recibido | Cancelado.
// Solo la recepción mueve stock, y lo hace a través del ledger.
package purchasing

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/dto"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/inventory"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/tenant"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	domaininv "github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/inventory"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/valuation"
)

const documentKind = "compra"

// DocumentObserver recibe las transiciones de estado (métricas).
type DocumentObserver interface {
	DocumentTransition(kind, status string)
}

// PDFRenderer genera el PDF de una orden de compra.
type PDFRenderer interface {
	RenderPurchaseOrder(doc dto.PurchaseDocument) ([]byte, error)
}

// Deps dependencias del servicio de compras.
type Deps struct {
	Ledger     *inventory.Ledger
	Registry   *tenant.Registry
	Companies  repository.CompanyRepository
	Suppliers  repository.SupplierRepository
	Warehouses repository.WarehouseRepository
	Products   repository.ProductRepository
	Currencies repository.CurrencyRepository
	Purchases  repository.PurchaseRepository
	PDF        PDFRenderer
	Observer   DocumentObserver
}

// Service casos de uso de compras.
type Service struct {
	Deps
	now func() time.Time
}

// NewService construye el servicio de compras.
func NewService(deps Deps) *Service {
	return &Service{Deps: deps, now: time.Now}
}

// CreatePurchase registra una compra en estado Pendiente. No toca el stock.
func (s *Service) CreatePurchase(ctx context.Context, companyID, userID string, in dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	if _, err := s.Registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	if !entity.ValidPaymentMethod(in.PaymentMethod) {
		return nil, domain.NewValidation("metodo_pago", "no soportado")
	}
	if len(in.Lines) == 0 {
		return nil, domain.NewValidation("detalles", "la compra necesita al menos una línea")
	}
	supplier, err := s.Suppliers.GetByID(ctx, in.SupplierID)
	if err != nil {
		return nil, err
	}
	wh, err := s.Warehouses.GetByID(ctx, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if err := tenant.Ensure(companyID,
		tenant.Item("proveedor", in.SupplierID, supplier),
		tenant.Item("almacén", in.WarehouseID, wh),
	); err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(in.CurrencyCode))
	cur, err := s.Currencies.GetByCode(ctx, companyID, code)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, domain.NewNotFound("divisa", code)
	}

	p := &entity.Purchase{
		ID:            uuid.New().String(),
		CompanyID:     companyID,
		SupplierID:    supplier.ID,
		WarehouseID:   wh.ID,
		UserID:        userID,
		Status:        entity.PurchaseStatusPending,
		PaymentMethod: in.PaymentMethod,
		CurrencyCode:  cur.Code,
		Notes:         strings.TrimSpace(in.Notes),
	}
	lines := make([]valuation.Line, 0, len(in.Lines))
	for i, l := range in.Lines {
		if err := s.checkLine(ctx, companyID, i, l); err != nil {
			return nil, err
		}
		sub := valuation.LineSubtotal(l.Quantity, l.UnitCost)
		p.Lines = append(p.Lines, entity.PurchaseLine{
			ID:         uuid.New().String(),
			PurchaseID: p.ID,
			CompanyID:  companyID,
			VariantID:  l.VariantID,
			Quantity:   l.Quantity,
			UnitCost:   l.UnitCost,
			Subtotal:   sub,
		})
		lines = append(lines, valuation.Line{Quantity: l.Quantity, UnitPrice: l.UnitCost})
	}
	p.Total = valuation.DocumentTotal(lines)

	err = s.Ledger.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		return repos.Purchases.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	s.transition(p, "compra registrada")
	return toResponse(p), nil
}

func (s *Service) checkLine(ctx context.Context, companyID string, i int, l dto.PurchaseLineRequest) error {
	if !l.Quantity.IsPositive() {
		return domain.NewValidation(lineField(i, "cantidad"), "debe ser mayor que cero")
	}
	if err := valuation.CheckQuantityScale(lineField(i, "cantidad"), l.Quantity); err != nil {
		return err
	}
	if l.UnitCost.IsNegative() {
		return domain.NewValidation(lineField(i, "precio_costo_historico"), "no puede ser negativo")
	}
	if err := valuation.CheckPrecision(lineField(i, "precio_costo_historico"), l.UnitCost); err != nil {
		return err
	}
	v, err := s.Products.GetVariant(ctx, l.VariantID)
	if err != nil {
		return err
	}
	return tenant.Ensure(companyID, tenant.Item("variante", l.VariantID, v))
}

// ReceivePurchase marca la compra como Recibido y suma cada línea al almacén destino.
// Todo ocurre en una transacción: si un movimiento falla la compra sigue Pendiente.
func (s *Service) ReceivePurchase(ctx context.Context, companyID, userID, purchaseID string) (*dto.PurchaseResponse, error) {
	if _, err := s.Registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	var (
		received *entity.Purchase
		results  []*inventory.MovementResult
	)
	err := s.Ledger.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		p, err := s.lockPurchase(ctx, repos, companyID, purchaseID)
		if err != nil {
			return err
		}
		if p.Status != entity.PurchaseStatusPending {
			return &domain.StateError{Document: documentKind, From: p.Status, To: entity.PurchaseStatusReceived}
		}
		inputs := make([]inventory.MovementInput, 0, len(p.Lines))
		for _, l := range p.Lines {
			inputs = append(inputs, inventory.MovementInput{
				CompanyID:   companyID,
				VariantID:   l.VariantID,
				WarehouseID: p.WarehouseID,
				Delta:       l.Quantity,
				Reason:      entity.ReasonPurchaseReceipt,
				ReferenceID: l.ID,
				UserID:      userID,
				Note:        "recepción de compra " + p.ID,
			})
		}
		res, err := s.Ledger.ApplyBatchInTx(ctx, repos, inputs)
		if err != nil {
			return err
		}
		for i, l := range p.Lines {
			if !res[i].Applied {
				continue
			}
			if err := updateAverageCost(ctx, repos, l, res[i].Movement.QuantityBefore); err != nil {
				return err
			}
		}
		now := s.now()
		p.Status = entity.PurchaseStatusReceived
		p.ReceivedAt = &now
		if err := repos.Purchases.UpdateStatus(ctx, p); err != nil {
			return err
		}
		received, results = p, res
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Ledger.Report(results...)
	s.transition(received, "compra recibida")
	return toResponse(received), nil
}

// updateAverageCost recalcula el costo promedio ponderado de la variante con la entrada.
func updateAverageCost(ctx context.Context, repos repository.TxRepos, l entity.PurchaseLine, stockBefore decimal.Decimal) error {
	v, err := repos.Products.GetVariant(ctx, l.VariantID)
	if err != nil {
		return err
	}
	if v == nil {
		return domain.NewNotFound("variante", l.VariantID)
	}
	cost := domaininv.CostCalculator(stockBefore, v.AvgCost, l.Quantity, l.UnitCost)
	return repos.Products.UpdateVariantCost(ctx, v.ID, cost)
}

// CancelPurchase pasa la compra de Pendiente a Cancelado sin tocar el stock.
func (s *Service) CancelPurchase(ctx context.Context, companyID, purchaseID string) (*dto.PurchaseResponse, error) {
	if _, err := s.Registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	var cancelled *entity.Purchase
	err := s.Ledger.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		p, err := s.lockPurchase(ctx, repos, companyID, purchaseID)
		if err != nil {
			return err
		}
		if p.Status != entity.PurchaseStatusPending {
			return &domain.StateError{Document: documentKind, From: p.Status, To: entity.PurchaseStatusCancelled}
		}
		now := s.now()
		p.Status = entity.PurchaseStatusCancelled
		p.CancelledAt = &now
		if err := repos.Purchases.UpdateStatus(ctx, p); err != nil {
			return err
		}
		cancelled = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.transition(cancelled, "compra cancelada")
	return toResponse(cancelled), nil
}

func (s *Service) lockPurchase(ctx context.Context, repos repository.TxRepos, companyID, id string) (*entity.Purchase, error) {
	p, err := repos.Purchases.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tenant.Ensure(companyID, tenant.Item(documentKind, id, p)); err != nil {
		return nil, err
	}
	return p, nil
}

// GetPurchase devuelve la compra con sus líneas.
func (s *Service) GetPurchase(ctx context.Context, companyID, id string) (*dto.PurchaseResponse, error) {
	p, err := s.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return toResponse(p), nil
}

func (s *Service) load(ctx context.Context, companyID, id string) (*entity.Purchase, error) {
	if _, err := s.Registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	p, err := s.Purchases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tenant.Ensure(companyID, tenant.Item(documentKind, id, p)); err != nil {
		return nil, err
	}
	return p, nil
}

// ListPurchases lista compras de la empresa, opcionalmente por estado.
func (s *Service) ListPurchases(ctx context.Context, companyID, status string, opts repository.ListOptions) ([]dto.PurchaseResponse, error) {
	if _, err := s.Registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	switch status {
	case "", entity.PurchaseStatusPending, entity.PurchaseStatusReceived, entity.PurchaseStatusCancelled:
	default:
		return nil, domain.NewValidation("estado", "desconocido")
	}
	list, err := s.Purchases.ListByCompany(ctx, companyID, status, opts.Normalize())
	if err != nil {
		return nil, err
	}
	out := make([]dto.PurchaseResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *toResponse(p))
	}
	return out, nil
}

func (s *Service) transition(p *entity.Purchase, msg string) {
	if s.Observer != nil {
		s.Observer.DocumentTransition(documentKind, p.Status)
	}
	log.Info().
		Str("empresa", p.CompanyID).
		Str("documento", p.ID).
		Str("estado", p.Status).
		Str("total", p.Total.String()).
		Msg(msg)
}

func lineField(i int, field string) string {
	return "detalles[" + strconv.Itoa(i) + "]." + field
}

func toResponse(p *entity.Purchase) *dto.PurchaseResponse {
	resp := &dto.PurchaseResponse{
		ID:            p.ID,
		SupplierID:    p.SupplierID,
		WarehouseID:   p.WarehouseID,
		UserID:        p.UserID,
		Status:        p.Status,
		PaymentMethod: p.PaymentMethod,
		CurrencyCode:  p.CurrencyCode,
		Total:         p.Total,
		Notes:         p.Notes,
		ReceivedAt:    p.ReceivedAt,
		CancelledAt:   p.CancelledAt,
		CreatedAt:     p.CreatedAt,
		Lines:         make([]dto.PurchaseLineResponse, 0, len(p.Lines)),
	}
	lines := make([]valuation.Line, 0, len(p.Lines))
	for _, l := range p.Lines {
		resp.Lines = append(resp.Lines, dto.PurchaseLineResponse{
			ID: l.ID, VariantID: l.VariantID, Quantity: l.Quantity, UnitCost: l.UnitCost, Subtotal: l.Subtotal,
		})
		lines = append(lines, valuation.Line{Quantity: l.Quantity, UnitPrice: l.UnitCost})
	}
	resp.TotalMatches = valuation.VerifyTotal(p.Total, lines)
	return resp
}
