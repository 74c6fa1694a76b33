// Package sales gestiona pedidos de venta: Pendiente -> Completado | Cancelado.
// Completar un pedido descuenta todas sus líneas del almacén origen o ninguna.
package sales

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/dto"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/inventory"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/tenant"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/valuation"
)

const documentKind = "pedido"

// DocumentObserver recibe las transiciones de estado (métricas).
type DocumentObserver interface {
	DocumentTransition(kind, status string)
}

// Deps dependencias del servicio de pedidos.
type Deps struct {
	Ledger     *inventory.Ledger
	Registry   *tenant.Registry
	Warehouses repository.WarehouseRepository
	Products   repository.ProductRepository
	Currencies repository.CurrencyRepository
	Orders     repository.OrderRepository
	Observer   DocumentObserver
}

// Service casos de uso de pedidos.
type Service struct {
	Deps
	now func() time.Time
}

// NewService construye el servicio de pedidos.
func NewService(deps Deps) *Service {
	return &Service{Deps: deps, now: time.Now}
}

// productSnapshot foto del producto guardada en detalles_producto.
type productSnapshot struct {
	SKU         string `json:"sku"`
	Product     string `json:"producto"`
	Variant     string `json:"variante"`
	Description string `json:"descripcion,omitempty"`
	ListPrice   string `json:"precio_lista"`
}

// CreateOrder registra un pedido Pendiente. No reserva stock.
func (s *Service) CreateOrder(ctx context.Context, companyID, userID string, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if _, err := s.Registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	if len(in.Lines) == 0 {
		return nil, domain.NewValidation("detalles", "el pedido necesita al menos una línea")
	}
	wh, err := s.Warehouses.GetByID(ctx, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if err := tenant.Ensure(companyID, tenant.Item("almacén", in.WarehouseID, wh)); err != nil {
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

	o := &entity.Order{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		WarehouseID:  wh.ID,
		UserID:       userID,
		CustomerName: strings.TrimSpace(in.CustomerName),
		Status:       entity.OrderStatusPending,
		CurrencyCode: cur.Code,
		Notes:        strings.TrimSpace(in.Notes),
	}
	lines := make([]valuation.Line, 0, len(in.Lines))
	for i, l := range in.Lines {
		details, err := s.prepareLine(ctx, companyID, i, l)
		if err != nil {
			return nil, err
		}
		o.Lines = append(o.Lines, entity.OrderLine{
			ID:        uuid.New().String(),
			OrderID:   o.ID,
			CompanyID: companyID,
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  valuation.LineSubtotal(l.Quantity, l.UnitPrice),
			Details:   details,
		})
		lines = append(lines, valuation.Line{Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	o.Total = valuation.DocumentTotal(lines)

	err = s.Ledger.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		return repos.Orders.Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	s.transition(o, "pedido registrado")
	return toResponse(o), nil
}

// prepareLine valida la línea y devuelve los detalles del producto (los enviados o una foto del catálogo).
func (s *Service) prepareLine(ctx context.Context, companyID string, i int, l dto.OrderLineRequest) (json.RawMessage, error) {
	field := func(name string) string { return "detalles[" + strconv.Itoa(i) + "]." + name }
	if !l.Quantity.IsPositive() {
		return nil, domain.NewValidation(field("cantidad"), "debe ser mayor que cero")
	}
	if err := valuation.CheckQuantityScale(field("cantidad"), l.Quantity); err != nil {
		return nil, err
	}
	if l.UnitPrice.IsNegative() {
		return nil, domain.NewValidation(field("precio_unitario"), "no puede ser negativo")
	}
	if err := valuation.CheckPrecision(field("precio_unitario"), l.UnitPrice); err != nil {
		return nil, err
	}
	v, err := s.Products.GetVariant(ctx, l.VariantID)
	if err != nil {
		return nil, err
	}
	if err := tenant.Ensure(companyID, tenant.Item("variante", l.VariantID, v)); err != nil {
		return nil, err
	}
	if len(l.Details) > 0 {
		if !json.Valid(l.Details) {
			return nil, domain.NewValidation(field("detalles_producto"), "JSON inválido")
		}
		return l.Details, nil
	}
	snap := productSnapshot{SKU: v.SKU, Variant: v.Name, ListPrice: v.Price.StringFixed(2)}
	prod, err := s.Products.GetByID(ctx, v.ProductID)
	if err != nil {
		return nil, err
	}
	if prod != nil {
		snap.Product = prod.Name
		snap.Description = prod.Description
		if v.Price.IsZero() {
			snap.ListPrice = prod.Price.StringFixed(2)
		}
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("serializar detalles de producto: %w", err)
	}
	return raw, nil
}

// FulfillOrder descuenta las líneas del almacén origen y pasa el pedido a Completado.
// Ante cualquier faltante devuelve InsufficientStockError y el pedido queda Pendiente sin cambios de stock.
func (s *Service) FulfillOrder(ctx context.Context, companyID, userID, orderID string) (*dto.OrderResponse, error) {
	if _, err := s.Registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	var (
		done    *entity.Order
		results []*inventory.MovementResult
	)
	err := s.Ledger.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		o, err := s.lockOrder(ctx, repos, companyID, orderID)
		if err != nil {
			return err
		}
		if o.Status != entity.OrderStatusPending {
			return &domain.StateError{Document: documentKind, From: o.Status, To: entity.OrderStatusCompleted}
		}
		inputs := make([]inventory.MovementInput, 0, len(o.Lines))
		for _, l := range o.Lines {
			inputs = append(inputs, inventory.MovementInput{
				CompanyID:   companyID,
				VariantID:   l.VariantID,
				WarehouseID: o.WarehouseID,
				Delta:       l.Quantity.Neg(),
				Reason:      entity.ReasonOrderFulfillment,
				ReferenceID: l.ID,
				UserID:      userID,
				Note:        "despacho de pedido " + o.ID,
			})
		}
		res, err := s.Ledger.ApplyBatchInTx(ctx, repos, inputs)
		if err != nil {
			return err
		}
		now := s.now()
		o.Status = entity.OrderStatusCompleted
		o.CompletedAt = &now
		if err := repos.Orders.UpdateStatus(ctx, o); err != nil {
			return err
		}
		done, results = o, res
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Ledger.Report(results...)
	s.transition(done, "pedido completado")
	return toResponse(done), nil
}

// CancelOrder pasa el pedido de Pendiente a Cancelado. No mueve stock.
func (s *Service) CancelOrder(ctx context.Context, companyID, orderID string) (*dto.OrderResponse, error) {
	if _, err := s.Registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	var cancelled *entity.Order
	err := s.Ledger.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		o, err := s.lockOrder(ctx, repos, companyID, orderID)
		if err != nil {
			return err
		}
		if o.Status != entity.OrderStatusPending {
			return &domain.StateError{Document: documentKind, From: o.Status, To: entity.OrderStatusCancelled}
		}
		now := s.now()
		o.Status = entity.OrderStatusCancelled
		o.CancelledAt = &now
		if err := repos.Orders.UpdateStatus(ctx, o); err != nil {
			return err
		}
		cancelled = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.transition(cancelled, "pedido cancelado")
	return toResponse(cancelled), nil
}

func (s *Service) lockOrder(ctx context.Context, repos repository.TxRepos, companyID, id string) (*entity.Order, error) {
	o, err := repos.Orders.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tenant.Ensure(companyID, tenant.Item(documentKind, id, o)); err != nil {
		return nil, err
	}
	return o, nil
}

// GetOrder devuelve el pedido con sus líneas.
func (s *Service) GetOrder(ctx context.Context, companyID, id string) (*dto.OrderResponse, error) {
	if _, err := s.Registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	o, err := s.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tenant.Ensure(companyID, tenant.Item(documentKind, id, o)); err != nil {
		return nil, err
	}
	return toResponse(o), nil
}

// ListOrders lista pedidos de la empresa, opcionalmente por estado.
func (s *Service) ListOrders(ctx context.Context, companyID, status string, opts repository.ListOptions) ([]dto.OrderResponse, error) {
	if _, err := s.Registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	switch status {
	case "", entity.OrderStatusPending, entity.OrderStatusCompleted, entity.OrderStatusCancelled:
	default:
		return nil, domain.NewValidation("estado", "desconocido")
	}
	list, err := s.Orders.ListByCompany(ctx, companyID, status, opts.Normalize())
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, *toResponse(o))
	}
	return out, nil
}

func (s *Service) transition(o *entity.Order, msg string) {
	if s.Observer != nil {
		s.Observer.DocumentTransition(documentKind, o.Status)
	}
	log.Info().
		Str("empresa", o.CompanyID).
		Str("documento", o.ID).
		Str("estado", o.Status).
		Str("total", o.Total.String()).
		Msg(msg)
}

func toResponse(o *entity.Order) *dto.OrderResponse {
	resp := &dto.OrderResponse{
		ID:           o.ID,
		WarehouseID:  o.WarehouseID,
		UserID:       o.UserID,
		CustomerName: o.CustomerName,
		Status:       o.Status,
		CurrencyCode: o.CurrencyCode,
		Total:        o.Total,
		Notes:        o.Notes,
		CompletedAt:  o.CompletedAt,
		CancelledAt:  o.CancelledAt,
		CreatedAt:    o.CreatedAt,
		Lines:        make([]dto.OrderLineResponse, 0, len(o.Lines)),
	}
	lines := make([]valuation.Line, 0, len(o.Lines))
	for _, l := range o.Lines {
		resp.Lines = append(resp.Lines, dto.OrderLineResponse{
			ID: l.ID, VariantID: l.VariantID, Quantity: l.Quantity,
			UnitPrice: l.UnitPrice, Subtotal: l.Subtotal, Details: l.Details,
		})
		lines = append(lines, valuation.Line{Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	resp.TotalMatches = valuation.VerifyTotal(o.Total, lines)
	return resp
}
