package repository

import (
	"context"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
)

// PurchaseRepository persiste Compra y DetalleCompra.
type PurchaseRepository interface {
	// Create inserta cabecera y líneas.
	Create(ctx context.Context, purchase *entity.Purchase) error
	// GetByID carga cabecera y líneas.
	GetByID(ctx context.Context, id string) (*entity.Purchase, error)
	// GetForUpdate igual que GetByID pero bloquea la cabecera.
	GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error)
	UpdateStatus(ctx context.Context, purchase *entity.Purchase) error
	ListByCompany(ctx context.Context, companyID, status string, opts ListOptions) ([]*entity.Purchase, error)
}

// OrderRepository persiste Pedido y DetallePedido.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	UpdateStatus(ctx context.Context, order *entity.Order) error
	ListByCompany(ctx context.Context, companyID, status string, opts ListOptions) ([]*entity.Order, error)
}
