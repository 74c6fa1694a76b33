package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/dto"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/tenant"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
)

// WarehouseUseCase casos de uso CRUD para almacenes.
type WarehouseUseCase struct {
	registry *tenant.Registry
	repo     repository.WarehouseRepository
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(registry *tenant.Registry, repo repository.WarehouseRepository) *WarehouseUseCase {
	return &WarehouseUseCase{registry: registry, repo: repo}
}

// Create crea un nuevo almacén. Un segundo almacén principal se permite y se registra como advertencia.
func (uc *WarehouseUseCase) Create(ctx context.Context, companyID string, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	if _, err := uc.registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidation("nombre", "requerido")
	}
	warehouse := &entity.Warehouse{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      name,
		Address:   in.Address,
		IsPrimary: in.IsPrimary,
	}
	if warehouse.IsPrimary {
		uc.warnPrimary(ctx, companyID)
	}
	if err := uc.repo.Create(ctx, warehouse); err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// GetByID obtiene un almacén de la empresa.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// Update actualiza un almacén.
func (uc *WarehouseUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.NewValidation("nombre", "requerido")
		}
		warehouse.Name = name
	}
	if in.Address != nil {
		warehouse.Address = *in.Address
	}
	if in.IsPrimary != nil {
		if *in.IsPrimary && !warehouse.IsPrimary {
			uc.warnPrimary(ctx, companyID)
		}
		warehouse.IsPrimary = *in.IsPrimary
	}
	if err := uc.repo.Update(ctx, warehouse); err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// Delete elimina lógicamente un almacén. Sus movimientos históricos se conservan.
func (uc *WarehouseUseCase) Delete(ctx context.Context, companyID, id string) error {
	if _, err := uc.get(ctx, companyID, id); err != nil {
		return err
	}
	return uc.repo.SoftDelete(ctx, id)
}

// List lista almacenes de la empresa.
func (uc *WarehouseUseCase) List(ctx context.Context, companyID string, page dto.PageRequest) (*dto.WarehouseListResponse, error) {
	if _, err := uc.registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	opts := repository.ListOptions{Limit: page.Limit, Offset: page.Offset}.Normalize()
	list, err := uc.repo.ListByCompany(ctx, companyID, opts)
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return &dto.WarehouseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: opts.Limit, Offset: opts.Offset},
	}, nil
}

func (uc *WarehouseUseCase) get(ctx context.Context, companyID, id string) (*entity.Warehouse, error) {
	if _, err := uc.registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	warehouse, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tenant.Ensure(companyID, tenant.Item("almacén", id, warehouse)); err != nil {
		return nil, err
	}
	return warehouse, nil
}

func (uc *WarehouseUseCase) warnPrimary(ctx context.Context, companyID string) {
	n, err := uc.repo.CountPrimary(ctx, companyID)
	if err != nil {
		log.Warn().Err(err).Str("empresa", companyID).Msg("no se pudo contar almacenes principales")
		return
	}
	if n > 0 {
		log.Warn().Str("empresa", companyID).Int("principales", n+1).Msg("la empresa tendrá más de un almacén principal")
	}
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	if w == nil {
		return nil
	}
	return &dto.WarehouseResponse{
		ID:        w.ID,
		Name:      w.Name,
		Address:   w.Address,
		IsPrimary: w.IsPrimary,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
