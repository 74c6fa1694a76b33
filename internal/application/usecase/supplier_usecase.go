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

// SupplierUseCase casos de uso CRUD para proveedores.
type SupplierUseCase struct {
	registry *tenant.Registry
	repo     repository.SupplierRepository
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(registry *tenant.Registry, repo repository.SupplierRepository) *SupplierUseCase {
	return &SupplierUseCase{registry: registry, repo: repo}
}

// Create crea un proveedor.
func (uc *SupplierUseCase) Create(ctx context.Context, companyID string, in dto.SupplierRequest) (*dto.SupplierResponse, error) {
	if _, err := uc.registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	s := &entity.Supplier{ID: uuid.New().String(), CompanyID: companyID}
	if err := applySupplier(s, in); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return toSupplierResponse(s), nil
}

// GetByID obtiene un proveedor de la empresa.
func (uc *SupplierUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.SupplierResponse, error) {
	s, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return toSupplierResponse(s), nil
}

// Update reemplaza los datos del proveedor.
func (uc *SupplierUseCase) Update(ctx context.Context, companyID, id string, in dto.SupplierRequest) (*dto.SupplierResponse, error) {
	s, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := applySupplier(s, in); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return toSupplierResponse(s), nil
}

// Delete elimina lógicamente un proveedor. Las compras existentes lo siguen referenciando.
func (uc *SupplierUseCase) Delete(ctx context.Context, companyID, id string) error {
	if _, err := uc.get(ctx, companyID, id); err != nil {
		return err
	}
	return uc.repo.SoftDelete(ctx, id)
}

// List proveedores de la empresa.
func (uc *SupplierUseCase) List(ctx context.Context, companyID string, page dto.PageRequest) ([]dto.SupplierResponse, error) {
	if _, err := uc.registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	list, err := uc.repo.ListByCompany(ctx, companyID, repository.ListOptions{Limit: page.Limit, Offset: page.Offset}.Normalize())
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *toSupplierResponse(s))
	}
	return out, nil
}

func (uc *SupplierUseCase) get(ctx context.Context, companyID, id string) (*entity.Supplier, error) {
	if _, err := uc.registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tenant.Ensure(companyID, tenant.Item("proveedor", id, s)); err != nil {
		return nil, err
	}
	return s, nil
}

func applySupplier(s *entity.Supplier, in dto.SupplierRequest) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.NewValidation("nombre", "requerido")
	}
	if in.CreditDays < 0 {
		log.Warn().Str("empresa", s.CompanyID).Int("dias_credito", in.CreditDays).Msg("proveedor con días de crédito negativos")
	}
	s.Name = name
	s.TaxID = strings.TrimSpace(in.TaxID)
	s.ContactName = in.ContactName
	s.Phone = in.Phone
	s.Email = in.Email
	s.Address = in.Address
	s.CreditDays = in.CreditDays
	return nil
}

func toSupplierResponse(s *entity.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:          s.ID,
		Name:        s.Name,
		TaxID:       s.TaxID,
		ContactName: s.ContactName,
		Phone:       s.Phone,
		Email:       s.Email,
		Address:     s.Address,
		CreditDays:  s.CreditDays,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
