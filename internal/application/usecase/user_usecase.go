package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/dto"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/tenant"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
)

// UserUseCase gestión de usuarios dentro de una empresa.
type UserUseCase struct {
	registry *tenant.Registry
	repo     repository.UserRepository
}

// NewUserUseCase construye el caso de uso.
func NewUserUseCase(registry *tenant.Registry, repo repository.UserRepository) *UserUseCase {
	return &UserUseCase{registry: registry, repo: repo}
}

// Create crea un usuario en la empresa. El email es único en todo el sistema.
func (uc *UserUseCase) Create(ctx context.Context, companyID string, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if _, err := uc.registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	if !entity.ValidRole(in.Role) {
		return nil, domain.NewValidation("rol", "rol no soportado")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	existing, err := uc.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(in.Name),
		Role:         in.Role,
		Active:       true,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// GetByID obtiene un usuario de la empresa.
func (uc *UserUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.UserResponse, error) {
	user, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// Update cambia nombre, rol o estado activo.
func (uc *UserUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Role != nil {
		if !entity.ValidRole(*in.Role) {
			return nil, domain.NewValidation("rol", "rol no soportado")
		}
		user.Role = *in.Role
	}
	if in.Active != nil {
		user.Active = *in.Active
	}
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// Delete elimina lógicamente un usuario.
func (uc *UserUseCase) Delete(ctx context.Context, companyID, id string) error {
	if _, err := uc.get(ctx, companyID, id); err != nil {
		return err
	}
	return uc.repo.SoftDelete(ctx, id)
}

// List usuarios de la empresa.
func (uc *UserUseCase) List(ctx context.Context, companyID string, page dto.PageRequest) ([]dto.UserResponse, error) {
	if _, err := uc.registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	list, err := uc.repo.ListByCompany(ctx, companyID, repository.ListOptions{Limit: page.Limit, Offset: page.Offset}.Normalize())
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, *toUserResponse(u))
	}
	return out, nil
}

func (uc *UserUseCase) get(ctx context.Context, companyID, id string) (*entity.User, error) {
	if _, err := uc.registry.Resolve(ctx, companyID); err != nil {
		return nil, err
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tenant.Ensure(companyID, tenant.Item("usuario", id, user)); err != nil {
		return nil, err
	}
	return user, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        u.ID,
		CompanyID: u.CompanyID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
