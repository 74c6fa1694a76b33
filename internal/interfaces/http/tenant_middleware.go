package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/dto"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
)

// tenantResolver lo implementa *tenant.Registry.
type tenantResolver interface {
	Resolve(ctx context.Context, companyID string) (*entity.Company, error)
}

// RequireActiveTenant verifica que la empresa del token siga existiendo (no eliminada).
// Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 401 si no hay company_id en el contexto.
//   - 403 TENANT_DISABLED si la empresa no existe o fue eliminada.
//   - 503 si falla la consulta.
func RequireActiveTenant(resolver tenantResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID := GetCompanyID(c)
		if companyID == "" {
			return missingCompany(c)
		}
		if _, err := resolver.Resolve(c.UserContext(), companyID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
					Code:    "TENANT_DISABLED",
					Message: "la empresa del token no existe o fue dada de baja",
				})
			}
			log.Error().Err(err).Str("company_id", companyID).Msg("no se pudo resolver la empresa")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "TENANT_CHECK_FAILED",
				Message: "no se pudo verificar la empresa, intente más tarde",
			})
		}
		return c.Next()
	}
}
