package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/catalog"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/dto"
)

// CatalogHandler categorías, subcategorías, productos, variantes y filtros.
type CatalogHandler struct {
	svc *catalog.Service
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(svc *catalog.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// ── Categorías ────────────────────────────────────────────────────────────────

// CreateCategory godoc
// @Summary      Crear categoría
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CategoryRequest  true  "nombre, descripcion"
// @Success      201   {object}  dto.CategoryResponse
// @Router       /api/categories [post]
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var in dto.CategoryRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.svc.CreateCategory(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	var in dto.CategoryRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.svc.UpdateCategory(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	if err := h.svc.DeleteCategory(c.UserContext(), GetCompanyID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListCategories godoc
// @Summary      Listar categorías
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        incluir_eliminados  query  bool  false  "Incluir borrados lógicos"
// @Success      200  {array}  dto.CategoryResponse
// @Router       /api/categories [get]
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	out, err := h.svc.ListCategories(c.UserContext(), GetCompanyID(c), listOptions(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ── Subcategorías ─────────────────────────────────────────────────────────────

func (h *CatalogHandler) CreateSubcategory(c *fiber.Ctx) error {
	var in dto.CategoryRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.svc.CreateSubcategory(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *CatalogHandler) UpdateSubcategory(c *fiber.Ctx) error {
	var in dto.CategoryRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.svc.UpdateSubcategory(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) DeleteSubcategory(c *fiber.Ctx) error {
	if err := h.svc.DeleteSubcategory(c.UserContext(), GetCompanyID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CatalogHandler) ListSubcategories(c *fiber.Ctx) error {
	out, err := h.svc.ListSubcategories(c.UserContext(), GetCompanyID(c), c.Params("id"), listOptions(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ── Productos ─────────────────────────────────────────────────────────────────

// CreateProduct godoc
// @Summary      Crear producto
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.svc.CreateProduct(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetProduct godoc
// @Summary      Obtener producto con variantes y opciones de filtro
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	out, err := h.svc.GetProduct(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.svc.UpdateProduct(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DeleteProduct borrado lógico del producto y sus variantes.
func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	if err := h.svc.DeleteProduct(c.UserContext(), GetCompanyID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListProducts godoc
// @Summary      Listar productos
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        id_subcategoria     query  string  false  "Filtrar por subcategoría"
// @Param        q                   query  string  false  "Búsqueda por nombre"
// @Param        incluir_eliminados  query  bool    false  "Incluir borrados lógicos"
// @Param        limit               query  int     false  "Límite"  default(20)
// @Param        offset              query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.ProductResponse
// @Router       /api/products [get]
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	var q dto.ProductListQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	q.PageRequest = bindPage(c)
	out, err := h.svc.ListProducts(c.UserContext(), GetCompanyID(c), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ── Variantes ─────────────────────────────────────────────────────────────────

func (h *CatalogHandler) CreateVariant(c *fiber.Ctx) error {
	var in dto.VariantRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.svc.CreateVariant(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *CatalogHandler) UpdateVariant(c *fiber.Ctx) error {
	var in dto.VariantRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.svc.UpdateVariant(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) DeleteVariant(c *fiber.Ctx) error {
	if err := h.svc.DeleteVariant(c.UserContext(), GetCompanyID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CatalogHandler) ListVariants(c *fiber.Ctx) error {
	out, err := h.svc.ListVariants(c.UserContext(), GetCompanyID(c), c.Params("id"), listOptions(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ── Filtros ───────────────────────────────────────────────────────────────────

// CreateFilter godoc
// @Summary      Crear filtro en una subcategoría
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID de la subcategoría"
// @Param        body  body  dto.FilterRequest  true  "nombre, tipo_dato, valores_permitidos"
// @Success      201   {object}  dto.FilterResponse
// @Router       /api/subcategories/{id}/filters [post]
func (h *CatalogHandler) CreateFilter(c *fiber.Ctx) error {
	var in dto.FilterRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.svc.CreateFilter(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *CatalogHandler) UpdateFilter(c *fiber.Ctx) error {
	var in dto.FilterRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.svc.UpdateFilter(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DeleteFilter borra el filtro con sus opciones y asignaciones.
func (h *CatalogHandler) DeleteFilter(c *fiber.Ctx) error {
	if err := h.svc.DeleteFilter(c.UserContext(), GetCompanyID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CatalogHandler) ListFilters(c *fiber.Ctx) error {
	out, err := h.svc.ListFilters(c.UserContext(), GetCompanyID(c), c.Params("id"), listOptions(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) CreateOption(c *fiber.Ctx) error {
	var in dto.FilterOptionRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.svc.CreateOption(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *CatalogHandler) DeleteOption(c *fiber.Ctx) error {
	if err := h.svc.DeleteOption(c.UserContext(), GetCompanyID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CatalogHandler) ListOptions(c *fiber.Ctx) error {
	out, err := h.svc.ListOptions(c.UserContext(), GetCompanyID(c), c.Params("id"), listOptions(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AttachOption asigna una opción de filtro al producto. Repetir es un no-op.
func (h *CatalogHandler) AttachOption(c *fiber.Ctx) error {
	if err := h.svc.AttachOption(c.UserContext(), GetCompanyID(c), c.Params("id"), c.Params("optionId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CatalogHandler) DetachOption(c *fiber.Ctx) error {
	if err := h.svc.DetachOption(c.UserContext(), GetCompanyID(c), c.Params("id"), c.Params("optionId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
