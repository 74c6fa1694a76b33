package http

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/dto"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/inventory"
)

// InventoryHandler ajustes, transferencias y consultas de stock (protegido).
type InventoryHandler struct {
	svc *inventory.StockService
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(svc *inventory.StockService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// Adjust godoc
// @Summary      Ajuste manual de stock
// @Description  delta positivo suma, negativo resta. Con la misma referencia el ajuste no se aplica dos veces.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "id_variante, id_almacen, delta, referencia"
// @Success      201   {object}  dto.MovementResponse
// @Success      200   {object}  dto.MovementResponse  "repetición ya aplicada"
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AdjustStockRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.svc.AdjustStock(c.UserContext(), companyID, userID, in)
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusCreated
	if !out.Applied {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(out)
}

// Transfer godoc
// @Summary      Transferir stock entre almacenes
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferStockRequest  true  "id_variante, id_almacen_origen, id_almacen_destino, cantidad"
// @Success      201   {object}  dto.TransferResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferStockRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.svc.TransferStock(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetStock godoc
// @Summary      Stock actual de una variante en un almacén
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        variante_id  query  string  true  "ID de la variante"
// @Param        almacen_id   query  string  true  "ID del almacén"
// @Success      200  {object}  dto.StockLevelResponse
// @Router       /api/inventory/stock [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	out, err := h.svc.GetStockLevel(c.UserContext(), GetCompanyID(c), c.Query("variante_id"), c.Query("almacen_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListByWarehouse stock de todas las variantes de un almacén.
func (h *InventoryHandler) ListByWarehouse(c *fiber.Ctx) error {
	out, err := h.svc.ListStockByWarehouse(c.UserContext(), GetCompanyID(c), c.Params("id"), listOptions(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Variantes bajo stock mínimo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        almacen_id  query  string  false  "Sin almacén se usa el stock agregado"
// @Success      200  {array}  dto.LowStockItem
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.svc.LowStock(c.UserContext(), GetCompanyID(c), c.Query("almacen_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Movements historial de movimientos de una variante. desde/hasta en RFC3339.
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	from, err := queryTime(c, "desde")
	if err != nil {
		return respondError(c, err)
	}
	to, err := queryTime(c, "hasta")
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.svc.ListMovements(c.UserContext(), GetCompanyID(c), c.Params("id"), from, to, listOptions(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Exportar stock del almacén a Excel
// @Tags         inventory
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        almacen_id  query  string  true  "ID del almacén"
// @Success      200  {file}  binary
// @Router       /api/inventory/export [get]
func (h *InventoryHandler) Export(c *fiber.Ctx) error {
	warehouseID := c.Query("almacen_id")
	out, err := h.svc.ExportStockXLSX(c.UserContext(), GetCompanyID(c), warehouseID)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="stock-`+url.PathEscape(warehouseID)+`.xlsx"`)
	return c.Send(out)
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domainValidation(key, "fecha RFC3339 inválida")
	}
	return &t, nil
}
