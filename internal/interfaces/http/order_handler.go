package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/dto"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/sales"
)

// OrderHandler pedidos de venta.
type OrderHandler struct {
	svc *sales.Service
}

// NewOrderHandler construye el handler.
func NewOrderHandler(svc *sales.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// Create godoc
// @Summary      Crear pedido (estado Pendiente)
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Almacén origen y líneas"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.svc.CreateOrder(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Fulfill godoc
// @Summary      Completar pedido: descuenta stock del almacén origen
// @Description  Si alguna línea no tiene stock, el pedido queda Pendiente y no se mueve nada.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      409  {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK o INVALID_STATE"
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/fulfill [post]
func (h *OrderHandler) Fulfill(c *fiber.Ctx) error {
	out, err := h.svc.FulfillOrder(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.svc.CancelOrder(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.svc.GetOrder(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	out, err := h.svc.ListOrders(c.UserContext(), GetCompanyID(c), c.Query("estado"), listOptions(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
