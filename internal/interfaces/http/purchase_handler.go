package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/dto"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/purchasing"
)

// PurchaseHandler órdenes de compra a proveedores.
type PurchaseHandler struct {
	svc *purchasing.Service
}

// NewPurchaseHandler construye el handler.
func NewPurchaseHandler(svc *purchasing.Service) *PurchaseHandler {
	return &PurchaseHandler{svc: svc}
}

// Create godoc
// @Summary      Crear compra (estado Pendiente)
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseRequest  true  "Proveedor, almacén destino y líneas"
// @Success      201   {object}  dto.PurchaseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/purchases [post]
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.svc.CreatePurchase(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Receive godoc
// @Summary      Recibir compra: Pendiente → Recibido
// @Description  Suma al almacén destino la cantidad de cada línea.
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la compra"
// @Success      200  {object}  dto.PurchaseResponse
// @Failure      409  {object}  dto.ErrorResponse  "estado inválido"
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/purchases/{id}/receive [post]
func (h *PurchaseHandler) Receive(c *fiber.Ctx) error {
	out, err := h.svc.ReceivePurchase(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar compra pendiente
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la compra"
// @Success      200  {object}  dto.PurchaseResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchases/{id}/cancel [post]
func (h *PurchaseHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.svc.CancelPurchase(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *PurchaseHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.svc.GetPurchase(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List filtra por ?estado=Pendiente|Recibido|Cancelado.
func (h *PurchaseHandler) List(c *fiber.Ctx) error {
	out, err := h.svc.ListPurchases(c.UserContext(), GetCompanyID(c), c.Query("estado"), listOptions(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// PDF godoc
// @Summary      Orden de compra en PDF
// @Tags         purchases
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la compra"
// @Success      200  {file}  binary
// @Router       /api/purchases/{id}/pdf [get]
func (h *PurchaseHandler) PDF(c *fiber.Ctx) error {
	id := c.Params("id")
	out, err := h.svc.PurchasePDF(c.UserContext(), GetCompanyID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="compra-`+id+`.pdf"`)
	return c.Send(out)
}
