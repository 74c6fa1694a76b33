package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/currency"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/dto"
)

// CurrencyHandler divisas, tasas de cambio y divisa base.
type CurrencyHandler struct {
	svc *currency.Service
}

func NewCurrencyHandler(svc *currency.Service) *CurrencyHandler {
	return &CurrencyHandler{svc: svc}
}

func (h *CurrencyHandler) CreateCurrency(c *fiber.Ctx) error {
	var in dto.CreateCurrencyRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.svc.CreateCurrency(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *CurrencyHandler) ListCurrencies(c *fiber.Ctx) error {
	out, err := h.svc.ListCurrencies(c.UserContext(), GetCompanyID(c), listOptions(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *CurrencyHandler) DeleteCurrency(c *fiber.Ctx) error {
	if err := h.svc.DeleteCurrency(c.UserContext(), GetCompanyID(c), c.Params("code")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpsertRate godoc
// @Summary      Registrar tasa de cambio (direccional)
// @Description  Inserta una nueva fila; la más reciente es la vigente. No se invierte ni encadena.
// @Tags         currency
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpsertRateRequest  true  "divisa_origen, divisa_destino, tasa"
// @Success      200   {object}  dto.RateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/exchange-rates [put]
func (h *CurrencyHandler) UpsertRate(c *fiber.Ctx) error {
	var in dto.UpsertRateRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.svc.UpsertRate(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *CurrencyHandler) ListRates(c *fiber.Ctx) error {
	out, err := h.svc.ListRates(c.UserContext(), GetCompanyID(c), listOptions(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DeleteRate godoc
// @Summary      Eliminar tasa de cambio
// @Description  Si era la vigente, vuelve a regir la anterior del mismo par.
// @Tags         currency
// @Security     Bearer
// @Param        id   path  string  true  "ID de la tasa"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/exchange-rates/{id} [delete]
func (h *CurrencyHandler) DeleteRate(c *fiber.Ctx) error {
	if err := h.svc.DeleteRate(c.UserContext(), GetCompanyID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Convert godoc
// @Summary      Convertir un monto entre divisas
// @Tags         currency
// @Security     Bearer
// @Produce      json
// @Param        monto    query  string  true  "Monto decimal"
// @Param        origen   query  string  true  "Código ISO origen"
// @Param        destino  query  string  true  "Código ISO destino"
// @Success      200  {object}  dto.ConvertResponse
// @Failure      422  {object}  dto.ErrorResponse  "sin tasa para el par"
// @Router       /api/exchange-rates/convert [get]
func (h *CurrencyHandler) Convert(c *fiber.Ctx) error {
	amount, err := decimal.NewFromString(c.Query("monto"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "monto: decimal inválido"})
	}
	q := dto.ConvertRequest{Amount: amount, From: c.Query("origen"), To: c.Query("destino")}
	if err := validate.Struct(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}
	out, err := h.svc.Convert(c.UserContext(), GetCompanyID(c), q.Amount, q.From, q.To)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *CurrencyHandler) GetBaseCurrency(c *fiber.Ctx) error {
	out, err := h.svc.GetBaseCurrency(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *CurrencyHandler) SetBaseCurrency(c *fiber.Ctx) error {
	var in dto.BaseCurrencyRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.svc.SetBaseCurrency(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
