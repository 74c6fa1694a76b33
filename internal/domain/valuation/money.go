// Package valuation reglas monetarias puras: redondeo, subtotales, totales y conversión.
package valuation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
)

// MinorUnits decimales de la unidad menor de las divisas modeladas.
const MinorUnits = 2

// Round redondea a MinorUnits con half-up (mitad se aleja de cero).
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MinorUnits)
}

// CheckPrecision rechaza montos con más decimales que la unidad menor.
func CheckPrecision(field string, amount decimal.Decimal) error {
	if amount.Exponent() < -MinorUnits && !amount.Equal(Round(amount)) {
		return domain.NewValidation(field, "más de 2 decimales")
	}
	return nil
}

// Decimales que admiten las columnas NUMERIC(18,4) de cantidades y NUMERIC(18,6) de tasas.
const (
	QuantityScale = 4
	RateScale     = 6
)

// CheckQuantityScale rechaza cantidades que la base de datos redondearía al guardarlas.
func CheckQuantityScale(field string, quantity decimal.Decimal) error {
	return checkScale(field, quantity, QuantityScale)
}

// CheckRateScale igual que CheckQuantityScale para tasas de cambio.
func CheckRateScale(field string, rate decimal.Decimal) error {
	return checkScale(field, rate, RateScale)
}

func checkScale(field string, v decimal.Decimal, places int32) error {
	if v.Exponent() < -places && !v.Equal(v.Round(places)) {
		return domain.NewValidation(field, fmt.Sprintf("más de %d decimales", places))
	}
	return nil
}

// LineSubtotal = cantidad × costo unitario, redondeado.
func LineSubtotal(quantity, unitCost decimal.Decimal) decimal.Decimal {
	return Round(quantity.Mul(unitCost))
}

// Line par cantidad/precio de una línea de documento.
type Line struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// DocumentTotal = Σ LineSubtotal.
func DocumentTotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(LineSubtotal(l.Quantity, l.UnitPrice))
	}
	return total
}

// Convert multiplica por la tasa y redondea a la unidad menor de la divisa destino.
func Convert(amount, rate decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(rate))
}

// VerifyTotal indica si total coincide con la suma de subtotales recalculada desde las líneas.
func VerifyTotal(total decimal.Decimal, lines []Line) bool {
	return total.Equal(DocumentTotal(lines))
}
