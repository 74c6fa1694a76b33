package valuation_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/valuation"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRound_HalfUp(t *testing.T) {
	assert.Equal(t, "2.35", valuation.Round(d("2.345")).StringFixed(2))
	assert.Equal(t, "2.34", valuation.Round(d("2.3449")).StringFixed(2))
	assert.Equal(t, "0.01", valuation.Round(d("0.005")).StringFixed(2))
}

func TestDocumentTotal_CompraDeDosLineas(t *testing.T) {
	total := valuation.DocumentTotal([]valuation.Line{
		{Quantity: d("10"), UnitPrice: d("5.00")},
		{Quantity: d("3"), UnitPrice: d("12.50")},
	})
	assert.Equal(t, "87.50", total.StringFixed(2), "10×5.00 + 3×12.50 = 87.50")
}

func TestDocumentTotal_SumaDeSubtotalesRedondeados(t *testing.T) {
	lines := []valuation.Line{
		{Quantity: d("3"), UnitPrice: d("0.335")},
		{Quantity: d("1"), UnitPrice: d("0.005")},
	}
	want := valuation.LineSubtotal(d("3"), d("0.335")).Add(valuation.LineSubtotal(d("1"), d("0.005")))
	assert.True(t, want.Equal(valuation.DocumentTotal(lines)))
}

func TestConvert(t *testing.T) {
	assert.Equal(t, "780.00", valuation.Convert(d("100"), d("7.80")).StringFixed(2))
}

// Ida y vuelta con la tasa inversa queda dentro de una unidad menor.
func TestConvert_IdaYVuelta(t *testing.T) {
	rate := d("7.83")
	inverse := decimal.NewFromInt(1).DivRound(rate, 8)
	for _, s := range []string{"1", "19.99", "100", "1234.56", "0.07"} {
		amount := d(s)
		back := valuation.Convert(valuation.Convert(amount, rate), inverse)
		diff := back.Sub(amount).Abs()
		assert.True(t, diff.LessThanOrEqual(d("0.01")), "%s volvió como %s", s, back)
	}
}

func TestCheckPrecision(t *testing.T) {
	assert.NoError(t, valuation.CheckPrecision("precio", d("12.50")))
	assert.NoError(t, valuation.CheckPrecision("precio", d("12.500")))
	assert.ErrorIs(t, valuation.CheckPrecision("precio", d("12.505")), domain.ErrValidation)
}

func TestCheckQuantityScale(t *testing.T) {
	assert.NoError(t, valuation.CheckQuantityScale("cantidad", d("2.1234")))
	assert.NoError(t, valuation.CheckQuantityScale("cantidad", d("2.12340")))
	assert.NoError(t, valuation.CheckQuantityScale("cantidad", d("-3")))
	assert.ErrorIs(t, valuation.CheckQuantityScale("cantidad", d("2.12345")), domain.ErrValidation)
	assert.ErrorIs(t, valuation.CheckQuantityScale("delta", d("0.00001")), domain.ErrValidation)
}

func TestCheckRateScale(t *testing.T) {
	assert.NoError(t, valuation.CheckRateScale("tasa", d("0.127714")))
	var verr *domain.ValidationError
	require.ErrorAs(t, valuation.CheckRateScale("tasa", d("0.1277139208")), &verr)
	assert.Equal(t, "tasa", verr.Field)
	assert.Equal(t, "más de 6 decimales", verr.Reason)
}
