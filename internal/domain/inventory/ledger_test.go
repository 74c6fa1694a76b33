package inventory_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestApplyDelta(t *testing.T) {
	cases := []struct {
		name    string
		current string
		delta   string
		want    string
		wantErr error
	}{
		{"entrada", "0", "10", "10", nil},
		{"salida parcial", "10", "-4", "6", nil},
		{"salida exacta deja cero", "10", "-10", "0", nil},
		{"salida mayor al stock", "10", "-15", "10", domain.ErrInsufficientStock},
		{"delta cero", "10", "0", "10", domain.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := inventory.ApplyDelta("v1", "a1", d(tc.current), d(tc.delta))
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.wantErr), "error inesperado: %v", err)
			} else {
				require.NoError(t, err)
			}
			assert.True(t, d(tc.want).Equal(got), "esperado %s, obtenido %s", tc.want, got)
		})
	}
}

func TestApplyDelta_DetalleDelFaltante(t *testing.T) {
	_, err := inventory.ApplyDelta("v1", "a1", d("10"), d("-15"))
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.True(t, d("10").Equal(ise.Available))
	assert.True(t, d("15").Equal(ise.Requested))
}

// La suma de deltas aplicados coincide con el stock final y nunca hay cantidades negativas.
func TestApplyDelta_SecuenciaNuncaNegativa(t *testing.T) {
	deltas := []string{"5", "-3", "-3", "10", "-12", "-1", "4"}
	qty := decimal.Zero
	applied := decimal.Zero
	for _, s := range deltas {
		next, err := inventory.ApplyDelta("v1", "a1", qty, d(s))
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			continue
		}
		applied = applied.Add(d(s))
		qty = next
		assert.False(t, qty.IsNegative(), "el stock no puede ser negativo")
	}
	assert.True(t, applied.Equal(qty), "stock final %s debe igualar la suma aplicada %s", qty, applied)
}

func TestCostCalculator(t *testing.T) {
	// 10 u a 5.00 + 10 u a 7.00 => 6.00
	got := inventory.CostCalculator(d("10"), d("5"), d("10"), d("7"))
	assert.True(t, d("6").Equal(got), "costo promedio esperado 6, obtenido %s", got)

	// sin stock previo, toma el costo de entrada
	got = inventory.CostCalculator(decimal.Zero, decimal.Zero, d("3"), d("12.50"))
	assert.True(t, d("12.5").Equal(got))
}

func TestStockKey_Less(t *testing.T) {
	a := inventory.StockKey{VariantID: "a", WarehouseID: "z"}
	b := inventory.StockKey{VariantID: "b", WarehouseID: "a"}
	c := inventory.StockKey{VariantID: "a", WarehouseID: "y"}
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.True(t, c.Less(a))
}
