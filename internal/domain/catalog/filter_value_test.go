package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/catalog"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
)

func TestNormalizeOptionValue(t *testing.T) {
	text := &entity.Filter{Name: "Material", DataType: entity.FilterTypeText}
	num := &entity.Filter{Name: "Peso", DataType: entity.FilterTypeNumeric}
	list := &entity.Filter{Name: "Talla", DataType: entity.FilterTypeList, AllowedValues: []string{"S", "M", "L"}}

	cases := []struct {
		name    string
		filter  *entity.Filter
		value   string
		want    string
		wantErr bool
	}{
		{"texto libre", text, " Algodón ", "Algodón", false},
		{"texto vacío", text, "  ", "", true},
		{"numérico válido", num, "1.50", "1.5", false},
		{"numérico negativo", num, "-2", "-2", false},
		{"numérico inválido", num, "diez", "", true},
		{"lista permitido", list, "M", "M", false},
		{"lista fuera del conjunto", list, "XL", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := catalog.NormalizeOptionValue(tc.filter, tc.value)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidateFilter(t *testing.T) {
	assert.NoError(t, catalog.ValidateFilter(&entity.Filter{Name: "Color", DataType: entity.FilterTypeList, AllowedValues: []string{"Rojo", "Azul"}}))
	assert.Error(t, catalog.ValidateFilter(&entity.Filter{Name: "Color", DataType: entity.FilterTypeList}), "Lista sin valores")
	assert.Error(t, catalog.ValidateFilter(&entity.Filter{Name: "Color", DataType: entity.FilterTypeList, AllowedValues: []string{"Rojo", "Rojo"}}), "valores duplicados")
	assert.Error(t, catalog.ValidateFilter(&entity.Filter{Name: "Peso", DataType: entity.FilterTypeNumeric, AllowedValues: []string{"1"}}))
	assert.Error(t, catalog.ValidateFilter(&entity.Filter{Name: "X", DataType: "Fecha"}))
	assert.Error(t, catalog.ValidateFilter(&entity.Filter{DataType: entity.FilterTypeText}))
}
