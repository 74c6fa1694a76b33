// Package catalog reglas de validación del sistema de atributos (Filtro / OpcionFiltro).
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
)

// ValidDataType indica si t es un tipo_dato soportado.
func ValidDataType(t string) bool {
	switch t {
	case entity.FilterTypeText, entity.FilterTypeNumeric, entity.FilterTypeList:
		return true
	}
	return false
}

// ValidateFilter revisa la definición de un filtro.
// Un filtro Lista necesita al menos un valor permitido y sin duplicados.
func ValidateFilter(f *entity.Filter) error {
	if strings.TrimSpace(f.Name) == "" {
		return domain.NewValidation("nombre", "requerido")
	}
	if !ValidDataType(f.DataType) {
		return domain.NewValidation("tipo_dato", "debe ser Texto, Numérico o Lista")
	}
	if f.DataType != entity.FilterTypeList {
		if len(f.AllowedValues) > 0 {
			return domain.NewValidation("valores_permitidos", "solo aplica a filtros Lista")
		}
		return nil
	}
	if len(f.AllowedValues) == 0 {
		return domain.NewValidation("valores_permitidos", "un filtro Lista requiere valores")
	}
	seen := make(map[string]struct{}, len(f.AllowedValues))
	for _, v := range f.AllowedValues {
		v = strings.TrimSpace(v)
		if v == "" {
			return domain.NewValidation("valores_permitidos", "valor vacío")
		}
		if _, dup := seen[v]; dup {
			return domain.NewValidation("valores_permitidos", "valor duplicado: "+v)
		}
		seen[v] = struct{}{}
	}
	return nil
}

// NormalizeOptionValue valida value contra el tipo del filtro y devuelve su forma canónica.
// Numérico se guarda con la representación decimal normalizada ("1.50" -> "1.5").
func NormalizeOptionValue(f *entity.Filter, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", domain.NewValidation("valor", "requerido")
	}
	switch f.DataType {
	case entity.FilterTypeText:
		return value, nil
	case entity.FilterTypeNumeric:
		n, err := decimal.NewFromString(value)
		if err != nil {
			return "", domain.NewValidation("valor", "no es un número decimal")
		}
		return n.String(), nil
	case entity.FilterTypeList:
		for _, allowed := range f.AllowedValues {
			if strings.TrimSpace(allowed) == value {
				return value, nil
			}
		}
		return "", domain.NewValidation("valor", "no está entre los valores permitidos del filtro")
	}
	return "", domain.NewValidation("tipo_dato", "desconocido")
}
