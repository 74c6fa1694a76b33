// Package excel exporta reportes de stock a XLSX.
package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
)

const sheet = "Stock"

var headers = []string{"SKU", "Producto", "Variante", "Stock actual", "Stock mínimo", "Bajo mínimo", "Actualizado"}

// StockExporter implementa inventory.StockExporter con excelize.
type StockExporter struct{}

func NewStockExporter() *StockExporter { return &StockExporter{} }

// ExportStock genera un libro con una fila por variante del almacén.
func (e *StockExporter) ExportStock(warehouseName string, items []repository.StockLevelItem) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("excel: renombrar hoja: %w", err)
	}
	_ = f.SetCellValue(sheet, "A1", "Almacén: "+warehouseName)
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo: %w", err)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheet, cell, h)
	}
	_ = f.SetCellStyle(sheet, "A1", "G2", bold)

	for r, it := range items {
		qty, _ := it.Quantity.Float64()
		minStock, _ := it.MinStock.Float64()
		below := "No"
		if it.MinStock.IsPositive() && it.Quantity.LessThan(it.MinStock) {
			below = "Sí"
		}
		values := []any{it.SKU, it.ProductName, it.VariantName, qty, minStock, below, it.UpdatedAt.Format("2006-01-02 15:04")}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+3)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 16)
	_ = f.SetColWidth(sheet, "B", "C", 28)
	_ = f.SetColWidth(sheet, "D", "F", 13)
	_ = f.SetColWidth(sheet, "G", "G", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}
