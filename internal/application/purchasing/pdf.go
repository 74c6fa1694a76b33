package purchasing

import (
	"context"
	"fmt"
	"strings"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/dto"
)

// PurchasePDF genera la orden de compra imprimible.
func (s *Service) PurchasePDF(ctx context.Context, companyID, purchaseID string) ([]byte, error) {
	if s.PDF == nil {
		return nil, fmt.Errorf("generador PDF no configurado")
	}
	p, err := s.load(ctx, companyID, purchaseID)
	if err != nil {
		return nil, err
	}
	company, err := s.Registry.Resolve(ctx, companyID)
	if err != nil {
		return nil, err
	}
	doc := dto.PurchaseDocument{
		CompanyName:   company.Name,
		CompanyTaxID:  company.TaxID,
		PurchaseID:    p.ID,
		Status:        p.Status,
		Date:          p.CreatedAt,
		PaymentMethod: p.PaymentMethod,
		CurrencyCode:  p.CurrencyCode,
		Notes:         p.Notes,
		Total:         p.Total,
	}
	// proveedor y almacén pueden estar eliminados; el documento se imprime igual
	if sup, err := s.Suppliers.GetByID(ctx, p.SupplierID); err == nil && sup != nil {
		doc.SupplierName = sup.Name
		doc.SupplierTaxID = sup.TaxID
		doc.CreditDays = sup.CreditDays
	}
	if wh, err := s.Warehouses.GetByID(ctx, p.WarehouseID); err == nil && wh != nil {
		doc.WarehouseName = wh.Name
	}
	for _, l := range p.Lines {
		line := dto.PurchaseDocumentLine{
			Quantity: l.Quantity,
			UnitCost: l.UnitCost,
			Subtotal: l.Subtotal,
		}
		if v, err := s.Products.GetVariant(ctx, l.VariantID); err == nil && v != nil {
			line.SKU = v.SKU
			line.Description = v.Name
			if prod, err := s.Products.GetByID(ctx, v.ProductID); err == nil && prod != nil {
				line.Description = strings.TrimSpace(prod.Name + " " + v.Name)
			}
		}
		doc.Lines = append(doc.Lines, line)
	}
	out, err := s.PDF.RenderPurchaseOrder(doc)
	if err != nil {
		return nil, fmt.Errorf("generar PDF de compra: %w", err)
	}
	return out, nil
}
