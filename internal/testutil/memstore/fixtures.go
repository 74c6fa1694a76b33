package memstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/entity"
)

// Tenant datos mínimos de una empresa para pruebas: dos almacenes, un proveedor,
// una categoría con subcategoría, un producto con una variante y la divisa USD.
type Tenant struct {
	Company     *entity.Company
	Warehouse   *entity.Warehouse
	Warehouse2  *entity.Warehouse
	Supplier    *entity.Supplier
	Category    *entity.Category
	Subcategory *entity.Subcategory
	Product     *entity.Product
	Variant     *entity.ProductVariant
	User        *entity.User
	Currency    *entity.Currency
}

// SeedTenant crea una empresa con sus datos base. Falla con panic si el store rechaza algo.
func (s *Store) SeedTenant(name string) *Tenant {
	ctx := context.Background()
	id := uuid.New().String()
	t := &Tenant{
		Company:     &entity.Company{ID: id, Name: name, TaxID: "NIT-" + id[:8]},
		Warehouse:   &entity.Warehouse{ID: uuid.New().String(), CompanyID: id, Name: "Bodega central", IsPrimary: true},
		Warehouse2:  &entity.Warehouse{ID: uuid.New().String(), CompanyID: id, Name: "Sucursal"},
		Supplier:    &entity.Supplier{ID: uuid.New().String(), CompanyID: id, Name: "Proveedor " + name, CreditDays: 30},
		Category:    &entity.Category{ID: uuid.New().String(), CompanyID: id, Name: "Ropa"},
		Subcategory: &entity.Subcategory{ID: uuid.New().String(), CompanyID: id, Name: "Camisas"},
		User:        &entity.User{ID: uuid.New().String(), CompanyID: id, Email: id[:8] + "@nexus.test", Name: "Admin", Role: entity.RoleAdministrador, Active: true},
	}
	t.Subcategory.CategoryID = t.Category.ID
	t.Currency = &entity.Currency{ID: uuid.New().String(), CompanyID: id, Code: "USD", Name: "Dólar", Symbol: "$"}
	t.Product = &entity.Product{
		ID: uuid.New().String(), CompanyID: id, SubcategoryID: t.Subcategory.ID,
		Name: "Camisa Oxford", Price: decimal.RequireFromString("25.00"), CurrencyCode: "USD",
	}
	t.Variant = &entity.ProductVariant{
		ID: uuid.New().String(), CompanyID: id, ProductID: t.Product.ID,
		SKU: "OX-" + id[:6], Name: "Talla M", MinStock: decimal.NewFromInt(5),
	}

	must(s.Companies().Create(ctx, t.Company))
	must(s.Warehouses().Create(ctx, t.Warehouse))
	must(s.Warehouses().Create(ctx, t.Warehouse2))
	must(s.Suppliers().Create(ctx, t.Supplier))
	must(s.Categories().Create(ctx, t.Category))
	must(s.Categories().CreateSubcategory(ctx, t.Subcategory))
	must(s.Products().Create(ctx, t.Product))
	must(s.Products().CreateVariant(ctx, t.Variant))
	must(s.Users().Create(ctx, t.User))
	must(s.Currencies().Create(ctx, t.Currency))
	return t
}

// AddVariant agrega otra variante al producto del tenant.
func (s *Store) AddVariant(t *Tenant, sku string) *entity.ProductVariant {
	v := &entity.ProductVariant{
		ID: uuid.New().String(), CompanyID: t.Company.ID, ProductID: t.Product.ID,
		SKU: sku, Name: sku,
	}
	must(s.Products().CreateVariant(context.Background(), v))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
