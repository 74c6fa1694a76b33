package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/auth"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/catalog"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/currency"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/inventory"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/purchasing"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/sales"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/tenant"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	CompanyUC   *usecase.CompanyUseCase
	WarehouseUC *usecase.WarehouseUseCase
	SupplierUC  *usecase.SupplierUseCase
	UserUC      *usecase.UserUseCase
	Registry    *tenant.Registry
	Catalog     *catalog.Service
	Currency    *currency.Service
	Stock       *inventory.StockService
	Purchasing  *purchasing.Service
	Sales       *sales.Service
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas: token válido y empresa activa
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), RequireActiveTenant(deps.Registry))
	admin := RequireRole(rolesAdmin...)
	seller := RequireRole(rolesVenta...)

	// Empresas (plataforma)
	companies := protected.Group("/companies", RequireRole(rolesSuper...))
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Get("/", companyHandler.List)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)
	companies.Put("/:id", companyHandler.Update)
	companies.Delete("/:id", companyHandler.Delete)

	// Almacenes
	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Post("/", admin, warehouseHandler.Create)
	warehouses.Put("/:id", admin, warehouseHandler.Update)
	warehouses.Delete("/:id", admin, warehouseHandler.Delete)

	// Proveedores
	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Post("/", admin, supplierHandler.Create)
	suppliers.Put("/:id", admin, supplierHandler.Update)
	suppliers.Delete("/:id", admin, supplierHandler.Delete)

	// Usuarios de la empresa
	users := protected.Group("/users", admin)
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)

	// Catálogo
	cat := NewCatalogHandler(deps.Catalog)
	categories := protected.Group("/categories")
	categories.Get("/", cat.ListCategories)
	categories.Post("/", admin, cat.CreateCategory)
	categories.Put("/:id", admin, cat.UpdateCategory)
	categories.Delete("/:id", admin, cat.DeleteCategory)
	categories.Get("/:id/subcategories", cat.ListSubcategories)
	categories.Post("/:id/subcategories", admin, cat.CreateSubcategory)

	subcategories := protected.Group("/subcategories")
	subcategories.Put("/:id", admin, cat.UpdateSubcategory)
	subcategories.Delete("/:id", admin, cat.DeleteSubcategory)
	subcategories.Get("/:id/filters", cat.ListFilters)
	subcategories.Post("/:id/filters", admin, cat.CreateFilter)

	filters := protected.Group("/filters")
	filters.Put("/:id", admin, cat.UpdateFilter)
	filters.Delete("/:id", admin, cat.DeleteFilter)
	filters.Get("/:id/options", cat.ListOptions)
	filters.Post("/:id/options", admin, cat.CreateOption)
	protected.Delete("/filter-options/:id", admin, cat.DeleteOption)

	products := protected.Group("/products")
	products.Get("/", cat.ListProducts)
	products.Post("/", admin, cat.CreateProduct)
	products.Get("/:id", cat.GetProduct)
	products.Put("/:id", admin, cat.UpdateProduct)
	products.Delete("/:id", admin, cat.DeleteProduct)
	products.Get("/:id/variants", cat.ListVariants)
	products.Post("/:id/variants", admin, cat.CreateVariant)
	products.Post("/:id/options/:optionId", admin, cat.AttachOption)
	products.Delete("/:id/options/:optionId", admin, cat.DetachOption)

	variants := protected.Group("/variants")
	variants.Put("/:id", admin, cat.UpdateVariant)
	variants.Delete("/:id", admin, cat.DeleteVariant)

	// Divisas y tasas
	cur := NewCurrencyHandler(deps.Currency)
	currencies := protected.Group("/currencies")
	currencies.Get("/", cur.ListCurrencies)
	currencies.Post("/", admin, cur.CreateCurrency)
	currencies.Delete("/:code", admin, cur.DeleteCurrency)
	currencies.Get("/base", cur.GetBaseCurrency)
	currencies.Put("/base", admin, cur.SetBaseCurrency)

	rates := protected.Group("/exchange-rates")
	rates.Get("/", cur.ListRates)
	rates.Put("/", admin, cur.UpsertRate)
	rates.Get("/convert", cur.Convert)
	rates.Delete("/:id", admin, cur.DeleteRate)

	// Inventario
	inv := NewInventoryHandler(deps.Stock)
	invGroup := protected.Group("/inventory")
	invGroup.Post("/adjustments", admin, inv.Adjust)
	invGroup.Post("/transfers", admin, inv.Transfer)
	invGroup.Get("/stock", inv.GetStock)
	invGroup.Get("/low-stock", inv.LowStock)
	invGroup.Get("/export", inv.Export)
	invGroup.Get("/warehouses/:id", inv.ListByWarehouse)
	invGroup.Get("/variants/:id/movements", inv.Movements)

	// Compras
	pur := NewPurchaseHandler(deps.Purchasing)
	purchases := protected.Group("/purchases")
	purchases.Get("/", pur.List)
	purchases.Post("/", admin, pur.Create)
	purchases.Get("/:id", pur.GetByID)
	purchases.Get("/:id/pdf", pur.PDF)
	purchases.Post("/:id/receive", admin, pur.Receive)
	purchases.Post("/:id/cancel", admin, pur.Cancel)

	// Pedidos
	ord := NewOrderHandler(deps.Sales)
	orders := protected.Group("/orders")
	orders.Get("/", ord.List)
	orders.Post("/", seller, ord.Create)
	orders.Get("/:id", ord.GetByID)
	orders.Post("/:id/fulfill", seller, ord.Fulfill)
	orders.Post("/:id/cancel", seller, ord.Cancel)
}
