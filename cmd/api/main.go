package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/auth"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/catalog"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/currency"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/inventory"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/purchasing"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/sales"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/tenant"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/application/usecase"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/infrastructure/cache"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/infrastructure/excel"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/infrastructure/metrics"
	infrapdf "github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/infrastructure/pdf"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/infrastructure/postgres"
	httpRouter "github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/interfaces/http"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/pkg/config"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	configRepo := postgres.NewGlobalConfigRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	filterRepo := postgres.NewFilterRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	reportRepo := postgres.NewStockReportRepository(pool)
	purchaseRepo := postgres.NewPurchaseRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	currencyRepo := postgres.NewCurrencyRepository(pool)
	rateRepo := postgres.NewExchangeRateRepository(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout())

	checks := map[string]httpRouter.Pinger{"db": pool.Ping}

	// Caché de tasas: opcional, REDIS_URL vacío la desactiva.
	var rateCache currency.RateCache
	if cfg.Redis.URL != "" {
		rdb, err := cache.NewRedis(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		rateCache = cache.NewRateCache(rdb, cfg.Redis.RateTTL())
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info().Dur("ttl", cfg.Redis.RateTTL()).Msg("caché de tasas activa")
	}

	ledgerOpts := []inventory.LedgerOption{inventory.WithMaxAttempts(cfg.Ledger.MaxAttempts)}
	var docObserver purchasing.DocumentObserver
	if cfg.Metrics.Enabled {
		collector := metrics.NewCollector(prometheus.DefaultRegisterer)
		ledgerOpts = append(ledgerOpts, inventory.WithObserver(collector))
		docObserver = collector
	}

	registry := tenant.NewRegistry(companyRepo)
	ledger := inventory.NewLedger(txRunner, registry, productRepo, warehouseRepo, ledgerOpts...)

	authUC := auth.NewAuthUseCase(userRepo, registry, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	companyUC := usecase.NewCompanyUseCase(companyRepo)
	warehouseUC := usecase.NewWarehouseUseCase(registry, warehouseRepo)
	supplierUC := usecase.NewSupplierUseCase(registry, supplierRepo)
	userUC := usecase.NewUserUseCase(registry, userRepo)

	catalogSvc := catalog.NewService(registry, categoryRepo, productRepo, filterRepo, currencyRepo)
	currencySvc := currency.NewService(registry, currencyRepo, rateRepo, configRepo, rateCache)
	stockSvc := inventory.NewStockService(ledger, registry, stockRepo, movementRepo, reportRepo,
		productRepo, warehouseRepo, excel.NewStockExporter())

	purchasingDeps := purchasing.Deps{
		Ledger:     ledger,
		Registry:   registry,
		Companies:  companyRepo,
		Suppliers:  supplierRepo,
		Warehouses: warehouseRepo,
		Products:   productRepo,
		Currencies: currencyRepo,
		Purchases:  purchaseRepo,
		PDF:        infrapdf.NewMarotoPDFGenerator(),
	}
	salesDeps := sales.Deps{
		Ledger:     ledger,
		Registry:   registry,
		Warehouses: warehouseRepo,
		Products:   productRepo,
		Currencies: currencyRepo,
		Orders:     orderRepo,
	}
	if docObserver != nil {
		purchasingDeps.Observer = docObserver
		salesDeps.Observer = docObserver
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Zerolog()))

	// Swagger UI en local: http://localhost:<port>/docs (se genera con swag init)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Nexus ERP API",
		}))
	}

	app.Get("/health", httpRouter.Health(cfg.App.Name, checks))
	if cfg.Metrics.Enabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		CompanyUC:   companyUC,
		WarehouseUC: warehouseUC,
		SupplierUC:  supplierUC,
		UserUC:      userUC,
		Registry:    registry,
		Catalog:     catalogSvc,
		Currency:    currencySvc,
		Stock:       stockSvc,
		Purchasing:  purchasing.NewService(purchasingDeps),
		Sales:       sales.NewService(salesDeps),
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
