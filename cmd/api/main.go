package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	appanalytics "github.com/jhoicas/billing-api/internal/application/analytics"
	"github.com/jhoicas/billing-api/internal/application/billing"
	"github.com/jhoicas/billing-api/internal/application/dto"
	"github.com/jhoicas/billing-api/internal/application/usecase"
	"github.com/jhoicas/billing-api/internal/domain/invoicing"
	"github.com/jhoicas/billing-api/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/billing-api/internal/infrastructure/pdf"
	"github.com/jhoicas/billing-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/billing-api/internal/interfaces/http"
	"github.com/jhoicas/billing-api/pkg/config"
	"github.com/jhoicas/billing-api/pkg/logger"
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
		Str("home_state", cfg.Billing.HomeState).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		migrator, err := postgres.NewMigrator(pool)
		if err != nil {
			log.Fatal().Err(err).Msg("inicializar migraciones")
		}
		if err := migrator.Up(); err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
		version, dirty, _ := migrator.Version()
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("esquema al día")
		_ = migrator.Close()
	}

	clientRepo := postgres.NewClientRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	guard := billing.NewIntegrityGuard(invoiceRepo)
	invoiceUC := billing.NewInvoiceUseCase(
		txRunner, invoiceRepo, clientRepo, productRepo,
		billing.EngineConfig{
			HomeState: cfg.Billing.HomeState,
			Rates:     invoicing.TaxRates{Half: decimal.NewFromFloat(cfg.Billing.HalfTaxRate)},
		},
		log.Zerolog(),
	)
	clientUC := billing.NewClientUseCase(clientRepo, guard)
	productUC := usecase.NewProductUseCase(productRepo, guard)

	summaryCache := cache.NewTTLCache[string, *dto.DashboardSummaryDTO](cfg.Cache.Size, cfg.Cache.TTL)
	dashboardUC := appanalytics.NewDashboardUseCase(analyticsRepo, summaryCache)
	invoiceUC.OnChange(dashboardUC.Invalidate)
	analyticsUC := usecase.NewAnalyticsUseCase(analyticsRepo)

	invoicePDFUC := billing.NewPDFUseCase(invoiceUC, infrapdf.NewMarotoPDFGenerator(), billing.Issuer{
		Name:    cfg.Billing.IssuerName,
		GSTIN:   cfg.Billing.IssuerGSTIN,
		Address: cfg.Billing.IssuerAddress,
		State:   cfg.Billing.HomeState,
	})

	var sweeper *billing.OverdueSweeper
	if cfg.Sweeper.Enabled {
		sweeper = billing.NewOverdueSweeper(invoiceUC, invoiceRepo, log.Component("overdue_sweeper"))
		if err := sweeper.Start(cfg.Sweeper.Spec); err != nil {
			log.Fatal().Err(err).Str("spec", cfg.Sweeper.Spec).Msg("programar barrido de vencidas")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Billing API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ClientUC:    clientUC,
		ProductUC:   productUC,
		InvoiceUC:   invoiceUC,
		InvoicePDF:  invoicePDFUC,
		DashboardUC: dashboardUC,
		AnalyticsUC: analyticsUC,
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

	if sweeper != nil {
		sweeper.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
