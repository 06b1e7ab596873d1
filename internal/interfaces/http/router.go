package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/billing-api/internal/application/analytics"
	"github.com/jhoicas/billing-api/internal/application/billing"
	"github.com/jhoicas/billing-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ClientUC    *billing.ClientUseCase
	ProductUC   *usecase.ProductUseCase
	InvoiceUC   *billing.InvoiceUseCase
	InvoicePDF  *billing.PDFUseCase
	DashboardUC *analytics.DashboardUseCase
	AnalyticsUC *usecase.AnalyticsUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Clients
	clients := api.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Put("/:id", clientHandler.Update)
	clients.Delete("/:id", clientHandler.Delete)

	// Products
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	// Invoices (/bulk antes de /:id)
	invoices := api.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.InvoicePDF)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Patch("/bulk", invoiceHandler.BulkUpdate)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Put("/:id", invoiceHandler.Update)
	invoices.Delete("/:id", invoiceHandler.Delete)
	invoices.Patch("/:id/status", invoiceHandler.ChangeStatus)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)

	// Dashboard
	if deps.DashboardUC != nil {
		dashboardHandler := NewDashboardHandler(deps.DashboardUC)
		api.Get("/dashboard/summary", dashboardHandler.GetSummary)
	}

	// Analytics
	if deps.AnalyticsUC != nil {
		analyticsHandler := NewAnalyticsHandler(deps.AnalyticsUC)
		api.Get("/analytics/revenue", analyticsHandler.GetRevenue)
	}
}
