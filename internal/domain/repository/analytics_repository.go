package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StatusTotal conteo y monto acumulado de facturas en un estado.
type StatusTotal struct {
	Status string
	Count  int64
	Amount decimal.Decimal // suma de total_amount
}

// ClientRevenue ingreso facturado a un cliente en un período.
type ClientRevenue struct {
	ClientID     string
	ClientName   string
	InvoiceCount int64
	TotalAmount  decimal.Decimal
}

// ProductRevenue unidades e ingreso (antes de impuestos) de un producto en un período.
type ProductRevenue struct {
	ProductID   string
	SKU         string
	ProductName string
	UnitsSold   int64
	Revenue     decimal.Decimal // suma de line_total
}

// AnalyticsRepository consultas de solo lectura para el dashboard.
// Lee directamente las facturas persistidas; no pasa por el motor de facturas.
type AnalyticsRepository interface {
	// GetStatusTotals conteo y monto por estado (todos los estados presentes).
	GetStatusTotals(ctx context.Context) ([]StatusTotal, error)

	// GetRevenue monto facturado (invoice_date en el rango) y cobrado
	// (estado paid, invoice_date en el rango).
	GetRevenue(ctx context.Context, startDate, endDate time.Time) (invoiced, collected decimal.Decimal, err error)

	// GetTopClients los `limit` clientes con mayor monto facturado en el período.
	GetTopClients(ctx context.Context, startDate, endDate time.Time, limit int) ([]ClientRevenue, error)

	// GetTopProducts los `limit` productos con mayor ingreso por líneas en el período.
	GetTopProducts(ctx context.Context, startDate, endDate time.Time, limit int) ([]ProductRevenue, error)
}
