package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
type DashboardSummaryDTO struct {
	// Conteo y monto por estado (draft, sent, paid, overdue)
	ByStatus []StatusSummaryDTO `json:"by_status"`

	// Mes en curso (día 1 – hoy)
	MonthlyInvoiced  decimal.Decimal `json:"monthly_invoiced"`
	MonthlyCollected decimal.Decimal `json:"monthly_collected"`

	// Pendiente de cobro: sent + overdue
	Outstanding  decimal.Decimal `json:"outstanding"`
	OverdueCount int64           `json:"overdue_count"`

	// Top 5 clientes por monto facturado en el mes
	TopClients []TopClientDTO `json:"top_clients"`

	DateLabel   string    `json:"date_label"` // ej: "October 2026"
	GeneratedAt time.Time `json:"generated_at"`
}

// StatusSummaryDTO conteo y monto de un estado.
type StatusSummaryDTO struct {
	Status string          `json:"status"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// TopClientDTO cliente del widget de top clientes.
type TopClientDTO struct {
	ClientID     string          `json:"client_id"`
	ClientName   string          `json:"client_name"`
	InvoiceCount int64           `json:"invoice_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}
