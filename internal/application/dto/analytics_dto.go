package dto

import "github.com/shopspring/decimal"

// ── Query parameters ──────────────────────────────────────────────────────────

// RevenueReportRequest parámetros para GET /api/analytics/revenue.
type RevenueReportRequest struct {
	StartDate string `query:"start_date"` // YYYY-MM-DD; por defecto primer día del mes actual
	EndDate   string `query:"end_date"`   // YYYY-MM-DD; por defecto hoy
	TopN      int    `query:"top_n"`      // máx filas por ranking (default 20, max 200)
}

// ── Resumen ───────────────────────────────────────────────────────────────────

// RevenueSummaryDTO facturado vs cobrado en el período.
type RevenueSummaryDTO struct {
	Invoiced          decimal.Decimal `json:"invoiced"`
	Collected         decimal.Decimal `json:"collected"`
	Pending           decimal.Decimal `json:"pending"`             // Invoiced - Collected
	CollectionRatePct decimal.Decimal `json:"collection_rate_pct"` // Collected / Invoiced * 100
}

// ── Rankings ──────────────────────────────────────────────────────────────────

// ClientRankingDTO participación de un cliente en lo facturado.
type ClientRankingDTO struct {
	Rank             int             `json:"rank"`
	ClientID         string          `json:"client_id"`
	ClientName       string          `json:"client_name"`
	InvoiceCount     int64           `json:"invoice_count"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	RevenuePct       decimal.Decimal `json:"revenue_pct"`            // sobre lo facturado en el período
	CumulativeRevPct decimal.Decimal `json:"cumulative_revenue_pct"` // acumulado descendente
	IsTopPareto      bool            `json:"is_top_pareto"`
}

// ProductRankingDTO participación de un producto en el ingreso por líneas (sin impuestos).
type ProductRankingDTO struct {
	Rank             int             `json:"rank"`
	ProductID        string          `json:"product_id"`
	SKU              string          `json:"sku,omitempty"`
	ProductName      string          `json:"product_name"`
	UnitsSold        int64           `json:"units_sold"`
	Revenue          decimal.Decimal `json:"revenue"`
	RevenuePct       decimal.Decimal `json:"revenue_pct"`
	CumulativeRevPct decimal.Decimal `json:"cumulative_revenue_pct"`
	IsTopPareto      bool            `json:"is_top_pareto"`
}

// ── Reporte combinado ─────────────────────────────────────────────────────────

// PeriodDTO rango de fechas del reporte.
type PeriodDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// RevenueReportDTO respuesta completa de GET /api/analytics/revenue.
type RevenueReportDTO struct {
	Period         PeriodDTO           `json:"period"`
	Summary        RevenueSummaryDTO   `json:"summary"`
	ClientRanking  []ClientRankingDTO  `json:"client_ranking"`
	ProductRanking []ProductRankingDTO `json:"product_ranking"`
	ParetoClients  []ClientRankingDTO  `json:"pareto_clients"` // clientes que concentran ~80% de lo facturado
}
