// Package analytics contiene los casos de uso para reportes de facturación y el
// dashboard.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/billing-api/internal/application/dto"
	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/repository"
)

const (
	dashboardTopClients = 5 // número de clientes en el widget del dashboard
	summaryCacheKey     = "summary"
)

// SummaryCache caché de lectura del resumen (tamaño acotado + TTL).
type SummaryCache interface {
	Get(key string) (*dto.DashboardSummaryDTO, bool)
	Set(key string, value *dto.DashboardSummaryDTO)
	Invalidate(key string)
}

// DashboardUseCase genera el resumen de facturación del mes en curso.
//
// Fuente de datos: AnalyticsRepository (consultas read-only sobre facturas).
// El resultado se sirve desde la caché mientras no expire.
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	cache         SummaryCache
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso. cache puede ser nil (sin caché).
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository, cache SummaryCache) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, cache: cache, now: time.Now}
}

// Invalidate descarta el resumen cacheado; la próxima lectura consulta la base.
func (uc *DashboardUseCase) Invalidate() {
	if uc.cache != nil {
		uc.cache.Invalidate(summaryCacheKey)
	}
}

// GetSummary construye el DashboardSummaryDTO.
//
// Tres llamadas en paralelo:
//  1. GetStatusTotals         → ByStatus + Outstanding + OverdueCount
//  2. GetRevenue(mes)         → MonthlyInvoiced + MonthlyCollected
//  3. GetTopClients(mes, 5)   → TopClients
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	if uc.cache != nil {
		if cached, ok := uc.cache.Get(summaryCacheKey); ok {
			return cached, nil
		}
	}

	now := uc.now()

	// ── Rangos de fecha ────────────────────────────────────────────────────────
	// Mes en curso: día 1 a las 00:00 – hoy a las 23:59:59
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthEnd := todayStart.Add(24*time.Hour - time.Nanosecond)

	// ── Goroutines para paralelizar las 3 consultas DB ────────────────────────
	type statusResult struct {
		totals []repository.StatusTotal
		err    error
	}
	type revenueResult struct {
		invoiced  decimal.Decimal
		collected decimal.Decimal
		err       error
	}
	type topClientsResult struct {
		clients []repository.ClientRevenue
		err     error
	}

	statusCh := make(chan statusResult, 1)
	revenueCh := make(chan revenueResult, 1)
	clientsCh := make(chan topClientsResult, 1)

	go func() {
		totals, err := uc.analyticsRepo.GetStatusTotals(ctx)
		statusCh <- statusResult{totals, err}
	}()
	go func() {
		inv, col, err := uc.analyticsRepo.GetRevenue(ctx, monthStart, monthEnd)
		revenueCh <- revenueResult{inv, col, err}
	}()
	go func() {
		clients, err := uc.analyticsRepo.GetTopClients(ctx, monthStart, monthEnd, dashboardTopClients)
		clientsCh <- topClientsResult{clients, err}
	}()

	status := <-statusCh
	revenue := <-revenueCh
	clients := <-clientsCh

	if status.err != nil {
		return nil, fmt.Errorf("dashboard: totales por estado: %w", status.err)
	}
	if revenue.err != nil {
		return nil, fmt.Errorf("dashboard: ingresos del mes: %w", revenue.err)
	}
	if clients.err != nil {
		return nil, fmt.Errorf("dashboard: top clientes: %w", clients.err)
	}

	// ── Agregar por estado (siempre los cuatro, en orden del ciclo de vida) ───
	byStatus := map[string]repository.StatusTotal{}
	for _, st := range status.totals {
		byStatus[st.Status] = st
	}
	summary := &dto.DashboardSummaryDTO{
		ByStatus:         make([]dto.StatusSummaryDTO, 0, 4),
		MonthlyInvoiced:  revenue.invoiced.Round(2),
		MonthlyCollected: revenue.collected.Round(2),
		Outstanding:      decimal.Zero,
		TopClients:       make([]dto.TopClientDTO, 0, len(clients.clients)),
		DateLabel:        monthLabel(now),
		GeneratedAt:      now.UTC(),
	}
	for _, s := range []entity.InvoiceStatus{
		entity.InvoiceStatusDraft, entity.InvoiceStatusSent,
		entity.InvoiceStatusOverdue, entity.InvoiceStatusPaid,
	} {
		st := byStatus[string(s)]
		summary.ByStatus = append(summary.ByStatus, dto.StatusSummaryDTO{
			Status: string(s),
			Count:  st.Count,
			Amount: st.Amount.Round(2),
		})
		if s == entity.InvoiceStatusSent || s == entity.InvoiceStatusOverdue {
			summary.Outstanding = summary.Outstanding.Add(st.Amount)
		}
		if s == entity.InvoiceStatusOverdue {
			summary.OverdueCount = st.Count
		}
	}
	summary.Outstanding = summary.Outstanding.Round(2)

	for _, c := range clients.clients {
		summary.TopClients = append(summary.TopClients, dto.TopClientDTO{
			ClientID:     c.ClientID,
			ClientName:   c.ClientName,
			InvoiceCount: c.InvoiceCount,
			TotalAmount:  c.TotalAmount.Round(2),
		})
	}

	if uc.cache != nil {
		uc.cache.Set(summaryCacheKey, summary)
	}
	return summary, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "October 2026".
func monthLabel(t time.Time) string {
	return fmt.Sprintf("%s %d", t.Month().String(), t.Year())
}
