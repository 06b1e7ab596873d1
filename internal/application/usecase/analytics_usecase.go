package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/billing-api/internal/application/dto"
	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/repository"
)

const (
	defaultTopN     = 20
	maxTopN         = 200
	paretoThreshold = 80 // Principio de Pareto: pocos clientes concentran el 80% de lo facturado
	dateLayout      = "2006-01-02"
)

var (
	hundred  = decimal.NewFromInt(100)
	pareto80 = decimal.NewFromInt(paretoThreshold)
)

// AnalyticsUseCase reporte de ingresos por período:
//   - Facturado vs cobrado y tasa de cobro.
//   - Ranking de clientes por monto facturado con análisis Pareto.
//   - Ranking de productos por ingreso de líneas.
type AnalyticsUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewAnalyticsUseCase construye el caso de uso.
func NewAnalyticsUseCase(analyticsRepo repository.AnalyticsRepository) *AnalyticsUseCase {
	return &AnalyticsUseCase{analyticsRepo: analyticsRepo, now: time.Now}
}

// GetRevenueReport genera el reporte completo para un período.
func (uc *AnalyticsUseCase) GetRevenueReport(ctx context.Context, req dto.RevenueReportRequest) (*dto.RevenueReportDTO, error) {
	startDate, endDate, err := parsePeriod(uc.now(), req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	topN := req.TopN
	if topN <= 0 {
		topN = defaultTopN
	}
	if topN > maxTopN {
		topN = maxTopN
	}

	// 1) Tres consultas independientes en paralelo
	type revenueResult struct {
		invoiced, collected decimal.Decimal
		err                 error
	}
	type clientsResult struct {
		rows []repository.ClientRevenue
		err  error
	}
	type productsResult struct {
		rows []repository.ProductRevenue
		err  error
	}

	revCh := make(chan revenueResult, 1)
	cliCh := make(chan clientsResult, 1)
	prodCh := make(chan productsResult, 1)

	go func() {
		inv, col, err := uc.analyticsRepo.GetRevenue(ctx, startDate, endDate)
		revCh <- revenueResult{inv, col, err}
	}()
	go func() {
		rows, err := uc.analyticsRepo.GetTopClients(ctx, startDate, endDate, topN)
		cliCh <- clientsResult{rows, err}
	}()
	go func() {
		rows, err := uc.analyticsRepo.GetTopProducts(ctx, startDate, endDate, topN)
		prodCh <- productsResult{rows, err}
	}()

	rev := <-revCh
	cli := <-cliCh
	prod := <-prodCh

	if rev.err != nil {
		return nil, fmt.Errorf("analytics: ingresos: %w", rev.err)
	}
	if cli.err != nil {
		return nil, fmt.Errorf("analytics: clientes: %w", cli.err)
	}
	if prod.err != nil {
		return nil, fmt.Errorf("analytics: productos: %w", prod.err)
	}

	// 2) Ranking de clientes; el porcentaje se mide contra todo lo facturado
	clientRanking := buildClientRanking(cli.rows, rev.invoiced)

	// 3) Filtrar los clientes que conforman el top 80% (Pareto)
	paretoClients := make([]dto.ClientRankingDTO, 0, len(clientRanking))
	for _, c := range clientRanking {
		if c.IsTopPareto {
			paretoClients = append(paretoClients, c)
		}
	}

	return &dto.RevenueReportDTO{
		Period: dto.PeriodDTO{
			StartDate: startDate.Format(dateLayout),
			EndDate:   endDate.Format(dateLayout),
		},
		Summary:        buildSummary(rev.invoiced, rev.collected),
		ClientRanking:  clientRanking,
		ProductRanking: buildProductRanking(prod.rows),
		ParetoClients:  paretoClients,
	}, nil
}

func buildSummary(invoiced, collected decimal.Decimal) dto.RevenueSummaryDTO {
	rate := decimal.Zero
	if invoiced.IsPositive() {
		rate = collected.Div(invoiced).Mul(hundred).Round(2)
	}
	return dto.RevenueSummaryDTO{
		Invoiced:          invoiced.Round(2),
		Collected:         collected.Round(2),
		Pending:           invoiced.Sub(collected).Round(2),
		CollectionRatePct: rate,
	}
}

// buildClientRanking enriquece cada fila con:
//   - Rank (posición por monto facturado descendente).
//   - RevenuePct y CumulativeRevPct sobre el total del período.
//   - IsTopPareto: true mientras el acumulado no supere el 80%; el primero siempre entra.
func buildClientRanking(rows []repository.ClientRevenue, total decimal.Decimal) []dto.ClientRankingDTO {
	ranking := make([]dto.ClientRankingDTO, 0, len(rows))
	var cumulative decimal.Decimal
	for i, r := range rows {
		pct := share(r.TotalAmount, total)
		cumulative = cumulative.Add(pct)
		ranking = append(ranking, dto.ClientRankingDTO{
			Rank:             i + 1,
			ClientID:         r.ClientID,
			ClientName:       r.ClientName,
			InvoiceCount:     r.InvoiceCount,
			TotalAmount:      r.TotalAmount.Round(2),
			RevenuePct:       pct,
			CumulativeRevPct: cumulative.Round(2),
			IsTopPareto:      cumulative.LessThanOrEqual(pareto80) || i == 0,
		})
	}
	return ranking
}

// buildProductRanking igual que el de clientes, con el total de las filas devueltas como base.
func buildProductRanking(rows []repository.ProductRevenue) []dto.ProductRankingDTO {
	var total decimal.Decimal
	for _, r := range rows {
		total = total.Add(r.Revenue)
	}

	ranking := make([]dto.ProductRankingDTO, 0, len(rows))
	var cumulative decimal.Decimal
	for i, r := range rows {
		pct := share(r.Revenue, total)
		cumulative = cumulative.Add(pct)
		ranking = append(ranking, dto.ProductRankingDTO{
			Rank:             i + 1,
			ProductID:        r.ProductID,
			SKU:              r.SKU,
			ProductName:      r.ProductName,
			UnitsSold:        r.UnitsSold,
			Revenue:          r.Revenue.Round(2),
			RevenuePct:       pct,
			CumulativeRevPct: cumulative.Round(2),
			IsTopPareto:      cumulative.LessThanOrEqual(pareto80) || i == 0,
		})
	}
	return ranking
}

func share(part, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred).Round(2)
}

// parsePeriod convierte los strings de fecha; vacío significa primer día del mes / hoy.
// El fin es inclusivo hasta el último instante del día.
func parsePeriod(now time.Time, startStr, endStr string) (start, end time.Time, err error) {
	loc := now.Location()

	if endStr == "" {
		end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	} else {
		end, err = time.ParseInLocation(dateLayout, endStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, domain.NewValidationError("end_date", "formato esperado YYYY-MM-DD")
		}
	}
	end = end.Add(24*time.Hour - time.Nanosecond)

	if startStr == "" {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	} else {
		start, err = time.ParseInLocation(dateLayout, startStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, domain.NewValidationError("start_date", "formato esperado YYYY-MM-DD")
		}
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, domain.NewValidationError("start_date", "no puede ser posterior a end_date")
	}
	return start, end, nil
}
