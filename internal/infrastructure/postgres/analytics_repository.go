package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/billing-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard de facturación.
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

// GetStatusTotals conteo y suma de total_amount por estado.
func (r *AnalyticsRepo) GetStatusTotals(ctx context.Context) ([]repository.StatusTotal, error) {
	const query = `
	SELECT status,
	       COUNT(*)                          AS invoice_count,
	       COALESCE(SUM(total_amount), 0)    AS amount
	FROM invoices
	GROUP BY status`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetStatusTotals: %w", err)
	}
	defer rows.Close()

	var results []repository.StatusTotal
	for rows.Next() {
		var row repository.StatusTotal
		if err := rows.Scan(&row.Status, &row.Count, &row.Amount); err != nil {
			return nil, fmt.Errorf("analytics.GetStatusTotals scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetRevenue monto facturado y cobrado (paid) con invoice_date en [startDate, endDate].
func (r *AnalyticsRepo) GetRevenue(
	ctx context.Context,
	startDate, endDate time.Time,
) (invoiced, collected decimal.Decimal, err error) {
	const query = `
	SELECT COALESCE(SUM(total_amount), 0)                                  AS invoiced,
	       COALESCE(SUM(total_amount) FILTER (WHERE status = 'paid'), 0)   AS collected
	FROM invoices
	WHERE invoice_date BETWEEN $1::date AND $2::date`

	if err := r.pool.QueryRow(ctx, query, startDate, endDate).Scan(&invoiced, &collected); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("analytics.GetRevenue: %w", err)
	}
	return invoiced, collected, nil
}

// GetTopClients clientes con mayor monto facturado en el período.
func (r *AnalyticsRepo) GetTopClients(
	ctx context.Context,
	startDate, endDate time.Time,
	limit int,
) ([]repository.ClientRevenue, error) {
	const query = `
	SELECT c.id::text,
	       c.name,
	       COUNT(i.id)          AS invoice_count,
	       SUM(i.total_amount)  AS total_amount
	FROM invoices i
	JOIN clients  c ON c.id = i.client_id
	WHERE i.invoice_date BETWEEN $1::date AND $2::date
	GROUP BY c.id, c.name
	ORDER BY total_amount DESC, c.name ASC
	LIMIT $3`

	rows, err := r.pool.Query(ctx, query, startDate, endDate, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetTopClients: %w", err)
	}
	defer rows.Close()

	var results []repository.ClientRevenue
	for rows.Next() {
		var row repository.ClientRevenue
		if err := rows.Scan(&row.ClientID, &row.ClientName, &row.InvoiceCount, &row.TotalAmount); err != nil {
			return nil, fmt.Errorf("analytics.GetTopClients scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetTopProducts ranking por producto desagregando las líneas JSONB.
// Un producto ya eliminado no puede estar referenciado, así que el JOIN es interno.
func (r *AnalyticsRepo) GetTopProducts(
	ctx context.Context,
	startDate, endDate time.Time,
	limit int,
) ([]repository.ProductRevenue, error) {
	const query = `
	SELECT p.id::text,
	       COALESCE(p.sku, '')                         AS sku,
	       p.name,
	       SUM((li->>'quantity')::bigint)              AS units_sold,
	       SUM((li->>'line_total')::numeric)           AS revenue
	FROM invoices i
	CROSS JOIN LATERAL jsonb_array_elements(i.items) AS li
	JOIN products p ON p.id = (li->>'product_id')::uuid
	WHERE i.invoice_date BETWEEN $1::date AND $2::date
	GROUP BY p.id, p.sku, p.name
	ORDER BY revenue DESC, p.id ASC
	LIMIT $3`

	rows, err := r.pool.Query(ctx, query, startDate, endDate, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetTopProducts: %w", err)
	}
	defer rows.Close()

	var results []repository.ProductRevenue
	for rows.Next() {
		var row repository.ProductRevenue
		if err := rows.Scan(&row.ProductID, &row.SKU, &row.ProductName, &row.UnitsSold, &row.Revenue); err != nil {
			return nil, fmt.Errorf("analytics.GetTopProducts scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
