package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo agregados del dashboard calculados sobre el store.
type AnalyticsRepo struct {
	s *Store
}

func (r *AnalyticsRepo) GetStatusTotals(_ context.Context) ([]repository.StatusTotal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	acc := map[entity.InvoiceStatus]*repository.StatusTotal{}
	for _, inv := range r.s.invoices {
		st, ok := acc[inv.Status]
		if !ok {
			st = &repository.StatusTotal{Status: string(inv.Status), Amount: decimal.Zero}
			acc[inv.Status] = st
		}
		st.Count++
		st.Amount = st.Amount.Add(inv.TotalAmount)
	}
	out := make([]repository.StatusTotal, 0, len(acc))
	for _, st := range acc {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

func (r *AnalyticsRepo) GetRevenue(_ context.Context, start, end time.Time) (decimal.Decimal, decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	invoiced, collected := decimal.Zero, decimal.Zero
	for _, inv := range r.s.invoices {
		if !inRange(inv.InvoiceDate, start, end) {
			continue
		}
		invoiced = invoiced.Add(inv.TotalAmount)
		if inv.Status == entity.InvoiceStatusPaid {
			collected = collected.Add(inv.TotalAmount)
		}
	}
	return invoiced, collected, nil
}

func (r *AnalyticsRepo) GetTopClients(_ context.Context, start, end time.Time, limit int) ([]repository.ClientRevenue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	acc := map[string]*repository.ClientRevenue{}
	for _, inv := range r.s.invoices {
		if !inRange(inv.InvoiceDate, start, end) {
			continue
		}
		cr, ok := acc[inv.ClientID]
		if !ok {
			cr = &repository.ClientRevenue{ClientID: inv.ClientID, TotalAmount: decimal.Zero}
			if c, ok := r.s.clients[inv.ClientID]; ok {
				cr.ClientName = c.Name
			}
			acc[inv.ClientID] = cr
		}
		cr.InvoiceCount++
		cr.TotalAmount = cr.TotalAmount.Add(inv.TotalAmount)
	}
	out := make([]repository.ClientRevenue, 0, len(acc))
	for _, cr := range acc {
		out = append(out, *cr)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].TotalAmount.Cmp(out[j].TotalAmount); c != 0 {
			return c > 0
		}
		return out[i].ClientID < out[j].ClientID
	})
	return paginate(out, limit, 0), nil
}

func (r *AnalyticsRepo) GetTopProducts(_ context.Context, start, end time.Time, limit int) ([]repository.ProductRevenue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	acc := map[string]*repository.ProductRevenue{}
	for _, inv := range r.s.invoices {
		if !inRange(inv.InvoiceDate, start, end) {
			continue
		}
		for _, it := range inv.Items {
			pr, ok := acc[it.ProductID]
			if !ok {
				pr = &repository.ProductRevenue{ProductID: it.ProductID, Revenue: decimal.Zero}
				if p, ok := r.s.products[it.ProductID]; ok {
					pr.SKU = p.SKU
					pr.ProductName = p.Name
				}
				acc[it.ProductID] = pr
			}
			pr.UnitsSold += it.Quantity
			pr.Revenue = pr.Revenue.Add(it.LineTotal)
		}
	}
	out := make([]repository.ProductRevenue, 0, len(acc))
	for _, pr := range acc {
		out = append(out, *pr)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].ProductID < out[j].ProductID
	})
	return paginate(out, limit, 0), nil
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
