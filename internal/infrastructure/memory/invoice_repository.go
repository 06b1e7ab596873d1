package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación en memoria de repository.InvoiceRepository.
type InvoiceRepo struct {
	s    *Store
	undo *undoLog // no nil dentro de TxRunner.RunInvoice
}

func (r *InvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.invoices {
		if other.InvoiceNumber == inv.InvoiceNumber {
			return &domain.DuplicateError{Entity: "invoice", Field: "invoice_number"}
		}
	}
	if _, ok := r.s.clients[inv.ClientID]; !ok {
		return &domain.NotFoundError{Entity: "client", ID: inv.ClientID}
	}
	r.undo.touchInvoice(r.s, inv.ID)
	r.s.invoices[inv.ID] = cloneInvoice(inv)
	return nil
}

func (r *InvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, nil
	}
	return cloneInvoice(inv), nil
}

func (r *InvoiceRepo) GetByIDs(_ context.Context, ids []string) ([]*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Invoice, 0, len(ids))
	for _, id := range ids {
		if inv, ok := r.s.invoices[id]; ok {
			out = append(out, cloneInvoice(inv))
		}
	}
	return out, nil
}

// Update reemplaza todo menos status e invoice_number. Rechaza facturas pagadas
// con el estado vigente al escribir, no el que leyó el llamador.
func (r *InvoiceRepo) Update(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failInvoiceUpdate != nil {
		if r.s.failAfter == 0 {
			return r.s.failInvoiceUpdate
		}
		r.s.failAfter--
	}
	cur, err := r.writable(inv.ID, "actualizar")
	if err != nil {
		return err
	}
	if _, ok := r.s.clients[inv.ClientID]; !ok {
		return &domain.NotFoundError{Entity: "client", ID: inv.ClientID}
	}
	r.undo.touchInvoice(r.s, inv.ID)
	next := cloneInvoice(inv)
	next.Status = cur.Status
	next.InvoiceNumber = cur.InvoiceNumber
	next.CreatedAt = cur.CreatedAt
	r.s.invoices[inv.ID] = next
	return nil
}

func (r *InvoiceRepo) UpdateStatus(_ context.Context, id string, from, to entity.InvoiceStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok || inv.Status != from {
		return false, nil
	}
	r.undo.touchInvoice(r.s, id)
	inv.Status = to
	inv.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *InvoiceRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, err := r.writable(id, "eliminar"); err != nil {
		return err
	}
	r.undo.touchInvoice(r.s, id)
	delete(r.s.invoices, id)
	return nil
}

// writable devuelve la fila actual si existe y no está pagada. El llamador tiene s.mu.
func (r *InvoiceRepo) writable(id, action string) (*entity.Invoice, error) {
	cur, ok := r.s.invoices[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "invoice", ID: id}
	}
	if cur.Status == entity.InvoiceStatusPaid {
		return nil, &domain.ImmutableStateError{ID: id, Status: string(cur.Status), Action: action}
	}
	return cur, nil
}

func (r *InvoiceRepo) List(_ context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Invoice
	for _, inv := range r.s.invoices {
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		if f.ClientID != "" && inv.ClientID != f.ClientID {
			continue
		}
		out = append(out, cloneInvoice(inv))
	}
	sortInvoices(out)
	return paginate(out, f.Limit, f.Offset), len(out), nil
}

func (r *InvoiceRepo) CountByClient(_ context.Context, clientID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, inv := range r.s.invoices {
		if inv.ClientID == clientID {
			n++
		}
	}
	return n, nil
}

// CountByProduct cuenta facturas, no líneas.
func (r *InvoiceRepo) CountByProduct(_ context.Context, productID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, inv := range r.s.invoices {
		for _, it := range inv.Items {
			if it.ProductID == productID {
				n++
				break
			}
		}
	}
	return n, nil
}

func (r *InvoiceRepo) ListOverdueCandidates(_ context.Context, asOf time.Time, limit int) ([]*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Invoice
	for _, inv := range r.s.invoices {
		if inv.Status == entity.InvoiceStatusSent && inv.DueDate.Before(asOf) {
			out = append(out, cloneInvoice(inv))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, limit, 0), nil
}
