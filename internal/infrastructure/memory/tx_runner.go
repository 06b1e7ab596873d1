package memory

import (
	"context"

	"github.com/jhoicas/billing-api/internal/application/billing"
	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/repository"
)

var _ billing.InvoiceTxRunner = (*TxRunner)(nil)

// TxRunner serializa las transacciones y, si fn falla, deshace solo las filas
// que fn escribió. Las escrituras hechas fuera de la transacción sobreviven.
type TxRunner struct {
	s *Store
}

func (t *TxRunner) RunInvoice(ctx context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	undo := newUndoLog()
	err := fn(&InvoiceRepo{s: t.s, undo: undo}, &SequenceRepo{s: t.s, undo: undo})
	if err != nil {
		undo.rollback(t.s)
		return err
	}
	return nil
}

// undoLog imagen previa de cada factura y año de secuencia escritos en la
// transacción. Un valor nil indica que la fila no existía.
type undoLog struct {
	invoices  map[string]*entity.Invoice
	sequences map[int]*int64
}

func newUndoLog() *undoLog {
	return &undoLog{
		invoices:  map[string]*entity.Invoice{},
		sequences: map[int]*int64{},
	}
}

// touchInvoice guarda la imagen previa de id la primera vez que se escribe.
// El llamador tiene s.mu.
func (u *undoLog) touchInvoice(s *Store, id string) {
	if u == nil {
		return
	}
	if _, seen := u.invoices[id]; seen {
		return
	}
	if cur, ok := s.invoices[id]; ok {
		u.invoices[id] = cloneInvoice(cur)
	} else {
		u.invoices[id] = nil
	}
}

// touchSequence igual que touchInvoice para el contador de un año.
func (u *undoLog) touchSequence(s *Store, year int) {
	if u == nil {
		return
	}
	if _, seen := u.sequences[year]; seen {
		return
	}
	if v, ok := s.sequences[year]; ok {
		u.sequences[year] = &v
	} else {
		u.sequences[year] = nil
	}
}

func (u *undoLog) rollback(s *Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, prev := range u.invoices {
		if prev == nil {
			delete(s.invoices, id)
			continue
		}
		s.invoices[id] = prev
	}
	for year, prev := range u.sequences {
		if prev == nil {
			delete(s.sequences, year)
			continue
		}
		s.sequences[year] = *prev
	}
}
