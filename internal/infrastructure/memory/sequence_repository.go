package memory

import (
	"context"

	"github.com/jhoicas/billing-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contador por año protegido por el mutex del store.
type SequenceRepo struct {
	s    *Store
	undo *undoLog // no nil dentro de TxRunner.RunInvoice
}

func (r *SequenceRepo) Next(_ context.Context, year int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.undo.touchSequence(r.s, year)
	r.s.sequences[year]++
	return r.s.sequences[year], nil
}
