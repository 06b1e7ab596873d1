package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/billing-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contador de numeración por año sobre la tabla invoice_sequences.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa y devuelve el contador del año en una sola sentencia.
// La fila del año se bloquea hasta el fin de la transacción del llamador, así
// dos creaciones concurrentes nunca leen el mismo valor.
func (r *SequenceRepo) Next(ctx context.Context, year int) (int64, error) {
	const query = `
		INSERT INTO invoice_sequences (year, last_value, updated_at)
		VALUES ($1, 1, now())
		ON CONFLICT (year) DO UPDATE
		SET last_value = invoice_sequences.last_value + 1,
		    updated_at = now()
		RETURNING last_value`
	var n int64
	if err := r.q.QueryRow(ctx, query, year).Scan(&n); err != nil {
		return 0, fmt.Errorf("next invoice sequence: %w", err)
	}
	return n, nil
}
