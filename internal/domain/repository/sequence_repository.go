package repository

import "context"

// SequenceRepository contador atómico de numeración por año.
type SequenceRepository interface {
	// Next incrementa y devuelve el contador del año en una sola operación
	// indivisible de la base de datos.
	Next(ctx context.Context, year int) (int64, error)
}
