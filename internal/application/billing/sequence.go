package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/billing-api/internal/domain/invoicing"
	"github.com/jhoicas/billing-api/internal/domain/repository"
)

// NextInvoiceNumber reserva el siguiente consecutivo del año y lo formatea
// (INV-2026-0001). El incremento ocurre en una sola operación del repositorio;
// aquí nunca se lee-y-escribe el contador.
//
// Debe llamarse con el SequenceRepository de la misma transacción que inserta la
// factura: si la transacción hace rollback el número no se consume.
func NextInvoiceNumber(ctx context.Context, seq repository.SequenceRepository, year int) (string, error) {
	n, err := seq.Next(ctx, year)
	if err != nil {
		return "", fmt.Errorf("asignar consecutivo %d: %w", year, err)
	}
	if n < 1 {
		return "", fmt.Errorf("asignar consecutivo %d: valor inesperado %d", year, n)
	}
	return invoicing.FormatInvoiceNumber(year, n), nil
}
