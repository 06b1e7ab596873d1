package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/invoicing"
	"github.com/jhoicas/billing-api/internal/domain/repository"
)

// IntegrityGuard bloquea borrados que dejarían facturas apuntando a nada.
//
// Las verificaciones son leer-y-actuar sobre el estado persistido: una factura
// creada entre el conteo y el borrado no se detecta aquí. Para clientes la FK
// invoices.client_id (ON DELETE RESTRICT) cubre esa ventana; para productos la
// referencia vive dentro del JSONB de líneas y la carrera queda aceptada.
type IntegrityGuard struct {
	invoiceRepo repository.InvoiceRepository
}

// NewIntegrityGuard construye el guardián sobre el repositorio de facturas.
func NewIntegrityGuard(invoiceRepo repository.InvoiceRepository) *IntegrityGuard {
	return &IntegrityGuard{invoiceRepo: invoiceRepo}
}

// CheckClientDeletable falla con ReferencedEntityError si alguna factura usa el cliente.
func (g *IntegrityGuard) CheckClientDeletable(ctx context.Context, clientID string) error {
	n, err := g.invoiceRepo.CountByClient(ctx, clientID)
	if err != nil {
		return fmt.Errorf("contar facturas del cliente: %w", err)
	}
	if n > 0 {
		return &domain.ReferencedEntityError{Entity: "client", ID: clientID, Count: n}
	}
	return nil
}

// CheckProductDeletable falla con ReferencedEntityError si alguna factura tiene
// una línea del producto. Count es el número de facturas, no de líneas.
func (g *IntegrityGuard) CheckProductDeletable(ctx context.Context, productID string) error {
	n, err := g.invoiceRepo.CountByProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("contar facturas del producto: %w", err)
	}
	if n > 0 {
		return &domain.ReferencedEntityError{Entity: "product", ID: productID, Count: n}
	}
	return nil
}

// CheckInvoiceDeletable una factura pagada no se borra.
func CheckInvoiceDeletable(inv *entity.Invoice) error {
	if invoicing.IsTerminal(inv.Status) {
		return &domain.ImmutableStateError{ID: inv.ID, Status: string(inv.Status), Action: "eliminar"}
	}
	return nil
}
