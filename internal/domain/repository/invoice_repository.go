package repository

import (
	"context"
	"time"

	"github.com/jhoicas/billing-api/internal/domain/entity"
)

// InvoiceFilter filtros para el listado de facturas.
type InvoiceFilter struct {
	Status   entity.InvoiceStatus
	ClientID string
	Limit    int
	Offset   int
}

// InvoiceRepository puerto de persistencia para facturas. Las líneas viajan
// embebidas en la factura (documento único).
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// GetByIDs devuelve solo las facturas existentes entre ids.
	GetByIDs(ctx context.Context, ids []string) ([]*entity.Invoice, error)
	// Update no toca status ni invoice_number. Si la factura está pagada al
	// momento de escribir devuelve *domain.ImmutableStateError; si no existe,
	// *domain.NotFoundError.
	Update(ctx context.Context, invoice *entity.Invoice) error
	// UpdateStatus cambia el estado solo si el actual sigue siendo from.
	// Devuelve false si otra petición lo cambió antes.
	UpdateStatus(ctx context.Context, id string, from, to entity.InvoiceStatus) (bool, error)
	// Delete aplica la misma guarda que Update sobre el estado vigente.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter InvoiceFilter) ([]*entity.Invoice, int, error)

	// CountByClient número de facturas cuyo client_id es clientID.
	CountByClient(ctx context.Context, clientID string) (int64, error)
	// CountByProduct número de facturas con al menos una línea del producto.
	CountByProduct(ctx context.Context, productID string) (int64, error)
	// ListOverdueCandidates facturas en estado sent con due_date anterior a asOf.
	ListOverdueCandidates(ctx context.Context, asOf time.Time, limit int) ([]*entity.Invoice, error)
}
