package billing

import (
	"context"

	"github.com/jhoicas/billing-api/internal/application/dto"
	"github.com/jhoicas/billing-api/internal/domain/repository"
)

// InvoiceTxRunner ejecuta una función dentro de una transacción que incluye el
// repositorio de facturas y el contador de secuencias. Si fn retorna error se hace rollback.
type InvoiceTxRunner interface {
	RunInvoice(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		seqRepo repository.SequenceRepository,
	) error) error
}

// Issuer datos del emisor impresos en la cabecera del PDF.
type Issuer struct {
	Name    string
	GSTIN   string
	Address string
	State   string
}

// InvoicePDFGenerator genera la representación gráfica de una factura materializada.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, issuer Issuer, inv *dto.InvoiceResponse) ([]byte, error)
}
