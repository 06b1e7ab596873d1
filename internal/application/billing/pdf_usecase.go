package billing

import (
	"context"
	"fmt"
)

// PDFUseCase genera la representación gráfica (PDF) de una factura.
// Es solo lectura: consume la factura materializada por el motor.
type PDFUseCase struct {
	invoices  *InvoiceUseCase
	generator InvoicePDFGenerator
	issuer    Issuer
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(invoices *InvoiceUseCase, generator InvoicePDFGenerator, issuer Issuer) *PDFUseCase {
	return &PDFUseCase{invoices: invoices, generator: generator, issuer: issuer}
}

// DownloadInvoicePDF recupera la factura con cliente y productos y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - *domain.NotFoundError      si la factura no existe.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, invoiceID string) (pdfBytes []byte, filename string, err error) {
	// ── 1. Factura materializada ──────────────────────────────────────────────
	inv, err := uc.invoices.Get(ctx, invoiceID)
	if err != nil {
		return nil, "", err
	}

	// ── 2. Generar PDF ────────────────────────────────────────────────────────
	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, uc.issuer, inv)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}

	filename = fmt.Sprintf("%s.pdf", inv.InvoiceNumber)
	return pdfBytes, filename, nil
}
