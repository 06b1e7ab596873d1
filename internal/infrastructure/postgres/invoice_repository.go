package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

const invoiceColumns = `id, invoice_number, client_id, invoice_date, due_date, status, items,
	tax_jurisdiction, subtotal, cgst, sgst, igst, total_tax, total_amount, notes,
	created_at, updated_at`

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
// Las líneas se guardan como JSONB en la misma fila: la factura es un documento.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la factura con sus líneas.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.InvoiceNumber, inv.ClientID, inv.InvoiceDate, inv.DueDate, inv.Status, inv.Items,
		inv.TaxJurisdiction, inv.Subtotal, inv.CGST, inv.SGST, inv.IGST, inv.TotalTax, inv.TotalAmount, inv.Notes,
		inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return invoiceWriteError("insert invoice", inv, err)
	}
	return nil
}

// GetByID obtiene una factura completa por ID. Devuelve (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetByIDs devuelve las facturas existentes entre ids en una sola consulta.
func (r *InvoiceRepo) GetByIDs(ctx context.Context, ids []string) ([]*entity.Invoice, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.queryInvoices(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id::text = ANY($1)`, ids)
}

// Update reescribe cliente, fechas, líneas, montos y notas. No toca status ni
// invoice_number: el estado solo cambia por UpdateStatus. Una factura pagada no
// se reescribe aunque haya pasado a paid después de que el llamador la leyó.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET client_id        = $2,
		    invoice_date     = $3,
		    due_date         = $4,
		    items            = $5,
		    tax_jurisdiction = $6,
		    subtotal         = $7,
		    cgst             = $8,
		    sgst             = $9,
		    igst             = $10,
		    total_tax        = $11,
		    total_amount     = $12,
		    notes            = $13,
		    updated_at       = $14
		WHERE id = $1 AND status <> 'paid'`
	cmd, err := r.q.Exec(ctx, query,
		inv.ID, inv.ClientID, inv.InvoiceDate, inv.DueDate, inv.Items, inv.TaxJurisdiction,
		inv.Subtotal, inv.CGST, inv.SGST, inv.IGST, inv.TotalTax, inv.TotalAmount, inv.Notes,
		inv.UpdatedAt,
	)
	if err != nil {
		return invoiceWriteError("update invoice", inv, err)
	}
	if cmd.RowsAffected() == 0 {
		return r.missedWrite(ctx, inv.ID, "actualizar")
	}
	return nil
}

// UpdateStatus compare-and-set del estado: solo escribe si el estado actual sigue siendo from.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, id string, from, to entity.InvoiceStatus) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`UPDATE invoices SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		return false, fmt.Errorf("update invoice status: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// Delete elimina una factura por ID salvo que esté pagada.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1 AND status <> 'paid'`, id)
	if err != nil {
		if isInvalidText(err) {
			return &domain.NotFoundError{Entity: "invoice", ID: id}
		}
		return fmt.Errorf("delete invoice: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return r.missedWrite(ctx, id, "eliminar")
	}
	return nil
}

// missedWrite explica un UPDATE/DELETE que no afectó filas: la factura ya está
// pagada o no existe.
func (r *InvoiceRepo) missedWrite(ctx context.Context, id, action string) error {
	var status string
	err := r.q.QueryRow(ctx, `SELECT status FROM invoices WHERE id = $1`, id).Scan(&status)
	switch {
	case err == nil && status == string(entity.InvoiceStatusPaid):
		return &domain.ImmutableStateError{ID: id, Status: status, Action: action}
	case err == nil:
		return fmt.Errorf("%s invoice %s: no rows affected (status %s)", action, id, status)
	case errors.Is(err, pgx.ErrNoRows) || isInvalidText(err):
		return &domain.NotFoundError{Entity: "invoice", ID: id}
	default:
		return fmt.Errorf("recheck invoice: %w", err)
	}
}

// invoiceWriteError traduce las violaciones de constraint del INSERT/UPDATE de facturas.
func invoiceWriteError(op string, inv *entity.Invoice, err error) error {
	switch constraintName(err) {
	case "invoices_invoice_number_key":
		return &domain.DuplicateError{Entity: "invoice", Field: "invoice_number"}
	case "invoices_due_after_issue":
		return domain.NewValidationError("due_date", "debe ser posterior a invoice_date")
	}
	if isUniqueViolation(err) {
		return &domain.DuplicateError{Entity: "invoice", Field: "invoice_number"}
	}
	if isForeignKeyViolation(err) {
		return &domain.NotFoundError{Entity: "client", ID: inv.ClientID}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// List lista facturas por estado y/o cliente, más recientes primero.
func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	const where = `
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR client_id::text = $2)`

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM invoices`+where,
		string(f.Status), f.ClientID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}
	list, err := r.queryInvoices(ctx,
		`SELECT `+invoiceColumns+` FROM invoices`+where+
			` ORDER BY invoice_date DESC, invoice_number DESC LIMIT $3 OFFSET $4`,
		string(f.Status), f.ClientID, f.Limit, f.Offset,
	)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// CountByClient número de facturas del cliente.
func (r *InvoiceRepo) CountByClient(ctx context.Context, clientID string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM invoices WHERE client_id::text = $1`, clientID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count invoices by client: %w", err)
	}
	return n, nil
}

// CountByProduct número de facturas con al menos una línea del producto
// (contención JSONB, usa el índice GIN sobre items).
func (r *InvoiceRepo) CountByProduct(ctx context.Context, productID string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM invoices
		 WHERE items @> jsonb_build_array(jsonb_build_object('product_id', $1::text))`,
		productID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count invoices by product: %w", err)
	}
	return n, nil
}

// ListOverdueCandidates facturas sent con due_date anterior a asOf, las más antiguas primero.
func (r *InvoiceRepo) ListOverdueCandidates(ctx context.Context, asOf time.Time, limit int) ([]*entity.Invoice, error) {
	return r.queryInvoices(ctx,
		`SELECT `+invoiceColumns+` FROM invoices
		 WHERE status = 'sent' AND due_date < $1::date
		 ORDER BY due_date ASC, id ASC
		 LIMIT $2`,
		asOf, limit,
	)
}

func (r *InvoiceRepo) queryInvoices(ctx context.Context, query string, args ...any) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.ClientID, &inv.InvoiceDate, &inv.DueDate, &inv.Status, &inv.Items,
		&inv.TaxJurisdiction, &inv.Subtotal, &inv.CGST, &inv.SGST, &inv.IGST, &inv.TotalTax, &inv.TotalAmount, &inv.Notes,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
