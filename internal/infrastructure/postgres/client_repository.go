package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/repository"
)

var _ repository.ClientRepository = (*ClientRepo)(nil)

const clientColumns = `id, name, email, phone, gstin, pan,
	address_street, address_city, address_state, address_postal_code, address_country,
	is_active, created_at, updated_at`

// ClientRepo implementación de ClientRepository (usable con pool o tx).
type ClientRepo struct {
	q Querier
}

// NewClientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

// Create persiste un nuevo cliente. El email es único.
func (r *ClientRepo) Create(ctx context.Context, c *entity.Client) error {
	query := `
		INSERT INTO clients (` + clientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, nullIfEmpty(c.GSTIN), nullIfEmpty(c.PAN),
		c.Address.Street, c.Address.City, c.Address.State, c.Address.PostalCode, c.Address.Country,
		c.IsActive, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateError{Entity: "client", Field: "email"}
		}
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID. Devuelve (nil, nil) si no existe.
func (r *ClientRepo) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	c, err := scanClient(r.q.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

// Update reemplaza los campos editables del cliente.
func (r *ClientRepo) Update(ctx context.Context, c *entity.Client) error {
	query := `
		UPDATE clients
		SET name = $2, email = $3, phone = $4, gstin = $5, pan = $6,
		    address_street = $7, address_city = $8, address_state = $9,
		    address_postal_code = $10, address_country = $11,
		    is_active = $12, updated_at = $13
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, nullIfEmpty(c.GSTIN), nullIfEmpty(c.PAN),
		c.Address.Street, c.Address.City, c.Address.State, c.Address.PostalCode, c.Address.Country,
		c.IsActive, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateError{Entity: "client", Field: "email"}
		}
		return fmt.Errorf("update client: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return &domain.NotFoundError{Entity: "client", ID: c.ID}
	}
	return nil
}

// Delete elimina un cliente. La FK de invoices (ON DELETE RESTRICT) lo impide
// si alguna factura lo referencia; en ese caso se devuelve domain.ErrReferenced.
func (r *ClientRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("delete client %s: %w", id, domain.ErrReferenced)
		}
		return fmt.Errorf("delete client: %w", err)
	}
	return nil
}

// List lista clientes por nombre o email, con el total para paginar.
func (r *ClientRepo) List(ctx context.Context, f repository.ClientFilter) ([]*entity.Client, int, error) {
	const where = `
		WHERE ($1 = '' OR name ILIKE $2 OR email ILIKE $2)
		  AND ($3::boolean IS NULL OR is_active = $3)`
	search := f.Search
	pattern := likePattern(search)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM clients`+where, search, pattern, f.Active).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	rows, err := r.q.Query(ctx,
		`SELECT `+clientColumns+` FROM clients`+where+` ORDER BY name ASC, id ASC LIMIT $4 OFFSET $5`,
		search, pattern, f.Active, f.Limit, f.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()
	var list []*entity.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan client: %w", err)
		}
		list = append(list, c)
	}
	return list, total, rows.Err()
}

func scanClient(row pgx.Row) (*entity.Client, error) {
	var c entity.Client
	var gstin, pan *string
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &gstin, &pan,
		&c.Address.Street, &c.Address.City, &c.Address.State, &c.Address.PostalCode, &c.Address.Country,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.GSTIN = derefStr(gstin)
	c.PAN = derefStr(pan)
	return &c, nil
}
