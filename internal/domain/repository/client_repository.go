package repository

import (
	"context"

	"github.com/jhoicas/billing-api/internal/domain/entity"
)

// ClientFilter filtros para el listado de clientes.
type ClientFilter struct {
	Search string // coincide con nombre o email (ILIKE)
	Active *bool
	Limit  int
	Offset int
}

// ClientRepository puerto de persistencia para clientes.
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id string) (*entity.Client, error)
	Update(ctx context.Context, client *entity.Client) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ClientFilter) ([]*entity.Client, int, error)
}
