package repository

import (
	"context"

	"github.com/jhoicas/billing-api/internal/domain/entity"
)

// ProductFilter filtros para el listado de productos.
type ProductFilter struct {
	Search   string
	Category string
	Active   *bool
	Limit    int
	Offset   int
}

// ProductRepository puerto de persistencia para productos.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetByIDs consulta de existencia en lote; devuelve solo los que existen.
	GetByIDs(ctx context.Context, ids []string) ([]*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, int, error)
}
