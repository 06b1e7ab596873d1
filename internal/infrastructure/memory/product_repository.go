package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación en memoria de repository.ProductRepository.
type ProductRepo struct {
	s *Store
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.skuTaken(p.SKU, p.ID) {
		return &domain.DuplicateError{Entity: "product", Field: "sku"}
	}
	r.s.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return cloneProduct(p), nil
}

func (r *ProductRepo) GetByIDs(_ context.Context, ids []string) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; !ok {
		return &domain.NotFoundError{Entity: "product", ID: p.ID}
	}
	if r.skuTaken(p.SKU, p.ID) {
		return &domain.DuplicateError{Entity: "product", Field: "sku"}
	}
	r.s.products[p.ID] = cloneProduct(p)
	return nil
}

// Delete no verifica referencias: las líneas de factura no tienen FK.
func (r *ProductRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.products, id)
	return nil
}

func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.s.products {
		if f.Search != "" && !containsFold(p.Name, f.Search) && !containsFold(p.SKU, f.Search) {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Active != nil && p.IsActive != *f.Active {
			continue
		}
		out = append(out, cloneProduct(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, f.Limit, f.Offset), len(out), nil
}

// skuTaken índice único parcial: los SKU vacíos no colisionan.
func (r *ProductRepo) skuTaken(sku, exceptID string) bool {
	if sku == "" {
		return false
	}
	for id, p := range r.s.products {
		if id != exceptID && p.SKU == sku {
			return true
		}
	}
	return false
}
