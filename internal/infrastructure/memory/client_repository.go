package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/repository"
)

var _ repository.ClientRepository = (*ClientRepo)(nil)

// ClientRepo implementación en memoria de repository.ClientRepository.
type ClientRepo struct {
	s *Store
}

func (r *ClientRepo) Create(_ context.Context, c *entity.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.emailTaken(c.Email, c.ID) {
		return &domain.DuplicateError{Entity: "client", Field: "email"}
	}
	r.s.clients[c.ID] = cloneClient(c)
	return nil
}

func (r *ClientRepo) GetByID(_ context.Context, id string) (*entity.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[id]
	if !ok {
		return nil, nil
	}
	return cloneClient(c), nil
}

func (r *ClientRepo) Update(_ context.Context, c *entity.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clients[c.ID]; !ok {
		return &domain.NotFoundError{Entity: "client", ID: c.ID}
	}
	if r.emailTaken(c.Email, c.ID) {
		return &domain.DuplicateError{Entity: "client", Field: "email"}
	}
	r.s.clients[c.ID] = cloneClient(c)
	return nil
}

// Delete emula ON DELETE RESTRICT de invoices.client_id.
func (r *ClientRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.invoices {
		if inv.ClientID == id {
			return fmt.Errorf("delete client %s: %w", id, domain.ErrReferenced)
		}
	}
	delete(r.s.clients, id)
	return nil
}

func (r *ClientRepo) List(_ context.Context, f repository.ClientFilter) ([]*entity.Client, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Client
	for _, c := range r.s.clients {
		if f.Search != "" && !containsFold(c.Name, f.Search) && !containsFold(c.Email, f.Search) {
			continue
		}
		if f.Active != nil && c.IsActive != *f.Active {
			continue
		}
		out = append(out, cloneClient(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, f.Limit, f.Offset), len(out), nil
}

func (r *ClientRepo) emailTaken(email, exceptID string) bool {
	for id, c := range r.s.clients {
		if id != exceptID && c.Email == email {
			return true
		}
	}
	return false
}
