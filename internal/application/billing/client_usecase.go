package billing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/billing-api/internal/application/dto"
	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/invoicing"
	"github.com/jhoicas/billing-api/internal/domain/repository"
)

// ClientUseCase casos de uso para clientes (facturación).
type ClientUseCase struct {
	repo  repository.ClientRepository
	guard *IntegrityGuard
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(repo repository.ClientRepository, guard *IntegrityGuard) *ClientUseCase {
	return &ClientUseCase{repo: repo, guard: guard}
}

// Create crea un nuevo cliente. GSTIN y PAN son opcionales pero, si vienen, deben tener formato válido.
func (uc *ClientUseCase) Create(ctx context.Context, in dto.CreateClientRequest) (*dto.ClientResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.NewValidationError("name", "requerido")
	}
	if strings.TrimSpace(in.Email) == "" {
		return nil, domain.NewValidationError("email", "requerido")
	}
	if strings.TrimSpace(in.Address.State) == "" {
		return nil, domain.NewValidationError("address.state", "requerido")
	}
	gstin := invoicing.NormalizeTaxID(in.GSTIN)
	if err := invoicing.ValidateGSTIN(gstin); err != nil {
		return nil, err
	}
	pan := invoicing.NormalizeTaxID(in.PAN)
	if err := invoicing.ValidatePAN(pan); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	client := &entity.Client{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     strings.TrimSpace(in.Phone),
		GSTIN:     gstin,
		PAN:       pan,
		Address:   fromAddressDTO(in.Address),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.IsActive != nil {
		client.IsActive = *in.IsActive
	}
	if err := uc.repo.Create(ctx, client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// GetByID obtiene un cliente.
func (uc *ClientUseCase) GetByID(ctx context.Context, id string) (*dto.ClientResponse, error) {
	c, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toClientResponse(c), nil
}

// Update aplica los campos presentes.
func (uc *ClientUseCase) Update(ctx context.Context, id string, in dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	c, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.NewValidationError("name", "no puede quedar vacío")
		}
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		if strings.TrimSpace(*in.Email) == "" {
			return nil, domain.NewValidationError("email", "no puede quedar vacío")
		}
		c.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		c.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.GSTIN != nil {
		gstin := invoicing.NormalizeTaxID(*in.GSTIN)
		if err := invoicing.ValidateGSTIN(gstin); err != nil {
			return nil, err
		}
		c.GSTIN = gstin
	}
	if in.PAN != nil {
		pan := invoicing.NormalizeTaxID(*in.PAN)
		if err := invoicing.ValidatePAN(pan); err != nil {
			return nil, err
		}
		c.PAN = pan
	}
	if in.Address != nil {
		if strings.TrimSpace(in.Address.State) == "" {
			return nil, domain.NewValidationError("address.state", "requerido")
		}
		c.Address = fromAddressDTO(*in.Address)
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	c.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return toClientResponse(c), nil
}

// Delete elimina el cliente si ninguna factura lo referencia.
func (uc *ClientUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.get(ctx, id); err != nil {
		return err
	}
	if err := uc.guard.CheckClientDeletable(ctx, id); err != nil {
		return err
	}
	err := uc.repo.Delete(ctx, id)
	if errors.Is(err, domain.ErrReferenced) {
		// Una factura llegó entre el conteo y el borrado: la FK lo detuvo.
		if cerr := uc.guard.CheckClientDeletable(ctx, id); cerr != nil {
			return cerr
		}
	}
	return err
}

// List lista clientes con búsqueda por nombre/email.
func (uc *ClientUseCase) List(ctx context.Context, search string, active *bool, page dto.PageRequest) (*dto.ClientListResponse, error) {
	page.DefaultPage()
	list, total, err := uc.repo.List(ctx, repository.ClientFilter{
		Search: strings.TrimSpace(search),
		Active: active,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.ClientListResponse{
		Items: make([]dto.ClientResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, c := range list {
		out.Items = append(out.Items, *toClientResponse(c))
	}
	return out, nil
}

func (uc *ClientUseCase) get(ctx context.Context, id string) (*entity.Client, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &domain.NotFoundError{Entity: "client", ID: id}
	}
	return c, nil
}

func toClientResponse(c *entity.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		GSTIN:     c.GSTIN,
		PAN:       c.PAN,
		Address:   toAddressDTO(c.Address),
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toAddressDTO(a entity.Address) dto.AddressDTO {
	return dto.AddressDTO{
		Street:     a.Street,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

func fromAddressDTO(a dto.AddressDTO) entity.Address {
	return entity.Address{
		Street:     strings.TrimSpace(a.Street),
		City:       strings.TrimSpace(a.City),
		State:      strings.TrimSpace(a.State),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
	}
}
