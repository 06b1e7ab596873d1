package dto

import "time"

// AddressDTO dirección postal del cliente.
type AddressDTO struct {
	Street     string `json:"street,omitempty" validate:"max=200"`
	City       string `json:"city,omitempty" validate:"max=100"`
	State      string `json:"state" validate:"required,max=100"`
	PostalCode string `json:"postal_code,omitempty" validate:"max=20"`
	Country    string `json:"country,omitempty" validate:"max=100"`
}

// CreateClientRequest body para POST /api/clients.
type CreateClientRequest struct {
	Name     string     `json:"name" validate:"required,min=1,max=200"`
	Email    string     `json:"email" validate:"required,email"`
	Phone    string     `json:"phone,omitempty" validate:"max=30"`
	GSTIN    string     `json:"gstin,omitempty"`
	PAN      string     `json:"pan,omitempty"`
	Address  AddressDTO `json:"address"`
	IsActive *bool      `json:"is_active,omitempty"`
}

// UpdateClientRequest body para PUT /api/clients/:id. Solo se aplican los campos presentes.
type UpdateClientRequest struct {
	Name     *string     `json:"name" validate:"omitempty,min=1,max=200"`
	Email    *string     `json:"email" validate:"omitempty,email"`
	Phone    *string     `json:"phone" validate:"omitempty,max=30"`
	GSTIN    *string     `json:"gstin"`
	PAN      *string     `json:"pan"`
	Address  *AddressDTO `json:"address"`
	IsActive *bool       `json:"is_active"`
}

// ClientResponse cliente en respuestas.
type ClientResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	GSTIN     string     `json:"gstin,omitempty"`
	PAN       string     `json:"pan,omitempty"`
	Address   AddressDTO `json:"address"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ClientListResponse lista paginada de clientes.
type ClientListResponse struct {
	Items []ClientResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
