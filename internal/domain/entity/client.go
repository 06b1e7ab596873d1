package entity

import "time"

// Address dirección postal embebida en el cliente.
type Address struct {
	Street     string
	City       string
	State      string // estado/región; se compara con el estado sede para la jurisdicción fiscal
	PostalCode string
	Country    string
}

// Client representa un cliente al que se le emiten facturas.
type Client struct {
	ID        string
	Name      string
	Email     string // único
	Phone     string
	GSTIN     string // opcional, 15 caracteres
	PAN       string // opcional, 10 caracteres
	Address   Address
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
