package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultHSNCode clasificación arancelaria por defecto de un producto.
const DefaultHSNCode = "6109"

// Product representa un producto facturable.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	SKU         string // opcional; único y en mayúsculas cuando existe
	HSNCode     string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
