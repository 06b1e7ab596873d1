package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus estado de una factura (enum cerrado).
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// Valid indica si s es uno de los estados conocidos.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// TaxJurisdiction determina el reparto del impuesto (CGST+SGST o IGST).
type TaxJurisdiction string

const (
	JurisdictionInState  TaxJurisdiction = "in-state"
	JurisdictionOutState TaxJurisdiction = "out-state"
)

// Valid indica si j es una jurisdicción conocida.
func (j TaxJurisdiction) Valid() bool {
	return j == JurisdictionInState || j == JurisdictionOutState
}

// ItemSize talla de una línea de factura.
type ItemSize string

const (
	SizeXS   ItemSize = "XS"
	SizeS    ItemSize = "S"
	SizeM    ItemSize = "M"
	SizeL    ItemSize = "L"
	SizeXL   ItemSize = "XL"
	SizeXXL  ItemSize = "XXL"
	SizeXXXL ItemSize = "XXXL"
	Size4XL  ItemSize = "4XL"
	SizeFree ItemSize = "FREE"
)

// ItemSizes todas las tallas admitidas, en orden.
var ItemSizes = []ItemSize{SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL, SizeXXXL, Size4XL, SizeFree}

// Valid indica si s es una talla admitida.
func (s ItemSize) Valid() bool {
	for _, v := range ItemSizes {
		if v == s {
			return true
		}
	}
	return false
}

// InvoiceItem línea de factura. La factura es dueña de sus líneas (documento embebido).
type InvoiceItem struct {
	ProductID string          `json:"product_id"`
	Size      ItemSize        `json:"size"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Invoice cabecera de factura con sus líneas y los montos derivados.
// Subtotal, CGST, SGST, IGST, TotalTax y TotalAmount se recalculan siempre
// desde Items y TaxJurisdiction; nunca se aceptan como entrada.
type Invoice struct {
	ID              string
	InvoiceNumber   string
	ClientID        string
	InvoiceDate     time.Time
	DueDate         time.Time
	Status          InvoiceStatus
	Items           []InvoiceItem
	TaxJurisdiction TaxJurisdiction
	Subtotal        decimal.Decimal
	CGST            decimal.Decimal
	SGST            decimal.Decimal
	IGST            decimal.Decimal
	TotalTax        decimal.Decimal
	TotalAmount     decimal.Decimal
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ProductIDs devuelve los IDs de producto referenciados por las líneas, sin repetir.
func (inv *Invoice) ProductIDs() []string {
	seen := make(map[string]struct{}, len(inv.Items))
	ids := make([]string, 0, len(inv.Items))
	for _, it := range inv.Items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	return ids
}
