package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout formato de fechas de factura en la API.
const DateLayout = "2006-01-02"

// InvoiceItemRequest línea de factura.
type InvoiceItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Size      string          `json:"size" validate:"required,oneof=XS S M L XL XXL XXXL 4XL FREE"`
	Quantity  int64           `json:"quantity" validate:"min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateInvoiceRequest body para POST /api/invoices.
// Los montos derivados no se aceptan como entrada; el estado inicial es siempre draft.
type CreateInvoiceRequest struct {
	ClientID        string               `json:"client_id" validate:"required"`
	InvoiceDate     string               `json:"invoice_date" validate:"required,datetime=2006-01-02"`
	DueDate         string               `json:"due_date" validate:"required,datetime=2006-01-02"`
	Items           []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
	TaxJurisdiction string               `json:"tax_jurisdiction,omitempty" validate:"omitempty,oneof=in-state out-state"`
	Notes           string               `json:"notes,omitempty" validate:"max=2000"`
}

// UpdateInvoiceRequest body para PUT /api/invoices/:id. Nil = campo ausente.
type UpdateInvoiceRequest struct {
	ClientID        *string               `json:"client_id" validate:"omitempty,min=1"`
	InvoiceDate     *string               `json:"invoice_date" validate:"omitempty,datetime=2006-01-02"`
	DueDate         *string               `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Items           *[]InvoiceItemRequest `json:"items" validate:"omitempty,min=1,dive"`
	TaxJurisdiction *string               `json:"tax_jurisdiction" validate:"omitempty,oneof=in-state out-state"`
	Notes           *string               `json:"notes" validate:"omitempty,max=2000"`
}

// ChangeStatusRequest body para PATCH /api/invoices/:id/status.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft sent paid overdue"`
}

// BulkInvoicePatch campos aplicables en lote.
type BulkInvoicePatch struct {
	Status  *string `json:"status" validate:"omitempty,oneof=draft sent paid overdue"`
	DueDate *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Notes   *string `json:"notes" validate:"omitempty,max=2000"`
}

// BulkUpdateRequest body para PATCH /api/invoices/bulk.
type BulkUpdateRequest struct {
	IDs   []string         `json:"ids" validate:"required,min=1,max=500,dive,required"`
	Patch BulkInvoicePatch `json:"patch"`
}

// BulkUpdateResponse resultado de la actualización en lote.
type BulkUpdateResponse struct {
	Updated int      `json:"updated"`
	IDs     []string `json:"ids"`
}

// InvoiceClientResponse datos del cliente expandidos dentro de la factura.
type InvoiceClientResponse struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Email   string     `json:"email"`
	Phone   string     `json:"phone,omitempty"`
	GSTIN   string     `json:"gstin,omitempty"`
	PAN     string     `json:"pan,omitempty"`
	Address AddressDTO `json:"address"`
}

// InvoiceItemResponse línea con los datos del producto expandidos.
type InvoiceItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku,omitempty"`
	HSNCode     string          `json:"hsn_code,omitempty"`
	Category    string          `json:"category,omitempty"`
	Size        string          `json:"size"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// InvoiceResponse factura materializada (cliente y productos expandidos).
type InvoiceResponse struct {
	ID              string                `json:"id"`
	InvoiceNumber   string                `json:"invoice_number"`
	Client          InvoiceClientResponse `json:"client"`
	InvoiceDate     string                `json:"invoice_date"`
	DueDate         string                `json:"due_date"`
	Status          string                `json:"status"`
	Items           []InvoiceItemResponse `json:"items"`
	TaxJurisdiction string                `json:"tax_jurisdiction"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	CGST            decimal.Decimal       `json:"cgst"`
	SGST            decimal.Decimal       `json:"sgst"`
	IGST            decimal.Decimal       `json:"igst"`
	TotalTax        decimal.Decimal       `json:"total_tax"`
	TotalAmount     decimal.Decimal       `json:"total_amount"`
	Notes           string                `json:"notes,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// InvoiceSummaryResponse fila del listado de facturas.
type InvoiceSummaryResponse struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	ClientID      string          `json:"client_id"`
	InvoiceDate   string          `json:"invoice_date"`
	DueDate       string          `json:"due_date"`
	Status        string          `json:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// InvoiceListResponse lista paginada de facturas.
type InvoiceListResponse struct {
	Items []InvoiceSummaryResponse `json:"items"`
	Page  PageResponse             `json:"page"`
}
