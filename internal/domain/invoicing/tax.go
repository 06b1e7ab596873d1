// Package invoicing contiene la lógica pura del ciclo de vida de facturas:
// cálculo de impuestos, máquina de estados, numeración y jurisdicción fiscal.
// No depende de persistencia ni de transporte.
package invoicing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/billing-api/internal/domain/entity"
)

// moneyPlaces decimales de los totales reportados.
const moneyPlaces = 2

// TaxRates tasas del impuesto. Full siempre es el doble de Half, así la carga
// total no depende de la jurisdicción.
type TaxRates struct {
	Half decimal.Decimal // CGST y SGST por separado
}

// DefaultTaxRates 2.5% + 2.5% intra-estado, 5% inter-estado.
func DefaultTaxRates() TaxRates {
	return TaxRates{Half: decimal.RequireFromString("0.025")}
}

// Full tasa IGST (2 × Half).
func (r TaxRates) Full() decimal.Decimal {
	return r.Half.Mul(decimal.NewFromInt(2))
}

// TaxBreakdown resultado del cálculo.
type TaxBreakdown struct {
	Subtotal    decimal.Decimal
	CGST        decimal.Decimal
	SGST        decimal.Decimal
	IGST        decimal.Decimal
	TotalTax    decimal.Decimal
	TotalAmount decimal.Decimal
}

// LineTotal quantity × unitPrice, exacto.
func LineTotal(quantity int64, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity))
}

// CalculateTax calcula subtotal, componentes y totales de las líneas.
//
// Las sumas intermedias son exactas; el redondeo a 2 decimales se aplica solo
// a Subtotal, TotalTax y TotalAmount. CGST/SGST/IGST se reportan con precisión
// completa (p. ej. 23.125) para que CGST+SGST e IGST coincidan siempre.
// TotalAmount == Subtotal + TotalTax se cumple de forma exacta.
func CalculateTax(items []entity.InvoiceItem, jurisdiction entity.TaxJurisdiction, rates TaxRates) TaxBreakdown {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(LineTotal(it.Quantity, it.UnitPrice))
	}

	out := TaxBreakdown{
		CGST: decimal.Zero,
		SGST: decimal.Zero,
		IGST: decimal.Zero,
	}
	switch jurisdiction {
	case entity.JurisdictionOutState:
		out.IGST = subtotal.Mul(rates.Full())
	default:
		half := subtotal.Mul(rates.Half)
		out.CGST = half
		out.SGST = half
	}

	out.Subtotal = subtotal.Round(moneyPlaces)
	out.TotalTax = out.CGST.Add(out.SGST).Add(out.IGST).Round(moneyPlaces)
	out.TotalAmount = out.Subtotal.Add(out.TotalTax)
	return out
}

// ApplyTax recalcula line_total de cada línea y los montos derivados de inv.
func ApplyTax(inv *entity.Invoice, rates TaxRates) {
	for i := range inv.Items {
		inv.Items[i].LineTotal = LineTotal(inv.Items[i].Quantity, inv.Items[i].UnitPrice)
	}
	b := CalculateTax(inv.Items, inv.TaxJurisdiction, rates)
	inv.Subtotal = b.Subtotal
	inv.CGST = b.CGST
	inv.SGST = b.SGST
	inv.IGST = b.IGST
	inv.TotalTax = b.TotalTax
	inv.TotalAmount = b.TotalAmount
}
