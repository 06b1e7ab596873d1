package invoicing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/invoicing"
)

func item(qty int64, price string) entity.InvoiceItem {
	return entity.InvoiceItem{
		ProductID: "p",
		Size:      entity.SizeM,
		Quantity:  qty,
		UnitPrice: decimal.RequireFromString(price),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// scenarioItems líneas de referencia: 2×100 + 3×175 + 1×200 = 925.
func scenarioItems() []entity.InvoiceItem {
	return []entity.InvoiceItem{item(2, "100"), item(3, "175"), item(1, "200")}
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios de referencia
// ──────────────────────────────────────────────────────────────────────────────

func TestCalculateTax_InState(t *testing.T) {
	b := invoicing.CalculateTax(scenarioItems(), entity.JurisdictionInState, invoicing.DefaultTaxRates())

	assert.True(t, b.Subtotal.Equal(dec("925")), "subtotal: %s", b.Subtotal)
	assert.True(t, b.CGST.Equal(dec("23.125")), "cgst: %s", b.CGST)
	assert.True(t, b.SGST.Equal(dec("23.125")), "sgst: %s", b.SGST)
	assert.True(t, b.IGST.IsZero(), "igst: %s", b.IGST)
	assert.True(t, b.TotalTax.Equal(dec("46.25")), "total_tax: %s", b.TotalTax)
	assert.True(t, b.TotalAmount.Equal(dec("971.25")), "total_amount: %s", b.TotalAmount)
}

func TestCalculateTax_OutState(t *testing.T) {
	b := invoicing.CalculateTax(scenarioItems(), entity.JurisdictionOutState, invoicing.DefaultTaxRates())

	assert.True(t, b.Subtotal.Equal(dec("925")))
	assert.True(t, b.CGST.IsZero())
	assert.True(t, b.SGST.IsZero())
	assert.True(t, b.IGST.Equal(dec("46.25")), "igst: %s", b.IGST)
	assert.True(t, b.TotalTax.Equal(dec("46.25")))
	assert.True(t, b.TotalAmount.Equal(dec("971.25")))
}

func TestCalculateTax_SinLineasTodoCero(t *testing.T) {
	for _, j := range []entity.TaxJurisdiction{entity.JurisdictionInState, entity.JurisdictionOutState} {
		b := invoicing.CalculateTax(nil, j, invoicing.DefaultTaxRates())
		assert.True(t, b.Subtotal.IsZero())
		assert.True(t, b.CGST.IsZero())
		assert.True(t, b.SGST.IsZero())
		assert.True(t, b.IGST.IsZero())
		assert.True(t, b.TotalTax.IsZero())
		assert.True(t, b.TotalAmount.IsZero())
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedades
// ──────────────────────────────────────────────────────────────────────────────

// La carga total de impuesto no depende de la jurisdicción y el total siempre
// es subtotal + impuesto.
func TestCalculateTax_InvarianteJurisdiccionYTotal(t *testing.T) {
	cases := [][]entity.InvoiceItem{
		{item(1, "0.01")},
		{item(7, "19.99"), item(3, "0.33")},
		{item(1, "1234567.89")},
		{item(13, "0.07"), item(2, "999.995")},
		{item(1, "0")},
		scenarioItems(),
	}
	rates := invoicing.DefaultTaxRates()
	for _, items := range cases {
		in := invoicing.CalculateTax(items, entity.JurisdictionInState, rates)
		out := invoicing.CalculateTax(items, entity.JurisdictionOutState, rates)

		assert.True(t, in.TotalTax.Equal(out.TotalTax), "impuesto in=%s out=%s", in.TotalTax, out.TotalTax)
		assert.True(t, in.TotalAmount.Equal(out.TotalAmount))
		assert.True(t, in.TotalAmount.Equal(in.Subtotal.Add(in.TotalTax)))
		assert.True(t, out.TotalAmount.Equal(out.Subtotal.Add(out.TotalTax)))
		assert.True(t, in.CGST.Equal(in.SGST))
		assert.True(t, in.CGST.Add(in.SGST).Equal(out.IGST))
		assert.LessOrEqual(t, in.TotalAmount.Exponent(), int32(0))
		assert.GreaterOrEqual(t, in.TotalAmount.Exponent(), int32(-2))
	}
}

// Sumar 0.1 diez veces no debe derivar como con float64.
func TestCalculateTax_SinDerivaBinaria(t *testing.T) {
	items := make([]entity.InvoiceItem, 10)
	for i := range items {
		items[i] = item(1, "0.1")
	}
	b := invoicing.CalculateTax(items, entity.JurisdictionOutState, invoicing.DefaultTaxRates())
	assert.True(t, b.Subtotal.Equal(dec("1")), "subtotal: %s", b.Subtotal)
	assert.True(t, b.TotalTax.Equal(dec("0.05")))
	assert.True(t, b.TotalAmount.Equal(dec("1.05")))
}

func TestTaxRates_FullEsElDobleDeHalf(t *testing.T) {
	r := invoicing.TaxRates{Half: dec("0.09")}
	assert.True(t, r.Full().Equal(dec("0.18")))
	assert.True(t, invoicing.DefaultTaxRates().Full().Equal(dec("0.05")))
}

func TestApplyTax_RecalculaLineasYTotales(t *testing.T) {
	inv := &entity.Invoice{
		Items:           scenarioItems(),
		TaxJurisdiction: entity.JurisdictionInState,
		Subtotal:        dec("1"), // valores previos se descartan
		TotalAmount:     dec("1"),
	}
	invoicing.ApplyTax(inv, invoicing.DefaultTaxRates())

	assert.True(t, inv.Items[0].LineTotal.Equal(dec("200")))
	assert.True(t, inv.Items[1].LineTotal.Equal(dec("525")))
	assert.True(t, inv.Items[2].LineTotal.Equal(dec("200")))
	assert.True(t, inv.TotalAmount.Equal(dec("971.25")))

	// El cambio de jurisdicción redistribuye el mismo impuesto.
	inv.TaxJurisdiction = entity.JurisdictionOutState
	invoicing.ApplyTax(inv, invoicing.DefaultTaxRates())
	assert.True(t, inv.CGST.IsZero())
	assert.True(t, inv.IGST.Equal(dec("46.25")))
	assert.True(t, inv.TotalAmount.Equal(dec("971.25")))
}
