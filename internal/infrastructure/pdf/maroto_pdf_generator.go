// Package pdf implementa la representación gráfica de la factura con GST.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Emisor + GSTIN       │  N° Factura + Fechas + Estado │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre + GSTIN/PAN + dirección                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Producto | HSN | Talla | Cant | P.Unit | Importe      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / CGST / SGST / IGST / TOTAL               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR de verificación + notas                           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appbilling "github.com/jhoicas/billing-api/internal/application/billing"
	"github.com/jhoicas/billing-api/internal/application/dto"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ appbilling.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(
	_ context.Context,
	issuer appbilling.Issuer,
	inv *dto.InvoiceResponse,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Tax Invoice "+inv.InvoiceNumber, true).
		WithAuthor(nonEmpty(issuer.Name, "billing-api"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(issuer, inv))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(clientRow(inv.Client))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableItemRows(inv.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(inv))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(issuer, inv)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: emisor + GSTIN (izq) y N° factura + fechas (der).
func headerRow(issuer appbilling.Issuer, inv *dto.InvoiceResponse) core.Row {
	return row.New(24).Add(
		col.New(7).Add(
			text.New(nonEmpty(issuer.Name, "-"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("GSTIN: "+nonEmpty(issuer.GSTIN, "-"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
			text.New(joinNonEmpty(", ", issuer.Address, issuer.State), props.Text{
				Size: 8, Top: 15, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("TAX INVOICE", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(inv.InvoiceNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+inv.InvoiceDate+"   Vence: "+inv.DueDate, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
			text.New("Estado: "+strings.ToUpper(inv.Status), props.Text{
				Size: 8, Align: align.Right, Top: 19, Color: colorGray,
			}),
		),
	)
}

// clientRow: datos del cliente.
func clientRow(c dto.InvoiceClientResponse) core.Row {
	addr := joinNonEmpty(", ", c.Address.Street, c.Address.City, c.Address.State, c.Address.PostalCode, c.Address.Country)
	return row.New(20).Add(
		col.New(12).Add(
			text.New("FACTURAR A", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(c.Name, c.ID), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("GSTIN: %s   |   PAN: %s   |   Email: %s   |   Tel: %s",
				nonEmpty(c.GSTIN, "-"),
				nonEmpty(c.PAN, "-"),
				nonEmpty(c.Email, "-"),
				nonEmpty(c.Phone, "-"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
			text.New(nonEmpty(addr, "-"), props.Text{Size: 8, Top: 16, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Producto", 4, align.Left),
		h("HSN", 1, align.Center),
		h("Talla", 1, align.Center),
		h("Cant.", 1, align.Center),
		h("Precio Unit.", 2, align.Right),
		h("Importe", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableItemRows: una fila por línea de factura.
func tableItemRows(items []dto.InvoiceItemResponse) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(4).Add(text.New(
				nonEmpty(it.ProductName, it.ProductID),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(1).Add(text.New(
				nonEmpty(it.HSNCode, "-"),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(1).Add(text.New(
				it.Size,
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", it.Quantity),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				money(it.UnitPrice),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(3).Add(text.New(
				money(it.LineTotal),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales; solo se imprimen los componentes del impuesto que aplican.
func totalsRow(inv *dto.InvoiceResponse) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top,
		})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}

	type totalLine struct {
		label string
		value decimal.Decimal
	}
	lines := []totalLine{{"Subtotal:", inv.Subtotal}}
	if inv.TaxJurisdiction == "out-state" {
		lines = append(lines, totalLine{"IGST:", inv.IGST})
	} else {
		lines = append(lines, totalLine{"CGST:", inv.CGST}, totalLine{"SGST:", inv.SGST})
	}
	lines = append(lines, totalLine{"Total impuesto:", inv.TotalTax})

	labels := col.New(3)
	values := col.New(3)
	var top float64
	for _, l := range lines {
		labels.Add(label(l.label, top))
		values.Add(value(money(l.value), top))
		top += 5
	}
	labels.Add(text.New("TOTAL:", props.Text{
		Style: fontstyle.Bold, Size: 10, Align: align.Right,
		Color: colorPrimary, Right: 2, Top: top + 1,
	}))
	values.Add(text.New(money(inv.TotalAmount), props.Text{
		Style: fontstyle.Bold, Size: 10, Align: align.Right,
		Color: colorPrimary, Right: 1, Top: top + 1,
	}))

	return row.New(top+8).Add(
		col.New(6), // espacio izquierdo
		labels,
		values,
	)
}

// footerRows: QR de verificación + jurisdicción + notas.
func footerRows(issuer appbilling.Issuer, inv *dto.InvoiceResponse) []core.Row {
	qrData := strings.Join([]string{
		inv.InvoiceNumber, inv.InvoiceDate, issuer.GSTIN, inv.Client.GSTIN, inv.TotalAmount.StringFixed(2),
	}, "|")

	rows := []core.Row{
		row.New(40).Add(
			col.New(3).Add(code.NewQr(qrData, props.Rect{Percent: 95, Center: true})),
			col.New(9).Add(
				text.New("Jurisdicción: "+inv.TaxJurisdiction, props.Text{
					Size: 8, Top: 4, Left: 3, Color: colorGray,
				}),
				text.New("El código QR resume número, fecha, GSTIN y total de la factura.", props.Text{
					Size: 8, Top: 10, Left: 3, Color: colorGray,
				}),
			),
		),
	}
	if inv.Notes != "" {
		rows = append(rows, row.New(12).Add(col.New(12).Add(
			text.New("Notas: "+inv.Notes, props.Text{Size: 8, Top: 2, Color: colorGray}),
		)))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

// money imprime el monto con dos decimales, sin símbolo ni separadores de miles.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
