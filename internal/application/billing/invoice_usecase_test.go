package billing_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billing-api/internal/application/dto"
	"github.com/jhoicas/billing-api/internal/domain"
)

// ──────────────────────────────────────────────────────────────────────────────
// Creación
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_InStateCalculaCGSTySGST(t *testing.T) {
	f := newFixture(t)

	inv := f.mustInvoice(t, f.localClient)

	assert.Equal(t, "INV-2026-0001", inv.InvoiceNumber)
	assert.Equal(t, "draft", inv.Status)
	assert.Equal(t, "in-state", inv.TaxJurisdiction)
	assert.True(t, inv.Subtotal.Equal(dec("925")), "subtotal: %s", inv.Subtotal)
	assert.True(t, inv.CGST.Equal(dec("23.125")), "cgst: %s", inv.CGST)
	assert.True(t, inv.SGST.Equal(dec("23.125")), "sgst: %s", inv.SGST)
	assert.True(t, inv.IGST.IsZero())
	assert.True(t, inv.TotalTax.Equal(dec("46.25")))
	assert.True(t, inv.TotalAmount.Equal(dec("971.25")))
}

func TestCreate_OutStateCalculaIGSTConElMismoTotal(t *testing.T) {
	f := newFixture(t)

	inv := f.mustInvoice(t, f.remoteClient)

	assert.Equal(t, "out-state", inv.TaxJurisdiction)
	assert.True(t, inv.CGST.IsZero())
	assert.True(t, inv.SGST.IsZero())
	assert.True(t, inv.IGST.Equal(dec("46.25")), "igst: %s", inv.IGST)
	assert.True(t, inv.TotalAmount.Equal(dec("971.25")))
}

func TestCreate_MaterializaClienteYProductos(t *testing.T) {
	f := newFixture(t)

	inv := f.mustInvoice(t, f.localClient)

	assert.Equal(t, "Acme Textiles", inv.Client.Name)
	assert.Equal(t, "Maharashtra", inv.Client.Address.State)
	require.Len(t, inv.Items, 3)
	assert.Equal(t, "Camiseta", inv.Items[0].ProductName)
	assert.Equal(t, "TS-01", inv.Items[0].SKU)
	assert.True(t, inv.Items[1].LineTotal.Equal(dec("525")))
}

func TestCreate_JurisdiccionExplicitaTienePrioridad(t *testing.T) {
	f := newFixture(t)
	req := f.createRequest(f.localClient)
	req.TaxJurisdiction = "out-state"

	inv, err := f.engine.Create(f.ctx, req)

	require.NoError(t, err)
	assert.Equal(t, "out-state", inv.TaxJurisdiction)
	assert.True(t, inv.IGST.Equal(dec("46.25")))
}

// Vencimiento un día antes de la fecha de factura.
func TestCreate_VencimientoAnteriorEsValidationError(t *testing.T) {
	f := newFixture(t)
	req := f.createRequest(f.localClient)
	req.DueDate = "2026-03-09"

	_, err := f.engine.Create(f.ctx, req)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "due_date", verr.Field)

	list, lerr := f.engine.List(f.ctx, "", "", dto.PageRequest{})
	require.NoError(t, lerr)
	assert.Zero(t, list.Page.Total, "no debe persistir nada")
}

func TestCreate_VencimientoIgualAFechaEsValidationError(t *testing.T) {
	f := newFixture(t)
	req := f.createRequest(f.localClient)
	req.DueDate = req.InvoiceDate

	_, err := f.engine.Create(f.ctx, req)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_ClienteInexistente(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Create(f.ctx, f.createRequest("no-existe"))

	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "client", nf.Entity)
}

func TestCreate_ProductoInexistenteNoConsumeNumero(t *testing.T) {
	f := newFixture(t)
	req := f.createRequest(f.localClient)
	req.Items[0].ProductID = "fantasma"

	_, err := f.engine.Create(f.ctx, req)

	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "product", nf.Entity)
	assert.Equal(t, "fantasma", nf.ID)

	inv := f.mustInvoice(t, f.localClient)
	assert.Equal(t, "INV-2026-0001", inv.InvoiceNumber)
}

func TestCreate_LineasInvalidas(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name  string
		mut   func(*dto.CreateInvoiceRequest)
		field string
	}{
		{"sin líneas", func(r *dto.CreateInvoiceRequest) { r.Items = nil }, "items"},
		{"cantidad cero", func(r *dto.CreateInvoiceRequest) { r.Items[0].Quantity = 0 }, "items[0].quantity"},
		{"precio negativo", func(r *dto.CreateInvoiceRequest) { r.Items[1].UnitPrice = dec("-1") }, "items[1].unit_price"},
		{"talla desconocida", func(r *dto.CreateInvoiceRequest) { r.Items[2].Size = "XXS" }, "items[2].size"},
		{"precio con tres decimales", func(r *dto.CreateInvoiceRequest) { r.Items[0].UnitPrice = dec("99.999") }, "items[0].unit_price"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := f.createRequest(f.localClient)
			tc.mut(&req)

			_, err := f.engine.Create(f.ctx, req)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestCreate_PrecioConCerosFinalesEsValido(t *testing.T) {
	f := newFixture(t)
	req := f.createRequest(f.localClient)
	req.Items[0].UnitPrice = dec("100.500")

	out, err := f.engine.Create(f.ctx, req)

	require.NoError(t, err)
	assert.True(t, out.Items[0].LineTotal.Equal(dec("201")), out.Items[0].LineTotal.String())
}

// 50 altas concurrentes: números distintos y consecutivos.
func TestCreate_ConcurrenteNumerosUnicos(t *testing.T) {
	f := newFixture(t)
	const n = 50

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = make(map[string]struct{}, n)
		errs    []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inv, err := f.engine.Create(f.ctx, f.createRequest(f.localClient))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numbers[inv.InvoiceNumber] = struct{}{}
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Len(t, numbers, n)
	for i := 1; i <= n; i++ {
		assert.Contains(t, numbers, fmt.Sprintf("INV-2026-%04d", i))
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Máquina de estados
// ──────────────────────────────────────────────────────────────────────────────

func TestChangeStatus_DraftAOverdueEsInvalida(t *testing.T) {
	f := newFixture(t)
	inv := f.mustInvoice(t, f.localClient)

	_, err := f.engine.ChangeStatus(f.ctx, inv.ID, "overdue")

	var serr *domain.StateTransitionError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "draft", serr.From)
	assert.Equal(t, "overdue", serr.To)
	assert.Equal(t, []string{"sent", "paid"}, serr.Allowed)

	got, gerr := f.engine.Get(f.ctx, inv.ID)
	require.NoError(t, gerr)
	assert.Equal(t, "draft", got.Status, "no debe aplicarse parcialmente")
}

func TestChangeStatus_CicloCompleto(t *testing.T) {
	f := newFixture(t)
	inv := f.mustInvoice(t, f.localClient)

	f.mustStatus(t, inv.ID, "sent", "overdue", "paid")

	got, err := f.engine.Get(f.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "paid", got.Status)
}

func TestChangeStatus_PaidEsTerminal(t *testing.T) {
	f := newFixture(t)
	inv := f.mustInvoice(t, f.localClient)
	f.mustStatus(t, inv.ID, "paid")

	for _, to := range []string{"draft", "sent", "overdue", "paid"} {
		_, err := f.engine.ChangeStatus(f.ctx, inv.ID, to)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition, "paid → %s", to)
	}
}

func TestChangeStatus_EstadoDesconocido(t *testing.T) {
	f := newFixture(t)
	inv := f.mustInvoice(t, f.localClient)

	_, err := f.engine.ChangeStatus(f.ctx, inv.ID, "archived")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChangeStatus_FacturaInexistente(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.ChangeStatus(f.ctx, "nada", "sent")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Actualización
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdate_CambioDeClienteRederivaJurisdiccion(t *testing.T) {
	f := newFixture(t)
	inv := f.mustInvoice(t, f.localClient)

	out, err := f.engine.Update(f.ctx, inv.ID, dto.UpdateInvoiceRequest{ClientID: ptr(f.remoteClient)})

	require.NoError(t, err)
	assert.Equal(t, "out-state", out.TaxJurisdiction)
	assert.True(t, out.CGST.IsZero())
	assert.True(t, out.IGST.Equal(dec("46.25")))
	assert.True(t, out.TotalAmount.Equal(inv.TotalAmount), "el total no cambia con la jurisdicción")
	assert.Equal(t, inv.InvoiceNumber, out.InvoiceNumber)
}

func TestUpdate_NuevasLineasRecalculan(t *testing.T) {
	f := newFixture(t)
	inv := f.mustInvoice(t, f.localClient)
	items := []dto.InvoiceItemRequest{{ProductID: f.shirt, Size: "S", Quantity: 10, UnitPrice: dec("100")}}

	out, err := f.engine.Update(f.ctx, inv.ID, dto.UpdateInvoiceRequest{Items: &items})

	require.NoError(t, err)
	assert.True(t, out.Subtotal.Equal(dec("1000")))
	assert.True(t, out.CGST.Equal(dec("25")))
	assert.True(t, out.TotalAmount.Equal(dec("1050")))
}

func TestUpdate_SoloNotasNoTocaMontos(t *testing.T) {
	f := newFixture(t)
	inv := f.mustInvoice(t, f.localClient)

	out, err := f.engine.Update(f.ctx, inv.ID, dto.UpdateInvoiceRequest{Notes: ptr("  entregar en bodega 2 ")})

	require.NoError(t, err)
	assert.Equal(t, "entregar en bodega 2", out.Notes)
	assert.True(t, out.TotalAmount.Equal(inv.TotalAmount))
	assert.Equal(t, "draft", out.Status)
}

func TestUpdate_VencimientoInvalidoContraFechaExistente(t *testing.T) {
	f := newFixture(t)
	inv := f.mustInvoice(t, f.localClient)

	_, err := f.engine.Update(f.ctx, inv.ID, dto.UpdateInvoiceRequest{DueDate: ptr("2026-03-01")})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdate_FacturaPagadaEsInmutable(t *testing.T) {
	f := newFixture(t)
	inv := f.mustInvoice(t, f.localClient)
	f.mustStatus(t, inv.ID, "sent", "paid")

	_, err := f.engine.Update(f.ctx, inv.ID, dto.UpdateInvoiceRequest{Notes: ptr("cambio")})

	var ierr *domain.ImmutableStateError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "paid", ierr.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Borrado
// ──────────────────────────────────────────────────────────────────────────────

func TestDelete_FacturaPagadaNoSeBorra(t *testing.T) {
	f := newFixture(t)
	inv := f.mustInvoice(t, f.localClient)
	f.mustStatus(t, inv.ID, "paid")

	err := f.engine.Delete(f.ctx, inv.ID)

	assert.ErrorIs(t, err, domain.ErrImmutable)
	_, gerr := f.engine.Get(f.ctx, inv.ID)
	assert.NoError(t, gerr)
}

func TestDelete_BorradoYNumeroNoSeReutiliza(t *testing.T) {
	f := newFixture(t)
	first := f.mustInvoice(t, f.localClient)

	require.NoError(t, f.engine.Delete(f.ctx, first.ID))
	_, err := f.engine.Get(f.ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	second := f.mustInvoice(t, f.localClient)
	assert.Equal(t, "INV-2026-0002", second.InvoiceNumber)
}

// ──────────────────────────────────────────────────────────────────────────────
// Actualización masiva
// ──────────────────────────────────────────────────────────────────────────────

func TestBulkUpdate_AplicaATodas(t *testing.T) {
	f := newFixture(t)
	a := f.mustInvoice(t, f.localClient)
	b := f.mustInvoice(t, f.remoteClient)

	out, err := f.engine.BulkUpdate(f.ctx, dto.BulkUpdateRequest{
		IDs:   []string{a.ID, b.ID, a.ID},
		Patch: dto.BulkInvoicePatch{Status: ptr("sent"), Notes: ptr("enviado por lote")},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, out.Updated)
	for _, id := range []string{a.ID, b.ID} {
		got, err := f.engine.Get(f.ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "sent", got.Status)
		assert.Equal(t, "enviado por lote", got.Notes)
	}
}

func TestBulkUpdate_PagarConNotasEscribeAmbos(t *testing.T) {
	f := newFixture(t)
	a := f.mustInvoice(t, f.localClient)
	f.mustStatus(t, a.ID, "sent")

	_, err := f.engine.BulkUpdate(f.ctx, dto.BulkUpdateRequest{
		IDs:   []string{a.ID},
		Patch: dto.BulkInvoicePatch{Status: ptr("paid"), Notes: ptr("cobrado")},
	})

	require.NoError(t, err)
	got, err := f.engine.Get(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "paid", got.Status)
	assert.Equal(t, "cobrado", got.Notes)
}

func TestBulkUpdate_IDInexistenteNoModificaNada(t *testing.T) {
	f := newFixture(t)
	a := f.mustInvoice(t, f.localClient)

	_, err := f.engine.BulkUpdate(f.ctx, dto.BulkUpdateRequest{
		IDs:   []string{a.ID, "no-existe"},
		Patch: dto.BulkInvoicePatch{Status: ptr("sent")},
	})

	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "no-existe", nf.ID)
	got, _ := f.engine.Get(f.ctx, a.ID)
	assert.Equal(t, "draft", got.Status)
}

func TestBulkUpdate_TransicionInvalidaNoModificaNada(t *testing.T) {
	f := newFixture(t)
	a := f.mustInvoice(t, f.localClient)
	b := f.mustInvoice(t, f.localClient)
	f.mustStatus(t, b.ID, "sent")

	_, err := f.engine.BulkUpdate(f.ctx, dto.BulkUpdateRequest{
		IDs:   []string{b.ID, a.ID},
		Patch: dto.BulkInvoicePatch{Status: ptr("overdue")},
	})

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	got, _ := f.engine.Get(f.ctx, b.ID)
	assert.Equal(t, "sent", got.Status)
}

// La primera factura queda escrita (fechas y estado) antes de que falle la segunda.
func TestBulkUpdate_FalloEnFaseDeEscrituraRevierte(t *testing.T) {
	f := newFixture(t)
	a := f.mustInvoice(t, f.localClient)
	b := f.mustInvoice(t, f.localClient)
	boom := errors.New("disco lleno")
	f.store.FailInvoiceUpdates(boom, 1)

	_, err := f.engine.BulkUpdate(f.ctx, dto.BulkUpdateRequest{
		IDs:   []string{a.ID, b.ID},
		Patch: dto.BulkInvoicePatch{Status: ptr("sent"), DueDate: ptr("2026-05-01")},
	})
	f.store.FailInvoiceUpdates(nil, 0)

	require.ErrorIs(t, err, boom)
	for _, id := range []string{a.ID, b.ID} {
		got, gerr := f.engine.Get(f.ctx, id)
		require.NoError(t, gerr)
		assert.Equal(t, "draft", got.Status)
		assert.Equal(t, "2026-04-09", got.DueDate)
	}
}

func TestBulkUpdate_PatchVacio(t *testing.T) {
	f := newFixture(t)
	a := f.mustInvoice(t, f.localClient)

	_, err := f.engine.BulkUpdate(f.ctx, dto.BulkUpdateRequest{IDs: []string{a.ID}})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Listado
// ──────────────────────────────────────────────────────────────────────────────

func TestList_FiltraPorEstadoYCliente(t *testing.T) {
	f := newFixture(t)
	a := f.mustInvoice(t, f.localClient)
	f.mustInvoice(t, f.localClient)
	f.mustInvoice(t, f.remoteClient)
	f.mustStatus(t, a.ID, "sent")

	sent, err := f.engine.List(f.ctx, "sent", "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, sent.Page.Total)
	assert.Equal(t, a.ID, sent.Items[0].ID)

	local, err := f.engine.List(f.ctx, "", f.localClient, dto.PageRequest{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, local.Page.Total)
	assert.Len(t, local.Items, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Notificación de cambios
// ──────────────────────────────────────────────────────────────────────────────

func TestOnChange_SoloTrasEscriturasConfirmadas(t *testing.T) {
	f := newFixture(t)
	var n int
	f.engine.OnChange(func() { n++ })

	inv := f.mustInvoice(t, f.localClient)
	assert.Equal(t, 1, n, "alta")

	_, err := f.engine.Update(f.ctx, inv.ID, dto.UpdateInvoiceRequest{Notes: ptr("x")})
	require.NoError(t, err)
	f.mustStatus(t, inv.ID, "sent")
	assert.Equal(t, 3, n, "edición y estado")

	_, err = f.engine.ChangeStatus(f.ctx, inv.ID, "draft")
	require.Error(t, err)
	_, err = f.engine.BulkUpdate(f.ctx, dto.BulkUpdateRequest{IDs: []string{inv.ID, "no-existe"}, Patch: dto.BulkInvoicePatch{Notes: ptr("y")}})
	require.Error(t, err)
	assert.Equal(t, 3, n, "los fallos no notifican")

	require.NoError(t, f.engine.Delete(f.ctx, inv.ID))
	assert.Equal(t, 4, n, "borrado")
}
