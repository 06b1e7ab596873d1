package billing_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billing-api/internal/application/billing"
	"github.com/jhoicas/billing-api/internal/application/dto"
	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/repository"
)

// payingRepo simula un pago concurrente: marca la factura como paid entre la
// lectura del caso de uso y su escritura.
type payingRepo struct {
	repository.InvoiceRepository
}

func (r payingRepo) payNow(ctx context.Context, id string) error {
	cur, err := r.InvoiceRepository.GetByID(ctx, id)
	if err != nil || cur == nil {
		return err
	}
	_, err = r.InvoiceRepository.UpdateStatus(ctx, id, cur.Status, entity.InvoiceStatusPaid)
	return err
}

func (r payingRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	if err := r.payNow(ctx, inv.ID); err != nil {
		return err
	}
	return r.InvoiceRepository.Update(ctx, inv)
}

func (r payingRepo) Delete(ctx context.Context, id string) error {
	if err := r.payNow(ctx, id); err != nil {
		return err
	}
	return r.InvoiceRepository.Delete(ctx, id)
}

// GetByIDs devuelve el estado leído y luego paga las facturas, como si el pago
// llegara entre la validación del lote y la transacción.
func (r payingRepo) GetByIDs(ctx context.Context, ids []string) ([]*entity.Invoice, error) {
	out, err := r.InvoiceRepository.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, inv := range out {
		if err := r.payNow(ctx, inv.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func racingEngine(f *fixture) *billing.InvoiceUseCase {
	return billing.NewInvoiceUseCase(
		f.store.TxRunner(), payingRepo{f.store.Invoices()}, f.store.Clients(), f.store.Products(),
		billing.EngineConfig{HomeState: homeState},
		zerolog.Nop(),
	)
}

func TestUpdate_PagoConcurrenteNoSeSobrescribe(t *testing.T) {
	f := newFixture(t)
	inv := f.mustInvoice(t, f.localClient)

	_, err := racingEngine(f).Update(f.ctx, inv.ID, dto.UpdateInvoiceRequest{
		Items: &[]dto.InvoiceItemRequest{{ProductID: f.shirt, Size: "S", Quantity: 1, UnitPrice: dec("10")}},
	})

	var ierr *domain.ImmutableStateError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "paid", ierr.Status)
	assert.Equal(t, "actualizar", ierr.Action)

	got, gerr := f.engine.Get(f.ctx, inv.ID)
	require.NoError(t, gerr)
	assert.Equal(t, "paid", got.Status)
	assert.True(t, got.TotalAmount.Equal(dec("971.25")), got.TotalAmount.String())
	assert.Len(t, got.Items, 3)
}

func TestDelete_PagoConcurrenteNoBorra(t *testing.T) {
	f := newFixture(t)
	inv := f.mustInvoice(t, f.localClient)

	err := racingEngine(f).Delete(f.ctx, inv.ID)

	var ierr *domain.ImmutableStateError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "eliminar", ierr.Action)

	got, gerr := f.engine.Get(f.ctx, inv.ID)
	require.NoError(t, gerr)
	assert.Equal(t, "paid", got.Status)
}

func TestBulkUpdate_PagoEntreFasesRevierteElLote(t *testing.T) {
	f := newFixture(t)
	a := f.mustInvoice(t, f.localClient)
	b := f.mustInvoice(t, f.remoteClient)

	_, err := racingEngine(f).BulkUpdate(f.ctx, dto.BulkUpdateRequest{
		IDs:   []string{a.ID, b.ID},
		Patch: dto.BulkInvoicePatch{Notes: ptr("recordatorio")},
	})

	assert.ErrorIs(t, err, domain.ErrImmutable)
	for _, id := range []string{a.ID, b.ID} {
		got, gerr := f.engine.Get(f.ctx, id)
		require.NoError(t, gerr)
		assert.Empty(t, got.Notes)
	}
}

func TestDelete_FacturaYaBorradaEsNotFound(t *testing.T) {
	f := newFixture(t)
	inv := f.mustInvoice(t, f.localClient)
	repo := f.store.Invoices()

	require.NoError(t, repo.Delete(f.ctx, inv.ID))
	err := repo.Delete(f.ctx, inv.ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
