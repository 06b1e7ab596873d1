package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/repository"
	"github.com/jhoicas/billing-api/internal/infrastructure/memory"
)

var errAbort = errors.New("abortar")

func seed(t *testing.T) (*memory.Store, context.Context) {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.Clients().Create(ctx, &entity.Client{
		ID: "cli-1", Name: "Acme", Email: "a@acme.in", Address: entity.Address{State: "Goa"},
	}))
	for _, id := range []string{"inv-a", "inv-b"} {
		require.NoError(t, s.Invoices().Create(ctx, newInvoice(id)))
	}
	return s, ctx
}

func newInvoice(id string) *entity.Invoice {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return &entity.Invoice{
		ID:            id,
		InvoiceNumber: "INV-2026-" + id,
		ClientID:      "cli-1",
		InvoiceDate:   day,
		DueDate:       day.AddDate(0, 0, 30),
		Status:        entity.InvoiceStatusDraft,
	}
}

func TestRunInvoice_RollbackSoloDeshaceLoEscrito(t *testing.T) {
	s, ctx := seed(t)

	err := s.TxRunner().RunInvoice(ctx, func(invoices repository.InvoiceRepository, seqs repository.SequenceRepository) error {
		a, err := invoices.GetByID(ctx, "inv-a")
		require.NoError(t, err)
		a.Notes = "dentro de la tx"
		require.NoError(t, invoices.Update(ctx, a))
		require.NoError(t, invoices.Create(ctx, newInvoice("inv-c")))
		n, err := seqs.Next(ctx, 2026)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		// Escrituras fuera de la transacción mientras está abierta.
		ok, err := s.Invoices().UpdateStatus(ctx, "inv-b", entity.InvoiceStatusDraft, entity.InvoiceStatusSent)
		require.NoError(t, err)
		require.True(t, ok)
		_, err = s.Sequences().Next(ctx, 2027)
		require.NoError(t, err)

		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	a, _ := s.Invoices().GetByID(ctx, "inv-a")
	assert.Empty(t, a.Notes)
	c, _ := s.Invoices().GetByID(ctx, "inv-c")
	assert.Nil(t, c)
	b, _ := s.Invoices().GetByID(ctx, "inv-b")
	assert.Equal(t, entity.InvoiceStatusSent, b.Status, "la escritura ajena sobrevive")

	n, _ := s.Sequences().Next(ctx, 2026)
	assert.EqualValues(t, 1, n, "el contador de la tx se revierte")
	n, _ = s.Sequences().Next(ctx, 2027)
	assert.EqualValues(t, 2, n, "el contador ajeno se conserva")
}

func TestRunInvoice_RollbackRestauraBorradosYEstados(t *testing.T) {
	s, ctx := seed(t)

	err := s.TxRunner().RunInvoice(ctx, func(invoices repository.InvoiceRepository, _ repository.SequenceRepository) error {
		require.NoError(t, invoices.Delete(ctx, "inv-a"))
		ok, err := invoices.UpdateStatus(ctx, "inv-b", entity.InvoiceStatusDraft, entity.InvoiceStatusPaid)
		require.NoError(t, err)
		require.True(t, ok)
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	a, _ := s.Invoices().GetByID(ctx, "inv-a")
	require.NotNil(t, a)
	b, _ := s.Invoices().GetByID(ctx, "inv-b")
	assert.Equal(t, entity.InvoiceStatusDraft, b.Status)
}

func TestRunInvoice_CommitConserva(t *testing.T) {
	s, ctx := seed(t)

	err := s.TxRunner().RunInvoice(ctx, func(invoices repository.InvoiceRepository, _ repository.SequenceRepository) error {
		return invoices.Delete(ctx, "inv-a")
	})
	require.NoError(t, err)

	a, _ := s.Invoices().GetByID(ctx, "inv-a")
	assert.Nil(t, a)
}

func TestInvoiceRepo_PagadaNoSeEscribe(t *testing.T) {
	s, ctx := seed(t)
	repo := s.Invoices()
	ok, err := repo.UpdateStatus(ctx, "inv-a", entity.InvoiceStatusDraft, entity.InvoiceStatusPaid)
	require.NoError(t, err)
	require.True(t, ok)

	inv := newInvoice("inv-a")
	inv.Notes = "tarde"
	assert.ErrorIs(t, repo.Update(ctx, inv), domain.ErrImmutable)
	assert.ErrorIs(t, repo.Delete(ctx, "inv-a"), domain.ErrImmutable)
	assert.ErrorIs(t, repo.Delete(ctx, "no-existe"), domain.ErrNotFound)

	got, _ := repo.GetByID(ctx, "inv-a")
	assert.Empty(t, got.Notes)
}
