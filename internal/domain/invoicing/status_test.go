package invoicing_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/invoicing"
)

var allStatuses = []entity.InvoiceStatus{
	entity.InvoiceStatusDraft,
	entity.InvoiceStatusSent,
	entity.InvoiceStatusPaid,
	entity.InvoiceStatusOverdue,
}

func TestCanTransition_Tabla(t *testing.T) {
	legalPairs := [][2]entity.InvoiceStatus{
		{entity.InvoiceStatusDraft, entity.InvoiceStatusSent},
		{entity.InvoiceStatusDraft, entity.InvoiceStatusPaid},
		{entity.InvoiceStatusSent, entity.InvoiceStatusPaid},
		{entity.InvoiceStatusSent, entity.InvoiceStatusOverdue},
		{entity.InvoiceStatusOverdue, entity.InvoiceStatusPaid},
	}
	legal := make(map[[2]entity.InvoiceStatus]bool, len(legalPairs))
	for _, p := range legalPairs {
		legal[p] = true
	}
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := legal[[2]entity.InvoiceStatus{from, to}]
			assert.Equal(t, want, invoicing.CanTransition(from, to), "%s → %s", from, to)
		}
	}
}

func TestCanTransition_PaidEsTerminal(t *testing.T) {
	for _, to := range allStatuses {
		assert.False(t, invoicing.CanTransition(entity.InvoiceStatusPaid, to), "paid → %s", to)
	}
	assert.False(t, invoicing.CanTransition(entity.InvoiceStatusPaid, "archived"))
	assert.True(t, invoicing.IsTerminal(entity.InvoiceStatusPaid))
	assert.False(t, invoicing.IsTerminal(entity.InvoiceStatusDraft))
}

func TestCanTransition_SinVueltaADraft(t *testing.T) {
	assert.False(t, invoicing.CanTransition(entity.InvoiceStatusSent, entity.InvoiceStatusDraft))
	assert.False(t, invoicing.CanTransition(entity.InvoiceStatusDraft, entity.InvoiceStatusDraft))
	assert.False(t, invoicing.CanTransition("desconocido", entity.InvoiceStatusSent))
}

func TestValidateTransition_DraftAOverdue(t *testing.T) {
	err := invoicing.ValidateTransition(entity.InvoiceStatusDraft, entity.InvoiceStatusOverdue)
	require.Error(t, err)

	var stErr *domain.StateTransitionError
	require.True(t, errors.As(err, &stErr))
	assert.Equal(t, "draft", stErr.From)
	assert.Equal(t, "overdue", stErr.To)
	assert.Equal(t, []string{"sent", "paid"}, stErr.Allowed)
	assert.Contains(t, err.Error(), "permitidas: sent, paid")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	assert.NoError(t, invoicing.ValidateTransition(entity.InvoiceStatusDraft, entity.InvoiceStatusSent))
}

func TestNextStatuses_DevuelveCopia(t *testing.T) {
	next := invoicing.NextStatuses(entity.InvoiceStatusDraft)
	require.Len(t, next, 2)
	next[0] = entity.InvoiceStatusOverdue
	assert.False(t, invoicing.CanTransition(entity.InvoiceStatusDraft, entity.InvoiceStatusOverdue))
}

func TestTransitionError_DesdePaidNoOfreceDestinos(t *testing.T) {
	err := invoicing.TransitionError(entity.InvoiceStatusPaid, entity.InvoiceStatusSent)

	assert.Empty(t, err.Allowed)
	assert.Contains(t, err.Error(), "estado terminal")
}
