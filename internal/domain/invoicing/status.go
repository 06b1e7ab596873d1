package invoicing

import (
	"slices"

	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/entity"
)

// statusTransitions estados destino permitidos desde cada estado.
// paid es terminal: no admite ninguna transición, ni siquiera a sí mismo.
var statusTransitions = map[entity.InvoiceStatus][]entity.InvoiceStatus{
	entity.InvoiceStatusDraft:   {entity.InvoiceStatusSent, entity.InvoiceStatusPaid},
	entity.InvoiceStatusSent:    {entity.InvoiceStatusPaid, entity.InvoiceStatusOverdue},
	entity.InvoiceStatusOverdue: {entity.InvoiceStatusPaid},
	entity.InvoiceStatusPaid:    {},
}

// CanTransition indica si from → to es legal.
func CanTransition(from, to entity.InvoiceStatus) bool {
	next, ok := statusTransitions[from]
	if !ok {
		return false
	}
	return slices.Contains(next, to)
}

// ValidateTransition devuelve *domain.StateTransitionError si from → to no es legal.
func ValidateTransition(from, to entity.InvoiceStatus) error {
	if !CanTransition(from, to) {
		return TransitionError(from, to)
	}
	return nil
}

// TransitionError construye el error de from → to con los destinos legales desde from.
func TransitionError(from, to entity.InvoiceStatus) *domain.StateTransitionError {
	next := NextStatuses(from)
	allowed := make([]string, len(next))
	for i, s := range next {
		allowed[i] = string(s)
	}
	return &domain.StateTransitionError{From: string(from), To: string(to), Allowed: allowed}
}

// NextStatuses estados alcanzables desde from (copia).
func NextStatuses(from entity.InvoiceStatus) []entity.InvoiceStatus {
	return slices.Clone(statusTransitions[from])
}

// IsTerminal indica si el estado no admite más transiciones.
func IsTerminal(s entity.InvoiceStatus) bool {
	return len(statusTransitions[s]) == 0
}
