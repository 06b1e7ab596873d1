package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas). Los tipos de error de abajo
// envuelven uno de estos centinelas, así el llamador puede usar errors.Is para
// la clase y errors.As para los datos.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrReferenced        = errors.New("recurso referenciado por facturas")
	ErrImmutable         = errors.New("recurso en estado inmutable")
	ErrInvalidTransition = errors.New("transición de estado inválida")
)

// ValidationError entrada mal formada o lógicamente inconsistente.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validación: %s", e.Reason)
	}
	return fmt.Sprintf("validación: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError atajo para construir un ValidationError.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError referencia a cliente, producto o factura inexistente.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s no encontrado", e.Entity)
	}
	return fmt.Sprintf("%s %s no encontrado", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ReferencedEntityError borrado bloqueado por facturas que aún referencian la entidad.
// Count es el número exacto de facturas que la referencian.
type ReferencedEntityError struct {
	Entity string
	ID     string
	Count  int64
}

func (e *ReferencedEntityError) Error() string {
	return fmt.Sprintf("%s %s referenciado por %d factura(s)", e.Entity, e.ID, e.Count)
}

func (e *ReferencedEntityError) Unwrap() error { return ErrReferenced }

// ImmutableStateError operación bloqueada por un estado terminal (factura pagada).
type ImmutableStateError struct {
	ID     string
	Status string
	Action string
}

func (e *ImmutableStateError) Error() string {
	return fmt.Sprintf("no se puede %s la factura %s en estado %s", e.Action, e.ID, e.Status)
}

func (e *ImmutableStateError) Unwrap() error { return ErrImmutable }

// StateTransitionError cambio de estado no permitido por la máquina de estados.
type StateTransitionError struct {
	From    string
	To      string
	Allowed []string // destinos legales desde From; vacío si From es terminal
}

func (e *StateTransitionError) Error() string {
	msg := fmt.Sprintf("transición de estado inválida: %s → %s", e.From, e.To)
	if len(e.Allowed) == 0 {
		return msg + " (estado terminal)"
	}
	return msg + " (permitidas: " + strings.Join(e.Allowed, ", ") + ")"
}

func (e *StateTransitionError) Unwrap() error { return ErrInvalidTransition }

// DuplicateError colisión con un índice único (invoice_number, email, sku).
type DuplicateError struct {
	Entity string
	Field  string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s duplicado: %s ya existe", e.Entity, e.Field)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicate }
