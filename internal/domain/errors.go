package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrUserNotFound        = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists  = errors.New("el email ya está registrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrValidation          = errors.New("validación fallida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrCrossTenantAccess   = errors.New("el recurso pertenece a otra empresa")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInvalidState        = errors.New("transición de estado inválida")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrNoExchangeRate      = errors.New("no existe tasa de cambio para el par de divisas")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, reintentos agotados")
)

// NotFoundError indica que la entidad no existe o fue eliminada (soft delete).
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFound construye un NotFoundError.
func NewNotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// CrossTenantError indica que la entidad referenciada pertenece a otra empresa.
type CrossTenantError struct {
	Entity string
	ID     string
}

func (e *CrossTenantError) Error() string {
	return fmt.Sprintf("%s %s no pertenece a la empresa del usuario", e.Entity, e.ID)
}

func (e *CrossTenantError) Is(target error) bool { return target == ErrCrossTenantAccess }

// InsufficientStockError detalla el faltante de una variante en un almacén.
type InsufficientStockError struct {
	VariantID   string
	WarehouseID string
	Available   decimal.Decimal
	Requested   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para variante %s en almacén %s: disponible %s, solicitado %s",
		e.VariantID, e.WarehouseID, e.Available.String(), e.Requested.String())
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// NoExchangeRateError indica que no hay fila de TasaCambio para el par (origen, destino).
type NoExchangeRateError struct {
	From string
	To   string
}

func (e *NoExchangeRateError) Error() string {
	return fmt.Sprintf("no existe tasa de cambio %s -> %s", e.From, e.To)
}

func (e *NoExchangeRateError) Is(target error) bool { return target == ErrNoExchangeRate }

// ValidationError señala un campo con valor inválido.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation || target == ErrInvalidInput
}

// NewValidation construye un ValidationError.
func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StateError señala una transición no permitida en la máquina de estados de un documento.
type StateError struct {
	Document string
	From     string
	To       string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: no se puede pasar de %s a %s", e.Document, e.From, e.To)
}

func (e *StateError) Is(target error) bool { return target == ErrInvalidState }
