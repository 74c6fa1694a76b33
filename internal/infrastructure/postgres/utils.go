package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain/repository"
)

type listOpts = repository.ListOptions

// Códigos SQLSTATE que el ledger trata como conflicto reintentable.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return false
}

// mapError traduce errores de Postgres a errores de dominio y agrega contexto.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
			return fmt.Errorf("%s: %w", op, domain.ErrConcurrencyConflict)
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
		case codeCheckViolation:
			return fmt.Errorf("%s: restricción %s: %w", op, pgErr.ConstraintName, domain.ErrValidation)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// noRows indica que QueryRow no encontró fila.
func noRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// notFoundIfNone convierte 0 filas afectadas en NotFoundError.
func notFoundIfNone(tag pgconn.CommandTag, entity, id string) error {
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound(entity, id)
	}
	return nil
}

// validID evita consultar columnas UUID con texto inválido; un ID mal formado no existe.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// softDeleteRow marca deleted_at en una fila activa de table.
func softDeleteRow(ctx context.Context, q Querier, table, entityName, id string) error {
	if !validID(id) {
		return domain.NewNotFound(entityName, id)
	}
	tag, err := q.Exec(ctx, `UPDATE `+table+` SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return mapError("delete "+table, err)
	}
	return notFoundIfNone(tag, entityName, id)
}

func notFoundPurchase(id string) error { return domain.NewNotFound("compra", id) }
func notFoundOrder(id string) error    { return domain.NewNotFound("pedido", id) }
