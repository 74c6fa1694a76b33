package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/JuanPabloFloresDiaz/Nexus-VCI-ERP--sub001/internal/domain"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		code string
		want error
	}{
		{codeSerializationFailure, domain.ErrConcurrencyConflict},
		{codeDeadlockDetected, domain.ErrConcurrencyConflict},
		{codeLockNotAvailable, domain.ErrConcurrencyConflict},
		{codeUniqueViolation, domain.ErrDuplicate},
		{codeCheckViolation, domain.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			err := mapError("op", &pgconn.PgError{Code: tc.code, ConstraintName: "movimientos_stock_delta_check"})
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.NoError(t, mapError("op", nil))
	plain := errors.New("conexión perdida")
	assert.ErrorIs(t, mapError("op", plain), plain)
}
