package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier abstrae *pgxpool.Pool y pgx.Tx para que un repositorio funcione con ambos.
// También satisface pgxscan.Querier.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// psql builder de squirrel con placeholders $n.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// scopeList aplica filtro de borrado lógico y paginación a un listado.
func scopeList(q squirrel.SelectBuilder, table string, opts listOpts) squirrel.SelectBuilder {
	if !opts.IncludeDeleted {
		q = q.Where(squirrel.Eq{table + ".deleted_at": nil})
	}
	return q.Limit(uint64(opts.Limit)).Offset(uint64(opts.Offset))
}
