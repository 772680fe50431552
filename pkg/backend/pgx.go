package backend

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// PgxExecutor opens a fresh pgx connection for every query and closes it
// before returning.
type PgxExecutor struct {
	connString string
}

// NewPgxExecutor returns an executor for the given connection string.
func NewPgxExecutor(connString string) *PgxExecutor {
	return &PgxExecutor{connString: connString}
}

// Execute implements Executor. Parameter types are left for the server to
// infer and results are requested in text format.
func (e *PgxExecutor) Execute(ctx context.Context, query string, args []string) (*ResultSet, error) {
	conn, err := pgx.Connect(ctx, e.connString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	defer conn.Close(ctx)

	queryArgs := make([]any, 0, len(args)+1)
	queryArgs = append(queryArgs, pgx.QueryResultFormats{pgx.TextFormatCode})
	for _, a := range args {
		queryArgs = append(queryArgs, a)
	}

	rows, err := conn.Query(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	rs := NewResultSet(len(rows.FieldDescriptions()))
	for rows.Next() {
		raw := rows.RawValues()
		row := make([]sql.NullString, len(raw))
		for i, v := range raw {
			if v != nil {
				row[i] = Text(string(v))
			}
		}
		rs.Append(row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return rs, nil
}
