package backend

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// SQLExecutor runs queries through database/sql. DriverName is "postgres"
// for lib/pq or "pgx" for the pgx stdlib adapter.
type SQLExecutor struct {
	driverName string
	dataSource string
}

// NewSQLExecutor returns an executor that opens dataSource with driverName
// for every query.
func NewSQLExecutor(driverName, dataSource string) *SQLExecutor {
	return &SQLExecutor{driverName: driverName, dataSource: dataSource}
}

// Execute implements Executor.
func (e *SQLExecutor) Execute(ctx context.Context, query string, args []string) (*ResultSet, error) {
	db, err := sqlx.ConnectContext(ctx, e.driverName, e.dataSource)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	queryArgs := make([]any, len(args))
	for i, a := range args {
		queryArgs[i] = a
	}

	rows, err := db.QueryxContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	rs := NewResultSet(len(cols))
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
		}
		row := make([]sql.NullString, len(values))
		for i, v := range values {
			row[i] = textValue(v)
		}
		rs.Append(row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return rs, nil
}

// textValue renders a driver value the way PostgreSQL prints it in text
// result format, so booleans come back as "t" and "f".
func textValue(v any) sql.NullString {
	switch x := v.(type) {
	case nil:
		return Null()
	case string:
		return Text(x)
	case []byte:
		return Text(string(x))
	case bool:
		if x {
			return Text("t")
		}
		return Text("f")
	case int64:
		return Text(strconv.FormatInt(x, 10))
	case float64:
		return Text(strconv.FormatFloat(x, 'g', -1, 64))
	case time.Time:
		return Text(x.Format("2006-01-02 15:04:05.999999-07"))
	}
	return Text(fmt.Sprint(v))
}
