// Package backend runs compiled queries against the credential database.
package backend

import (
	"context"
	"database/sql"
	"errors"
)

var (
	// ErrConnectionFailed is returned when no usable connection could be made
	ErrConnectionFailed = errors.New("database connection failed")

	// ErrQueryFailed is returned when the database rejected or aborted the query
	ErrQueryFailed = errors.New("database query failed")
)

// Executor runs one parameterized query. query carries $n markers and args
// holds their values in marker order. Implementations bind args out of band
// and return every row in text form.
type Executor interface {
	Execute(ctx context.Context, query string, args []string) (*ResultSet, error)
}

// ResultSet is a fully read query result with text valued, nullable cells.
type ResultSet struct {
	columns int
	rows    [][]sql.NullString
}

// NewResultSet builds a result with the given column count. Rows shorter
// than columns are padded with NULLs.
func NewResultSet(columns int, rows ...[]sql.NullString) *ResultSet {
	rs := &ResultSet{columns: columns}
	for _, r := range rows {
		rs.Append(r)
	}
	return rs
}

// Append adds a row.
func (rs *ResultSet) Append(row []sql.NullString) {
	if len(row) < rs.columns {
		padded := make([]sql.NullString, rs.columns)
		copy(padded, row)
		row = padded
	}
	rs.rows = append(rs.rows, row)
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rows)
}

// NumColumns returns the number of columns.
func (rs *ResultSet) NumColumns() int {
	if rs == nil {
		return 0
	}
	return rs.columns
}

// IsNull reports whether a cell is NULL. Cells outside the result are NULL.
func (rs *ResultSet) IsNull(row, col int) bool {
	if row < 0 || row >= rs.Len() || col < 0 || col >= rs.columns {
		return true
	}
	return !rs.rows[row][col].Valid
}

// Text returns the text of a cell, or "" for NULL cells.
func (rs *ResultSet) Text(row, col int) string {
	if rs.IsNull(row, col) {
		return ""
	}
	return rs.rows[row][col].String
}

// Text is a non-NULL cell.
func Text(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

// Null is a NULL cell.
func Null() sql.NullString {
	return sql.NullString{}
}
