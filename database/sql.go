package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	Execer
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func Insert(ctx context.Context, ex Execer, table string, cols []string, values []interface{}) error {
	if len(cols) != len(values) {
		return fmt.Errorf("insert: %d columns but %d values for %s", len(cols), len(values), table)
	}

	_, err := ex.ExecContext(ctx, insertSQL(table, cols), values...)
	if err != nil {
		return fmt.Errorf("insert: unable to insert record in %s: %w", table, err)
	}
	return nil
}

// Update sets cols to values on the rows matching every condCols = condValues pair.
func Update(ctx context.Context, ex Execer, table string, cols []string, values []interface{}, condCols []string, condValues []interface{}) (int64, error) {
	if len(cols) == 0 {
		return 0, fmt.Errorf("update: no columns to update in %s", table)
	}

	args := append(append([]interface{}{}, values...), condValues...)
	result, err := ex.ExecContext(ctx, updateSQL(table, cols, condCols), args...)
	if err != nil {
		return -1, fmt.Errorf("update: unable to update record in %s: %w", table, err)
	}
	return result.RowsAffected()
}

// Upsert inserts a row or overwrites cols when conflictCols already exist. An existing row keeps its
// id and created_at.
func Upsert(ctx context.Context, ex Execer, table string, cols []string, values []interface{}, conflictCols []string) error {
	_, err := ex.ExecContext(ctx, upsertSQL(table, cols, conflictCols), values...)
	if err != nil {
		return fmt.Errorf("upsert: unable to upsert record in %s: %w", table, err)
	}
	return nil
}

func Count(ctx context.Context, q Querier, query string, args ...interface{}) (int64, error) {
	var n int64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func insertSQL(table string, cols []string) string {
	return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, table, strings.Join(cols, ", "), strings.Join(placeholders(1, len(cols)), ", "))
}

func updateSQL(table string, cols, condCols []string) string {
	set := make([]string, len(cols))
	for i, col := range cols {
		set[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}

	conds := make([]string, len(condCols))
	for i, col := range condCols {
		conds[i] = fmt.Sprintf("%s = $%d", col, len(cols)+i+1)
	}

	q := fmt.Sprintf(`UPDATE %s SET %s`, table, strings.Join(set, ", "))
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	return q
}

func upsertSQL(table string, cols, conflictCols []string) string {
	conflict := map[string]bool{"id": true, "created_at": true}
	for _, c := range conflictCols {
		conflict[c] = true
	}

	var set []string
	for _, col := range cols {
		if !conflict[col] {
			set = append(set, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	}

	action := "DO NOTHING"
	if len(set) > 0 {
		action = "DO UPDATE SET " + strings.Join(set, ", ")
	}
	return fmt.Sprintf(`%s ON CONFLICT (%s) %s`, insertSQL(table, cols), strings.Join(conflictCols, ", "), action)
}

func placeholders(start, n int) []string {
	p := make([]string, n)
	for i := range p {
		p[i] = fmt.Sprintf("$%d", start+i)
	}
	return p
}
