package database

import (
	"database/sql"

	"github.com/jackc/pgx/v5/pgtype"
)

// Array scans a Postgres array column into dst, which must point to a slice.
func Array(dst interface{}) sql.Scanner {
	return pgtype.NewMap().SQLScanner(dst)
}
