package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// OpenSQL opens and pings a database/sql connection. Supported drivers are
// "sqlite", "postgres" and "mysql".
func OpenSQL(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	switch driver {
	case "sqlite", "postgres", "mysql":
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}

// LoadSQL reads every row of table into memory. Column names become the
// header; NULL cells read as empty text.
func LoadSQL(ctx context.Context, db *sql.DB, table string, schema Schema) (*Table, error) {
	if !identRe.MatchString(table) {
		return nil, &LoadError{Source: table, Err: fmt.Errorf("invalid table name %q", table)}
	}

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+table)
	if err != nil {
		return nil, &LoadError{Source: table, Err: fmt.Errorf("querying table: %w", err)}
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, &LoadError{Source: table, Err: fmt.Errorf("reading columns: %w", err)}
	}

	var records [][]string
	for rows.Next() {
		vals := make([]sql.NullString, len(header))
		ptrs := make([]any, len(header))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &LoadError{Source: table, Err: fmt.Errorf("scanning row: %w", err)}
		}
		rec := make([]string, len(header))
		for i, v := range vals {
			rec[i] = v.String
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &LoadError{Source: table, Err: fmt.Errorf("iterating rows: %w", err)}
	}

	t, err := New(header, records, schema)
	if err != nil {
		return nil, &LoadError{Source: table, Err: err}
	}
	return t, nil
}
