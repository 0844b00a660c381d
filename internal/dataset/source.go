package dataset

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// LoadError reports a dataset that could not be loaded. It is fatal at
// startup.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading dataset %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Source describes where the dataset is read from.
type Source struct {
	Format    string // "csv" or "sql"
	Path      string
	Delimiter string
	Driver    string
	DSN       string
	Table     string
}

// Open loads the table described by src.
func Open(ctx context.Context, src Source, schema Schema) (*Table, error) {
	switch src.Format {
	case "", "csv":
		delim, err := delimiterRune(src.Delimiter)
		if err != nil {
			return nil, &LoadError{Source: src.Path, Err: err}
		}
		return LoadCSV(src.Path, delim, schema)
	case "sql":
		db, err := OpenSQL(ctx, src.Driver, src.DSN)
		if err != nil {
			return nil, &LoadError{Source: src.Driver, Err: err}
		}
		defer db.Close()
		return LoadSQL(ctx, db, src.Table, schema)
	}
	return nil, &LoadError{Source: src.Path, Err: fmt.Errorf("unknown format %q", src.Format)}
}

func delimiterRune(s string) (rune, error) {
	switch s {
	case "":
		return ',', nil
	case `\t`, "tab":
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	return r, nil
}
