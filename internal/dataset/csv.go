package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// ReadCSV parses delimited text with a header row and binds it to schema.
func ReadCSV(r io.Reader, delimiter rune, schema Schema) (*Table, error) {
	cr := csv.NewReader(r)
	if delimiter != 0 {
		cr.Comma = delimiter
	}
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty file: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	return New(header, records, schema)
}

// LoadCSV opens path and reads it with ReadCSV.
func LoadCSV(path string, delimiter rune, schema Schema) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	defer f.Close()

	t, err := ReadCSV(f, delimiter, schema)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	return t, nil
}
