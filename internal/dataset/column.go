package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingColumns is returned when a loaded header lacks one or more
	// required schema columns.
	ErrMissingColumns = errors.New("missing expected columns")

	// ErrUnknownColumn is returned when a column name does not map to a Column.
	ErrUnknownColumn = errors.New("unknown column")
)

// Column identifies a logical dataset column independent of the header text
// used in a particular source file.
type Column int

const (
	Zone Column = iota
	Region
	Crop
	Division
	Estimated
	Value
	Title
	Genre
	Year
	Director
	Rating

	numColumns
)

var columnNames = [numColumns]string{
	Zone:      "zone",
	Region:    "region",
	Crop:      "crop",
	Division:  "division",
	Estimated: "estimated",
	Value:     "value",
	Title:     "title",
	Genre:     "genre",
	Year:      "year",
	Director:  "director",
	Rating:    "rating",
}

func (c Column) String() string {
	if c < 0 || c >= numColumns {
		return fmt.Sprintf("column(%d)", int(c))
	}
	return columnNames[c]
}

// Columns returns every known column in declaration order.
func Columns() []Column {
	cols := make([]Column, numColumns)
	for i := range cols {
		cols[i] = Column(i)
	}
	return cols
}

// ParseColumn maps a column name such as "zone" back to its Column.
func ParseColumn(name string) (Column, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range columnNames {
		if n == name {
			return Column(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}

// Kind is the value type of a column.
type Kind int

const (
	Text Kind = iota
	Number
)

// Field binds a Column to the header it is read from.
type Field struct {
	Column   Column
	Header   string
	Kind     Kind
	Optional bool
}

// Schema lists the fields a deployment reads from its source.
type Schema []Field

// WithHeaders returns a copy of s with header names replaced from overrides.
// Empty override values are ignored.
func (s Schema) WithHeaders(overrides map[Column]string) Schema {
	out := make(Schema, len(s))
	copy(out, s)
	for i, f := range out {
		if h := strings.TrimSpace(overrides[f.Column]); h != "" {
			out[i].Header = h
		}
	}
	return out
}

// Columns returns the columns the schema binds.
func (s Schema) Columns() []Column {
	cols := make([]Column, len(s))
	for i, f := range s {
		cols[i] = f.Column
	}
	return cols
}
