package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Table is an immutable, in-memory set of records sharing one header. Every
// operation returns a new Table; rows are shared between a Table and the
// subsets derived from it.
type Table struct {
	header []string
	index  [numColumns]int
	kinds  [numColumns]Kind
	rows   []row
}

type row struct {
	cells []string
	nums  [numColumns]float64
}

// New binds schema to header and parses records into a Table. Every
// non-optional field must appear in header. Number fields are parsed once
// here; an empty cell counts as zero and NaN or Inf is rejected.
func New(header []string, records [][]string, schema Schema) (*Table, error) {
	t := &Table{header: make([]string, len(header))}
	for i, h := range header {
		t.header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	for i := range t.index {
		t.index[i] = -1
	}

	pos := make(map[string]int, len(t.header))
	for i, h := range t.header {
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	var missing []string
	for _, f := range schema {
		i, ok := pos[f.Header]
		if !ok {
			if !f.Optional {
				missing = append(missing, f.Header)
			}
			continue
		}
		t.index[f.Column] = i
		t.kinds[f.Column] = f.Kind
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	t.rows = make([]row, 0, len(records))
	for n, rec := range records {
		if len(rec) != len(t.header) {
			return nil, fmt.Errorf("row %d: expected %d fields, got %d", n+1, len(t.header), len(rec))
		}
		r := row{cells: rec}
		for _, f := range schema {
			i := t.index[f.Column]
			if i < 0 || f.Kind != Number {
				continue
			}
			v, err := parseNumber(rec[i])
			if err != nil {
				return nil, fmt.Errorf("row %d, column %s: %w", n+1, f.Header, err)
			}
			r.nums[f.Column] = v
		}
		t.rows = append(t.rows, r)
	}
	return t, nil
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Header returns the source header in file order.
func (t *Table) Header() []string {
	out := make([]string, len(t.header))
	copy(out, t.header)
	return out
}

// Has reports whether c is bound to a header of the loaded source.
func (t *Table) Has(c Column) bool {
	return c >= 0 && c < numColumns && t.index[c] >= 0
}

// HeaderOf returns the header text c was bound to, or the column name when
// c is unbound.
func (t *Table) HeaderOf(c Column) string {
	if !t.Has(c) {
		return c.String()
	}
	return t.header[t.index[c]]
}

// Require fails with ErrMissingColumns unless every column in cols is bound.
func (t *Table) Require(cols ...Column) error {
	var missing []string
	for _, c := range cols {
		if !t.Has(c) {
			missing = append(missing, c.String())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

func (t *Table) text(r row, c Column) string {
	if i := t.index[c]; i >= 0 {
		return r.cells[i]
	}
	return ""
}

func (t *Table) with(rows []row) *Table {
	return &Table{header: t.header, index: t.index, kinds: t.kinds, rows: rows}
}

func (t *Table) filter(keep func(r row) bool) *Table {
	var rows []row
	for _, r := range t.rows {
		if keep(r) {
			rows = append(rows, r)
		}
	}
	return t.with(rows)
}

// FilterEquals keeps rows whose c cell equals value exactly. The comparison
// is case-sensitive; callers normalize case before calling.
func (t *Table) FilterEquals(c Column, value string) *Table {
	return t.filter(func(r row) bool { return t.text(r, c) == value })
}

// FilterContains keeps rows whose c cell contains substr, ignoring case.
func (t *Table) FilterContains(c Column, substr string) *Table {
	substr = strings.ToLower(substr)
	return t.filter(func(r row) bool {
		return strings.Contains(strings.ToLower(t.text(r, c)), substr)
	})
}

// FilterNumber keeps rows whose numeric c value satisfies op against threshold.
func (t *Table) FilterNumber(c Column, op Op, threshold float64) *Table {
	return t.filter(func(r row) bool { return op.Compare(r.nums[c], threshold) })
}

// UniqueValues returns the distinct non-empty values of c in first-seen order.
func (t *Table) UniqueValues(c Column) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range t.rows {
		v := t.text(r, c)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Sum totals the numeric values of c.
func (t *Table) Sum(c Column) float64 {
	var total float64
	for _, r := range t.rows {
		total += r.nums[c]
	}
	return total
}

// SortBy returns the rows stably ordered by c. Number columns compare
// numerically, text columns lexically.
func (t *Table) SortBy(c Column, descending bool) *Table {
	rows := make([]row, len(t.rows))
	copy(rows, t.rows)
	less := func(a, b row) bool { return t.text(a, c) < t.text(b, c) }
	if t.kinds[c] == Number {
		less = func(a, b row) bool { return a.nums[c] < b.nums[c] }
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if descending {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
	return t.with(rows)
}

// Cells returns the raw cell text of every row.
func (t *Table) Cells() [][]string {
	out := make([][]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.cells
	}
	return out
}

// Records returns one map per row keyed by header. Bound number columns are
// emitted as float64, everything else as text.
func (t *Table) Records() []map[string]any {
	numeric := make(map[int]Column)
	for c := Column(0); c < numColumns; c++ {
		if t.index[c] >= 0 && t.kinds[c] == Number {
			numeric[t.index[c]] = c
		}
	}
	out := make([]map[string]any, len(t.rows))
	for i, r := range t.rows {
		rec := make(map[string]any, len(t.header))
		for j, h := range t.header {
			if c, ok := numeric[j]; ok {
				rec[h] = r.nums[c]
				continue
			}
			rec[h] = r.cells[j]
		}
		out[i] = rec
	}
	return out
}

// Op is a numeric comparison operator.
type Op string

const (
	OpGreater      Op = ">"
	OpLess         Op = "<"
	OpGreaterEqual Op = ">="
	OpLessEqual    Op = "<="
	OpEqual        Op = "=="
)

// ParseOp validates s as a comparison operator.
func ParseOp(s string) (Op, error) {
	switch op := Op(s); op {
	case OpGreater, OpLess, OpGreaterEqual, OpLessEqual, OpEqual:
		return op, nil
	}
	return "", fmt.Errorf("unknown operator %q", s)
}

// Compare applies the operator as a op b.
func (o Op) Compare(a, b float64) bool {
	switch o {
	case OpGreater:
		return a > b
	case OpLess:
		return a < b
	case OpGreaterEqual:
		return a >= b
	case OpLessEqual:
		return a <= b
	case OpEqual:
		return a == b
	}
	return false
}
