package dataset

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// AggFunc is the reduction applied to a group.
type AggFunc int

const (
	AggSum AggFunc = iota
	AggCount
)

// Aggregate describes one measure column of a grouped result.
type Aggregate struct {
	Func   AggFunc
	Column Column
	// Name overrides the output header. Defaults to the source header for
	// sums and "count" for counts.
	Name string
}

// Sum aggregates c by addition.
func Sum(c Column) Aggregate { return Aggregate{Func: AggSum, Column: c} }

// Count aggregates by counting rows.
func Count() Aggregate { return Aggregate{Func: AggCount, Name: "count"} }

// Grouped is the result of GroupAggregate: one row per distinct key tuple,
// carrying the key cells and one value per measure.
type Grouped struct {
	keys     []string
	measures []string
	funcs    []AggFunc
	rows     []GroupRow
}

// GroupRow is one group of a Grouped result.
type GroupRow struct {
	Keys   []string
	Values []float64
}

// GroupAggregate groups rows by the cells of by and reduces each group with
// aggs. Groups appear in the order their first row was seen.
func (t *Table) GroupAggregate(by []Column, aggs []Aggregate) *Grouped {
	g := &Grouped{
		keys:     make([]string, len(by)),
		measures: make([]string, len(aggs)),
		funcs:    make([]AggFunc, len(aggs)),
	}
	for i, c := range by {
		g.keys[i] = t.HeaderOf(c)
	}
	for i, a := range aggs {
		g.funcs[i] = a.Func
		switch {
		case a.Name != "":
			g.measures[i] = a.Name
		case a.Func == AggCount:
			g.measures[i] = "count"
		default:
			g.measures[i] = t.HeaderOf(a.Column)
		}
	}

	pos := make(map[string]int)
	for _, r := range t.rows {
		keys := make([]string, len(by))
		for i, c := range by {
			keys[i] = t.text(r, c)
		}
		id := strings.Join(keys, "\x00")
		i, ok := pos[id]
		if !ok {
			i = len(g.rows)
			pos[id] = i
			g.rows = append(g.rows, GroupRow{Keys: keys, Values: make([]float64, len(aggs))})
		}
		for j, a := range aggs {
			switch a.Func {
			case AggSum:
				g.rows[i].Values[j] += r.nums[a.Column]
			case AggCount:
				g.rows[i].Values[j]++
			}
		}
	}
	return g
}

// Len returns the number of groups.
func (g *Grouped) Len() int { return len(g.rows) }

// Rows returns the groups in their current order.
func (g *Grouped) Rows() []GroupRow {
	out := make([]GroupRow, len(g.rows))
	copy(out, g.rows)
	return out
}

func (g *Grouped) with(rows []GroupRow) *Grouped {
	return &Grouped{keys: g.keys, measures: g.measures, funcs: g.funcs, rows: rows}
}

// SortBy orders groups by the measure at index m. The sort is stable, so
// equal values keep their group order.
func (g *Grouped) SortBy(m int, descending bool) *Grouped {
	rows := make([]GroupRow, len(g.rows))
	copy(rows, g.rows)
	sort.SliceStable(rows, func(i, j int) bool {
		if descending {
			return rows[i].Values[m] > rows[j].Values[m]
		}
		return rows[i].Values[m] < rows[j].Values[m]
	})
	return g.with(rows)
}

// TopN returns the n groups with the largest measure m, descending. A
// negative n yields no groups.
func (g *Grouped) TopN(m, n int) *Grouped {
	sorted := g.SortBy(m, true)
	if n < 0 {
		n = 0
	}
	if n < len(sorted.rows) {
		sorted.rows = sorted.rows[:n]
	}
	return sorted
}

// Header returns the key headers followed by the measure headers.
func (g *Grouped) Header() []string {
	out := make([]string, 0, len(g.keys)+len(g.measures))
	out = append(out, g.keys...)
	return append(out, g.measures...)
}

// Cells renders every group as text.
func (g *Grouped) Cells() [][]string {
	out := make([][]string, len(g.rows))
	for i, r := range g.rows {
		line := make([]string, 0, len(r.Keys)+len(r.Values))
		line = append(line, r.Keys...)
		for j, v := range r.Values {
			line = append(line, g.formatValue(j, v))
		}
		out[i] = line
	}
	return out
}

func (g *Grouped) formatValue(m int, v float64) string {
	if g.funcs[m] == AggCount {
		return strconv.Itoa(int(v))
	}
	// Sums print with at most six decimals.
	return humanize.Ftoa(v)
}

// Records returns one map per group keyed by header. Counts are ints, sums
// are float64.
func (g *Grouped) Records() []map[string]any {
	out := make([]map[string]any, len(g.rows))
	for i, r := range g.rows {
		rec := make(map[string]any, len(g.keys)+len(g.measures))
		for j, k := range g.keys {
			rec[k] = r.Keys[j]
		}
		for j, m := range g.measures {
			if g.funcs[j] == AggCount {
				rec[m] = int(r.Values[j])
				continue
			}
			rec[m] = r.Values[j]
		}
		out[i] = rec
	}
	return out
}
