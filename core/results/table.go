// Package results reads solved values back into a table and checks that the
// solution conserves energy.
package results

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Kind classifies a column.
type Kind int

const (
	// KindAsset holds one asset attribute. Totals sum these.
	KindAsset Kind = iota
	// KindProjection holds an aggregate over an EV array axis.
	KindProjection
	// KindTotal sums every asset column of one attribute.
	KindTotal
	// KindInput echoes an interval data series.
	KindInput
)

func (k Kind) String() string {
	switch k {
	case KindAsset:
		return "asset"
	case KindProjection:
		return "projection"
	case KindTotal:
		return "total"
	default:
		return "input"
	}
}

// Column is one named series of the result table.
type Column struct {
	Name      string
	Asset     string
	Attribute string
	Kind      Kind
	Spill     bool
	Binary    bool
	Values    []float64
}

// Sum returns the total of the column over every interval.
func (c *Column) Sum() float64 {
	return floats.Sum(c.Values)
}

// Table is an ordered set of columns sharing one interval index.
type Table struct {
	rows  int
	cols  []*Column
	index map[string]*Column
}

// NewTable returns an empty table of rows intervals.
func NewTable(rows int) *Table {
	return &Table{rows: rows, index: make(map[string]*Column)}
}

// Rows returns the number of intervals.
func (t *Table) Rows() int { return t.rows }

// Columns returns the columns in insertion order.
func (t *Table) Columns() []*Column { return t.cols }

// Names returns the column names in insertion order.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// Column looks a column up by name.
func (t *Table) Column(name string) (*Column, bool) {
	c, ok := t.index[name]
	return c, ok
}

// Values returns the values of a column, or nil when it does not exist.
func (t *Table) Values(name string) []float64 {
	if c, ok := t.index[name]; ok {
		return c.Values
	}
	return nil
}

// ensure returns the named column, creating a zero filled one from proto.
func (t *Table) ensure(proto Column) *Column {
	if c, ok := t.index[proto.Name]; ok {
		return c
	}
	c := proto
	c.Values = make([]float64, t.rows)
	t.cols = append(t.cols, &c)
	t.index[c.Name] = &c
	return &c
}

// Add appends a fully populated column.
func (t *Table) Add(c Column) error {
	if _, ok := t.index[c.Name]; ok {
		return fmt.Errorf("results: duplicate column %q", c.Name)
	}
	if len(c.Values) != t.rows {
		return fmt.Errorf("results: column %q has %d values, expected %d", c.Name, len(c.Values), t.rows)
	}
	t.cols = append(t.cols, &c)
	t.index[c.Name] = &c
	return nil
}

// Select returns the columns matching keep, in table order.
func (t *Table) Select(keep func(*Column) bool) []*Column {
	var out []*Column
	for _, c := range t.cols {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
