package store

import (
	"fmt"
	"math"
)

// ColumnType tags the physical representation of a table column.
type ColumnType string

const (
	ColumnString  ColumnType = "string"
	ColumnFloat64 ColumnType = "float64"
	ColumnInt64   ColumnType = "int64"
)

// Column is one named, typed value vector. Exactly one of the value slices is
// populated, matching Type.
type Column struct {
	Name    string
	Type    ColumnType
	Strings []string
	Floats  []float64
	Ints    []int64
}

func (c *Column) length() int {
	switch c.Type {
	case ColumnString:
		return len(c.Strings)
	case ColumnFloat64:
		return len(c.Floats)
	case ColumnInt64:
		return len(c.Ints)
	}
	return 0
}

// Table is an ordered set of equal-length columns: the in-memory shape of a
// tabular computation artifact. Per-exposure batch math operates directly on
// the column slices.
type Table struct {
	columns []Column
	index   map[string]int
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{index: map[string]int{}}
}

func (t *Table) addColumn(col Column) error {
	if _, exists := t.index[col.Name]; exists {
		return fmt.Errorf("duplicate column %q", col.Name)
	}
	if len(t.columns) > 0 && col.length() != t.NumRows() {
		return fmt.Errorf("column %q has %d rows, table has %d", col.Name, col.length(), t.NumRows())
	}
	t.index[col.Name] = len(t.columns)
	t.columns = append(t.columns, col)
	return nil
}

// AddStringColumn appends a string column. All columns must be equal length.
func (t *Table) AddStringColumn(name string, values []string) error {
	return t.addColumn(Column{Name: name, Type: ColumnString, Strings: values})
}

// AddFloatColumn appends a float64 column.
func (t *Table) AddFloatColumn(name string, values []float64) error {
	return t.addColumn(Column{Name: name, Type: ColumnFloat64, Floats: values})
}

// AddIntColumn appends an int64 column.
func (t *Table) AddIntColumn(name string, values []int64) error {
	return t.addColumn(Column{Name: name, Type: ColumnInt64, Ints: values})
}

// NumRows is the number of rows in the table (0 for an empty table).
func (t *Table) NumRows() int {
	if len(t.columns) == 0 {
		return 0
	}
	return t.columns[0].length()
}

// NumColumns is the number of columns.
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// Column returns the named column, or nil if absent.
func (t *Table) Column(name string) *Column {
	i, ok := t.index[name]
	if !ok {
		return nil
	}
	return &t.columns[i]
}

// Strings returns the values of a string column.
func (t *Table) Strings(name string) ([]string, error) {
	col := t.Column(name)
	if col == nil || col.Type != ColumnString {
		return nil, fmt.Errorf("no string column %q", name)
	}
	return col.Strings, nil
}

// Floats returns the values of a float64 column.
func (t *Table) Floats(name string) ([]float64, error) {
	col := t.Column(name)
	if col == nil || col.Type != ColumnFloat64 {
		return nil, fmt.Errorf("no float column %q", name)
	}
	return col.Floats, nil
}

// Ints returns the values of an int64 column.
func (t *Table) Ints(name string) ([]int64, error) {
	col := t.Column(name)
	if col == nil || col.Type != ColumnInt64 {
		return nil, fmt.Errorf("no int column %q", name)
	}
	return col.Ints, nil
}

// Equal reports whether two tables have the same shape, column set (order
// included) and bit-identical values.
func (t *Table) Equal(other *Table) bool {
	if other == nil || len(t.columns) != len(other.columns) || t.NumRows() != other.NumRows() {
		return false
	}
	for i := range t.columns {
		a, b := &t.columns[i], &other.columns[i]
		if a.Name != b.Name || a.Type != b.Type {
			return false
		}
		switch a.Type {
		case ColumnString:
			for j := range a.Strings {
				if a.Strings[j] != b.Strings[j] {
					return false
				}
			}
		case ColumnFloat64:
			for j := range a.Floats {
				if math.Float64bits(a.Floats[j]) != math.Float64bits(b.Floats[j]) {
					return false
				}
			}
		case ColumnInt64:
			for j := range a.Ints {
				if a.Ints[j] != b.Ints[j] {
					return false
				}
			}
		}
	}
	return true
}
