package market

import (
	"bytes"
	"encoding/json"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Table is an ordered sequence of rows plus the list of canonical columns that are actually
// populated. Columns is always a subsequence of CanonicalColumns.
type Table struct {
	Columns []Column
	Rows    []Row
}

// Len returns the row count.
func (t Table) Len() int {
	return len(t.Rows)
}

// Has reports whether column c is populated.
func (t Table) Has(c Column) bool {
	for _, col := range t.Columns {
		if col == c {
			return true
		}
	}
	return false
}

// IsEmpty is true when there are no rows or any price column is missing.
func (t Table) IsEmpty() bool {
	if len(t.Rows) == 0 {
		return true
	}
	for _, c := range priceColumns {
		if !t.Has(c) {
			return true
		}
	}
	return false
}

// Tail keeps the last n rows. n <= 0 keeps everything.
func (t Table) Tail(n int) Table {
	if n <= 0 || n >= len(t.Rows) {
		return t
	}
	rows := make([]Row, n)
	copy(rows, t.Rows[len(t.Rows)-n:])
	return Table{Columns: t.Columns, Rows: rows}
}

// WithSymbol returns a copy whose symbol column is set to symbol on every row.
func (t Table) WithSymbol(symbol string) Table {
	out := t.clone()
	for i := range out.Rows {
		out.Rows[i].Symbol = symbol
	}
	out.Columns = withColumn(out.Columns, ColSymbol)
	return out
}

// WithExchange returns a copy whose exchange column is set to exchange on every row.
func (t Table) WithExchange(exchange string) Table {
	out := t.clone()
	for i := range out.Rows {
		out.Rows[i].Exchange = exchange
	}
	out.Columns = withColumn(out.Columns, ColExchange)
	return out
}

func (t Table) clone() Table {
	rows := make([]Row, len(t.Rows))
	copy(rows, t.Rows)
	cols := make([]Column, len(t.Columns))
	copy(cols, t.Columns)
	return Table{Columns: cols, Rows: rows}
}

// withColumn inserts c keeping canonical order.
func withColumn(cols []Column, c Column) []Column {
	set := make(map[Column]struct{}, len(cols)+1)
	for _, col := range cols {
		set[col] = struct{}{}
	}
	set[c] = struct{}{}
	return Project(set)
}

// Project returns the canonical columns contained in set, in canonical order.
func Project(set map[Column]struct{}) []Column {
	out := make([]Column, 0, len(set))
	for _, c := range CanonicalColumns {
		if _, ok := set[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Value returns the cell for column c of row i.
func (t Table) Value(i int, c Column) any {
	r := t.Rows[i]
	switch c {
	case ColTimestamp:
		return r.Timestamp
	case ColOpen:
		return r.Open
	case ColHigh:
		return r.High
	case ColLow:
		return r.Low
	case ColClose:
		return r.Close
	case ColVolume:
		return r.Volume
	case ColSymbol:
		return r.Symbol
	case ColExchange:
		return r.Exchange
	default:
		return nil
	}
}

// Records flattens the table into one map per row holding only the populated columns.
func (t Table) Records() []map[string]any {
	out := make([]map[string]any, 0, len(t.Rows))
	for i := range t.Rows {
		rec := make(map[string]any, len(t.Columns))
		for _, c := range t.Columns {
			rec[string(c)] = t.Value(i, c)
		}
		out = append(out, rec)
	}
	return out
}

// MarshalJSON writes the rows as objects whose keys follow canonical column order.
func (t Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i := range t.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, c := range t.Columns {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.Quote(string(c)))
			buf.WriteByte(':')
			b, err := json.Marshal(t.Value(i, c))
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// MarshalYAML keeps canonical column order in the emitted mappings.
func (t Table) MarshalYAML() (any, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for i := range t.Rows {
		row := &yaml.Node{Kind: yaml.MappingNode}
		for _, c := range t.Columns {
			var val yaml.Node
			if err := val.Encode(t.Value(i, c)); err != nil {
				return nil, err
			}
			row.Content = append(row.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: string(c)},
				&val,
			)
		}
		seq.Content = append(seq.Content, row)
	}
	return seq, nil
}
