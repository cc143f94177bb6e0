package output

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"
	"time"
)

// TimeLayout is the table rendering of timestamps.
const TimeLayout = "2006-01-02 15:04"

var timeType = reflect.TypeOf(time.Time{})

// TableFormatter formats data as an aligned text table.
type TableFormatter struct {
	Wide      bool
	NoHeaders bool
}

// Format renders data as a table. It accepts a *Table, a slice of structs,
// a map or a single struct; anything else is written with %v.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}

	switch t := data.(type) {
	case *Table:
		return t.RenderWithOptions(w, f.NoHeaders)
	case Table:
		return t.RenderWithOptions(w, f.NoHeaders)
	}

	table, ok := toTable(reflect.ValueOf(data), f.Wide)
	if !ok {
		_, err := fmt.Fprintf(w, "%v\n", data)
		return err
	}
	return table.RenderWithOptions(w, f.NoHeaders)
}

// column describes one struct field rendered as a column.
type column struct {
	index  int
	header string
}

func toTable(v reflect.Value, wide bool) (*Table, bool) {
	v = indirect(v)
	if !v.IsValid() {
		return nil, false
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return sliceToTable(v, wide), true
	case reflect.Map:
		return mapToTable(v), true
	case reflect.Struct:
		if v.Type() == timeType {
			return nil, false
		}
		return structToTable(v, wide), true
	default:
		return nil, false
	}
}

func sliceToTable(v reflect.Value, wide bool) *Table {
	table := &Table{}

	elemType := v.Type().Elem()
	for elemType.Kind() == reflect.Ptr {
		elemType = elemType.Elem()
	}

	if elemType.Kind() != reflect.Struct || elemType == timeType {
		table.Headers = []string{"VALUE"}
		for i := 0; i < v.Len(); i++ {
			table.AddRow(formatValue(v.Index(i)))
		}
		return table
	}

	cols := columns(elemType, wide)
	for _, c := range cols {
		table.Headers = append(table.Headers, c.header)
	}
	for i := 0; i < v.Len(); i++ {
		elem := indirect(v.Index(i))
		row := make([]string, len(cols))
		for j, c := range cols {
			if elem.IsValid() {
				row[j] = formatValue(elem.Field(c.index))
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func mapToTable(v reflect.Value) *Table {
	table := &Table{Headers: []string{"KEY", "VALUE"}}

	iter := v.MapRange()
	for iter.Next() {
		table.AddRow(formatValue(iter.Key()), formatValue(iter.Value()))
	}
	sort.Slice(table.Rows, func(i, j int) bool {
		return table.Rows[i][0] < table.Rows[j][0]
	})
	return table
}

func structToTable(v reflect.Value, wide bool) *Table {
	table := &Table{Headers: []string{"FIELD", "VALUE"}}
	for _, c := range columns(v.Type(), wide) {
		table.AddRow(c.header, formatValue(v.Field(c.index)))
	}
	return table
}

// columns lists the exported fields of t honoring the table tag.
func columns(t reflect.Type, wide bool) []column {
	var cols []column
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, opts, _ := strings.Cut(field.Tag.Get("table"), ",")
		if name == "-" {
			continue
		}
		if opts == "wide" && !wide {
			continue
		}
		if name == "" {
			name = headerName(field)
		}
		cols = append(cols, column{index: i, header: name})
	}
	return cols
}

// headerName derives a column header from the json tag or field name.
func headerName(field reflect.StructField) string {
	name := field.Name
	if tag, _, _ := strings.Cut(field.Tag.Get("json"), ","); tag != "" && tag != "-" {
		return strings.ToUpper(tag)
	}
	return strings.ToUpper(toSnakeCase(name))
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// formatValue formats a single cell.
func formatValue(v reflect.Value) string {
	v = indirect(v)
	if !v.IsValid() {
		return "-"
	}

	if v.Type() == timeType {
		t := v.Interface().(time.Time)
		if t.IsZero() {
			return "-"
		}
		return t.Local().Format(TimeLayout)
	}
	if s, ok := v.Interface().(fmt.Stringer); ok {
		if str := s.String(); str != "" {
			return str
		}
		return "-"
	}

	switch v.Kind() {
	case reflect.String:
		if v.String() == "" {
			return "-"
		}
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf("%d", v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("%d", v.Uint())
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%g", v.Float())
	case reflect.Bool:
		return fmt.Sprintf("%t", v.Bool())
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return "-"
		}
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = formatValue(v.Index(i))
		}
		return strings.Join(parts, ",")
	case reflect.Map:
		if v.Len() == 0 {
			return "-"
		}
		return fmt.Sprintf("{%d keys}", v.Len())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

// toSnakeCase converts CamelCase to Snake_Case.
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Table represents tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Render renders the table to the writer.
func (t *Table) Render(w io.Writer) error {
	return t.RenderWithOptions(w, false)
}

// RenderWithOptions renders the table, optionally without the header row.
func (t *Table) RenderWithOptions(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if !noHeaders && len(t.Headers) > 0 {
		if _, err := fmt.Fprintln(tw, strings.Join(t.Headers, "\t")); err != nil {
			return err
		}
	}
	for _, row := range t.Rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// SetHeaders sets the table headers.
func (t *Table) SetHeaders(headers ...string) {
	t.Headers = headers
}
