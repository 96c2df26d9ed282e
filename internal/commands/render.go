package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/gaborage/sqldao/dao"
)

// Output formats accepted by --format.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Column names used when a write result is rendered as a row.
const (
	columnRowsAffected = "rows_affected"
	columnGeneratedKey = "generated_key"
)

func validateFormat(format string) error {
	switch format {
	case FormatTable, FormatJSON, FormatYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (use %s, %s or %s)", format, FormatTable, FormatJSON, FormatYAML)
	}
}

// render writes res in format. Writes are shown as a one-row result.
func render(w io.Writer, res dao.Result, format string) error {
	var rows []dao.Row
	switch res.Shape() {
	case dao.RowList:
		rows = res.Rows()
	case dao.SingleRow:
		rows = []dao.Row{res.Row()}
	case dao.GeneratedKey:
		rows = []dao.Row{{columnGeneratedKey: dao.Int(res.GeneratedKey())}}
	default:
		rows = []dao.Row{{columnRowsAffected: dao.Int(res.RowsAffected())}}
	}

	switch format {
	case FormatJSON, FormatYAML:
		if res.Shape() == dao.RowList {
			return encode(w, format, rows)
		}
		return encode(w, format, rows[0])
	default:
		return renderTable(w, rows)
	}
}

func encode(w io.Writer, format string, v any) error {
	if format == FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// columnsOf returns the sorted union of column names; rows may differ when a
// query returns duplicate names.
func columnsOf(rows []dao.Row) []string {
	var cols []string
	for _, r := range rows {
		for _, c := range r.Columns() {
			if !slices.Contains(cols, c) {
				cols = append(cols, c)
			}
		}
	}
	slices.Sort(cols)
	return cols
}

func renderTable(w io.Writer, rows []dao.Row) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	cols := columnsOf(rows)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	// Column names are data; print them as the database returned them.
	t.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	t.AppendHeader(header)

	for _, r := range rows {
		row := make(table.Row, len(cols))
		for i, c := range cols {
			v, ok := r.Get(c)
			if !ok {
				v = dao.Null()
			}
			row[i] = v.String()
		}
		t.AppendRow(row)
	}

	t.Render()
	if len(rows) == 1 {
		_, _ = fmt.Fprintln(w, "(1 row)")
	} else {
		_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
	}
	return nil
}
