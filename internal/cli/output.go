package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	gojson "github.com/goccy/go-json"

	"github.com/mesh-intelligence/biblio/internal/engine"
	"github.com/mesh-intelligence/biblio/internal/schema"
	"github.com/mesh-intelligence/biblio/pkg/types"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	data, err := gojson.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// newTable returns a tabwriter; rows are written tab-separated.
func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// printRows prints listing rows under the entity's column labels.
func printRows(w io.Writer, ent *schema.Entity, rows []engine.Row) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintf(w, "No %s found.\n", ent.Name)
		return err
	}

	headers := []string{"ID"}
	for _, col := range ent.Columns {
		label := col
		if f, ok := ent.Field(col); ok && f.Label != "" {
			label = f.Label
		}
		headers = append(headers, strings.ToUpper(label))
	}

	tw := newTable(w)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		cells := append([]string{row.ID}, row.Cells...)
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Total: %d record(s)\n", len(rows))
	return err
}

// printRecord prints one record as label/value lines in field order.
func printRecord(w io.Writer, ent *schema.Entity, rec types.Record) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID\t%s\n", rec.ID())
	seen := map[string]bool{types.IDField: true}
	for _, f := range ent.Fields {
		seen[f.Name] = true
		fmt.Fprintf(tw, "%s\t%s\n", f.Label, rec.String(f.Name))
	}
	var extra []string
	for key := range rec {
		if !seen[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		fmt.Fprintf(tw, "%s\t%s\n", schema.Humanize(key), rec.String(key))
	}
	return tw.Flush()
}

// parseAssignments turns field=value arguments into a record. Values stay
// strings; the schema normalizes them per field kind.
func parseAssignments(args []string) (types.Record, error) {
	rec := make(types.Record, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, usageError("expected field=value, got %q", arg)
		}
		rec[key] = value
	}
	return rec, nil
}
