package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

func validateOutput(format string) error {
	switch format {
	case outputTable, outputJSON, outputYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
}

// table is the tabular rendering of a result.
type table struct {
	header []string
	rows   [][]string
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

// printer renders results in the selected format. JSON and YAML print the
// value itself; the table format prints the table built for it.
type printer struct {
	format string
	w      io.Writer
}

func (p printer) print(v any, t *table) error {
	switch p.format {
	case outputJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding to JSON: %w", err)
		}
		return nil
	case outputYAML:
		data, err := toYAML(v)
		if err != nil {
			return err
		}
		_, err = p.w.Write(data)
		return err
	default:
		return p.table(t)
	}
}

func (p printer) table(t *table) error {
	if t == nil || len(t.rows) == 0 {
		_, err := fmt.Fprintln(p.w, "No results")
		return err
	}
	tw := tablewriter.NewWriter(p.w)
	header := make([]any, len(t.header))
	for i, h := range t.header {
		header[i] = h
	}
	tw.Header(header...)
	for _, row := range t.rows {
		if err := tw.Append(row); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}
	return tw.Render()
}

// toYAML encodes v through its JSON form so the field names match the
// service payloads instead of the Go field names.
func toYAML(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding to YAML: %w", err)
	}
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("encoding to YAML: %w", err)
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("encoding to YAML: %w", err)
	}
	return out, nil
}

func (a *app) printer(w io.Writer) printer {
	return printer{format: a.opts.output, w: w}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
