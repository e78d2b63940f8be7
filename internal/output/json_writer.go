package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/avinashkm/fkorder/internal/graph"
)

// JSONWriter generates a machine-readable order report. Unlike the script
// writers it accepts a cancelled result, since the cancelled flag is part
// of the report and downstream tooling decides whether to use the partial
// order.
type JSONWriter struct {
	writer io.Writer
}

// NewJSONWriter creates a JSON writer that outputs to the given writer.
func NewJSONWriter(writer io.Writer) *JSONWriter {
	return &JSONWriter{writer: writer}
}

type orderReport struct {
	Schema          string        `json:"schema"`
	InsertOrder     []string      `json:"insert_order"`
	DeleteOrder     []string      `json:"delete_order"`
	Cycles          []cycleReport `json:"cycles,omitempty"`
	SelfReferencing []string      `json:"self_referencing,omitempty"`
	Warnings        []string      `json:"warnings,omitempty"`
	Cancelled       bool          `json:"cancelled,omitempty"`
}

type cycleReport struct {
	Tables      []string `json:"tables"`
	BrokenEdge  string   `json:"broken_edge"`
	Constraints []string `json:"constraints,omitempty"`
}

// Write encodes the sort result as indented JSON.
func (w *JSONWriter) Write(schema string, result *graph.Result) error {
	report := orderReport{
		Schema:      schema,
		InsertOrder: tableNames(result.ForInsert()),
		DeleteOrder: tableNames(result.ForDelete(false).Tables),
		Cancelled:   result.Cancelled,
	}

	for _, cycle := range result.Cycles {
		report.Cycles = append(report.Cycles, cycleReport{
			Tables:      tableNames(cycle.Path),
			BrokenEdge:  fmt.Sprintf("%s -> %s", cycle.Broken.Child, cycle.Broken.Parent),
			Constraints: cycle.Broken.Constraints,
		})
	}

	report.SelfReferencing = tableNames(result.SelfReferencing)

	for _, warning := range result.Warnings {
		report.Warnings = append(report.Warnings, warning.Message)
	}

	encoder := json.NewEncoder(w.writer)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

func tableNames(tables []graph.TableNode) []string {
	if len(tables) == 0 {
		return nil
	}
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.String()
	}
	return names
}
