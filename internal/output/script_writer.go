// Package output provides writers for generating delete/truncate scripts,
// INSERT data exports, and JSON order reports, plus an executor for running
// generated statements against a database. All writers keep deterministic
// ordering derived from the dependency sort.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/avinashkm/fkorder/internal/graph"
)

// ScriptWriter generates DELETE or TRUNCATE statements in child-first
// order so they can run without foreign key violations.
type ScriptWriter struct {
	writer   io.Writer
	truncate bool
}

// NewScriptWriter creates a script writer. If truncate is true a single
// multi-table TRUNCATE is generated instead of per-table DELETEs.
func NewScriptWriter(writer io.Writer, truncate bool) *ScriptWriter {
	return &ScriptWriter{writer: writer, truncate: truncate}
}

// Write emits the script for the given sort result. A cancelled result is
// rejected: its ordering is partial and running it could violate
// constraints on the tables that were never ordered.
func (w *ScriptWriter) Write(result *graph.Result) error {
	if result.Cancelled {
		return fmt.Errorf("sort was cancelled, refusing to generate a script from a partial order")
	}

	order := result.ForDelete(true)

	fmt.Fprintln(w.writer, "-- fkorder delete script")
	fmt.Fprintf(w.writer, "-- Generated at: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintln(w.writer, "-- Total tables:", len(order.Tables))

	for _, warning := range result.Warnings {
		fmt.Fprintf(w.writer, "-- WARNING: %s\n", warning.Message)
	}
	for _, cycle := range result.Cycles {
		fmt.Fprintf(w.writer, "-- WARNING: cyclic foreign keys %s; order inside the cycle is best-effort,\n", cycle)
		fmt.Fprintf(w.writer, "--          defer constraint(s) %s or the statements may fail\n",
			strings.Join(cycle.Broken.Constraints, ", "))
	}
	for _, table := range order.NeedsRowOrdering {
		fmt.Fprintf(w.writer, "-- NOTE: %s references itself; delete child rows first or defer the constraint\n", table)
	}
	fmt.Fprintln(w.writer)

	for _, stmt := range DeleteStatements(order, w.truncate) {
		fmt.Fprintln(w.writer, stmt)
	}

	return nil
}

// DeleteStatements builds the SQL statements for a delete ordering. In
// truncate mode a single TRUNCATE covering all tables is returned, which
// PostgreSQL accepts without CASCADE as long as every referencing table
// is included.
func DeleteStatements(order graph.DeleteOrder, truncate bool) []string {
	if len(order.Tables) == 0 {
		return nil
	}

	if truncate {
		names := make([]string, len(order.Tables))
		for i, t := range order.Tables {
			names[i] = qualifiedName(t)
		}
		return []string{fmt.Sprintf("TRUNCATE TABLE %s;", strings.Join(names, ", "))}
	}

	stmts := make([]string, len(order.Tables))
	for i, t := range order.Tables {
		stmts[i] = fmt.Sprintf("DELETE FROM %s;", qualifiedName(t))
	}
	return stmts
}

func qualifiedName(t graph.TableNode) string {
	return pgx.Identifier{t.Schema, t.Name}.Sanitize()
}
