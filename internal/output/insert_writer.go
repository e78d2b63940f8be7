package output

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/avinashkm/fkorder/internal/db"
	"github.com/avinashkm/fkorder/internal/graph"
	"github.com/avinashkm/fkorder/internal/sorter"
)

// InsertWriter generates INSERT statements for the data of the ordered
// tables. Tables are emitted parents-first so the script loads without
// foreign key violations; rows are sorted by primary key for
// deterministic, diffable output.
type InsertWriter struct {
	writer   io.Writer
	conn     *db.Connection
	progress *sorter.ProgressTracker
}

// NewInsertWriter creates an insert writer reading data through the given
// connection.
func NewInsertWriter(writer io.Writer, conn *db.Connection, progress *sorter.ProgressTracker) *InsertWriter {
	return &InsertWriter{
		writer:   writer,
		conn:     conn,
		progress: progress,
	}
}

// Write dumps every table in the result's insert order. A cancelled
// result is rejected since loading a partial order can violate
// constraints.
func (w *InsertWriter) Write(ctx context.Context, result *graph.Result) error {
	if result.Cancelled {
		return fmt.Errorf("sort was cancelled, refusing to export from a partial order")
	}

	tables := result.ForInsert()
	w.progress.OutputGeneration("SQL")

	fmt.Fprintln(w.writer, "-- fkorder data export")
	fmt.Fprintf(w.writer, "-- Generated at: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintln(w.writer, "-- Total tables:", len(tables))
	for _, cycle := range result.Cycles {
		fmt.Fprintf(w.writer, "-- WARNING: cyclic foreign keys %s; load may require deferred constraints\n", cycle)
	}
	fmt.Fprintln(w.writer)

	for i, table := range tables {
		pkColumns, err := w.conn.PrimaryKeyColumns(ctx, table.Schema, table.Name)
		if err != nil {
			return fmt.Errorf("failed to read primary key of %s: %w", table, err)
		}

		rows, err := w.conn.FetchTableRows(ctx, table.Schema, table.Name, pkColumns)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			continue
		}

		w.progress.WritingTable(table.String(), len(rows), i+1, len(tables))

		if err := w.writeTable(table, rows); err != nil {
			return err
		}
	}

	w.progress.FinishProgress()
	return nil
}

func (w *InsertWriter) writeTable(table graph.TableNode, rows []map[string]interface{}) error {
	columns := make([]string, 0, len(rows[0]))
	for col := range rows[0] {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	fmt.Fprintf(w.writer, "-- Table: %s (%d rows)\n", table, len(rows))
	fmt.Fprintf(w.writer, "INSERT INTO %s (%s)\nVALUES\n",
		qualifiedName(table), strings.Join(columns, ", "))

	for i, row := range rows {
		values := make([]string, len(columns))
		for j, col := range columns {
			values[j] = sqlLiteral(row[col])
		}

		fmt.Fprintf(w.writer, "  (%s)", strings.Join(values, ", "))

		if i < len(rows)-1 {
			fmt.Fprintln(w.writer, ",")
		} else {
			fmt.Fprintln(w.writer, ";")
		}
	}

	fmt.Fprintln(w.writer)
	return nil
}
