// Package sorter orchestrates one table ordering operation: resolving the
// input table set, building the dependency graph from database metadata,
// and running the cycle-breaking topological sort. All state is owned by
// the engine and discarded when the operation completes.
package sorter

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/avinashkm/fkorder/internal/db"
	"github.com/avinashkm/fkorder/internal/graph"
)

// Engine is the high-level orchestrator for a single sort invocation.
type Engine struct {
	Conn     *db.Connection
	Schema   string
	Progress *ProgressTracker

	cancelled atomic.Bool
}

// NewEngine creates an engine for the given connection and schema.
func NewEngine(conn *db.Connection, schema string, verbose bool) *Engine {
	return &Engine{
		Conn:     conn,
		Schema:   schema,
		Progress: NewProgressTracker(verbose),
	}
}

// Cancel requests cooperative cancellation. The flag is polled between
// node visits; the running sort returns its partial result with the
// Cancelled status set rather than an error.
func (e *Engine) Cancel() {
	e.cancelled.Store(true)
}

// ResolveTables turns the requested table names into table nodes. An empty
// request means every table in the schema. Explicitly requested tables are
// validated against the schema and keep their given order, since the input
// order is the tie-break for the sort.
func (e *Engine) ResolveTables(ctx context.Context, names []string) ([]graph.TableNode, error) {
	if len(names) == 0 {
		all, err := e.Conn.ListTables(ctx, e.Schema)
		if err != nil {
			return nil, err
		}
		nodes := make([]graph.TableNode, 0, len(all))
		for _, name := range all {
			nodes = append(nodes, graph.NewTableNode(e.Schema, name))
		}
		return nodes, nil
	}

	nodes := make([]graph.TableNode, 0, len(names))
	plain := make([]string, 0, len(names))
	for _, name := range names {
		node := graph.ParseTable(name, e.Schema)
		nodes = append(nodes, node)
		plain = append(plain, node.Name)
	}

	if err := e.Conn.ValidateTables(ctx, e.Schema, plain); err != nil {
		return nil, err
	}

	return nodes, nil
}

// Sort builds the dependency graph for the given tables and computes the
// table ordering. Cycles, self-references and per-table lookup failures
// are reported on the result, not as errors.
func (e *Engine) Sort(ctx context.Context, tables []graph.TableNode) (*graph.Result, *graph.Graph) {
	e.Progress.StartPhase("Dependency Analysis")
	e.Progress.Info("Resolving foreign keys for %d tables in schema %q", len(tables), e.Schema)

	builder := graph.NewBuilder(e.Conn, e.Schema)
	builder.Cancelled = e.cancelled.Load
	builder.Progress = func(current, total int, table graph.TableNode) {
		e.Progress.Progress(current, total, "Resolving foreign keys")
	}

	g := builder.Build(ctx, tables)
	e.Progress.FinishProgress()

	for _, w := range g.Warnings() {
		e.Progress.Warning("%s", w.Message)
	}
	for _, t := range tables {
		if ext := g.ExternalReferences(t); len(ext) > 0 {
			e.Progress.Info("%s references tables outside the selection (already satisfied): %s", t, strings.Join(ext, ", "))
		}
	}

	s := graph.NewSorter(g)
	s.Cancelled = e.cancelled.Load
	s.Progress = func(current, total int, table graph.TableNode) {
		e.Progress.TableOrdered(table.String(), current, total)
	}

	result := s.Sort()

	for _, c := range result.Cycles {
		e.Progress.CycleDetected(c.String(), c.Broken.Child.String(), c.Broken.Parent.String())
	}
	for _, t := range result.SelfReferencing {
		e.Progress.SelfReference(t.String())
	}

	if result.Cancelled {
		e.Progress.Warning("sort cancelled, order is partial (%d of %d tables)", len(result.InsertOrder), len(tables))
	}

	return result, g
}
