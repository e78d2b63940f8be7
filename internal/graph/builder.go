package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/avinashkm/fkorder/internal/db"
)

// RelationProvider supplies the foreign keys where the given table is the
// child. Implemented by db.Connection against pg_catalog; tests use an
// in-memory provider.
type RelationProvider interface {
	ReferencedTables(ctx context.Context, schema, table string) ([]db.ForeignKey, error)
}

// Builder constructs a dependency graph for a set of input tables.
// Relationship lookups run sequentially, one table at a time, since the
// underlying connection is not meant for concurrent metadata queries.
type Builder struct {
	provider RelationProvider
	schema   string

	// Progress, when set, is called after each table's relationships
	// have been resolved.
	Progress func(current, total int, table TableNode)

	// Cancelled, when set, is polled between tables. A cancelled build
	// returns the partial graph; tables not yet visited sort as
	// dependency-free.
	Cancelled func() bool
}

// NewBuilder creates a graph builder backed by the given provider.
func NewBuilder(provider RelationProvider, schema string) *Builder {
	return &Builder{provider: provider, schema: schema}
}

// Build queries the foreign keys of every input table and assembles the
// dependency graph. Edges to tables outside the input set are recorded as
// external references but impose no ordering constraint. A failed lookup
// for one table becomes a warning on that table and the table is treated
// as having no known dependencies.
func (b *Builder) Build(ctx context.Context, tables []TableNode) *Graph {
	g := &Graph{
		nodes:      tables,
		index:      make(map[string]int, len(tables)),
		deps:       make(map[string][]*Edge),
		dependents: make(map[string][]*Edge),
		selfRefs:   make(map[string][]string),
		external:   make(map[string][]string),
	}

	for i, t := range tables {
		g.index[t.Key()] = i
	}

	for i, t := range tables {
		if b.cancelled() {
			break
		}

		fks, err := b.provider.ReferencedTables(ctx, t.Schema, t.Name)

		// The table counts as processed even when the lookup failed,
		// otherwise the progress bar never reaches its total.
		if b.Progress != nil {
			b.Progress(i+1, len(tables), t)
		}

		if err != nil {
			g.warnings = append(g.warnings, Warning{
				Table:   t,
				Message: fmt.Sprintf("could not resolve foreign keys for %s: %v (treated as having no dependencies)", t, err),
			})
			continue
		}

		b.addEdges(g, t, fks)
	}

	// Order each node's dependencies by the parent's input position so
	// the sort visits ties deterministically.
	for key := range g.deps {
		edges := g.deps[key]
		sort.SliceStable(edges, func(i, j int) bool {
			return g.index[edges[i].Parent.Key()] < g.index[edges[j].Parent.Key()]
		})
	}

	return g
}

func (b *Builder) addEdges(g *Graph, child TableNode, fks []db.ForeignKey) {
	byParent := make(map[string]*Edge)

	for _, fk := range fks {
		parent := TableNode{Schema: fk.ParentSchema, Name: fk.ParentTable}

		if parent.Key() == child.Key() {
			g.selfRefs[child.Key()] = append(g.selfRefs[child.Key()], fk.ConstraintName)
			continue
		}

		if !g.Contains(parent) {
			g.external[child.Key()] = append(g.external[child.Key()], parent.String())
			continue
		}

		// Reuse the node from the input set so display names stay consistent.
		parent = g.node(parent.Key())

		if edge, ok := byParent[parent.Key()]; ok {
			edge.Constraints = append(edge.Constraints, fk.ConstraintName)
			continue
		}

		edge := &Edge{Child: child, Parent: parent, Constraints: []string{fk.ConstraintName}}
		byParent[parent.Key()] = edge
		g.deps[child.Key()] = append(g.deps[child.Key()], edge)
		g.dependents[parent.Key()] = append(g.dependents[parent.Key()], edge)
	}
}

func (b *Builder) cancelled() bool {
	return b.Cancelled != nil && b.Cancelled()
}
