// Package graph provides data structures and algorithms for working with
// foreign key dependency graphs. It includes graph construction from a
// relationship provider, a cycle-breaking topological sort, and the
// insert/delete order producers built on top of it.
package graph

import (
	"strings"
)

// TableNode identifies one table by schema and name. Identity is
// case-insensitive unless the name was written double-quoted, matching
// PostgreSQL identifier folding rules.
type TableNode struct {
	Schema string
	Name   string
	Quoted bool // name was double-quoted, so case is significant
}

// NewTableNode creates a table node with an unquoted name.
func NewTableNode(schema, name string) TableNode {
	return TableNode{Schema: schema, Name: name}
}

// ParseTable parses a table reference of the form name, schema.name,
// "Name" or schema."Name". Unqualified references use defaultSchema.
// Unquoted identifiers fold to lowercase the way PostgreSQL folds them,
// so the parsed name matches what the catalog stores.
func ParseTable(spec, defaultSchema string) TableNode {
	schema := defaultSchema
	name := strings.TrimSpace(spec)

	if idx := splitQualifier(name); idx >= 0 {
		schema = name[:idx]
		name = name[idx+1:]
	}

	node := TableNode{}
	if strings.HasPrefix(schema, `"`) && strings.HasSuffix(schema, `"`) && len(schema) >= 2 {
		node.Schema = schema[1 : len(schema)-1]
	} else {
		node.Schema = strings.ToLower(schema)
	}

	if strings.HasPrefix(name, `"`) && strings.HasSuffix(name, `"`) && len(name) >= 2 {
		node.Name = name[1 : len(name)-1]
		node.Quoted = true
	} else {
		node.Name = strings.ToLower(name)
	}
	return node
}

// splitQualifier finds the dot separating schema from table name,
// ignoring dots inside double quotes.
func splitQualifier(s string) int {
	inQuotes := false
	for i, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == '.' && !inQuotes:
			return i
		}
	}
	return -1
}

// Key returns the canonical identity used for graph lookups. Unquoted
// identifiers fold to lower case; quoted identifiers keep their case.
func (t TableNode) Key() string {
	name := t.Name
	if !t.Quoted {
		name = strings.ToLower(name)
	}
	return strings.ToLower(t.Schema) + "." + name
}

// String renders the node for display, re-quoting case-sensitive names.
func (t TableNode) String() string {
	if t.Quoted {
		return `"` + t.Name + `"`
	}
	return t.Name
}

// Equal reports whether two nodes identify the same table.
func (t TableNode) Equal(other TableNode) bool {
	return t.Key() == other.Key()
}

// Edge is a directed dependency: the child table has one or more foreign
// key constraints referencing the parent table. Multiple constraints
// between the same pair coalesce into a single edge for ordering, with
// every constraint name retained for reporting.
type Edge struct {
	Child       TableNode
	Parent      TableNode
	Constraints []string
}

// Warning is a non-fatal condition attached to a table during graph
// construction, e.g. a failed relationship lookup.
type Warning struct {
	Table   TableNode
	Message string
}

// Graph is the dependency structure over one set of input tables. It is
// built fresh per sort invocation and never mutated afterwards.
type Graph struct {
	nodes      []TableNode         // input order, preserved for deterministic sorting
	index      map[string]int      // node key -> position in nodes
	deps       map[string][]*Edge  // child key -> outgoing edges within the input set
	dependents map[string][]*Edge  // parent key -> incoming edges within the input set
	selfRefs   map[string][]string // node key -> self-referencing constraint names
	external   map[string][]string // node key -> referenced tables outside the input set
	warnings   []Warning
}

// Nodes returns the input tables in their original order.
func (g *Graph) Nodes() []TableNode {
	return g.nodes
}

// Contains reports whether the table is part of the input set.
func (g *Graph) Contains(t TableNode) bool {
	_, ok := g.index[t.Key()]
	return ok
}

// Dependencies returns the edges from the given table to the tables it
// references, ordered by the parent's position in the input set.
func (g *Graph) Dependencies(t TableNode) []*Edge {
	return g.deps[t.Key()]
}

// Dependents returns the edges from tables referencing the given table.
func (g *Graph) Dependents(t TableNode) []*Edge {
	return g.dependents[t.Key()]
}

// SelfReferencing returns the tables with a foreign key to themselves,
// in input order. These are excluded from cycle detection: parent rows
// can always be inserted before child rows within one table.
func (g *Graph) SelfReferencing() []TableNode {
	var out []TableNode
	for _, n := range g.nodes {
		if len(g.selfRefs[n.Key()]) > 0 {
			out = append(out, n)
		}
	}
	return out
}

// SelfRefConstraints returns the names of the self-referencing constraints
// of a table, or nil if it has none.
func (g *Graph) SelfRefConstraints(t TableNode) []string {
	return g.selfRefs[t.Key()]
}

// ExternalReferences returns the names of tables referenced by the given
// table that are not part of the input set. They impose no ordering
// constraint on the batch being sorted.
func (g *Graph) ExternalReferences(t TableNode) []string {
	return g.external[t.Key()]
}

// Warnings returns the warnings collected while building the graph.
func (g *Graph) Warnings() []Warning {
	return g.warnings
}

func (g *Graph) node(key string) TableNode {
	return g.nodes[g.index[key]]
}
