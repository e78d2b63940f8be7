package graph

import (
	"strings"
)

// Cycle describes one detected foreign key loop. Path holds the tables
// forming the loop in dependency order (the last table references the
// first). Broken is the edge ignored so a total order could still be
// produced; rows crossing it may violate referential integrity unless the
// constraint is deferred.
type Cycle struct {
	Path   []TableNode
	Broken Edge
}

// String renders the cycle as "a -> b -> c -> a".
func (c Cycle) String() string {
	names := make([]string, 0, len(c.Path)+1)
	for _, t := range c.Path {
		names = append(names, t.String())
	}
	if len(c.Path) > 0 {
		names = append(names, c.Path[0].String())
	}
	return strings.Join(names, " -> ")
}

// Result is the outcome of one sort invocation. InsertOrder lists the
// tables dependencies-first; cycles and warnings are reported alongside
// rather than as errors, since both are expected conditions.
type Result struct {
	InsertOrder     []TableNode
	Cycles          []Cycle
	SelfReferencing []TableNode
	Warnings        []Warning

	// Cancelled indicates the sort was stopped early and InsertOrder is
	// partial. Callers must check this before acting on the order.
	Cancelled bool
}

// Sorter performs a depth-first topological sort over a dependency graph.
// Cycles are broken at the first back-edge found and reported on the
// result instead of aborting the sort.
type Sorter struct {
	graph *Graph

	// Progress, when set, is called each time a table is appended to the
	// output order.
	Progress func(current, total int, table TableNode)

	// Cancelled, when set, is polled at every node visit. When it
	// returns true the sort stops and the partial order is returned
	// with the Cancelled flag set.
	Cancelled func() bool
}

// NewSorter creates a sorter for the given graph.
func NewSorter(g *Graph) *Sorter {
	return &Sorter{graph: g}
}

const (
	white = iota // unvisited
	gray         // on the recursion stack
	black        // finished, already in the output order
)

// Sort produces a total order over the graph's tables such that for every
// dependency edge not part of a reported cycle, the parent precedes the
// child. Tables are visited in input order, making the result
// deterministic for identical inputs.
func (s *Sorter) Sort() *Result {
	res := &Result{
		SelfReferencing: s.graph.SelfReferencing(),
		Warnings:        s.graph.Warnings(),
	}

	total := len(s.graph.Nodes())
	state := make(map[string]int, total)
	cameFrom := make(map[string]string, total)

	var visit func(n TableNode)
	visit = func(n TableNode) {
		if s.cancelled() {
			return
		}

		state[n.Key()] = gray

		for _, edge := range s.graph.Dependencies(n) {
			parent := edge.Parent

			switch state[parent.Key()] {
			case black:
				// Already ordered correctly.
			case gray:
				// Back-edge: parent is an ancestor on the recursion
				// stack. Report the loop and ignore this edge so the
				// sort still terminates with a total order.
				res.Cycles = append(res.Cycles, Cycle{
					Path:   s.cyclePath(cameFrom, n, parent),
					Broken: *edge,
				})
			case white:
				cameFrom[parent.Key()] = n.Key()
				visit(parent)
			}

			if s.cancelled() {
				return
			}
		}

		state[n.Key()] = black
		res.InsertOrder = append(res.InsertOrder, n)

		if s.Progress != nil {
			s.Progress(len(res.InsertOrder), total, n)
		}
	}

	for _, n := range s.graph.Nodes() {
		if s.cancelled() {
			break
		}
		if state[n.Key()] == white {
			visit(n)
		}
	}

	res.Cancelled = s.cancelled()
	return res
}

// cyclePath reconstructs the loop from the ancestor back down to the node
// where the back-edge was found, by walking the recursion trail.
func (s *Sorter) cyclePath(cameFrom map[string]string, from, ancestor TableNode) []TableNode {
	path := []TableNode{from}

	current := from.Key()
	for current != ancestor.Key() {
		prev, ok := cameFrom[current]
		if !ok {
			break
		}
		current = prev
		path = append(path, s.graph.node(current))
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path
}

func (s *Sorter) cancelled() bool {
	return s.Cancelled != nil && s.Cancelled()
}
