package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avinashkm/fkorder/internal/db"
)

// fakeProvider serves canned foreign keys per table, standing in for the
// pg_catalog queries.
type fakeProvider struct {
	fks  map[string][]db.ForeignKey
	errs map[string]error
}

func (p *fakeProvider) ReferencedTables(ctx context.Context, schema, table string) ([]db.ForeignKey, error) {
	if err := p.errs[table]; err != nil {
		return nil, err
	}
	return p.fks[table], nil
}

func fk(child, parent, constraint string) db.ForeignKey {
	return db.ForeignKey{
		ConstraintName: constraint,
		ChildTable:     child,
		ChildColumns:   []string{parent + "_id"},
		ParentTable:    parent,
		ParentSchema:   "public",
		ParentColumns:  []string{"id"},
	}
}

func nodes(names ...string) []TableNode {
	out := make([]TableNode, len(names))
	for i, n := range names {
		out[i] = NewTableNode("public", n)
	}
	return out
}

func names(tables []TableNode) []string {
	out := make([]string, len(tables))
	for i, t := range tables {
		out[i] = t.Name
	}
	return out
}

func buildGraph(t *testing.T, provider *fakeProvider, tables ...string) *Graph {
	t.Helper()
	return NewBuilder(provider, "public").Build(context.Background(), nodes(tables...))
}

func TestInsertOrderParentsFirst(t *testing.T) {
	provider := &fakeProvider{fks: map[string][]db.ForeignKey{
		"orders":      {fk("orders", "customers", "orders_customer_fk")},
		"order_items": {fk("order_items", "orders", "order_items_order_fk")},
	}}

	g := buildGraph(t, provider, "orders", "customers", "order_items")
	result := NewSorter(g).Sort()

	require.False(t, result.Cancelled)
	require.Empty(t, result.Cycles)
	assert.Equal(t, []string{"customers", "orders", "order_items"}, names(result.ForInsert()))
}

func TestDeleteOrderIsReverseOfInsertOrder(t *testing.T) {
	provider := &fakeProvider{fks: map[string][]db.ForeignKey{
		"orders":      {fk("orders", "customers", "orders_customer_fk")},
		"order_items": {fk("order_items", "orders", "order_items_order_fk")},
	}}

	g := buildGraph(t, provider, "orders", "customers", "order_items")
	result := NewSorter(g).Sort()

	assert.Equal(t, []string{"order_items", "orders", "customers"}, names(result.ForDelete(false).Tables))
}

func TestAcyclicOrderingProperty(t *testing.T) {
	// Diamond plus a tail: d->b, d->c, b->a, c->a, e->d.
	provider := &fakeProvider{fks: map[string][]db.ForeignKey{
		"b": {fk("b", "a", "b_a_fk")},
		"c": {fk("c", "a", "c_a_fk")},
		"d": {fk("d", "b", "d_b_fk"), fk("d", "c", "d_c_fk")},
		"e": {fk("e", "d", "e_d_fk")},
	}}

	g := buildGraph(t, provider, "e", "d", "c", "b", "a")
	result := NewSorter(g).Sort()

	require.Len(t, result.InsertOrder, 5)

	position := make(map[string]int)
	for i, t := range result.InsertOrder {
		position[t.Name] = i
	}

	for _, table := range g.Nodes() {
		for _, edge := range g.Dependencies(table) {
			assert.Less(t, position[edge.Parent.Name], position[edge.Child.Name],
				"parent %s must precede child %s", edge.Parent, edge.Child)
		}
	}
}

func TestDeterministicAcrossRuns(t *testing.T) {
	provider := &fakeProvider{fks: map[string][]db.ForeignKey{
		"b": {fk("b", "a", "b_a_fk")},
		"d": {fk("d", "c", "d_c_fk")},
	}}

	first := NewSorter(buildGraph(t, provider, "d", "b", "a", "c")).Sort()
	second := NewSorter(buildGraph(t, provider, "d", "b", "a", "c")).Sort()

	assert.Equal(t, names(first.InsertOrder), names(second.InsertOrder))
}

func TestDisconnectedTablesKeepInputOrder(t *testing.T) {
	provider := &fakeProvider{fks: map[string][]db.ForeignKey{}}

	g := buildGraph(t, provider, "zebra", "apple", "mango")
	result := NewSorter(g).Sort()

	assert.Equal(t, []string{"zebra", "apple", "mango"}, names(result.ForInsert()))
}

func TestThreeTableCycle(t *testing.T) {
	provider := &fakeProvider{fks: map[string][]db.ForeignKey{
		"a": {fk("a", "b", "a_b_fk")},
		"b": {fk("b", "c", "b_c_fk")},
		"c": {fk("c", "a", "c_a_fk")},
	}}

	g := buildGraph(t, provider, "a", "b", "c")
	result := NewSorter(g).Sort()

	require.Len(t, result.Cycles, 1)
	require.Len(t, result.InsertOrder, 3, "a total order must still be produced")

	cycle := result.Cycles[0]
	assert.ElementsMatch(t, []string{"a", "b", "c"}, names(cycle.Path))
	assert.Equal(t, "c", cycle.Broken.Child.Name)
	assert.Equal(t, "a", cycle.Broken.Parent.Name)
	assert.Equal(t, "a -> b -> c -> a", cycle.String())
}

func TestTwoTableCycle(t *testing.T) {
	provider := &fakeProvider{fks: map[string][]db.ForeignKey{
		"a": {fk("a", "b", "a_b_fk")},
		"b": {fk("b", "a", "b_a_fk")},
	}}

	g := buildGraph(t, provider, "a", "b")
	result := NewSorter(g).Sort()

	require.Len(t, result.Cycles, 1)
	assert.ElementsMatch(t, []string{"a", "b"}, names(result.Cycles[0].Path))
	assert.Len(t, result.InsertOrder, 2)
}

func TestSelfReferenceIsNotACycle(t *testing.T) {
	provider := &fakeProvider{fks: map[string][]db.ForeignKey{
		"employees": {fk("employees", "employees", "employees_manager_fk")},
	}}

	g := buildGraph(t, provider, "employees", "departments")
	result := NewSorter(g).Sort()

	assert.Empty(t, result.Cycles)
	assert.Equal(t, []string{"employees", "departments"}, names(result.ForInsert()))
	require.Len(t, result.SelfReferencing, 1)
	assert.Equal(t, "employees", result.SelfReferencing[0].Name)
}

func TestSelfReferenceDeleteAdvisory(t *testing.T) {
	provider := &fakeProvider{fks: map[string][]db.ForeignKey{
		"employees": {fk("employees", "employees", "employees_manager_fk")},
	}}

	g := buildGraph(t, provider, "employees")
	result := NewSorter(g).Sort()

	flagged := result.ForDelete(true)
	require.Len(t, flagged.NeedsRowOrdering, 1)
	assert.Equal(t, "employees", flagged.NeedsRowOrdering[0].Name)

	unflagged := result.ForDelete(false)
	assert.Empty(t, unflagged.NeedsRowOrdering)
	assert.Equal(t, flagged.Tables, unflagged.Tables)
}

func TestProviderErrorBecomesWarning(t *testing.T) {
	provider := &fakeProvider{
		fks: map[string][]db.ForeignKey{
			"orders": {fk("orders", "customers", "orders_customer_fk")},
		},
		errs: map[string]error{
			"audit_log": context.DeadlineExceeded,
		},
	}

	g := buildGraph(t, provider, "orders", "customers", "audit_log")
	result := NewSorter(g).Sort()

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "audit_log", result.Warnings[0].Table.Name)
	// The failed table still sorts, as if it had no dependencies.
	assert.Len(t, result.InsertOrder, 3)
	assert.Equal(t, []string{"customers", "orders", "audit_log"}, names(result.ForInsert()))
}

func TestCancelledBeforeStart(t *testing.T) {
	provider := &fakeProvider{fks: map[string][]db.ForeignKey{}}

	g := buildGraph(t, provider, "a", "b")
	s := NewSorter(g)
	s.Cancelled = func() bool { return true }

	result := s.Sort()
	assert.True(t, result.Cancelled)
	assert.Empty(t, result.InsertOrder)
}

func TestCancelledMidSortReturnsPartialOrder(t *testing.T) {
	provider := &fakeProvider{fks: map[string][]db.ForeignKey{}}

	g := buildGraph(t, provider, "a", "b", "c", "d")
	s := NewSorter(g)

	cancelled := false
	s.Cancelled = func() bool { return cancelled }
	s.Progress = func(current, total int, table TableNode) {
		if current == 2 {
			cancelled = true
		}
	}

	result := s.Sort()
	assert.True(t, result.Cancelled)
	assert.Equal(t, []string{"a", "b"}, names(result.InsertOrder))
}
