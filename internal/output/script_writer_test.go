package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avinashkm/fkorder/internal/graph"
)

func tables(names ...string) []graph.TableNode {
	out := make([]graph.TableNode, len(names))
	for i, n := range names {
		out[i] = graph.NewTableNode("public", n)
	}
	return out
}

func TestDeleteStatementsChildFirst(t *testing.T) {
	result := &graph.Result{InsertOrder: tables("customers", "orders", "order_items")}

	stmts := DeleteStatements(result.ForDelete(false), false)

	require.Len(t, stmts, 3)
	assert.Equal(t, `DELETE FROM "public"."order_items";`, stmts[0])
	assert.Equal(t, `DELETE FROM "public"."orders";`, stmts[1])
	assert.Equal(t, `DELETE FROM "public"."customers";`, stmts[2])
}

func TestDeleteStatementsTruncateMode(t *testing.T) {
	result := &graph.Result{InsertOrder: tables("customers", "orders")}

	stmts := DeleteStatements(result.ForDelete(false), true)

	require.Len(t, stmts, 1)
	assert.Equal(t, `TRUNCATE TABLE "public"."orders", "public"."customers";`, stmts[0])
}

func TestScriptWriterIncludesCycleWarnings(t *testing.T) {
	a := graph.NewTableNode("public", "a")
	b := graph.NewTableNode("public", "b")
	result := &graph.Result{
		InsertOrder: []graph.TableNode{a, b},
		Cycles: []graph.Cycle{{
			Path:   []graph.TableNode{a, b},
			Broken: graph.Edge{Child: b, Parent: a, Constraints: []string{"b_a_fk"}},
		}},
	}

	var buf strings.Builder
	require.NoError(t, NewScriptWriter(&buf, false).Write(result))

	script := buf.String()
	assert.Contains(t, script, "-- WARNING: cyclic foreign keys a -> b -> a")
	assert.Contains(t, script, "b_a_fk")
	assert.Contains(t, script, `DELETE FROM "public"."b";`)
}

func TestScriptWriterNotesSelfReferences(t *testing.T) {
	emp := graph.NewTableNode("public", "employees")
	result := &graph.Result{
		InsertOrder:     []graph.TableNode{emp},
		SelfReferencing: []graph.TableNode{emp},
	}

	var buf strings.Builder
	require.NoError(t, NewScriptWriter(&buf, false).Write(result))

	assert.Contains(t, buf.String(), "-- NOTE: employees references itself")
}

func TestScriptWriterRejectsCancelledResult(t *testing.T) {
	result := &graph.Result{
		InsertOrder: tables("customers"),
		Cancelled:   true,
	}

	var buf strings.Builder
	err := NewScriptWriter(&buf, false).Write(result)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")
	assert.Empty(t, buf.String())
}
