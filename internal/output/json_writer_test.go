package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avinashkm/fkorder/internal/graph"
)

func TestJSONWriterReport(t *testing.T) {
	a := graph.NewTableNode("public", "a")
	b := graph.NewTableNode("public", "b")
	result := &graph.Result{
		InsertOrder:     []graph.TableNode{a, b},
		SelfReferencing: []graph.TableNode{b},
		Cycles: []graph.Cycle{{
			Path:   []graph.TableNode{a, b},
			Broken: graph.Edge{Child: b, Parent: a, Constraints: []string{"b_a_fk"}},
		}},
		Warnings: []graph.Warning{{Table: a, Message: "lookup failed"}},
	}

	var buf strings.Builder
	require.NoError(t, NewJSONWriter(&buf).Write("public", result))

	var report struct {
		Schema          string   `json:"schema"`
		InsertOrder     []string `json:"insert_order"`
		DeleteOrder     []string `json:"delete_order"`
		SelfReferencing []string `json:"self_referencing"`
		Warnings        []string `json:"warnings"`
		Cancelled       bool     `json:"cancelled"`
		Cycles          []struct {
			Tables     []string `json:"tables"`
			BrokenEdge string   `json:"broken_edge"`
		} `json:"cycles"`
	}
	require.NoError(t, json.Unmarshal([]byte(buf.String()), &report))

	assert.Equal(t, "public", report.Schema)
	assert.Equal(t, []string{"a", "b"}, report.InsertOrder)
	assert.Equal(t, []string{"b", "a"}, report.DeleteOrder)
	assert.Equal(t, []string{"b"}, report.SelfReferencing)
	assert.Equal(t, []string{"lookup failed"}, report.Warnings)
	assert.False(t, report.Cancelled)

	require.Len(t, report.Cycles, 1)
	assert.Equal(t, []string{"a", "b"}, report.Cycles[0].Tables)
	assert.Equal(t, "b -> a", report.Cycles[0].BrokenEdge)
}

func TestJSONWriterCarriesCancelledFlag(t *testing.T) {
	result := &graph.Result{
		InsertOrder: tables("a"),
		Cancelled:   true,
	}

	var buf strings.Builder
	require.NoError(t, NewJSONWriter(&buf).Write("public", result))

	assert.Contains(t, buf.String(), `"cancelled": true`)
}
