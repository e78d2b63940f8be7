package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTable(t *testing.T) {
	tests := []struct {
		name   string
		spec   string
		schema string
		quoted bool
		table  string
	}{
		{name: "bare name", spec: "orders", schema: "public", table: "orders"},
		{name: "unquoted folds to lowercase", spec: "Orders", schema: "public", table: "orders"},
		{name: "qualified", spec: "sales.orders", schema: "sales", table: "orders"},
		{name: "qualified folds both parts", spec: "Sales.Orders", schema: "sales", table: "orders"},
		{name: "quoted", spec: `"Orders"`, schema: "public", quoted: true, table: "Orders"},
		{name: "qualified quoted", spec: `sales."Orders"`, schema: "sales", quoted: true, table: "Orders"},
		{name: "whitespace", spec: "  orders ", schema: "public", table: "orders"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := ParseTable(tt.spec, "public")
			assert.Equal(t, tt.schema, node.Schema)
			assert.Equal(t, tt.table, node.Name)
			assert.Equal(t, tt.quoted, node.Quoted)
		})
	}
}

func TestTableNodeIdentity(t *testing.T) {
	// Unquoted identifiers fold case.
	assert.True(t, ParseTable("ORDERS", "public").Equal(NewTableNode("public", "orders")))

	// Folding happens in the parsed name itself, not just the map key,
	// so catalog lookups see the same spelling PostgreSQL stores.
	assert.Equal(t, "orders", ParseTable("Orders", "public").Name)

	// Quoted identifiers keep case.
	assert.False(t, ParseTable(`"Orders"`, "public").Equal(NewTableNode("public", "orders")))
	assert.True(t, ParseTable(`"Orders"`, "public").Equal(ParseTable(`"Orders"`, "public")))

	// Schema separates otherwise identical names.
	assert.False(t, NewTableNode("sales", "orders").Equal(NewTableNode("public", "orders")))
}

func TestTableNodeString(t *testing.T) {
	assert.Equal(t, "orders", NewTableNode("public", "orders").String())
	assert.Equal(t, `"Orders"`, ParseTable(`"Orders"`, "public").String())
}
