package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ForeignKey represents a single foreign key constraint between two tables.
// Column slices are parallel: ChildColumns[i] references ParentColumns[i].
type ForeignKey struct {
	ConstraintName string   // Name of the FK constraint
	ChildTable     string   // Table containing the foreign key
	ChildColumns   []string // Columns in the child table
	ParentTable    string   // Referenced parent table
	ParentSchema   string   // Schema of the referenced table
	ParentColumns  []string // Referenced columns in the parent table
}

// fkQueryBase aggregates constraint columns in key order so composite
// foreign keys come back as one row per constraint.
const fkQueryBase = `
	SELECT
		con.conname,
		c.relname  AS child_table,
		array_agg(a.attname ORDER BY x.ord)  AS child_columns,
		cp.relname AS parent_table,
		np.nspname AS parent_schema,
		array_agg(ap.attname ORDER BY x.ord) AS parent_columns
	FROM pg_constraint con
	JOIN pg_class c      ON con.conrelid = c.oid
	JOIN pg_namespace n  ON n.oid = c.relnamespace
	JOIN pg_class cp     ON con.confrelid = cp.oid
	JOIN pg_namespace np ON np.oid = cp.relnamespace
	CROSS JOIN LATERAL unnest(con.conkey, con.confkey)
		WITH ORDINALITY AS x(child_att, parent_att, ord)
	JOIN pg_attribute a  ON a.attrelid = con.conrelid  AND a.attnum = x.child_att
	JOIN pg_attribute ap ON ap.attrelid = con.confrelid AND ap.attnum = x.parent_att
	WHERE con.contype = 'f'
	  AND n.nspname = $1
`

// ReferencedTables returns the foreign keys where the given table is the
// child, i.e. the tables this table depends on. One ForeignKey per
// constraint, composite key columns aggregated.
func (c *Connection) ReferencedTables(ctx context.Context, schema, table string) ([]ForeignKey, error) {
	// Use pg_catalog for better compatibility with restricted permissions
	query := fkQueryBase + `
	  AND c.relname = $2
	GROUP BY con.conname, c.relname, cp.relname, np.nspname
	ORDER BY con.conname
	`
	return c.queryForeignKeys(ctx, query, schema, table)
}

// ReferencingTables returns the foreign keys where the given table is the
// parent, i.e. the tables that depend on this table.
func (c *Connection) ReferencingTables(ctx context.Context, schema, table string) ([]ForeignKey, error) {
	query := fkQueryBase + `
	  AND cp.relname = $2
	  AND np.nspname = $1
	GROUP BY con.conname, c.relname, cp.relname, np.nspname
	ORDER BY con.conname
	`
	return c.queryForeignKeys(ctx, query, schema, table)
}

func (c *Connection) queryForeignKeys(ctx context.Context, query, schema, table string) ([]ForeignKey, error) {
	rows, err := c.Pool.Query(ctx, query, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query foreign keys for %s: %w", table, err)
	}
	defer rows.Close()

	var fks []ForeignKey
	for rows.Next() {
		var fk ForeignKey
		if err := rows.Scan(&fk.ConstraintName, &fk.ChildTable, &fk.ChildColumns,
			&fk.ParentTable, &fk.ParentSchema, &fk.ParentColumns); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key: %w", err)
		}
		fks = append(fks, fk)
	}

	return fks, rows.Err()
}

// ListTables returns the names of all ordinary tables in the given schema,
// sorted alphabetically.
func (c *Connection) ListTables(ctx context.Context, schema string) ([]string, error) {
	query := `
		SELECT c.relname
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind = 'r'
		  AND n.nspname = $1
		ORDER BY c.relname
	`

	rows, err := c.Pool.Query(ctx, query, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}

	return tables, rows.Err()
}

// PrimaryKeyColumns returns the primary key columns of a table in key order.
// Composite primary keys are supported; tables without a primary key return
// an empty slice.
func (c *Connection) PrimaryKeyColumns(ctx context.Context, schema, table string) ([]string, error) {
	query := `
		SELECT a.attname
		FROM pg_constraint con
		JOIN pg_class c ON con.conrelid = c.oid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum = ANY(con.conkey)
		WHERE con.contype = 'p'
		  AND n.nspname = $1
		  AND c.relname = $2
		ORDER BY array_position(con.conkey, a.attnum)
	`

	rows, err := c.Pool.Query(ctx, query, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query primary key for %s: %w", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, fmt.Errorf("failed to scan primary key column: %w", err)
		}
		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// TableColumns returns the column names of a table in ordinal position order.
func (c *Connection) TableColumns(ctx context.Context, schema, table string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = $1
		  AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := c.Pool.Query(ctx, query, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to get column info for %s: %w", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, fmt.Errorf("failed to scan column name: %w", err)
		}
		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// FetchTableRows reads all rows of a table as column-name keyed maps.
// Rows are ordered by the given columns (normally the primary key) so
// generated scripts are deterministic.
func (c *Connection) FetchTableRows(ctx context.Context, schema, table string, orderBy []string) ([]map[string]interface{}, error) {
	query := fmt.Sprintf("SELECT * FROM %s", pgx.Identifier{schema, table}.Sanitize())
	if len(orderBy) > 0 {
		order := ""
		for i, col := range orderBy {
			if i > 0 {
				order += ", "
			}
			order += pgx.Identifier{col}.Sanitize()
		}
		query += " ORDER BY " + order
	}

	rows, err := c.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from %s: %w", table, err)
	}
	defer rows.Close()

	fieldDescriptions := rows.FieldDescriptions()
	var result []map[string]interface{}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", table, err)
		}

		rowMap := make(map[string]interface{}, len(values))
		for i, value := range values {
			rowMap[string(fieldDescriptions[i].Name)] = value
		}
		result = append(result, rowMap)
	}

	return result, rows.Err()
}
