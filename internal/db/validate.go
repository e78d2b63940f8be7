package db

import (
	"context"
	"fmt"
	"strings"
)

// ValidateTables checks that every requested table exists in the schema.
// Returns an error naming all missing tables at once so the user can fix
// the full list in one pass.
func (c *Connection) ValidateTables(ctx context.Context, schema string, tables []string) error {
	existing, err := c.ListTables(ctx, schema)
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(existing))
	for _, t := range existing {
		known[t] = true
	}

	var missing []string
	for _, t := range tables {
		if !known[t] {
			missing = append(missing, t)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("table(s) not found in schema %q: %s", schema, strings.Join(missing, ", "))
	}

	return nil
}
