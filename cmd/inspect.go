package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avinashkm/fkorder/internal/config"
	"github.com/avinashkm/fkorder/internal/db"
)

var (
	inspectSourceDSN string
	inspectSchema    string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Display the foreign key graph of the database",
	Long:  `Inspect shows the foreign key relationships in the connected database, including constraint names.`,
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectSourceDSN, "source", "", "Source database DSN (default: FKORDER_SOURCE env var)")
	inspectCmd.Flags().StringVar(&inspectSchema, "schema", "", "Schema to inspect (default: public)")
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	schema := cfg.Schema
	if inspectSchema != "" {
		schema = inspectSchema
	}

	conn, err := db.NewConnection(ctx, resolveSource(inspectSourceDSN, cfg))
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer conn.Close()

	tables, err := conn.ListTables(ctx, schema)
	if err != nil {
		return err
	}

	fmt.Printf("Foreign Key Graph (schema %q):\n\n", schema)

	for _, table := range tables {
		fmt.Printf("%s\n", table)

		parents, err := conn.ReferencedTables(ctx, schema, table)
		if err != nil {
			return fmt.Errorf("failed to read foreign keys of %s: %w", table, err)
		}
		for _, fk := range parents {
			fmt.Printf("  ↑ %s (%s via %s)\n", fk.ParentTable, fk.ConstraintName, strings.Join(fk.ChildColumns, ", "))
		}

		children, err := conn.ReferencingTables(ctx, schema, table)
		if err != nil {
			return fmt.Errorf("failed to read referencing tables of %s: %w", table, err)
		}
		for _, fk := range children {
			fmt.Printf("  ↓ %s (%s via %s.%s)\n", fk.ChildTable, fk.ConstraintName, fk.ChildTable, strings.Join(fk.ChildColumns, ", "))
		}

		fmt.Println()
	}

	return nil
}
