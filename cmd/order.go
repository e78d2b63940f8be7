package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avinashkm/fkorder/internal/config"
	"github.com/avinashkm/fkorder/internal/db"
	"github.com/avinashkm/fkorder/internal/output"
	"github.com/avinashkm/fkorder/internal/sorter"
)

var (
	orderTables    string
	orderSourceDSN string
	orderSchema    string
	orderDelete    bool
	orderJSON      bool
	orderOutFile   string
	orderVerbose   bool
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Compute the FK-safe insert or delete order for a set of tables",
	Long: `Order analyzes foreign key dependencies and prints the tables in an
order safe for batch INSERT (parents first) or, with --delete, for batch
DELETE (children first). Cycles are reported as warnings and broken
deterministically so an order is always produced.`,
	RunE: runOrder,
}

func init() {
	orderCmd.Flags().StringVar(&orderTables, "tables", "", "Comma-separated tables to order (default: all tables in the schema)")
	orderCmd.Flags().StringVar(&orderSourceDSN, "source", "", "Source database DSN (default: FKORDER_SOURCE env var)")
	orderCmd.Flags().StringVar(&orderSchema, "schema", "", "Schema to analyze (default: public)")
	orderCmd.Flags().BoolVar(&orderDelete, "delete", false, "Print the delete order (children before parents)")
	orderCmd.Flags().BoolVar(&orderJSON, "json", false, "Output a JSON report instead of plain table names")
	orderCmd.Flags().StringVar(&orderOutFile, "out", "", "Output file (default: stdout)")
	orderCmd.Flags().BoolVar(&orderVerbose, "verbose", false, "Print progress and analysis details")
}

func runOrder(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	schema := cfg.Schema
	if orderSchema != "" {
		schema = orderSchema
	}

	conn, err := db.NewConnection(ctx, resolveSource(orderSourceDSN, cfg))
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer conn.Close()

	engine := sorter.NewEngine(conn, schema, orderVerbose || cfg.Verbose)
	stop := watchInterrupt(engine)
	defer stop()

	tables, err := engine.ResolveTables(ctx, splitTables(orderTables))
	if err != nil {
		return err
	}

	result, _ := engine.Sort(ctx, tables)
	engine.Progress.Complete(len(result.InsertOrder), len(result.Cycles))

	writer := os.Stdout
	if orderOutFile != "" {
		writer, err = os.Create(orderOutFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer writer.Close()
	}

	if orderJSON {
		return output.NewJSONWriter(writer).Write(schema, result)
	}

	if orderDelete {
		order := result.ForDelete(true)
		for _, t := range order.Tables {
			fmt.Fprintln(writer, t)
		}
		for _, t := range order.NeedsRowOrdering {
			fmt.Fprintf(os.Stderr, "note: %s references itself; delete its child rows first or defer the constraint\n", t)
		}
		return nil
	}

	for _, t := range result.ForInsert() {
		fmt.Fprintln(writer, t)
	}
	return nil
}
