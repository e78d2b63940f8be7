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
	exportTables    string
	exportSourceDSN string
	exportSchema    string
	exportOutFile   string
	exportVerbose   bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Generate an INSERT script for table data in FK-safe order",
	Long: `Export dumps the data of the selected tables as INSERT statements,
tables ordered parents-first so the script loads without foreign key
violations. Rows are sorted by primary key for deterministic output.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportTables, "tables", "", "Comma-separated tables (default: all tables in the schema)")
	exportCmd.Flags().StringVar(&exportSourceDSN, "source", "", "Source database DSN (default: FKORDER_SOURCE env var)")
	exportCmd.Flags().StringVar(&exportSchema, "schema", "", "Schema to export (default: public)")
	exportCmd.Flags().StringVar(&exportOutFile, "out", "", "Output file (default: stdout)")
	exportCmd.Flags().BoolVar(&exportVerbose, "verbose", false, "Print progress and analysis details")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	schema := cfg.Schema
	if exportSchema != "" {
		schema = exportSchema
	}

	conn, err := db.NewConnection(ctx, resolveSource(exportSourceDSN, cfg))
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer conn.Close()

	engine := sorter.NewEngine(conn, schema, exportVerbose || cfg.Verbose)
	stop := watchInterrupt(engine)
	defer stop()

	tables, err := engine.ResolveTables(ctx, splitTables(exportTables))
	if err != nil {
		return err
	}

	result, _ := engine.Sort(ctx, tables)
	engine.Progress.Complete(len(result.InsertOrder), len(result.Cycles))

	writer := os.Stdout
	if exportOutFile != "" {
		writer, err = os.Create(exportOutFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer writer.Close()
	}

	return output.NewInsertWriter(writer, conn, engine.Progress).Write(ctx, result)
}
