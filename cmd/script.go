package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"github.com/avinashkm/fkorder/internal/config"
	"github.com/avinashkm/fkorder/internal/db"
	"github.com/avinashkm/fkorder/internal/graph"
	"github.com/avinashkm/fkorder/internal/output"
	"github.com/avinashkm/fkorder/internal/sorter"
)

var (
	scriptTables    string
	scriptSourceDSN string
	scriptTargetDSN string
	scriptSchema    string
	scriptTruncate  bool
	scriptOutFile   string
	scriptExec      bool
	scriptVerbose   bool
)

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Generate a DELETE or TRUNCATE script in FK-safe order",
	Long: `Script generates DELETE statements (or with --truncate, one multi-table
TRUNCATE) covering the selected tables, ordered children-first so the script
runs without foreign key violations. With --exec the statements run directly
against a target database after confirmation.`,
	RunE: runScript,
}

func init() {
	scriptCmd.Flags().StringVar(&scriptTables, "tables", "", "Comma-separated tables (default: all tables in the schema)")
	scriptCmd.Flags().StringVar(&scriptSourceDSN, "source", "", "Source database DSN (default: FKORDER_SOURCE env var)")
	scriptCmd.Flags().StringVar(&scriptTargetDSN, "target", "", "Target database DSN for --exec mode (default: FKORDER_TARGET env var)")
	scriptCmd.Flags().StringVar(&scriptSchema, "schema", "", "Schema to analyze (default: public)")
	scriptCmd.Flags().BoolVar(&scriptTruncate, "truncate", false, "Generate a single multi-table TRUNCATE instead of DELETEs")
	scriptCmd.Flags().StringVar(&scriptOutFile, "out", "", "Output file (default: stdout)")
	scriptCmd.Flags().BoolVar(&scriptExec, "exec", false, "Execute the statements directly against the target database")
	scriptCmd.Flags().BoolVar(&scriptVerbose, "verbose", false, "Print progress and analysis details")
}

func runScript(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	schema := cfg.Schema
	if scriptSchema != "" {
		schema = scriptSchema
	}

	if scriptExec && scriptOutFile != "" {
		return fmt.Errorf("cannot use both --exec and --out flags together. Choose either direct execution or file output")
	}
	if scriptExec && getScriptTargetDSN(cfg) == "" {
		return fmt.Errorf("--exec mode requires a target database. Use --target flag or set FKORDER_TARGET environment variable")
	}

	conn, err := db.NewConnection(ctx, resolveSource(scriptSourceDSN, cfg))
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer conn.Close()

	engine := sorter.NewEngine(conn, schema, scriptVerbose || cfg.Verbose)
	stop := watchInterrupt(engine)
	defer stop()

	tables, err := engine.ResolveTables(ctx, splitTables(scriptTables))
	if err != nil {
		return err
	}

	result, _ := engine.Sort(ctx, tables)
	engine.Progress.Complete(len(result.InsertOrder), len(result.Cycles))

	if scriptExec {
		return executeScript(ctx, cfg, result)
	}

	writer := os.Stdout
	if scriptOutFile != "" {
		writer, err = os.Create(scriptOutFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer writer.Close()
	}

	return output.NewScriptWriter(writer, scriptTruncate).Write(result)
}

func getScriptTargetDSN(cfg *config.Config) string {
	// Priority: --target flag > FKORDER_TARGET env / config file
	if scriptTargetDSN != "" {
		return scriptTargetDSN
	}
	return cfg.Target
}

func executeScript(ctx context.Context, cfg *config.Config, result *graph.Result) error {
	if result.Cancelled {
		return fmt.Errorf("sort was cancelled, refusing to execute a partial order")
	}

	dsn := getScriptTargetDSN(cfg)
	statements := output.DeleteStatements(result.ForDelete(true), scriptTruncate)

	yellow := color.New(color.FgYellow, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)
	red := color.New(color.FgRed, color.Bold)

	fmt.Println()
	yellow.Println("⚠️  DATABASE WRITE OPERATION")
	fmt.Println(strings.Repeat("=", 60))
	red.Println("Target (will be modified):")
	fmt.Printf("  %s\n", maskDSN(dsn))
	fmt.Println()
	cyan.Println("Statements to execute:")
	for _, stmt := range statements {
		fmt.Printf("  %s\n", stmt)
	}
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()

	fmt.Print("Are you sure you want to run these statements against the target database? (yes/no): ")

	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}

	response = strings.TrimSpace(strings.ToLower(response))
	if response != "yes" && response != "y" {
		yellow.Println("\nOperation cancelled by user")
		return nil
	}

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to target database: %w", err)
	}
	defer conn.Close(ctx)

	return output.NewExecutor(conn, scriptVerbose).Execute(ctx, statements)
}
