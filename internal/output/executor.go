package output

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Executor runs generated statements directly against a target database.
// All statements execute inside one transaction: either the whole script
// applies or none of it does.
type Executor struct {
	conn    *pgx.Conn
	verbose bool
}

// NewExecutor creates an executor for the given connection.
func NewExecutor(conn *pgx.Conn, verbose bool) *Executor {
	return &Executor{conn: conn, verbose: verbose}
}

// Execute runs the statements in order within a transaction. The first
// failure rolls back everything already executed.
func (e *Executor) Execute(ctx context.Context, statements []string) error {
	if len(statements) == 0 {
		return nil
	}

	tx, err := e.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if e.verbose {
		fmt.Println("Executing statements against target database...")
	}

	for i, stmt := range statements {
		tag, err := tx.Exec(ctx, stmt)
		if err != nil {
			return fmt.Errorf("statement %d failed (%s): %w", i+1, stmt, err)
		}
		if e.verbose {
			fmt.Printf("  [%d/%d] %s (%d rows affected)\n", i+1, len(statements), stmt, tag.RowsAffected())
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	if e.verbose {
		fmt.Printf("Successfully executed %d statements\n", len(statements))
	}

	return nil
}
