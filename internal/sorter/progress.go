package sorter

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// ProgressTracker provides colored output and progress reporting for
// ordering operations. It displays phase information, per-table progress,
// cycle warnings, and completion statistics.
type ProgressTracker struct {
	verbose      bool
	startTime    time.Time
	currentPhase string
	bar          *progressbar.ProgressBar

	// Terminal color formatters
	cyan    *color.Color
	green   *color.Color
	yellow  *color.Color
	blue    *color.Color
	magenta *color.Color
}

// NewProgressTracker creates a new progress tracker.
// If verbose is true, detailed logging is enabled.
func NewProgressTracker(verbose bool) *ProgressTracker {
	return &ProgressTracker{
		verbose:   verbose,
		startTime: time.Now(),
		cyan:      color.New(color.FgCyan, color.Bold),
		green:     color.New(color.FgGreen, color.Bold),
		yellow:    color.New(color.FgYellow, color.Bold),
		blue:      color.New(color.FgBlue),
		magenta:   color.New(color.FgMagenta),
	}
}

func (pt *ProgressTracker) StartPhase(phase string) {
	pt.currentPhase = phase
	if pt.verbose {
		pt.cyan.Printf("\n%s\n", phase)
		fmt.Println(color.New(color.FgHiBlack).Sprint("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"))
	}
}

func (pt *ProgressTracker) Info(format string, args ...interface{}) {
	if pt.verbose {
		pt.blue.Printf("   ℹ  "+format+"\n", args...)
	}
}

func (pt *ProgressTracker) Success(format string, args ...interface{}) {
	if pt.verbose {
		pt.green.Printf("   ✓  "+format+"\n", args...)
	}
}

// Warning always prints, even without --verbose: cycles, lookup failures
// and cancellation must reach the user.
func (pt *ProgressTracker) Warning(format string, args ...interface{}) {
	pt.FinishProgress()
	pt.yellow.Fprintf(os.Stderr, "   ⚠  "+format+"\n", args...)
}

func (pt *ProgressTracker) Progress(current, total int, description string) {
	if !pt.verbose {
		return
	}

	if pt.bar == nil || total != pt.bar.GetMax() {
		pt.bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "█",
				SaucerHead:    "█",
				SaucerPadding: "░",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("tables"),
		)
	}
	pt.bar.Set(current)
}

func (pt *ProgressTracker) FinishProgress() {
	if pt.bar != nil {
		pt.bar.Finish()
		fmt.Fprintln(os.Stderr)
		pt.bar = nil
	}
}

// TableOrdered reports that a table has been appended to the output order.
func (pt *ProgressTracker) TableOrdered(tableName string, current, total int) {
	if pt.verbose {
		pt.Progress(current, total, fmt.Sprintf("Ordering tables (%s)", tableName))
	}
}

// CycleDetected reports a foreign key loop and the edge ignored to break it.
func (pt *ProgressTracker) CycleDetected(cycle, brokenChild, brokenParent string) {
	pt.Warning("cyclic foreign keys: %s (ignoring %s -> %s to produce an order)", cycle, brokenChild, brokenParent)
}

// SelfReference notes a table with a foreign key to itself. Not a cycle,
// but the caller may need deferred constraints or row-level ordering.
func (pt *ProgressTracker) SelfReference(tableName string) {
	if pt.verbose {
		pt.magenta.Printf("   ↺  %s references itself (rows need parent-first ordering within the table)\n", tableName)
	}
}

func (pt *ProgressTracker) Complete(totalTables, cycles int) {
	elapsed := time.Since(pt.startTime)

	if pt.verbose {
		fmt.Println()
		pt.cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		pt.green.Printf("✓ Ordering Complete!\n\n")

		fmt.Printf("  Statistics:\n")
		pt.blue.Printf("     • Tables ordered: %d\n", totalTables)
		pt.blue.Printf("     • Cycles broken:  %d\n", cycles)
		pt.blue.Printf("     • Time taken:     %v\n", elapsed.Round(time.Millisecond))
		fmt.Println()
	}
}

// OutputGeneration announces the start of script or JSON generation.
func (pt *ProgressTracker) OutputGeneration(format string) {
	if pt.verbose {
		pt.StartPhase(fmt.Sprintf("Generating %s output", format))
	}
}

// WritingTable reports progress while emitting script output.
func (pt *ProgressTracker) WritingTable(tableName string, rowCount int, current, total int) {
	if pt.verbose {
		pt.Progress(current, total, fmt.Sprintf("Writing %s (%d rows)", tableName, rowCount))
	}
}
