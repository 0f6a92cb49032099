package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/coreg/internal/worker"
	"github.com/spf13/cobra"
)

var (
	batchFlags   searchFlags
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Run every query listed in a file",
	Long: `Batch runs the queries of a file one after another:
- One query per line; genes of a multi-gene query are separated by commas or spaces
- Blank lines and lines starting with # are skipped, as are repeated queries
- A failing query does not stop the batch

Queries share the NCBI submission throttle, so they are never run in
parallel. --workers still sets how many genes of one query are processed
at once.

Example:
  coreg batch queries.txt
  coreg batch queries.txt --mode blastp --clade all --timeout 48h`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchFlags.register(batchCmd)
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 0, "total timeout for the batch (0 for none)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	a, err := newApp()
	if err != nil {
		return err
	}
	opts, err := batchFlags.apply(cmd, a.cfg)
	if err != nil {
		return err
	}
	if err := requireNCBIContact(a.cfg); err != nil {
		return err
	}
	if err := a.build(opts); err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := commandContext(batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  coreg batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Mode:         %s\n", opts.Mode)
	fmt.Fprintf(os.Stderr, "  Clade:        %s\n", opts.Clade.Label)
	fmt.Fprintf(os.Stderr, "  Threshold:    %g\n", opts.Threshold)
	fmt.Fprintf(os.Stderr, "  Overwrite:    %s\n", opts.Overwrite)
	fmt.Fprintf(os.Stderr, "  Report dir:   %s\n", a.cfg.Storage.ReportDir)
	fmt.Fprintf(os.Stderr, "\n")

	processor := worker.NewBatchProcessor(a.pipeline)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	failureCount := 0
	for _, r := range results {
		query := strings.Join(r.GeneIDs, ",")
		if r.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", query, r.Error)
			continue
		}
		fmt.Fprintf(os.Stderr, "✓ %s (%s)\n", query, r.Duration.Round(time.Second))
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d queries\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", len(results)-failureCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 {
		return fmt.Errorf("%d of %d queries failed", failureCount, len(results))
	}
	return nil
}
