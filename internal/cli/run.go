package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/ppiankov/coreg/internal/pipeline"
	"github.com/ppiankov/coreg/internal/worker"
	"github.com/spf13/cobra"
)

var (
	runFlags   searchFlags
	runTimeout time.Duration
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <gene-id>...",
	Short: "Build the homology report for one query",
	Long: `Run collects the genes co-regulated with the queried genes, searches every
gene above the z-score threshold at NCBI, classifies the homologs by
reciprocal search and writes the CSV report.

Several gene IDs form one multi-gene query: only genes co-regulated with
all of them are reported. The TTHERM_ prefix may be omitted.

Co-regulated genes without a cDNA sequence are left out of the report.
Queried genes are always reported; a mode whose sequence is missing (cDNA
for blastx, protein for blastp) is skipped for that gene.

Results are stored as they are computed, so an interrupted run picks up
where it stopped when rerun with --overwrite missing (the default).

Example:
  coreg run TTHERM_00321680
  coreg run 00321680 --mode blastp --clade ciliates --threshold 15
  coreg run TTHERM_00321680,TTHERM_00011910 --overwrite searches`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runFlags.register(runCmd)
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "overall run timeout (0 for none)")
}

func runRun(cmd *cobra.Command, args []string) error {
	ids, err := worker.ParseQuery(strings.Join(args, " "))
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	opts, err := runFlags.apply(cmd, a.cfg)
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

	ctx, cancel := commandContext(runTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "Query:      %s\n", strings.Join(ids, ", "))
	fmt.Fprintf(os.Stderr, "Mode:       %s\n", opts.Mode)
	fmt.Fprintf(os.Stderr, "Clade:      %s\n", opts.Clade.Label)
	fmt.Fprintf(os.Stderr, "Threshold:  %g\n", opts.Threshold)
	fmt.Fprintf(os.Stderr, "Overwrite:  %s\n\n", opts.Overwrite)

	res, err := a.pipeline.Run(ctx, ids)
	if res != nil {
		printResult(res)
	}
	var runErr *pipeline.RunError
	if errors.As(err, &runErr) {
		printFailures(runErr)
		return fmt.Errorf("%d gene searches failed; rerun with --overwrite missing to retry them", len(runErr.Failures))
	}
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	return nil
}

// commandContext is cancelled by Ctrl-C and, when set, the timeout
func commandContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	if timeout <= 0 {
		return ctx, stop
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	return tctx, func() {
		cancel()
		stop()
	}
}

func printResult(res *pipeline.Result) {
	fmt.Fprintf(os.Stderr, "✓ %d genes, %d searched\n", res.Genes, res.Searched)
	for _, p := range res.Reports {
		fmt.Fprintf(os.Stderr, "✓ Report: %s\n", p)
	}
	for _, p := range res.Notes {
		fmt.Fprintf(os.Stderr, "✓ Notes:  %s\n", p)
	}
}

func printFailures(err *pipeline.RunError) {
	fmt.Fprintf(os.Stderr, "\n")
	for _, f := range err.Failures {
		fmt.Fprintf(os.Stderr, "✗ %s (%s, %s): %v\n", f.GeneID, f.Mode, f.Stage, f.Err)
	}
}
