package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/coreg/internal/pipeline"
	"github.com/ppiankov/coreg/internal/worker"
	"github.com/spf13/cobra"
)

// sanitizeCmd represents the sanitize command
var sanitizeCmd = &cobra.Command{
	Use:   "sanitize <gene-id>...",
	Short: "Delete stored searches that failed on an NCBI database error",
	Long: `NCBI sometimes ends a search early with a resource-limit message instead
of results. Such searches are stored as database errors and reported as
"db error". Sanitize deletes them for a query so that the next
'coreg run' (with the default --overwrite missing) repeats only those
searches.

Example:
  coreg sanitize TTHERM_00321680
  coreg run TTHERM_00321680`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSanitize,
}

func init() {
	rootCmd.AddCommand(sanitizeCmd)
}

func runSanitize(cmd *cobra.Command, args []string) error {
	ids, err := worker.ParseQuery(strings.Join(args, " "))
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.build(pipeline.Options{}); err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := commandContext(0)
	defer cancel()

	removed, err := a.pipeline.Sanitize(ctx, ids)
	if err != nil {
		return err
	}
	for _, k := range removed {
		fmt.Println(k.String())
	}
	fmt.Fprintf(os.Stderr, "✓ Removed %d documents\n", len(removed))
	return nil
}
