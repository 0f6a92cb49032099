package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ppiankov/coreg/internal/pipeline"
	"github.com/ppiankov/coreg/internal/worker"
	"github.com/spf13/cobra"
)

var harvestThreshold float64

// harvestCmd represents the harvest command
var harvestCmd = &cobra.Command{
	Use:   "harvest <gene-id>...",
	Short: "Refresh the co-regulated gene list of a query",
	Long: `Harvest fetches the co-regulated genes of a query with their names,
descriptions and sequences from the Tetrahymena gene databases and stores
them. No homology search is run.

Example:
  coreg harvest TTHERM_00321680
  coreg harvest TTHERM_00321680 --threshold 20`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHarvest,
}

func init() {
	rootCmd.AddCommand(harvestCmd)
	harvestCmd.Flags().Float64Var(&harvestThreshold, "threshold", 20, "mark genes at or above this z-score as selected for search")
}

func runHarvest(cmd *cobra.Command, args []string) error {
	ids, err := worker.ParseQuery(strings.Join(args, " "))
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.build(pipeline.Options{Threshold: harvestThreshold}); err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := commandContext(0)
	defer cancel()

	genes, err := a.pipeline.Harvest(ctx, ids)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GENE\tZ-SCORE\tSEARCH\tNAME\tDESCRIPTION")
	selected := 0
	for _, g := range genes {
		search := ""
		if g.Queried || g.ZScore >= harvestThreshold {
			search = "yes"
			selected++
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", g.ID, g.ScoreLabel(), search, g.CommonName, g.Description)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n✓ Stored %d genes (%d at or above z-score %g)\n", len(genes), selected, harvestThreshold)
	return nil
}
