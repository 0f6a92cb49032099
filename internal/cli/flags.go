package cli

import (
	"fmt"
	"path/filepath"

	"github.com/ppiankov/coreg/internal/model"
	"github.com/ppiankov/coreg/internal/pipeline"
	"github.com/spf13/cobra"
)

// searchFlags are shared by run and batch
type searchFlags struct {
	mode        string
	clade       string
	cladeLabel  string
	entrezQuery string
	threshold   float64
	overwrite   string
	workers     int
	annotate    bool
	reportDir   string
	mirrorDir   string
	dataDir     string
}

func (f *searchFlags) register(cmd *cobra.Command) {
	defaults := model.DefaultConfig()
	fs := cmd.Flags()
	fs.StringVar(&f.mode, "mode", string(defaults.Search.Mode), "search mode (blastx, blastp, both)")
	fs.StringVar(&f.clade, "clade", defaults.Search.Clade, "clade filter (not-ciliates, ciliates, all, custom)")
	fs.StringVar(&f.cladeLabel, "clade-label", "", "label of a custom clade, used in file names")
	fs.StringVar(&f.entrezQuery, "entrez-query", "", "Entrez query of a custom clade")
	fs.Float64Var(&f.threshold, "threshold", defaults.Search.Threshold, "minimum z-score for a co-regulated gene to be searched")
	fs.StringVar(&f.overwrite, "overwrite", string(pipeline.FillMissing), "stored results to recompute (all, searches, missing)")
	fs.IntVar(&f.workers, "workers", defaults.Concurrency.Workers, "genes processed concurrently")
	fs.BoolVar(&f.annotate, "annotate", false, "write LLM notes next to the report")
	fs.StringVar(&f.reportDir, "report-dir", defaults.Storage.ReportDir, "directory receiving reports")
	fs.StringVar(&f.mirrorDir, "mirror-dir", "", "second directory receiving report copies")
	fs.StringVar(&f.dataDir, "data-dir", defaults.Storage.DataDir, "directory holding the document store and cache")
}

// apply overrides cfg with the flags the user set and returns the
// pipeline options
func (f *searchFlags) apply(cmd *cobra.Command, cfg *model.Config) (pipeline.Options, error) {
	fs := cmd.Flags()
	if fs.Changed("mode") {
		cfg.Search.Mode = model.SearchMode(f.mode)
	}
	if fs.Changed("clade") {
		cfg.Search.Clade = f.clade
	}
	if fs.Changed("clade-label") {
		cfg.Search.CladeLabel = f.cladeLabel
	}
	if fs.Changed("entrez-query") {
		cfg.Search.EntrezQuery = f.entrezQuery
	}
	if fs.Changed("threshold") {
		cfg.Search.Threshold = f.threshold
	}
	if fs.Changed("workers") {
		cfg.Concurrency.Workers = f.workers
	}
	if fs.Changed("report-dir") {
		cfg.Storage.ReportDir = f.reportDir
	}
	if fs.Changed("mirror-dir") {
		cfg.Storage.MirrorDir = f.mirrorDir
	}
	if fs.Changed("data-dir") {
		cfg.Storage.DataDir = f.dataDir
		cfg.Cache.Dir = filepath.Join(f.dataDir, "cache")
	}

	mode, err := model.ParseSearchMode(string(cfg.Search.Mode))
	if err != nil {
		return pipeline.Options{}, err
	}
	clade, err := model.ResolveClade(cfg.Search.Clade, cfg.Search.CladeLabel, cfg.Search.EntrezQuery)
	if err != nil {
		return pipeline.Options{}, err
	}
	overwrite, err := pipeline.ParseOverwrite(f.overwrite)
	if err != nil {
		return pipeline.Options{}, err
	}
	if cfg.Search.Threshold < 0 {
		return pipeline.Options{}, fmt.Errorf("threshold must not be negative: %g", cfg.Search.Threshold)
	}

	return pipeline.Options{
		Mode:      mode,
		Clade:     clade,
		Threshold: cfg.Search.Threshold,
		Overwrite: overwrite,
		Workers:   cfg.Concurrency.Workers,
		Annotate:  f.annotate,
	}, nil
}
