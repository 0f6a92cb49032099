// Package pipeline runs a query through harvest, forward search,
// reciprocal classification, phrase summarization and report output.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/coreg/internal/homology"
	"github.com/ppiankov/coreg/internal/llm"
	"github.com/ppiankov/coreg/internal/model"
	"github.com/ppiankov/coreg/internal/phrase"
	"github.com/ppiankov/coreg/internal/report"
	"github.com/ppiankov/coreg/internal/scrape"
	"github.com/ppiankov/coreg/internal/store"
	"github.com/ppiankov/coreg/internal/worker"
	"go.uber.org/zap"
)

// Harvester discovers the genes of a query
type Harvester interface {
	Harvest(ctx context.Context, ids []string) ([]model.GeneQuery, error)
}

// ForwardSearcher runs the homology search for one gene
type ForwardSearcher interface {
	Search(ctx context.Context, gene model.GeneQuery, mode model.SearchMode, clade model.Clade) (*model.HitDocument, error)
}

// DocumentClassifier tags the hits of a forward search document
type DocumentClassifier interface {
	ClassifyDocument(ctx context.Context, doc *model.HitDocument) (*model.HitDocument, error)
}

// Store persists intermediate results. *store.SQLiteStore satisfies it.
type Store interface {
	SaveGenes(queryKey string, genes []model.GeneQuery) error
	LoadGenes(queryKey string) ([]model.GeneQuery, error)
	SaveDocument(key store.DocKey, doc *model.HitDocument) error
	LoadDocument(key store.DocKey) (*model.HitDocument, error)
	HasDocument(key store.DocKey) (bool, error)
	DeleteDBErrors(queryKey string) ([]store.DocKey, error)
	RecordRun(r store.Run) error
}

// Deps are the collaborators of a Pipeline. Annotator may be nil.
type Deps struct {
	Harvester  Harvester
	Searcher   ForwardSearcher
	Classifier DocumentClassifier
	Store      Store
	Locations  store.Locations
	Annotator  llm.Provider
}

// Options select what a run computes
type Options struct {
	Mode      model.SearchMode
	Clade     model.Clade
	Threshold float64
	Overwrite Overwrite
	Workers   int
	Annotate  bool
}

// Result summarizes a completed run
type Result struct {
	RunID    string
	Genes    int
	Searched int
	Reports  []string
	Notes    []string
	Failures []GeneFailure
}

// Pipeline orchestrates the stages of a query
type Pipeline struct {
	deps   Deps
	opts   Options
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// New creates a pipeline
func New(deps Deps, opts Options, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Overwrite == "" {
		opts.Overwrite = FillMissing
	}
	return &Pipeline{
		deps:   deps,
		opts:   opts,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// RunQuery runs a query and returns its error only. It lets the pipeline
// drive worker.BatchProcessor.
func (p *Pipeline) RunQuery(ctx context.Context, ids []string) error {
	_, err := p.Run(ctx, ids)
	return err
}

// Run processes one query end to end. Per-gene failures do not stop the
// run: the report is still written and a *RunError listing them is
// returned with the result.
func (p *Pipeline) Run(ctx context.Context, ids []string) (*Result, error) {
	res := &Result{RunID: p.newID()}
	started := p.now().UTC()
	key := model.QueryKey(ids)
	log := p.logger.With(
		zap.String("run_id", res.RunID),
		zap.String("query", key),
		zap.String("clade", p.opts.Clade.Label))

	log.Info("run started",
		zap.String("mode", string(p.opts.Mode)),
		zap.Float64("threshold", p.opts.Threshold),
		zap.String("overwrite", string(p.opts.Overwrite)))

	genes, err := p.genes(ctx, key, ids, log)
	if err != nil {
		return nil, err
	}
	res.Genes = len(genes)

	toSearch := scrape.SelectForSearch(genes, p.opts.Threshold)
	res.Searched = len(toSearch)
	log.Info("genes selected for homology search",
		zap.Int("genes", len(genes)),
		zap.Int("selected", len(toSearch)))

	byMode := make(map[model.SearchMode]report.Summaries)
	var analyses []*geneAnalysis
	for _, mode := range p.opts.Mode.Modes() {
		summaries, done, failures := p.searchMode(ctx, key, mode, toSearch, log)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		byMode[mode] = summaries
		analyses = append(analyses, done...)
		res.Failures = append(res.Failures, failures...)
	}

	in := report.Input{
		QueryIDs:  ids,
		Clade:     p.opts.Clade.Label,
		Mode:      p.opts.Mode,
		Threshold: p.opts.Threshold,
		Genes:     genes,
		ByMode:    byMode,
	}
	name := report.FileName(ids, p.opts.Clade.Label, p.opts.Mode, p.opts.Threshold)
	res.Reports = p.deps.Locations.ReportPaths(name)
	if err := report.WriteFiles(res.Reports, report.Header(in.Single(), p.opts.Mode), report.Rows(in)); err != nil {
		return nil, err
	}
	log.Info("report written", zap.Strings("paths", res.Reports))

	if p.opts.Annotate && p.deps.Annotator != nil {
		res.Notes = p.annotate(ctx, key, analyses, res.Reports, log)
	}

	run := store.Run{
		ID:         res.RunID,
		QueryKey:   key,
		Clade:      p.opts.Clade.Label,
		Mode:       string(p.opts.Mode),
		Threshold:  p.opts.Threshold,
		Overwrite:  string(p.opts.Overwrite),
		StartedAt:  started,
		FinishedAt: p.now().UTC(),
		Failures:   len(res.Failures),
	}
	if err := p.deps.Store.RecordRun(run); err != nil {
		log.Warn("failed to record run", zap.Error(err))
	}

	log.Info("run finished",
		zap.Duration("elapsed", run.FinishedAt.Sub(started)),
		zap.Int("failures", len(res.Failures)))

	if len(res.Failures) > 0 {
		return res, &RunError{Failures: res.Failures}
	}
	return res, nil
}

// Harvest refreshes the stored gene list of a query without searching
func (p *Pipeline) Harvest(ctx context.Context, ids []string) ([]model.GeneQuery, error) {
	genes, err := p.deps.Harvester.Harvest(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("harvest: %w", err)
	}
	if err := p.deps.Store.SaveGenes(model.QueryKey(ids), genes); err != nil {
		return nil, err
	}
	return genes, nil
}

// Sanitize deletes the stored documents of a query whose forward search
// hit an NCBI database failure, so a fill-missing run redoes them
func (p *Pipeline) Sanitize(ctx context.Context, ids []string) ([]store.DocKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	removed, err := p.deps.Store.DeleteDBErrors(model.QueryKey(ids))
	if err != nil {
		return nil, fmt.Errorf("sanitize: %w", err)
	}
	for _, k := range removed {
		p.logger.Info("removed db error document",
			zap.String("gene", k.GeneID),
			zap.String("mode", string(k.Mode)),
			zap.String("stage", string(k.Stage)))
	}
	return removed, nil
}

func (p *Pipeline) genes(ctx context.Context, key string, ids []string, log *zap.Logger) ([]model.GeneQuery, error) {
	if !p.opts.Overwrite.refreshHarvest() {
		genes, err := p.deps.Store.LoadGenes(key)
		if err == nil {
			log.Info("reusing stored gene list", zap.Int("genes", len(genes)))
			return genes, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}
	return p.Harvest(ctx, ids)
}

// geneAnalysis is the outcome of one gene in one mode
type geneAnalysis struct {
	gene       model.GeneQuery
	mode       model.SearchMode
	doc        *model.HitDocument
	defs       homology.Definitions
	summary    model.GeneSummary
	accessions []string
}

func (p *Pipeline) searchMode(ctx context.Context, key string, mode model.SearchMode, genes []model.GeneQuery, log *zap.Logger) (report.Summaries, []*geneAnalysis, []GeneFailure) {
	results := make([]*geneAnalysis, len(genes))
	jobs := make([]worker.Job, len(genes))
	for i, g := range genes {
		jobs[i] = &geneJob{p: p, key: key, gene: g, mode: mode, log: log, out: &results[i]}
	}

	outcomes := worker.RunAll(ctx, p.opts.Workers, jobs)

	summaries := make(report.Summaries)
	var done []*geneAnalysis
	var failures []GeneFailure
	for i, o := range outcomes {
		if o.Err != nil {
			var gf *GeneFailure
			if !errors.As(o.Err, &gf) {
				gf = &GeneFailure{GeneID: genes[i].ID, Mode: mode, Stage: StageSearch, Err: o.Err}
			}
			failures = append(failures, *gf)
			continue
		}
		if a := results[i]; a != nil {
			summaries[a.gene.ID] = a.summary
			done = append(done, a)
		}
	}
	return summaries, done, failures
}

type geneJob struct {
	p    *Pipeline
	key  string
	gene model.GeneQuery
	mode model.SearchMode
	log  *zap.Logger
	out  **geneAnalysis
}

func (j *geneJob) Key() string { return j.gene.ID + "/" + string(j.mode) }

func (j *geneJob) Run(ctx context.Context) error {
	p := j.p
	log := j.log.With(zap.String("gene", j.gene.ID), zap.String("mode", string(j.mode)))
	fail := func(stage string, err error) error {
		log.Error("gene failed", zap.String("stage", stage), zap.Error(err))
		return &GeneFailure{GeneID: j.gene.ID, Mode: j.mode, Stage: stage, Err: err}
	}

	if j.gene.Sequence(j.mode) == "" {
		log.Warn("no sequence for search mode, skipping")
		return nil
	}

	docKey := store.DocKey{QueryKey: j.key, GeneID: j.gene.ID, Clade: p.opts.Clade.Label, Mode: j.mode}

	fwdKey := docKey
	fwdKey.Stage = store.StageForward
	forward, fresh, err := p.loadOr(fwdKey, p.opts.Overwrite.refreshSearches(), func() (*model.HitDocument, error) {
		return p.deps.Searcher.Search(ctx, j.gene, j.mode, p.opts.Clade)
	})
	if err != nil {
		return fail(StageSearch, err)
	}

	recKey := docKey
	recKey.Stage = store.StageReciprocal
	classified, _, err := p.loadOr(recKey, fresh || p.opts.Overwrite.refreshSearches(), func() (*model.HitDocument, error) {
		return p.deps.Classifier.ClassifyDocument(ctx, forward)
	})
	if err != nil {
		return fail(StageReciprocal, err)
	}

	defs := homology.Partition(classified)
	a := &geneAnalysis{
		gene:    j.gene,
		mode:    j.mode,
		doc:     classified,
		defs:    defs,
		summary: phrase.SummarizeGene(defs),
	}
	for _, h := range classified.Surviving() {
		a.accessions = append(a.accessions, h.Accession)
	}
	*j.out = a

	log.Info("gene analysed",
		zap.Int("hits", len(classified.Hits)),
		zap.Int("surviving", len(a.accessions)),
		zap.Bool("db_error", classified.DBError))
	return nil
}

// loadOr returns the stored document under key unless refresh is set or
// none is stored, in which case it computes and stores a new one. fresh
// reports whether the document was computed.
func (p *Pipeline) loadOr(key store.DocKey, refresh bool, compute func() (*model.HitDocument, error)) (doc *model.HitDocument, fresh bool, err error) {
	if !refresh {
		has, err := p.deps.Store.HasDocument(key)
		if err != nil {
			return nil, false, err
		}
		if has {
			doc, err = p.deps.Store.LoadDocument(key)
			return doc, false, err
		}
	}
	doc, err = compute()
	if err != nil {
		return nil, false, err
	}
	if err := p.deps.Store.SaveDocument(key, doc); err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

func (p *Pipeline) annotate(ctx context.Context, key string, analyses []*geneAnalysis, reports []string, log *zap.Logger) []string {
	var notes []report.Note
	for _, a := range analyses {
		if len(a.accessions) == 0 {
			continue
		}
		resp, err := p.deps.Annotator.Annotate(ctx, llm.AnnotateRequest{
			GeneID:      a.gene.ID,
			Mode:        string(a.mode),
			Description: a.gene.Description,
			Definitions: a.defs[model.PartitionMixed],
			Accessions:  a.accessions,
		})
		if err != nil {
			log.Warn("annotation failed", zap.String("gene", a.gene.ID), zap.String("mode", string(a.mode)), zap.Error(err))
			continue
		}
		notes = append(notes, report.Note{GeneID: a.gene.ID, Mode: string(a.mode), Model: resp.Model, Text: resp.Note})
	}
	if len(notes) == 0 {
		return nil
	}

	title := fmt.Sprintf("Notes for %s (%s)", key, p.opts.Clade.Label)
	if err := report.WriteNotes(reports, title, notes); err != nil {
		log.Warn("failed to write notes", zap.Error(err))
		return nil
	}
	paths := make([]string, len(reports))
	for i, r := range reports {
		paths[i] = report.NotesFileName(r)
	}
	log.Info("notes written", zap.Int("notes", len(notes)))
	return paths
}
