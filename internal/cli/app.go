package cli

import (
	"fmt"
	"path/filepath"

	"github.com/ppiankov/coreg/internal/cache"
	"github.com/ppiankov/coreg/internal/fetch"
	"github.com/ppiankov/coreg/internal/homology"
	"github.com/ppiankov/coreg/internal/llm"
	"github.com/ppiankov/coreg/internal/logger"
	"github.com/ppiankov/coreg/internal/model"
	"github.com/ppiankov/coreg/internal/ncbi"
	"github.com/ppiankov/coreg/internal/pipeline"
	"github.com/ppiankov/coreg/internal/scrape"
	"github.com/ppiankov/coreg/internal/store"
	"github.com/ppiankov/coreg/internal/tgdblast"
	"github.com/ppiankov/coreg/internal/util"
	"github.com/ppiankov/coreg/internal/worker"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// dbFileName is the document store inside the data directory
const dbFileName = "coreg.db"

// app holds the collaborators shared by the commands
type app struct {
	cfg      *model.Config
	logger   *zap.Logger
	store    *store.SQLiteStore
	pipeline *pipeline.Pipeline
}

// newApp loads configuration and builds the logger. Commands then call
// build with their pipeline options.
func newApp() (*app, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: log}, nil
}

// build wires the sources, searchers, store and pipeline described by the
// configuration
func (a *app) build(opts pipeline.Options) error {
	cfg := a.cfg

	if opts.Annotate && cfg.LLM.Provider == "" {
		return fmt.Errorf("--annotate needs an LLM provider (set llm.provider or COREG_LLM_PROVIDER)")
	}

	client := util.NewHTTPClient(cfg.HTTP.Timeout, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)
	fopts := fetch.Options{
		UserAgent:  cfg.HTTP.UserAgent,
		MaxBytes:   cfg.HTTP.MaxBodyBytes,
		MaxRetries: cfg.HTTP.MaxRetries,
		Limiter:    worker.NewHostLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize),
		Logger:     a.logger,
	}
	if cfg.HTTP.RespectRobots {
		fopts.Robots = util.NewRobotsChecker(client, cfg.HTTP.UserAgent)
	}
	fetcher := fetch.New(client, fopts)

	fgd := scrape.NewFGDAdapter(cfg.Sources.FGDBaseURL, fetcher, a.logger)
	tgd := scrape.NewTGDAdapter(cfg.Sources.TGDBaseURL, fetcher, a.logger)
	harvester := scrape.NewHarvester(fgd, a.logger, tgd, fgd)

	resolver := ncbi.NewEntrezResolver(cfg.NCBI.Tool, cfg.NCBI.Email, cache.New(cfg.Cache), a.logger)
	reciprocal := tgdblast.NewClient(fetcher, cfg.Sources.ReciprocalBlastURL, cfg.Sources.ReciprocalDatabase, a.logger)
	classifier := homology.NewClassifier(resolver, reciprocal, a.logger)

	throttle := worker.NewThrottle(cfg.Throttle.Every, cfg.Throttle.Pause)
	searcher := ncbi.NewBlastClient(cfg.NCBI, cfg.Search.GeneticCode, throttle, a.logger)

	st, err := store.Open(filepath.Join(cfg.Storage.DataDir, dbFileName))
	if err != nil {
		return err
	}

	deps := pipeline.Deps{
		Harvester:  harvester,
		Searcher:   searcher,
		Classifier: classifier,
		Store:      st,
		Locations:  store.DirLocations{Primary: cfg.Storage.ReportDir, Mirror: cfg.Storage.MirrorDir},
	}
	if opts.Annotate {
		provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			_ = st.Close()
			return fmt.Errorf("llm provider: %w", err)
		}
		deps.Annotator = provider
	}

	a.store = st
	a.pipeline = pipeline.New(deps, opts, a.logger)
	return nil
}

// close releases the store and flushes the logger
func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close store", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// requireNCBIContact fails early when searches would be sent anonymously
func requireNCBIContact(cfg *model.Config) error {
	if cfg.NCBI.Email == "" {
		return fmt.Errorf("NCBI contact email is not set (ncbi.email, COREG_NCBI_EMAIL or NCBI_EMAIL)")
	}
	return nil
}
