// Package ncbi submits forward searches to NCBI BLAST and resolves hit
// accessions to protein sequences through Entrez.
package ncbi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/biogo/ncbi/blast"
	"github.com/ppiankov/coreg/internal/homology"
	"github.com/ppiankov/coreg/internal/model"
	"github.com/ppiankov/coreg/internal/worker"
	"go.uber.org/zap"
)

// Search status values reported by the BLAST service
const (
	statusReady   = "READY"
	statusWaiting = "WAITING"
	statusFailed  = "FAILED"
	statusUnknown = "UNKNOWN"
)

// ErrSearchFailed is returned when NCBI reports a submitted search as failed or expired
var ErrSearchFailed = errors.New("blast search failed")

// pollSleep waits between status checks; tests replace it
var pollSleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// remote is the slice of the BLAST URL API the client needs
type remote interface {
	submit(query string, p *blast.PutParameters) (job, error)
}

type job interface {
	id() string
	status() (status string, err error)
	output() (*blast.Output, error)
}

// BlastClient runs forward searches for co-regulated genes
type BlastClient struct {
	remote      remote
	cfg         model.NCBIConfig
	geneticCode int
	throttle    *worker.Throttle
	logger      *zap.Logger
}

// NewBlastClient creates a client for the public NCBI BLAST service.
// throttle may be nil.
func NewBlastClient(cfg model.NCBIConfig, geneticCode int, throttle *worker.Throttle, logger *zap.Logger) *BlastClient {
	return newBlastClient(&ncbiRemote{tool: cfg.Tool, email: cfg.Email}, cfg, geneticCode, throttle, logger)
}

func newBlastClient(r remote, cfg model.NCBIConfig, geneticCode int, throttle *worker.Throttle, logger *zap.Logger) *BlastClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if throttle == nil {
		throttle = worker.NewThrottle(0, 0)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.MaxPolls <= 0 {
		cfg.MaxPolls = 120
	}
	return &BlastClient{remote: r, cfg: cfg, geneticCode: geneticCode, throttle: throttle, logger: logger}
}

// Search submits gene's sequence for mode restricted to clade and waits
// for the result. An empty result carrying one of NCBI's database failure
// messages is returned as a document with DBError set.
func (c *BlastClient) Search(ctx context.Context, gene model.GeneQuery, mode model.SearchMode, clade model.Clade) (*model.HitDocument, error) {
	query := gene.Sequence(mode)
	if query == "" {
		return nil, fmt.Errorf("%s has no sequence for %s", gene.ID, mode)
	}

	params := &blast.PutParameters{
		Program:     string(mode),
		Database:    c.cfg.Database,
		EntrezQuery: clade.EntrezQuery,
	}
	if mode == model.ModeBlastX {
		params.GeneticCode = []int{c.geneticCode}
	}

	if err := c.throttle.Wait(ctx); err != nil {
		return nil, err
	}

	log := c.logger.With(zap.String("gene", gene.ID), zap.String("mode", string(mode)), zap.String("clade", clade.Label))
	j, err := c.remote.submit(query, params)
	if err != nil {
		return nil, fmt.Errorf("submit %s: %w", gene.ID, err)
	}
	log.Info("forward search submitted", zap.String("rid", j.id()))

	out, err := c.await(ctx, j, log)
	if err != nil {
		return nil, err
	}

	doc := &model.HitDocument{
		GeneID:    gene.ID,
		Clade:     clade.Label,
		Mode:      mode,
		CreatedAt: time.Now().UTC(),
	}
	for _, it := range out.Iterations {
		if it.Message != nil && doc.Message == "" {
			doc.Message = *it.Message
		}
		for _, h := range it.Hits {
			doc.Hits = append(doc.Hits, model.HomologyHit{
				Accession:  h.Accession,
				Definition: h.Def,
				Species:    homology.SpeciesLabel(h.Def),
			})
		}
	}
	doc.DBError = len(doc.Hits) == 0 && homology.IsDBError(doc.Message)

	log.Info("forward search finished", zap.Int("hits", len(doc.Hits)), zap.Bool("db_error", doc.DBError))
	return doc, nil
}

func (c *BlastClient) await(ctx context.Context, j job, log *zap.Logger) (*blast.Output, error) {
	for poll := 1; poll <= c.cfg.MaxPolls; poll++ {
		if err := pollSleep(ctx, c.cfg.PollInterval); err != nil {
			return nil, err
		}
		status, err := j.status()
		if err != nil {
			return nil, fmt.Errorf("search info %s: %w", j.id(), err)
		}
		switch status {
		case statusReady:
			out, err := j.output()
			if err != nil {
				return nil, fmt.Errorf("get output %s: %w", j.id(), err)
			}
			return out, nil
		case statusWaiting:
			log.Debug("search pending", zap.String("rid", j.id()), zap.Int("poll", poll))
		case statusFailed, statusUnknown:
			return nil, fmt.Errorf("%s: status %s: %w", j.id(), status, ErrSearchFailed)
		default:
			log.Warn("unrecognised search status", zap.String("rid", j.id()), zap.String("status", status))
		}
	}
	return nil, fmt.Errorf("%s: not ready after %d polls: %w", j.id(), c.cfg.MaxPolls, ErrSearchFailed)
}

type ncbiRemote struct {
	tool, email string
}

func (r *ncbiRemote) submit(query string, p *blast.PutParameters) (job, error) {
	rid, err := blast.Put(query, p, r.tool, r.email)
	if err != nil {
		return nil, err
	}
	return &ncbiJob{rid: rid, tool: r.tool, email: r.email}, nil
}

type ncbiJob struct {
	rid         *blast.Rid
	tool, email string
}

func (j *ncbiJob) id() string { return j.rid.String() }

func (j *ncbiJob) status() (string, error) {
	info, err := j.rid.SearchInfo(j.tool, j.email)
	if err != nil {
		return "", err
	}
	return info.Status, nil
}

func (j *ncbiJob) output() (*blast.Output, error) {
	return j.rid.GetOutput(&blast.GetParameters{FormatType: "XML"}, j.tool, j.email)
}
