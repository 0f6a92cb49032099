package homology

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/coreg/internal/model"
	"go.uber.org/zap"
)

// ErrSequenceNotFound is wrapped by resolvers when the sequence database
// has no record for an accession. Such a hit is removed instead of
// aborting the document.
var ErrSequenceNotFound = errors.New("no sequence record")

// SequenceResolver fetches the full sequence behind an accession
type SequenceResolver interface {
	Resolve(ctx context.Context, accession string) (string, error)
}

// ReciprocalSearcher runs a reverse search against the origin organism
type ReciprocalSearcher interface {
	Search(ctx context.Context, sequence string) (model.ReciprocalRecord, error)
}

// SubmissionError means a hit could not be reciprocated. It aborts the
// whole document so that no partially classified document is stored.
type SubmissionError struct {
	Accession string
	Err       error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("reciprocal search for %s: %v", e.Accession, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Classifier tags every hit of a forward search document
type Classifier struct {
	resolver SequenceResolver
	searcher ReciprocalSearcher
	logger   *zap.Logger
}

// NewClassifier creates a classifier. A nil logger disables logging.
func NewClassifier(resolver SequenceResolver, searcher ReciprocalSearcher, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{resolver: resolver, searcher: searcher, logger: logger}
}

// ClassifyDocument returns a copy of doc in which every hit carries a
// final quality tag. Duplicate-species hits and hits whose sequence has no
// record are tagged remove without a reciprocal search. Any other resolver
// or searcher failure returns a *SubmissionError and no document.
func (c *Classifier) ClassifyDocument(ctx context.Context, doc *model.HitDocument) (*model.HitDocument, error) {
	out := doc.Clone()
	log := c.logger.With(zap.String("gene", doc.GeneID), zap.String("mode", string(doc.Mode)))

	kept, dropped := DedupeSpecies(doc.Hits)
	if len(dropped) > 0 {
		log.Info("removed redundant homologs", zap.Int("count", len(dropped)))
	}

	tagged := make(map[string]Verdict, len(doc.Hits))
	for _, h := range dropped {
		tagged[h.Accession] = Verdict{h.Quality, h.Reason}
	}

	for _, h := range kept {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		seq, err := c.resolver.Resolve(ctx, h.Accession)
		if errors.Is(err, ErrSequenceNotFound) {
			tagged[h.Accession] = Verdict{model.QualityRemove, "no sequence record"}
			log.Warn("no sequence record for homolog", zap.String("accession", h.Accession))
			continue
		}
		if err != nil {
			return nil, &SubmissionError{Accession: h.Accession, Err: fmt.Errorf("resolve sequence: %w", err)}
		}

		rec, err := c.searcher.Search(ctx, seq)
		if err != nil {
			return nil, &SubmissionError{Accession: h.Accession, Err: err}
		}

		v := Classify(doc.GeneID, rec)
		tagged[h.Accession] = v
		log.Debug("reciprocal verdict",
			zap.String("accession", h.Accession),
			zap.Stringer("quality", v.Quality),
			zap.String("reason", v.Reason))
	}

	for i := range out.Hits {
		h := &out.Hits[i]
		h.Species = SpeciesLabel(h.Definition)
		v, ok := tagged[h.Accession]
		if !ok {
			v = Verdict{model.QualityRemove, "not classified"}
		}
		h.Quality = v.Quality
		h.Reason = v.Reason
	}

	log.Info("reciprocal pass complete", zap.Int("hits", len(out.Hits)), zap.Int("surviving", len(out.Surviving())))
	return out, nil
}
