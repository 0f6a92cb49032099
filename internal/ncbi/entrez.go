package ncbi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/biogo/ncbi/entrez"
	"github.com/ppiankov/coreg/internal/cache"
	"github.com/ppiankov/coreg/internal/homology"
	"go.uber.org/zap"
)

const proteinDB = "protein"

// ErrNoRecord is returned when Entrez has no record for an accession. It
// matches homology.ErrSequenceNotFound so the classifier drops the hit.
var ErrNoRecord = fmt.Errorf("no entrez record: %w", homology.ErrSequenceNotFound)

// retrySleep waits between Entrez attempts; tests replace it
var retrySleep = pollSleep

// EntrezResolver fetches protein sequences by accession.version, caching
// them across runs.
type EntrezResolver struct {
	lookup   func(accession string) (io.ReadCloser, error)
	cache    cache.Cache
	attempts int
	logger   *zap.Logger
}

// NewEntrezResolver creates a resolver identifying itself to NCBI with
// tool and email. c may be nil.
func NewEntrezResolver(tool, email string, c cache.Cache, logger *zap.Logger) *EntrezResolver {
	lookup := func(accession string) (io.ReadCloser, error) {
		h := entrez.History{}
		s, err := entrez.DoSearch(proteinDB, accession, nil, &h, tool, email)
		if err != nil {
			return nil, fmt.Errorf("esearch: %w", err)
		}
		if s.Count == 0 {
			return nil, ErrNoRecord
		}
		p := &entrez.Parameters{RetMax: 1, RetType: "fasta", RetMode: "text"}
		return entrez.Fetch(proteinDB, p, tool, email, &h)
	}
	return newEntrezResolver(lookup, c, logger)
}

func newEntrezResolver(lookup func(string) (io.ReadCloser, error), c cache.Cache, logger *zap.Logger) *EntrezResolver {
	if c == nil {
		c = cache.NopCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntrezResolver{lookup: lookup, cache: c, attempts: 3, logger: logger}
}

// Resolve returns the protein sequence for accession
func (r *EntrezResolver) Resolve(ctx context.Context, accession string) (string, error) {
	key := cache.SequenceKey(proteinDB, accession)
	if b, ok := r.cache.Get(key); ok {
		return string(b), nil
	}

	var (
		seq string
		err error
	)
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(1<<(attempt-2)) * time.Second
			if sleepErr := retrySleep(ctx, backoff); sleepErr != nil {
				return "", sleepErr
			}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		seq, err = r.fetchOnce(accession)
		if err == nil || errors.Is(err, ErrNoRecord) {
			break
		}
		r.logger.Debug("entrez fetch failed, retrying",
			zap.String("accession", accession),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", accession, err)
	}

	if cerr := r.cache.Set(key, []byte(seq), 0); cerr != nil {
		r.logger.Warn("cache write failed", zap.String("accession", accession), zap.Error(cerr))
	}
	return seq, nil
}

func (r *EntrezResolver) fetchOnce(accession string) (string, error) {
	rc, err := r.lookup(accession)
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()

	seqs, err := ParseFASTA(rc)
	if err != nil {
		return "", err
	}
	if len(seqs) == 0 || seqs[0] == "" {
		return "", ErrNoRecord
	}
	return seqs[0], nil
}

// ParseFASTA reads protein records and returns their residues in order
func ParseFASTA(r io.Reader) ([]string, error) {
	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.Protein)))
	var out []string
	for sc.Next() {
		s, ok := sc.Seq().(*linear.Seq)
		if !ok {
			return nil, fmt.Errorf("unexpected sequence type %T", sc.Seq())
		}
		var b strings.Builder
		b.Grow(len(s.Seq))
		for _, l := range s.Seq {
			b.WriteByte(byte(l))
		}
		out = append(out, b.String())
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("parse fasta: %w", err)
	}
	return out, nil
}
