package ncbi

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/biogo/ncbi/blast"
	"github.com/ppiankov/coreg/internal/cache"
	"github.com/ppiankov/coreg/internal/homology"
	"github.com/ppiankov/coreg/internal/model"
	"github.com/ppiankov/coreg/internal/worker"
)

type fakeJob struct {
	statuses []string
	out      *blast.Output
	polls    int
}

func (j *fakeJob) id() string { return "RID123" }

func (j *fakeJob) status() (string, error) {
	s := j.statuses[j.polls]
	if j.polls < len(j.statuses)-1 {
		j.polls++
	}
	return s, nil
}

func (j *fakeJob) output() (*blast.Output, error) { return j.out, nil }

type fakeRemote struct {
	job    *fakeJob
	query  string
	params *blast.PutParameters
}

func (r *fakeRemote) submit(query string, p *blast.PutParameters) (job, error) {
	r.query, r.params = query, p
	return r.job, nil
}

func noPollSleep(t *testing.T) *int {
	t.Helper()
	var n int
	orig := pollSleep
	pollSleep = func(ctx context.Context, d time.Duration) error {
		n++
		return ctx.Err()
	}
	t.Cleanup(func() { pollSleep = orig })
	return &n
}

var testGene = model.GeneQuery{ID: "TTHERM_00321680", CDNA: "ATGAAA", Protein: "MK"}

func strPtr(s string) *string { return &s }

func TestBlastSearch(t *testing.T) {
	sleeps := noPollSleep(t)
	r := &fakeRemote{job: &fakeJob{
		statuses: []string{"WAITING", "WAITING", "READY"},
		out: &blast.Output{Iterations: []blast.Iteration{{
			Hits: []blast.Hit{
				{Accession: "XP_001.1", Def: "kinesin-like protein [Homo sapiens]"},
				{Accession: "XP_002.1", Def: "kinesin [[Candida] auris]"},
			},
		}}},
	}}
	c := newBlastClient(r, model.NCBIConfig{Database: "nr", PollInterval: time.Second, MaxPolls: 5}, 6, nil, nil)

	doc, err := c.Search(context.Background(), testGene, model.ModeBlastX, model.CladeNotCiliates)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if r.query != "ATGAAA" || r.params.Program != "blastx" || len(r.params.GeneticCode) != 1 || r.params.GeneticCode[0] != 6 {
		t.Errorf("submitted %q with %+v", r.query, r.params)
	}
	if r.params.EntrezQuery != "NOT Ciliata" || r.params.Database != "nr" {
		t.Errorf("entrez/db = %q / %q", r.params.EntrezQuery, r.params.Database)
	}
	if *sleeps != 3 {
		t.Errorf("polled %d times, want 3", *sleeps)
	}
	if doc.GeneID != testGene.ID || doc.Clade != "NOTciliates" || doc.Mode != model.ModeBlastX {
		t.Errorf("doc header = %+v", doc)
	}
	if len(doc.Hits) != 2 || doc.Hits[0].Species != "[Homo sapiens]" || doc.Hits[1].Accession != "XP_002.1" {
		t.Errorf("hits = %+v", doc.Hits)
	}
	if doc.DBError {
		t.Error("DBError set on a document with hits")
	}
}

func TestBlastSearchProteinModeSkipsGeneticCode(t *testing.T) {
	noPollSleep(t)
	r := &fakeRemote{job: &fakeJob{statuses: []string{"READY"}, out: &blast.Output{}}}
	c := newBlastClient(r, model.NCBIConfig{}, 6, nil, nil)

	if _, err := c.Search(context.Background(), testGene, model.ModeBlastP, model.CladeAll); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if r.query != "MK" || len(r.params.GeneticCode) != 0 || r.params.EntrezQuery != "" {
		t.Errorf("submitted %q with %+v", r.query, r.params)
	}
}

func TestBlastSearchDBError(t *testing.T) {
	noPollSleep(t)
	r := &fakeRemote{job: &fakeJob{
		statuses: []string{"READY"},
		out: &blast.Output{Iterations: []blast.Iteration{{
			Message: strPtr("Search failed: CPU usage limit was exceeded"),
		}}},
	}}
	doc, err := newBlastClient(r, model.NCBIConfig{}, 6, nil, nil).
		Search(context.Background(), testGene, model.ModeBlastP, model.CladeAll)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if !doc.DBError || len(doc.Hits) != 0 {
		t.Errorf("expected DBError document, got %+v", doc)
	}
}

func TestBlastSearchFailures(t *testing.T) {
	noPollSleep(t)
	tests := []struct {
		name     string
		statuses []string
		maxPolls int
	}{
		{"failed", []string{"WAITING", "FAILED"}, 5},
		{"expired", []string{"UNKNOWN"}, 5},
		{"never ready", []string{"WAITING"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRemote{job: &fakeJob{statuses: tt.statuses}}
			c := newBlastClient(r, model.NCBIConfig{MaxPolls: tt.maxPolls}, 6, nil, nil)
			_, err := c.Search(context.Background(), testGene, model.ModeBlastP, model.CladeAll)
			if !errors.Is(err, ErrSearchFailed) {
				t.Errorf("expected ErrSearchFailed, got %v", err)
			}
		})
	}
}

func TestBlastSearchMissingSequence(t *testing.T) {
	c := newBlastClient(&fakeRemote{}, model.NCBIConfig{}, 6, nil, nil)
	if _, err := c.Search(context.Background(), model.GeneQuery{ID: "TTHERM_00000001"}, model.ModeBlastP, model.CladeAll); err == nil {
		t.Error("expected error for gene without protein sequence")
	}
}

func TestBlastSearchUsesThrottle(t *testing.T) {
	noPollSleep(t)
	th := worker.NewThrottle(25, time.Minute)
	r := &fakeRemote{job: &fakeJob{statuses: []string{"READY"}, out: &blast.Output{}}}
	c := newBlastClient(r, model.NCBIConfig{}, 6, th, nil)

	for i := 0; i < 3; i++ {
		if _, err := c.Search(context.Background(), testGene, model.ModeBlastP, model.CladeAll); err != nil {
			t.Fatalf("Search() error = %v", err)
		}
	}
	if th.Count() != 3 {
		t.Errorf("throttle counted %d submissions", th.Count())
	}
}

const fastaRecord = `>XP_001.1 kinesin-like protein [Homo sapiens]
MKLVAAGT
QRS
`

func TestParseFASTA(t *testing.T) {
	seqs, err := ParseFASTA(strings.NewReader(fastaRecord + ">XP_002.1 other\nMW\n"))
	if err != nil {
		t.Fatalf("ParseFASTA() error = %v", err)
	}
	if len(seqs) != 2 || seqs[0] != "MKLVAAGTQRS" || seqs[1] != "MW" {
		t.Errorf("ParseFASTA() = %v", seqs)
	}
}

func TestEntrezResolverCaches(t *testing.T) {
	calls := 0
	lookup := func(acc string) (io.ReadCloser, error) {
		calls++
		return io.NopCloser(strings.NewReader(fastaRecord)), nil
	}
	c := cache.NewMemoryCache(time.Hour, time.Hour)
	r := newEntrezResolver(lookup, c, nil)

	for i := 0; i < 2; i++ {
		seq, err := r.Resolve(context.Background(), "XP_001.1")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if seq != "MKLVAAGTQRS" {
			t.Errorf("Resolve() = %q", seq)
		}
	}
	if calls != 1 {
		t.Errorf("lookup called %d times, want 1", calls)
	}
}

func TestEntrezResolverRetries(t *testing.T) {
	var backoffs []time.Duration
	orig := retrySleep
	retrySleep = func(ctx context.Context, d time.Duration) error {
		backoffs = append(backoffs, d)
		return nil
	}
	defer func() { retrySleep = orig }()

	calls := 0
	lookup := func(acc string) (io.ReadCloser, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("connection reset")
		}
		return io.NopCloser(strings.NewReader(fastaRecord)), nil
	}
	if _, err := newEntrezResolver(lookup, nil, nil).Resolve(context.Background(), "XP_001.1"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("lookup called %d times", calls)
	}
	if len(backoffs) != 2 || backoffs[0] != time.Second || backoffs[1] != 2*time.Second {
		t.Errorf("backoffs = %v, want [1s 2s]", backoffs)
	}
}

func TestEntrezResolverRetryCancelled(t *testing.T) {
	orig := retrySleep
	retrySleep = func(ctx context.Context, d time.Duration) error { return context.Canceled }
	defer func() { retrySleep = orig }()

	calls := 0
	lookup := func(acc string) (io.ReadCloser, error) {
		calls++
		return nil, errors.New("connection reset")
	}
	_, err := newEntrezResolver(lookup, nil, nil).Resolve(context.Background(), "XP_001.1")
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Errorf("err = %v after %d calls", err, calls)
	}
}

func TestEntrezResolverNoRecord(t *testing.T) {
	calls := 0
	lookup := func(acc string) (io.ReadCloser, error) {
		calls++
		return nil, ErrNoRecord
	}
	_, err := newEntrezResolver(lookup, nil, nil).Resolve(context.Background(), "XP_404.1")
	if !errors.Is(err, ErrNoRecord) || calls != 1 {
		t.Errorf("err = %v after %d calls", err, calls)
	}
	if !errors.Is(err, homology.ErrSequenceNotFound) {
		t.Errorf("missing record should read as homology.ErrSequenceNotFound: %v", err)
	}
}
