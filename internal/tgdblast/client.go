// Package tgdblast submits reciprocal protein searches to the ciliate.org
// BLAST service and parses its ranked hit listing.
package tgdblast

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/ppiankov/coreg/internal/fetch"
	"github.com/ppiankov/coreg/internal/model"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// ErrNoHits is returned by Parse when the service found nothing
var ErrNoHits = errors.New("no hits found")

const (
	noHitsMarker = "***** No hits found ******"
	// header lines above the ranked table in the summary block
	tableHeaderLines = 5
)

var columnSeparator = regexp.MustCompile(`\s\s+`)

// Poster submits a form. *fetch.Fetcher satisfies it.
type Poster interface {
	PostForm(ctx context.Context, rawURL string, form url.Values) (*fetch.Result, error)
}

// Client queries the Tetrahymena protein database
type Client struct {
	poster   Poster
	endpoint string
	database string
	logger   *zap.Logger
}

// NewClient creates a client posting to endpoint against database
// (for example "tetrahymena/ttherm.aa")
func NewClient(poster Poster, endpoint, database string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{poster: poster, endpoint: endpoint, database: database, logger: logger}
}

// Search submits a protein sequence. A search without hits is a record
// with NoHits set, not an error.
func (c *Client) Search(ctx context.Context, sequence string) (model.ReciprocalRecord, error) {
	form := url.Values{
		"FILTER":   {"L"},
		"PROGRAM":  {"blastp"},
		"DATALIB":  {c.database},
		"SEQUENCE": {sequence},
	}
	res, err := c.poster.PostForm(ctx, c.endpoint, form)
	if err != nil {
		return model.ReciprocalRecord{}, fmt.Errorf("reciprocal search: %w", err)
	}

	rec, err := Parse(res.Body)
	if errors.Is(err, ErrNoHits) {
		c.logger.Debug("reciprocal search returned no hits")
		return model.ReciprocalRecord{NoHits: true}, nil
	}
	if err != nil {
		return model.ReciprocalRecord{}, fmt.Errorf("reciprocal search: %w", err)
	}
	c.logger.Debug("reciprocal search parsed",
		zap.String("top_hit", rec.TopHit),
		zap.Int("ranked", len(rec.Ranked)))
	return rec, nil
}

// Parse reads a result page. The second <pre> block reports whether
// anything matched; the third holds the ranked summary whose first link is
// the top hit and whose rows are "ID  group  score  e-value".
func Parse(body []byte) (model.ReciprocalRecord, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return model.ReciprocalRecord{}, fmt.Errorf("parse result page: %w", err)
	}

	pres := preBlocks(doc)
	if len(pres) < 2 {
		return model.ReciprocalRecord{}, fmt.Errorf("unexpected result page: %d <pre> blocks", len(pres))
	}
	if strings.Contains(textOf(pres[1]), noHitsMarker) {
		return model.ReciprocalRecord{}, ErrNoHits
	}
	if len(pres) < 3 {
		return model.ReciprocalRecord{}, fmt.Errorf("unexpected result page: missing summary block")
	}

	summary := pres[2]
	top := firstAnchor(summary)
	if top == nil {
		return model.ReciprocalRecord{}, fmt.Errorf("unexpected result page: summary has no hits")
	}

	rec := model.ReciprocalRecord{
		TopHit: strings.TrimSpace(textOf(top)),
		Ranked: make(map[string]model.RankedEntry),
	}

	lines := strings.Split(textOf(summary), "\n")
	if len(lines) <= tableHeaderLines+1 {
		return rec, nil
	}
	for _, line := range lines[tableHeaderLines : len(lines)-1] {
		items := columnSeparator.Split(strings.TrimSpace(line), -1)
		if len(items) < 4 {
			continue
		}
		rec.Ranked[items[0]] = model.RankedEntry{Group: items[1], EValue: items[3]}
	}
	return rec, nil
}

func preBlocks(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "pre" {
			out = append(out, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func firstAnchor(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "a" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if a := firstAnchor(c); a != nil {
			return a
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		buf.WriteString(textOf(c))
	}
	return buf.String()
}
