package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/coreg/internal/model"
)

// QueryRunner runs the full pipeline for one query
type QueryRunner interface {
	RunQuery(ctx context.Context, geneIDs []string) error
}

// QueryResult is the outcome of one batch entry
type QueryResult struct {
	GeneIDs  []string
	Duration time.Duration
	Error    error
}

// BatchProcessor runs queries one after another. Queries share the
// document store and the NCBI quota, so they are never run concurrently.
type BatchProcessor struct {
	runner QueryRunner
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(runner QueryRunner) *BatchProcessor {
	return &BatchProcessor{runner: runner}
}

// Process runs every query, continuing past failures. Queries not started
// before ctx is cancelled carry the context error.
func (b *BatchProcessor) Process(ctx context.Context, queries [][]string) []QueryResult {
	results := make([]QueryResult, 0, len(queries))
	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			results = append(results, QueryResult{GeneIDs: q, Error: err})
			continue
		}
		start := time.Now()
		err := b.runner.RunQuery(ctx, q)
		results = append(results, QueryResult{GeneIDs: q, Duration: time.Since(start), Error: err})
	}
	return results
}

// ProcessFile reads queries from a file and processes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]QueryResult, error) {
	queries, err := ReadQueriesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}
	return b.Process(ctx, queries), nil
}

// ReadQueriesFromFile reads one query per line. A line may name several
// genes separated by commas or whitespace. Blank lines, # comments and
// repeated queries are skipped.
func ReadQueriesFromFile(filePath string) ([][]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var queries [][]string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		ids, err := ParseQuery(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		key := model.QueryKey(ids)
		if !seen[key] {
			seen[key] = true
			queries = append(queries, ids)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return queries, nil
}

// ParseQuery splits and normalizes gene identifiers, dropping repeats
func ParseQuery(s string) ([]string, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty query")
	}

	var ids []string
	seen := make(map[string]bool)
	for _, f := range fields {
		id, err := model.NormalizeGeneID(f)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}
