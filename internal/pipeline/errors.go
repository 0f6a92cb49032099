package pipeline

import (
	"fmt"
	"strings"

	"github.com/ppiankov/coreg/internal/model"
)

// Stages a gene can fail in
const (
	StageSearch     = "forward search"
	StageReciprocal = "reciprocal"
)

// GeneFailure records one gene that could not be analysed in one mode
type GeneFailure struct {
	GeneID string
	Mode   model.SearchMode
	Stage  string
	Err    error
}

func (f *GeneFailure) Error() string {
	return fmt.Sprintf("%s (%s) %s: %v", f.GeneID, f.Mode, f.Stage, f.Err)
}

func (f *GeneFailure) Unwrap() error {
	return f.Err
}

// RunError is returned when a run completed with failed genes. Re-running
// with fill-missing retries only those.
type RunError struct {
	Failures []GeneFailure
}

func (e *RunError) Error() string {
	parts := make([]string, len(e.Failures))
	for i := range e.Failures {
		parts[i] = e.Failures[i].Error()
	}
	return fmt.Sprintf("%d gene searches failed: %s", len(e.Failures), strings.Join(parts, "; "))
}

func (e *RunError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i := range e.Failures {
		errs[i] = &e.Failures[i]
	}
	return errs
}
