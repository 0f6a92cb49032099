// Package llm writes optional free-text notes about a gene's homologs.
// Notes are advisory and never change report columns.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Annotate writes a short note about one gene from its homolog definitions
	Annotate(ctx context.Context, req AnnotateRequest) (*AnnotateResponse, error)
}

// AnnotateRequest contains the input for one gene note
type AnnotateRequest struct {
	GeneID      string
	Mode        string
	Description string // current database description, may be empty

	// Definitions are the cleaned homolog definitions of the gene
	Definitions []string

	// Accessions is the STRICT allowlist of accessions the note may cite
	Accessions []string

	Model     string
	MaxTokens int
}

// AnnotateResponse contains the generated note
type AnnotateResponse struct {
	Note            string
	CitedAccessions []string
	Model           string
	TokensUsed      int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	Model   string
	APIKey  string
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Timeout:   30,
		MaxTokens: 300,
	}
}

const maxPromptDefinitions = 25

// BuildPrompt constructs the annotation prompt
func BuildPrompt(req AnnotateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are annotating the Tetrahymena thermophila gene %s from %s homology search results.

RULES:
1. Only cite accessions from this list:
%s
2. Do not speculate beyond the definitions given.
3. If the definitions disagree or are uninformative, say so.

`, req.GeneID, req.Mode, joinList(req.Accessions))

	if req.Description != "" {
		fmt.Fprintf(&b, "Current description: %s\n\n", req.Description)
	}

	b.WriteString("Homolog definitions:\n")
	for i, d := range req.Definitions {
		if i >= maxPromptDefinitions {
			fmt.Fprintf(&b, "... and %d more\n", len(req.Definitions)-maxPromptDefinitions)
			break
		}
		fmt.Fprintf(&b, "- %s\n", d)
	}

	b.WriteString("\nWrite 2-3 sentences on the likely function of this gene.")
	return b.String()
}

func joinList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for i, it := range items {
		if i >= maxPromptDefinitions {
			fmt.Fprintf(&b, "\n... and %d more", len(items)-maxPromptDefinitions)
			break
		}
		fmt.Fprintf(&b, "\n- %s", it)
	}
	return b.String()
}
