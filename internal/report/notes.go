package report

import (
	"fmt"
	"os"
	"strings"
)

// Note is a free-text annotation for one gene. Notes never feed back into
// the CSV.
type Note struct {
	GeneID string
	Mode   string
	Model  string
	Text   string
}

// NotesFileName derives the notes file from a CSV path
func NotesFileName(csvPath string) string {
	return strings.TrimSuffix(csvPath, ".csv") + ".notes.md"
}

// RenderNotes formats notes as markdown
func RenderNotes(title string, notes []Note) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	b.WriteString("_Generated annotations. These are not part of the report columns._\n\n")
	for _, n := range notes {
		fmt.Fprintf(&b, "## %s (%s)\n\n%s\n\n", n.GeneID, n.Mode, strings.TrimSpace(n.Text))
		if n.Model != "" {
			fmt.Fprintf(&b, "_model: %s_\n\n", n.Model)
		}
	}
	return b.String()
}

// WriteNotes writes rendered notes next to each report path
func WriteNotes(csvPaths []string, title string, notes []Note) error {
	content := RenderNotes(title, notes)
	for _, p := range csvPaths {
		if err := os.WriteFile(NotesFileName(p), []byte(content), 0o644); err != nil {
			return fmt.Errorf("write notes: %w", err)
		}
	}
	return nil
}
