package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SourceNote is one line of the data-source appendix.
type SourceNote struct {
	Tool   string
	Status string
	Detail string
}

// Writer persists final answers as markdown documents. It is a terminal
// sink: a write failure never fails the query that produced the answer.
type Writer struct {
	Dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir}
}

// Write renders the plan document and returns the path it was written to.
func (w *Writer) Write(query, answer string, sources []SourceNote) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	now := time.Now()
	name := fmt.Sprintf("trip-plan-%s.md", now.Format("20060102-150405"))
	path := filepath.Join(w.Dir, name)

	var sb strings.Builder
	sb.WriteString("# Trip Plan\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))
	sb.WriteString("## Query\n\n")
	sb.WriteString(strings.TrimSpace(query))
	sb.WriteString("\n\n## Plan\n\n")
	sb.WriteString(strings.TrimSpace(answer))
	sb.WriteString("\n")

	if len(sources) > 0 {
		sb.WriteString("\n## Data sources\n\n")
		for _, src := range sources {
			line := fmt.Sprintf("- %s: %s", src.Tool, src.Status)
			if src.Detail != "" {
				line += " (" + src.Detail + ")"
			}
			sb.WriteString(line + "\n")
		}
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("write plan file: %w", err)
	}
	return path, nil
}
