package services

import (
	"strings"

	types "github.com/specgraph/fgp-backend/internal/domain"
)

// RenderSectionsMarkdown flattens an ordered set of document sections into the
// context markdown served alongside a graph: document title first, then each
// heading at its own level followed by its content.
func RenderSectionsMarkdown(docName string, sections []*types.Section) string {
	var b strings.Builder

	b.WriteString("# ")
	b.WriteString(strings.TrimSpace(docName))
	b.WriteString("\n\n")

	for _, s := range sections {
		if s == nil {
			continue
		}
		level := s.Level
		if level < 1 {
			level = 1
		}
		b.WriteString(strings.Repeat("#", level))
		b.WriteString(" ")
		b.WriteString(s.Heading)
		b.WriteString("\n\n")
		if content := strings.TrimSpace(s.Content); content != "" {
			b.WriteString(content)
			b.WriteString("\n\n")
		}
	}

	return strings.TrimSpace(b.String())
}
