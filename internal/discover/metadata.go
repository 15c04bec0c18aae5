package discover

import (
	"bytes"
	"fmt"
	"os"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// Metadata is the optional YAML frontmatter of a SKILL.md.
type Metadata struct {
	Name        string
	Description string
}

// ReadMetadata parses the frontmatter of the skill's SKILL.md.
// A marker without frontmatter yields empty metadata.
func ReadMetadata(s Skill) (Metadata, error) {
	content, err := os.ReadFile(s.MarkerPath())
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read skill file: %w", err)
	}
	return parseMetadata(content)
}

func parseMetadata(content []byte) (Metadata, error) {
	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse markdown: %w", err)
	}

	data, err := meta.TryGet(pctx)
	if err != nil {
		return Metadata{}, fmt.Errorf("invalid frontmatter: %w", err)
	}

	var m Metadata
	m.Name, _ = data["name"].(string)
	m.Description, _ = data["description"].(string)
	return m, nil
}
