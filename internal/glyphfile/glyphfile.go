// Package glyphfile reads and writes glyph lists as JSON or YAML documents.
//
// A document holds explicit glyphs, synthetic text lines, or both:
//
//	glyphs:
//	  - rect: {left: 20, top: 20, width: 30, height: 40}
//	    value: "1"
//	lines:
//	  - {text: "Beware", x: 20, y: 80}
//
// Lines are expanded with sample.Row and appended after the explicit glyphs.
package glyphfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/landa/character-clusterer/internal/cluster"
	"github.com/landa/character-clusterer/internal/sample"
)

// Format is the encoding of a glyph document.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// Document is the on-disk representation of a glyph list.
type Document struct {
	Glyphs []cluster.Glyph `json:"glyphs,omitempty" yaml:"glyphs,omitempty"`
	Lines  []sample.Line   `json:"lines,omitempty" yaml:"lines,omitempty"`
}

// Expand returns the explicit glyphs followed by the glyphs of every line.
func (d *Document) Expand() []cluster.Glyph {
	glyphs := make([]cluster.Glyph, 0, len(d.Glyphs))
	glyphs = append(glyphs, d.Glyphs...)
	return append(glyphs, sample.Page(d.Lines)...)
}

// FormatOf picks the format from a file extension. Unknown extensions are JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

// Load reads a glyph document from path and expands it.
func Load(path string) ([]cluster.Glyph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read glyph file: %w", err)
	}
	doc, err := Decode(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return doc.Expand(), nil
}

// Decode parses a document. A bare JSON or YAML list is accepted as a list of glyphs.
func Decode(data []byte, format Format) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	doc := &Document{}
	if len(trimmed) == 0 {
		return doc, nil
	}

	switch format {
	case YAML:
		var node yaml.Node
		if err := yaml.Unmarshal(trimmed, &node); err != nil {
			return nil, err
		}
		if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
			return doc, node.Content[0].Decode(&doc.Glyphs)
		}
		return doc, node.Decode(doc)
	case JSON:
		if trimmed[0] == '[' {
			return doc, json.Unmarshal(trimmed, &doc.Glyphs)
		}
		return doc, json.Unmarshal(trimmed, doc)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Encode serializes glyphs as a document in the given format.
func Encode(glyphs []cluster.Glyph, format Format) ([]byte, error) {
	doc := Document{Glyphs: glyphs}
	switch format {
	case YAML:
		return yaml.Marshal(doc)
	case JSON:
		return json.MarshalIndent(doc, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Save writes glyphs to path, choosing the format from the extension.
func Save(path string, glyphs []cluster.Glyph) error {
	data, err := Encode(glyphs, FormatOf(path))
	if err != nil {
		return fmt.Errorf("failed to encode glyphs: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write glyph file: %w", err)
	}
	return nil
}
