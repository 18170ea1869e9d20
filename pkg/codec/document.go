// Package codec converts a graph store to and from its YAML document form.
package codec

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Document is the persisted shape of a graph.
type Document struct {
	Nodes       []NodeEntry       `yaml:"nodes"`
	Connections []ConnectionEntry `yaml:"connections"`
	GUI         []GUIEntry        `yaml:"gui,omitempty"`
}

// NodeEntry is one node: its id, its catalog type and its attributes
// flattened next to them.
type NodeEntry struct {
	ID         int64          `yaml:"id"`
	Type       string         `yaml:"type"`
	Attributes map[string]any `yaml:",inline"`
}

// Endpoint names one side of a connection.
type Endpoint struct {
	Node   int64 `yaml:"node"`
	Output int   `yaml:"output,omitempty"`
	Input  int   `yaml:"input,omitempty"`
}

// ConnectionEntry is one wire.
type ConnectionEntry struct {
	From Endpoint `yaml:"from"`
	To   Endpoint `yaml:"to"`
}

// GUIEntry is the layout record of a node.
type GUIEntry struct {
	ID    int64   `yaml:"id"`
	Label string  `yaml:"label"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
}

// Encode writes doc as YAML.
func Encode(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return enc.Close()
}

// Decode reads a YAML document. An empty input is an empty document.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Document{}, nil
		}
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}
