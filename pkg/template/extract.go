package template

import (
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fallback values for fields missing from a rule file.
const (
	DefaultSeverity    = "Unknown"
	DefaultDescription = "No description available."
	DefaultCategory    = "Uncategorized"
)

// Metadata is the fixed set of fields read from a rule file.
type Metadata struct {
	// ID is the embedded id, or the file base name without extension.
	ID string

	// Name is info.name, empty when absent.
	Name string

	// Severity is info.severity or DefaultSeverity.
	Severity string

	// Description is info.description or DefaultDescription.
	Description string

	// Authors lists info.author entries.
	Authors []string

	// Tags lists info.tags entries.
	Tags []string
}

// Extract decodes a rule file. The path is used for the identifier fallback
// and for error reporting.
func Extract(filePath string, content []byte) (*Metadata, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, &ParseError{
			Path:    filePath,
			Line:    errorLine(err),
			Message: "invalid YAML",
			Cause:   err,
		}
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &ParseError{Path: filePath, Message: "empty document"}
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &ParseError{
			Path:    filePath,
			Line:    root.Line,
			Message: "top level is not a mapping",
		}
	}

	info := mappingValue(root, "info")

	meta := &Metadata{
		ID:          scalarValue(mappingValue(root, "id")),
		Name:        scalarValue(mappingValue(info, "name")),
		Severity:    scalarValue(mappingValue(info, "severity")),
		Description: strings.TrimSpace(scalarValue(mappingValue(info, "description"))),
		Authors:     listValue(mappingValue(info, "author")),
		Tags:        listValue(mappingValue(info, "tags")),
	}

	if meta.ID == "" {
		meta.ID = IdentifierFromPath(filePath)
	}
	if meta.Severity == "" {
		meta.Severity = DefaultSeverity
	}
	if meta.Description == "" {
		meta.Description = DefaultDescription
	}

	return meta, nil
}

// IdentifierFromPath returns the base name of a slash-separated path with
// everything from the first dot removed.
func IdentifierFromPath(filePath string) string {
	base := path.Base(filePath)
	if i := strings.Index(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}

// mappingValue returns the value node for key, or nil when node is not a
// mapping or has no such key.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// scalarValue returns the trimmed value of a scalar node, empty otherwise.
func scalarValue(node *yaml.Node) string {
	if node == nil {
		return ""
	}
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node == nil || node.Kind != yaml.ScalarNode || node.Tag == "!!null" {
		return ""
	}
	return strings.TrimSpace(node.Value)
}

// listValue accepts either a comma-separated scalar or a sequence of scalars.
func listValue(node *yaml.Node) []string {
	if node == nil {
		return nil
	}

	var raw []string
	switch node.Kind {
	case yaml.ScalarNode:
		raw = strings.Split(scalarValue(node), ",")
	case yaml.SequenceNode:
		for _, item := range node.Content {
			raw = append(raw, scalarValue(item))
		}
	}

	var out []string
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
