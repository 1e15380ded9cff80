package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"mediatidy/internal/batch"
	"mediatidy/internal/textutil"
)

// Format identifies a manifest encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Group is one subfolder and the names expected to end up in it.
type Group struct {
	Name    string
	Entries []string
}

// Manifest is an ordered list of groups.
type Manifest struct {
	Groups []Group
}

// EntryCount returns the number of expected names across all groups.
func (m Manifest) EntryCount() int {
	total := 0
	for _, g := range m.Groups {
		total += len(g.Entries)
	}
	return total
}

// FormatFromPath picks a format from the file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and parses the manifest at path.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, batch.Wrap(batch.Classify(err), "manifest", "read "+path, err)
	}
	m, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes data in the given format.
func Parse(data []byte, format Format) (Manifest, error) {
	var (
		m   Manifest
		err error
	)
	switch format {
	case FormatYAML:
		m, err = parseYAML(data)
	case FormatJSON, "":
		m, err = parseJSON(data)
	default:
		return Manifest{}, batch.Wrap(batch.ErrValidation, "manifest", fmt.Sprintf("unsupported format %q", format), nil)
	}
	if err != nil {
		return Manifest{}, err
	}
	if err := m.validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

func (m Manifest) validate() error {
	seen := make(map[string]struct{}, len(m.Groups))
	for _, g := range m.Groups {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			return invalid("group name is empty")
		}
		if _, ok := seen[name]; ok {
			return invalid(fmt.Sprintf("duplicate group %q", name))
		}
		switch textutil.SanitizeFileName(name) {
		case "", ".", "..":
			return invalid(fmt.Sprintf("group %q does not name a subfolder", name))
		}
		seen[name] = struct{}{}
		for i, entry := range g.Entries {
			if strings.TrimSpace(entry) == "" {
				return invalid(fmt.Sprintf("group %q entry %d is empty", name, i+1))
			}
		}
	}
	return nil
}

func invalid(message string) error {
	return batch.Wrap(batch.ErrValidation, "manifest", message, nil)
}

func parseJSON(data []byte) (Manifest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return Manifest{}, err
	}
	var m Manifest
	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return Manifest{}, err
		}
		entries, err := readEntries(dec, name)
		if err != nil {
			return Manifest{}, err
		}
		m.Groups = append(m.Groups, Group{Name: name, Entries: entries})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return Manifest{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Manifest{}, invalid("unexpected data after top-level object")
	}
	return m, nil
}

func readEntries(dec *json.Decoder, group string) ([]string, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, invalid(fmt.Sprintf("group %q: %v", group, err))
	}
	delim, ok := tok.(json.Delim)
	if !ok || (delim != '{' && delim != '[') {
		return nil, invalid(fmt.Sprintf("group %q must be an object or array of names", group))
	}
	var entries []string
	for dec.More() {
		if delim == '{' {
			if _, err := readKey(dec); err != nil {
				return nil, err
			}
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return nil, invalid(fmt.Sprintf("group %q: entries must be strings", group))
		}
		entries = append(entries, value)
	}
	closing := json.Delim('}')
	if delim == '[' {
		closing = ']'
	}
	if err := expectDelim(dec, closing); err != nil {
		return nil, err
	}
	return entries, nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", invalid(err.Error())
	}
	key, ok := tok.(string)
	if !ok {
		return "", invalid(fmt.Sprintf("expected object key, got %v", tok))
	}
	return key, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return invalid(err.Error())
	}
	if got, ok := tok.(json.Delim); !ok || got != want {
		return invalid(fmt.Sprintf("expected %q, got %v", want, tok))
	}
	return nil
}

func parseYAML(data []byte) (Manifest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Manifest{}, invalid(err.Error())
	}
	if doc.Kind == 0 {
		return Manifest{}, nil
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return Manifest{}, invalid("top level must be a mapping of folder names")
	}
	var m Manifest
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		value := root.Content[i+1]
		group := Group{Name: name}
		switch value.Kind {
		case yaml.MappingNode:
			for j := 1; j < len(value.Content); j += 2 {
				entry, err := scalarString(value.Content[j], name)
				if err != nil {
					return Manifest{}, err
				}
				group.Entries = append(group.Entries, entry)
			}
		case yaml.SequenceNode:
			for _, item := range value.Content {
				entry, err := scalarString(item, name)
				if err != nil {
					return Manifest{}, err
				}
				group.Entries = append(group.Entries, entry)
			}
		default:
			return Manifest{}, invalid(fmt.Sprintf("group %q must be a mapping or list of names", name))
		}
		m.Groups = append(m.Groups, group)
	}
	return m, nil
}

func scalarString(node *yaml.Node, group string) (string, error) {
	if node.Kind != yaml.ScalarNode {
		return "", invalid(fmt.Sprintf("group %q: entries must be strings", group))
	}
	return node.Value, nil
}
