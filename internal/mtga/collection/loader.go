package collection

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for files whose extension has no decoder.
var ErrUnknownFormat = errors.New("unknown collection file format")

// Format identifies a collection file encoding.
type Format string

// Supported collection file formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatText Format = "text"
)

// DetectFormat picks a format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".txt", ".dek", ".deck":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// LoadOptions configures Load.
type LoadOptions struct {
	// Catalog resolves card names for text imports.
	Catalog *Catalog
	// Name is used for formats that carry no collection name.
	Name string
}

// Load reads a collection file.
//
// JSON files hold either a collection document or a Scryfall card array (one
// copy of each card). YAML files hold a collection document. Text files are
// deck lists resolved through opts.Catalog.
func Load(path string, opts LoadOptions) (*Collection, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection: %w", err)
	}

	name := opts.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	c, err := decode(data, format, name, opts.Catalog, PathID(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load collection %s: %w", path, err)
	}
	return c, nil
}

// PathID derives a stable collection ID from a file path, so collections
// whose file carries no ID keep their stored edits across runs.
func PathID(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(path))).String()
}

// Decode parses collection data in the given format.
func Decode(data []byte, format Format, name string, catalog *Catalog) (*Collection, error) {
	return decode(data, format, name, catalog, "")
}

// decode parses data; id, when set, replaces a missing or generated ID.
func decode(data []byte, format Format, name string, catalog *Catalog, id string) (*Collection, error) {
	switch format {
	case FormatJSON:
		if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
			cs, err := decodeScryfallList(trimmed)
			if err != nil {
				return nil, fmt.Errorf("failed to parse card list: %w", err)
			}
			c := New(name, "")
			if id != "" {
				c.ID = id
			}
			for _, card := range cs {
				c.Add(card, 1, "")
			}
			return c, nil
		}
		var c Collection
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to parse collection JSON: %w", err)
		}
		if c.ID == "" {
			c.ID = id
		}
		c.normalize()
		return &c, nil

	case FormatYAML:
		var c Collection
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to parse collection YAML: %w", err)
		}
		if c.ID == "" {
			c.ID = id
		}
		c.normalize()
		return &c, nil

	case FormatText:
		result, err := ParseText(string(data), catalog, name)
		if err != nil {
			return nil, err
		}
		if id != "" {
			result.Collection.ID = id
		}
		return result.Collection, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
}

// Save writes a collection as JSON or YAML, chosen by extension.
func Save(path string, c *Collection) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(c, "", "  ")
	case FormatYAML:
		data, err = yaml.Marshal(c)
	case FormatText:
		data = []byte(ExportText(c))
	}
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create collection directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write collection: %w", err)
	}
	return nil
}
