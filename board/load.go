package board

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// regionKeys records which policy keys a board file sets per region. The
// zero Attribute is a valid policy, so a missing key can't be told apart
// after decoding into Board.
type regionKeys struct {
	Extra []struct {
		Name string      `toml:"name" yaml:"name"`
		Attr interface{} `toml:"attr" yaml:"attr"`
		Raw  interface{} `toml:"raw" yaml:"raw"`
	} `toml:"region" yaml:"regions"`
}

// Load reads a board description from a .toml, .yaml or .yml file and
// validates it. Unknown keys and regions without attr or raw are
// rejected.
func Load(path string) (*Board, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml", ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("%w: %s: unsupported board file type", ErrInvalidBoard, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var (
		b    Board
		keys regionKeys
	)
	if ext == ".toml" {
		md, err := toml.Decode(string(data), &b)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: %s: unknown keys %v", ErrInvalidBoard, path, undecoded)
		}
		if _, err := toml.Decode(string(data), &keys); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&b); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &keys); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
	}

	for i, r := range keys.Extra {
		if r.Attr == nil && r.Raw == nil {
			return nil, fmt.Errorf("%w: %s: region %d (%s) sets neither attr nor raw",
				ErrInvalidBoard, path, i, r.Name)
		}
	}
	if b.Cores == 0 {
		b.Cores = 1
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	b.Variant, _ = VariantName(b.Variant)
	return &b, nil
}

// Lookup resolves a preset name or a board file path
func Lookup(nameOrPath string) (*Board, error) {
	if p, ok := Presets[nameOrPath]; ok {
		return p(), nil
	}
	return Load(nameOrPath)
}
