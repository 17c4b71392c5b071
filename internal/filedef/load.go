package filedef

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/gabriel-vasile/mimetype"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Format is a definition file encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// maxFileSize bounds definition files read from disk.
const maxFileSize = 8 << 20

// FormatOf infers the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported definition file extension %q (want .yaml, .yml, .toml or .json)", filepath.Ext(path))
	}
}

// ParseFormat accepts a format name as given on a command line.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want yaml, toml or json)", name)
	}
}

// Sniff guesses the format of unnamed input. JSON is recognised by content;
// everything else is read as YAML.
func Sniff(data []byte) Format {
	if mimetype.Detect(data).Is("application/json") {
		return FormatJSON
	}
	return FormatYAML
}

// Parse decodes a definition in the given format.
func Parse(data []byte, format Format) (*Definition, error) {
	var def Definition
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &def)
	case FormatTOML:
		err = toml.Unmarshal(data, &def)
	case FormatJSON:
		err = sonic.Unmarshal(data, &def)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s definition: %w", format, err)
	}
	return &def, nil
}

// ErrTooLarge is returned for definitions over the size limit
var ErrTooLarge = errors.New("definition is too large")

// Load reads a definition from r. An empty format is sniffed from the content.
func Load(r io.Reader, format Format) (*Definition, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("%w: over %d bytes", ErrTooLarge, maxFileSize)
	}
	if format == "" {
		format = Sniff(data)
	}
	return Parse(data, format)
}

// LoadFile reads and parses a definition file.
func LoadFile(path string) (*Definition, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load definition from %s: %w", path, err)
	}
	defer f.Close()

	def, err := Load(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Expand resolves a path that may carry doublestar glob syntax
// (defs/**/*.yaml). A plain path is returned as-is so a missing file still
// surfaces os.ErrNotExist from LoadFile.
func Expand(pattern string) ([]string, error) {
	if !strings.ContainsAny(pattern, "*?[{") {
		return []string{pattern}, nil
	}
	if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to expand %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no definition files match %q", pattern)
	}
	sort.Strings(matches)
	return matches, nil
}
