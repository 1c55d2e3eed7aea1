package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
)

// Schemas is the column layout of the ticket and indicator workbooks.
type Schemas struct {
	Tickets    domain.TicketSchema    `yaml:"tickets" toml:"tickets"`
	Indicators domain.IndicatorSchema `yaml:"indicators" toml:"indicators"`
}

// DefaultSchemas returns the built-in Portuguese layouts.
func DefaultSchemas() Schemas {
	return Schemas{
		Tickets:    domain.DefaultTicketSchema(),
		Indicators: domain.DefaultIndicatorSchema(),
	}
}

// LoadSchemas reads a schema file over the defaults. An empty path or a
// missing file yields the defaults. The format follows the extension:
// .yaml/.yml or .toml.
func LoadSchemas(path string) (Schemas, error) {
	schemas := DefaultSchemas()
	if path == "" {
		return schemas, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return schemas, nil
	}
	if err != nil {
		return Schemas{}, fmt.Errorf("read schema file: %w", err)
	}

	if err := decodeSchemas(data, filepath.Ext(path), &schemas); err != nil {
		return Schemas{}, fmt.Errorf("parse schema file %s: %w", path, err)
	}

	if err := errors.Join(schemas.Tickets.Validate(), schemas.Indicators.Validate()); err != nil {
		return Schemas{}, fmt.Errorf("invalid schema file %s: %w", path, err)
	}
	return schemas, nil
}

func decodeSchemas(data []byte, ext string, into *Schemas) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(into); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	case ".toml":
		md, err := toml.Decode(string(data), into)
		if err != nil {
			return err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("unknown keys: %v", undecoded)
		}
		return nil
	default:
		return fmt.Errorf("unsupported schema format %q", ext)
	}
}
