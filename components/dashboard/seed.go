package dashboard

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	seedVersionV1 = "1"
	// SeedVersion exposes the current seed format version for tooling.
	SeedVersion = seedVersionV1
)

// SeedDocument models a YAML document describing starter items and
// category ranks.
type SeedDocument struct {
	Version       string        `yaml:"version"`
	Items         []Item        `yaml:"items"`
	CategoryOrder CategoryOrder `yaml:"category_order,omitempty"`
	Source        string        `yaml:"-"`
}

// ReadSeed loads a seed file from disk.
func ReadSeed(path string) (*SeedDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open seed %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeSeed(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode seed %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeSeed reads a seed document from any reader. Unknown keys are errors.
func DecodeSeed(r io.Reader) (*SeedDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc SeedDocument
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dashboard: seed is empty")
		}
		return nil, fmt.Errorf("dashboard: parse seed: %w", err)
	}
	if doc.Version == "" {
		doc.Version = seedVersionV1
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// EncodeSeed writes doc as YAML.
func EncodeSeed(w io.Writer, doc SeedDocument) error {
	if doc.Version == "" {
		doc.Version = seedVersionV1
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("dashboard: encode seed: %w", err)
	}
	return encoder.Close()
}

// Validate ensures every seed item has the required fields.
func (doc *SeedDocument) Validate() error {
	if doc.Version != seedVersionV1 {
		return fmt.Errorf("dashboard: unsupported seed version %q", doc.Version)
	}
	for idx, item := range doc.Items {
		if item.Name == "" || item.URL == "" {
			return fmt.Errorf("dashboard: seed item at index %d is missing name or url", idx)
		}
	}
	return nil
}
