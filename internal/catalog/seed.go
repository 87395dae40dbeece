package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is the on-disk form of a set of catalogs
type Seed struct {
	Catalogs map[string][]Item `yaml:"catalogs"`
}

// DefaultSeed returns the built-in storefront catalogs
func DefaultSeed() (*Seed, error) {
	return ParseSeed(defaultSeed)
}

// LoadSeed reads a seed file. YAML and JSON are both accepted.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes seed data and stamps each item with its catalog name
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	for name, items := range seed.Catalogs {
		seen := make(map[int]struct{}, len(items))
		for i := range items {
			if _, dup := seen[items[i].ID]; dup {
				return nil, fmt.Errorf("catalog %s: duplicate item id %d", name, items[i].ID)
			}
			seen[items[i].ID] = struct{}{}
			items[i].Catalog = name
		}
	}

	return &seed, nil
}

// Count returns the total number of items across catalogs
func (s *Seed) Count() int {
	n := 0
	for _, items := range s.Catalogs {
		n += len(items)
	}
	return n
}
