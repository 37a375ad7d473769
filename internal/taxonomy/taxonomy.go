// Package taxonomy provides the static butterfly reference catalog used to
// resolve species identity into taxonomic metadata.
package taxonomy

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed species.yaml
var dataFiles embed.FS

// Species represents one entry of the reference catalog.
type Species struct {
	ID             int    `yaml:"id"`
	CommonName     string `yaml:"common_name"`
	ScientificName string `yaml:"scientific_name"`
	Family         string `yaml:"family"`
	Subfamily      string `yaml:"subfamily,omitempty"`
	Tribe          string `yaml:"tribe,omitempty"`
}

// Dataset is an immutable, indexed view over the species catalog.
// Lookups by common name are case-insensitive exact matches.
type Dataset struct {
	species []Species
	byID    map[int]int    // species id -> index
	byName  map[string]int // lowercased common name -> index
}

// Load reads the embedded species catalog and builds a Dataset.
func Load() (*Dataset, error) {
	data, err := fs.ReadFile(dataFiles, "species.yaml")
	if err != nil {
		return nil, fmt.Errorf("error reading embedded species catalog: %w", err)
	}

	var entries struct {
		Species []Species `yaml:"species"`
	}
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("error parsing species catalog: %w", err)
	}
	if len(entries.Species) == 0 {
		return nil, fmt.Errorf("species catalog is empty")
	}

	return NewDataset(entries.Species), nil
}

// NewDataset builds an indexed Dataset from a species slice. Intended for
// tests and alternate catalog sources.
func NewDataset(species []Species) *Dataset {
	d := &Dataset{
		species: species,
		byID:    make(map[int]int, len(species)),
		byName:  make(map[string]int, len(species)),
	}
	for i := range species {
		d.byID[species[i].ID] = i
		d.byName[strings.ToLower(species[i].CommonName)] = i
	}
	return d
}

// FindByID returns the species with the given catalog id.
func (d *Dataset) FindByID(id int) (Species, bool) {
	i, ok := d.byID[id]
	if !ok {
		return Species{}, false
	}
	return d.species[i], true
}

// FindByName returns the species whose common name matches, ignoring case.
func (d *Dataset) FindByName(commonName string) (Species, bool) {
	i, ok := d.byName[strings.ToLower(strings.TrimSpace(commonName))]
	if !ok {
		return Species{}, false
	}
	return d.species[i], true
}

// Search returns all species whose common name, scientific name, family or
// subfamily contains the query as a substring, ignoring case.
func (d *Dataset) Search(query string) []Species {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var matches []Species
	for i := range d.species {
		s := &d.species[i]
		if strings.Contains(strings.ToLower(s.CommonName), query) ||
			strings.Contains(strings.ToLower(s.ScientificName), query) ||
			strings.Contains(strings.ToLower(s.Family), query) ||
			strings.Contains(strings.ToLower(s.Subfamily), query) {
			matches = append(matches, *s)
		}
	}
	return matches
}

// All returns a copy of the full catalog.
func (d *Dataset) All() []Species {
	out := make([]Species, len(d.species))
	copy(out, d.species)
	return out
}

// Len returns the number of species in the catalog.
func (d *Dataset) Len() int {
	return len(d.species)
}
