// Package locations provides the observation site registry: a predefined set
// loaded once at startup plus user-created custom locations.
package locations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/butterfly-go/internal/errors"
)

//go:embed predefined.yaml
var dataFiles embed.FS

// LocationType categorizes an observation site.
type LocationType string

const (
	TypeGarden    LocationType = "garden"
	TypePark      LocationType = "park"
	TypeForest    LocationType = "forest"
	TypeGrassland LocationType = "grassland"
	TypeWetland   LocationType = "wetland"
	TypeUrban     LocationType = "urban"
	TypeCustom    LocationType = "custom"
)

// Location represents one observation site.
type Location struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	City        string       `yaml:"city"`
	State       string       `yaml:"state"`
	Latitude    float64      `yaml:"latitude"`
	Longitude   float64      `yaml:"longitude"`
	Elevation   *float64     `yaml:"elevation,omitempty"` // meters, optional
	Type        LocationType `yaml:"type"`
	Description string       `yaml:"description,omitempty"`
	IsPopular   bool         `yaml:"is_popular"`
	IsCustom    bool         `yaml:"-"`
	CreatedAt   time.Time    `yaml:"-"`
}

// ValidateCoordinates checks that a coordinate pair is in geographic range.
func ValidateCoordinates(latitude, longitude float64) error {
	if latitude < -90 || latitude > 90 {
		return errors.Newf("invalid latitude %.4f, must be between -90 and 90", latitude).
			Category(errors.CategoryValidation).
			Component("locations").
			Build()
	}
	if longitude < -180 || longitude > 180 {
		return errors.Newf("invalid longitude %.4f, must be between -180 and 180", longitude).
			Category(errors.CategoryValidation).
			Component("locations").
			Build()
	}
	return nil
}

// Registry holds the merged set of predefined and custom locations.
// Locations are never removed once registered.
type Registry struct {
	mu   sync.RWMutex
	locs []Location
	byID map[string]int
}

// NewRegistry builds a registry seeded with the given predefined locations.
func NewRegistry(predefined []Location) *Registry {
	r := &Registry{
		byID: make(map[string]int, len(predefined)),
	}
	for i := range predefined {
		r.locs = append(r.locs, predefined[i])
		r.byID[predefined[i].ID] = len(r.locs) - 1
	}
	return r
}

// LoadPredefined reads the embedded predefined location set. If the embedded
// data cannot be read or parsed it falls back to a small hardcoded set so the
// application always has usable sites.
func LoadPredefined() []Location {
	data, err := fs.ReadFile(dataFiles, "predefined.yaml")
	if err != nil {
		return fallbackLocations()
	}

	var entries struct {
		Locations []Location `yaml:"locations"`
	}
	if err := yaml.Unmarshal(data, &entries); err != nil || len(entries.Locations) == 0 {
		return fallbackLocations()
	}

	return entries.Locations
}

// fallbackLocations returns the minimal hardcoded site set used when the
// predefined reference file is unavailable.
func fallbackLocations() []Location {
	return []Location{
		{
			ID:        "loc-fallback-1",
			Name:      "City Botanical Garden",
			City:      "Bengaluru",
			State:     "Karnataka",
			Latitude:  12.9507,
			Longitude: 77.5848,
			Type:      TypeGarden,
			IsPopular: true,
		},
		{
			ID:        "loc-fallback-2",
			Name:      "Urban Park",
			City:      "Bengaluru",
			State:     "Karnataka",
			Latitude:  12.9763,
			Longitude: 77.5929,
			Type:      TypePark,
		},
	}
}

// ByID returns the location with the given id.
func (r *Registry) ByID(id string) (Location, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return Location{}, false
	}
	return r.locs[i], true
}

// All returns every known location, predefined first, then custom locations
// sorted by creation time.
func (r *Registry) All() []Location {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Location, len(r.locs))
	copy(out, r.locs)
	sort.SliceStable(out, func(i, j int) bool {
		// Predefined before custom, otherwise keep registration order
		return !out[i].IsCustom && out[j].IsCustom
	})
	return out
}

// AddCustom validates and registers a user-created location. The id is
// assigned here when empty. Returns the stored location.
func (r *Registry) AddCustom(loc Location, createdAt time.Time) (Location, error) {
	if strings.TrimSpace(loc.Name) == "" {
		return Location{}, errors.Newf("custom location name is required").
			Category(errors.CategoryValidation).
			Component("locations").
			Build()
	}
	if err := ValidateCoordinates(loc.Latitude, loc.Longitude); err != nil {
		return Location{}, err
	}

	if loc.ID == "" {
		loc.ID = uuid.NewString()
	}
	if loc.Type == "" {
		loc.Type = TypeCustom
	}
	loc.IsCustom = true
	loc.CreatedAt = createdAt

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[loc.ID]; exists {
		return Location{}, errors.Newf("location id %s already registered", loc.ID).
			Category(errors.CategoryConflict).
			Component("locations").
			Build()
	}

	r.locs = append(r.locs, loc)
	r.byID[loc.ID] = len(r.locs) - 1
	return loc, nil
}

// Restore registers previously persisted custom locations without
// re-validating them. Unknown ids are added, already registered ids are
// skipped.
func (r *Registry) Restore(custom []Location) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range custom {
		loc := custom[i]
		if _, exists := r.byID[loc.ID]; exists {
			continue
		}
		loc.IsCustom = true
		r.locs = append(r.locs, loc)
		r.byID[loc.ID] = len(r.locs) - 1
	}
}

// String implements fmt.Stringer for display purposes.
func (l Location) String() string {
	if l.City == "" {
		return l.Name
	}
	return fmt.Sprintf("%s, %s", l.Name, l.City)
}
