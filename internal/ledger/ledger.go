// Package ledger implements the observation/list lifecycle: survey list
// creation and closing, observation recording, and the reference-data
// reconciliation sweep. All derived statistics live in the analytics package;
// this package owns the writes.
package ledger

import (
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tphakala/butterfly-go/internal/datastore"
	"github.com/tphakala/butterfly-go/internal/errors"
	"github.com/tphakala/butterfly-go/internal/locations"
	"github.com/tphakala/butterfly-go/internal/logging"
	"github.com/tphakala/butterfly-go/internal/taxonomy"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Service coordinates the persistence adapter, the species reference catalog
// and the location registry. The reference catalog is a required constructor
// input so species resolution can never run before the catalog is loaded.
type Service struct {
	store     datastore.Interface
	taxa      *taxonomy.Dataset
	locations *locations.Registry
	clock     clockwork.Clock
	logger    *slog.Logger
}

// New creates a ledger service. A nil clock selects the real clock; tests
// inject a fake for deterministic timestamps.
func New(store datastore.Interface, taxa *taxonomy.Dataset, registry *locations.Registry, clock clockwork.Clock) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := logging.ForService("ledger")
	if logger == nil {
		logger = slog.Default().With("service", "ledger")
	}
	return &Service{
		store:     store,
		taxa:      taxa,
		locations: registry,
		clock:     clock,
		logger:    logger,
	}
}

// Locations exposes the location registry for presentation layers.
func (s *Service) Locations() *locations.Registry {
	return s.locations
}

// Taxonomy exposes the species reference catalog for presentation layers.
func (s *Service) Taxonomy() *taxonomy.Dataset {
	return s.taxa
}

// RestoreCustomLocations loads previously persisted custom locations into the
// registry. Called once at startup before any list creation.
func (s *Service) RestoreCustomLocations() error {
	stored, err := s.store.GetAllCustomLocations()
	if err != nil {
		return err
	}

	restored := make([]locations.Location, 0, len(stored))
	for i := range stored {
		restored = append(restored, customToLocation(&stored[i]))
	}
	s.locations.Restore(restored)

	if len(restored) > 0 {
		s.logger.Debug("restored custom locations", "count", len(restored))
	}
	return nil
}

// combineDateTime parses a calendar date and wall-clock time into epoch
// seconds in the local timezone.
func combineDateTime(date, clock string) (int64, error) {
	d, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return 0, errors.Newf("invalid date %q, expected YYYY-MM-DD", date).
			Category(errors.CategoryValidation).
			Component("ledger").
			Build()
	}
	t, err := time.Parse(timeLayout, clock)
	if err != nil {
		return 0, errors.Newf("invalid time %q, expected HH:MM", clock).
			Category(errors.CategoryValidation).
			Component("ledger").
			Build()
	}
	combined := time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.Local)
	return combined.Unix(), nil
}

// snapshotLocation converts a registry location into the value-embedded copy
// stored on lists and observations.
func snapshotLocation(loc *locations.Location) datastore.LocationSnapshot {
	return datastore.LocationSnapshot{
		LocationID: loc.ID,
		Name:       loc.Name,
		City:       loc.City,
		State:      loc.State,
		Latitude:   loc.Latitude,
		Longitude:  loc.Longitude,
		Type:       string(loc.Type),
	}
}

// customToLocation converts a persisted custom location row back into a
// registry location.
func customToLocation(loc *datastore.CustomLocation) locations.Location {
	return locations.Location{
		ID:          loc.ID,
		Name:        loc.Name,
		City:        loc.City,
		State:       loc.State,
		Latitude:    loc.Latitude,
		Longitude:   loc.Longitude,
		Elevation:   loc.Elevation,
		Type:        locations.LocationType(loc.Type),
		Description: loc.Description,
		IsPopular:   loc.IsPopular,
		IsCustom:    true,
		CreatedAt:   loc.CreatedAt,
	}
}

// locationToCustom converts a registry location into its persisted row.
func locationToCustom(loc *locations.Location) datastore.CustomLocation {
	return datastore.CustomLocation{
		ID:          loc.ID,
		Name:        loc.Name,
		City:        loc.City,
		State:       loc.State,
		Latitude:    loc.Latitude,
		Longitude:   loc.Longitude,
		Elevation:   loc.Elevation,
		Type:        string(loc.Type),
		Description: loc.Description,
		IsPopular:   loc.IsPopular,
		CreatedAt:   loc.CreatedAt,
	}
}
