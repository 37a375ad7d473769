// Package export renders a list and its observations into downloadable
// documents: RFC-4180 CSV and a self-contained HTML report.
package export

import (
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/tphakala/butterfly-go/internal/datastore"
	"github.com/tphakala/butterfly-go/internal/errors"
	"github.com/tphakala/butterfly-go/internal/taxonomy"
)

// ErrNoObservations signals that an export was requested for a list without
// data. Callers check for it before triggering a file save; it is a
// condition, not a failure that corrupts anything.
var ErrNoObservations = errors.NewStd("no observations to export")

// csvHeader defines the CSV column layout: one row per observation, no
// aggregation, full fidelity.
var csvHeader = []string{
	"Date",
	"Time",
	"Common Name",
	"Scientific Name",
	"Family",
	"Count",
	"Comments",
	"Location",
	"City",
	"State",
	"Latitude",
	"Longitude",
	"List Name",
}

// ToCSV renders one row per observation. Fields containing commas or quotes
// are escaped per standard CSV quoting.
func ToCSV(list *datastore.List, observations []datastore.Observation, taxa *taxonomy.Dataset) (string, error) {
	if len(observations) == 0 {
		return "", ErrNoObservations
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(csvHeader); err != nil {
		return "", errors.Newf("writing CSV header: %v", err).
			Category(errors.CategoryExport).
			Component("export").
			Build()
	}

	for i := range observations {
		obs := &observations[i]

		scientific, family := "", ""
		if sp, ok := resolveSpecies(obs, taxa); ok {
			scientific = sp.ScientificName
			family = sp.Family
		}

		record := []string{
			obs.Date,
			obs.Time,
			commonName(obs, taxa),
			scientific,
			family,
			strconv.Itoa(obs.Count),
			obs.Comments,
			obs.Location.Name,
			obs.Location.City,
			obs.Location.State,
			strconv.FormatFloat(obs.Location.Latitude, 'f', 4, 64),
			strconv.FormatFloat(obs.Location.Longitude, 'f', 4, 64),
			list.Name,
		}
		if err := w.Write(record); err != nil {
			return "", errors.Newf("writing CSV row: %v", err).
				Category(errors.CategoryExport).
				Component("export").
				Build()
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", errors.Newf("flushing CSV: %v", err).
			Category(errors.CategoryExport).
			Component("export").
			Build()
	}

	return sb.String(), nil
}

// commonName resolves the display name for an observation, preferring the
// catalog entry and falling back to the denormalized copy.
func commonName(obs *datastore.Observation, taxa *taxonomy.Dataset) string {
	if taxa != nil {
		if sp, ok := taxa.FindByID(obs.ButterflyID); ok {
			return sp.CommonName
		}
	}
	return obs.ButterflyName
}

// resolveSpecies looks the observation up in the catalog by id, then by name.
func resolveSpecies(obs *datastore.Observation, taxa *taxonomy.Dataset) (taxonomy.Species, bool) {
	if taxa == nil {
		return taxonomy.Species{}, false
	}
	if sp, ok := taxa.FindByID(obs.ButterflyID); ok {
		return sp, true
	}
	return taxa.FindByName(obs.ButterflyName)
}
