// Package bootstrap assembles the application services from configuration:
// persistence, reference data, location registry and the ledger. Used by the
// CLI commands so each of them starts from a fully initialized core.
package bootstrap

import (
	"github.com/tphakala/butterfly-go/internal/conf"
	"github.com/tphakala/butterfly-go/internal/datastore"
	"github.com/tphakala/butterfly-go/internal/errors"
	"github.com/tphakala/butterfly-go/internal/ledger"
	"github.com/tphakala/butterfly-go/internal/locations"
	"github.com/tphakala/butterfly-go/internal/logging"
	"github.com/tphakala/butterfly-go/internal/taxonomy"
)

// NewService opens the datastore, loads the reference catalog and location
// registry, restores persisted custom locations, and runs the reconciliation
// sweep. The sweep runs here, before any analytics, because aggregation keys
// on catalog-derived species names. The returned closer releases the store.
func NewService(settings *conf.Settings) (*ledger.Service, func() error, error) {
	store := datastore.New(settings)
	if store == nil {
		return nil, nil, errors.Newf("no datastore enabled in configuration").
			Category(errors.CategoryConfiguration).
			Component("bootstrap").
			Build()
	}

	if err := store.Open(); err != nil {
		return nil, nil, err
	}

	taxa, err := taxonomy.Load()
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	registry := locations.NewRegistry(locations.LoadPredefined())
	service := ledger.New(store, taxa, registry, nil)

	if err := service.RestoreCustomLocations(); err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	report, err := service.Reconcile()
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	if integrityErr := report.IntegrityErr(); integrityErr != nil {
		logging.Warn("observations with unresolved species after reconciliation",
			"count", len(report.Unresolved), "error", integrityErr)
	}

	return service, store.Close, nil
}

// Shutdown releases the datastore through the closer returned by NewService,
// logging a failed close instead of dropping it. Commands defer this.
func Shutdown(closeStore func() error) {
	if err := closeStore(); err != nil {
		logging.Error("error closing datastore", "error", err)
	}
}
