package ledger

import (
	"github.com/tphakala/butterfly-go/internal/datastore"
	"github.com/tphakala/butterfly-go/internal/errors"
)

// ReconcileReport summarizes one reference-data reconciliation sweep.
type ReconcileReport struct {
	Scanned    int                     // observations examined
	Repaired   int                     // butterfly ids rewritten from the name fallback
	Unresolved []datastore.Observation // observations whose species could not be resolved
}

// IntegrityErr returns a non-fatal integrity-categorized error describing the
// unresolved observations, or nil when every record resolved. The records stay
// persisted and usable either way; callers surface this as a diagnostic, not a
// failure.
func (r *ReconcileReport) IntegrityErr() error {
	if len(r.Unresolved) == 0 {
		return nil
	}
	return errors.Newf("%d observations reference species missing from the catalog", len(r.Unresolved)).
		Category(errors.CategoryIntegrity).
		Component("ledger").
		Priority(errors.PriorityLow).
		Context("unresolved_count", len(r.Unresolved)).
		Build()
}

// Reconcile sweeps every observation whose butterfly id no longer resolves in
// the reference catalog (catalog ids have been renumbered across releases)
// and attempts resolution by the denormalized common name. Resolvable
// mismatches are rewritten in place and persisted; the rest are surfaced in
// the report and left untouched so they still display and export via the
// stored name. The sweep must run after load and before any analytics, since
// aggregation keys on catalog-derived species names. Running it twice in a
// row repairs nothing new the second time.
func (s *Service) Reconcile() (*ReconcileReport, error) {
	observations, err := s.store.GetAllObservations()
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{Scanned: len(observations)}

	for i := range observations {
		obs := &observations[i]

		if _, ok := s.taxa.FindByID(obs.ButterflyID); ok {
			continue
		}

		species, ok := s.taxa.FindByName(obs.ButterflyName)
		if !ok {
			// Never drop the record: the denormalized name keeps it
			// displayable and exportable.
			report.Unresolved = append(report.Unresolved, *obs)
			s.logger.Warn("observation species unresolved after name fallback",
				"observation_id", obs.ID,
				"butterfly_id", obs.ButterflyID,
				"butterfly_name", obs.ButterflyName)
			continue
		}

		obs.ButterflyID = species.ID
		if err := s.store.UpdateObservation(obs); err != nil {
			return nil, err
		}
		report.Repaired++

		s.logger.Info("observation species id repaired",
			"observation_id", obs.ID,
			"butterfly_id", species.ID,
			"butterfly_name", species.CommonName)
	}

	if report.Repaired > 0 || len(report.Unresolved) > 0 {
		s.logger.Info("reconciliation sweep finished",
			"scanned", report.Scanned,
			"repaired", report.Repaired,
			"unresolved", len(report.Unresolved))
	}

	return report, nil
}
