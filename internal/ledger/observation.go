package ledger

import (
	"strings"

	"github.com/tphakala/butterfly-go/internal/datastore"
	"github.com/tphakala/butterfly-go/internal/errors"
)

// AddObservationInput carries the parameters for recording a sighting.
type AddObservationInput struct {
	ListID      uint
	SpeciesName string // resolved against the catalog, case-insensitive exact match
	Count       int
	SpeciesType string // common | rare, defaults to common
	Date        string // YYYY-MM-DD, defaults to the list date
	Time        string // HH:MM
	Comments    string
}

// AddObservation resolves the species, checks the target list is active, and
// persists a new observation carrying a location snapshot copied from the
// list. All validation happens before the single write.
func (s *Service) AddObservation(input *AddObservationInput) (datastore.Observation, error) {
	if err := validateCount(input.Count); err != nil {
		return datastore.Observation{}, err
	}

	speciesType, err := normalizeSpeciesType(input.SpeciesType)
	if err != nil {
		return datastore.Observation{}, err
	}

	species, ok := s.taxa.FindByName(input.SpeciesName)
	if !ok {
		return datastore.Observation{}, errors.Newf("species %q not found in catalog", input.SpeciesName).
			Category(errors.CategoryNotFound).
			Component("ledger").
			SpeciesContext(input.SpeciesName).
			Build()
	}

	list, err := s.store.GetList(input.ListID)
	if err != nil {
		return datastore.Observation{}, err
	}
	if !list.IsActive() {
		return datastore.Observation{}, errors.Newf("list %d is closed and no longer accepts observations", list.ID).
			Category(errors.CategoryConflict).
			Component("ledger").
			ListContext(list.ID, list.Status).
			Build()
	}

	obsDate := input.Date
	if obsDate == "" {
		obsDate = list.Date
	}
	obsTime := input.Time
	if obsTime == "" {
		obsTime = s.clock.Now().Format(timeLayout)
	}
	dateTime, err := combineDateTime(obsDate, obsTime)
	if err != nil {
		return datastore.Observation{}, err
	}

	obs := datastore.Observation{
		ListID:        list.ID,
		ButterflyID:   species.ID,
		ButterflyName: species.CommonName,
		Count:         input.Count,
		SpeciesType:   speciesType,
		Date:          obsDate,
		Time:          obsTime,
		DateTime:      dateTime,
		Comments:      input.Comments,
		Location:      list.Location, // snapshot copied from the parent list
		CreatedAt:     s.clock.Now(),
	}

	if err := s.store.SaveObservation(&obs); err != nil {
		return datastore.Observation{}, err
	}

	s.logger.Info("observation recorded",
		"observation_id", obs.ID,
		"list_id", list.ID,
		"species", obs.ButterflyName,
		"count", obs.Count)

	return obs, nil
}

// AddMore creates a sibling observation copying the species identity and
// location from an existing one, dated on the parent list's date. Used for
// rapid repeated entry of the same species within one session.
func (s *Service) AddMore(originalID uint, count int, obsTime, comments string) (datastore.Observation, error) {
	if err := validateCount(count); err != nil {
		return datastore.Observation{}, err
	}

	original, err := s.store.GetObservation(originalID)
	if err != nil {
		return datastore.Observation{}, err
	}

	list, err := s.store.GetList(original.ListID)
	if err != nil {
		return datastore.Observation{}, err
	}

	if obsTime == "" {
		obsTime = s.clock.Now().Format(timeLayout)
	}
	dateTime, err := combineDateTime(list.Date, obsTime)
	if err != nil {
		return datastore.Observation{}, err
	}

	obs := datastore.Observation{
		ListID:        original.ListID,
		ButterflyID:   original.ButterflyID,
		ButterflyName: original.ButterflyName,
		Count:         count,
		SpeciesType:   original.SpeciesType,
		Date:          list.Date,
		Time:          obsTime,
		DateTime:      dateTime,
		Comments:      comments,
		Location:      original.Location,
		CreatedAt:     s.clock.Now(),
	}

	if err := s.store.SaveObservation(&obs); err != nil {
		return datastore.Observation{}, err
	}

	s.logger.Info("sibling observation recorded",
		"observation_id", obs.ID,
		"original_id", originalID,
		"species", obs.ButterflyName,
		"count", obs.Count)

	return obs, nil
}

// EditObservation mutates count and comments in place. All other fields are
// immutable after creation.
func (s *Service) EditObservation(id uint, count int, comments string) (datastore.Observation, error) {
	if err := validateCount(count); err != nil {
		return datastore.Observation{}, err
	}

	obs, err := s.store.GetObservation(id)
	if err != nil {
		return datastore.Observation{}, err
	}

	obs.Count = count
	obs.Comments = comments

	if err := s.store.UpdateObservation(&obs); err != nil {
		return datastore.Observation{}, err
	}

	return obs, nil
}

// DeleteObservation removes one observation by id. There is no soft delete.
func (s *Service) DeleteObservation(id uint) error {
	if _, err := s.store.GetObservation(id); err != nil {
		return err
	}
	if err := s.store.DeleteObservation(id); err != nil {
		return err
	}

	s.logger.Info("observation deleted", "observation_id", id)
	return nil
}

// validateCount enforces the count >= 1 invariant on create and edit.
func validateCount(count int) error {
	if count < 1 {
		return errors.Newf("count must be at least 1, got %d", count).
			Category(errors.CategoryValidation).
			Component("ledger").
			Build()
	}
	return nil
}

// normalizeSpeciesType maps user input onto the stored species type values.
func normalizeSpeciesType(t string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "", datastore.SpeciesTypeCommon:
		return datastore.SpeciesTypeCommon, nil
	case datastore.SpeciesTypeRare:
		return datastore.SpeciesTypeRare, nil
	default:
		return "", errors.Newf("invalid species type %q, expected common or rare", t).
			Category(errors.CategoryValidation).
			Component("ledger").
			Build()
	}
}
