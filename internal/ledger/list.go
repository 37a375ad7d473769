package ledger

import (
	"sort"
	"strings"

	"github.com/tphakala/butterfly-go/internal/datastore"
	"github.com/tphakala/butterfly-go/internal/errors"
	"github.com/tphakala/butterfly-go/internal/locations"
)

// CreateListInput carries the parameters for creating a survey list. Exactly
// one of LocationID or CustomLocation must be provided.
type CreateListInput struct {
	Name      string
	Date      string // YYYY-MM-DD
	StartTime string // HH:MM
	// LocationID references an existing predefined or custom location.
	LocationID string
	// CustomLocation creates and persists a new site before the list
	// references it by value.
	CustomLocation *locations.Location
}

// CreateList validates the input, resolves or creates the location, and
// persists a new list with status active. Validation happens fully before the
// first write so a failed call leaves the store untouched.
func (s *Service) CreateList(input *CreateListInput) (datastore.List, error) {
	if strings.TrimSpace(input.Name) == "" {
		return datastore.List{}, errors.Newf("list name is required").
			Category(errors.CategoryValidation).
			Component("ledger").
			Build()
	}
	if input.Date == "" || input.StartTime == "" {
		return datastore.List{}, errors.Newf("list date and start time are required").
			Category(errors.CategoryValidation).
			Component("ledger").
			Build()
	}

	dateTime, err := combineDateTime(input.Date, input.StartTime)
	if err != nil {
		return datastore.List{}, err
	}

	loc, err := s.resolveListLocation(input)
	if err != nil {
		return datastore.List{}, err
	}

	list := datastore.List{
		Name:      strings.TrimSpace(input.Name),
		Date:      input.Date,
		StartTime: input.StartTime,
		DateTime:  dateTime,
		Status:    datastore.ListStatusActive,
		Location:  snapshotLocation(&loc),
		CreatedAt: s.clock.Now(),
	}

	if err := s.store.SaveList(&list); err != nil {
		return datastore.List{}, err
	}

	s.logger.Info("list created",
		"list_id", list.ID,
		"name", list.Name,
		"date", list.Date,
		"location", loc.Name)

	return list, nil
}

// resolveListLocation returns the location the new list will snapshot,
// persisting a custom location first when one was supplied.
func (s *Service) resolveListLocation(input *CreateListInput) (locations.Location, error) {
	switch {
	case input.CustomLocation != nil:
		loc, err := s.locations.AddCustom(*input.CustomLocation, s.clock.Now())
		if err != nil {
			return locations.Location{}, err
		}
		row := locationToCustom(&loc)
		if err := s.store.SaveCustomLocation(&row); err != nil {
			return locations.Location{}, err
		}
		return loc, nil

	case input.LocationID != "":
		loc, ok := s.locations.ByID(input.LocationID)
		if !ok {
			return locations.Location{}, errors.Newf("location %s not found", input.LocationID).
				Category(errors.CategoryValidation).
				Component("ledger").
				Build()
		}
		return loc, nil

	default:
		return locations.Location{}, errors.Newf("a location id or a custom location is required").
			Category(errors.CategoryValidation).
			Component("ledger").
			Build()
	}
}

// GetList returns one list by id.
func (s *Service) GetList(id uint) (datastore.List, error) {
	return s.store.GetList(id)
}

// CloseList transitions a list from active to closed, stamping the close
// timestamp from the service clock. Closing an already closed list is a
// conflict, not a silent no-op: the UI gates this behind a confirmation step
// and must learn when its view of the state is stale.
func (s *Service) CloseList(id uint) (datastore.List, error) {
	list, err := s.store.GetList(id)
	if err != nil {
		return datastore.List{}, err
	}

	if list.Status == datastore.ListStatusClosed {
		return datastore.List{}, errors.Newf("list %d is already closed", id).
			Category(errors.CategoryConflict).
			Component("ledger").
			ListContext(id, list.Status).
			Build()
	}

	now := s.clock.Now()
	list.Status = datastore.ListStatusClosed
	list.ClosedAt = &now
	list.EndTime = now.Format(timeLayout)
	list.EndDate = now.Format(dateLayout)

	// Single adapter write: the close either lands fully or not at all.
	if err := s.store.UpdateList(&list); err != nil {
		return datastore.List{}, err
	}

	s.logger.Info("list closed", "list_id", list.ID, "name", list.Name, "end_time", list.EndTime)
	return list, nil
}

// ActiveLists returns every list still accepting observations, in insertion
// order.
func (s *Service) ActiveLists() ([]datastore.List, error) {
	return s.listsByStatus(datastore.ListStatusActive, false)
}

// ClosedLists returns closed lists, most recently created first.
func (s *Service) ClosedLists() ([]datastore.List, error) {
	return s.listsByStatus(datastore.ListStatusClosed, true)
}

func (s *Service) listsByStatus(status string, newestFirst bool) ([]datastore.List, error) {
	all, err := s.store.GetAllLists()
	if err != nil {
		return nil, err
	}

	filtered := make([]datastore.List, 0, len(all))
	for i := range all {
		if all[i].Status == status {
			filtered = append(filtered, all[i])
		}
	}

	if newestFirst {
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
		})
	}

	return filtered, nil
}

// Observations returns the observations recorded on a list in encounter
// order.
func (s *Service) Observations(listID uint) ([]datastore.Observation, error) {
	if _, err := s.store.GetList(listID); err != nil {
		return nil, err
	}
	return s.store.GetObservationsByList(listID)
}
