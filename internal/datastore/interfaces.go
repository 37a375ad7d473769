// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"log"
	"os"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tphakala/butterfly-go/internal/conf"
	"github.com/tphakala/butterfly-go/internal/errors"
)

// Interface abstracts the underlying database implementation and defines the
// persistence operations the application uses. The store offers full-scan
// reads plus add/put/delete per collection; all filtering and sorting happens
// in memory above this layer.
type Interface interface {
	Open() error
	Close() error

	// lists
	SaveList(list *List) error
	GetList(id uint) (List, error)
	GetAllLists() ([]List, error)
	UpdateList(list *List) error

	// observations
	SaveObservation(obs *Observation) error
	GetObservation(id uint) (Observation, error)
	GetAllObservations() ([]Observation, error)
	GetObservationsByList(listID uint) ([]Observation, error)
	UpdateObservation(obs *Observation) error
	DeleteObservation(id uint) error

	// custom locations
	SaveCustomLocation(loc *CustomLocation) error
	GetAllCustomLocations() ([]CustomLocation, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a new store instance based on the provided configuration.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			Settings: settings,
		}
	default:
		return nil
	}
}

// SaveList inserts a new list record. The persistence layer assigns the id.
func (ds *DataStore) SaveList(list *List) error {
	if err := ds.DB.Create(list).Error; err != nil {
		return errors.Newf("saving list: %v", err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}
	return nil
}

// GetList retrieves a list by its id.
func (ds *DataStore) GetList(id uint) (List, error) {
	var list List
	if err := ds.DB.First(&list, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return List{}, errors.Newf("list %d not found", id).
				Category(errors.CategoryNotFound).
				Component("datastore").
				Build()
		}
		return List{}, errors.Newf("getting list %d: %v", id, err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}
	return list, nil
}

// GetAllLists retrieves every list record.
func (ds *DataStore) GetAllLists() ([]List, error) {
	var lists []List
	if err := ds.DB.Find(&lists).Error; err != nil {
		return nil, errors.Newf("getting lists: %v", err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}
	return lists, nil
}

// UpdateList saves the full list record (upsert by id).
func (ds *DataStore) UpdateList(list *List) error {
	if err := ds.DB.Save(list).Error; err != nil {
		return errors.Newf("updating list %d: %v", list.ID, err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}
	return nil
}

// SaveObservation inserts a new observation record.
func (ds *DataStore) SaveObservation(obs *Observation) error {
	if err := ds.DB.Create(obs).Error; err != nil {
		return errors.Newf("saving observation: %v", err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}
	return nil
}

// GetObservation retrieves an observation by its id.
func (ds *DataStore) GetObservation(id uint) (Observation, error) {
	var obs Observation
	if err := ds.DB.First(&obs, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Observation{}, errors.Newf("observation %d not found", id).
				Category(errors.CategoryNotFound).
				Component("datastore").
				Build()
		}
		return Observation{}, errors.Newf("getting observation %d: %v", id, err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}
	return obs, nil
}

// GetAllObservations retrieves every observation record.
func (ds *DataStore) GetAllObservations() ([]Observation, error) {
	var obs []Observation
	if err := ds.DB.Find(&obs).Error; err != nil {
		return nil, errors.Newf("getting observations: %v", err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}
	return obs, nil
}

// GetObservationsByList retrieves the observations belonging to one list,
// ordered by observation timestamp then insertion order so downstream
// aggregation sees the encounter order.
func (ds *DataStore) GetObservationsByList(listID uint) ([]Observation, error) {
	var obs []Observation
	if err := ds.DB.Where("list_id = ?", listID).
		Order("date_time ASC, id ASC").
		Find(&obs).Error; err != nil {
		return nil, errors.Newf("getting observations for list %d: %v", listID, err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}
	return obs, nil
}

// UpdateObservation saves the full observation record (upsert by id).
func (ds *DataStore) UpdateObservation(obs *Observation) error {
	if err := ds.DB.Save(obs).Error; err != nil {
		return errors.Newf("updating observation %d: %v", obs.ID, err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}
	return nil
}

// DeleteObservation removes an observation by id. Deleting an unknown id is
// not an error at this layer; existence checks happen above.
func (ds *DataStore) DeleteObservation(id uint) error {
	if err := ds.DB.Delete(&Observation{}, id).Error; err != nil {
		return errors.Newf("deleting observation %d: %v", id, err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}
	return nil
}

// SaveCustomLocation inserts a new custom location record.
func (ds *DataStore) SaveCustomLocation(loc *CustomLocation) error {
	if err := ds.DB.Create(loc).Error; err != nil {
		return errors.Newf("saving custom location: %v", err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}
	return nil
}

// GetAllCustomLocations retrieves every custom location record.
func (ds *DataStore) GetAllCustomLocations() ([]CustomLocation, error) {
	var locs []CustomLocation
	if err := ds.DB.Find(&locs).Error; err != nil {
		return nil, errors.Newf("getting custom locations: %v", err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}
	return locs, nil
}

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)
}
