// model.go this code defines the data model for the application
package datastore

import "time"

// List status values. A list transitions active -> closed exactly once.
const (
	ListStatusActive = "active"
	ListStatusClosed = "closed"
)

// Species type values recorded on an observation.
const (
	SpeciesTypeCommon = "common"
	SpeciesTypeRare   = "rare"
)

// LocationSnapshot is the value-embedded copy of a location stored on lists
// and observations. It is deliberately not a live foreign key: records must
// stay displayable and exportable even if the referenced location is later
// edited or removed from the reference set.
type LocationSnapshot struct {
	LocationID string
	Name       string
	City       string
	State      string
	Latitude   float64
	Longitude  float64
	Type       string
}

// List represents one observation survey session.
type List struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"index:idx_lists_name"`
	Date      string `gorm:"index:idx_lists_date"` // ISO 8601 calendar date
	StartTime string // 24-hour wall clock, HH:MM
	DateTime  int64  `gorm:"index:idx_lists_datetime"` // epoch seconds of Date+StartTime
	Status    string `gorm:"index:idx_lists_status"`   // active | closed
	Location  LocationSnapshot `gorm:"embedded;embeddedPrefix:location_"`
	CreatedAt time.Time        `gorm:"index"`

	// Set only once the list has been closed
	ClosedAt *time.Time
	EndTime  string
	EndDate  string
}

// IsActive reports whether the list still accepts observations.
func (l *List) IsActive() bool {
	return l.Status == ListStatusActive
}

// StartedAt returns the session start as a time.Time.
func (l *List) StartedAt() time.Time {
	return time.Unix(l.DateTime, 0)
}

// Observation represents a single timestamped species count.
type Observation struct {
	ID            uint   `gorm:"primaryKey"`
	ListID        uint   `gorm:"index:idx_observations_list;not null"`
	ButterflyID   int    `gorm:"index:idx_observations_butterfly"`
	ButterflyName string `gorm:"index:idx_observations_name"` // denormalized fallback key
	Count         int
	SpeciesType   string // common | rare
	Date          string `gorm:"index:idx_observations_date"` // ISO 8601 calendar date
	Time          string // 24-hour wall clock, HH:MM
	DateTime      int64  `gorm:"index:idx_observations_datetime"` // epoch seconds of Date+Time
	Comments      string `gorm:"type:text"`
	Location      LocationSnapshot `gorm:"embedded;embeddedPrefix:location_"`
	CreatedAt     time.Time
}

// IsRare reports whether the observation was recorded as a rare sighting.
func (o *Observation) IsRare() bool {
	return o.SpeciesType == SpeciesTypeRare
}

// ObservedAt returns the observation timestamp as a time.Time.
func (o *Observation) ObservedAt() time.Time {
	return time.Unix(o.DateTime, 0)
}

// CustomLocation represents a user-created observation site persisted in its
// own collection. Predefined sites live in the embedded reference file and
// are not stored here.
type CustomLocation struct {
	ID          string `gorm:"primaryKey"` // uuid
	Name        string
	City        string
	State       string
	Latitude    float64
	Longitude   float64
	Elevation   *float64
	Type        string
	Description string `gorm:"type:text"`
	IsPopular   bool
	CreatedAt   time.Time
}
