package ledger

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tphakala/butterfly-go/internal/datastore"
	"github.com/tphakala/butterfly-go/internal/errors"
	"github.com/tphakala/butterfly-go/internal/locations"
	"github.com/tphakala/butterfly-go/internal/taxonomy"
)

// testStore adapts the bare GORM adapter to the store interface; tests run
// against an in-memory database so Open and Close have nothing to do.
type testStore struct {
	*datastore.DataStore
}

func (testStore) Open() error  { return nil }
func (testStore) Close() error { return nil }

func newTestStore(t *testing.T) testStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&datastore.List{}, &datastore.Observation{}, &datastore.CustomLocation{}))

	return testStore{&datastore.DataStore{DB: db}}
}

func newTestService(t *testing.T, clock clockwork.Clock) *Service {
	t.Helper()

	taxa, err := taxonomy.Load()
	require.NoError(t, err)

	return New(newTestStore(t), taxa, locations.NewRegistry(locations.LoadPredefined()), clock)
}

func surveyStart() time.Time {
	return time.Date(2024, time.January, 15, 7, 0, 0, 0, time.Local)
}

func createTestList(t *testing.T, s *Service) datastore.List {
	t.Helper()

	list, err := s.CreateList(&CreateListInput{
		Name:       "Morning Walk",
		Date:       "2024-01-15",
		StartTime:  "07:00",
		LocationID: "loc-lalbagh",
	})
	require.NoError(t, err)
	return list
}

func TestCreateList(t *testing.T) {
	t.Parallel()
	s := newTestService(t, clockwork.NewFakeClockAt(surveyStart()))

	list := createTestList(t, s)

	assert.NotZero(t, list.ID)
	assert.Equal(t, datastore.ListStatusActive, list.Status)
	assert.True(t, list.IsActive())
	assert.Equal(t, surveyStart().Unix(), list.DateTime)
	assert.Equal(t, "Lalbagh Botanical Garden", list.Location.Name, "the list carries a location snapshot")
	assert.Nil(t, list.ClosedAt)
}

func TestCreateListValidation(t *testing.T) {
	t.Parallel()
	s := newTestService(t, clockwork.NewFakeClockAt(surveyStart()))

	tests := []struct {
		name  string
		input CreateListInput
	}{
		{"missing name", CreateListInput{Date: "2024-01-15", StartTime: "07:00", LocationID: "loc-lalbagh"}},
		{"blank name", CreateListInput{Name: "   ", Date: "2024-01-15", StartTime: "07:00", LocationID: "loc-lalbagh"}},
		{"missing date", CreateListInput{Name: "Walk", StartTime: "07:00", LocationID: "loc-lalbagh"}},
		{"bad date", CreateListInput{Name: "Walk", Date: "15-01-2024", StartTime: "07:00", LocationID: "loc-lalbagh"}},
		{"bad time", CreateListInput{Name: "Walk", Date: "2024-01-15", StartTime: "7am", LocationID: "loc-lalbagh"}},
		{"no location", CreateListInput{Name: "Walk", Date: "2024-01-15", StartTime: "07:00"}},
		{"unknown location", CreateListInput{Name: "Walk", Date: "2024-01-15", StartTime: "07:00", LocationID: "loc-nowhere"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			_, err := s.CreateList(&input)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
		})
	}

	active, err := s.ActiveLists()
	require.NoError(t, err)
	assert.Empty(t, active, "failed creation must not write anything")
}

func TestCreateListWithCustomLocation(t *testing.T) {
	t.Parallel()
	s := newTestService(t, clockwork.NewFakeClockAt(surveyStart()))

	list, err := s.CreateList(&CreateListInput{
		Name:      "Backyard Count",
		Date:      "2024-01-15",
		StartTime: "07:00",
		CustomLocation: &locations.Location{
			Name:      "Backyard Patch",
			City:      "Mysuru",
			State:     "Karnataka",
			Latitude:  12.2958,
			Longitude: 76.6394,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Backyard Patch", list.Location.Name)
	assert.NotEmpty(t, list.Location.LocationID)

	// The new site is registered and persisted for future sessions.
	loc, ok := s.Locations().ByID(list.Location.LocationID)
	require.True(t, ok)
	assert.True(t, loc.IsCustom)

	fresh := New(s.store, s.taxa, locations.NewRegistry(locations.LoadPredefined()), s.clock)
	require.NoError(t, fresh.RestoreCustomLocations())
	_, ok = fresh.Locations().ByID(list.Location.LocationID)
	assert.True(t, ok, "custom locations survive a restart")
}

func TestCloseList(t *testing.T) {
	t.Parallel()
	clock := clockwork.NewFakeClockAt(surveyStart())
	s := newTestService(t, clock)

	list := createTestList(t, s)
	clock.Advance(2*time.Hour + 30*time.Minute)

	closed, err := s.CloseList(list.ID)
	require.NoError(t, err)
	assert.Equal(t, datastore.ListStatusClosed, closed.Status)
	assert.False(t, closed.IsActive())
	require.NotNil(t, closed.ClosedAt)
	assert.Equal(t, "09:30", closed.EndTime)
	assert.Equal(t, "2024-01-15", closed.EndDate)

	// Closing twice is a conflict, never a silent no-op.
	_, err = s.CloseList(list.ID)
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))

	_, err = s.CloseList(9999)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestActiveAndClosedLists(t *testing.T) {
	t.Parallel()
	clock := clockwork.NewFakeClockAt(surveyStart())
	s := newTestService(t, clock)

	first := createTestList(t, s)
	clock.Advance(time.Hour)
	second, err := s.CreateList(&CreateListInput{
		Name:       "Second Round",
		Date:       "2024-01-15",
		StartTime:  "08:00",
		LocationID: "loc-cubbon",
	})
	require.NoError(t, err)

	active, err := s.ActiveLists()
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, first.ID, active[0].ID, "active lists keep insertion order")

	_, err = s.CloseList(first.ID)
	require.NoError(t, err)
	clock.Advance(time.Hour)
	_, err = s.CloseList(second.ID)
	require.NoError(t, err)

	closed, err := s.ClosedLists()
	require.NoError(t, err)
	require.Len(t, closed, 2)
	assert.Equal(t, second.ID, closed[0].ID, "closed lists are newest first")
}

func TestAddObservation(t *testing.T) {
	t.Parallel()
	clock := clockwork.NewFakeClockAt(surveyStart())
	s := newTestService(t, clock)
	list := createTestList(t, s)

	clock.Advance(10 * time.Minute)
	obs, err := s.AddObservation(&AddObservationInput{
		ListID:      list.ID,
		SpeciesName: "common crow",
		Count:       3,
		Comments:    "nectaring on lantana",
	})
	require.NoError(t, err)

	assert.Equal(t, "Common Crow", obs.ButterflyName, "the catalog spelling wins over user input")
	assert.NotZero(t, obs.ButterflyID)
	assert.Equal(t, 3, obs.Count)
	assert.Equal(t, datastore.SpeciesTypeCommon, obs.SpeciesType)
	assert.Equal(t, "2024-01-15", obs.Date, "defaults to the list date")
	assert.Equal(t, "07:10", obs.Time, "defaults to the clock time")
	assert.Equal(t, list.Location, obs.Location, "the snapshot is copied from the list")
}

func TestAddObservationRejections(t *testing.T) {
	t.Parallel()
	s := newTestService(t, clockwork.NewFakeClockAt(surveyStart()))
	list := createTestList(t, s)

	_, err := s.AddObservation(&AddObservationInput{ListID: list.ID, SpeciesName: "Common Crow", Count: 0})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err), "zero count")

	_, err = s.AddObservation(&AddObservationInput{ListID: list.ID, SpeciesName: "Common Crow", Count: -2})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err), "negative count")

	_, err = s.AddObservation(&AddObservationInput{ListID: list.ID, SpeciesName: "Dodo", Count: 1})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err), "unknown species")

	_, err = s.AddObservation(&AddObservationInput{ListID: list.ID, SpeciesName: "Common Crow", Count: 1, SpeciesType: "mythical"})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err), "unknown species type")

	_, err = s.CloseList(list.ID)
	require.NoError(t, err)

	_, err = s.AddObservation(&AddObservationInput{ListID: list.ID, SpeciesName: "Common Crow", Count: 1})
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err), "closed lists accept no new observations")
}

func TestAddMoreCopiesIdentity(t *testing.T) {
	t.Parallel()
	clock := clockwork.NewFakeClockAt(surveyStart())
	s := newTestService(t, clock)
	list := createTestList(t, s)

	original, err := s.AddObservation(&AddObservationInput{
		ListID:      list.ID,
		SpeciesName: "Plain Tiger",
		Count:       2,
		SpeciesType: "rare",
		Time:        "07:10",
	})
	require.NoError(t, err)

	clock.Advance(25 * time.Minute)
	sibling, err := s.AddMore(original.ID, 4, "", "seen again near the pond")
	require.NoError(t, err)

	assert.Equal(t, original.ButterflyID, sibling.ButterflyID)
	assert.Equal(t, original.ButterflyName, sibling.ButterflyName)
	assert.Equal(t, original.SpeciesType, sibling.SpeciesType)
	assert.Equal(t, original.Location, sibling.Location)
	assert.Equal(t, list.Date, sibling.Date)
	assert.Equal(t, "07:25", sibling.Time)
	assert.Equal(t, 4, sibling.Count)
	assert.Equal(t, "seen again near the pond", sibling.Comments)
	assert.NotEqual(t, original.ID, sibling.ID)

	_, err = s.AddMore(9999, 1, "", "")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestEditObservation(t *testing.T) {
	t.Parallel()
	s := newTestService(t, clockwork.NewFakeClockAt(surveyStart()))
	list := createTestList(t, s)

	obs, err := s.AddObservation(&AddObservationInput{ListID: list.ID, SpeciesName: "Common Crow", Count: 1, Time: "07:10"})
	require.NoError(t, err)

	edited, err := s.EditObservation(obs.ID, 5, "recounted")
	require.NoError(t, err)
	assert.Equal(t, 5, edited.Count)
	assert.Equal(t, "recounted", edited.Comments)
	assert.Equal(t, obs.Time, edited.Time, "time is immutable after creation")
	assert.Equal(t, obs.ButterflyName, edited.ButterflyName)

	_, err = s.EditObservation(obs.ID, 0, "")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	_, err = s.EditObservation(9999, 1, "")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestDeleteObservation(t *testing.T) {
	t.Parallel()
	s := newTestService(t, clockwork.NewFakeClockAt(surveyStart()))
	list := createTestList(t, s)

	obs, err := s.AddObservation(&AddObservationInput{ListID: list.ID, SpeciesName: "Common Crow", Count: 1, Time: "07:10"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteObservation(obs.ID))

	err = s.DeleteObservation(obs.ID)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	remaining, err := s.Observations(list.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestObservationsUnknownList(t *testing.T) {
	t.Parallel()
	s := newTestService(t, clockwork.NewFakeClockAt(surveyStart()))

	_, err := s.Observations(4242)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestReconcileRepairsRenumberedIDs(t *testing.T) {
	t.Parallel()
	s := newTestService(t, clockwork.NewFakeClockAt(surveyStart()))
	list := createTestList(t, s)

	good, err := s.AddObservation(&AddObservationInput{ListID: list.ID, SpeciesName: "Common Crow", Count: 1, Time: "07:10"})
	require.NoError(t, err)

	// Simulate a catalog renumbering: a stale id with a resolvable name, and
	// one record whose species left the catalog entirely.
	stale := datastore.Observation{
		ListID: list.ID, ButterflyID: 90001, ButterflyName: "Plain Tiger",
		Count: 2, SpeciesType: datastore.SpeciesTypeCommon,
		Date: "2024-01-15", Time: "07:20", DateTime: surveyStart().Add(20 * time.Minute).Unix(),
	}
	require.NoError(t, s.store.SaveObservation(&stale))
	orphan := datastore.Observation{
		ListID: list.ID, ButterflyID: 90002, ButterflyName: "Forgotten Fritillary",
		Count: 1, SpeciesType: datastore.SpeciesTypeCommon,
		Date: "2024-01-15", Time: "07:30", DateTime: surveyStart().Add(30 * time.Minute).Unix(),
	}
	require.NoError(t, s.store.SaveObservation(&orphan))

	report, err := s.Reconcile()
	require.NoError(t, err)
	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 1, report.Repaired)
	require.Len(t, report.Unresolved, 1)
	assert.Equal(t, "Forgotten Fritillary", report.Unresolved[0].ButterflyName)

	repaired, err := s.store.GetObservation(stale.ID)
	require.NoError(t, err)
	tiger, ok := s.taxa.FindByName("Plain Tiger")
	require.True(t, ok)
	assert.Equal(t, tiger.ID, repaired.ButterflyID)

	kept, err := s.store.GetObservation(orphan.ID)
	require.NoError(t, err)
	assert.Equal(t, 90002, kept.ButterflyID, "unresolved records are left untouched")
	assert.Equal(t, good.ButterflyID, mustGet(t, s, good.ID).ButterflyID)

	// A second sweep finds nothing new to repair.
	again, err := s.Reconcile()
	require.NoError(t, err)
	assert.Equal(t, 0, again.Repaired)
	assert.Len(t, again.Unresolved, 1)
}

func TestReconcileReportIntegrityErr(t *testing.T) {
	t.Parallel()
	s := newTestService(t, clockwork.NewFakeClockAt(surveyStart()))
	list := createTestList(t, s)

	clean, err := s.Reconcile()
	require.NoError(t, err)
	assert.NoError(t, clean.IntegrityErr(), "a fully resolved sweep carries no diagnostic")

	orphan := datastore.Observation{
		ListID: list.ID, ButterflyID: 90002, ButterflyName: "Forgotten Fritillary",
		Count: 1, SpeciesType: datastore.SpeciesTypeCommon,
		Date: "2024-01-15", Time: "07:30", DateTime: surveyStart().Add(30 * time.Minute).Unix(),
	}
	require.NoError(t, s.store.SaveObservation(&orphan))

	report, err := s.Reconcile()
	require.NoError(t, err)

	integrityErr := report.IntegrityErr()
	require.Error(t, integrityErr)
	assert.True(t, errors.IsIntegrity(integrityErr), "unresolved records surface as an integrity diagnostic")
	assert.Contains(t, integrityErr.Error(), "1 observations")
}

func mustGet(t *testing.T, s *Service, id uint) datastore.Observation {
	t.Helper()
	obs, err := s.store.GetObservation(id)
	require.NoError(t, err)
	return obs
}

func TestCombineDateTime(t *testing.T) {
	t.Parallel()

	got, err := combineDateTime("2024-01-15", "07:10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 15, 7, 10, 0, 0, time.Local).Unix(), got)

	_, err = combineDateTime("2024-13-01", "07:10")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	_, err = combineDateTime("2024-01-15", "25:00")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}
