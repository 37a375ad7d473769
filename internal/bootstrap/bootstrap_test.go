package bootstrap

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/butterfly-go/internal/conf"
	"github.com/tphakala/butterfly-go/internal/errors"
	"github.com/tphakala/butterfly-go/internal/ledger"
)

func testSettings(t *testing.T) *conf.Settings {
	t.Helper()
	return &conf.Settings{
		Output: conf.OutputSettings{
			SQLite: conf.SQLiteSettings{
				Enabled: true,
				Path:    filepath.Join(t.TempDir(), "butterfly.db"),
			},
		},
	}
}

func TestNewServiceAssemblesWorkingCore(t *testing.T) {
	t.Parallel()

	service, closeStore, err := NewService(testSettings(t))
	require.NoError(t, err)
	require.NotNil(t, service)
	require.NotNil(t, closeStore)
	defer Shutdown(closeStore)

	// Reference data and locations are loaded, and the store accepts writes.
	require.NotZero(t, service.Taxonomy().Len())
	require.NotEmpty(t, service.Locations().All())

	list, err := service.CreateList(&ledger.CreateListInput{
		Name:       "Morning Walk",
		Date:       "2024-01-15",
		StartTime:  "07:00",
		LocationID: "loc-lalbagh",
	})
	require.NoError(t, err)
	assert.NotZero(t, list.ID)
}

func TestNewServiceRequiresEnabledStore(t *testing.T) {
	t.Parallel()

	settings := testSettings(t)
	settings.Output.SQLite.Enabled = false

	_, _, err := NewService(settings)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestShutdownInvokesCloser(t *testing.T) {
	t.Parallel()

	closed := false
	Shutdown(func() error {
		closed = true
		return nil
	})
	assert.True(t, closed)

	// A failing close is logged, never panicked on or re-raised.
	assert.NotPanics(t, func() {
		Shutdown(func() error { return errors.NewStd("connection already gone") })
	})
}
