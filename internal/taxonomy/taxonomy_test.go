package taxonomy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedCatalog(t *testing.T) {
	t.Parallel()

	taxa, err := Load()
	require.NoError(t, err)
	assert.Greater(t, taxa.Len(), 20)

	// Every entry carries the mandatory taxonomic fields
	for _, sp := range taxa.All() {
		assert.NotZero(t, sp.ID)
		assert.NotEmpty(t, sp.CommonName)
		assert.NotEmpty(t, sp.ScientificName)
		assert.NotEmpty(t, sp.Family)
	}
}

func TestFindByNameIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	taxa, err := Load()
	require.NoError(t, err)

	for _, name := range []string{"Common Crow", "common crow", "COMMON CROW", "  Common Crow  "} {
		sp, ok := taxa.FindByName(name)
		require.True(t, ok, "expected a match for %q", name)
		assert.Equal(t, "Euploea core", sp.ScientificName)
	}

	_, ok := taxa.FindByName("Common Cro")
	assert.False(t, ok, "partial names must not match")
}

func TestFindByID(t *testing.T) {
	t.Parallel()

	taxa, err := Load()
	require.NoError(t, err)

	sp, ok := taxa.FindByName("Plain Tiger")
	require.True(t, ok)

	byID, ok := taxa.FindByID(sp.ID)
	require.True(t, ok)
	assert.Equal(t, sp, byID)

	_, ok = taxa.FindByID(99999)
	assert.False(t, ok)
}

func TestSearch(t *testing.T) {
	t.Parallel()

	taxa, err := Load()
	require.NoError(t, err)

	// Substring across common name
	matches := taxa.Search("tiger")
	require.NotEmpty(t, matches)
	for _, sp := range matches {
		assert.Contains(t, strings.ToLower(sp.CommonName), "tiger")
	}

	// Substring across family
	matches = taxa.Search("lycaenidae")
	require.NotEmpty(t, matches)
	for _, sp := range matches {
		assert.Equal(t, "Lycaenidae", sp.Family)
	}

	// Substring across scientific name
	matches = taxa.Search("papilio ")
	require.NotEmpty(t, matches)

	assert.Empty(t, taxa.Search("no such butterfly"))
	assert.Empty(t, taxa.Search(""))
}

func TestNewDatasetIndexes(t *testing.T) {
	t.Parallel()

	taxa := NewDataset([]Species{
		{ID: 7, CommonName: "Test Skipper", ScientificName: "Testus skipperi", Family: "Hesperiidae"},
	})

	sp, ok := taxa.FindByID(7)
	require.True(t, ok)
	assert.Equal(t, "Test Skipper", sp.CommonName)

	_, ok = taxa.FindByName("test skipper")
	assert.True(t, ok)
}
