package analytics

import (
	"github.com/tphakala/butterfly-go/internal/datastore"
	"github.com/tphakala/butterfly-go/internal/taxonomy"
)

// Summary is the read-only composite rendered both by the close-confirmation
// preview and the stats views. Building it mutates nothing, so it is safe to
// compute before committing a close.
type Summary struct {
	ListID   uint
	ListName string
	Date     string
	Location string
	Status   string

	Species  Breakdown
	Families Breakdown

	RareSpecies      []string
	RareSpeciesCount int

	Duration  string
	Intervals []IntervalBucket

	Peak         *IntervalBucket
	PeakRunnerUp *IntervalBucket
}

// BuildSummary assembles the full derived view of one list.
func BuildSummary(list *datastore.List, observations []datastore.Observation, taxa *taxonomy.Dataset) Summary {
	rare := RareSpeciesSet(observations, taxa)
	intervals := IntervalBuckets(observations, taxa)

	s := Summary{
		ListID:           list.ID,
		ListName:         list.Name,
		Date:             list.Date,
		Location:         list.Location.Name,
		Status:           list.Status,
		Species:          SpeciesBreakdown(observations, taxa),
		Families:         FamilyBreakdown(observations, taxa),
		RareSpecies:      rare,
		RareSpeciesCount: len(rare),
		Duration:         DurationSpan(observations),
		Intervals:        intervals,
	}

	if peak, runnerUp, ok := PeakActivity(intervals); ok {
		s.Peak = &peak
		s.PeakRunnerUp = runnerUp
	}

	return s
}
