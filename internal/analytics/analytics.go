// Package analytics derives statistics from a list's observation set. Every
// function here is a pure transformation: nothing is persisted, so a summary
// can be previewed safely before a close operation commits.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/tphakala/butterfly-go/internal/datastore"
	"github.com/tphakala/butterfly-go/internal/taxonomy"
)

// bucketMinutes is the fixed activity-interval width. Bucket boundaries are
// absolute wall-clock marks (:00/:30), not relative to the session start.
const bucketMinutes = 30

// SpeciesCount is one aggregated row of a breakdown.
type SpeciesCount struct {
	Name           string
	ScientificName string
	Count          int
	IsRare         bool
}

// Breakdown aggregates observation counts under a key (species or family).
type Breakdown struct {
	Entries    []SpeciesCount // sorted by count descending, ties in encounter order
	UniqueKeys int            // number of distinct keys
	TotalCount int            // sum of all observation counts
}

// speciesDisplayName resolves the aggregation key for an observation: the
// catalog name when the id still resolves, otherwise the denormalized copy.
func speciesDisplayName(obs *datastore.Observation, taxa *taxonomy.Dataset) string {
	if taxa != nil {
		if sp, ok := taxa.FindByID(obs.ButterflyID); ok {
			return sp.CommonName
		}
	}
	return obs.ButterflyName
}

// resolveSpecies returns the catalog entry for an observation, trying the id
// first and the name fallback second.
func resolveSpecies(obs *datastore.Observation, taxa *taxonomy.Dataset) (taxonomy.Species, bool) {
	if taxa == nil {
		return taxonomy.Species{}, false
	}
	if sp, ok := taxa.FindByID(obs.ButterflyID); ok {
		return sp, true
	}
	return taxa.FindByName(obs.ButterflyName)
}

// SpeciesBreakdown consolidates multiple observations of the same species
// into one row with a summed count. The per-row counts always sum to the
// total of the input counts.
func SpeciesBreakdown(observations []datastore.Observation, taxa *taxonomy.Dataset) Breakdown {
	index := make(map[string]int)
	var entries []SpeciesCount
	total := 0

	for i := range observations {
		obs := &observations[i]
		name := speciesDisplayName(obs, taxa)
		total += obs.Count

		if j, ok := index[name]; ok {
			entries[j].Count += obs.Count
			entries[j].IsRare = entries[j].IsRare || obs.IsRare()
			continue
		}

		var scientific string
		if sp, ok := resolveSpecies(obs, taxa); ok {
			scientific = sp.ScientificName
		}
		index[name] = len(entries)
		entries = append(entries, SpeciesCount{
			Name:           name,
			ScientificName: scientific,
			Count:          obs.Count,
			IsRare:         obs.IsRare(),
		})
	}

	// Stable sort keeps encounter order as the tie-break between equal counts.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	return Breakdown{
		Entries:    entries,
		UniqueKeys: len(entries),
		TotalCount: total,
	}
}

// FamilyBreakdown aggregates counts by taxonomic family, resolved through the
// reference catalog. Observations whose species cannot be resolved are
// grouped under "Unknown".
func FamilyBreakdown(observations []datastore.Observation, taxa *taxonomy.Dataset) Breakdown {
	index := make(map[string]int)
	var entries []SpeciesCount
	total := 0

	for i := range observations {
		obs := &observations[i]
		family := "Unknown"
		if sp, ok := resolveSpecies(obs, taxa); ok {
			family = sp.Family
		}
		total += obs.Count

		if j, ok := index[family]; ok {
			entries[j].Count += obs.Count
			continue
		}
		index[family] = len(entries)
		entries = append(entries, SpeciesCount{Name: family, Count: obs.Count})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	return Breakdown{
		Entries:    entries,
		UniqueKeys: len(entries),
		TotalCount: total,
	}
}

// RareSpeciesSet returns the distinct species names recorded as rare, in
// encounter order. Rarity is counted by distinct species, not individuals.
func RareSpeciesSet(observations []datastore.Observation, taxa *taxonomy.Dataset) []string {
	seen := make(map[string]bool)
	var names []string

	for i := range observations {
		obs := &observations[i]
		if !obs.IsRare() {
			continue
		}
		name := speciesDisplayName(obs, taxa)
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	return names
}

// IntervalBucket aggregates the observations falling into one 30-minute
// wall-clock slot.
type IntervalBucket struct {
	Start           time.Time
	Label           string // e.g. "07:00 - 07:30"
	UniqueSpecies   int
	TotalCount      int
	TopSpecies      string // most frequent species, first-encountered on ties
	TopSpeciesCount int
}

// bucketKey identifies one absolute 30-minute slot of one calendar day.
type bucketKey struct {
	date string
	slot int // minutes-since-midnight / 30
}

// IntervalBuckets partitions observations into absolute 30-minute wall-clock
// buckets. An observation at 10:47 lands in [10:30, 11:00), regardless of
// when the session started. Empty buckets are omitted so sparse sessions
// stay readable in charts and tables; every returned bucket holds at least
// one observation.
func IntervalBuckets(observations []datastore.Observation, taxa *taxonomy.Dataset) []IntervalBucket {
	type bucketAccum struct {
		start        time.Time
		total        int
		perSpecies   map[string]int
		encountered  []string // species in first-encounter order for tie-breaks
	}

	accums := make(map[bucketKey]*bucketAccum)

	for i := range observations {
		obs := &observations[i]
		t := obs.ObservedAt()
		slot := (t.Hour()*60 + t.Minute()) / bucketMinutes
		key := bucketKey{date: t.Format("2006-01-02"), slot: slot}

		acc, ok := accums[key]
		if !ok {
			start := time.Date(t.Year(), t.Month(), t.Day(),
				slot*bucketMinutes/60, slot*bucketMinutes%60, 0, 0, t.Location())
			acc = &bucketAccum{start: start, perSpecies: make(map[string]int)}
			accums[key] = acc
		}

		name := speciesDisplayName(obs, taxa)
		if _, seen := acc.perSpecies[name]; !seen {
			acc.encountered = append(acc.encountered, name)
		}
		acc.perSpecies[name] += obs.Count
		acc.total += obs.Count
	}

	buckets := make([]IntervalBucket, 0, len(accums))
	for _, acc := range accums {
		top, topCount := "", 0
		for _, name := range acc.encountered {
			if acc.perSpecies[name] > topCount {
				top, topCount = name, acc.perSpecies[name]
			}
		}

		end := acc.start.Add(bucketMinutes * time.Minute)
		buckets = append(buckets, IntervalBucket{
			Start:           acc.start,
			Label:           fmt.Sprintf("%s - %s", acc.start.Format("15:04"), end.Format("15:04")),
			UniqueSpecies:   len(acc.perSpecies),
			TotalCount:      acc.total,
			TopSpecies:      top,
			TopSpeciesCount: topCount,
		})
	}

	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Start.Before(buckets[j].Start)
	})

	return buckets
}

// PeakActivity returns the interval bucket with the highest distinct-species
// count, and the runner-up when one exists. Ties are broken by chronology:
// the earliest bucket wins. ok is false when there are no buckets.
func PeakActivity(buckets []IntervalBucket) (peak IntervalBucket, runnerUp *IntervalBucket, ok bool) {
	if len(buckets) == 0 {
		return IntervalBucket{}, nil, false
	}

	peakIdx := 0
	for i := 1; i < len(buckets); i++ {
		if buckets[i].UniqueSpecies > buckets[peakIdx].UniqueSpecies {
			peakIdx = i
		}
	}

	runnerIdx := -1
	for i := range buckets {
		if i == peakIdx {
			continue
		}
		if runnerIdx == -1 || buckets[i].UniqueSpecies > buckets[runnerIdx].UniqueSpecies {
			runnerIdx = i
		}
	}

	if runnerIdx >= 0 {
		r := buckets[runnerIdx]
		runnerUp = &r
	}
	return buckets[peakIdx], runnerUp, true
}

// DurationSpan formats the wall-clock span between the first and last
// observation as hours and minutes. A session with fewer than two
// observations has no meaningful span and yields "N/A".
func DurationSpan(observations []datastore.Observation) string {
	if len(observations) < 2 {
		return "N/A"
	}

	first, last := observations[0].DateTime, observations[0].DateTime
	for i := range observations {
		dt := observations[i].DateTime
		if dt < first {
			first = dt
		}
		if dt > last {
			last = dt
		}
	}

	span := time.Duration(last-first) * time.Second
	hours := int(span.Hours())
	minutes := int(span.Minutes()) % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
