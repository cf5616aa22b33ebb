package engine

import (
	"maps"
	"slices"

	"movie-explorer/internal/models"
)

// Aggregate counts the records of view per OscarsWon value.
// Buckets come out in ascending key order; an empty view gives an empty histogram.
func Aggregate(view models.FilteredView) models.AwardHistogram {
	counts := make(map[int]int)
	for _, r := range view {
		counts[r.OscarsWon]++
	}

	histogram := make(models.AwardHistogram, 0, len(counts))
	for _, oscars := range slices.Sorted(maps.Keys(counts)) {
		histogram = append(histogram, models.AwardBucket{
			OscarsWon: oscars,
			Count:     counts[oscars],
		})
	}
	return histogram
}
